package service

import (
	"context"
	"fmt"

	"procurement/internal/models"
)

// CreateOffer records a supplier's bid. The caller is identified by user id
// and must resolve to an approved supplier; the target request must still be
// accepting offers. A supplier's first offer moves an Open request to
// InProgress.
func (s *Service) CreateOffer(ctx context.Context, userId int64, offer models.Offer) (models.Offer, error) {
	sup, ok, err := s.store.SupplierByUserID(ctx, userId)
	if err != nil {
		return offer, fmt.Errorf("service.Service.CreateOffer: %w", err)
	}
	if !ok {
		return offer, models.ErrForbidden
	}
	if sup.Status != models.SupplierApproved {
		return offer, models.ErrSupplierNotReady
	}
	offer.SupplierId = sup.Id

	req, ok, err := s.store.RequestByID(ctx, offer.RequestId)
	if err != nil {
		return offer, fmt.Errorf("service.Service.CreateOffer: %w", err)
	}
	if !ok {
		return offer, models.ErrNoRequest
	}
	if req.Status != models.RequestOpen && req.Status != models.RequestInProgress {
		return offer, models.ErrRequestFinalized
	}

	offer, err = s.store.AddOffer(ctx, offer)
	if err != nil {
		return offer, fmt.Errorf("service.Service.CreateOffer: %w", err)
	}

	if req.Status == models.RequestOpen {
		_, err = s.store.TransitionRequest(ctx, req.Id, models.RequestInProgress, models.RequestOpen)
		if err != nil {
			return offer, fmt.Errorf("service.Service.CreateOffer: %w", err)
		}
	}

	s.notify(ctx, models.Notification{
		Title:      "New offer",
		Message:    fmt.Sprintf("%s submitted an offer for request #%d", sup.CompanyName, req.Id),
		Type:       models.NoticeNewOffer,
		RequestId:  ptr(req.Id),
		OfferId:    ptr(offer.Id),
		SupplierId: ptr(sup.Id),
	})

	return offer, nil
}

func (s *Service) RequestOffers(ctx context.Context, requestId int64) ([]models.Offer, error) {
	_, ok, err := s.store.RequestByID(ctx, requestId)
	if err != nil {
		return nil, fmt.Errorf("service.Service.RequestOffers: %w", err)
	}
	if !ok {
		return nil, models.ErrNoRequest
	}

	offers, err := s.store.OffersByRequest(ctx, requestId)
	if err != nil {
		return nil, fmt.Errorf("service.Service.RequestOffers: %w", err)
	}
	return offers, nil
}

// ApproveOffer drives the approval state machine and fans out the result.
// The store commits the whole transition atomically and reports it as an
// event; notification delivery happens only after the commit, per recipient,
// best-effort.
func (s *Service) ApproveOffer(ctx context.Context, offerId int64) (models.OfferApprovedEvent, error) {
	event, err := s.store.ApproveOffer(ctx, offerId)
	if err != nil {
		return event, fmt.Errorf("service.Service.ApproveOffer: %w", err)
	}

	s.fanOutOfferApproved(ctx, event)
	return event, nil
}

func (s *Service) fanOutOfferApproved(ctx context.Context, event models.OfferApprovedEvent) {
	winner, ok, err := s.store.SupplierByID(ctx, event.WinningSupplierId)
	if err != nil || !ok {
		s.log.Warn().Err(err).Int64("supplier_id", event.WinningSupplierId).
			Msg("approval fan-out: could not resolve winning supplier")
	} else {
		s.notify(ctx, models.Notification{
			Title: "Offer approved",
			Message: fmt.Sprintf("Your offer for request #%d was approved at %s %s",
				event.RequestId, event.Final.StringFixed(2), event.Currency),
			Type:       models.NoticeOfferApproved,
			UserId:     ptr(winner.UserId),
			RequestId:  ptr(event.RequestId),
			OfferId:    ptr(event.OfferId),
			SupplierId: ptr(winner.Id),
		})
	}

	for _, loser := range event.LosingOffers {
		sup, ok, err := s.store.SupplierByID(ctx, loser.SupplierId)
		if err != nil || !ok {
			s.log.Warn().Err(err).Int64("supplier_id", loser.SupplierId).
				Msg("approval fan-out: could not resolve losing supplier")
			continue
		}
		s.notify(ctx, models.Notification{
			Title:      "Offer rejected",
			Message:    fmt.Sprintf("Your offer for request #%d was rejected", event.RequestId),
			Type:       models.NoticeOfferRejected,
			UserId:     ptr(sup.UserId),
			RequestId:  ptr(event.RequestId),
			OfferId:    ptr(loser.OfferId),
			SupplierId: ptr(sup.Id),
		})
	}
}

// RejectOffer is the admin-side single-offer rejection. The parent request
// keeps its status.
func (s *Service) RejectOffer(ctx context.Context, offerId int64) (models.Offer, error) {
	offer, err := s.store.RejectOffer(ctx, offerId)
	if err != nil {
		return offer, fmt.Errorf("service.Service.RejectOffer: %w", err)
	}

	sup, ok, err := s.store.SupplierByID(ctx, offer.SupplierId)
	if err != nil || !ok {
		s.log.Warn().Err(err).Int64("supplier_id", offer.SupplierId).
			Msg("rejection fan-out: could not resolve supplier")
		return offer, nil
	}

	s.notify(ctx, models.Notification{
		Title:      "Offer rejected",
		Message:    fmt.Sprintf("Your offer for request #%d was rejected", offer.RequestId),
		Type:       models.NoticeOfferRejected,
		UserId:     ptr(sup.UserId),
		RequestId:  ptr(offer.RequestId),
		OfferId:    ptr(offer.Id),
		SupplierId: ptr(sup.Id),
	})

	return offer, nil
}

// WithdrawOffer is the supplier-initiated terminal transition on its own
// offer. No other party is notified.
func (s *Service) WithdrawOffer(ctx context.Context, userId, offerId int64) (models.Offer, error) {
	sup, ok, err := s.store.SupplierByUserID(ctx, userId)
	if err != nil {
		return models.Offer{}, fmt.Errorf("service.Service.WithdrawOffer: %w", err)
	}
	if !ok {
		return models.Offer{}, models.ErrForbidden
	}

	offer, ok, err := s.store.OfferByID(ctx, offerId)
	if err != nil {
		return offer, fmt.Errorf("service.Service.WithdrawOffer: %w", err)
	}
	if !ok {
		return offer, models.ErrNoOffer
	}
	if offer.SupplierId != sup.Id {
		return offer, models.ErrForbidden
	}

	offer, err = s.store.RejectOffer(ctx, offerId)
	if err != nil {
		return offer, fmt.Errorf("service.Service.WithdrawOffer: %w", err)
	}

	return offer, nil
}

// BulkRejectOffers rejects every still-pending offer in the set; finalized
// and unknown ids are skipped. A fully unmatched list is reported as not
// found.
func (s *Service) BulkRejectOffers(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, models.ErrEmptyIdList
	}

	matched, err := s.store.OffersByIDs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("service.Service.BulkRejectOffers: %w", err)
	}
	if len(matched) == 0 {
		return 0, models.ErrNoOffer
	}

	n, err := s.store.RejectOffers(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("service.Service.BulkRejectOffers: %w", err)
	}
	return n, nil
}
