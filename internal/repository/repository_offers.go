package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"procurement/internal/models"

	"github.com/lib/pq"
)

const offerColumns = "id, request_id, supplier_id, brand, description, quantity, unit_price, currency, discount_percent, delivery_type, delivery_days, status, offered_at"

func (repo *Repository) AddOffer(ctx context.Context, offer models.Offer) (models.Offer, error) {
	query := `
	INSERT INTO offers (request_id, supplier_id, brand, description, quantity, unit_price, currency, discount_percent, delivery_type, delivery_days, status)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	RETURNING id, status, offered_at
	`

	row := repo.db.QueryRowContext(ctx, query,
		offer.RequestId, offer.SupplierId, offer.Brand, offer.Description, offer.Quantity,
		offer.UnitPrice, offer.Currency, offer.DiscountPercent, offer.DeliveryType, offer.DeliveryDays,
		models.OfferPending)
	err := row.Scan(&offer.Id, &offer.Status, &offer.OfferedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return offer, models.ErrDuplicateOffer
		}
		return offer, fmt.Errorf("repository.Repository.AddOffer: %w", err)
	}

	return offer, nil
}

func (repo *Repository) OfferByID(ctx context.Context, id int64) (models.Offer, bool, error) {
	query := "SELECT " + offerColumns + " FROM offers WHERE id = $1"
	offer, err := scanOffer(repo.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return offer, false, nil
	} else if err != nil {
		return offer, false, fmt.Errorf("repository.Repository.OfferByID: %w", err)
	}

	return offer, true, nil
}

func (repo *Repository) OffersByIDs(ctx context.Context, ids []int64) ([]models.Offer, error) {
	query := "SELECT " + offerColumns + " FROM offers WHERE id = ANY($1) ORDER BY id"

	rows, err := repo.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.OffersByIDs: %w", err)
	}
	defer rows.Close()

	var result []models.Offer
	var offer models.Offer
	for rows.Next() {
		err = rows.Scan(&offer.Id, &offer.RequestId, &offer.SupplierId, &offer.Brand, &offer.Description,
			&offer.Quantity, &offer.UnitPrice, &offer.Currency, &offer.DiscountPercent,
			&offer.DeliveryType, &offer.DeliveryDays, &offer.Status, &offer.OfferedAt)
		if err != nil {
			return nil, fmt.Errorf("repository.Repository.OffersByIDs: rows scan error: %w", err)
		}
		result = append(result, offer)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("repository.Repository.OffersByIDs: %w", rows.Err())
	}

	return result, nil
}

func (repo *Repository) OffersByRequest(ctx context.Context, requestId int64) ([]models.Offer, error) {
	query := "SELECT " + offerColumns + " FROM offers WHERE request_id = $1 ORDER BY offered_at"

	rows, err := repo.db.QueryContext(ctx, query, requestId)
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.OffersByRequest: %w", err)
	}
	defer rows.Close()

	var result []models.Offer
	var offer models.Offer
	for rows.Next() {
		err = rows.Scan(&offer.Id, &offer.RequestId, &offer.SupplierId, &offer.Brand, &offer.Description,
			&offer.Quantity, &offer.UnitPrice, &offer.Currency, &offer.DiscountPercent,
			&offer.DeliveryType, &offer.DeliveryDays, &offer.Status, &offer.OfferedAt)
		if err != nil {
			return nil, fmt.Errorf("repository.Repository.OffersByRequest: rows scan error: %w", err)
		}
		result = append(result, offer)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("repository.Repository.OffersByRequest: %w", rows.Err())
	}

	return result, nil
}

// ApproveOffer commits the full approval as one transaction: the winning
// offer flips Pending -> Approved, every other pending offer on the request
// flips to Rejected, and the request itself becomes Completed. The Pending
// precondition sits in the first UPDATE, so a concurrent approval of a
// sibling offer loses the race cleanly with ErrOfferFinalized instead of
// producing a second approved offer.
func (repo *Repository) ApproveOffer(ctx context.Context, offerId int64) (models.OfferApprovedEvent, error) {
	var event models.OfferApprovedEvent

	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return event, fmt.Errorf("repository.Repository.ApproveOffer: failed to start transaction: %w", err)
	}

	// Lock every offer on the request in id order before writing anything.
	// Concurrent approvals of sibling offers then queue up behind the same
	// locks instead of deadlocking on each other's rows; the loser goes on
	// to find its offer no longer Pending.
	lock := `
	SELECT id FROM offers
	WHERE request_id = (SELECT request_id FROM offers WHERE id = $1)
	ORDER BY id
	FOR UPDATE
	`

	_, err = tx.ExecContext(ctx, lock, offerId)
	if err != nil {
		return event, fmt.Errorf("repository.Repository.ApproveOffer: %w", wrapRollbackErr(tx, err))
	}

	approve := `
	UPDATE offers
	SET status = $2
	WHERE id = $1 AND status = $3
	RETURNING ` + offerColumns

	offer, err := scanOffer(tx.QueryRowContext(ctx, approve, offerId, models.OfferApproved, models.OfferPending))
	if errors.Is(err, sql.ErrNoRows) {
		tx.Rollback()
		_, exists, lookupErr := repo.OfferByID(ctx, offerId)
		if lookupErr != nil {
			return event, fmt.Errorf("repository.Repository.ApproveOffer: %w", lookupErr)
		}
		if !exists {
			return event, models.ErrNoOffer
		}
		return event, models.ErrOfferFinalized
	} else if err != nil {
		return event, fmt.Errorf("repository.Repository.ApproveOffer: %w", wrapRollbackErr(tx, err))
	}

	reject := `
	UPDATE offers
	SET status = $3
	WHERE request_id = $1 AND id <> $2 AND status = $4
	RETURNING id, supplier_id
	`

	rows, err := tx.QueryContext(ctx, reject, offer.RequestId, offer.Id, models.OfferRejected, models.OfferPending)
	if err != nil {
		return event, fmt.Errorf("repository.Repository.ApproveOffer: %w", wrapRollbackErr(tx, err))
	}

	var losers []models.RejectedOffer
	var loser models.RejectedOffer
	for rows.Next() {
		err = rows.Scan(&loser.OfferId, &loser.SupplierId)
		if err != nil {
			rows.Close()
			return event, fmt.Errorf("repository.Repository.ApproveOffer: rows scan error: %w", wrapRollbackErr(tx, err))
		}
		losers = append(losers, loser)
	}
	if err = rows.Err(); err != nil {
		rows.Close()
		return event, fmt.Errorf("repository.Repository.ApproveOffer: %w", wrapRollbackErr(tx, err))
	}
	rows.Close()

	_, err = tx.ExecContext(ctx, "UPDATE requests SET status = $2 WHERE id = $1", offer.RequestId, models.RequestCompleted)
	if err != nil {
		return event, fmt.Errorf("repository.Repository.ApproveOffer: %w", wrapRollbackErr(tx, err))
	}

	err = tx.Commit()
	if err != nil {
		return event, fmt.Errorf("repository.Repository.ApproveOffer: failed to commit transaction: %w", err)
	}

	return models.OfferApprovedEvent{
		RequestId:         offer.RequestId,
		OfferId:           offer.Id,
		WinningSupplierId: offer.SupplierId,
		Currency:          offer.Currency,
		Final:             offer.Final(),
		LosingOffers:      losers,
	}, nil
}

// RejectOffer is the single-offer terminal transition. It never touches the
// parent request.
func (repo *Repository) RejectOffer(ctx context.Context, offerId int64) (models.Offer, error) {
	query := `
	UPDATE offers
	SET status = $2
	WHERE id = $1 AND status = $3
	RETURNING ` + offerColumns

	offer, err := scanOffer(repo.db.QueryRowContext(ctx, query, offerId, models.OfferRejected, models.OfferPending))
	if errors.Is(err, sql.ErrNoRows) {
		_, exists, lookupErr := repo.OfferByID(ctx, offerId)
		if lookupErr != nil {
			return offer, fmt.Errorf("repository.Repository.RejectOffer: %w", lookupErr)
		}
		if !exists {
			return offer, models.ErrNoOffer
		}
		return offer, models.ErrOfferFinalized
	} else if err != nil {
		return offer, fmt.Errorf("repository.Repository.RejectOffer: %w", err)
	}

	return offer, nil
}

// RejectOffers flips every still-pending offer in the id set to Rejected.
// Finalized and missing ids are skipped; the count of changed rows is
// returned.
func (repo *Repository) RejectOffers(ctx context.Context, ids []int64) (int64, error) {
	query := "UPDATE offers SET status = $2 WHERE id = ANY($1) AND status = $3"

	res, err := repo.db.ExecContext(ctx, query, pq.Array(ids), models.OfferRejected, models.OfferPending)
	if err != nil {
		return 0, fmt.Errorf("repository.Repository.RejectOffers: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("repository.Repository.RejectOffers: %w", err)
	}
	return n, nil
}

func scanOffer(row *sql.Row) (models.Offer, error) {
	var offer models.Offer
	err := row.Scan(&offer.Id, &offer.RequestId, &offer.SupplierId, &offer.Brand, &offer.Description,
		&offer.Quantity, &offer.UnitPrice, &offer.Currency, &offer.DiscountPercent,
		&offer.DeliveryType, &offer.DeliveryDays, &offer.Status, &offer.OfferedAt)
	return offer, err
}
