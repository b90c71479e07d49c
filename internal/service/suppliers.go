package service

import (
	"context"
	"fmt"

	"procurement/internal/models"
)

func (s *Service) SupplierByID(ctx context.Context, id int64) (models.Supplier, error) {
	sup, ok, err := s.store.SupplierByID(ctx, id)
	if err != nil {
		return sup, fmt.Errorf("service.Service.SupplierByID: %w", err)
	}
	if !ok {
		return sup, models.ErrNoSupplier
	}
	return sup, nil
}

// ApproveSupplier vets a pending supplier. The decision is terminal and the
// supplier's user is told either way.
func (s *Service) ApproveSupplier(ctx context.Context, id int64) (models.Supplier, error) {
	return s.setSupplierStatus(ctx, id, models.SupplierApproved)
}

func (s *Service) RejectSupplier(ctx context.Context, id int64) (models.Supplier, error) {
	return s.setSupplierStatus(ctx, id, models.SupplierRejected)
}

func (s *Service) setSupplierStatus(ctx context.Context, id int64, status models.SupplierStatus) (models.Supplier, error) {
	sup, err := s.store.SetSupplierStatus(ctx, id, status)
	if err != nil {
		return sup, fmt.Errorf("service.Service.setSupplierStatus: %w", err)
	}

	title, message, noticeType := "Supplier approved", "Your supplier account has been approved", models.NoticeSupplierApproved
	if status == models.SupplierRejected {
		title, message, noticeType = "Supplier rejected", "Your supplier registration has been rejected", models.NoticeSupplierRejected
	}

	s.notify(ctx, models.Notification{
		Title:      title,
		Message:    message,
		Type:       noticeType,
		UserId:     ptr(sup.UserId),
		SupplierId: ptr(sup.Id),
	})

	return sup, nil
}
