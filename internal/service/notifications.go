package service

import (
	"context"
	"fmt"

	"procurement/internal/models"
)

const (
	notificationListLimit = 50
	summaryRecentLimit    = 5
)

// ResolveIdentity maps a caller-declared user id to an identity. An unknown
// id yields a zero identity, not an error: the visibility filter turns it
// into an empty view instead of leaking the global one.
func (s *Service) ResolveIdentity(ctx context.Context, userId int64) (models.Identity, error) {
	user, ok, err := s.store.UserByID(ctx, userId)
	if err != nil {
		return models.Identity{}, fmt.Errorf("service.Service.ResolveIdentity: %w", err)
	}
	if !ok {
		return models.Identity{}, nil
	}

	identity := models.Identity{UserId: user.Id, Role: user.Role}
	if user.Role == models.RoleSupplier {
		sup, ok, err := s.store.SupplierByUserID(ctx, user.Id)
		if err != nil {
			return models.Identity{}, fmt.Errorf("service.Service.ResolveIdentity: %w", err)
		}
		if ok {
			identity.SupplierId = sup.Id
		}
	}

	return identity, nil
}

// Notifications lists the caller's visible records, newest first, capped at
// 50.
func (s *Service) Notifications(ctx context.Context, identity models.Identity) ([]models.Notification, error) {
	list, err := s.store.Notifications(ctx, models.FilterFor(identity), notificationListLimit)
	if err != nil {
		return nil, fmt.Errorf("service.Service.Notifications: %w", err)
	}
	if list == nil {
		list = []models.Notification{}
	}
	return list, nil
}

// NotificationSummary returns counts over the caller's visible set plus the
// five newest records. Unresolved identities get the empty summary.
func (s *Service) NotificationSummary(ctx context.Context, identity models.Identity) (models.NotificationSummary, error) {
	summary := models.NotificationSummary{Recent: []models.Notification{}}
	filter := models.FilterFor(identity)
	if filter.None {
		return summary, nil
	}

	total, unread, err := s.store.NotificationCounts(ctx, filter)
	if err != nil {
		return summary, fmt.Errorf("service.Service.NotificationSummary: %w", err)
	}

	recent, err := s.store.Notifications(ctx, filter, summaryRecentLimit)
	if err != nil {
		return summary, fmt.Errorf("service.Service.NotificationSummary: %w", err)
	}

	summary.TotalCount = total
	summary.UnreadCount = unread
	if recent != nil {
		summary.Recent = recent
	}
	return summary, nil
}

// MarkNotificationRead is idempotent; marking a read notification again is a
// no-op.
func (s *Service) MarkNotificationRead(ctx context.Context, id int64) error {
	err := s.store.MarkNotificationRead(ctx, id)
	if err != nil {
		return fmt.Errorf("service.Service.MarkNotificationRead: %w", err)
	}
	return nil
}

// MarkAllNotificationsRead acknowledges the caller's entire visible set.
func (s *Service) MarkAllNotificationsRead(ctx context.Context, identity models.Identity) error {
	err := s.store.MarkNotificationsRead(ctx, models.FilterFor(identity))
	if err != nil {
		return fmt.Errorf("service.Service.MarkAllNotificationsRead: %w", err)
	}
	return nil
}
