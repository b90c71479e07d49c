package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"procurement/internal/models"

	"github.com/lib/pq"
)

const notificationColumns = "id, title, message, type, user_id, request_id, offer_id, supplier_id, is_read, created_at"

func (repo *Repository) AddNotification(ctx context.Context, n models.Notification) (models.Notification, error) {
	query := `
	INSERT INTO notifications (title, message, type, user_id, request_id, offer_id, supplier_id)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING id, is_read, created_at
	`

	row := repo.db.QueryRowContext(ctx, query,
		n.Title, n.Message, n.Type, n.UserId, n.RequestId, n.OfferId, n.SupplierId)
	err := row.Scan(&n.Id, &n.Read, &n.CreatedAt)
	if err != nil {
		return n, fmt.Errorf("repository.Repository.AddNotification: %w", err)
	}

	return n, nil
}

// prepNotificationsQuery translates a visibility filter into SQL conditions.
// The same filter drives models.NotificationFilter.Matches; the two must
// select the same rows.
func prepNotificationsQuery(f models.NotificationFilter) (condStr string, params []interface{}) {
	if f.None {
		return "WHERE FALSE", nil
	}

	conditions := make([]string, 0, 4)
	params = make([]interface{}, 0, 4)

	next := func() string { return "$" + strconv.Itoa(len(params)) }

	switch {
	case f.Admin:
		params = append(params, f.UserId)
		conditions = append(conditions, "(user_id IS NULL OR user_id = "+next()+")")
	case f.Supplier:
		types := make([]int64, 0, len(f.Types))
		for _, t := range f.Types {
			types = append(types, int64(t))
		}
		params = append(params, pq.Array(types))
		conditions = append(conditions, "type = ANY("+next()+")")

		params = append(params, f.SupplierId)
		supCond := "supplier_id = " + next()
		params = append(params, f.UserId)
		conditions = append(conditions, "("+supCond+" OR (supplier_id IS NULL AND user_id = "+next()+"))")
	default:
		params = append(params, f.UserId)
		conditions = append(conditions, "user_id = "+next())
	}

	if f.UnreadOnly {
		conditions = append(conditions, "NOT is_read")
	}

	return "WHERE " + strings.Join(conditions, " AND "), params
}

func (repo *Repository) Notifications(ctx context.Context, f models.NotificationFilter, limit int) ([]models.Notification, error) {
	cond, params := prepNotificationsQuery(f)

	query := "SELECT " + notificationColumns + " FROM notifications " + cond +
		" ORDER BY created_at DESC LIMIT $" + strconv.Itoa(len(params)+1)
	params = append(params, limit)

	rows, err := repo.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.Notifications: %w", err)
	}
	defer rows.Close()

	var result []models.Notification
	var n models.Notification
	for rows.Next() {
		err = rows.Scan(&n.Id, &n.Title, &n.Message, &n.Type, &n.UserId,
			&n.RequestId, &n.OfferId, &n.SupplierId, &n.Read, &n.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("repository.Repository.Notifications: rows scan error: %w", err)
		}
		result = append(result, n)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("repository.Repository.Notifications: %w", rows.Err())
	}

	return result, nil
}

func (repo *Repository) NotificationCounts(ctx context.Context, f models.NotificationFilter) (total, unread int, err error) {
	cond, params := prepNotificationsQuery(f)

	query := "SELECT COUNT(*), COUNT(*) FILTER (WHERE NOT is_read) FROM notifications " + cond

	row := repo.db.QueryRowContext(ctx, query, params...)
	err = row.Scan(&total, &unread)
	if err != nil {
		return 0, 0, fmt.Errorf("repository.Repository.NotificationCounts: %w", err)
	}

	return total, unread, nil
}

// MarkNotificationRead is idempotent: an already-read id matches zero rows
// and that is fine.
func (repo *Repository) MarkNotificationRead(ctx context.Context, id int64) error {
	_, err := repo.db.ExecContext(ctx, "UPDATE notifications SET is_read = TRUE WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("repository.Repository.MarkNotificationRead: %w", err)
	}
	return nil
}

// MarkNotificationsRead marks the filter's entire visible set as read.
func (repo *Repository) MarkNotificationsRead(ctx context.Context, f models.NotificationFilter) error {
	cond, params := prepNotificationsQuery(f)

	_, err := repo.db.ExecContext(ctx, "UPDATE notifications SET is_read = TRUE "+cond, params...)
	if err != nil {
		return fmt.Errorf("repository.Repository.MarkNotificationsRead: %w", err)
	}
	return nil
}
