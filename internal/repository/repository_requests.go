package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"procurement/internal/models"

	"github.com/lib/pq"
)

const requestColumns = "id, product, quantity, delivery_type, description, status, employee_id, site_id, requested_at"

func (repo *Repository) AddRequest(ctx context.Context, req models.Request) (models.Request, error) {
	query := `
	INSERT INTO requests (product, quantity, delivery_type, description, status, employee_id, site_id)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING id, status, requested_at
	`

	row := repo.db.QueryRowContext(ctx, query,
		req.Product, req.Quantity, req.DeliveryType, req.Description, models.RequestOpen, req.EmployeeId, req.SiteId)
	err := row.Scan(&req.Id, &req.Status, &req.RequestedAt)
	if err != nil {
		return req, fmt.Errorf("repository.Repository.AddRequest: %w", err)
	}

	return req, nil
}

func (repo *Repository) RequestByID(ctx context.Context, id int64) (models.Request, bool, error) {
	query := "SELECT " + requestColumns + " FROM requests WHERE id = $1"
	req, err := scanRequest(repo.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return req, false, nil
	} else if err != nil {
		return req, false, fmt.Errorf("repository.Repository.RequestByID: %w", err)
	}

	return req, true, nil
}

func (repo *Repository) RequestsByIDs(ctx context.Context, ids []int64) ([]models.Request, error) {
	query := "SELECT " + requestColumns + " FROM requests WHERE id = ANY($1) ORDER BY id"

	rows, err := repo.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.RequestsByIDs: %w", err)
	}
	defer rows.Close()

	var result []models.Request
	for rows.Next() {
		req, err := scanRequestRows(rows)
		if err != nil {
			return nil, fmt.Errorf("repository.Repository.RequestsByIDs: %w", err)
		}
		result = append(result, req)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("repository.Repository.RequestsByIDs: %w", rows.Err())
	}

	return result, nil
}

func (repo *Repository) Requests(ctx context.Context, limit, offset int, status models.RequestStatus, employeeId int64) ([]models.Request, error) {
	query := "SELECT " + requestColumns + ` FROM requests
	WHERE ($3 = 0 OR status = $3) AND ($4 = 0 OR employee_id = $4)
	ORDER BY requested_at DESC
	LIMIT $1 OFFSET $2
	`

	var lim interface{}
	if limit > 0 {
		lim = limit
	}

	rows, err := repo.db.QueryContext(ctx, query, lim, offset, int(status), employeeId)
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.Requests: %w", err)
	}
	defer rows.Close()

	var result []models.Request
	for rows.Next() {
		req, err := scanRequestRows(rows)
		if err != nil {
			return nil, fmt.Errorf("repository.Repository.Requests: %w", err)
		}
		result = append(result, req)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("repository.Repository.Requests: %w", rows.Err())
	}

	return result, nil
}

// TransitionRequest conditionally moves a request to a new status. The
// allowed source states are part of the UPDATE predicate, so the check and
// the write are one statement against the latest persisted state.
func (repo *Repository) TransitionRequest(ctx context.Context, id int64, to models.RequestStatus, from ...models.RequestStatus) (bool, error) {
	query := `
	UPDATE requests
	SET status = $2
	WHERE id = $1 AND status = ANY($3)
	`

	states := make([]int64, 0, len(from))
	for _, s := range from {
		states = append(states, int64(s))
	}

	res, err := repo.db.ExecContext(ctx, query, id, to, pq.Array(states))
	if err != nil {
		return false, fmt.Errorf("repository.Repository.TransitionRequest: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("repository.Repository.TransitionRequest: %w", err)
	}
	return n > 0, nil
}

// TransitionRequests is the multi-id form of TransitionRequest: the source
// status is part of the UPDATE predicate, so rows that left it since being
// read are untouched. Returns the number of rows actually moved.
func (repo *Repository) TransitionRequests(ctx context.Context, ids []int64, to, from models.RequestStatus) (int64, error) {
	query := "UPDATE requests SET status = $2 WHERE id = ANY($1) AND status = $3"

	res, err := repo.db.ExecContext(ctx, query, pq.Array(ids), to, from)
	if err != nil {
		return 0, fmt.Errorf("repository.Repository.TransitionRequests: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("repository.Repository.TransitionRequests: %w", err)
	}
	return n, nil
}

// SetRequestsStatus applies a status to every matched id; missing ids are
// silently ignored. Returns the number of rows actually changed.
func (repo *Repository) SetRequestsStatus(ctx context.Context, ids []int64, to models.RequestStatus) (int64, error) {
	res, err := repo.db.ExecContext(ctx, "UPDATE requests SET status = $2 WHERE id = ANY($1)", pq.Array(ids), to)
	if err != nil {
		return 0, fmt.Errorf("repository.Repository.SetRequestsStatus: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("repository.Repository.SetRequestsStatus: %w", err)
	}
	return n, nil
}

// DeleteRequests removes the matched rows; offers cascade on the foreign key.
func (repo *Repository) DeleteRequests(ctx context.Context, ids []int64) (int64, error) {
	res, err := repo.db.ExecContext(ctx, "DELETE FROM requests WHERE id = ANY($1)", pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("repository.Repository.DeleteRequests: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("repository.Repository.DeleteRequests: %w", err)
	}
	return n, nil
}

func scanRequest(row *sql.Row) (models.Request, error) {
	var req models.Request
	err := row.Scan(&req.Id, &req.Product, &req.Quantity, &req.DeliveryType, &req.Description,
		&req.Status, &req.EmployeeId, &req.SiteId, &req.RequestedAt)
	return req, err
}

func scanRequestRows(rows *sql.Rows) (models.Request, error) {
	var req models.Request
	err := rows.Scan(&req.Id, &req.Product, &req.Quantity, &req.DeliveryType, &req.Description,
		&req.Status, &req.EmployeeId, &req.SiteId, &req.RequestedAt)
	if err != nil {
		return req, fmt.Errorf("rows scan error: %w", err)
	}
	return req, nil
}
