package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"procurement/internal/models"
)

const excelColumns = "id, site_id, employee_id, original_name, stored_name, file_size, status, description, uploaded_at"

// AddExcelRequest inserts the excel request and one assignment row per
// supplier as a single transaction.
func (repo *Repository) AddExcelRequest(ctx context.Context, req models.ExcelRequest, supplierIds []int64) (models.ExcelRequest, error) {
	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return req, fmt.Errorf("repository.Repository.AddExcelRequest: failed to start transaction: %w", err)
	}

	insert := `
	INSERT INTO excel_requests (site_id, employee_id, original_name, stored_name, file_size, status, description)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING id, status, uploaded_at
	`

	row := tx.QueryRowContext(ctx, insert,
		req.SiteId, req.EmployeeId, req.OriginalName, req.StoredName, req.FileSize, models.ExcelAssigned, req.Description)
	err = row.Scan(&req.Id, &req.Status, &req.UploadedAt)
	if err != nil {
		return req, fmt.Errorf("repository.Repository.AddExcelRequest: %w", wrapRollbackErr(tx, err))
	}

	assign := "INSERT INTO excel_request_suppliers (excel_request_id, supplier_id) VALUES ($1, $2)"
	for _, supplierId := range supplierIds {
		_, err = tx.ExecContext(ctx, assign, req.Id, supplierId)
		if err != nil {
			return req, fmt.Errorf("repository.Repository.AddExcelRequest: %w", wrapRollbackErr(tx, err))
		}
	}

	err = tx.Commit()
	if err != nil {
		return req, fmt.Errorf("repository.Repository.AddExcelRequest: failed to commit transaction: %w", err)
	}

	return req, nil
}

func (repo *Repository) ExcelRequestByID(ctx context.Context, id int64) (models.ExcelRequest, bool, error) {
	var req models.ExcelRequest
	query := "SELECT " + excelColumns + " FROM excel_requests WHERE id = $1"
	row := repo.db.QueryRowContext(ctx, query, id)
	err := row.Scan(&req.Id, &req.SiteId, &req.EmployeeId, &req.OriginalName, &req.StoredName,
		&req.FileSize, &req.Status, &req.Description, &req.UploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return req, false, nil
	} else if err != nil {
		return req, false, fmt.Errorf("repository.Repository.ExcelRequestByID: %w", err)
	}

	return req, true, nil
}

func (repo *Repository) ExcelAssignment(ctx context.Context, excelRequestId, supplierId int64) (models.ExcelRequestSupplier, bool, error) {
	var a models.ExcelRequestSupplier
	query := `
	SELECT id, excel_request_id, supplier_id, assigned_at, downloaded, downloaded_at, offer_uploaded, offer_uploaded_at
	FROM excel_request_suppliers
	WHERE excel_request_id = $1 AND supplier_id = $2
	`
	row := repo.db.QueryRowContext(ctx, query, excelRequestId, supplierId)
	err := row.Scan(&a.Id, &a.ExcelRequestId, &a.SupplierId, &a.AssignedAt,
		&a.Downloaded, &a.DownloadedAt, &a.OfferUploaded, &a.OfferUploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return a, false, nil
	} else if err != nil {
		return a, false, fmt.Errorf("repository.Repository.ExcelAssignment: %w", err)
	}

	return a, true, nil
}

// MarkExcelDownloaded flips the downloaded flag once. Repeated downloads are
// no-ops: the predicate only matches rows that have not been flagged yet.
func (repo *Repository) MarkExcelDownloaded(ctx context.Context, excelRequestId, supplierId int64) error {
	query := `
	UPDATE excel_request_suppliers
	SET downloaded = TRUE, downloaded_at = CURRENT_TIMESTAMP
	WHERE excel_request_id = $1 AND supplier_id = $2 AND NOT downloaded
	`

	_, err := repo.db.ExecContext(ctx, query, excelRequestId, supplierId)
	if err != nil {
		return fmt.Errorf("repository.Repository.MarkExcelDownloaded: %w", err)
	}
	return nil
}

// AddSupplierExcelOffer inserts the offer row, flags the assignment and
// recomputes the parent status from the fresh counts, all in one
// transaction. Returns the stored offer and the derived parent status.
func (repo *Repository) AddSupplierExcelOffer(ctx context.Context, offer models.SupplierExcelOffer) (models.SupplierExcelOffer, models.ExcelRequestStatus, error) {
	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return offer, 0, fmt.Errorf("repository.Repository.AddSupplierExcelOffer: failed to start transaction: %w", err)
	}

	insert := `
	INSERT INTO supplier_excel_offers (excel_request_id, supplier_id, original_name, stored_name, file_size)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id, uploaded_at
	`

	row := tx.QueryRowContext(ctx, insert,
		offer.ExcelRequestId, offer.SupplierId, offer.OriginalName, offer.StoredName, offer.FileSize)
	err = row.Scan(&offer.Id, &offer.UploadedAt)
	if err != nil {
		return offer, 0, fmt.Errorf("repository.Repository.AddSupplierExcelOffer: %w", wrapRollbackErr(tx, err))
	}

	flag := `
	UPDATE excel_request_suppliers
	SET offer_uploaded = TRUE, offer_uploaded_at = CURRENT_TIMESTAMP
	WHERE excel_request_id = $1 AND supplier_id = $2 AND NOT offer_uploaded
	`
	_, err = tx.ExecContext(ctx, flag, offer.ExcelRequestId, offer.SupplierId)
	if err != nil {
		return offer, 0, fmt.Errorf("repository.Repository.AddSupplierExcelOffer: %w", wrapRollbackErr(tx, err))
	}

	status, err := repo.recomputeExcelStatus(ctx, tx, offer.ExcelRequestId)
	if err != nil {
		return offer, 0, fmt.Errorf("repository.Repository.AddSupplierExcelOffer: %w", wrapRollbackErr(tx, err))
	}

	err = tx.Commit()
	if err != nil {
		return offer, 0, fmt.Errorf("repository.Repository.AddSupplierExcelOffer: failed to commit transaction: %w", err)
	}

	return offer, status, nil
}

func (repo *Repository) SupplierExcelOfferByID(ctx context.Context, id int64) (models.SupplierExcelOffer, bool, error) {
	var offer models.SupplierExcelOffer
	query := `
	SELECT id, excel_request_id, supplier_id, original_name, stored_name, file_size, uploaded_at
	FROM supplier_excel_offers
	WHERE id = $1
	`
	row := repo.db.QueryRowContext(ctx, query, id)
	err := row.Scan(&offer.Id, &offer.ExcelRequestId, &offer.SupplierId,
		&offer.OriginalName, &offer.StoredName, &offer.FileSize, &offer.UploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return offer, false, nil
	} else if err != nil {
		return offer, false, fmt.Errorf("repository.Repository.SupplierExcelOfferByID: %w", err)
	}

	return offer, true, nil
}

func (repo *Repository) SupplierExcelOffers(ctx context.Context, excelRequestId int64) ([]models.SupplierExcelOffer, error) {
	query := `
	SELECT id, excel_request_id, supplier_id, original_name, stored_name, file_size, uploaded_at
	FROM supplier_excel_offers
	WHERE excel_request_id = $1
	ORDER BY uploaded_at
	`

	rows, err := repo.db.QueryContext(ctx, query, excelRequestId)
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.SupplierExcelOffers: %w", err)
	}
	defer rows.Close()

	var result []models.SupplierExcelOffer
	var offer models.SupplierExcelOffer
	for rows.Next() {
		err = rows.Scan(&offer.Id, &offer.ExcelRequestId, &offer.SupplierId,
			&offer.OriginalName, &offer.StoredName, &offer.FileSize, &offer.UploadedAt)
		if err != nil {
			return nil, fmt.Errorf("repository.Repository.SupplierExcelOffers: rows scan error: %w", err)
		}
		result = append(result, offer)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("repository.Repository.SupplierExcelOffers: %w", rows.Err())
	}

	return result, nil
}

// DeleteSupplierExcelOffer removes the offer row and recomputes the parent
// status in the same transaction, so a Completed excel request falls back to
// InProgress the moment an offer disappears. The deleted row is returned for
// file cleanup by the caller.
func (repo *Repository) DeleteSupplierExcelOffer(ctx context.Context, id int64) (models.SupplierExcelOffer, models.ExcelRequestStatus, error) {
	var offer models.SupplierExcelOffer

	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return offer, 0, fmt.Errorf("repository.Repository.DeleteSupplierExcelOffer: failed to start transaction: %w", err)
	}

	del := `
	DELETE FROM supplier_excel_offers
	WHERE id = $1
	RETURNING id, excel_request_id, supplier_id, original_name, stored_name, file_size, uploaded_at
	`

	row := tx.QueryRowContext(ctx, del, id)
	err = row.Scan(&offer.Id, &offer.ExcelRequestId, &offer.SupplierId,
		&offer.OriginalName, &offer.StoredName, &offer.FileSize, &offer.UploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		tx.Rollback()
		return offer, 0, models.ErrNoOffer
	} else if err != nil {
		return offer, 0, fmt.Errorf("repository.Repository.DeleteSupplierExcelOffer: %w", wrapRollbackErr(tx, err))
	}

	// The assignment flag follows the remaining offers of this supplier.
	reflag := `
	UPDATE excel_request_suppliers
	SET offer_uploaded = EXISTS (
		SELECT 1 FROM supplier_excel_offers
		WHERE excel_request_id = $1 AND supplier_id = $2
	)
	WHERE excel_request_id = $1 AND supplier_id = $2
	`
	_, err = tx.ExecContext(ctx, reflag, offer.ExcelRequestId, offer.SupplierId)
	if err != nil {
		return offer, 0, fmt.Errorf("repository.Repository.DeleteSupplierExcelOffer: %w", wrapRollbackErr(tx, err))
	}

	status, err := repo.recomputeExcelStatus(ctx, tx, offer.ExcelRequestId)
	if err != nil {
		return offer, 0, fmt.Errorf("repository.Repository.DeleteSupplierExcelOffer: %w", wrapRollbackErr(tx, err))
	}

	err = tx.Commit()
	if err != nil {
		return offer, 0, fmt.Errorf("repository.Repository.DeleteSupplierExcelOffer: failed to commit transaction: %w", err)
	}

	return offer, status, nil
}

// DeleteExcelRequest removes the excel request; assignments and offers
// cascade. The deleted request and its offer rows are returned so the caller
// can remove the stored files.
func (repo *Repository) DeleteExcelRequest(ctx context.Context, id int64) (models.ExcelRequest, []models.SupplierExcelOffer, error) {
	req, ok, err := repo.ExcelRequestByID(ctx, id)
	if err != nil {
		return req, nil, fmt.Errorf("repository.Repository.DeleteExcelRequest: %w", err)
	}
	if !ok {
		return req, nil, models.ErrNoExcelRequest
	}

	offers, err := repo.SupplierExcelOffers(ctx, id)
	if err != nil {
		return req, nil, fmt.Errorf("repository.Repository.DeleteExcelRequest: %w", err)
	}

	_, err = repo.db.ExecContext(ctx, "DELETE FROM excel_requests WHERE id = $1", id)
	if err != nil {
		return req, nil, fmt.Errorf("repository.Repository.DeleteExcelRequest: %w", err)
	}

	return req, offers, nil
}

// recomputeExcelStatus derives the parent status from the counts as they
// stand inside the transaction.
func (repo *Repository) recomputeExcelStatus(ctx context.Context, tx *sql.Tx, excelRequestId int64) (models.ExcelRequestStatus, error) {
	counts := `
	SELECT
		(SELECT COUNT(*) FROM excel_request_suppliers WHERE excel_request_id = $1),
		(SELECT COUNT(*) FROM supplier_excel_offers WHERE excel_request_id = $1)
	`

	var assigned, uploaded int
	err := tx.QueryRowContext(ctx, counts, excelRequestId).Scan(&assigned, &uploaded)
	if err != nil {
		return 0, fmt.Errorf("recomputeExcelStatus: %w", err)
	}

	status := models.DeriveExcelStatus(assigned, uploaded)
	_, err = tx.ExecContext(ctx, "UPDATE excel_requests SET status = $2 WHERE id = $1", excelRequestId, status)
	if err != nil {
		return 0, fmt.Errorf("recomputeExcelStatus: %w", err)
	}

	return status, nil
}
