package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"procurement/internal/config"
	"procurement/internal/models"

	"github.com/lib/pq"

	postgres "procurement/internal/repository/db"
)

type Repository struct {
	db  *sql.DB
	cfg *config.PostgresConfig
}

func NewRepository(db *sql.DB, cfg *config.PostgresConfig) (*Repository, error) {
	var err error

	repo := &Repository{
		db:  db,
		cfg: cfg,
	}

	if repo.cfg == nil {
		repo.cfg, err = config.NewPostgresConfig()
		if err != nil {
			return nil, fmt.Errorf("repository.NewRepository: could not load postgres config: %w", err)
		}
	}

	if repo.db == nil {
		repo.db, err = postgres.NewPostgresDB(repo.cfg)
		if err != nil {
			return nil, fmt.Errorf("repository.NewRepository: could not open postgres db: %w", err)
		}
	}

	if repo.cfg.AutoMigrateUp == "true" {
		err = repo.MigrateUp()
		if err != nil {
			return nil, err
		}
	}

	return repo, nil
}

func (repo *Repository) MigrateUp() error {
	err := postgres.MigrateUp(repo.db)
	if err != nil {
		return fmt.Errorf("repository.Repository.MigrateUp: %w", err)
	}
	return nil
}

func (repo *Repository) MigrateDown() error {
	err := postgres.MigrateDown(repo.db)
	if err != nil {
		return fmt.Errorf("repository.Repository.MigrateDown: %w", err)
	}
	return nil
}

func (repo *Repository) Close() error {
	var migErr error
	if repo.cfg.AutoMigrateDown == "true" {
		migErr = repo.MigrateDown()
	}

	err := repo.db.Close()
	return errors.Join(migErr, err)
}

//// Reference entities

func (repo *Repository) UserByID(ctx context.Context, id int64) (models.User, bool, error) {
	var user models.User
	query := `
	SELECT id, username, full_name, role, created_at
	FROM users
	WHERE id = $1
	`
	row := repo.db.QueryRowContext(ctx, query, id)
	err := row.Scan(&user.Id, &user.Username, &user.FullName, &user.Role, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return user, false, nil
	} else if err != nil {
		return user, false, fmt.Errorf("repository.Repository.UserByID: %w", err)
	}

	return user, true, nil
}

func (repo *Repository) EmployeeByID(ctx context.Context, id int64) (models.Employee, bool, error) {
	var empl models.Employee
	query := `
	SELECT id, user_id, site_id, created_at
	FROM employees
	WHERE id = $1
	`
	row := repo.db.QueryRowContext(ctx, query, id)
	err := row.Scan(&empl.Id, &empl.UserId, &empl.SiteId, &empl.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return empl, false, nil
	} else if err != nil {
		return empl, false, fmt.Errorf("repository.Repository.EmployeeByID: %w", err)
	}

	return empl, true, nil
}

func (repo *Repository) SiteByID(ctx context.Context, id int64) (models.Site, bool, error) {
	var site models.Site
	row := repo.db.QueryRowContext(ctx, "SELECT id, name, created_at FROM sites WHERE id = $1", id)
	err := row.Scan(&site.Id, &site.Name, &site.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return site, false, nil
	} else if err != nil {
		return site, false, fmt.Errorf("repository.Repository.SiteByID: %w", err)
	}

	return site, true, nil
}

const supplierColumns = "id, user_id, company_name, brand, status, created_at"

func (repo *Repository) SupplierByID(ctx context.Context, id int64) (models.Supplier, bool, error) {
	query := "SELECT " + supplierColumns + " FROM suppliers WHERE id = $1"
	return repo.scanSupplier(repo.db.QueryRowContext(ctx, query, id))
}

func (repo *Repository) SupplierByUserID(ctx context.Context, userId int64) (models.Supplier, bool, error) {
	query := "SELECT " + supplierColumns + " FROM suppliers WHERE user_id = $1"
	return repo.scanSupplier(repo.db.QueryRowContext(ctx, query, userId))
}

func (repo *Repository) scanSupplier(row *sql.Row) (models.Supplier, bool, error) {
	var sup models.Supplier
	err := row.Scan(&sup.Id, &sup.UserId, &sup.CompanyName, &sup.Brand, &sup.Status, &sup.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return sup, false, nil
	} else if err != nil {
		return sup, false, fmt.Errorf("repository.supplier scan: %w", err)
	}

	return sup, true, nil
}

func (repo *Repository) SuppliersByIDs(ctx context.Context, ids []int64) ([]models.Supplier, error) {
	query := "SELECT " + supplierColumns + " FROM suppliers WHERE id = ANY($1)"

	rows, err := repo.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("repository.Repository.SuppliersByIDs: %w", err)
	}
	defer rows.Close()

	var result []models.Supplier
	var sup models.Supplier
	for rows.Next() {
		err = rows.Scan(&sup.Id, &sup.UserId, &sup.CompanyName, &sup.Brand, &sup.Status, &sup.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("repository.Repository.SuppliersByIDs: rows scan error: %w", err)
		}
		result = append(result, sup)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("repository.Repository.SuppliersByIDs: %w", rows.Err())
	}

	return result, nil
}

// SetSupplierStatus performs the Pending -> Approved/Rejected transition. The
// precondition is checked in the UPDATE itself so a finalized supplier is
// never flipped twice.
func (repo *Repository) SetSupplierStatus(ctx context.Context, id int64, status models.SupplierStatus) (models.Supplier, error) {
	query := `
	UPDATE suppliers
	SET status = $2
	WHERE id = $1 AND status = $3
	RETURNING ` + supplierColumns

	row := repo.db.QueryRowContext(ctx, query, id, status, models.SupplierPending)
	sup, ok, err := repo.scanSupplier(row)
	if err != nil {
		return sup, fmt.Errorf("repository.Repository.SetSupplierStatus: %w", err)
	}
	if !ok {
		// Distinguish a missing supplier from a finalized one.
		_, exists, err := repo.SupplierByID(ctx, id)
		if err != nil {
			return sup, fmt.Errorf("repository.Repository.SetSupplierStatus: %w", err)
		}
		if !exists {
			return sup, models.ErrNoSupplier
		}
		return sup, models.ErrSupplierFinalized
	}

	return sup, nil
}

//// Service

func wrapRollbackErr(tx *sql.Tx, err error) error {
	rollerr := tx.Rollback()
	if rollerr == nil {
		return err
	}
	return fmt.Errorf("failed to rollback transaction after previous error: %w, %w", rollerr, err)
}

//// Test utils

func (repo *Repository) TestGetDB() *sql.DB {
	return repo.db
}
