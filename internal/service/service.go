package service

import (
	"context"

	"github.com/rs/zerolog"

	"procurement/internal/filestore"
	"procurement/internal/models"
)

// Store is everything the service needs from persistence. Implemented by
// *repository.Repository; tests use an in-memory double.
type Store interface {
	UserByID(ctx context.Context, id int64) (models.User, bool, error)
	EmployeeByID(ctx context.Context, id int64) (models.Employee, bool, error)
	SiteByID(ctx context.Context, id int64) (models.Site, bool, error)
	SupplierByID(ctx context.Context, id int64) (models.Supplier, bool, error)
	SupplierByUserID(ctx context.Context, userId int64) (models.Supplier, bool, error)
	SuppliersByIDs(ctx context.Context, ids []int64) ([]models.Supplier, error)
	SetSupplierStatus(ctx context.Context, id int64, status models.SupplierStatus) (models.Supplier, error)

	AddRequest(ctx context.Context, req models.Request) (models.Request, error)
	RequestByID(ctx context.Context, id int64) (models.Request, bool, error)
	RequestsByIDs(ctx context.Context, ids []int64) ([]models.Request, error)
	Requests(ctx context.Context, limit, offset int, status models.RequestStatus, employeeId int64) ([]models.Request, error)
	TransitionRequest(ctx context.Context, id int64, to models.RequestStatus, from ...models.RequestStatus) (bool, error)
	TransitionRequests(ctx context.Context, ids []int64, to, from models.RequestStatus) (int64, error)
	SetRequestsStatus(ctx context.Context, ids []int64, to models.RequestStatus) (int64, error)
	DeleteRequests(ctx context.Context, ids []int64) (int64, error)

	AddOffer(ctx context.Context, offer models.Offer) (models.Offer, error)
	OfferByID(ctx context.Context, id int64) (models.Offer, bool, error)
	OffersByIDs(ctx context.Context, ids []int64) ([]models.Offer, error)
	OffersByRequest(ctx context.Context, requestId int64) ([]models.Offer, error)
	ApproveOffer(ctx context.Context, offerId int64) (models.OfferApprovedEvent, error)
	RejectOffer(ctx context.Context, offerId int64) (models.Offer, error)
	RejectOffers(ctx context.Context, ids []int64) (int64, error)

	AddExcelRequest(ctx context.Context, req models.ExcelRequest, supplierIds []int64) (models.ExcelRequest, error)
	ExcelRequestByID(ctx context.Context, id int64) (models.ExcelRequest, bool, error)
	ExcelAssignment(ctx context.Context, excelRequestId, supplierId int64) (models.ExcelRequestSupplier, bool, error)
	MarkExcelDownloaded(ctx context.Context, excelRequestId, supplierId int64) error
	AddSupplierExcelOffer(ctx context.Context, offer models.SupplierExcelOffer) (models.SupplierExcelOffer, models.ExcelRequestStatus, error)
	SupplierExcelOfferByID(ctx context.Context, id int64) (models.SupplierExcelOffer, bool, error)
	SupplierExcelOffers(ctx context.Context, excelRequestId int64) ([]models.SupplierExcelOffer, error)
	DeleteSupplierExcelOffer(ctx context.Context, id int64) (models.SupplierExcelOffer, models.ExcelRequestStatus, error)
	DeleteExcelRequest(ctx context.Context, id int64) (models.ExcelRequest, []models.SupplierExcelOffer, error)

	AddNotification(ctx context.Context, n models.Notification) (models.Notification, error)
	Notifications(ctx context.Context, f models.NotificationFilter, limit int) ([]models.Notification, error)
	NotificationCounts(ctx context.Context, f models.NotificationFilter) (total, unread int, err error)
	MarkNotificationRead(ctx context.Context, id int64) error
	MarkNotificationsRead(ctx context.Context, f models.NotificationFilter) error
}

// StoredFile mirrors filestore.StoredFile.
type StoredFile = filestore.StoredFile

// FileStore persists raw file bytes. Save validates extension and size
// before anything is written.
type FileStore interface {
	Save(data []byte, originalName, subdir string) (StoredFile, error)
	Get(storedName, subdir string) ([]byte, error)
	Delete(storedName, subdir string) error
}

// Pusher is the best-effort side channel (device push, email). Failures are
// the caller's to log; they never affect stored notifications.
type Pusher interface {
	Push(ctx context.Context, userId int64, title, message string) error
}

type Service struct {
	store Store
	files FileStore
	push  Pusher
	log   zerolog.Logger
}

func NewService(store Store, files FileStore, push Pusher, log zerolog.Logger) *Service {
	return &Service{store: store, files: files, push: push, log: log}
}

// notify appends one notification row and fires the push side channel.
// Failures are logged and swallowed: fan-out must never undo or block the
// state change that produced it.
func (s *Service) notify(ctx context.Context, n models.Notification) {
	stored, err := s.store.AddNotification(ctx, n)
	if err != nil {
		s.log.Warn().Err(err).Int("type", int(n.Type)).Msg("notification: failed to store")
		return
	}

	if s.push != nil && stored.UserId != nil {
		if err := s.push.Push(ctx, *stored.UserId, stored.Title, stored.Message); err != nil {
			s.log.Warn().Err(err).Int64("user_id", *stored.UserId).Msg("notification: push failed")
		}
	}
}

func ptr(v int64) *int64 {
	return &v
}
