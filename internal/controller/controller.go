package controller

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"procurement/internal/models"
	"procurement/internal/service"
)

type Service interface {
	CreateRequest(ctx context.Context, req models.Request) (models.Request, error)
	RequestByID(ctx context.Context, id int64) (models.Request, error)
	Requests(ctx context.Context, limit, offset int, status models.RequestStatus, employeeId int64) ([]models.Request, error)
	CancelRequest(ctx context.Context, id int64) error
	BulkRequestAction(ctx context.Context, ids []int64, action models.BulkRequestAction) (int64, error)
	SendRequestsToSuppliers(ctx context.Context, requestIds, supplierIds []int64) error

	CreateOffer(ctx context.Context, userId int64, offer models.Offer) (models.Offer, error)
	RequestOffers(ctx context.Context, requestId int64) ([]models.Offer, error)
	ApproveOffer(ctx context.Context, offerId int64) (models.OfferApprovedEvent, error)
	RejectOffer(ctx context.Context, offerId int64) (models.Offer, error)
	WithdrawOffer(ctx context.Context, userId, offerId int64) (models.Offer, error)
	BulkRejectOffers(ctx context.Context, ids []int64) (int64, error)

	ApproveSupplier(ctx context.Context, id int64) (models.Supplier, error)
	RejectSupplier(ctx context.Context, id int64) (models.Supplier, error)

	CreateExcelRequest(ctx context.Context, in service.CreateExcelInput) (models.ExcelRequest, error)
	ExcelRequestByID(ctx context.Context, id int64) (models.ExcelRequest, error)
	ExcelRequestOffers(ctx context.Context, excelRequestId int64) ([]models.SupplierExcelOffer, error)
	DownloadExcelFile(ctx context.Context, userId, excelRequestId int64) ([]byte, models.ExcelRequest, error)
	UploadSupplierOffer(ctx context.Context, userId, excelRequestId int64, fileName string, data []byte) (models.SupplierExcelOffer, models.ExcelRequestStatus, error)
	DownloadSupplierOffer(ctx context.Context, offerId int64) ([]byte, models.SupplierExcelOffer, error)
	DeleteSupplierOffer(ctx context.Context, offerId int64) (models.ExcelRequestStatus, error)
	DeleteExcelRequest(ctx context.Context, id int64) error

	ResolveIdentity(ctx context.Context, userId int64) (models.Identity, error)
	Notifications(ctx context.Context, identity models.Identity) ([]models.Notification, error)
	NotificationSummary(ctx context.Context, identity models.Identity) (models.NotificationSummary, error)
	MarkNotificationRead(ctx context.Context, id int64) error
	MarkAllNotificationsRead(ctx context.Context, identity models.Identity) error
}

type Controller struct {
	service Service
	log     zerolog.Logger
}

func NewController(service Service, log zerolog.Logger) *Controller {
	return &Controller{service: service, log: log}
}

// GET /api/ping
func (c *Controller) Ping(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

//// Service

type ErrorResponse struct {
	Reason string `json:"reason"`
}

func (c *Controller) errorResponse(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	data, err := json.Marshal(ErrorResponse{Reason: text})
	if err != nil {
		c.log.Error().Err(err).Msg("controller: could not marshal error response")
		return
	}
	w.Write(data)
}

func (c *Controller) serviceErrorResponse(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNoRequest),
		errors.Is(err, models.ErrNoOffer),
		errors.Is(err, models.ErrNoExcelRequest),
		errors.Is(err, models.ErrNoAssignment),
		errors.Is(err, models.ErrNoSupplier),
		errors.Is(err, models.ErrNoEmployee),
		errors.Is(err, models.ErrNoSite):
		c.errorResponse(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrForbidden):
		c.errorResponse(w, http.StatusForbidden, "caller has no permission for requested action")
	case errors.Is(err, models.ErrRequestFinalized),
		errors.Is(err, models.ErrOfferFinalized),
		errors.Is(err, models.ErrSupplierFinalized),
		errors.Is(err, models.ErrRequestNotOpen),
		errors.Is(err, models.ErrSupplierNotReady),
		errors.Is(err, models.ErrDuplicateOffer),
		errors.Is(err, models.ErrUnknownIds),
		errors.Is(err, models.ErrEmptyIdList),
		errors.Is(err, models.ErrFileTooLarge),
		errors.Is(err, models.ErrFileType):
		c.errorResponse(w, http.StatusBadRequest, err.Error())
	default:
		c.log.Error().Err(err).Msg("controller: unexpected service error")
		c.errorResponse(w, http.StatusInternalServerError, "internal server error")
	}
}

func (c *Controller) marshalResponse(w http.ResponseWriter, data any) {
	d, err := json.Marshal(data)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not marshal response data")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(d)
}

func (c *Controller) readBody(src io.ReadCloser) ([]byte, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	src.Close()
	return data, nil
}

func (c *Controller) pathInt64(r *http.Request, key string) (int64, bool) {
	val, err := strconv.ParseInt(r.PathValue(key), 10, 64)
	return val, err == nil && val > 0
}

// Query integers are counts and ids throughout, so negatives are rejected
// here rather than passed down to SQL.
func (c *Controller) getQueryInt(query url.Values, key string) (int, error) {
	strs, ok := query[key]
	if !ok || len(strs) == 0 {
		return 0, nil
	}
	val, err := strconv.Atoi(strs[0])
	if err != nil {
		return 0, err
	}
	if val < 0 {
		return 0, errors.New("negative value")
	}
	return val, nil
}

func (c *Controller) getQueryInt64(query url.Values, key string) (int64, error) {
	strs, ok := query[key]
	if !ok || len(strs) == 0 {
		return 0, nil
	}
	val, err := strconv.ParseInt(strs[0], 10, 64)
	if err != nil {
		return 0, err
	}
	if val < 0 {
		return 0, errors.New("negative value")
	}
	return val, nil
}

// callerId reads the caller's declared user id from the userId query
// parameter.
func (c *Controller) callerId(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := c.getQueryInt64(r.URL.Query(), "userId")
	if err != nil || id <= 0 {
		c.errorResponse(w, http.StatusBadRequest, "missing or invalid 'userId' query parameter")
		return 0, false
	}
	return id, true
}

func parseIdList(str string) ([]int64, error) {
	parts := strings.Split(str, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
