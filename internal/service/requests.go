package service

import (
	"context"
	"fmt"

	"procurement/internal/models"
)

func (s *Service) CreateRequest(ctx context.Context, req models.Request) (models.Request, error) {
	empl, ok, err := s.store.EmployeeByID(ctx, req.EmployeeId)
	if err != nil {
		return req, fmt.Errorf("service.Service.CreateRequest: %w", err)
	}
	if !ok {
		return req, models.ErrNoEmployee
	}

	if req.SiteId == 0 {
		req.SiteId = empl.SiteId
	}
	_, ok, err = s.store.SiteByID(ctx, req.SiteId)
	if err != nil {
		return req, fmt.Errorf("service.Service.CreateRequest: %w", err)
	}
	if !ok {
		return req, models.ErrNoSite
	}

	req, err = s.store.AddRequest(ctx, req)
	if err != nil {
		return req, fmt.Errorf("service.Service.CreateRequest: %w", err)
	}

	s.notify(ctx, models.Notification{
		Title:     "New request",
		Message:   fmt.Sprintf("Request #%d: %s (x%d)", req.Id, req.Product, req.Quantity),
		Type:      models.NoticeNewRequest,
		RequestId: ptr(req.Id),
	})

	return req, nil
}

func (s *Service) RequestByID(ctx context.Context, id int64) (models.Request, error) {
	req, ok, err := s.store.RequestByID(ctx, id)
	if err != nil {
		return req, fmt.Errorf("service.Service.RequestByID: %w", err)
	}
	if !ok {
		return req, models.ErrNoRequest
	}
	return req, nil
}

func (s *Service) Requests(ctx context.Context, limit, offset int, status models.RequestStatus, employeeId int64) ([]models.Request, error) {
	requests, err := s.store.Requests(ctx, limit, offset, status, employeeId)
	if err != nil {
		return nil, fmt.Errorf("service.Service.Requests: %w", err)
	}
	return requests, nil
}

// CancelRequest moves an Open or InProgress request to Cancelled. Completed
// and Cancelled are terminal.
func (s *Service) CancelRequest(ctx context.Context, id int64) error {
	ok, err := s.store.TransitionRequest(ctx, id, models.RequestCancelled, models.RequestOpen, models.RequestInProgress)
	if err != nil {
		return fmt.Errorf("service.Service.CancelRequest: %w", err)
	}
	if ok {
		return nil
	}

	_, exists, err := s.store.RequestByID(ctx, id)
	if err != nil {
		return fmt.Errorf("service.Service.CancelRequest: %w", err)
	}
	if !exists {
		return models.ErrNoRequest
	}
	return models.ErrRequestFinalized
}

// BulkRequestAction applies one action to every matched request. Ids that
// match no row are silently skipped; only a fully unmatched list is an
// error. The returned count is the number of rows actually touched.
func (s *Service) BulkRequestAction(ctx context.Context, ids []int64, action models.BulkRequestAction) (int64, error) {
	if len(ids) == 0 {
		return 0, models.ErrEmptyIdList
	}

	matched, err := s.store.RequestsByIDs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("service.Service.BulkRequestAction: %w", err)
	}
	if len(matched) == 0 {
		return 0, models.ErrNoRequest
	}

	var n int64
	switch action {
	case models.BulkApprove:
		n, err = s.store.SetRequestsStatus(ctx, ids, models.RequestCompleted)
	case models.BulkInProgress:
		n, err = s.store.SetRequestsStatus(ctx, ids, models.RequestInProgress)
	case models.BulkDelete:
		n, err = s.store.DeleteRequests(ctx, ids)
	default:
		return 0, fmt.Errorf("service.Service.BulkRequestAction: unknown action %q", action)
	}
	if err != nil {
		return 0, fmt.Errorf("service.Service.BulkRequestAction: %w", err)
	}

	return n, nil
}

// SendRequestsToSuppliers validates the whole request and supplier sets up
// front, transitions every request Open -> InProgress, then fans out one
// notification per (request, supplier) pair. The fan-out is sequential and
// best-effort: a failed pair is logged and the loop moves on.
func (s *Service) SendRequestsToSuppliers(ctx context.Context, requestIds, supplierIds []int64) error {
	if len(requestIds) == 0 || len(supplierIds) == 0 {
		return models.ErrEmptyIdList
	}

	requests, err := s.store.RequestsByIDs(ctx, requestIds)
	if err != nil {
		return fmt.Errorf("service.Service.SendRequestsToSuppliers: %w", err)
	}
	if len(requests) != len(uniqueIds(requestIds)) {
		return fmt.Errorf("service.Service.SendRequestsToSuppliers: requests %v: %w", requestIds, models.ErrUnknownIds)
	}

	var notOpen []int64
	for _, req := range requests {
		if req.Status != models.RequestOpen {
			notOpen = append(notOpen, req.Id)
		}
	}
	if len(notOpen) > 0 {
		return fmt.Errorf("service.Service.SendRequestsToSuppliers: requests %v: %w", notOpen, models.ErrRequestNotOpen)
	}

	suppliers, err := s.approvedSuppliers(ctx, supplierIds)
	if err != nil {
		return fmt.Errorf("service.Service.SendRequestsToSuppliers: %w", err)
	}

	// The Open check above ran against rows read earlier; the write re-checks
	// it in the UPDATE predicate so a request cancelled in between is not
	// dragged back to InProgress.
	n, err := s.store.TransitionRequests(ctx, requestIds, models.RequestInProgress, models.RequestOpen)
	if err != nil {
		return fmt.Errorf("service.Service.SendRequestsToSuppliers: %w", err)
	}
	if n != int64(len(requests)) {
		return fmt.Errorf("service.Service.SendRequestsToSuppliers: requests %v: %w", requestIds, models.ErrRequestNotOpen)
	}

	for _, req := range requests {
		for _, sup := range suppliers {
			s.notify(ctx, models.Notification{
				Title:      "Request available",
				Message:    fmt.Sprintf("Request #%d (%s) is open for offers", req.Id, req.Product),
				Type:       models.NoticeRequestSentToSupplier,
				UserId:     ptr(sup.UserId),
				RequestId:  ptr(req.Id),
				SupplierId: ptr(sup.Id),
			})
		}
	}

	return nil
}

// approvedSuppliers resolves an id set and requires every id to exist and be
// approved. Validation is all-or-nothing.
func (s *Service) approvedSuppliers(ctx context.Context, ids []int64) ([]models.Supplier, error) {
	suppliers, err := s.store.SuppliersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(suppliers) != len(uniqueIds(ids)) {
		return nil, fmt.Errorf("suppliers %v: %w", ids, models.ErrUnknownIds)
	}

	for _, sup := range suppliers {
		if sup.Status != models.SupplierApproved {
			return nil, fmt.Errorf("supplier %d: %w", sup.Id, models.ErrSupplierNotReady)
		}
	}

	return suppliers, nil
}

func uniqueIds(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	result := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			result = append(result, id)
		}
	}
	return result
}
