package service

import (
	"context"
	"fmt"

	"procurement/internal/models"
)

const (
	excelRequestDir = "excel-requests"
	excelOfferDir   = "excel-offers"
)

// CreateExcelInput carries one uploaded spreadsheet and its fan-out targets.
type CreateExcelInput struct {
	SiteId      int64
	EmployeeId  int64
	SupplierIds []int64
	Description string
	FileName    string
	Data        []byte
}

// CreateExcelRequest validates the whole supplier set, stores the file, and
// creates the excel request with one assignment row per supplier. The file
// is rejected (type, size) before any metadata row exists.
func (s *Service) CreateExcelRequest(ctx context.Context, in CreateExcelInput) (models.ExcelRequest, error) {
	var req models.ExcelRequest

	_, ok, err := s.store.SiteByID(ctx, in.SiteId)
	if err != nil {
		return req, fmt.Errorf("service.Service.CreateExcelRequest: %w", err)
	}
	if !ok {
		return req, models.ErrNoSite
	}

	_, ok, err = s.store.EmployeeByID(ctx, in.EmployeeId)
	if err != nil {
		return req, fmt.Errorf("service.Service.CreateExcelRequest: %w", err)
	}
	if !ok {
		return req, models.ErrNoEmployee
	}

	if len(in.SupplierIds) == 0 {
		return req, models.ErrEmptyIdList
	}
	suppliers, err := s.approvedSuppliers(ctx, in.SupplierIds)
	if err != nil {
		return req, fmt.Errorf("service.Service.CreateExcelRequest: %w", err)
	}

	stored, err := s.files.Save(in.Data, in.FileName, excelRequestDir)
	if err != nil {
		return req, fmt.Errorf("service.Service.CreateExcelRequest: %w", err)
	}

	req, err = s.store.AddExcelRequest(ctx, models.ExcelRequest{
		SiteId:       in.SiteId,
		EmployeeId:   in.EmployeeId,
		OriginalName: in.FileName,
		StoredName:   stored.Name,
		FileSize:     stored.Size,
		Description:  in.Description,
	}, in.SupplierIds)
	if err != nil {
		if delErr := s.files.Delete(stored.Name, excelRequestDir); delErr != nil {
			s.log.Warn().Err(delErr).Str("file", stored.Name).Msg("excel: orphan file cleanup failed")
		}
		return req, fmt.Errorf("service.Service.CreateExcelRequest: %w", err)
	}

	for _, sup := range suppliers {
		s.notify(ctx, models.Notification{
			Title:      "Excel request assigned",
			Message:    fmt.Sprintf("Excel request #%d (%s) was assigned to you", req.Id, req.OriginalName),
			Type:       models.NoticeExcelRequestAssigned,
			UserId:     ptr(sup.UserId),
			RequestId:  ptr(req.Id),
			SupplierId: ptr(sup.Id),
		})
	}

	return req, nil
}

func (s *Service) ExcelRequestByID(ctx context.Context, id int64) (models.ExcelRequest, error) {
	req, ok, err := s.store.ExcelRequestByID(ctx, id)
	if err != nil {
		return req, fmt.Errorf("service.Service.ExcelRequestByID: %w", err)
	}
	if !ok {
		return req, models.ErrNoExcelRequest
	}
	return req, nil
}

// DownloadExcelFile serves the request's spreadsheet. For supplier callers
// the first successful download flips the assignment's downloaded flag;
// later downloads leave it untouched. Suppliers may only download requests
// they were assigned.
func (s *Service) DownloadExcelFile(ctx context.Context, userId, excelRequestId int64) ([]byte, models.ExcelRequest, error) {
	req, ok, err := s.store.ExcelRequestByID(ctx, excelRequestId)
	if err != nil {
		return nil, req, fmt.Errorf("service.Service.DownloadExcelFile: %w", err)
	}
	if !ok {
		return nil, req, models.ErrNoExcelRequest
	}

	sup, isSupplier, err := s.store.SupplierByUserID(ctx, userId)
	if err != nil {
		return nil, req, fmt.Errorf("service.Service.DownloadExcelFile: %w", err)
	}
	if isSupplier {
		_, assigned, err := s.store.ExcelAssignment(ctx, excelRequestId, sup.Id)
		if err != nil {
			return nil, req, fmt.Errorf("service.Service.DownloadExcelFile: %w", err)
		}
		if !assigned {
			return nil, req, models.ErrNoAssignment
		}

		if err := s.store.MarkExcelDownloaded(ctx, excelRequestId, sup.Id); err != nil {
			return nil, req, fmt.Errorf("service.Service.DownloadExcelFile: %w", err)
		}
	}

	data, err := s.files.Get(req.StoredName, excelRequestDir)
	if err != nil {
		return nil, req, fmt.Errorf("service.Service.DownloadExcelFile: %w", err)
	}

	return data, req, nil
}

// UploadSupplierOffer accepts a supplier's response file against an
// assignment it actually holds, then recomputes the parent status from the
// new counts.
func (s *Service) UploadSupplierOffer(ctx context.Context, userId, excelRequestId int64, fileName string, data []byte) (models.SupplierExcelOffer, models.ExcelRequestStatus, error) {
	var offer models.SupplierExcelOffer

	sup, ok, err := s.store.SupplierByUserID(ctx, userId)
	if err != nil {
		return offer, 0, fmt.Errorf("service.Service.UploadSupplierOffer: %w", err)
	}
	if !ok {
		return offer, 0, models.ErrForbidden
	}

	_, assigned, err := s.store.ExcelAssignment(ctx, excelRequestId, sup.Id)
	if err != nil {
		return offer, 0, fmt.Errorf("service.Service.UploadSupplierOffer: %w", err)
	}
	if !assigned {
		return offer, 0, models.ErrNoAssignment
	}

	stored, err := s.files.Save(data, fileName, excelOfferDir)
	if err != nil {
		return offer, 0, fmt.Errorf("service.Service.UploadSupplierOffer: %w", err)
	}

	offer, status, err := s.store.AddSupplierExcelOffer(ctx, models.SupplierExcelOffer{
		ExcelRequestId: excelRequestId,
		SupplierId:     sup.Id,
		OriginalName:   fileName,
		StoredName:     stored.Name,
		FileSize:       stored.Size,
	})
	if err != nil {
		if delErr := s.files.Delete(stored.Name, excelOfferDir); delErr != nil {
			s.log.Warn().Err(delErr).Str("file", stored.Name).Msg("excel: orphan file cleanup failed")
		}
		return offer, 0, fmt.Errorf("service.Service.UploadSupplierOffer: %w", err)
	}

	s.notify(ctx, models.Notification{
		Title:      "Excel offer uploaded",
		Message:    fmt.Sprintf("%s uploaded an offer for excel request #%d", sup.CompanyName, excelRequestId),
		Type:       models.NoticeExcelOfferUploaded,
		RequestId:  ptr(excelRequestId),
		SupplierId: ptr(sup.Id),
	})

	return offer, status, nil
}

// ExcelRequestOffers lists the responses submitted against one excel
// request.
func (s *Service) ExcelRequestOffers(ctx context.Context, excelRequestId int64) ([]models.SupplierExcelOffer, error) {
	_, ok, err := s.store.ExcelRequestByID(ctx, excelRequestId)
	if err != nil {
		return nil, fmt.Errorf("service.Service.ExcelRequestOffers: %w", err)
	}
	if !ok {
		return nil, models.ErrNoExcelRequest
	}

	offers, err := s.store.SupplierExcelOffers(ctx, excelRequestId)
	if err != nil {
		return nil, fmt.Errorf("service.Service.ExcelRequestOffers: %w", err)
	}
	if offers == nil {
		offers = []models.SupplierExcelOffer{}
	}
	return offers, nil
}

// DownloadSupplierOffer serves a submitted response file.
func (s *Service) DownloadSupplierOffer(ctx context.Context, offerId int64) ([]byte, models.SupplierExcelOffer, error) {
	offer, ok, err := s.store.SupplierExcelOfferByID(ctx, offerId)
	if err != nil {
		return nil, offer, fmt.Errorf("service.Service.DownloadSupplierOffer: %w", err)
	}
	if !ok {
		return nil, offer, models.ErrNoOffer
	}

	data, err := s.files.Get(offer.StoredName, excelOfferDir)
	if err != nil {
		return nil, offer, fmt.Errorf("service.Service.DownloadSupplierOffer: %w", err)
	}

	return data, offer, nil
}

// DeleteSupplierOffer removes one response file and its row; the parent
// status is recomputed in the same store transaction, so a Completed excel
// request drops back to InProgress when a response disappears.
func (s *Service) DeleteSupplierOffer(ctx context.Context, offerId int64) (models.ExcelRequestStatus, error) {
	offer, status, err := s.store.DeleteSupplierExcelOffer(ctx, offerId)
	if err != nil {
		return 0, fmt.Errorf("service.Service.DeleteSupplierOffer: %w", err)
	}

	if err := s.files.Delete(offer.StoredName, excelOfferDir); err != nil {
		s.log.Warn().Err(err).Str("file", offer.StoredName).Msg("excel: offer file cleanup failed")
	}

	return status, nil
}

// DeleteExcelRequest removes the request, its assignments and responses, and
// every stored file. File cleanup is best-effort once the rows are gone.
func (s *Service) DeleteExcelRequest(ctx context.Context, id int64) error {
	req, offers, err := s.store.DeleteExcelRequest(ctx, id)
	if err != nil {
		return fmt.Errorf("service.Service.DeleteExcelRequest: %w", err)
	}

	if err := s.files.Delete(req.StoredName, excelRequestDir); err != nil {
		s.log.Warn().Err(err).Str("file", req.StoredName).Msg("excel: request file cleanup failed")
	}
	for _, offer := range offers {
		if err := s.files.Delete(offer.StoredName, excelOfferDir); err != nil {
			s.log.Warn().Err(err).Str("file", offer.StoredName).Msg("excel: offer file cleanup failed")
		}
	}

	return nil
}
