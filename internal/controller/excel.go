package controller

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"procurement/internal/filestore"
	"procurement/internal/service"
)

// Multipart uploads are capped slightly above the stored file limit so that
// oversize files reach the service and get a proper ErrFileTooLarge response
// instead of a transport-level failure.
const maxMultipartMemory = 16 << 20

// POST /api/excel-requests
// multipart/form-data: file, siteId, employeeId, supplierIds (comma-separated), description
func (c *Controller) NewExcelRequest(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		c.errorResponse(w, http.StatusBadRequest, "could not parse multipart form: "+err.Error())
		return
	}

	siteId, err := strconv.ParseInt(r.FormValue("siteId"), 10, 64)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, "invalid siteId supplied")
		return
	}

	employeeId, err := strconv.ParseInt(r.FormValue("employeeId"), 10, 64)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, "invalid employeeId supplied")
		return
	}

	supplierIds, err := parseIdList(r.FormValue("supplierIds"))
	if err != nil || len(supplierIds) == 0 {
		c.errorResponse(w, http.StatusBadRequest, "invalid supplierIds supplied")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, "missing 'file' form field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not read uploaded file")
		return
	}

	excelReq, err := c.service.CreateExcelRequest(r.Context(), service.CreateExcelInput{
		SiteId:      siteId,
		EmployeeId:  employeeId,
		SupplierIds: supplierIds,
		Description: r.FormValue("description"),
		FileName:    header.Filename,
		Data:        data,
	})
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, excelReq)
}

// GET /api/excel-requests/{excelRequestId}
func (c *Controller) GetExcelRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := c.pathInt64(r, "excelRequestId")
	if !ok {
		c.errorResponse(w, http.StatusBadRequest, "invalid excelRequestId supplied")
		return
	}

	excelReq, err := c.service.ExcelRequestByID(r.Context(), id)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, excelReq)
}

// GET /api/excel-requests/{excelRequestId}/offers
func (c *Controller) GetExcelRequestOffers(w http.ResponseWriter, r *http.Request) {
	id, ok := c.pathInt64(r, "excelRequestId")
	if !ok {
		c.errorResponse(w, http.StatusBadRequest, "invalid excelRequestId supplied")
		return
	}

	offers, err := c.service.ExcelRequestOffers(r.Context(), id)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, offers)
}

// GET /api/excel-requests/{excelRequestId}/file
func (c *Controller) DownloadExcelFile(w http.ResponseWriter, r *http.Request) {
	userId, ok := c.callerId(w, r)
	if !ok {
		return
	}

	id, ok := c.pathInt64(r, "excelRequestId")
	if !ok {
		c.errorResponse(w, http.StatusBadRequest, "invalid excelRequestId supplied")
		return
	}

	data, excelReq, err := c.service.DownloadExcelFile(r.Context(), userId, id)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.serveFile(w, excelReq.OriginalName, data)
}

// POST /api/excel-requests/{excelRequestId}/offers
// multipart/form-data: file
func (c *Controller) UploadSupplierOffer(w http.ResponseWriter, r *http.Request) {
	userId, ok := c.callerId(w, r)
	if !ok {
		return
	}

	id, ok := c.pathInt64(r, "excelRequestId")
	if !ok {
		c.errorResponse(w, http.StatusBadRequest, "invalid excelRequestId supplied")
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		c.errorResponse(w, http.StatusBadRequest, "could not parse multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, "missing 'file' form field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not read uploaded file")
		return
	}

	offer, status, err := c.service.UploadSupplierOffer(r.Context(), userId, id, header.Filename, data)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, SupplierOfferResp{Offer: offer, ExcelRequestStatus: status})
}

// GET /api/excel-offers/{offerId}/file
func (c *Controller) DownloadSupplierOffer(w http.ResponseWriter, r *http.Request) {
	id, ok := c.pathInt64(r, "offerId")
	if !ok {
		c.errorResponse(w, http.StatusBadRequest, "invalid offerId supplied")
		return
	}

	data, offer, err := c.service.DownloadSupplierOffer(r.Context(), id)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.serveFile(w, offer.OriginalName, data)
}

// DELETE /api/excel-offers/{offerId}
func (c *Controller) DeleteSupplierOffer(w http.ResponseWriter, r *http.Request) {
	id, ok := c.pathInt64(r, "offerId")
	if !ok {
		c.errorResponse(w, http.StatusBadRequest, "invalid offerId supplied")
		return
	}

	status, err := c.service.DeleteSupplierOffer(r.Context(), id)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, ExcelStatusResp{ExcelRequestStatus: status})
}

// DELETE /api/excel-requests/{excelRequestId}
func (c *Controller) DeleteExcelRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := c.pathInt64(r, "excelRequestId")
	if !ok {
		c.errorResponse(w, http.StatusBadRequest, "invalid excelRequestId supplied")
		return
	}

	if err := c.service.DeleteExcelRequest(r.Context(), id); err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (c *Controller) serveFile(w http.ResponseWriter, name string, data []byte) {
	w.Header().Set("Content-Type", filestore.ContentType(name))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", sanitizeFilename(name)))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))

	if _, err := w.Write(data); err != nil {
		c.log.Error().Err(err).Msg("controller.Controller.serveFile: write failed")
	}
}

func sanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		if r == '"' || r == '\r' || r == '\n' {
			return '_'
		}
		return r
	}, name)
}
