package controller

import (
	"net/http"

	"procurement/internal/models"
)

// POST /api/requests
func (c *Controller) NewRequest(w http.ResponseWriter, r *http.Request) {
	data, err := c.readBody(r.Body)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not read request body")
		return
	}

	req, err := ParseNewRequestReq(data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	request, err := c.service.CreateRequest(r.Context(), models.Request{
		Product:      req.Product,
		Quantity:     req.Quantity,
		DeliveryType: req.DeliveryType,
		Description:  req.Description,
		EmployeeId:   req.EmployeeId,
		SiteId:       req.SiteId,
	})
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, request)
}

// GET /api/requests
func (c *Controller) GetRequests(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit, err := c.getQueryInt(query, "limit")
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, "invalid value of 'limit' query parameter: "+query.Get("limit"))
		return
	}

	offset, err := c.getQueryInt(query, "offset")
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, "invalid value of 'offset' query parameter: "+query.Get("offset"))
		return
	}

	status, err := c.getQueryInt(query, "status")
	if err != nil || (status != 0 && !models.ValidRequestStatus(models.RequestStatus(status))) {
		c.errorResponse(w, http.StatusBadRequest, "invalid value of 'status' query parameter: "+query.Get("status"))
		return
	}

	employeeId, err := c.getQueryInt64(query, "employeeId")
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, "invalid value of 'employeeId' query parameter: "+query.Get("employeeId"))
		return
	}

	requests, err := c.service.Requests(r.Context(), limit, offset, models.RequestStatus(status), employeeId)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, requests)
}

// GET /api/requests/{requestId}
func (c *Controller) GetRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := c.pathInt64(r, "requestId")
	if !ok {
		c.errorResponse(w, http.StatusBadRequest, "invalid requestId supplied")
		return
	}

	request, err := c.service.RequestByID(r.Context(), id)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, request)
}

// POST /api/requests/{requestId}/cancel
func (c *Controller) CancelRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := c.pathInt64(r, "requestId")
	if !ok {
		c.errorResponse(w, http.StatusBadRequest, "invalid requestId supplied")
		return
	}

	if err := c.service.CancelRequest(r.Context(), id); err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// POST /api/requests/bulk
func (c *Controller) BulkRequestAction(w http.ResponseWriter, r *http.Request) {
	data, err := c.readBody(r.Body)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not read request body")
		return
	}

	req, err := ParseBulkRequestActionReq(data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	affected, err := c.service.BulkRequestAction(r.Context(), req.Ids, req.Action)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, BulkActionResp{Affected: affected})
}

// POST /api/requests/send
func (c *Controller) SendRequestsToSuppliers(w http.ResponseWriter, r *http.Request) {
	data, err := c.readBody(r.Body)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not read request body")
		return
	}

	req, err := ParseSendRequestsReq(data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := c.service.SendRequestsToSuppliers(r.Context(), req.RequestIds, req.SupplierIds); err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
