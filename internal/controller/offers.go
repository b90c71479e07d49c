package controller

import (
	"net/http"

	"procurement/internal/models"
)

// POST /api/offers
func (c *Controller) NewOffer(w http.ResponseWriter, r *http.Request) {
	userId, ok := c.callerId(w, r)
	if !ok {
		return
	}

	data, err := c.readBody(r.Body)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not read request body")
		return
	}

	req, err := ParseNewOfferReq(data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	offer, err := c.service.CreateOffer(r.Context(), userId, models.Offer{
		RequestId:       req.RequestId,
		Brand:           req.Brand,
		Description:     req.Description,
		Quantity:        req.Quantity,
		UnitPrice:       req.UnitPrice,
		Currency:        req.Currency,
		DiscountPercent: req.DiscountPercent,
		DeliveryType:    req.DeliveryType,
		DeliveryDays:    req.DeliveryDays,
	})
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, offer)
}

// GET /api/requests/{requestId}/offers
func (c *Controller) GetRequestOffers(w http.ResponseWriter, r *http.Request) {
	id, ok := c.pathInt64(r, "requestId")
	if !ok {
		c.errorResponse(w, http.StatusBadRequest, "invalid requestId supplied")
		return
	}

	offers, err := c.service.RequestOffers(r.Context(), id)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, offers)
}

// POST /api/offers/{offerId}/approve
func (c *Controller) ApproveOffer(w http.ResponseWriter, r *http.Request) {
	id, ok := c.pathInt64(r, "offerId")
	if !ok {
		c.errorResponse(w, http.StatusBadRequest, "invalid offerId supplied")
		return
	}

	event, err := c.service.ApproveOffer(r.Context(), id)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, event)
}

// POST /api/offers/{offerId}/reject
func (c *Controller) RejectOffer(w http.ResponseWriter, r *http.Request) {
	id, ok := c.pathInt64(r, "offerId")
	if !ok {
		c.errorResponse(w, http.StatusBadRequest, "invalid offerId supplied")
		return
	}

	offer, err := c.service.RejectOffer(r.Context(), id)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, offer)
}

// POST /api/offers/{offerId}/withdraw
func (c *Controller) WithdrawOffer(w http.ResponseWriter, r *http.Request) {
	userId, ok := c.callerId(w, r)
	if !ok {
		return
	}

	id, ok := c.pathInt64(r, "offerId")
	if !ok {
		c.errorResponse(w, http.StatusBadRequest, "invalid offerId supplied")
		return
	}

	offer, err := c.service.WithdrawOffer(r.Context(), userId, id)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, offer)
}

// POST /api/offers/bulk-reject
func (c *Controller) BulkRejectOffers(w http.ResponseWriter, r *http.Request) {
	data, err := c.readBody(r.Body)
	if err != nil {
		c.errorResponse(w, http.StatusInternalServerError, "could not read request body")
		return
	}

	req, err := ParseBulkOfferActionReq(data)
	if err != nil {
		c.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	affected, err := c.service.BulkRejectOffers(r.Context(), req.Ids)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, BulkActionResp{Affected: affected})
}

// POST /api/suppliers/{supplierId}/approve
func (c *Controller) ApproveSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := c.pathInt64(r, "supplierId")
	if !ok {
		c.errorResponse(w, http.StatusBadRequest, "invalid supplierId supplied")
		return
	}

	sup, err := c.service.ApproveSupplier(r.Context(), id)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, sup)
}

// POST /api/suppliers/{supplierId}/reject
func (c *Controller) RejectSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := c.pathInt64(r, "supplierId")
	if !ok {
		c.errorResponse(w, http.StatusBadRequest, "invalid supplierId supplied")
		return
	}

	sup, err := c.service.RejectSupplier(r.Context(), id)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, sup)
}
