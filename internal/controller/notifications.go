package controller

import (
	"net/http"
)

// GET /api/notifications
func (c *Controller) GetNotifications(w http.ResponseWriter, r *http.Request) {
	userId, ok := c.callerId(w, r)
	if !ok {
		return
	}

	identity, err := c.service.ResolveIdentity(r.Context(), userId)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	notifications, err := c.service.Notifications(r.Context(), identity)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, notifications)
}

// GET /api/notifications/summary
func (c *Controller) GetNotificationSummary(w http.ResponseWriter, r *http.Request) {
	userId, ok := c.callerId(w, r)
	if !ok {
		return
	}

	identity, err := c.service.ResolveIdentity(r.Context(), userId)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	summary, err := c.service.NotificationSummary(r.Context(), identity)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	c.marshalResponse(w, summary)
}

// POST /api/notifications/{notificationId}/read
func (c *Controller) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, ok := c.pathInt64(r, "notificationId")
	if !ok {
		c.errorResponse(w, http.StatusBadRequest, "invalid notificationId supplied")
		return
	}

	if err := c.service.MarkNotificationRead(r.Context(), id); err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// POST /api/notifications/read-all
func (c *Controller) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	userId, ok := c.callerId(w, r)
	if !ok {
		return
	}

	identity, err := c.service.ResolveIdentity(r.Context(), userId)
	if err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	if err := c.service.MarkAllNotificationsRead(r.Context(), identity); err != nil {
		c.serviceErrorResponse(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
