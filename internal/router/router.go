package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"procurement/internal/controller"
)

func NewRouter(c *controller.Controller) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", c.Ping)

		r.Post("/requests", c.NewRequest)
		r.Get("/requests", c.GetRequests)
		r.Post("/requests/bulk", c.BulkRequestAction)
		r.Post("/requests/send", c.SendRequestsToSuppliers)
		r.Get("/requests/{requestId}", c.GetRequest)
		r.Post("/requests/{requestId}/cancel", c.CancelRequest)
		r.Get("/requests/{requestId}/offers", c.GetRequestOffers)

		r.Post("/offers", c.NewOffer)
		r.Post("/offers/bulk-reject", c.BulkRejectOffers)
		r.Post("/offers/{offerId}/approve", c.ApproveOffer)
		r.Post("/offers/{offerId}/reject", c.RejectOffer)
		r.Post("/offers/{offerId}/withdraw", c.WithdrawOffer)

		r.Post("/suppliers/{supplierId}/approve", c.ApproveSupplier)
		r.Post("/suppliers/{supplierId}/reject", c.RejectSupplier)

		r.Post("/excel-requests", c.NewExcelRequest)
		r.Get("/excel-requests/{excelRequestId}", c.GetExcelRequest)
		r.Delete("/excel-requests/{excelRequestId}", c.DeleteExcelRequest)
		r.Get("/excel-requests/{excelRequestId}/file", c.DownloadExcelFile)
		r.Get("/excel-requests/{excelRequestId}/offers", c.GetExcelRequestOffers)
		r.Post("/excel-requests/{excelRequestId}/offers", c.UploadSupplierOffer)
		r.Get("/excel-offers/{offerId}/file", c.DownloadSupplierOffer)
		r.Delete("/excel-offers/{offerId}", c.DeleteSupplierOffer)

		r.Get("/notifications", c.GetNotifications)
		r.Get("/notifications/summary", c.GetNotificationSummary)
		r.Post("/notifications/read-all", c.MarkAllNotificationsRead)
		r.Post("/notifications/{notificationId}/read", c.MarkNotificationRead)
	})

	return r
}
