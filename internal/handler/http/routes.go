package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.RequestID, middleware.Recoverer, h.withTraceID, h.withLogging, withGZip)

	router.Get("/api/health", h.health)

	router.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Get("/api/blobs", h.listBlobs)
		r.Post("/api/blobs/delete", h.deleteBlobs)
		r.Put("/api/blobs/{key}", h.putBlob)
		r.Get("/api/blobs/{key}", h.getBlob)
		r.Delete("/api/blobs/{key}", h.deleteBlob)
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
