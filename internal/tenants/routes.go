package tenants

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// SetupRoutes expects the caller to mount it behind the session middleware.
func SetupRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/views", h.ViewsHandler)
	r.Get("/facilities", h.FacilitiesHandler)
	r.Post("/map", h.MapHandler)

	return r
}
