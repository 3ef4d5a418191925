package webhooks

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func SetupRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()

	// Authenticated by signature, not session.
	r.Post("/accounts-refreshed", h.AccountsRefreshedWebhook)

	return r
}
