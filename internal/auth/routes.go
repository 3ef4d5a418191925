package auth

import (
	"net/http"
	"time"

	"github.com/geotenants/geo-tenants-backend/internal/middleware"
	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"
)

// Five password attempts per client, refilling one a minute.
const (
	loginBurst = 5
	loginEvery = time.Minute
)

func NewLoginLimiter() *middleware.IPRateLimiter {
	return middleware.NewIPRateLimiter(rate.Every(loginEvery), loginBurst)
}

func SetupRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()
	sessionFetcher := SessionInfo{Store: h.Store}
	if h.Limiter == nil {
		h.Limiter = NewLoginLimiter()
	}

	r.With(middleware.RateLimitMiddleware(h.Limiter)).Post("/login", h.LoginHandler)

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(sessionFetcher))
		r.Post("/logout", h.LogoutHandler)
		r.Get("/me", h.MeHandler)
	})

	return r
}
