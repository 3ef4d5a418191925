package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/geotenants/geo-tenants-backend/internal/httputil"
	"github.com/geotenants/geo-tenants-backend/internal/logging"
	"github.com/geotenants/geo-tenants-backend/internal/middleware"
	"github.com/geotenants/geo-tenants-backend/internal/utils"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	SessionCookie = "session_id"
	SessionTTL    = 6 * time.Hour

	invalidPasswordMsg = "Please Enter Valid Password"
)

var log = logging.Module("auth")

// Handler gates the dashboard behind one shared secret.
type Handler struct {
	Store        SessionStore
	PasswordHash []byte
	SecureCookie bool
	Now          func() time.Time

	// Limiter throttles /login per client IP.
	Limiter *middleware.IPRateLimiter
}

// NewHandler hashes plain when hash is empty.
func NewHandler(store SessionStore, plain, hash string, secure bool) (*Handler, error) {
	h := &Handler{Store: store, SecureCookie: secure, Now: time.Now, Limiter: NewLoginLimiter()}
	if hash != "" {
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, err
		}
		h.PasswordHash = []byte(hash)
		return h, nil
	}
	if plain == "" {
		return nil, errors.New("auth: empty admin secret")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	h.PasswordHash = hashed
	return h, nil
}

type loginRequest struct {
	Password string `json:"password"`
}

// The session id only travels in the HttpOnly cookie.
type loginResponse struct {
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

type meResponse struct {
	Role string `json:"role"`
}

func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, httputil.ErrCodeInvalidPayload, "Invalid Data", err)
		return
	}

	if req.Password == "" || bcrypt.CompareHashAndPassword(h.PasswordHash, []byte(req.Password)) != nil {
		httputil.WriteError(w, http.StatusUnauthorized, httputil.ErrCodeUnauthorized, invalidPasswordMsg, nil)
		return
	}

	now := h.Now()
	session := Session{
		SessionID: uuid.NewString(),
		Role:      utils.RoleAdmin,
		ExpiresAt: now.Add(SessionTTL),
		CreatedAt: now,
	}
	if err := h.Store.Create(session); err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, httputil.ErrCodeInternal, "Failed to create session", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    session.SessionID,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.SecureCookie,
	})

	log.WithField("expires_at", session.ExpiresAt).Info("Login successful")
	httputil.WriteJSON(w, loginResponse{Role: session.Role, ExpiresAt: session.ExpiresAt})
}

func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := utils.GetSessionIDFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, http.StatusUnauthorized, httputil.ErrCodeUnauthorized, "Couldn't find session", nil)
		return
	}

	if err := h.Store.Delete(id); err != nil && !errors.Is(err, ErrSessionNotFound) {
		httputil.WriteError(w, http.StatusInternalServerError, httputil.ErrCodeInternal, "Failed to delete session", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.SecureCookie,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) MeHandler(w http.ResponseWriter, r *http.Request) {
	role, ok := utils.GetRoleFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, http.StatusUnauthorized, httputil.ErrCodeUnauthorized, "Unauthorized", nil)
		return
	}
	httputil.WriteJSON(w, meResponse{Role: role})
}
