package webhooks

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/geotenants/geo-tenants-backend/internal/httputil"
	"github.com/geotenants/geo-tenants-backend/internal/logging"
)

const (
	SignatureHeader = "X-Geo-Signature"
	DeliveryHeader  = "X-Geo-Delivery"

	EventAccountsRefreshed = "accounts.refreshed"
)

var log = logging.Module("webhooks")

// Refresher is satisfied by *accounts.Cache.
type Refresher interface {
	Refresh(ctx context.Context, force bool) error
}

// Handler accepts signed notifications from the geocoding pipeline.
type Handler struct {
	Secret  string
	Cache   Refresher
	Timeout time.Duration
}

type event struct {
	Event string `json:"event"`
	Rows  int    `json:"rows"`
}

// AccountsRefreshedWebhook forces an account cache reload once the
// pipeline has rewritten accounts.master_accounts. The reload runs in the
// background; the sender gets 202 immediately.
func (h *Handler) AccountsRefreshedWebhook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MiB
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		httputil.WriteError(w, http.StatusRequestEntityTooLarge, httputil.ErrCodeInvalidPayload, "payload too large or unreadable", err)
		return
	}
	defer r.Body.Close()

	sig := r.Header.Get(SignatureHeader)
	delivery := r.Header.Get(DeliveryHeader)
	if delivery == "" {
		httputil.WriteError(w, http.StatusBadRequest, httputil.ErrCodeInvalidPayload, "missing delivery id", nil)
		return
	}
	if !verify(sig, delivery, raw, h.Secret) {
		httputil.WriteError(w, http.StatusUnauthorized, httputil.ErrCodeUnauthorized, "invalid signature", nil)
		return
	}

	var ev event
	if err := json.Unmarshal(raw, &ev); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, httputil.ErrCodeInvalidPayload, "bad json", err)
		return
	}
	if ev.Event != EventAccountsRefreshed {
		httputil.WriteJSON(w, map[string]any{"ok": true, "ignored": ev.Event})
		return
	}

	entry := log.WithField("delivery", delivery).WithField("rows", ev.Rows)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.timeout())
		defer cancel()
		if err := h.Cache.Refresh(ctx, true); err != nil {
			entry.WithError(err).Error("Webhook-triggered account refresh failed")
			return
		}
		entry.Info("Account cache refreshed by webhook")
	}()

	httputil.WriteJSONStatus(w, http.StatusAccepted, map[string]bool{"ok": true})
}

func (h *Handler) timeout() time.Duration {
	if h.Timeout <= 0 {
		return 2 * time.Minute
	}
	return h.Timeout
}

// Sign computes the signature header value for body and delivery id.
func Sign(secret, delivery string, raw []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(raw)
	mac.Write([]byte(delivery))
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func verify(sig, delivery string, raw []byte, secret string) bool {
	if secret == "" || !strings.HasPrefix(sig, "sha256=") {
		return false
	}
	return hmac.Equal([]byte(sig), []byte(Sign(secret, delivery, raw)))
}
