package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/geotenants/geo-tenants-backend/internal/logging"
	"github.com/sirupsen/logrus"
)

const (
	ErrCodeInvalidPayload     = "invalid_payload"
	ErrCodeUnauthorized       = "unauthorized"
	ErrCodeRateLimited        = "rate_limit_exceeded"
	ErrCodeEmptySelection     = "empty_selection"
	ErrCodeConfiguration      = "configuration_error"
	ErrCodeInternal           = "internal_server_error"
	ErrCodeServiceUnavailable = "service_unavailable"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, v any) {
	WriteJSONStatus(w, http.StatusOK, v)
}

func WriteJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError answers with {code, message} and logs the optional dev error.
func WriteError(w http.ResponseWriter, status int, code, message string, devErr error) {
	WriteErrorDetails(w, status, code, message, nil, devErr)
}

func WriteErrorDetails(w http.ResponseWriter, status int, code, message string, details any, devErr error) {
	WriteJSONStatus(w, status, ErrorResponse{Code: code, Message: message, Details: details})

	fields := logrus.Fields{"status": status, "code": code}
	if devErr != nil {
		fields["error"] = devErr.Error()
	}
	entry := logging.Logger.WithFields(fields)
	if status >= http.StatusInternalServerError {
		entry.Error(message)
	} else {
		entry.Warn(message)
	}
}

// Timing is one Server-Timing metric.
type Timing struct {
	Name     string
	Duration time.Duration
}

// AddServerTiming appends metrics like "fetch;dur=12.3, build;dur=0.4".
func AddServerTiming(w http.ResponseWriter, timings ...Timing) {
	if len(timings) == 0 {
		return
	}
	parts := make([]string, 0, len(timings))
	for _, t := range timings {
		parts = append(parts, fmt.Sprintf("%s;dur=%.1f", t.Name, float64(t.Duration.Microseconds())/1000))
	}
	w.Header().Add("Server-Timing", strings.Join(parts, ", "))
}
