package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusBadRequest, ErrCodeEmptySelection, "No RD selected", errors.New("empty"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, ErrCodeEmptySelection, body.Code)
	assert.Equal(t, "No RD selected", body.Message)
	assert.Nil(t, body.Details)
}

func TestAddServerTiming(t *testing.T) {
	rec := httptest.NewRecorder()
	AddServerTiming(rec)
	assert.Empty(t, rec.Header().Get("Server-Timing"))

	AddServerTiming(rec,
		Timing{Name: "fetch", Duration: 12300 * time.Microsecond},
		Timing{Name: "build", Duration: 400 * time.Microsecond},
	)
	assert.Equal(t, "fetch;dur=12.3, build;dur=0.4", rec.Header().Get("Server-Timing"))
}
