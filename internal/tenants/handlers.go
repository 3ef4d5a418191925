package tenants

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/geotenants/geo-tenants-backend/internal/httputil"
	"github.com/geotenants/geo-tenants-backend/internal/occupancy"
	"github.com/go-playground/validator/v10"
)

const emptySelectionMsg = "No RD selected. Please select at least one RD."

type Handler struct {
	Service  *Service
	validate *validator.Validate
}

func NewHandler(svc *Service) *Handler {
	v := validator.New()
	_ = v.RegisterValidation("viewmode", func(fl validator.FieldLevel) bool {
		_, err := ParseViewMode(fl.Field().String())
		return err == nil
	})
	return &Handler{Service: svc, validate: v}
}

type viewsResponse struct {
	Views   []ViewMode `json:"views"`
	Default ViewMode   `json:"default"`
}

func (h *Handler) ViewsHandler(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, viewsResponse{Views: AllViews, Default: DefaultView})
}

func (h *Handler) FacilitiesHandler(w http.ResponseWriter, r *http.Request) {
	facilities, err := h.Service.FacilityList(r.Context())
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, httputil.ErrCodeInternal, "Failed to load facilities", err)
		return
	}
	httputil.WriteJSON(w, facilities)
}

func (h *Handler) MapHandler(w http.ResponseWriter, r *http.Request) {
	var req MapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, httputil.ErrCodeInvalidPayload, "Invalid request body", err)
		return
	}
	if req.View == "" {
		req.View = DefaultView
	}
	if len(req.RDs) == 0 {
		httputil.WriteError(w, http.StatusBadRequest, httputil.ErrCodeEmptySelection, emptySelectionMsg, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httputil.WriteErrorDetails(w, http.StatusBadRequest, httputil.ErrCodeInvalidPayload, "Invalid map request", validationDetails(err), err)
		return
	}

	resp, err := h.Service.BuildMap(r.Context(), req)
	if err != nil {
		writeMapError(w, err)
		return
	}

	httputil.AddServerTiming(w,
		httputil.Timing{Name: "fetch", Duration: resp.Timings.Fetch},
		httputil.Timing{Name: "build", Duration: resp.Timings.Build},
		httputil.Timing{Name: "encode", Duration: resp.Timings.Encode},
	)
	httputil.WriteJSON(w, resp)
}

func writeMapError(w http.ResponseWriter, err error) {
	var cfgErr *occupancy.ConfigurationError
	switch {
	case errors.Is(err, occupancy.ErrEmptySelection):
		httputil.WriteError(w, http.StatusBadRequest, httputil.ErrCodeEmptySelection, emptySelectionMsg, err)
	case errors.As(err, &cfgErr):
		httputil.WriteError(w, http.StatusInternalServerError, httputil.ErrCodeConfiguration, cfgErr.Error(), err)
	case errors.Is(err, ErrAccountsUnavailable):
		httputil.WriteError(w, http.StatusServiceUnavailable, httputil.ErrCodeServiceUnavailable, "Account data is temporarily unavailable", err)
	default:
		httputil.WriteError(w, http.StatusInternalServerError, httputil.ErrCodeInternal, "Failed to build map", err)
	}
}

func validationDetails(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}
