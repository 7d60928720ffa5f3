package http

import (
	"log/slog"
	"net/http"

	"github.com/qbazz/storefront/internal/domain"
	"github.com/qbazz/storefront/internal/registration"
	"github.com/qbazz/storefront/internal/service"
	apperrors "github.com/qbazz/storefront/pkg/errors"
	"github.com/qbazz/storefront/pkg/httputil"
	"github.com/qbazz/storefront/pkg/middleware"
	"github.com/qbazz/storefront/pkg/validator"
)

// RegistrationHandler drives the store registration wizard.
type RegistrationHandler struct {
	service *service.RegistrationService
	logger  *slog.Logger
}

// NewRegistrationHandler creates a new registration HTTP handler.
func NewRegistrationHandler(svc *service.RegistrationService, logger *slog.Logger) *RegistrationHandler {
	return &RegistrationHandler{service: svc, logger: logger}
}

// --- Request DTOs ---

// SetValueRequest is the JSON request body for filling the current text step.
// An empty value clears the field.
type SetValueRequest struct {
	Value string `json:"value" validate:"max=1000"`
}

// SetLocationRequest sets the location step either directly (lat and lng) or
// from a click on the map image (click and box). Out-of-range coordinates are
// clamped.
type SetLocationRequest struct {
	Lat   *float64            `json:"lat"`
	Lng   *float64            `json:"lng"`
	Click *registration.Click `json:"click"`
	Box   *registration.Box   `json:"box"`
}

// --- Handlers ---

// Get handles GET /api/v1/registration
func (h *RegistrationHandler) Get(w http.ResponseWriter, r *http.Request) {
	wiz, err := h.service.Get(r.Context(), middleware.VisitorID(r))
	h.writeWizard(w, r, wiz, err)
}

// SetValue handles PUT /api/v1/registration/value
func (h *RegistrationHandler) SetValue(w http.ResponseWriter, r *http.Request) {
	var req SetValueRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	wiz, err := h.service.SetValue(r.Context(), middleware.VisitorID(r), req.Value)
	h.writeWizard(w, r, wiz, err)
}

// SetLocation handles PUT /api/v1/registration/location
func (h *RegistrationHandler) SetLocation(w http.ResponseWriter, r *http.Request) {
	var req SetLocationRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	visitorID := middleware.VisitorID(r)
	var (
		wiz *registration.Wizard
		err error
	)
	switch {
	case req.Lat != nil && req.Lng != nil:
		wiz, err = h.service.SetLocation(r.Context(), visitorID, domain.Coords{Lat: *req.Lat, Lng: *req.Lng})
	case req.Click != nil && req.Box != nil:
		wiz, err = h.service.PickLocation(r.Context(), visitorID, *req.Click, *req.Box)
	default:
		err = apperrors.InvalidInput("either lat and lng or click and box are required")
	}
	h.writeWizard(w, r, wiz, err)
}

// Next handles POST /api/v1/registration/next
func (h *RegistrationHandler) Next(w http.ResponseWriter, r *http.Request) {
	wiz, err := h.service.Next(r.Context(), middleware.VisitorID(r))
	h.writeWizard(w, r, wiz, err)
}

// Submit handles POST /api/v1/registration/submit
func (h *RegistrationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Submit(r.Context(), middleware.VisitorID(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// Reset handles DELETE /api/v1/registration
func (h *RegistrationHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Reset(r.Context(), middleware.VisitorID(r)); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RegistrationHandler) writeWizard(w http.ResponseWriter, r *http.Request, wiz *registration.Wizard, err error) {
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: wiz.View()})
}
