package http

import (
	"log/slog"
	"net/http"

	"github.com/qbazz/storefront/internal/service"
	"github.com/qbazz/storefront/pkg/httputil"
	"github.com/qbazz/storefront/pkg/middleware"
	"github.com/qbazz/storefront/pkg/pagination"
	"github.com/qbazz/storefront/pkg/validator"
)

const maxSearchLimit = 100

// SearchHandler handles product search and the visitor's search history.
type SearchHandler struct {
	service *service.SearchService
	logger  *slog.Logger
}

// NewSearchHandler creates a new search HTTP handler.
func NewSearchHandler(svc *service.SearchService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{service: svc, logger: logger}
}

// --- Request DTOs ---

// SubmitQueryRequest is the JSON request body for recording a search.
type SubmitQueryRequest struct {
	Query string `json:"query" validate:"required,max=200"`
}

// HistoryResponse carries the visitor's recent queries, newest first.
type HistoryResponse struct {
	History []string `json:"history"`
}

func historyResponse(h []string) httputil.Response {
	if h == nil {
		h = []string{}
	}
	return httputil.Response{Data: HistoryResponse{History: h}}
}

// --- Handlers ---

// Local handles GET /api/v1/search
func (h *SearchHandler) Local(w http.ResponseWriter, r *http.Request) {
	products := h.service.Local(r.URL.Query().Get("q"))
	httputil.WriteJSON(w, http.StatusOK, httputil.NewListResponse(products))
}

// Remote handles GET /api/v1/search/remote
func (h *SearchHandler) Remote(w http.ResponseWriter, r *http.Request) {
	// A zero limit lets the service apply its default.
	params, err := pagination.FromRequest(r, 0, maxSearchLimit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	products, err := h.service.Remote(r.Context(), r.URL.Query().Get("q"), params.Limit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.NewListResponse(products))
}

// GetHistory handles GET /api/v1/search/history
func (h *SearchHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	history := h.service.History(r.Context(), middleware.VisitorID(r))
	httputil.WriteJSON(w, http.StatusOK, historyResponse(history))
}

// SubmitQuery handles POST /api/v1/search/history
func (h *SearchHandler) SubmitQuery(w http.ResponseWriter, r *http.Request) {
	var req SubmitQueryRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	history, err := h.service.Submit(r.Context(), middleware.VisitorID(r), req.Query)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, historyResponse(history))
}

// RemoveEntry handles DELETE /api/v1/search/history/entry
func (h *SearchHandler) RemoveEntry(w http.ResponseWriter, r *http.Request) {
	history := h.service.Remove(r.Context(), middleware.VisitorID(r), r.URL.Query().Get("q"))
	httputil.WriteJSON(w, http.StatusOK, historyResponse(history))
}

// ClearHistory handles DELETE /api/v1/search/history
func (h *SearchHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	h.service.Clear(r.Context(), middleware.VisitorID(r))
	w.WriteHeader(http.StatusNoContent)
}
