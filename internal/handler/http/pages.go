package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/qbazz/storefront/internal/domain"
	"github.com/qbazz/storefront/internal/query"
	"github.com/qbazz/storefront/internal/service"
	"github.com/qbazz/storefront/pkg/httputil"
)

// PageHandler resolves and renders storefront pages.
type PageHandler struct {
	navigator *service.Navigator
	logger    *slog.Logger
}

// NewPageHandler creates a new page HTTP handler.
func NewPageHandler(navigator *service.Navigator, logger *slog.Logger) *PageHandler {
	return &PageHandler{navigator: navigator, logger: logger}
}

// GetPage handles GET /api/v1/pages/{name}
func (h *PageHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	name, err := domain.ParsePageName(chi.URLParam(r, "name"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	q := r.URL.Query()
	key, err := query.ParseSortKey(q.Get("sort"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	page, err := h.navigator.Navigate(name, q.Get("id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	view, err := h.navigator.Render(page, service.RenderOptions{Sort: key, Category: q.Get("category")})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}
