package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/qbazz/storefront/internal/domain"
	"github.com/qbazz/storefront/internal/query"
	"github.com/qbazz/storefront/internal/service"
	"github.com/qbazz/storefront/pkg/httputil"
	"github.com/qbazz/storefront/pkg/pagination"
)

const maxStoreLimit = 100

// CatalogHandler serves the loaded catalog and its load status.
type CatalogHandler struct {
	catalog    *service.CatalogService
	storeLimit int
	logger     *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(catalog *service.CatalogService, storeLimit int, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog:    catalog,
		storeLimit: storeLimit,
		logger:     logger,
	}
}

// CatalogStatus reports the state of the catalog snapshot.
type CatalogStatus struct {
	Loading       bool      `json:"loading"`
	Loaded        bool      `json:"loaded"`
	LoadedAt      time.Time `json:"loadedAt,omitzero"`
	LastError     string    `json:"lastError,omitempty"`
	ProductCount  int       `json:"productCount"`
	CategoryCount int       `json:"categoryCount"`
}

func statusOf(snap service.CatalogSnapshot) CatalogStatus {
	return CatalogStatus{
		Loading:       snap.Loading,
		Loaded:        snap.Loaded,
		LoadedAt:      snap.LoadedAt,
		LastError:     snap.LastError,
		ProductCount:  len(snap.Products),
		CategoryCount: len(snap.Categories),
	}
}

// --- Handlers ---

// ListProducts handles GET /api/v1/products
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	key, err := query.ParseSortKey(r.URL.Query().Get("sort"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	category := r.URL.Query().Get("category")
	if category == "" {
		category = query.AllCategories
	}

	snap := h.catalog.Snapshot()
	products := query.View(snap.Products, snap.Categories, key, category)
	httputil.WriteJSON(w, http.StatusOK, httputil.NewListResponse(products))
}

// ListCategories handles GET /api/v1/categories
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, httputil.NewListResponse(h.catalog.Snapshot().Categories))
}

// ListStores handles GET /api/v1/stores
func (h *CatalogHandler) ListStores(w http.ResponseWriter, r *http.Request) {
	params, err := pagination.FromRequest(r, h.storeLimit, maxStoreLimit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	stores, err := h.catalog.Stores(r.Context(), params.Offset+params.Limit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewListResponse[domain.Store](pagination.Apply(stores, params)))
}

// Status handles GET /api/v1/catalog
func (h *CatalogHandler) Status(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: statusOf(h.catalog.Snapshot())})
}

// Reload handles POST /api/v1/catalog/reload
func (h *CatalogHandler) Reload(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Load(r.Context()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: statusOf(h.catalog.Snapshot())})
}
