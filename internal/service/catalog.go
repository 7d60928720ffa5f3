package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"

	"github.com/qbazz/storefront/internal/domain"
	apperrors "github.com/qbazz/storefront/pkg/errors"
	"github.com/qbazz/storefront/pkg/logger"
)

var (
	catalogLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_catalog_loads_total",
			Help: "Catalog loads by result",
		},
		[]string{"result"},
	)

	catalogProducts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "storefront_catalog_products",
			Help: "Number of products in the current catalog snapshot",
		},
	)
)

// CatalogSource is the remote catalog API.
type CatalogSource interface {
	FetchProducts(ctx context.Context, limit int) ([]domain.Product, error)
	SearchProducts(ctx context.Context, query string, limit int) ([]domain.Product, error)
	FetchStores(ctx context.Context, limit int) ([]domain.Store, error)
	FetchCategories(ctx context.Context) ([]domain.Category, error)
}

// CatalogSnapshot is an immutable view of the loaded catalog. Readers must not
// modify the slices.
type CatalogSnapshot struct {
	Products   []domain.Product  `json:"products"`
	Categories []domain.Category `json:"categories"`
	Loading    bool              `json:"loading"`
	Loaded     bool              `json:"loaded"`
	LoadedAt   time.Time         `json:"loadedAt,omitzero"`
	LastError  string            `json:"lastError,omitempty"`
}

// CatalogService owns the process-wide catalog state. It is the only writer
// of the snapshot; loads are serialized.
type CatalogService struct {
	source       CatalogSource
	productLimit int
	logger       *slog.Logger
	nowFunc      func() time.Time

	loadMu sync.Mutex

	mu   sync.RWMutex
	snap CatalogSnapshot
}

// NewCatalogService creates an empty catalog. Call Load to fill it.
func NewCatalogService(source CatalogSource, productLimit int, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		source:       source,
		productLimit: productLimit,
		logger:       logger,
		nowFunc:      time.Now,
		snap: CatalogSnapshot{
			Products:   []domain.Product{},
			Categories: []domain.Category{},
		},
	}
}

// Load fetches products and categories together and replaces the snapshot.
// If either fetch fails both lists are reset to empty. If ctx is cancelled
// before the results are committed, the snapshot data is left untouched.
func (s *CatalogService) Load(ctx context.Context) error {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	log := logger.WithContext(ctx, s.logger)
	s.setLoading(true)
	start := s.nowFunc()

	var (
		products   []domain.Product
		categories []domain.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = s.source.FetchProducts(gctx, s.productLimit)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.source.FetchCategories(gctx)
		return err
	})
	err := g.Wait()

	if ctx.Err() != nil {
		s.setLoading(false)
		catalogLoads.WithLabelValues("cancelled").Inc()
		log.InfoContext(ctx, "catalog load cancelled")
		return fmt.Errorf("load catalog: %w", ctx.Err())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.snap.Loading = false
	s.snap.Loaded = true
	s.snap.LoadedAt = s.nowFunc()
	if err != nil {
		s.snap.Products = []domain.Product{}
		s.snap.Categories = []domain.Category{}
		s.snap.LastError = err.Error()
		catalogLoads.WithLabelValues("failure").Inc()
		catalogProducts.Set(0)
		log.ErrorContext(ctx, "failed to load catalog", slog.String("error", err.Error()))
		return fmt.Errorf("load catalog: %w", err)
	}

	s.snap.Products = products
	s.snap.Categories = categories
	s.snap.LastError = ""
	catalogLoads.WithLabelValues("success").Inc()
	catalogProducts.Set(float64(len(products)))
	log.InfoContext(ctx, "catalog loaded",
		slog.Int("products", len(products)),
		slog.Int("categories", len(categories)),
		slog.Duration("duration", s.nowFunc().Sub(start)),
	)
	return nil
}

func (s *CatalogService) setLoading(loading bool) {
	s.mu.Lock()
	s.snap.Loading = loading
	s.mu.Unlock()
}

// Snapshot returns the current catalog.
func (s *CatalogService) Snapshot() CatalogSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Ready reports an error until the first load has finished.
func (s *CatalogService) Ready(_ context.Context) error {
	if !s.Snapshot().Loaded {
		return errors.New("catalog has not been loaded yet")
	}
	return nil
}

// Stores lists approved, active stores straight from the catalog API.
func (s *CatalogService) Stores(ctx context.Context, limit int) ([]domain.Store, error) {
	stores, err := s.source.FetchStores(ctx, limit)
	if err != nil {
		return nil, err
	}
	return stores, nil
}

// Product returns a product from the current snapshot.
func (s *CatalogService) Product(id string) (domain.Product, error) {
	p, ok := domain.FindProduct(s.Snapshot().Products, id)
	if !ok {
		return domain.Product{}, apperrors.NotFound("product", id)
	}
	return p, nil
}

// Store returns a store known from the products in the current snapshot.
func (s *CatalogService) Store(id string) (domain.Store, error) {
	st, ok := domain.FindStore(s.Snapshot().Products, id)
	if !ok {
		return domain.Store{}, apperrors.NotFound("store", id)
	}
	return st, nil
}
