package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/qbazz/storefront/internal/domain"
	"github.com/qbazz/storefront/pkg/httpclient"
	"github.com/qbazz/storefront/pkg/logger"
	"github.com/qbazz/storefront/pkg/tracing"
)

const (
	serviceName = "catalog"

	// maxBody bounds a single list response.
	maxBody = 16 << 20
)

// Config describes the remote catalog API.
type Config struct {
	BaseURL        string
	Timeout        time.Duration
	UserAgent      string
	AcceptLanguage string
}

// Header returns the fixed headers sent with every catalog request.
func (c Config) Header() http.Header {
	h := make(http.Header)
	h.Set("User-Agent", c.UserAgent)
	h.Set("Accept", "application/json")
	h.Set("Accept-Language", c.AcceptLanguage)
	return h
}

// Client reads products, stores and categories from the catalog API.
type Client struct {
	http    *httpclient.CircuitBreakerClient
	baseURL string
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewClient builds a catalog client. Requests are never retried; a failed
// call is reported to the caller, which decides whether to load again.
func NewClient(cfg Config, log *slog.Logger) *Client {
	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.Timeout
	httpCfg.MaxRetries = 0
	httpCfg.Header = cfg.Header()

	return &Client{
		http: httpclient.NewCircuitBreakerClient(
			httpclient.New(httpCfg),
			httpclient.DefaultCircuitBreakerConfig(serviceName),
			log,
		),
		baseURL: cfg.BaseURL,
		logger:  log,
		tracer:  tracing.Tracer("github.com/qbazz/storefront/internal/catalog"),
	}
}

// FetchProducts returns up to limit products.
func (c *Client) FetchProducts(ctx context.Context, limit int) ([]domain.Product, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	return c.products(ctx, "catalog.FetchProducts", "fetch products", "/api/products", q)
}

// SearchProducts runs a server-side product search.
func (c *Client) SearchProducts(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("limit", strconv.Itoa(limit))
	return c.products(ctx, "catalog.SearchProducts", "search products", "/api/products/search", q)
}

// FetchStores returns up to limit approved, active stores.
func (c *Client) FetchStores(ctx context.Context, limit int) (stores []domain.Store, err error) {
	ctx, span := c.tracer.Start(ctx, "catalog.FetchStores")
	defer func() { tracing.End(span, err) }()

	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("isApproved", "true")
	q.Set("isActive", "true")

	records, err := c.list(ctx, "/api/stores", q)
	if err != nil {
		return nil, fmt.Errorf("fetch stores: %w", err)
	}

	stores = make([]domain.Store, 0, len(records))
	for i, raw := range records {
		s, err := NormalizeStore(raw)
		if err != nil {
			c.skip(ctx, "store", i, err)
			continue
		}
		stores = append(stores, s)
	}
	span.SetAttributes(attribute.Int("catalog.results", len(stores)))
	return stores, nil
}

// FetchCategories returns the active categories.
func (c *Client) FetchCategories(ctx context.Context) (categories []domain.Category, err error) {
	ctx, span := c.tracer.Start(ctx, "catalog.FetchCategories")
	defer func() { tracing.End(span, err) }()

	records, err := c.list(ctx, "/api/categories", nil)
	if err != nil {
		return nil, fmt.Errorf("fetch categories: %w", err)
	}

	categories = make([]domain.Category, 0, len(records))
	for i, raw := range records {
		cat, active, err := NormalizeCategory(raw)
		if err != nil {
			c.skip(ctx, "category", i, err)
			continue
		}
		if active {
			categories = append(categories, cat)
		}
	}
	span.SetAttributes(attribute.Int("catalog.results", len(categories)))
	return categories, nil
}

func (c *Client) products(ctx context.Context, spanName, op, p string, q url.Values) (products []domain.Product, err error) {
	ctx, span := c.tracer.Start(ctx, spanName)
	defer func() { tracing.End(span, err) }()

	records, err := c.list(ctx, p, q)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	products = make([]domain.Product, 0, len(records))
	for i, raw := range records {
		prod, err := NormalizeProduct(raw)
		if err != nil {
			c.skip(ctx, "product", i, err)
			continue
		}
		products = append(products, prod)
	}
	span.SetAttributes(attribute.Int("catalog.results", len(products)))
	return products, nil
}

// list performs a GET and unwraps the response envelope. Transport errors
// and non-2xx statuses are returned; an unusable body yields no records.
func (c *Client) list(ctx context.Context, p string, q url.Values) ([]json.RawMessage, error) {
	u := c.baseURL + p
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	resp, err := c.http.Get(ctx, u)
	if err != nil {
		return nil, err
	}
	if !httpclient.IsSuccess(resp.StatusCode) {
		return nil, httpclient.ParseResponseError(resp, serviceName)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", p, err)
	}

	records, meta, ok := decodeEnvelope(body)
	if !ok {
		logger.WithContext(ctx, c.logger).WarnContext(ctx, "unusable catalog response",
			slog.String("path", p),
			slog.Int("status", resp.StatusCode),
		)
		return []json.RawMessage{}, nil
	}
	if meta != nil {
		logger.WithContext(ctx, c.logger).DebugContext(ctx, "catalog page",
			slog.String("path", p),
			slog.Int("total", meta.Total),
			slog.Int("page", meta.Page),
		)
	}
	return records, nil
}

func (c *Client) skip(ctx context.Context, kind string, index int, err error) {
	logger.WithContext(ctx, c.logger).WarnContext(ctx, "skipping malformed catalog record",
		slog.String("kind", kind),
		slog.Int("index", index),
		slog.String("error", err.Error()),
	)
}

// BreakerState exposes the circuit breaker state for health reporting.
func (c *Client) BreakerState() string {
	return c.http.State().String()
}
