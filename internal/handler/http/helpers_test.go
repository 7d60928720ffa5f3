package http

import (
	"context"
	"encoding/json"
	"io"
	"iter"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/sessions"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/qbazz/storefront/internal/assistant"
	"github.com/qbazz/storefront/internal/domain"
	redisrepo "github.com/qbazz/storefront/internal/repository/redis"
	"github.com/qbazz/storefront/internal/service"
	"github.com/qbazz/storefront/pkg/health"
	"github.com/qbazz/storefront/pkg/middleware"
)

// ============================================================================
// Mocks
// ============================================================================

type mockCatalogSource struct {
	mock.Mock
}

func (m *mockCatalogSource) FetchProducts(ctx context.Context, limit int) ([]domain.Product, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockCatalogSource) SearchProducts(ctx context.Context, q string, limit int) ([]domain.Product, error) {
	args := m.Called(ctx, q, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockCatalogSource) FetchStores(ctx context.Context, limit int) ([]domain.Store, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Store), args.Error(1)
}

func (m *mockCatalogSource) FetchCategories(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Category), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishRegistrationSubmitted(ctx context.Context, visitorID string, form domain.RegistrationForm) error {
	return m.Called(ctx, visitorID, form).Error(0)
}

// scriptedModel replies to every message with the same fragments.
type scriptedModel struct {
	fragments []string
}

func (m scriptedModel) StartChat(context.Context, string) (assistant.Chat, error) {
	return scriptedChat(m), nil
}

type scriptedChat struct {
	fragments []string
}

func (c scriptedChat) SendStream(context.Context, string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, f := range c.fragments {
			if !yield(f, nil) {
				return
			}
		}
	}
}

// ============================================================================
// Test environment
// ============================================================================

const (
	testVisitor      = "visitor-123"
	testProductLimit = 24
	testStoreLimit   = 20
	testSearchLimit  = 12
)

type testEnv struct {
	router    http.Handler
	visitor   *http.Cookie
	source    *mockCatalogSource
	publisher *mockPublisher
	catalog   *service.CatalogService
	redis     *miniredis.Miniredis
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestEnv wires real services over a mocked catalog API, a miniredis
// instance and the given language model.
func newTestEnv(t *testing.T, model assistant.Model, chatBurst int) *testEnv {
	t.Helper()
	logger := testLogger()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	source := new(mockCatalogSource)
	publisher := new(mockPublisher)

	catalog := service.NewCatalogService(source, testProductLimit, logger)
	search := service.NewSearchService(redisrepo.NewSearchHistoryRepository(client, time.Hour), catalog, source, testSearchLimit, logger)
	registrations := service.NewRegistrationService(redisrepo.NewWizardRepository(client, time.Hour), publisher, logger)
	registry := assistant.NewRegistry(model, time.Hour, logger)

	handlers := Handlers{
		Catalog:      NewCatalogHandler(catalog, testStoreLimit, logger),
		Pages:        NewPageHandler(service.NewNavigator(catalog), logger),
		Search:       NewSearchHandler(search, logger),
		Chat:         NewChatHandler(registry, logger),
		Registration: NewRegistrationHandler(registrations, logger),
	}
	visitors := middleware.NewVisitorStore([]byte(strings.Repeat("k", 32)), false)
	cfg := RouterConfig{
		Health:      health.NewHandler(),
		Visitors:    visitors,
		ChatLimiter: middleware.NewLimiterStore(0.001, chatBurst, time.Minute),
		CORS:        middleware.DefaultCORSConfig(),
	}

	return &testEnv{
		router:    NewRouter(handlers, cfg, logger),
		visitor:   visitorCookie(t, visitors, testVisitor),
		source:    source,
		publisher: publisher,
		catalog:   catalog,
		redis:     mr,
	}
}

// visitorCookie signs a session cookie that identifies id.
func visitorCookie(t *testing.T, store sessions.Store, id string) *http.Cookie {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	session, err := store.New(req, "qbazz_visitor")
	require.NoError(t, err)
	session.Values["visitor_id"] = id
	rec := httptest.NewRecorder()
	require.NoError(t, session.Save(req, rec))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

// load fills the catalog snapshot with the sample data.
func (e *testEnv) load(t *testing.T) {
	t.Helper()
	e.source.On("FetchProducts", mock.Anything, testProductLimit).Return(sampleProducts(), nil).Once()
	e.source.On("FetchCategories", mock.Anything).Return(sampleCategories(), nil).Once()
	require.NoError(t, e.catalog.Load(context.Background()))
}

// do sends a request as testVisitor.
func (e *testEnv) do(method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.AddCookie(e.visitor)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// envelope mirrors httputil.Response with the payload left raw.
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Count *int            `json:"count"`
	Error *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	env := decodeEnvelope(t, rec)
	require.Nil(t, env.Error)
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func sampleProducts() []domain.Product {
	return []domain.Product{
		{ID: "1", Name: "Copper Tray", Price: 300, Category: "مس", Store: domain.Store{ID: "s1", Name: "Mesgar"}},
		{ID: "2", Name: "Kilim", Price: 900, Category: "فرش دستباف", Store: domain.Store{ID: "s2", Name: "Rugs"}},
		{ID: "3", Name: "Copper Bowl", Price: 150, Category: "مس", Store: domain.Store{ID: "s1", Name: "Mesgar"}},
	}
}

func sampleCategories() []domain.Category {
	return []domain.Category{
		{ID: 1, Title: "مس", Slug: "copper", IsActive: true},
		{ID: 2, Title: "فرش", Slug: "rugs", IsActive: true},
	}
}

func productIDs(products []domain.Product) []string {
	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	return ids
}
