package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/stretchr/testify/mock"

	"github.com/qbazz/storefront/internal/domain"
	"github.com/qbazz/storefront/internal/registration"
)

// --- Mock catalog source ---

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

// --- Mock repositories ---

type mockHistoryRepo struct {
	mock.Mock
}

func (m *mockHistoryRepo) Get(ctx context.Context, visitorID string) (domain.SearchHistory, error) {
	args := m.Called(ctx, visitorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.SearchHistory), args.Error(1)
}

func (m *mockHistoryRepo) Save(ctx context.Context, visitorID string, history domain.SearchHistory) error {
	return m.Called(ctx, visitorID, history).Error(0)
}

func (m *mockHistoryRepo) Delete(ctx context.Context, visitorID string) error {
	return m.Called(ctx, visitorID).Error(0)
}

type mockWizardRepo struct {
	mock.Mock
}

func (m *mockWizardRepo) Get(ctx context.Context, visitorID string) (*registration.Wizard, error) {
	args := m.Called(ctx, visitorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registration.Wizard), args.Error(1)
}

func (m *mockWizardRepo) Save(ctx context.Context, visitorID string, w *registration.Wizard) error {
	return m.Called(ctx, visitorID, w).Error(0)
}

func (m *mockWizardRepo) Delete(ctx context.Context, visitorID string) error {
	return m.Called(ctx, visitorID).Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishRegistrationSubmitted(ctx context.Context, visitorID string, form domain.RegistrationForm) error {
	return m.Called(ctx, visitorID, form).Error(0)
}

// --- Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
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
