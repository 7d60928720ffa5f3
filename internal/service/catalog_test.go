package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/qbazz/storefront/internal/domain"
	apperrors "github.com/qbazz/storefront/pkg/errors"
)

func loadedCatalog(t *testing.T) *CatalogService {
	t.Helper()
	src := new(mockCatalogSource)
	src.On("FetchProducts", mock.Anything, 24).Return(sampleProducts(), nil)
	src.On("FetchCategories", mock.Anything).Return(sampleCategories(), nil)

	svc := NewCatalogService(src, 24, newTestLogger())
	require.NoError(t, svc.Load(context.Background()))
	return svc
}

func TestCatalogService_InitialSnapshotIsEmpty(t *testing.T) {
	svc := NewCatalogService(new(mockCatalogSource), 24, newTestLogger())

	snap := svc.Snapshot()
	assert.NotNil(t, snap.Products)
	assert.Empty(t, snap.Products)
	assert.False(t, snap.Loaded)
	assert.Error(t, svc.Ready(context.Background()))
}

func TestCatalogService_LoadCommitsBoth(t *testing.T) {
	svc := loadedCatalog(t)

	snap := svc.Snapshot()
	assert.Len(t, snap.Products, 3)
	assert.Len(t, snap.Categories, 2)
	assert.True(t, snap.Loaded)
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.LastError)
	assert.False(t, snap.LoadedAt.IsZero())
	assert.NoError(t, svc.Ready(context.Background()))
}

func TestCatalogService_LoadFailureResetsBoth(t *testing.T) {
	src := new(mockCatalogSource)
	src.On("FetchProducts", mock.Anything, 24).Return(sampleProducts(), nil)
	src.On("FetchCategories", mock.Anything).Return(sampleCategories(), nil).Once()

	svc := NewCatalogService(src, 24, newTestLogger())
	require.NoError(t, svc.Load(context.Background()))
	require.Len(t, svc.Snapshot().Products, 3)

	// Products still succeed on the second pass; categories fail.
	src.On("FetchCategories", mock.Anything).Return(nil, errors.New("categories: 500"))

	err := svc.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "categories: 500")

	snap := svc.Snapshot()
	assert.Empty(t, snap.Products)
	assert.Empty(t, snap.Categories)
	assert.True(t, snap.Loaded)
	assert.False(t, snap.Loading)
	assert.Contains(t, snap.LastError, "categories: 500")
}

func TestCatalogService_CancelledLoadDoesNotCommit(t *testing.T) {
	svc := loadedCatalog(t)

	src := new(mockCatalogSource)
	src.On("FetchProducts", mock.Anything, 24).Return([]domain.Product{}, nil)
	src.On("FetchCategories", mock.Anything).Return([]domain.Category{}, nil)
	svc.source = src

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := svc.Load(ctx)
	require.ErrorIs(t, err, context.Canceled)

	snap := svc.Snapshot()
	assert.Len(t, snap.Products, 3, "previous snapshot kept")
	assert.False(t, snap.Loading)
}

func TestCatalogService_ProductAndStore(t *testing.T) {
	svc := loadedCatalog(t)

	p, err := svc.Product("2")
	require.NoError(t, err)
	assert.Equal(t, "Kilim", p.Name)

	_, err = svc.Product("99")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	s, err := svc.Store("s1")
	require.NoError(t, err)
	assert.Equal(t, "Mesgar", s.Name)
	assert.Equal(t, 2, s.ProductCount)

	_, err = svc.Store("s9")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCatalogService_Stores(t *testing.T) {
	src := new(mockCatalogSource)
	src.On("FetchStores", mock.Anything, 20).Return([]domain.Store{{ID: "s1"}}, nil)
	svc := NewCatalogService(src, 24, newTestLogger())

	stores, err := svc.Stores(context.Background(), 20)
	require.NoError(t, err)
	assert.Len(t, stores, 1)
	src.AssertExpectations(t)
}
