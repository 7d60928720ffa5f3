package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/qbazz/storefront/internal/domain"
	"github.com/qbazz/storefront/internal/query"
	"github.com/qbazz/storefront/internal/repository"
	apperrors "github.com/qbazz/storefront/pkg/errors"
	"github.com/qbazz/storefront/pkg/logger"
)

// SearchService runs product searches and keeps each visitor's recent queries.
// History storage failures are logged and the history behaves as empty.
type SearchService struct {
	history      repository.SearchHistoryRepository
	catalog      *CatalogService
	source       CatalogSource
	defaultLimit int
	logger       *slog.Logger
}

func NewSearchService(history repository.SearchHistoryRepository, catalog *CatalogService, source CatalogSource, defaultLimit int, logger *slog.Logger) *SearchService {
	return &SearchService{
		history:      history,
		catalog:      catalog,
		source:       source,
		defaultLimit: defaultLimit,
		logger:       logger,
	}
}

// Local filters the loaded catalog by name, description and store name.
func (s *SearchService) Local(q string) []domain.Product {
	return query.Match(s.catalog.Snapshot().Products, q)
}

// Remote asks the catalog API to search.
func (s *SearchService) Remote(ctx context.Context, q string, limit int) ([]domain.Product, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, apperrors.InvalidInput("query is required")
	}
	if limit <= 0 {
		limit = s.defaultLimit
	}
	return s.source.SearchProducts(ctx, q, limit)
}

// History returns the visitor's recent queries, newest first.
func (s *SearchService) History(ctx context.Context, visitorID string) domain.SearchHistory {
	h, _ := s.load(ctx, visitorID)
	return h
}

// load reads the history and reports whether it may be overwritten. A corrupt
// value may be; a failed read may not, since the real history is still there.
func (s *SearchService) load(ctx context.Context, visitorID string) (domain.SearchHistory, bool) {
	h, err := s.history.Get(ctx, visitorID)
	if err == nil {
		return h, true
	}
	logger.WithContext(ctx, s.logger).WarnContext(ctx, "search history unavailable",
		slog.String("error", err.Error()),
	)
	return domain.SearchHistory{}, errors.Is(err, repository.ErrCorruptHistory)
}

// Submit records a submitted query. A query already in the history leaves it
// unchanged.
func (s *SearchService) Submit(ctx context.Context, visitorID, q string) (domain.SearchHistory, error) {
	if strings.TrimSpace(q) == "" {
		return nil, apperrors.InvalidInput("query is required")
	}
	current, writable := s.load(ctx, visitorID)
	h, changed := current.Push(q)
	if changed && writable {
		s.save(ctx, visitorID, h)
	}
	return h, nil
}

// Remove drops a single entry.
func (s *SearchService) Remove(ctx context.Context, visitorID, q string) domain.SearchHistory {
	current, writable := s.load(ctx, visitorID)
	h, changed := current.Remove(q)
	if changed && writable {
		s.save(ctx, visitorID, h)
	}
	return h
}

// Clear forgets the visitor's history.
func (s *SearchService) Clear(ctx context.Context, visitorID string) {
	if err := s.history.Delete(ctx, visitorID); err != nil {
		logger.WithContext(ctx, s.logger).WarnContext(ctx, "failed to clear search history",
			slog.String("error", err.Error()),
		)
	}
}

func (s *SearchService) save(ctx context.Context, visitorID string, h domain.SearchHistory) {
	if err := s.history.Save(ctx, visitorID, h); err != nil {
		logger.WithContext(ctx, s.logger).WarnContext(ctx, "failed to save search history",
			slog.String("error", err.Error()),
		)
	}
}
