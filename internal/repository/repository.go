package repository

import (
	"context"
	"errors"

	"github.com/qbazz/storefront/internal/domain"
	"github.com/qbazz/storefront/internal/registration"
)

// ErrCorruptHistory marks a stored search history that could not be decoded.
// Overwriting it is safe; the stored value is unusable anyway.
var ErrCorruptHistory = errors.New("corrupt search history")

// SearchHistoryRepository stores each visitor's recent search queries.
type SearchHistoryRepository interface {
	// Get returns the visitor's history. A visitor without history gets an
	// empty history and no error.
	Get(ctx context.Context, visitorID string) (domain.SearchHistory, error)

	// Save replaces the visitor's history.
	Save(ctx context.Context, visitorID string, history domain.SearchHistory) error

	// Delete removes the visitor's history.
	Delete(ctx context.Context, visitorID string) error
}

// WizardRepository stores in-progress store registrations.
type WizardRepository interface {
	// Get returns the visitor's draft or a NOT_FOUND error.
	Get(ctx context.Context, visitorID string) (*registration.Wizard, error)

	// Save persists the draft, refreshing its expiry.
	Save(ctx context.Context, visitorID string, w *registration.Wizard) error

	// Delete removes the draft.
	Delete(ctx context.Context, visitorID string) error
}
