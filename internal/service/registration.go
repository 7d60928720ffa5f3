package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/qbazz/storefront/internal/domain"
	"github.com/qbazz/storefront/internal/registration"
	"github.com/qbazz/storefront/internal/repository"
	apperrors "github.com/qbazz/storefront/pkg/errors"
	"github.com/qbazz/storefront/pkg/logger"
	"github.com/qbazz/storefront/pkg/validator"
)

// RegistrationAcknowledgement is shown once a registration has been handed off.
const RegistrationAcknowledgement = "فروشگاه شما با موفقیت ثبت شد! (در حالت نمایشی)"

// RegistrationPublisher hands completed registrations to vendor onboarding.
type RegistrationPublisher interface {
	PublishRegistrationSubmitted(ctx context.Context, visitorID string, form domain.RegistrationForm) error
}

// SubmitResult is returned after a successful submission.
type SubmitResult struct {
	Message string      `json:"message"`
	Page    domain.Page `json:"page"`
}

// RegistrationService drives each visitor's registration wizard. Drafts are
// persisted between requests.
type RegistrationService struct {
	repo      repository.WizardRepository
	publisher RegistrationPublisher
	logger    *slog.Logger
}

func NewRegistrationService(repo repository.WizardRepository, publisher RegistrationPublisher, logger *slog.Logger) *RegistrationService {
	return &RegistrationService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// Get returns the visitor's draft, or a fresh wizard when there is none.
func (s *RegistrationService) Get(ctx context.Context, visitorID string) (*registration.Wizard, error) {
	w, err := s.repo.Get(ctx, visitorID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return registration.New(), nil
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	return w, nil
}

// SetValue fills the current text step.
func (s *RegistrationService) SetValue(ctx context.Context, visitorID, value string) (*registration.Wizard, error) {
	return s.update(ctx, visitorID, func(w *registration.Wizard) error {
		return w.Set(value)
	})
}

// SetLocation fills the map step with coordinates already in percent.
func (s *RegistrationService) SetLocation(ctx context.Context, visitorID string, c domain.Coords) (*registration.Wizard, error) {
	return s.update(ctx, visitorID, func(w *registration.Wizard) error {
		return w.SetLocation(c)
	})
}

// PickLocation fills the map step from a click on the map image.
func (s *RegistrationService) PickLocation(ctx context.Context, visitorID string, click registration.Click, box registration.Box) (*registration.Wizard, error) {
	c, err := registration.PickCoordinate(click, box)
	if err != nil {
		return nil, err
	}
	return s.SetLocation(ctx, visitorID, c)
}

// Next advances the wizard by one step.
func (s *RegistrationService) Next(ctx context.Context, visitorID string) (*registration.Wizard, error) {
	return s.update(ctx, visitorID, func(w *registration.Wizard) error {
		return w.Next()
	})
}

// Submit validates the completed form, hands it to onboarding and discards
// the draft. The visitor is sent back to the home page.
func (s *RegistrationService) Submit(ctx context.Context, visitorID string) (*SubmitResult, error) {
	w, err := s.Get(ctx, visitorID)
	if err != nil {
		return nil, err
	}
	form, err := w.Submit()
	if err != nil {
		return nil, err
	}
	if err := validator.Validate(form); err != nil {
		return nil, err
	}

	if err := s.publisher.PublishRegistrationSubmitted(ctx, visitorID, form); err != nil {
		logger.WithContext(ctx, s.logger).ErrorContext(ctx, "failed to hand off registration",
			slog.String("error", err.Error()),
		)
		return nil, apperrors.Unavailable("registration could not be submitted, please try again")
	}

	if err := s.repo.Delete(ctx, visitorID); err != nil {
		logger.WithContext(ctx, s.logger).WarnContext(ctx, "failed to delete registration draft",
			slog.String("error", err.Error()),
		)
	}

	logger.WithContext(ctx, s.logger).InfoContext(ctx, "store registration submitted",
		slog.String("telegram_id", form.TelegramID),
	)
	return &SubmitResult{
		Message: RegistrationAcknowledgement,
		Page:    domain.HomePage{},
	}, nil
}

// Reset discards the visitor's draft.
func (s *RegistrationService) Reset(ctx context.Context, visitorID string) error {
	if err := s.repo.Delete(ctx, visitorID); err != nil {
		return fmt.Errorf("reset registration: %w", err)
	}
	return nil
}

func (s *RegistrationService) update(ctx context.Context, visitorID string, fn func(*registration.Wizard) error) (*registration.Wizard, error) {
	w, err := s.Get(ctx, visitorID)
	if err != nil {
		return nil, err
	}
	if err := fn(w); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, visitorID, w); err != nil {
		return nil, fmt.Errorf("save registration: %w", err)
	}
	return w, nil
}
