package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/qbazz/storefront/internal/domain"
	pkgkafka "github.com/qbazz/storefront/pkg/kafka"
	"github.com/qbazz/storefront/pkg/logger"
)

// Event types published by the storefront.
const (
	TypeStoreRegistrationSubmitted = "store.registration.submitted"
)

// Aggregate type constant.
const AggregateTypeStoreRegistration = "store_registration"

// Source identifier for events originating from the storefront.
const SourceStorefront = "storefront"

// StoreRegistrationSubmittedData is the payload for a
// store.registration.submitted event.
type StoreRegistrationSubmittedData struct {
	VisitorID     string  `json:"visitor_id"`
	TelegramID    string  `json:"telegram_id"`
	OwnerID       string  `json:"owner_id"`
	ContactNumber string  `json:"contact_number"`
	Lat           float64 `json:"lat"`
	Lng           float64 `json:"lng"`
	Address       string  `json:"address"`
}

// Publisher is the subset of the Kafka producer used here.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes storefront events to Kafka.
type Producer struct {
	kafka  Publisher
	topic  string
	logger *slog.Logger
}

// NewProducer creates an event producer writing registrations to topic.
func NewProducer(kafka Publisher, topic string, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		topic:  topic,
		logger: logger,
	}
}

// PublishRegistrationSubmitted hands a completed registration to the vendor
// onboarding backend.
func (p *Producer) PublishRegistrationSubmitted(ctx context.Context, visitorID string, form domain.RegistrationForm) error {
	data := newSubmittedData(visitorID, form)

	event, err := pkgkafka.NewEvent(TypeStoreRegistrationSubmitted, visitorID, AggregateTypeStoreRegistration, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", TypeStoreRegistrationSubmitted, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}
	event.WithMetadata("telegram_id", data.TelegramID)

	if err := p.kafka.Publish(ctx, p.topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", TypeStoreRegistrationSubmitted, err)
	}

	p.logger.DebugContext(ctx, "published store registration",
		slog.String("visitor_id", visitorID),
		slog.String("event_id", event.EventID),
	)
	return nil
}

func newSubmittedData(visitorID string, form domain.RegistrationForm) StoreRegistrationSubmittedData {
	data := StoreRegistrationSubmittedData{
		VisitorID:     visitorID,
		TelegramID:    form.TelegramID,
		OwnerID:       form.OwnerID,
		ContactNumber: form.ContactNumber,
		Address:       form.Address,
	}
	if form.Location != nil {
		data.Lat = form.Location.Lat
		data.Lng = form.Location.Lng
	}
	return data
}

// LogProducer stands in for the onboarding backend when no brokers are
// configured: the registration is only logged.
type LogProducer struct {
	logger *slog.Logger
}

func NewLogProducer(logger *slog.Logger) *LogProducer {
	return &LogProducer{logger: logger}
}

func (p *LogProducer) PublishRegistrationSubmitted(ctx context.Context, visitorID string, form domain.RegistrationForm) error {
	logger.WithContext(ctx, p.logger).InfoContext(ctx, "store registration received (onboarding disabled)",
		slog.String("visitor_id", visitorID),
		slog.String("telegram_id", form.TelegramID),
	)
	return nil
}
