package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/storefront/internal/domain"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/logger"
)

// Kafka topics for storefront events.
var (
	TopicCartUpdated     = pkgkafka.Topic("cart", "updated")
	TopicCartCleared     = pkgkafka.Topic("cart", "cleared")
	TopicWishlistUpdated = pkgkafka.Topic("wishlist", "updated")
)

// Aggregate type constants.
const (
	AggregateTypeCart     = "cart"
	AggregateTypeWishlist = "wishlist"
)

// SourceStorefront identifies events originating from this service.
const SourceStorefront = "storefront"

// Identity names the session a store belongs to.
type Identity struct {
	SessionID string
	UserID    string
}

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	SessionID string            `json:"session_id"`
	UserID    string            `json:"user_id,omitempty"`
	Items     []domain.LineItem `json:"items"`
	ItemCount int               `json:"item_count"`
	Subtotal  int64             `json:"subtotal"`
}

// CartClearedData is the payload for a cart.cleared event.
type CartClearedData struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id,omitempty"`
}

// WishlistUpdatedData is the payload for a wishlist.updated event.
type WishlistUpdatedData struct {
	SessionID string                `json:"session_id"`
	UserID    string                `json:"user_id,omitempty"`
	Items     []domain.WishlistItem `json:"items"`
	ItemCount int                   `json:"item_count"`
}

// Publisher publishes store change events.
type Publisher interface {
	PublishCartUpdated(ctx context.Context, data CartUpdatedData) error
	PublishCartCleared(ctx context.Context, data CartClearedData) error
	PublishWishlistUpdated(ctx context.Context, data WishlistUpdatedData) error
}

// broker is the part of pkg/kafka.Producer used here.
type broker interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes storefront events to Kafka.
type Producer struct {
	kafka  broker
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka broker, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishCartUpdated publishes a cart.updated event.
func (p *Producer) PublishCartUpdated(ctx context.Context, data CartUpdatedData) error {
	if err := p.publish(ctx, TopicCartUpdated, data.SessionID, data.UserID, AggregateTypeCart, data); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published cart.updated event",
		slog.String("session_id", data.SessionID),
		slog.Int("item_count", data.ItemCount),
	)
	return nil
}

// PublishCartCleared publishes a cart.cleared event.
func (p *Producer) PublishCartCleared(ctx context.Context, data CartClearedData) error {
	return p.publish(ctx, TopicCartCleared, data.SessionID, data.UserID, AggregateTypeCart, data)
}

// PublishWishlistUpdated publishes a wishlist.updated event.
func (p *Producer) PublishWishlistUpdated(ctx context.Context, data WishlistUpdatedData) error {
	return p.publish(ctx, TopicWishlistUpdated, data.SessionID, data.UserID, AggregateTypeWishlist, data)
}

func (p *Producer) publish(ctx context.Context, topic, sessionID, userID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, sessionID, aggregateType, SourceStorefront, data,
		pkgkafka.WithCorrelationID(logger.CorrelationIDFromContext(ctx)),
		pkgkafka.WithMetadata("user_id", userID),
	)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}
	return nil
}

// NopPublisher discards all events. It is used when event publishing is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishCartUpdated(context.Context, CartUpdatedData) error         { return nil }
func (NopPublisher) PublishCartCleared(context.Context, CartClearedData) error         { return nil }
func (NopPublisher) PublishWishlistUpdated(context.Context, WishlistUpdatedData) error { return nil }
