package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"upload-service/internal/models"
)

// Publisher defines the interface for event publishing
type Publisher interface {
	PublishFileProcessed(ctx context.Context, outcome *models.ProcessingOutcome, category models.FileCategory) error
	PublishFileInfected(ctx context.Context, objectKey string, threats []string) error
	PublishAssetDeleted(ctx context.Context, objectKey string) error
	PublishAvatarUpdated(ctx context.Context, userID, avatarURL string) error

	// UpdateAvatar links a processed avatar to its user record by announcing
	// the new URL on the bus.
	UpdateAvatar(ctx context.Context, userID, avatarURL string) error

	// Close closes the publisher connection
	Close() error
}

// EventPublisher implements the Publisher interface using RabbitMQ
type EventPublisher struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	enabled      bool
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(rabbitURI, exchangeName string) (*EventPublisher, error) {
	if rabbitURI == "" {
		log.Println("Warning: RabbitMQ URI is empty, event publishing is disabled")
		return &EventPublisher{enabled: false}, nil
	}

	conn, err := amqp091.Dial(rabbitURI)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	if exchangeName == "" {
		exchangeName = "storage.events"
	}
	err = channel.ExchangeDeclare(
		exchangeName, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &EventPublisher{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		enabled:      true,
	}, nil
}

// publishEvent publishes an event to RabbitMQ
func (p *EventPublisher) publishEvent(ctx context.Context, routingKey string, event interface{}) error {
	if !p.enabled {
		log.Printf("Event publishing is disabled, skipping event: %s", routingKey)
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(
		pubCtx,
		p.exchangeName, // exchange
		routingKey,     // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	log.Printf("Published event: %s", routingKey)
	return nil
}

// PublishFileProcessed publishes a file processed event
func (p *EventPublisher) PublishFileProcessed(ctx context.Context, outcome *models.ProcessingOutcome, category models.FileCategory) error {
	event := NewFileProcessedEvent(outcome, category)
	return p.publishEvent(ctx, string(EventTypeFileProcessed), event)
}

// PublishFileInfected publishes a file infected event
func (p *EventPublisher) PublishFileInfected(ctx context.Context, objectKey string, threats []string) error {
	event := NewFileInfectedEvent(objectKey, threats)
	return p.publishEvent(ctx, string(EventTypeFileInfected), event)
}

// PublishAssetDeleted publishes an asset deleted event
func (p *EventPublisher) PublishAssetDeleted(ctx context.Context, objectKey string) error {
	event := NewAssetDeletedEvent(objectKey)
	return p.publishEvent(ctx, string(EventTypeAssetDeleted), event)
}

// PublishAvatarUpdated publishes an avatar updated event
func (p *EventPublisher) PublishAvatarUpdated(ctx context.Context, userID, avatarURL string) error {
	event := NewAvatarUpdatedEvent(userID, avatarURL)
	return p.publishEvent(ctx, string(EventTypeAvatarUpdated), event)
}

// UpdateAvatar satisfies the orchestrator's profile-updater collaborator:
// the profile service consumes avatar.updated and writes the URL onto its
// user record.
func (p *EventPublisher) UpdateAvatar(ctx context.Context, userID, avatarURL string) error {
	return p.PublishAvatarUpdated(ctx, userID, avatarURL)
}

// Close closes the connection to RabbitMQ
func (p *EventPublisher) Close() error {
	if !p.enabled {
		return nil
	}

	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			log.Printf("Error closing RabbitMQ channel: %v", err)
		}
	}

	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			return fmt.Errorf("error closing RabbitMQ connection: %w", err)
		}
	}

	return nil
}
