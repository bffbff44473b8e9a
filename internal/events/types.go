package events

import (
	"time"

	"github.com/google/uuid"

	"upload-service/internal/models"
)

type EventType string

const (
	EventTypeFileProcessed EventType = "file.processed"
	EventTypeFileInfected  EventType = "file.infected"
	EventTypeAssetDeleted  EventType = "asset.deleted"
	EventTypeAvatarUpdated EventType = "avatar.updated"
)

// BaseEvent represents the common fields for all events
type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp int64     `json:"timestamp"`
	Version   string    `json:"version"`
}

// FileProcessedEvent announces a finished pipeline run.
type FileProcessedEvent struct {
	BaseEvent
	ObjectKey    string                  `json:"objectKey"`
	Category     models.FileCategory     `json:"category"`
	Status       models.ProcessingStatus `json:"status"`
	PublicURL    string                  `json:"publicUrl,omitempty"`
	ThumbnailURL string                  `json:"thumbnailUrl,omitempty"`
}

// FileInfectedEvent announces a quarantine decision; the source object has
// already been deleted when this is published.
type FileInfectedEvent struct {
	BaseEvent
	ObjectKey string   `json:"objectKey"`
	Threats   []string `json:"threats"`
}

// AssetDeletedEvent announces removal of an original and its derivatives.
type AssetDeletedEvent struct {
	BaseEvent
	ObjectKey string `json:"objectKey"`
}

// AvatarUpdatedEvent carries the new avatar URL for the profile service to
// apply to its user record.
type AvatarUpdatedEvent struct {
	BaseEvent
	UserID    string `json:"userId"`
	AvatarURL string `json:"avatarUrl"`
}

func newBaseEvent(t EventType) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      t,
		Timestamp: time.Now().Unix(),
		Version:   "1.0",
	}
}

// NewFileProcessedEvent creates a file processed event
func NewFileProcessedEvent(outcome *models.ProcessingOutcome, category models.FileCategory) *FileProcessedEvent {
	return &FileProcessedEvent{
		BaseEvent:    newBaseEvent(EventTypeFileProcessed),
		ObjectKey:    outcome.ObjectKey,
		Category:     category,
		Status:       outcome.Status,
		PublicURL:    outcome.PublicURL,
		ThumbnailURL: outcome.ThumbnailURL,
	}
}

// NewFileInfectedEvent creates a file infected event
func NewFileInfectedEvent(objectKey string, threats []string) *FileInfectedEvent {
	return &FileInfectedEvent{
		BaseEvent: newBaseEvent(EventTypeFileInfected),
		ObjectKey: objectKey,
		Threats:   threats,
	}
}

// NewAssetDeletedEvent creates an asset deleted event
func NewAssetDeletedEvent(objectKey string) *AssetDeletedEvent {
	return &AssetDeletedEvent{
		BaseEvent: newBaseEvent(EventTypeAssetDeleted),
		ObjectKey: objectKey,
	}
}

// NewAvatarUpdatedEvent creates an avatar updated event
func NewAvatarUpdatedEvent(userID, avatarURL string) *AvatarUpdatedEvent {
	return &AvatarUpdatedEvent{
		BaseEvent: newBaseEvent(EventTypeAvatarUpdated),
		UserID:    userID,
		AvatarURL: avatarURL,
	}
}
