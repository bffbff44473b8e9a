package models

import "time"

// FileMetadata describes an uploaded asset. Media fields are populated
// progressively during processing and stay zero when extraction fails for
// that dimension.
type FileMetadata struct {
	FileName   string `json:"fileName"`             // Original filename
	MimeType   string `json:"mimeType"`             // Claimed MIME type
	SizeBytes  int64  `json:"sizeBytes"`            // Size in bytes
	Checksum   string `json:"checksum,omitempty"`   // MD5 of the stored bytes
	Width      int    `json:"width,omitempty"`      // Pixels, images and video
	Height     int    `json:"height,omitempty"`     // Pixels, images and video
	DurationMs int64  `json:"durationMs,omitempty"` // Audio/video duration
	Bitrate    int64  `json:"bitrate,omitempty"`    // Bits per second
	Format     string `json:"format,omitempty"`     // Container or image format
	Codec      string `json:"codec,omitempty"`      // Primary stream codec
}

// ScanVerdict is the malware scanner's classification of a file.
type ScanVerdict struct {
	Status        ScanStatus `json:"status"`
	ScannedAt     *time.Time `json:"scannedAt,omitempty"`
	Engine        string     `json:"engine,omitempty"`
	EngineVersion string     `json:"engineVersion,omitempty"`
	Threats       []string   `json:"threats,omitempty"` // Populated when infected
}

// ProcessingOutcome is the result of one pipeline invocation. It is created
// at pipeline start, mutated as stages complete and finalized before return;
// the service never persists it durably.
type ProcessingOutcome struct {
	ObjectKey    string           `json:"objectKey"`
	Status       ProcessingStatus `json:"status"`
	PublicURL    string           `json:"publicUrl"`
	ThumbnailURL string           `json:"thumbnailUrl,omitempty"`
	PreviewURL   string           `json:"previewUrl,omitempty"`
	Metadata     FileMetadata     `json:"metadata"`
	Scan         ScanVerdict      `json:"scan"`
	ProcessedAt  *time.Time       `json:"processedAt,omitempty"`
}

// PresignedUpload is handed to the client for a direct-to-store transfer.
type PresignedUpload struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
	PublicURL string `json:"publicUrl"`
	ExpiresIn int    `json:"expiresIn"`
}

// HealthStatus aggregates the orchestrator's dependency probes.
type HealthStatus struct {
	Store           bool `json:"store"`
	Scanner         bool `json:"scanner"`
	MediaProcessing bool `json:"mediaProcessing"`
}
