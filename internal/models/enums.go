package models

import "fmt"

// FileCategory determines the size ceiling, the allowed MIME set and the
// storage folder for an upload.
type FileCategory string

const (
	FileCategoryAvatar   FileCategory = "avatar"
	FileCategoryImage    FileCategory = "image"
	FileCategoryVideo    FileCategory = "video"
	FileCategoryAudio    FileCategory = "audio"
	FileCategoryDocument FileCategory = "document"
)

// ParseFileCategory maps a request value onto a known category.
func ParseFileCategory(s string) (FileCategory, error) {
	switch FileCategory(s) {
	case FileCategoryAvatar, FileCategoryImage, FileCategoryVideo, FileCategoryAudio, FileCategoryDocument:
		return FileCategory(s), nil
	}
	return "", fmt.Errorf("unknown file category: %q", s)
}

// Folder returns the object key prefix for the category.
func (c FileCategory) Folder() string {
	switch c {
	case FileCategoryAvatar:
		return "avatars"
	case FileCategoryImage:
		return "images"
	case FileCategoryVideo:
		return "videos"
	case FileCategoryAudio:
		return "audio"
	case FileCategoryDocument:
		return "documents"
	default:
		return "misc"
	}
}

type ProcessingStatus string

const (
	ProcessingStatusPending    ProcessingStatus = "pending"
	ProcessingStatusProcessing ProcessingStatus = "processing"
	ProcessingStatusCompleted  ProcessingStatus = "completed"
	ProcessingStatusFailed     ProcessingStatus = "failed"
)

type ScanStatus string

const (
	ScanStatusPending  ScanStatus = "pending"
	ScanStatusScanning ScanStatus = "scanning"
	ScanStatusClean    ScanStatus = "clean"
	ScanStatusInfected ScanStatus = "infected"
	ScanStatusError    ScanStatus = "error" // Scanner failed, not a verdict on the file
)
