package utils

import (
	"mime"
	"path/filepath"
	"strings"
)

// MimeFamily is the coarse grouping the media pipeline dispatches on.
type MimeFamily string

const (
	FamilyImage    MimeFamily = "image"
	FamilyVideo    MimeFamily = "video"
	FamilyAudio    MimeFamily = "audio"
	FamilyDocument MimeFamily = "document"
	FamilyOther    MimeFamily = "other"
)

var documentMimeTypes = map[string]struct{}{
	"application/pdf":    {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"application/vnd.ms-excel": {},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": {},
	"text/plain": {},
	"text/csv":   {},
}

// FamilyOf classifies a MIME type into a processing family.
func FamilyOf(mimeType string) MimeFamily {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return FamilyImage
	case strings.HasPrefix(mimeType, "video/"):
		return FamilyVideo
	case strings.HasPrefix(mimeType, "audio/"):
		return FamilyAudio
	}
	if _, ok := documentMimeTypes[mimeType]; ok {
		return FamilyDocument
	}
	return FamilyOther
}

// IsImageMime reports whether the MIME type is an image type.
func IsImageMime(mimeType string) bool { return FamilyOf(mimeType) == FamilyImage }

// IsVideoMime reports whether the MIME type is a video type.
func IsVideoMime(mimeType string) bool { return FamilyOf(mimeType) == FamilyVideo }

// IsAudioMime reports whether the MIME type is an audio type.
func IsAudioMime(mimeType string) bool { return FamilyOf(mimeType) == FamilyAudio }

// ExtensionFor returns a dotted file extension for a filename, falling back
// to the MIME type's registered extension when the name carries none.
func ExtensionFor(fileName, mimeType string) string {
	if ext := filepath.Ext(fileName); ext != "" {
		return strings.ToLower(ext)
	}
	exts, err := mime.ExtensionsByType(mimeType)
	if err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}
