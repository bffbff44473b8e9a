package models

// UploadPolicy is the per-category upload constraint table.
type UploadPolicy struct {
	MaxBytes         int64
	AllowedMimeTypes []string
}

const (
	// MinImageBytes is the plausibility floor for image uploads; anything
	// smaller cannot be a decodable image.
	MinImageBytes = 100

	// PresignExpirySeconds is the fixed TTL of issued presigned URLs.
	PresignExpirySeconds = 3600
)

var uploadPolicies = map[FileCategory]UploadPolicy{
	FileCategoryAvatar: {
		MaxBytes:         5 * 1024 * 1024,
		AllowedMimeTypes: []string{"image/jpeg", "image/png", "image/webp"},
	},
	FileCategoryImage: {
		MaxBytes:         10 * 1024 * 1024,
		AllowedMimeTypes: []string{"image/jpeg", "image/png", "image/webp", "image/gif", "image/bmp"},
	},
	FileCategoryVideo: {
		MaxBytes:         50 * 1024 * 1024,
		AllowedMimeTypes: []string{"video/mp4", "video/webm", "video/ogg", "video/x-msvideo", "video/quicktime"},
	},
	FileCategoryAudio: {
		MaxBytes:         20 * 1024 * 1024,
		AllowedMimeTypes: []string{"audio/mpeg", "audio/wav", "audio/ogg", "audio/aac", "audio/mp4"},
	},
	FileCategoryDocument: {
		MaxBytes: 25 * 1024 * 1024,
		AllowedMimeTypes: []string{
			"application/pdf",
			"application/msword",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			"text/plain",
			"text/csv",
		},
	},
}

// PolicyFor returns the upload policy for a category.
func PolicyFor(category FileCategory) (UploadPolicy, bool) {
	p, ok := uploadPolicies[category]
	return p, ok
}

// AllowsMime reports whether the policy accepts the given MIME type.
func (p UploadPolicy) AllowsMime(mimeType string) bool {
	for _, m := range p.AllowedMimeTypes {
		if m == mimeType {
			return true
		}
	}
	return false
}

// Categories lists every known file category.
func Categories() []FileCategory {
	return []FileCategory{
		FileCategoryAvatar,
		FileCategoryImage,
		FileCategoryVideo,
		FileCategoryAudio,
		FileCategoryDocument,
	}
}
