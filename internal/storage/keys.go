package storage

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"upload-service/internal/models"
)

// GenerateKey derives a collision-free object key of the form
// <folder>/<identifier>/<epochMillis>_<randomHex><ext>. The random component
// keeps concurrent callers from colliding within the same millisecond.
func GenerateKey(category models.FileCategory, identifier, ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return fmt.Sprintf("%s/%s/%d_%s%s", category.Folder(), identifier, time.Now().UnixMilli(), randomHex(8), ext)
}

// ThumbnailKey derives the deterministic thumbnail key for an original
// object key. Re-processing the same key always yields the same derivative.
func ThumbnailKey(objectKey, format string) string {
	return stripExt(objectKey) + "_thumb." + format
}

// PreviewKey derives the deterministic video preview key for an original
// object key.
func PreviewKey(objectKey, format string) string {
	return stripExt(objectKey) + "_preview." + format
}

func stripExt(key string) string {
	// Only trim an extension in the final path segment.
	if idx := strings.LastIndex(key, "."); idx > strings.LastIndex(key, "/") {
		return key[:idx]
	}
	return key
}

func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand never fails on supported platforms; fall back to the
		// timestamp so a key is still produced.
		return fmt.Sprintf("%x", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
