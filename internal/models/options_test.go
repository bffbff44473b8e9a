package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThumbnailOptionsDefaults(t *testing.T) {
	opts := ThumbnailOptions{}.WithDefaults()
	assert.Equal(t, ThumbnailOptions{Width: 200, Height: 200, Format: "webp", Quality: 80}, opts)

	// Explicit values survive.
	opts = ThumbnailOptions{Width: 64, Format: "jpeg"}.WithDefaults()
	assert.Equal(t, 64, opts.Width)
	assert.Equal(t, 200, opts.Height)
	assert.Equal(t, "jpeg", opts.Format)
	assert.Equal(t, 80, opts.Quality)
}

func TestVideoPreviewOptionsDefaults(t *testing.T) {
	opts := VideoPreviewOptions{}.WithDefaults()
	assert.Equal(t, VideoPreviewOptions{TimestampSeconds: 5, Width: 320, Height: 240, Format: "jpeg"}, opts)

	opts = VideoPreviewOptions{TimestampSeconds: 1.5, Width: 640}.WithDefaults()
	assert.Equal(t, 1.5, opts.TimestampSeconds)
	assert.Equal(t, 640, opts.Width)
	assert.Equal(t, 240, opts.Height)
}
