package models

// ThumbnailOptions controls derivative thumbnail generation. Zero fields fall
// back to the defaults below.
type ThumbnailOptions struct {
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Format  string `json:"format"`
	Quality int    `json:"quality"`
}

// DefaultThumbnailOptions are the standard chat thumbnail settings.
func DefaultThumbnailOptions() ThumbnailOptions {
	return ThumbnailOptions{Width: 200, Height: 200, Format: "webp", Quality: 80}
}

// WithDefaults fills unset fields from the defaults.
func (o ThumbnailOptions) WithDefaults() ThumbnailOptions {
	def := DefaultThumbnailOptions()
	if o.Width <= 0 {
		o.Width = def.Width
	}
	if o.Height <= 0 {
		o.Height = def.Height
	}
	if o.Format == "" {
		o.Format = def.Format
	}
	if o.Quality <= 0 {
		o.Quality = def.Quality
	}
	return o
}

// ImageOptimizeOptions controls image re-encoding.
type ImageOptimizeOptions struct {
	Quality       int  `json:"quality"`
	ConvertToWebP bool `json:"convertToWebP"`
}

// WithDefaults fills unset fields.
func (o ImageOptimizeOptions) WithDefaults() ImageOptimizeOptions {
	if o.Quality <= 0 {
		o.Quality = 80
	}
	return o
}

// VideoPreviewOptions controls preview-frame extraction.
type VideoPreviewOptions struct {
	TimestampSeconds float64 `json:"timestampSeconds"`
	Width            int     `json:"width"`
	Height           int     `json:"height"`
	Format           string  `json:"format"`
}

// DefaultVideoPreviewOptions are the standard preview-frame settings.
func DefaultVideoPreviewOptions() VideoPreviewOptions {
	return VideoPreviewOptions{TimestampSeconds: 5, Width: 320, Height: 240, Format: "jpeg"}
}

// WithDefaults fills unset fields from the defaults.
func (o VideoPreviewOptions) WithDefaults() VideoPreviewOptions {
	def := DefaultVideoPreviewOptions()
	if o.TimestampSeconds <= 0 {
		o.TimestampSeconds = def.TimestampSeconds
	}
	if o.Width <= 0 {
		o.Width = def.Width
	}
	if o.Height <= 0 {
		o.Height = def.Height
	}
	if o.Format == "" {
		o.Format = def.Format
	}
	return o
}
