package media

import (
	"context"
	"fmt"
	"image"
	"log"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"upload-service/internal/config"
	"upload-service/internal/models"
	"upload-service/pkg/utils"
)

// Processor extracts media metadata, validates content against its claimed
// MIME family and generates derivatives. Raster work that imaging can encode
// stays in-process; webp targets and anything video go through ffmpeg.
type Processor struct {
	tempDir  string
	executor Executor
	prober   Prober
}

// NewProcessor builds a processor using the configured binaries and scratch
// directory.
func NewProcessor(cfg *config.MediaConfig) *Processor {
	tempDir := filepath.Join(cfg.TempDir, "upload-processing")
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		log.Printf("Warning: failed to create temp directory %s: %v", tempDir, err)
		tempDir = cfg.TempDir
	}
	return &Processor{
		tempDir:  tempDir,
		executor: &LocalExecutor{Binary: cfg.FFmpegBinary},
		prober:   &LocalProber{Binary: cfg.FFprobeBinary},
	}
}

// NewProcessorWith builds a processor with injected ffmpeg collaborators.
func NewProcessorWith(tempDir string, executor Executor, prober Prober) *Processor {
	return &Processor{tempDir: tempDir, executor: executor, prober: prober}
}

// ExtractMetadata populates media fields for the file at path. Extraction is
// failure-tolerant per family: a probe error leaves the base metadata
// unmodified and never fails the caller.
func (p *Processor) ExtractMetadata(ctx context.Context, path, mimeType string) models.FileMetadata {
	meta := models.FileMetadata{MimeType: mimeType}
	if info, err := os.Stat(path); err == nil {
		meta.SizeBytes = info.Size()
	}

	switch utils.FamilyOf(mimeType) {
	case utils.FamilyImage:
		p.extractImageMetadata(path, &meta)
	case utils.FamilyVideo, utils.FamilyAudio:
		p.extractAVMetadata(ctx, path, &meta)
	}
	return meta
}

func (p *Processor) extractImageMetadata(path string, meta *models.FileMetadata) {
	f, err := os.Open(path)
	if err != nil {
		log.Printf("Error opening image for metadata: %v", err)
		return
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		log.Printf("Error decoding image metadata for %s: %v", path, err)
		return
	}
	meta.Width = cfg.Width
	meta.Height = cfg.Height
	meta.Format = format
}

func (p *Processor) extractAVMetadata(ctx context.Context, path string, meta *models.FileMetadata) {
	result, err := p.prober.Probe(ctx, path)
	if err != nil {
		log.Printf("Error probing media %s: %v", path, err)
		return
	}
	meta.DurationMs = result.DurationMs()
	meta.Bitrate = result.BitrateBps()
	meta.Format = result.Format.FormatName

	stream := result.FirstStream("video")
	if stream == nil {
		stream = result.FirstStream("audio")
	}
	if stream != nil {
		meta.Codec = stream.CodecName
		meta.Width = stream.Width
		meta.Height = stream.Height
	}
}

// ValidateContent confirms the bytes at path are a well-formed instance of
// the claimed MIME family: images must decode, video/audio must actually
// expose a stream of the claimed type, documents must match their magic.
func (p *Processor) ValidateContent(ctx context.Context, path, mimeType string) bool {
	switch utils.FamilyOf(mimeType) {
	case utils.FamilyImage:
		f, err := os.Open(path)
		if err != nil {
			return false
		}
		defer f.Close()
		_, _, err = image.DecodeConfig(f)
		return err == nil
	case utils.FamilyVideo:
		result, err := p.prober.Probe(ctx, path)
		return err == nil && result.HasStream("video")
	case utils.FamilyAudio:
		result, err := p.prober.Probe(ctx, path)
		return err == nil && result.HasStream("audio")
	default:
		detected, err := mimetype.DetectFile(path)
		if err != nil {
			log.Printf("Error detecting content type of %s: %v", path, err)
			return false
		}
		if detected.Is(mimeType) {
			return true
		}
		// Plain-text formats (txt, csv) sniff as generic text.
		return strings.HasPrefix(mimeType, "text/") && strings.HasPrefix(detected.String(), "text/")
	}
}

// DetectMimeType sniffs the MIME type of the bytes at path. The returned
// type carries no parameters, so it compares cleanly against policy
// allow-lists.
func (p *Processor) DetectMimeType(ctx context.Context, path string) (string, error) {
	detected, err := mimetype.DetectFile(path)
	if err != nil {
		return "", fmt.Errorf("error detecting content type: %w", err)
	}
	base, _, err := mime.ParseMediaType(detected.String())
	if err != nil {
		return detected.String(), nil
	}
	return base, nil
}

// GenerateThumbnail produces a cover-fit, centered thumbnail of an image.
func (p *Processor) GenerateThumbnail(ctx context.Context, srcPath, dstPath string, opts models.ThumbnailOptions) error {
	opts = opts.WithDefaults()

	if opts.Format == "webp" {
		// imaging has no webp encoder; scale-and-crop through ffmpeg instead.
		vf := fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d",
			opts.Width, opts.Height, opts.Width, opts.Height)
		return p.executor.Run(ctx,
			"-y", "-i", srcPath,
			"-vf", vf,
			"-frames:v", "1",
			"-quality", fmt.Sprintf("%d", opts.Quality),
			dstPath,
		)
	}

	img, err := imaging.Open(srcPath, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("error decoding image: %w", err)
	}
	thumb := imaging.Fill(img, opts.Width, opts.Height, imaging.Center, imaging.Lanczos)
	if err := imaging.Save(thumb, dstPath, imaging.JPEGQuality(opts.Quality)); err != nil {
		return fmt.Errorf("error encoding thumbnail: %w", err)
	}
	return nil
}

// GenerateVideoPreview extracts exactly one frame at the requested timestamp
// and scales it to the preview size.
func (p *Processor) GenerateVideoPreview(ctx context.Context, srcPath, dstPath string, opts models.VideoPreviewOptions) error {
	opts = opts.WithDefaults()
	return p.executor.Run(ctx,
		"-y",
		"-ss", fmt.Sprintf("%g", opts.TimestampSeconds),
		"-i", srcPath,
		"-frames:v", "1",
		"-vf", fmt.Sprintf("scale=%d:%d", opts.Width, opts.Height),
		dstPath,
	)
}

// OptimizeImage re-encodes an image at the given quality, optionally
// converting to webp.
func (p *Processor) OptimizeImage(ctx context.Context, srcPath, dstPath string, opts models.ImageOptimizeOptions) error {
	opts = opts.WithDefaults()

	if opts.ConvertToWebP {
		return p.executor.Run(ctx,
			"-y", "-i", srcPath,
			"-quality", fmt.Sprintf("%d", opts.Quality),
			dstPath,
		)
	}

	img, err := imaging.Open(srcPath, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("error decoding image: %w", err)
	}
	if err := imaging.Save(img, dstPath, imaging.JPEGQuality(opts.Quality)); err != nil {
		return fmt.Errorf("error encoding image: %w", err)
	}
	return nil
}

// CreateTempPath returns a unique scratch path with the given dotted
// extension. The caller owns the path and must release it via Cleanup.
func (p *Processor) CreateTempPath(ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return filepath.Join(p.tempDir, uuid.NewString()+ext)
}

// Cleanup removes scratch paths best-effort: one failed deletion does not
// abort deletion of the rest, and failures are logged, never propagated.
func (p *Processor) Cleanup(paths []string) {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("Warning: failed to remove temp file %s: %v", path, err)
		}
	}
}

// HealthCheck is always true: the processor has no external dependency to
// probe beyond the process itself.
func (p *Processor) HealthCheck() bool { return true }

// TempDir exposes the scratch directory, mainly for tests.
func (p *Processor) TempDir() string { return p.tempDir }
