package media

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"upload-service/internal/models"
)

type fakeExecutor struct {
	calls [][]string
	err   error
}

func (f *fakeExecutor) Run(ctx context.Context, args ...string) error {
	f.calls = append(f.calls, args)
	if f.err != nil {
		return f.err
	}
	// ffmpeg writes its output to the last argument.
	return os.WriteFile(args[len(args)-1], []byte("frame"), 0o644)
}

type fakeProber struct {
	result *ProbeResult
	err    error
}

func (f *fakeProber) Probe(ctx context.Context, path string) (*ProbeResult, error) {
	return f.result, f.err
}

func newTestProcessor(t *testing.T, executor Executor, prober Prober) *Processor {
	t.Helper()
	return NewProcessorWith(t.TempDir(), executor, prober)
}

func writeTestPNG(t *testing.T, dir string, width, height int) string {
	t.Helper()
	path := filepath.Join(dir, "src.png")
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	require.NoError(t, imaging.Save(img, path))
	return path
}

func TestExtractMetadata_Image(t *testing.T) {
	p := newTestProcessor(t, &fakeExecutor{}, &fakeProber{})
	src := writeTestPNG(t, t.TempDir(), 300, 150)

	meta := p.ExtractMetadata(context.Background(), src, "image/png")

	assert.Equal(t, 300, meta.Width)
	assert.Equal(t, 150, meta.Height)
	assert.Equal(t, "png", meta.Format)
	assert.Positive(t, meta.SizeBytes)
}

func TestExtractMetadata_Video(t *testing.T) {
	prober := &fakeProber{result: &ProbeResult{
		Streams: []ProbeStream{{CodecType: "video", CodecName: "h264", Width: 1280, Height: 720}},
		Format:  ProbeFormat{FormatName: "mp4", Duration: "12.000000", BitRate: "900000"},
	}}
	p := newTestProcessor(t, &fakeExecutor{}, prober)

	path := filepath.Join(t.TempDir(), "clip.mp4")
	require.NoError(t, os.WriteFile(path, []byte("fake"), 0o644))

	meta := p.ExtractMetadata(context.Background(), path, "video/mp4")

	assert.Equal(t, int64(12000), meta.DurationMs)
	assert.Equal(t, int64(900000), meta.Bitrate)
	assert.Equal(t, "mp4", meta.Format)
	assert.Equal(t, "h264", meta.Codec)
	assert.Equal(t, 1280, meta.Width)
}

func TestExtractMetadata_DegradesSilently(t *testing.T) {
	prober := &fakeProber{err: fmt.Errorf("ffprobe: executable not found")}
	p := newTestProcessor(t, &fakeExecutor{}, prober)

	path := filepath.Join(t.TempDir(), "clip.mp4")
	require.NoError(t, os.WriteFile(path, []byte("fake"), 0o644))

	meta := p.ExtractMetadata(context.Background(), path, "video/mp4")

	// Probe failure leaves media fields unset but never errors.
	assert.Zero(t, meta.DurationMs)
	assert.Empty(t, meta.Codec)
	assert.Positive(t, meta.SizeBytes)
}

func TestValidateContent(t *testing.T) {
	png := writeTestPNG(t, t.TempDir(), 10, 10)
	textPath := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(textPath, []byte("just some text\n"), 0o644))
	pdfPath := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, os.WriteFile(pdfPath, []byte("%PDF-1.4\n%fake document\n"), 0o644))

	videoResult := &ProbeResult{Streams: []ProbeStream{{CodecType: "video"}}}
	audioOnlyResult := &ProbeResult{Streams: []ProbeStream{{CodecType: "audio"}}}

	tests := []struct {
		name     string
		path     string
		mimeType string
		prober   *fakeProber
		want     bool
	}{
		{"valid png", png, "image/png", &fakeProber{}, true},
		{"text claimed as image", textPath, "image/jpeg", &fakeProber{}, false},
		{"video with video stream", png, "video/mp4", &fakeProber{result: videoResult}, true},
		{"video with only audio stream", png, "video/mp4", &fakeProber{result: audioOnlyResult}, false},
		{"audio with audio stream", png, "audio/mpeg", &fakeProber{result: audioOnlyResult}, true},
		{"probe failure", png, "video/mp4", &fakeProber{err: fmt.Errorf("boom")}, false},
		{"pdf magic", pdfPath, "application/pdf", &fakeProber{}, true},
		{"plain text", textPath, "text/plain", &fakeProber{}, true},
		{"png claimed as pdf", png, "application/pdf", &fakeProber{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProcessor(t, &fakeExecutor{}, tt.prober)
			assert.Equal(t, tt.want, p.ValidateContent(context.Background(), tt.path, tt.mimeType))
		})
	}
}

func TestDetectMimeType(t *testing.T) {
	p := newTestProcessor(t, &fakeExecutor{}, &fakeProber{})

	png := writeTestPNG(t, t.TempDir(), 10, 10)
	pdfPath := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, os.WriteFile(pdfPath, []byte("%PDF-1.4\n%fake document\n"), 0o644))
	textPath := filepath.Join(t.TempDir(), "notes")
	require.NoError(t, os.WriteFile(textPath, []byte("plain prose, no markup\n"), 0o644))

	ctx := context.Background()

	detected, err := p.DetectMimeType(ctx, png)
	require.NoError(t, err)
	assert.Equal(t, "image/png", detected)

	detected, err = p.DetectMimeType(ctx, pdfPath)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", detected)

	// Text detection carries no charset parameter, so the result compares
	// cleanly against an allow-list entry.
	detected, err = p.DetectMimeType(ctx, textPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(detected, "text/"), "detected %q", detected)
	assert.NotContains(t, detected, ";")

	_, err = p.DetectMimeType(ctx, filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestGenerateThumbnail_CoverFit(t *testing.T) {
	p := newTestProcessor(t, &fakeExecutor{}, &fakeProber{})
	src := writeTestPNG(t, t.TempDir(), 400, 100)
	dst := filepath.Join(t.TempDir(), "thumb.jpg")

	err := p.GenerateThumbnail(context.Background(), src, dst, models.ThumbnailOptions{
		Width: 100, Height: 100, Format: "jpeg", Quality: 80,
	})
	require.NoError(t, err)

	f, err := os.Open(dst)
	require.NoError(t, err)
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 100, cfg.Height)
}

func TestGenerateThumbnail_WebPGoesThroughFFmpeg(t *testing.T) {
	executor := &fakeExecutor{}
	p := newTestProcessor(t, executor, &fakeProber{})
	src := writeTestPNG(t, t.TempDir(), 50, 50)
	dst := filepath.Join(t.TempDir(), "thumb.webp")

	err := p.GenerateThumbnail(context.Background(), src, dst, models.ThumbnailOptions{})
	require.NoError(t, err)

	require.Len(t, executor.calls, 1)
	args := strings.Join(executor.calls[0], " ")
	assert.Contains(t, args, "scale=200:200:force_original_aspect_ratio=increase,crop=200:200")
	assert.Contains(t, args, "-quality 80")
	assert.Contains(t, args, dst)
}

func TestGenerateVideoPreview(t *testing.T) {
	executor := &fakeExecutor{}
	p := newTestProcessor(t, executor, &fakeProber{})
	dst := filepath.Join(t.TempDir(), "preview.jpeg")

	err := p.GenerateVideoPreview(context.Background(), "/tmp/clip.mp4", dst, models.VideoPreviewOptions{})
	require.NoError(t, err)

	require.Len(t, executor.calls, 1)
	args := strings.Join(executor.calls[0], " ")
	assert.Contains(t, args, "-ss 5")
	assert.Contains(t, args, "-frames:v 1")
	assert.Contains(t, args, "scale=320:240")
}

func TestCreateTempPathIsUnique(t *testing.T) {
	p := newTestProcessor(t, &fakeExecutor{}, &fakeProber{})

	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		path := p.CreateTempPath(".mp4")
		assert.True(t, strings.HasSuffix(path, ".mp4"))
		_, dup := seen[path]
		assert.False(t, dup, "duplicate temp path %q", path)
		seen[path] = struct{}{}
	}
}

func TestCleanupIsBestEffort(t *testing.T) {
	p := newTestProcessor(t, &fakeExecutor{}, &fakeProber{})

	existing := p.CreateTempPath(".tmp")
	require.NoError(t, os.WriteFile(existing, []byte("x"), 0o644))

	// A missing path and an empty entry must not stop the rest.
	p.Cleanup([]string{"", filepath.Join(p.TempDir(), "never-created.tmp"), existing})

	_, err := os.Stat(existing)
	assert.True(t, os.IsNotExist(err))
}

func TestProcessorHealthCheck(t *testing.T) {
	p := newTestProcessor(t, &fakeExecutor{}, &fakeProber{})
	assert.True(t, p.HealthCheck())
}
