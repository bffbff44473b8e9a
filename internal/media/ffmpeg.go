package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Executor runs an ffmpeg invocation. The indirection keeps transcode calls
// testable without the binary installed.
type Executor interface {
	Run(ctx context.Context, args ...string) error
}

// LocalExecutor shells out to the ffmpeg binary.
type LocalExecutor struct {
	Binary string
}

func (e *LocalExecutor) Run(ctx context.Context, args ...string) error {
	bin := e.Binary
	if bin == "" {
		bin = "ffmpeg"
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, lastLine(stderr.String()))
	}
	return nil
}

// Prober extracts container and stream information from a media file.
type Prober interface {
	Probe(ctx context.Context, path string) (*ProbeResult, error)
}

// LocalProber shells out to ffprobe with JSON output.
type LocalProber struct {
	Binary string
}

func (p *LocalProber) Probe(ctx context.Context, path string) (*ProbeResult, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("ffprobe: empty path")
	}
	bin := p.Binary
	if bin == "" {
		bin = "ffprobe"
	}
	cmd := exec.CommandContext(ctx, bin,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe: %w", err)
	}
	return parseProbeOutput(out)
}

// ProbeStream is one stream entry from ffprobe output.
type ProbeStream struct {
	CodecType string `json:"codec_type"`
	CodecName string `json:"codec_name"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Duration  string `json:"duration"`
	BitRate   string `json:"bit_rate"`
}

// ProbeFormat is the container-level entry from ffprobe output.
type ProbeFormat struct {
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
	BitRate    string `json:"bit_rate"`
}

// ProbeResult is the parsed ffprobe report.
type ProbeResult struct {
	Streams []ProbeStream `json:"streams"`
	Format  ProbeFormat   `json:"format"`
}

func parseProbeOutput(data []byte) (*ProbeResult, error) {
	var result ProbeResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}
	return &result, nil
}

// HasStream reports whether the container exposes a stream of the given
// codec type ("video" or "audio").
func (r *ProbeResult) HasStream(codecType string) bool {
	return r.FirstStream(codecType) != nil
}

// FirstStream returns the first stream of the given codec type, or nil.
func (r *ProbeResult) FirstStream(codecType string) *ProbeStream {
	for i := range r.Streams {
		if r.Streams[i].CodecType == codecType {
			return &r.Streams[i]
		}
	}
	return nil
}

// DurationMs returns the container duration in milliseconds, or 0 when the
// report omits it.
func (r *ProbeResult) DurationMs() int64 {
	secs, err := strconv.ParseFloat(r.Format.Duration, 64)
	if err != nil {
		return 0
	}
	return int64(secs * 1000)
}

// BitrateBps returns the container bitrate in bits per second, or 0.
func (r *ProbeResult) BitrateBps() int64 {
	bps, err := strconv.ParseInt(r.Format.BitRate, 10, 64)
	if err != nil {
		return 0
	}
	return bps
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) == 0 {
		return ""
	}
	return lines[len(lines)-1]
}
