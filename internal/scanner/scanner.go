package scanner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	clamd "github.com/dutchcoders/go-clamd"

	"upload-service/internal/config"
	"upload-service/internal/models"
)

// Engine names stamped onto verdicts for audit.
const (
	engineClamAV   = "ClamAV"
	engineDisabled = "Disabled"
)

type state int

const (
	stateUninitialized state = iota // New() called, Initialize() not yet run
	stateDisabled                   // Scanning turned off, everything is clean
	stateReady                      // Daemon reachable
)

// Scanner is the malware scanning component. It starts uninitialized and
// moves to either ready or disabled in Initialize; every call site switches
// on that state instead of nil-checking a client.
type Scanner struct {
	cfg     *config.ClamAVConfig
	state   state
	client  *clamd.Clamd
	version string
}

// New creates an uninitialized scanner.
func New(cfg *config.ClamAVConfig) *Scanner {
	return &Scanner{cfg: cfg, state: stateUninitialized}
}

// Initialize connects to the scanning daemon. When the daemon is
// unreachable the scanner degrades to the disabled, always-clean mode unless
// FailHard is set, in which case the error is returned for the caller to
// treat as fatal.
func (s *Scanner) Initialize() error {
	if !s.cfg.Enabled {
		log.Println("Malware scanning is disabled by configuration")
		s.state = stateDisabled
		return nil
	}

	client := clamd.NewClamd(s.address())
	if err := client.Ping(); err != nil {
		if s.cfg.FailHard {
			return fmt.Errorf("clamd unreachable at %s: %w", s.address(), err)
		}
		log.Printf("Warning: clamd unreachable at %s, scanning disabled: %v", s.address(), err)
		s.state = stateDisabled
		return nil
	}

	s.client = client
	s.state = stateReady
	s.version = s.fetchVersion()
	log.Printf("Connected to clamd at %s (%s)", s.address(), s.version)
	return nil
}

// ScanFile scans a local file and returns the verdict. The scanner performs
// no retries; degrade decisions belong to the caller.
func (s *Scanner) ScanFile(ctx context.Context, path string) *models.ScanVerdict {
	f, err := os.Open(path)
	if err != nil {
		return s.errorVerdict(fmt.Errorf("error opening file for scan: %w", err))
	}
	defer f.Close()
	return s.scan(ctx, f)
}

// ScanBytes scans an in-memory buffer.
func (s *Scanner) ScanBytes(ctx context.Context, data []byte) *models.ScanVerdict {
	return s.scan(ctx, bytes.NewReader(data))
}

func (s *Scanner) scan(ctx context.Context, r io.Reader) *models.ScanVerdict {
	verdict := &models.ScanVerdict{Status: models.ScanStatusPending}

	switch s.state {
	case stateDisabled:
		now := time.Now()
		verdict.Status = models.ScanStatusClean
		verdict.Engine = engineDisabled
		verdict.ScannedAt = &now
		return verdict
	case stateUninitialized:
		return s.errorVerdict(fmt.Errorf("scanner not initialized"))
	}

	verdict.Status = models.ScanStatusScanning
	verdict.Engine = engineClamAV
	verdict.EngineVersion = s.version

	abort := make(chan bool)
	defer close(abort)
	results, err := s.client.ScanStream(r, abort)
	if err != nil {
		return s.errorVerdict(fmt.Errorf("error submitting scan: %w", err))
	}

	timeout := s.cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	var threats []string
	status := models.ScanStatusClean
	timer := time.NewTimer(timeout)
	defer timer.Stop()
collect:
	for {
		select {
		case res, ok := <-results:
			if !ok {
				break collect
			}
			switch res.Status {
			case clamd.RES_FOUND:
				status = models.ScanStatusInfected
				threat := res.Description
				if threat == "" {
					threat = "Unknown threat"
				}
				threats = append(threats, threat)
			case clamd.RES_ERROR, clamd.RES_PARSE_ERROR:
				return s.errorVerdict(fmt.Errorf("clamd error: %s", res.Raw))
			}
		case <-ctx.Done():
			return s.errorVerdict(ctx.Err())
		case <-timer.C:
			return s.errorVerdict(fmt.Errorf("scan timed out after %s", timeout))
		}
	}

	now := time.Now()
	verdict.Status = status
	verdict.Threats = threats
	verdict.ScannedAt = &now
	return verdict
}

// HealthCheck reports scanner liveness; a disabled scanner is always healthy.
func (s *Scanner) HealthCheck(ctx context.Context) bool {
	switch s.state {
	case stateDisabled:
		return true
	case stateReady:
		if err := s.client.Ping(); err != nil {
			log.Printf("Scanner health check failed: %v", err)
			return false
		}
		return true
	default:
		return false
	}
}

func (s *Scanner) errorVerdict(err error) *models.ScanVerdict {
	log.Printf("Error scanning content: %v", err)
	now := time.Now()
	return &models.ScanVerdict{
		Status:        models.ScanStatusError,
		ScannedAt:     &now,
		Engine:        engineClamAV,
		EngineVersion: s.version,
	}
}

func (s *Scanner) fetchVersion() string {
	ch, err := s.client.Version()
	if err != nil {
		return ""
	}
	for res := range ch {
		if v := strings.TrimSpace(res.Raw); v != "" {
			return v
		}
	}
	return ""
}

func (s *Scanner) address() string {
	if s.cfg.Socket != "" {
		return "unix:" + s.cfg.Socket
	}
	return fmt.Sprintf("tcp://%s:%s", s.cfg.Host, s.cfg.Port)
}
