package service

import (
	"context"
	"errors"
	"log"
	"mime"
	"path"
	"time"

	"upload-service/internal/models"
	"upload-service/internal/storage"
	"upload-service/pkg/utils"
)

// ObjectStore is the object storage collaborator of the pipeline.
type ObjectStore interface {
	PresignUpload(ctx context.Context, objectKey, contentType string, ttl time.Duration) (string, error)
	Download(ctx context.Context, objectKey, path string) (string, error)
	PutFile(ctx context.Context, objectKey, path, contentType string) error
	Delete(ctx context.Context, objectKey string) error
	Exists(ctx context.Context, objectKey string) (bool, error)
	HealthCheck(ctx context.Context) bool
	PublicURL(objectKey string) string
}

// ContentScanner is the malware scanning collaborator.
type ContentScanner interface {
	ScanFile(ctx context.Context, path string) *models.ScanVerdict
	HealthCheck(ctx context.Context) bool
}

// MediaProcessor is the metadata/derivative collaborator.
type MediaProcessor interface {
	ExtractMetadata(ctx context.Context, path, mimeType string) models.FileMetadata
	ValidateContent(ctx context.Context, path, mimeType string) bool
	DetectMimeType(ctx context.Context, path string) (string, error)
	GenerateThumbnail(ctx context.Context, srcPath, dstPath string, opts models.ThumbnailOptions) error
	GenerateVideoPreview(ctx context.Context, srcPath, dstPath string, opts models.VideoPreviewOptions) error
	CreateTempPath(ext string) string
	Cleanup(paths []string)
	HealthCheck() bool
}

// ProfileUpdater links a processed avatar to a user record. The user record
// itself lives outside this service.
type ProfileUpdater interface {
	UpdateAvatar(ctx context.Context, userID, avatarURL string) error
}

// OutcomeStore caches finished outcomes for out-of-band consumers.
type OutcomeStore interface {
	SaveOutcome(ctx context.Context, outcome *models.ProcessingOutcome) error
	GetOutcome(ctx context.Context, objectKey string) (*models.ProcessingOutcome, error)
	Delete(ctx context.Context, objectKey string) error
}

// EventSink announces pipeline milestones on the message bus.
type EventSink interface {
	PublishFileProcessed(ctx context.Context, outcome *models.ProcessingOutcome, category models.FileCategory) error
	PublishFileInfected(ctx context.Context, objectKey string, threats []string) error
	PublishAssetDeleted(ctx context.Context, objectKey string) error
}

// UploadService orchestrates the asset ingestion pipeline: presigned upload
// issuance, post-upload processing, avatar linkage and asset deletion.
type UploadService struct {
	store    ObjectStore
	scanner  ContentScanner
	media    MediaProcessor
	profiles ProfileUpdater
	outcomes OutcomeStore
	events   EventSink
}

// NewUploadService composes the orchestrator from its collaborators.
// profiles, outcomes and events may be nil; the matching side effects are
// then skipped.
func NewUploadService(store ObjectStore, scanner ContentScanner, media MediaProcessor, profiles ProfileUpdater, outcomes OutcomeStore, events EventSink) *UploadService {
	return &UploadService{
		store:    store,
		scanner:  scanner,
		media:    media,
		profiles: profiles,
		outcomes: outcomes,
		events:   events,
	}
}

// GenerateUploadURL validates the request against the per-category policy
// and, only then, asks the store for a presigned PUT URL. Validation always
// precedes any network call.
func (s *UploadService) GenerateUploadURL(ctx context.Context, category models.FileCategory, fileName, mimeType string, sizeBytes int64, ownerID string) (*models.PresignedUpload, error) {
	policy, ok := models.PolicyFor(category)
	if !ok {
		return nil, models.NewValidationError("unknown file category: %s", category)
	}
	if sizeBytes <= 0 {
		return nil, models.NewValidationError("file size must be positive")
	}
	if sizeBytes > policy.MaxBytes {
		return nil, models.NewValidationError("file size %d exceeds limit of %d bytes for %s uploads", sizeBytes, policy.MaxBytes, category)
	}
	if !policy.AllowsMime(mimeType) {
		return nil, models.NewValidationError("mime type %s is not allowed for %s uploads", mimeType, category)
	}
	if category == models.FileCategoryImage && sizeBytes < models.MinImageBytes {
		return nil, models.NewValidationError("file size %d is below the %d byte minimum for images", sizeBytes, models.MinImageBytes)
	}

	objectKey := storage.GenerateKey(category, ownerID, utils.ExtensionFor(fileName, mimeType))
	uploadURL, err := s.store.PresignUpload(ctx, objectKey, mimeType, models.PresignExpirySeconds*time.Second)
	if err != nil {
		return nil, err
	}

	return &models.PresignedUpload{
		UploadURL: uploadURL,
		ObjectKey: objectKey,
		PublicURL: s.store.PublicURL(objectKey),
		ExpiresIn: models.PresignExpirySeconds,
	}, nil
}

// ProcessFile runs the processing state machine for an uploaded object:
// existence check, download, metadata extraction, structural validation,
// malware scan, derivative generation. The outcome is finalized completed or
// failed before return, and every temp file is released on every exit path.
func (s *UploadService) ProcessFile(ctx context.Context, objectKey string, category models.FileCategory) (*models.ProcessingOutcome, error) {
	outcome := &models.ProcessingOutcome{
		ObjectKey: objectKey,
		Status:    models.ProcessingStatusProcessing,
		PublicURL: s.store.PublicURL(objectKey),
		Scan:      models.ScanVerdict{Status: models.ScanStatusPending},
	}

	var tempPaths []string
	defer func() {
		s.media.Cleanup(tempPaths)
	}()

	// Stage 1: existence. Nothing else runs for an absent key.
	exists, err := s.store.Exists(ctx, objectKey)
	if err != nil {
		return s.fail(outcome, err)
	}
	if !exists {
		return s.fail(outcome, models.NewNotFoundError(objectKey))
	}

	// Stage 2: fetch to scratch.
	localPath := s.media.CreateTempPath(path.Ext(objectKey))
	tempPaths = append(tempPaths, localPath)
	checksum, err := s.store.Download(ctx, objectKey, localPath)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return s.fail(outcome, models.NewNotFoundError(objectKey))
		}
		return s.fail(outcome, err)
	}

	// Stage 3: metadata. Extraction failures degrade fields silently. The
	// claimed type comes from the key extension; when the extension is not
	// registered on the host, the bytes are sniffed and checked against the
	// category's allow-list instead, so a well-formed document never fails on
	// a missing MIME table entry.
	claimedMime := claimedMimeType(objectKey, category)
	if claimedMime == "" {
		detected, err := s.media.DetectMimeType(ctx, localPath)
		if err != nil {
			return s.fail(outcome, models.NewContentInvalidError("application/octet-stream"))
		}
		if policy, ok := models.PolicyFor(category); !ok || !policy.AllowsMime(detected) {
			return s.fail(outcome, models.NewContentInvalidError(detected))
		}
		claimedMime = detected
	}
	meta := s.media.ExtractMetadata(ctx, localPath, claimedMime)
	meta.FileName = path.Base(objectKey)
	meta.Checksum = checksum
	outcome.Metadata = meta

	// Stage 4: structural validation. Terminal; no scan is attempted.
	if !s.media.ValidateContent(ctx, localPath, claimedMime) {
		return s.fail(outcome, models.NewContentInvalidError(claimedMime))
	}

	// Stage 5: scan and policy decision.
	verdict := s.scanner.ScanFile(ctx, localPath)
	outcome.Scan = *verdict
	switch verdict.Status {
	case models.ScanStatusInfected:
		// Quarantine by deletion. A delete failure is logged, not re-raised,
		// so it cannot mask the infection result.
		if err := s.store.Delete(ctx, objectKey); err != nil {
			log.Printf("Error deleting infected object %s: %v", objectKey, err)
		}
		if s.events != nil {
			if err := s.events.PublishFileInfected(ctx, objectKey, verdict.Threats); err != nil {
				log.Printf("Error publishing infected event for %s: %v", objectKey, err)
			}
		}
		return s.fail(outcome, models.NewInfectedError(verdict.Threats))
	case models.ScanStatusError:
		// Current policy: a scanner failure does not fail the pipeline.
		log.Printf("Warning: scan failed for %s, proceeding without verdict", objectKey)
	}

	// Stage 6: derivatives, best-effort per derivative.
	switch category {
	case models.FileCategoryAvatar, models.FileCategoryImage:
		url, err := s.uploadThumbnail(ctx, localPath, objectKey, models.DefaultThumbnailOptions(), &tempPaths)
		if err != nil {
			log.Printf("Error generating thumbnail for %s: %v", objectKey, err)
		} else {
			outcome.ThumbnailURL = url
		}
	case models.FileCategoryVideo:
		url, err := s.uploadVideoPreview(ctx, localPath, objectKey, models.DefaultVideoPreviewOptions(), &tempPaths)
		if err != nil {
			log.Printf("Error generating video preview for %s: %v", objectKey, err)
		} else {
			outcome.PreviewURL = url
		}
	}

	// Stage 7: finalize.
	now := time.Now()
	outcome.Status = models.ProcessingStatusCompleted
	outcome.ProcessedAt = &now

	if s.outcomes != nil {
		if err := s.outcomes.SaveOutcome(ctx, outcome); err != nil {
			log.Printf("Error caching outcome for %s: %v", objectKey, err)
		}
	}
	if s.events != nil {
		if err := s.events.PublishFileProcessed(ctx, outcome, category); err != nil {
			log.Printf("Error publishing processed event for %s: %v", objectKey, err)
		}
	}

	return outcome, nil
}

// ProcessAvatarUpload processes an uploaded avatar and, only on a completed
// outcome, links its public URL to the user record. No partial linkage ever
// occurs.
func (s *UploadService) ProcessAvatarUpload(ctx context.Context, objectKey, userID string) (string, error) {
	outcome, err := s.ProcessFile(ctx, objectKey, models.FileCategoryAvatar)
	if err != nil {
		return "", err
	}
	if outcome.Status != models.ProcessingStatusCompleted {
		return "", models.NewProcessingError("avatar processing did not complete", nil)
	}

	avatarURL := outcome.PublicURL
	if s.profiles != nil {
		if err := s.profiles.UpdateAvatar(ctx, userID, avatarURL); err != nil {
			return "", models.NewProcessingError("error linking avatar to user", err)
		}
	}
	return avatarURL, nil
}

// GenerateThumbnail runs the reduced derivative pipeline against an existing
// object and returns the thumbnail's public URL.
func (s *UploadService) GenerateThumbnail(ctx context.Context, objectKey string, opts models.ThumbnailOptions) (string, error) {
	var tempPaths []string
	defer func() {
		s.media.Cleanup(tempPaths)
	}()

	localPath, err := s.fetchForDerivative(ctx, objectKey, &tempPaths)
	if err != nil {
		return "", err
	}
	url, err := s.uploadThumbnail(ctx, localPath, objectKey, opts, &tempPaths)
	if err != nil {
		return "", models.NewProcessingError("error generating thumbnail", err)
	}
	return url, nil
}

// GenerateVideoPreview runs the reduced derivative pipeline for a video
// preview frame.
func (s *UploadService) GenerateVideoPreview(ctx context.Context, objectKey string, opts models.VideoPreviewOptions) (string, error) {
	var tempPaths []string
	defer func() {
		s.media.Cleanup(tempPaths)
	}()

	localPath, err := s.fetchForDerivative(ctx, objectKey, &tempPaths)
	if err != nil {
		return "", err
	}
	url, err := s.uploadVideoPreview(ctx, localPath, objectKey, opts, &tempPaths)
	if err != nil {
		return "", models.NewProcessingError("error generating video preview", err)
	}
	return url, nil
}

// GetOutcome returns the cached outcome of the most recent processing run
// for an object key.
func (s *UploadService) GetOutcome(ctx context.Context, objectKey string) (*models.ProcessingOutcome, error) {
	if s.outcomes == nil {
		return nil, models.NewNotFoundError(objectKey)
	}
	outcome, err := s.outcomes.GetOutcome(ctx, objectKey)
	if err != nil {
		return nil, models.NewProcessingError("error reading outcome", err)
	}
	if outcome == nil {
		return nil, models.NewNotFoundError(objectKey)
	}
	return outcome, nil
}

// DeleteAsset removes the original object and, unconditionally, both
// deterministic derivative keys. Deleting an absent derivative is a no-op.
func (s *UploadService) DeleteAsset(ctx context.Context, objectKey string) error {
	var firstErr error
	keys := []string{
		objectKey,
		storage.ThumbnailKey(objectKey, models.DefaultThumbnailOptions().Format),
		storage.PreviewKey(objectKey, models.DefaultVideoPreviewOptions().Format),
	}
	for _, key := range keys {
		if err := s.store.Delete(ctx, key); err != nil {
			log.Printf("Error deleting object %s: %v", key, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if firstErr != nil {
		return firstErr
	}
	if s.outcomes != nil {
		if err := s.outcomes.Delete(ctx, objectKey); err != nil {
			log.Printf("Error evicting cached outcome for %s: %v", objectKey, err)
		}
	}
	if s.events != nil {
		if err := s.events.PublishAssetDeleted(ctx, objectKey); err != nil {
			log.Printf("Error publishing asset deleted event for %s: %v", objectKey, err)
		}
	}
	return nil
}

// HealthCheck probes the store and scanner independently; a failure in one
// does not suppress the other's result. Media processing is healthy whenever
// this process is reachable.
func (s *UploadService) HealthCheck(ctx context.Context) models.HealthStatus {
	return models.HealthStatus{
		Store:           s.store.HealthCheck(ctx),
		Scanner:         s.scanner.HealthCheck(ctx),
		MediaProcessing: s.media.HealthCheck(),
	}
}

func (s *UploadService) fail(outcome *models.ProcessingOutcome, err error) (*models.ProcessingOutcome, error) {
	outcome.Status = models.ProcessingStatusFailed
	var ue *models.UploadError
	if !errors.As(err, &ue) {
		err = models.NewProcessingError("processing failed", err)
	}
	return outcome, err
}

func (s *UploadService) fetchForDerivative(ctx context.Context, objectKey string, tempPaths *[]string) (string, error) {
	exists, err := s.store.Exists(ctx, objectKey)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", models.NewNotFoundError(objectKey)
	}
	localPath := s.media.CreateTempPath(path.Ext(objectKey))
	*tempPaths = append(*tempPaths, localPath)
	if _, err := s.store.Download(ctx, objectKey, localPath); err != nil {
		return "", err
	}
	return localPath, nil
}

func (s *UploadService) uploadThumbnail(ctx context.Context, localPath, objectKey string, opts models.ThumbnailOptions, tempPaths *[]string) (string, error) {
	opts = opts.WithDefaults()
	thumbKey := storage.ThumbnailKey(objectKey, opts.Format)
	dstPath := s.media.CreateTempPath("." + opts.Format)
	*tempPaths = append(*tempPaths, dstPath)

	if err := s.media.GenerateThumbnail(ctx, localPath, dstPath, opts); err != nil {
		return "", err
	}
	if err := s.store.PutFile(ctx, thumbKey, dstPath, derivativeContentType(opts.Format)); err != nil {
		return "", err
	}
	return s.store.PublicURL(thumbKey), nil
}

func (s *UploadService) uploadVideoPreview(ctx context.Context, localPath, objectKey string, opts models.VideoPreviewOptions, tempPaths *[]string) (string, error) {
	opts = opts.WithDefaults()
	previewKey := storage.PreviewKey(objectKey, opts.Format)
	dstPath := s.media.CreateTempPath("." + opts.Format)
	*tempPaths = append(*tempPaths, dstPath)

	if err := s.media.GenerateVideoPreview(ctx, localPath, dstPath, opts); err != nil {
		return "", err
	}
	if err := s.store.PutFile(ctx, previewKey, dstPath, derivativeContentType(opts.Format)); err != nil {
		return "", err
	}
	return s.store.PublicURL(previewKey), nil
}

// derivativeContentType maps a derivative image format onto its MIME type,
// so "jpg" uploads as image/jpeg rather than the nonstandard image/jpg.
func derivativeContentType(format string) string {
	if mt := mime.TypeByExtension("." + format); mt != "" {
		return mt
	}
	return "image/" + format
}

// claimedMimeType derives the MIME type the pipeline validates against from
// the key's extension. Media categories fall back to a representative type
// because validation only dispatches on their family; document keys return
// "" so the caller sniffs the bytes instead of guessing a type the exact
// match could never satisfy.
func claimedMimeType(objectKey string, category models.FileCategory) string {
	if mt := mime.TypeByExtension(path.Ext(objectKey)); mt != "" {
		return mt
	}
	switch category {
	case models.FileCategoryAvatar, models.FileCategoryImage:
		return "image/jpeg"
	case models.FileCategoryVideo:
		return "video/mp4"
	case models.FileCategoryAudio:
		return "audio/mpeg"
	default:
		return ""
	}
}
