package handlers

import (
	"context"
	"log"
	"net/url"

	"github.com/gofiber/fiber/v3"

	"upload-service/internal/middleware"
	"upload-service/internal/models"
)

// Orchestrator is the slice of the upload service the handler needs.
type Orchestrator interface {
	GenerateUploadURL(ctx context.Context, category models.FileCategory, fileName, mimeType string, sizeBytes int64, ownerID string) (*models.PresignedUpload, error)
	ProcessFile(ctx context.Context, objectKey string, category models.FileCategory) (*models.ProcessingOutcome, error)
	ProcessAvatarUpload(ctx context.Context, objectKey, userID string) (string, error)
	GetOutcome(ctx context.Context, objectKey string) (*models.ProcessingOutcome, error)
	GenerateThumbnail(ctx context.Context, objectKey string, opts models.ThumbnailOptions) (string, error)
	GenerateVideoPreview(ctx context.Context, objectKey string, opts models.VideoPreviewOptions) (string, error)
	DeleteAsset(ctx context.Context, objectKey string) error
	HealthCheck(ctx context.Context) models.HealthStatus
}

type UploadHandler struct {
	uploads Orchestrator
}

func NewUploadHandler(uploads Orchestrator) *UploadHandler {
	return &UploadHandler{uploads: uploads}
}

func (h *UploadHandler) RegisterRoutes(app *fiber.App) {
	group := app.Group("/upload")
	group.Get("/health", h.Health)

	protected := group.Group("", middleware.RequireIdentity())
	protected.Post("/avatar", h.RequestAvatarUpload)
	protected.Post("/presigned-url", h.RequestPresignedURL)
	protected.Post("/process", h.ProcessFile)
	protected.Post("/avatar/process", h.ProcessAvatar)
	protected.Get("/outcome/:key", h.GetOutcome)
	protected.Post("/thumbnail/:key", h.GenerateThumbnail)
	protected.Post("/video-preview/:key", h.GenerateVideoPreview)
	protected.Delete("/:key", h.DeleteAsset)
}

type avatarUploadRequest struct {
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	FileSize int64  `json:"fileSize"`
}

func (h *UploadHandler) RequestAvatarUpload(c fiber.Ctx) error {
	userID := c.Get(middleware.IdentityHeader)

	var req avatarUploadRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	presigned, err := h.uploads.GenerateUploadURL(c.Context(), models.FileCategoryAvatar, req.FileName, req.MimeType, req.FileSize, userID)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"uploadUrl": presigned.UploadURL,
		"objectKey": presigned.ObjectKey,
		"avatarUrl": presigned.PublicURL,
		"expiresIn": presigned.ExpiresIn,
	})
}

type presignedURLRequest struct {
	FileType string `json:"fileType"`
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	FileSize int64  `json:"fileSize"`
}

func (h *UploadHandler) RequestPresignedURL(c fiber.Ctx) error {
	userID := c.Get(middleware.IdentityHeader)

	var req presignedURLRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	category, err := models.ParseFileCategory(req.FileType)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	presigned, err := h.uploads.GenerateUploadURL(c.Context(), category, req.FileName, req.MimeType, req.FileSize, userID)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(presigned)
}

type processRequest struct {
	ObjectKey string `json:"objectKey"`
	FileType  string `json:"fileType"`
}

func (h *UploadHandler) ProcessFile(c fiber.Ctx) error {
	var req processRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.ObjectKey == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "objectKey is required",
		})
	}

	category, err := models.ParseFileCategory(req.FileType)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	outcome, err := h.uploads.ProcessFile(c.Context(), req.ObjectKey, category)
	if err != nil {
		log.Printf("Error processing file %s: %v", req.ObjectKey, err)
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"error": publicMessage(err),
			"data":  outcome,
		})
	}

	return c.JSON(fiber.Map{
		"data": outcome,
	})
}

type avatarProcessRequest struct {
	ObjectKey string `json:"objectKey"`
}

func (h *UploadHandler) ProcessAvatar(c fiber.Ctx) error {
	userID := c.Get(middleware.IdentityHeader)

	var req avatarProcessRequest
	if err := c.Bind().Body(&req); err != nil || req.ObjectKey == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "objectKey is required",
		})
	}

	avatarURL, err := h.uploads.ProcessAvatarUpload(c.Context(), req.ObjectKey, userID)
	if err != nil {
		log.Printf("Error processing avatar %s: %v", req.ObjectKey, err)
		return h.respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"avatarUrl": avatarURL,
	})
}

func (h *UploadHandler) GetOutcome(c fiber.Ctx) error {
	objectKey, err := decodeKeyParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid object key",
		})
	}

	outcome, err := h.uploads.GetOutcome(c.Context(), objectKey)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"data": outcome,
	})
}

func (h *UploadHandler) GenerateThumbnail(c fiber.Ctx) error {
	objectKey, err := decodeKeyParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid object key",
		})
	}

	var opts models.ThumbnailOptions
	if len(c.Body()) > 0 {
		if err := c.Bind().Body(&opts); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}
	}

	thumbnailURL, err := h.uploads.GenerateThumbnail(c.Context(), objectKey, opts)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"thumbnailUrl": thumbnailURL,
	})
}

func (h *UploadHandler) GenerateVideoPreview(c fiber.Ctx) error {
	objectKey, err := decodeKeyParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid object key",
		})
	}

	var opts models.VideoPreviewOptions
	if len(c.Body()) > 0 {
		if err := c.Bind().Body(&opts); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}
	}

	previewURL, err := h.uploads.GenerateVideoPreview(c.Context(), objectKey, opts)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"previewUrl": previewURL,
	})
}

func (h *UploadHandler) DeleteAsset(c fiber.Ctx) error {
	objectKey, err := decodeKeyParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid object key",
		})
	}

	if err := h.uploads.DeleteAsset(c.Context(), objectKey); err != nil {
		return h.respondError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *UploadHandler) Health(c fiber.Ctx) error {
	return c.JSON(h.uploads.HealthCheck(c.Context()))
}

func (h *UploadHandler) respondError(c fiber.Ctx, err error) error {
	status := statusForError(err)
	if status >= fiber.StatusInternalServerError {
		log.Printf("Error handling %s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(status).JSON(fiber.Map{
		"error": publicMessage(err),
	})
}

// decodeKeyParam recovers the object key from its URL-path-segment-encoded
// route parameter.
func decodeKeyParam(c fiber.Ctx) (string, error) {
	return url.PathUnescape(c.Params("key"))
}

func statusForError(err error) int {
	switch models.ErrorKindOf(err) {
	case models.ErrKindValidation:
		return fiber.StatusBadRequest
	case models.ErrKindNotFound:
		return fiber.StatusNotFound
	case models.ErrKindContentInvalid, models.ErrKindInfected:
		return fiber.StatusUnprocessableEntity
	case models.ErrKindStorage:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// publicMessage keeps internal failure detail in the logs, not the response.
func publicMessage(err error) string {
	switch models.ErrorKindOf(err) {
	case models.ErrKindStorage:
		return "storage backend unavailable"
	case models.ErrKindProcessing:
		return "internal processing error"
	default:
		return err.Error()
	}
}
