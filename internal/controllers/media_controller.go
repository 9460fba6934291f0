package controllers

import (
	"time"

	"github.com/droply/droply/internal/domain"
	"github.com/droply/droply/internal/middlewares"
	"github.com/droply/droply/pkg/imagekit"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"
)

const uploadAuthValidity = 30 * time.Minute

// MediaController handles the direct-upload flow: handing out signed upload
// credentials and recording files the browser pushed to the CDN itself.
type MediaController struct {
	uploadService domain.UploadService
	mediaClient   *imagekit.Client
}

type MediaControllerDependencies struct {
	UploadService domain.UploadService
	MediaClient   *imagekit.Client
}

func NewMediaController(deps MediaControllerDependencies) *MediaController {
	return &MediaController{
		uploadService: deps.UploadService,
		mediaClient:   deps.MediaClient,
	}
}

type uploadedMediaDescriptor struct {
	Name         string `json:"name"`
	FilePath     string `json:"filePath"`
	Size         int64  `json:"size"`
	FileType     string `json:"fileType"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

type saveUploadedMediaRequest struct {
	ImageKit uploadedMediaDescriptor `json:"imagekit"`
	UserID   string                  `json:"userId"`
}

// SaveUploadedMedia persists the metadata of a file already uploaded to the
// media service from the client.
func (c *MediaController) SaveUploadedMedia(ctx fiber.Ctx) error {
	var req saveUploadedMediaRequest

	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := requireOwner(ctx, req.UserID); err != nil {
		return err
	}

	entry, err := c.uploadService.SaveUploadedMedia(ctx.RequestCtx(), domain.SaveUploadedMediaParams{
		UserID:       middlewares.PrincipalID(ctx),
		Name:         req.ImageKit.Name,
		FilePath:     req.ImageKit.FilePath,
		Size:         req.ImageKit.Size,
		FileType:     req.ImageKit.FileType,
		FileURL:      req.ImageKit.URL,
		ThumbnailURL: req.ImageKit.ThumbnailURL,
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", req.UserID).Msg("Failed to save uploaded media")
		return err
	}

	return ctx.JSON(entry)
}

// UploadAuth returns fresh signed credentials for a direct client upload.
func (c *MediaController) UploadAuth(ctx fiber.Ctx) error {
	return ctx.JSON(c.mediaClient.UploadAuthParams(uploadAuthValidity))
}
