package controllers

import (
	"github.com/droply/droply/internal/domain"
	"github.com/droply/droply/internal/middlewares"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"
)

type FolderController struct {
	driveService domain.DriveService
}

type FolderControllerDependencies struct {
	DriveService domain.DriveService
}

func NewFolderController(deps FolderControllerDependencies) *FolderController {
	return &FolderController{
		driveService: deps.DriveService,
	}
}

type createFolderRequest struct {
	Name     string  `json:"name"`
	UserID   string  `json:"userId"`
	ParentID *string `json:"parentId"`
}

// CreateFolder creates a folder under the caller's root or under one of the
// caller's existing folders.
func (c *FolderController) CreateFolder(ctx fiber.Ctx) error {
	var req createFolderRequest

	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := requireOwner(ctx, req.UserID); err != nil {
		return err
	}

	folder, err := c.driveService.CreateFolder(ctx.RequestCtx(), domain.CreateFolderParams{
		UserID:   middlewares.PrincipalID(ctx),
		Name:     req.Name,
		ParentID: req.ParentID,
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", req.UserID).Msg("Failed to create folder")
		return err
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "Folder created successfully",
		"folder":  folder,
	})
}
