package controllers

import (
	"fmt"

	"github.com/droply/droply/internal/domain"
	"github.com/droply/droply/internal/middlewares"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"
)

// FileController handles the file hierarchy routes: listing, multipart
// upload, star/trash toggles and deletion.
type FileController struct {
	driveService  domain.DriveService
	uploadService domain.UploadService
}

type FileControllerDependencies struct {
	DriveService  domain.DriveService
	UploadService domain.UploadService
}

func NewFileController(deps FileControllerDependencies) *FileController {
	return &FileController{
		driveService:  deps.DriveService,
		uploadService: deps.UploadService,
	}
}

// ListFiles returns the caller's entries under the given parent folder, or
// the root-level entries when no parent is given.
func (c *FileController) ListFiles(ctx fiber.Ctx) error {
	userID := ctx.Query("userId")
	if err := requireOwner(ctx, userID); err != nil {
		return err
	}

	var parentID *string
	if v := ctx.Query("parentId"); v != "" {
		parentID = &v
	}

	entries, err := c.driveService.ListEntries(ctx.RequestCtx(), domain.ListEntriesParams{
		UserID:   userID,
		ParentID: parentID,
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list files")
		return err
	}

	return ctx.JSON(fiber.Map{
		"userFiles": entries,
	})
}

// UploadFile receives a multipart payload and hands it to the upload
// orchestration.
func (c *FileController) UploadFile(ctx fiber.Ctx) error {
	if err := requireOwner(ctx, ctx.FormValue("userId")); err != nil {
		return err
	}

	header, err := ctx.FormFile("file")
	if err != nil {
		return fmt.Errorf("%w: no file provided", domain.ErrValidation)
	}

	file, err := header.Open()
	if err != nil {
		return fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	entry, err := c.uploadService.UploadFile(ctx.RequestCtx(), domain.UploadFileParams{
		UserID:      middlewares.PrincipalID(ctx),
		ParentID:    ctx.FormValue("parentId"),
		FileName:    header.Filename,
		ContentType: header.Header.Get(fiber.HeaderContentType),
		Size:        header.Size,
		Content:     file,
	})
	if err != nil {
		log.Error().Err(err).Str("file_name", header.Filename).Msg("Failed to upload file")
		return err
	}

	return ctx.JSON(entry)
}

// ToggleStar flips the starred flag of the caller's entry.
func (c *FileController) ToggleStar(ctx fiber.Ctx) error {
	entry, err := c.driveService.ToggleStar(ctx.RequestCtx(), middlewares.PrincipalID(ctx), ctx.Params("fileId"))
	if err != nil {
		return err
	}

	return ctx.JSON(entry)
}

// ToggleTrash flips the trashed flag of the caller's entry.
func (c *FileController) ToggleTrash(ctx fiber.Ctx) error {
	entry, err := c.driveService.ToggleTrash(ctx.RequestCtx(), middlewares.PrincipalID(ctx), ctx.Params("fileId"))
	if err != nil {
		return err
	}

	return ctx.JSON(entry)
}

// DeleteFile permanently removes a trashed entry, including a trashed
// folder's subtree.
func (c *FileController) DeleteFile(ctx fiber.Ctx) error {
	fileID := ctx.Params("fileId")

	if err := c.driveService.DeleteEntry(ctx.RequestCtx(), middlewares.PrincipalID(ctx), fileID); err != nil {
		return err
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "Entry deleted",
	})
}

// requireOwner rejects requests whose declared owner does not match the
// authenticated principal.
func requireOwner(ctx fiber.Ctx, declaredUserID string) error {
	if declaredUserID == "" || declaredUserID != middlewares.PrincipalID(ctx) {
		return domain.ErrUnauthorized
	}
	return nil
}
