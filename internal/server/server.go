package server

import (
	"errors"
	"time"

	"github.com/droply/droply/internal/controllers"
	"github.com/droply/droply/internal/domain"
	"github.com/droply/droply/internal/middlewares"
	"github.com/droply/droply/internal/version"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

type HTTPServerDependencies struct {
	SessionVerifier  middlewares.TokenVerifier
	FileController   *controllers.FileController
	FolderController *controllers.FolderController
	MediaController  *controllers.MediaController
}

func NewHTTPServer(deps HTTPServerDependencies) *fiber.App {
	router := fiber.New(fiber.Config{
		AppName:      "droply",
		ErrorHandler: errorHandler,
	})

	// Add basic middleware
	router.Use(cors.New())
	router.Use(logger.New())

	// Health check endpoint (no authentication required)
	router.Get("/health", func(c fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":    "healthy",
			"service":   "droply",
			"version":   version.GetVersion(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	router.Use(middlewares.SessionMiddleware(deps.SessionVerifier))

	api := router.Group("/api")

	api.Get("/files", deps.FileController.ListFiles)
	api.Post("/files/upload", deps.FileController.UploadFile)
	api.Patch("/files/:fileId/star", deps.FileController.ToggleStar)
	api.Patch("/files/:fileId/trash", deps.FileController.ToggleTrash)
	api.Delete("/files/:fileId", deps.FileController.DeleteFile)

	api.Post("/folders/create", deps.FolderController.CreateFolder)

	api.Post("/upload", deps.MediaController.SaveUploadedMedia)
	api.Get("/imagekit-auth", deps.MediaController.UploadAuth)

	return router
}

// errorHandler maps classified errors onto status codes and renders every
// failure as an {error} body. Unclassified errors never leak their message.
func errorHandler(c fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrUpstream):
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Upload service failed"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
}
