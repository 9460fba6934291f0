package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/droply/droply/internal/auth"
	"github.com/droply/droply/internal/config"
	"github.com/droply/droply/internal/controllers"
	"github.com/droply/droply/internal/managers"
	"github.com/droply/droply/internal/server"
	"github.com/droply/droply/internal/storage"
	"github.com/droply/droply/pkg/imagekit"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func NewStartCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStart()
		},
	}

	return cmd
}

func runStart() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	pool, err := storage.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	sessionVerifier, err := auth.NewSessionVerifier(cfg.SessionSecret)
	if err != nil {
		return err
	}

	mediaClient := imagekit.NewClient(
		imagekit.WithKeys(cfg.ImageKitPublicKey, cfg.ImageKitPrivateKey),
		imagekit.WithURLEndpoint(cfg.ImageKitURLEndpoint),
	)

	fileRepository := storage.NewPostgresFileRepository(pool)

	driveService := managers.NewDriveService(managers.DriveServiceDependencies{
		FileRepository: fileRepository,
	})
	uploadService := managers.NewUploadService(managers.UploadServiceDependencies{
		FileRepository: fileRepository,
		MediaClient:    mediaClient,
		UploadFolder:   cfg.UploadFolder,
	})

	app := server.NewHTTPServer(server.HTTPServerDependencies{
		SessionVerifier: sessionVerifier,
		FileController: controllers.NewFileController(controllers.FileControllerDependencies{
			DriveService:  driveService,
			UploadService: uploadService,
		}),
		FolderController: controllers.NewFolderController(controllers.FolderControllerDependencies{
			DriveService: driveService,
		}),
		MediaController: controllers.NewMediaController(controllers.MediaControllerDependencies{
			UploadService: uploadService,
			MediaClient:   mediaClient,
		}),
	})

	go func() {
		log.Info().Str("address", cfg.HTTPAddress).Msg("Starting HTTP server")

		if err := app.Listen(cfg.HTTPAddress); err != nil {
			log.Error().Err(err).Msg("HTTP server stopped")
			cancel()
		}
	}()

	<-ctx.Done()

	log.Info().Msg("Shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to shut down HTTP server cleanly")
	}

	return nil
}
