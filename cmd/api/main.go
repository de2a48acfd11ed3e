package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/bcpschool/portal-api/internal/config"
	"github.com/bcpschool/portal-api/internal/database"
	"github.com/bcpschool/portal-api/internal/handler"
	"github.com/bcpschool/portal-api/internal/middleware"
	"github.com/bcpschool/portal-api/internal/models"
	"github.com/bcpschool/portal-api/internal/repository"
	"github.com/bcpschool/portal-api/internal/router"
	"github.com/bcpschool/portal-api/internal/service"
	"github.com/bcpschool/portal-api/internal/storage"
	cloud "github.com/bcpschool/portal-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL, cfg.MaxOpenConns)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Assignment{}, &models.Submission{}, &models.Announcement{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var fileStorage service.FileStorage
	switch cfg.StorageDriver {
	case "cloudinary":
		fileStorage, err = cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryFolder,
		}, logger)
		if err != nil {
			log.Fatalf("failed to create cloudinary client: %v", err)
		}
	default:
		fileStorage, err = storage.NewLocalStore(cfg.UploadDir, logger)
		if err != nil {
			log.Fatalf("failed to create local store: %v", err)
		}
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	announcementRepo := repository.NewAnnouncementRepository(db)

	tokens := service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	uploads := service.NewUploadGuard(fileStorage, cfg.UploadMaxMB, logger)

	authService := service.NewAuthService(userRepo, tokens, validate, logger)
	userService := service.NewUserService(userRepo, validate, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, validate, uploads, logger)
	submissionService := service.NewSubmissionService(submissionRepo, assignmentRepo, validate, uploads, cfg.StrictVisibility, logger)
	announcementService := service.NewAnnouncementService(announcementRepo, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		// Leave headroom over the upload ceiling so oversized files reach the
		// guard and get a structured error instead of a bare 413.
		BodyLimit: (cfg.UploadMaxMB + 1) * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:         handler.NewAuthHandler(authService, logger),
		UserHandler:         handler.NewUserHandler(userService, logger),
		AssignmentHandler:   handler.NewAssignmentHandler(assignmentService, logger),
		SubmissionHandler:   handler.NewSubmissionHandler(submissionService, logger),
		AnnouncementHandler: handler.NewAnnouncementHandler(announcementService, logger),
		AuthGuard:           middleware.Authenticate(tokens, userRepo, logger),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
