package main

import (
	"database/sql"
	"flag"
	"log"
	"net/http"
	"time"

	_ "github.com/lib/pq"

	httpapi "sigap-backend/internal/api/http"
	"sigap-backend/internal/config"
	"sigap-backend/internal/logger"
	"sigap-backend/internal/repository/postgres"
	"sigap-backend/internal/security"
	"sigap-backend/internal/service"
	"sigap-backend/internal/storage"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting SIGAP registry backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)
	if err := store.EnsureSchema(); err != nil {
		logger.Error("Failed to apply schema", "error", err)
		log.Fatalf("Failed to apply schema: %v", err)
	}

	// Initialize file storage
	files, err := storage.NewFileStore(cfg.Uploads.RootDir)
	if err != nil {
		logger.Error("Failed to initialize file storage", "error", err)
		log.Fatalf("Failed to initialize file storage: %v", err)
	}
	logger.Info("File storage ready", "root", cfg.Uploads.RootDir)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)

	// Initialize Services
	emailSvc := service.NewEmailService(cfg.Email)
	authSvc := service.NewAuthService(
		store.UserRepository,
		store.PasswordRequestRepository,
		store.NotificationRepository,
		tokenManager,
		emailSvc,
	)
	userSvc := service.NewUserService(store.UserRepository, files)
	fokontanySvc := service.NewFokontanyService(store.FokontanyRepository)
	residenceSvc := service.NewResidenceService(
		store.ResidenceRepository,
		store.PersonRepository,
		store.PhotoRepository,
		files,
	)
	personSvc := service.NewPersonService(store.PersonRepository, store.ResidenceRepository)
	approvalSvc := service.NewApprovalService(
		store.PendingResidenceRepository,
		store.ResidenceRepository,
		store.PhotoRepository,
		store.UserRepository,
		store.NotificationRepository,
		files,
		emailSvc,
	)
	noteSvc := service.NewNotificationService(store.NotificationRepository)

	router := httpapi.NewRouter(httpapi.RouterConfig{
		Auth:          authSvc,
		Users:         userSvc,
		Fokontany:     fokontanySvc,
		Residences:    residenceSvc,
		Persons:       personSvc,
		Approvals:     approvalSvc,
		Notifications: noteSvc,
		Tokens:        tokenManager,
		UserRepo:      store.UserRepository,
		UploadsDir:    cfg.Uploads.RootDir,
		MaxPhotoMiB:   int64(cfg.Uploads.MaxFileSizeMB),
	})

	logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
	if err := http.ListenAndServe(cfg.GetServerAddress(), router); err != nil {
		logger.Error("HTTP server error", "error", err)
		log.Fatalf("Failed to serve: %v", err)
	}
}
