package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"niyamtrack/internal/cloud"
	"niyamtrack/internal/config"
	"niyamtrack/internal/database"
	"niyamtrack/internal/handlers"
	"niyamtrack/internal/progress"
	"niyamtrack/internal/repository"
	"niyamtrack/internal/service"
	"niyamtrack/internal/store"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env if present, then configuration
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := config.Load()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Local key-value store over the database
	kv := store.New(db)

	// Cloud mirror client; nil means local-only mode
	var cloudClient cloud.Client
	var cloudSync progress.CloudSync
	if c := cloud.NewHTTPClient(cloud.Config{
		BaseURL:      cfg.CloudBaseURL,
		TokenURL:     cfg.CloudTokenURL,
		ClientID:     cfg.CloudClientID,
		ClientSecret: cfg.CloudClientSecret,
	}); c != nil {
		cloudClient = c
		cloudSync = c
		log.Printf("Cloud sync enabled (%s)", cfg.CloudBaseURL)
	} else {
		log.Println("Cloud sync disabled, running local-only")
	}

	// Initialize repositories and domain components
	accountRepo := repository.NewAccountRepository(kv)
	tracker := progress.NewTracker(kv, cloudSync)

	// Initialize services
	adminService := service.NewAdminService(kv, accountRepo, cloudClient, cfg.AdminSessionDuration)
	authService := service.NewAuthService(kv, accountRepo, cloudClient, adminService, cfg.SessionSecret, cfg.SessionDuration)
	summaryService := service.NewSummaryService(kv)
	leaderboardService := service.NewLeaderboardService(kv, accountRepo, cloudClient)
	backupService := service.NewBackupService(kv)

	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	// Initialize handlers
	middleware := handlers.NewMiddleware(authService, adminService, accountRepo)
	authHandler := handlers.NewAuthHandler(authService, cfg.SessionDuration)
	checklistHandler := handlers.NewChecklistHandler(tracker)
	summaryHandler := handlers.NewSummaryHandler(summaryService, leaderboardService)
	adminHandler := handlers.NewAdminHandler(adminService, summaryService, emailService, backupService, accountRepo)

	// Setup routes
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("POST /api/login", authHandler.Login)
	mux.HandleFunc("POST /api/register", authHandler.Register)
	mux.HandleFunc("POST /api/logout", authHandler.Logout)

	// Authenticated user routes
	mux.HandleFunc("GET /api/checklist", middleware.RequireAuth(checklistHandler.LoadDay))
	mux.HandleFunc("POST /api/checklist/toggle", middleware.RequireAuth(checklistHandler.Toggle))
	mux.HandleFunc("POST /api/checklist/submit", middleware.RequireAuth(checklistHandler.Submit))
	mux.HandleFunc("GET /api/summary", middleware.RequireAuth(summaryHandler.Summary))
	mux.HandleFunc("GET /api/leaderboard", middleware.RequireAuth(summaryHandler.Leaderboard))

	// Admin routes
	mux.HandleFunc("GET /api/admin/accounts", middleware.RequireAdmin(adminHandler.ListAccounts))
	mux.HandleFunc("POST /api/admin/select-account", middleware.RequireAdmin(adminHandler.SelectAccount))
	mux.HandleFunc("GET /api/admin/account-days", middleware.RequireAdmin(adminHandler.AccountDays))
	mux.HandleFunc("POST /api/admin/override-day", middleware.RequireAdmin(adminHandler.OverrideDay))
	mux.HandleFunc("DELETE /api/admin/account", middleware.RequireAdmin(adminHandler.DeleteAccount))
	mux.HandleFunc("POST /api/admin/credentials", middleware.RequireAdmin(adminHandler.SetCredentials))
	mux.HandleFunc("GET /api/admin/backup", middleware.RequireAdmin(adminHandler.ExportBackup))
	mux.HandleFunc("POST /api/admin/restore", middleware.RequireAdmin(adminHandler.ImportBackup))
	mux.HandleFunc("POST /api/admin/email-summary", middleware.RequireAdmin(adminHandler.EmailSummary))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
}
