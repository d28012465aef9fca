package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ledgerbot/internal/config"
	"ledgerbot/internal/handler"
	"ledgerbot/internal/middleware"
	"ledgerbot/internal/phone"
	"ledgerbot/internal/repository"
	"ledgerbot/internal/repository/postgres"
	"ledgerbot/internal/repository/sheets"
	"ledgerbot/internal/service"
	"ledgerbot/internal/session"
	"ledgerbot/internal/transport/telegram"
	"ledgerbot/internal/transport/whatsapp"

	"github.com/golang-migrate/migrate/v4"
	postgresdb "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting ledger bot")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	logger.Info("Configuration loaded successfully",
		zap.String("transport", cfg.Transport),
		zap.String("directory_backend", cfg.DirectoryBackend),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Google Sheets and Drive
	sheetsClient, err := sheets.NewClient(ctx, sheets.ClientConfig{
		CredentialsFile: cfg.Sheets.CredentialsFile,
		RatePerSecond:   cfg.Sheets.RatePerSecond,
		Burst:           cfg.Sheets.Burst,
	})
	if err != nil {
		logger.Fatal("Failed to create Google client", zap.Error(err))
	}

	phones := phone.NewNormalizer(cfg.PhoneCountryCode, cfg.PhoneLocalDigits)

	// Initialize repositories
	var directory repository.DirectoryRepository
	switch cfg.DirectoryBackend {
	case config.BackendPostgres:
		db, err := connectDatabase(cfg.DSN(), logger)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		logger.Info("Database connection established")

		if err := runMigrations(db, logger); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
		directory = postgres.NewDirectoryRepo(db)
	default:
		directory = sheets.NewDirectoryRepo(sheetsClient, cfg.Sheets.AdminSheetID, phones)
	}
	ledgerRepo := sheets.NewLedgerRepo(sheetsClient, sheetsClient)

	// Initialize services
	accessService := service.NewAccessService(directory, phones, cfg.AdminPhone)
	subscriberService := service.NewSubscriberService(directory, phones)
	ledgerService := service.NewLedgerService(ledgerRepo, directory, service.LedgerOptions{
		TemplateID: cfg.Sheets.TemplateSheetID,
		Share:      cfg.Sheets.ShareLedger,
		Dashboard:  cfg.Sheets.LedgerDashboard,
		Location:   cfg.Location,
	}, logger)

	if cfg.Sheets.TemplateSheetID == "" {
		logger.Warn("USER_TEMPLATE_SHEET_ID is empty, ledgers cannot be provisioned")
	}

	// Initialize handler
	h := handler.NewHandler(
		accessService,
		subscriberService,
		ledgerService,
		session.NewMemoryStore(),
		logger,
		handler.Options{RejectUnauthorized: cfg.RejectUnauthorized},
	)

	handle := middleware.Chain(h.Handle,
		middleware.SerializeBySender(h.Identity),
		middleware.Recover(logger, handler.Unexpected),
		middleware.LogErrors(logger),
	)

	stop, err := startTransport(cfg, handle, logger)
	if err != nil {
		logger.Fatal("Failed to start transport", zap.Error(err))
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan

	logger.Info("Shutdown signal received, stopping bot...")

	// Graceful shutdown
	stop()
	cancel()

	logger.Info("Bot stopped gracefully")
}

// startTransport runs the configured transport in background and returns its stop function
func startTransport(cfg *config.Config, handle middleware.HandlerFunc, logger *zap.Logger) (func(), error) {
	switch cfg.Transport {
	case config.TransportWhatsApp:
		server := whatsapp.NewServer(handle, logger)
		go func() {
			if err := server.Listen(cfg.WhatsApp.ListenAddr); err != nil {
				logger.Error("WhatsApp webhook stopped", zap.Error(err))
			}
		}()
		return func() {
			if err := server.Shutdown(); err != nil {
				logger.Warn("Failed to shut down webhook", zap.Error(err))
			}
		}, nil

	case config.TransportTelegram:
		bot, err := telegram.New(cfg.Telegram.Token, handle, logger)
		if err != nil {
			return nil, fmt.Errorf("create telegram bot: %w", err)
		}

		logger.Info("Telegram bot initialized")

		// Start bot in background
		go func() {
			logger.Info("Bot started successfully")
			bot.Start()
		}()
		return bot.Stop, nil
	}
	return nil, fmt.Errorf("unknown transport %q", cfg.Transport)
}

// connectDatabase connects to PostgreSQL with retries
func connectDatabase(dsn string, logger *zap.Logger) (*sql.DB, error) {
	var db *sql.DB
	var err error

	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = sql.Open("postgres", dsn)
		if err != nil {
			logger.Warn("Failed to open database connection",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			time.Sleep(retryDelay)
			continue
		}

		if err = db.Ping(); err != nil {
			logger.Warn("Failed to ping database",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			db.Close()
			time.Sleep(retryDelay)
			continue
		}

		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(5 * time.Minute)

		return db, nil
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
}

// runMigrations applies the subscriber directory schema
func runMigrations(db *sql.DB, logger *zap.Logger) error {
	driver, err := postgresdb.WithInstance(db, &postgresdb.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Info("No new migrations to apply")
	case err != nil:
		return fmt.Errorf("failed to run migrations: %w", err)
	default:
		logger.Info("Migrations applied successfully")
	}
	return nil
}
