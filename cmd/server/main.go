package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dragonmail/dragonmail/internal/auth"
	"github.com/dragonmail/dragonmail/internal/config"
	"github.com/dragonmail/dragonmail/internal/database"
	"github.com/dragonmail/dragonmail/internal/dispatch"
	"github.com/dragonmail/dragonmail/internal/handler"
	"github.com/dragonmail/dragonmail/internal/logger"
	"github.com/dragonmail/dragonmail/internal/middleware"
	"github.com/dragonmail/dragonmail/internal/repository"
	"github.com/dragonmail/dragonmail/internal/router"
	"github.com/dragonmail/dragonmail/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Info().Str("version", "0.1.0").Msg("starting DragonMail server")

	// Select the storage backend
	var db *database.Postgres
	var store *repository.Store
	switch cfg.Storage.Driver {
	case "postgres":
		db, err = database.NewPostgres(cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer db.Close()
		store = repository.NewPostgresStore(db)
		log.Info().Msg("connected to PostgreSQL")
	case "", "file":
		store, err = repository.NewFileStore(cfg.Storage.Dir)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open data directory")
		}
		log.Info().Str("dir", cfg.Storage.Dir).Msg("using file storage")
	default:
		log.Fatal().Str("driver", cfg.Storage.Driver).Msg("unknown storage driver")
	}

	// Connect to Redis when rate limiting needs it
	var rdb *database.Redis
	if cfg.Security.RateLimiting.Enabled {
		rdb, err = database.NewRedis(cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer rdb.Close()
		log.Info().Msg("connected to Redis")
	}

	// Initialize token service
	tokenSvc, err := auth.NewTokenService(cfg.Security.Tokens)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize token service")
	}

	// Pick the email submitter
	var submitter dispatch.Submitter
	switch cfg.Email.Submitter {
	case "gmail":
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if cfg.Email.Gmail.RefreshToken != "" {
			submitter, err = dispatch.NewGmailSubmitterWithToken(ctx, cfg.Email.Gmail)
		} else {
			submitter, err = dispatch.NewGmailSubmitter(ctx, cfg.Email.Gmail)
		}
		cancel()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize Gmail submitter")
		}
		log.Info().Str("sender", cfg.Email.Gmail.SenderAddress).Msg("using Gmail API submitter")
	case "", "smtp":
		submitter = dispatch.NewSMTPSubmitter(cfg.Dispatch.SMTPTimeout)
	default:
		log.Fatal().Str("submitter", cfg.Email.Submitter).Msg("unknown email submitter")
	}

	// Load the stored Azure SMS credential, if any
	var smsProvider dispatch.SmsProvider
	cred, err := store.SMSCredentials.Get(context.Background())
	switch {
	case errors.Is(err, repository.ErrNotFound):
		log.Info().Msg("Azure SMS credential not configured")
	case err != nil:
		log.Fatal().Err(err).Msg("failed to load Azure SMS credential")
	default:
		smsProvider, err = dispatch.NewAzureSMS(*cred)
		if err != nil {
			log.Fatal().Err(err).Msg("stored Azure SMS credential is invalid")
		}
		log.Info().Str("from", cred.PhoneNumber).Msg("Azure SMS provider ready")
	}

	dispatcher := dispatch.New(submitter, smsProvider, cfg.Dispatch)

	// Initialize services
	authSvc := service.NewAuthService(store.Users, tokenSvc, cfg, log)
	if err := authSvc.EnsureDefaultAdmin(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("failed to seed admin account")
	}
	sendSvc := service.NewSendService(dispatcher, store.Activity, log)
	activitySvc := service.NewActivityService(store.Activity, log)
	scheduleSvc := service.NewScheduleService(store.Tasks, sendSvc, log)

	// Initialize handlers
	h := handler.New(db, rdb, log, cfg, store, dispatcher, authSvc, sendSvc, activitySvc, scheduleSvc)

	// Initialize middleware
	mw := middleware.New(rdb, log, cfg)

	// Set up router
	r := router.New(h, mw, tokenSvc)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // bulk sends stream progress slowly
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
