// Command server runs the cybercrime case-management API: administrative
// officer/case mutations coordinated across Firebase and SQLite, durable
// in-app notifications with push delivery, and the live SSE feeds.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	firebase "firebase.google.com/go"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"

	"github.com/mkamau/cybercase-backend/internal/config"
	httpapi "github.com/mkamau/cybercase-backend/internal/http"
	"github.com/mkamau/cybercase-backend/internal/identity"
	"github.com/mkamau/cybercase-backend/internal/observability"
	"github.com/mkamau/cybercase-backend/internal/push"
	"github.com/mkamau/cybercase-backend/internal/repo"
	"github.com/mkamau/cybercase-backend/internal/sysutil"
	"github.com/mkamau/cybercase-backend/internal/toast"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	// .env is optional; real deployments use the process environment.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	// Logging
	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	log.Info().Str("version", version).Str("port", cfg.Port).Msg("starting cybercase-backend")

	ctx := context.Background()

	// Tracing
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up tracing")
	}

	// Datastore
	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	// Identity + push providers
	var idp identity.Provider = identity.Insecure{}
	var pusher push.Provider = push.Nop{}
	if cfg.Firebase.Enabled {
		var opts []option.ClientOption
		if cfg.Firebase.CredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.Firebase.CredentialsFile))
		}
		app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.Firebase.ProjectID}, opts...)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize firebase")
		}
		fbIdp, err := identity.NewFirebaseProvider(ctx, app)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize firebase auth")
		}
		idp = fbIdp
		fcm, err := push.NewFCMProvider(ctx, app)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize firebase messaging")
		}
		pusher = fcm
		log.Info().Str("project", cfg.Firebase.ProjectID).Msg("firebase enabled")
	} else {
		log.Warn().Msg("firebase disabled; using insecure dev identity and no-op push")
	}

	// Toast broadcast queue (shared, closed on shutdown)
	toasts := toast.New(cfg.ToastTTL)

	// HTTP engine
	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, db, idp, pusher, toasts, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}

	toasts.Close()
	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("tracing shutdown failed")
	}
	log.Info().Msg("stopped")
}
