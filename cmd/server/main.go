package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/anonto42/socialape/backend/internal/bootstrap"
	"github.com/anonto42/socialape/backend/internal/events"
	"github.com/anonto42/socialape/backend/internal/middleware"
	"github.com/anonto42/socialape/backend/internal/router"
	"github.com/anonto42/socialape/backend/internal/services"
	"github.com/anonto42/socialape/backend/internal/triggers"
	"github.com/anonto42/socialape/backend/pkg/config"
	"github.com/anonto42/socialape/backend/pkg/log"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.InitLogger(cfg.Env, cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		log.Log.WithError(err).Fatal("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	infra, err := bootstrap.Open(ctx, cfg)
	if err != nil {
		log.Log.WithError(err).Fatal("Failed to initialize infrastructure")
	}
	defer infra.Close()

	provider, err := infra.AuthProvider(ctx)
	if err != nil {
		log.Log.WithError(err).Fatal("Failed to initialize auth provider")
	}
	uploader, err := infra.Uploader(ctx)
	if err != nil {
		log.Log.WithError(err).Fatal("Failed to initialize image storage")
	}

	// Every committed write is published on the bus for the triggers.
	busLogger := events.NewLogrusAdapter(log.Log.WithField("component", "events"))
	bus := events.NewBus(busLogger)
	db := events.NewPublishingStore(infra.Store, bus)

	eventRouter, err := message.NewRouter(message.RouterConfig{CloseTimeout: 10 * time.Second}, busLogger)
	if err != nil {
		log.Log.WithError(err).Fatal("Failed to create event router")
	}
	triggers.New(db).Register(eventRouter, bus)
	go func() {
		if err := eventRouter.Run(ctx); err != nil {
			log.Log.WithError(err).Error("event router stopped")
		}
	}()
	<-eventRouter.Running()

	e := router.NewServer(router.Dependencies{
		Posts:         services.NewPostService(db),
		Engagement:    services.NewEngagementService(db),
		Users:         services.NewUserService(db, provider, uploader, cfg.DefaultImageURL()),
		Authenticator: middleware.NewAuthenticator(provider, db),
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Log.WithError(err).Fatal("server stopped")
		}
	}()

	<-ctx.Done()
	log.Log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Log.WithError(err).Error("server shutdown failed")
	}
	if err := eventRouter.Close(); err != nil {
		log.Log.WithError(err).Error("event router shutdown failed")
	}
	if err := bus.Close(); err != nil {
		log.Log.WithError(err).Error("event bus shutdown failed")
	}
}
