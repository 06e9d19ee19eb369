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

	"github.com/oumizumi/leethub/internal/config"
	"github.com/oumizumi/leethub/internal/database"
	"github.com/oumizumi/leethub/internal/handler"
	"github.com/oumizumi/leethub/internal/middleware"
	"github.com/oumizumi/leethub/internal/repository"
	"github.com/oumizumi/leethub/internal/router"
	"github.com/oumizumi/leethub/internal/service"
	"github.com/oumizumi/leethub/pkg/github"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	validate := validator.New(validator.WithRequiredStructEnabled())

	settingsRepo := repository.NewSettingsRepository(redisClient)
	ledgerRepo := repository.NewLedgerRepository(redisClient, cfg.MaxLogEntries)
	statsRepo := repository.NewStatisticsRepository(redisClient)

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 5*time.Second)
	if err := settingsRepo.EnsureDefaults(seedCtx); err != nil {
		logger.Warn().Err(err).Msg("could not seed default settings")
	}
	cancelSeed()

	githubClient := github.New(github.Config{
		BaseURL: cfg.GitHubBaseURL,
		Timeout: cfg.GitHubTimeout,
	}, logger)

	notifier := service.NewLogNotifier(logger)

	pushService := service.NewPushService(settingsRepo, ledgerRepo, statsRepo, githubClient, notifier, validate, service.RetryPolicy{
		MaxAttempts: cfg.MaxRetries,
		Delay:       cfg.RetryDelay,
	}, logger)
	activityService := service.NewActivityService(ledgerRepo, statsRepo, settingsRepo, logger)
	settingsService := service.NewSettingsService(settingsRepo, githubClient, validate, logger)

	messageHandler := handler.NewMessageHandler(pushService, activityService, logger)
	activityHandler := handler.NewActivityHandler(activityService, logger)
	settingsHandler := handler.NewSettingsHandler(settingsService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		MessageHandler:  messageHandler,
		ActivityHandler: activityHandler,
		SettingsHandler: settingsHandler,
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
