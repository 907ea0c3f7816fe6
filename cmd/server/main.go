package main

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"github.com/abhi01978/NechGen/internal/auth"
	"github.com/abhi01978/NechGen/internal/chat"
	"github.com/abhi01978/NechGen/internal/config"
	appdb "github.com/abhi01978/NechGen/internal/db"
	"github.com/abhi01978/NechGen/internal/generation"
	apphttp "github.com/abhi01978/NechGen/internal/http"
	"github.com/abhi01978/NechGen/internal/image"
	"github.com/abhi01978/NechGen/internal/llm"
	applog "github.com/abhi01978/NechGen/internal/log"
	"github.com/abhi01978/NechGen/internal/search"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return eris.Wrap(err, "failure loading configuration")
	}

	logger, err := applog.NewLogger(cfg.LogLevel)
	if err != nil {
		return eris.Wrap(err, "failure initialising logger")
	}

	sentryHub, flush, err := applog.InitSentry(logger, applog.SentrySettings{
		DSN:         cfg.SentryDSN,
		Environment: cfg.Environment,
	})
	if err != nil {
		return eris.Wrap(err, "failure initialising sentry")
	}
	defer flush()

	dbConn, err := appdb.Open(appdb.Options{Path: cfg.DBPath})
	if err != nil {
		return eris.Wrap(err, "opening database")
	}
	defer func() {
		if closeErr := appdb.Close(dbConn); closeErr != nil {
			logger.WithError(closeErr).Error("closing database")
		}
	}()

	if err := auth.Migrate(ctx, dbConn, logger); err != nil {
		return eris.Wrap(err, "running auth migrations")
	}
	if err := chat.Migrate(ctx, dbConn, logger); err != nil {
		return eris.Wrap(err, "running chat migrations")
	}

	authService, err := auth.NewService(auth.Options{
		DB:       dbConn,
		Logger:   logger,
		Secret:   cfg.JWTSecret,
		TokenTTL: cfg.TokenTTL,
	})
	if err != nil {
		return eris.Wrap(err, "building auth service")
	}

	store, err := chat.NewStore(dbConn, logger)
	if err != nil {
		return eris.Wrap(err, "building conversation store")
	}

	drafter, err := buildDrafter(cfg, logger)
	if err != nil {
		return err
	}

	refiner, err := buildRefiner(cfg, logger)
	if err != nil {
		return err
	}

	searcher, err := buildSearcher(cfg, logger)
	if err != nil {
		return err
	}

	generator, err := generation.NewService(generation.ServiceOptions{
		Store:     store,
		Searcher:  searcher,
		Drafter:   drafter,
		Refiner:   refiner,
		Logger:    logger,
		SentryHub: sentryHub,
	})
	if err != nil {
		return eris.Wrap(err, "building generation service")
	}

	images, err := buildImageClient(cfg, logger)
	if err != nil {
		return err
	}

	transport, err := apphttp.NewServer(apphttp.Options{
		Auth:      authService,
		Chats:     store,
		Generator: generator,
		Images:    images,
		Database:  dbConn,
		Logger:    logger,
		SentryHub: sentryHub,
		RateLimiter: apphttp.RateLimiterSettings{
			RequestsPerSecond: cfg.RateLimitPerSecond,
			Burst:             cfg.RateLimitBurst,
			ClientTTL:         cfg.RateLimitTTL,
		},
	})
	if err != nil {
		return eris.Wrap(err, "initialising http transport")
	}

	httpServer := &stdhttp.Server{
		Addr:    fmt.Sprintf("0.0.0.0:%d", cfg.ServerPort),
		Handler: transport.Handler(),
	}

	logger.WithFields(logrus.Fields{
		"addr": httpServer.Addr,
	}).Info("starting http server")

	serverErrCh := make(chan error, 1)
	go func() {
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serverErrCh <- err
		} else {
			serverErrCh <- nil
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErrCh:
		if err != nil {
			return eris.Wrap(err, "http server error")
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "shutting down http server")
	}

	logger.Info("http server shut down cleanly")
	return nil
}

func buildDrafter(cfg *config.Config, logger *logrus.Logger) (llm.Drafter, error) {
	client, err := llm.NewClient(llm.ClientOptions{
		Name:    "draft",
		APIKey:  cfg.DraftAPIKey,
		BaseURL: cfg.DraftBaseURL,
		Logger:  logger,
	})
	if err != nil {
		return nil, eris.Wrap(err, "creating draft client")
	}

	drafter, err := llm.NewDrafter(llm.DrafterOptions{
		Client: client,
		Model:  cfg.DraftModel,
	})
	if err != nil {
		return nil, eris.Wrap(err, "building drafter")
	}

	return drafter, nil
}

// buildRefiner returns nil when no refine keys are configured; the pipeline
// then serves draft output with a fallback note.
func buildRefiner(cfg *config.Config, logger *logrus.Logger) (llm.Refiner, error) {
	if len(cfg.RefineAPIKeys) == 0 {
		logger.Warn("no refine keys configured, refinement disabled")
		return nil, nil
	}

	providers := make([]llm.RefineProvider, 0, len(cfg.RefineAPIKeys))
	for idx, key := range cfg.RefineAPIKeys {
		client, err := llm.NewClient(llm.ClientOptions{
			Name:    fmt.Sprintf("refine-%d", idx+1),
			APIKey:  key,
			BaseURL: cfg.RefineBaseURL,
			Logger:  logger,
		})
		if err != nil {
			return nil, eris.Wrapf(err, "creating refine client %d", idx+1)
		}
		providers = append(providers, llm.RefineProvider{Client: client, Model: cfg.RefineModel})
	}

	refiner, err := llm.NewRefiner(llm.RefinerOptions{
		Providers: providers,
		Logger:    logger,
	})
	if err != nil {
		return nil, eris.Wrap(err, "building refiner")
	}

	return refiner, nil
}

func buildSearcher(cfg *config.Config, logger *logrus.Logger) (search.Searcher, error) {
	if cfg.TavilyAPIKey == "" {
		logger.Warn("no tavily key configured, search disabled")
		return search.NewDisabled(logger), nil
	}

	searcher, err := search.NewTavilyClient(search.TavilyOptions{
		APIKey:  cfg.TavilyAPIKey,
		BaseURL: cfg.TavilyBaseURL,
		Logger:  logger,
	})
	if err != nil {
		return nil, eris.Wrap(err, "building tavily client")
	}

	return searcher, nil
}

func buildImageClient(cfg *config.Config, logger *logrus.Logger) (image.Generator, error) {
	if cfg.ImageAPIKey == "" {
		logger.Warn("no image key configured, image generation disabled")
		return nil, nil
	}

	client, err := image.NewClient(image.Options{
		APIKey:  cfg.ImageAPIKey,
		BaseURL: cfg.ImageBaseURL,
		Model:   cfg.ImageModel,
		Logger:  logger,
	})
	if err != nil {
		return nil, eris.Wrap(err, "building image client")
	}

	return client, nil
}
