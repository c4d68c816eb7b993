package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deppfellow/go-posts/internal/config"
	"github.com/deppfellow/go-posts/internal/database"
	"github.com/deppfellow/go-posts/internal/handler"
	"github.com/deppfellow/go-posts/internal/logger"
	"github.com/deppfellow/go-posts/internal/repository"
	"github.com/deppfellow/go-posts/internal/router"
	"github.com/deppfellow/go-posts/internal/server"
	"github.com/deppfellow/go-posts/internal/service"
	"github.com/rs/zerolog/log"
)

const (
	migrationTimeout = 30 * time.Second
	shutdownTimeout  = 30 * time.Second
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Shut down with the server, which flushes the New Relic agent last.
	loggerService := logger.NewLoggerService(cfg.Observability)

	appLogger := logger.NewLoggerWithService(cfg.Observability, loggerService)

	migrateCtx, cancel := context.WithTimeout(context.Background(), migrationTimeout)
	err = database.Migrate(migrateCtx, &appLogger, cfg)
	cancel()
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to migrate database")
	}

	srv, err := server.New(cfg, &appLogger, loggerService)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to initialize server")
	}

	repos := repository.NewRepositories(srv)
	services, err := service.NewServices(srv, repos)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("could not create services")
	}
	handlers := handler.NewHandlers(srv, services)
	r := router.NewRouter(srv, handlers)

	srv.SetupHTTPServer(r)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	appLogger.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	appLogger.Info().Msg("server exited properly")
}
