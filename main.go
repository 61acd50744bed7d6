package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"transit-dashboard/config"
	"transit-dashboard/di"
	"transit-dashboard/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		logging.Component("Main").Fatal().Err(err).Msg("failed to load config")
	}
	logging.Init(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	log := logging.Component("Main")

	container, err := di.NewContainer(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize container")
	}
	defer func() {
		if err := container.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close container")
		}
	}()

	log.Info().Msg("warming caches")
	container.CacheRefresherService.Refresh(ctx)
	container.CacheRefresherService.StartPeriodicJob(ctx, config.CACHE_REFRESHER_SCHEDULE_MINUTES*time.Minute)

	if err := container.DashboardHttpServer.Start(ctx); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
	}
}
