package main // Entry point package

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/iliyamo/cinema-booking/internal/app"
	"github.com/iliyamo/cinema-booking/internal/config"
	"github.com/iliyamo/cinema-booking/internal/logger"
)

func main() {
	cfg, err := config.Load() // Load environment config
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	lg := logger.New(cfg.LogLevel, cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, lg)
	if err != nil {
		lg.Fatal().Err(err).Msg("startup failed")
	}
	if err := a.Run(ctx); err != nil {
		lg.Error().Err(err).Msg("server stopped with error")
		stop()
		os.Exit(1)
	}
	lg.Info().Msg("server stopped")
}
