// Command booking-consumer appends an audit line to a log file for every
// booking event published by the server.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/iliyamo/cinema-booking/internal/logger"
	"github.com/iliyamo/cinema-booking/internal/queue"
)

func main() {
	_ = godotenv.Load()
	lg := logger.New(os.Getenv("LOG_LEVEL"), os.Getenv("APP_ENV"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := queue.NewConsumer(os.Getenv("RABBITMQ_URL"), os.Getenv("BOOKING_LOG_PATH"), lg)
	lg.Info().Str("queue", queue.BookingQueue).Msg("consumer started")
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		lg.Error().Err(err).Msg("consumer stopped with error")
		stop()
		os.Exit(1)
	}
	lg.Info().Msg("consumer stopped")
}
