// Package app wires configuration, storage, the reservation core and the
// HTTP transport into one runnable service.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/cinema-booking/internal/config"
	"github.com/iliyamo/cinema-booking/internal/database"
	"github.com/iliyamo/cinema-booking/internal/gateway"
	"github.com/iliyamo/cinema-booking/internal/handler"
	"github.com/iliyamo/cinema-booking/internal/middleware"
	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/queue"
	"github.com/iliyamo/cinema-booking/internal/repository"
	"github.com/iliyamo/cinema-booking/internal/reservation"
	"github.com/iliyamo/cinema-booking/internal/router"
	"github.com/iliyamo/cinema-booking/internal/scheduler"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	cfg       config.Config
	log       zerolog.Logger
	e         *echo.Echo
	svc       *reservation.Service
	syncer    *gateway.Syncer
	scheduler *scheduler.Scheduler
	closers   []func() error
}

// backend is the storage a mode provides.
type backend struct {
	store   gateway.Store
	catalog reservation.Catalog
	shows   handler.ShowLister
	users   handler.UserStore
}

func New(ctx context.Context, cfg config.Config, log zerolog.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}

	be, err := a.openBackend(ctx)
	if err != nil {
		a.close()
		return nil, err
	}

	var pub gateway.Publisher = gateway.NopPublisher{}
	if cfg.BrokerEnabled {
		p := queue.NewPublisher(cfg.RabbitMQURL, log)
		a.closers = append(a.closers, p.Close)
		pub = p
	}
	a.syncer = gateway.NewSyncer(be.store, pub, gateway.Config{
		QueueSize:  cfg.SyncQueueSize,
		MaxRetries: cfg.SyncMaxRetries,
	}, log)

	ledger := reservation.NewLedger(reservation.Options{
		LockTimeout:  cfg.LockTimeout,
		CancelPolicy: reservation.ParseCancelPolicy(cfg.CancelPolicy),
	})
	a.svc = reservation.NewService(ledger, be.catalog, a.syncer, log)
	a.scheduler = scheduler.New(a.svc, cfg.CompactInterval, cfg.CompactRetention, log)

	rdb := config.NewRedisClient(ctx, config.LoadRedisConfig(), log)
	if rdb != nil {
		a.closers = append(a.closers, rdb.Close)
	}
	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb, log)

	bookings := handler.NewBookingHandler(a.svc)
	a.e = router.New(log)
	closing := make(chan struct{})
	bookings.Closing = closing
	a.e.Server.RegisterOnShutdown(sync.OnceFunc(func() { close(closing) }))
	router.RegisterRoutes(a.e, &handler.HealthHandler{Stats: a.syncer.Stats})
	router.RegisterAuth(a.e, handler.NewAuthHandler(cfg, be.users), limit)
	router.RegisterPublic(a.e, handler.NewShowHandler(a.svc, be.shows), bookings, cfg.JWTSecret, cache)
	router.RegisterBookings(a.e, bookings, cfg.JWTSecret, limit)
	return a, nil
}

func (a *App) openBackend(ctx context.Context) (backend, error) {
	if !a.cfg.MySQL() {
		catalog := reservation.NewMemoryCatalog(demoShows(time.Now())...)
		a.log.Info().Msg("using in-memory store")
		return backend{
			store:   gateway.NewMemoryStore(),
			catalog: catalog,
			shows:   catalog,
			users:   repository.NewMemoryUserRepo(),
		}, nil
	}

	db, err := database.Open(ctx, a.cfg.DBUser, a.cfg.DBPass, a.cfg.DBHost, a.cfg.DBPort, a.cfg.DBName)
	if err != nil {
		return backend{}, fmt.Errorf("open database: %w", err)
	}
	a.closers = append(a.closers, db.Close)
	if err := repository.EnsureSchema(ctx, db); err != nil {
		return backend{}, fmt.Errorf("ensure schema: %w", err)
	}
	a.log.Info().Str("host", a.cfg.DBHost).Str("db", a.cfg.DBName).Msg("using mysql store")
	shows := repository.NewShowRepo(db)
	return backend{
		store:   repository.NewBookingRepo(db),
		catalog: shows,
		shows:   shows,
		users:   repository.NewUserRepo(db),
	}, nil
}

// demoShows fills the in-memory catalog so a local instance has something
// to book.
func demoShows(now time.Time) []model.Show {
	day := now.UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
	return []model.Show{
		{ID: 1, MovieID: 1, Title: "Matinee", ScheduledAt: day.Add(14 * time.Hour)},
		{ID: 2, MovieID: 2, Title: "Evening", ScheduledAt: day.Add(19 * time.Hour)},
		{ID: 3, MovieID: 2, Title: "Late Night", ScheduledAt: day.Add(23 * time.Hour), Rows: 8, Cols: 10},
	}
}

// Run serves until ctx is cancelled.  The syncer outlives the HTTP server
// so bookings committed by in-flight requests still reach the store.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	syncCtx, stopSync := context.WithCancel(context.WithoutCancel(ctx))
	defer stopSync()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.syncer.Run(syncCtx)
	})

	g.Go(func() error {
		a.scheduler.Start(ctx)
		return nil
	})

	g.Go(func() error {
		addr := ":" + a.cfg.Port
		a.log.Info().Str("addr", addr).Str("env", a.cfg.Env).Msg("starting server")
		if err := a.e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		// Shut down
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		err := a.e.Shutdown(sctx)
		if err != nil {
			a.log.Error().Err(err).Msg("error stopping server")
		}
		stopSync()
		return err
	})

	// Will block until all goroutines finish
	return g.Wait()
}

func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn().Err(err).Msg("close")
		}
	}
	a.closers = nil
}
