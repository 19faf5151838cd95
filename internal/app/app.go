package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okateru/plango/internal/config"
	"github.com/okateru/plango/internal/editor"
	"github.com/okateru/plango/internal/postgres"
	redisx "github.com/okateru/plango/internal/redis"
	"github.com/okateru/plango/internal/render"
	postgresrepo "github.com/okateru/plango/internal/repository/postgres"
	redisrepo "github.com/okateru/plango/internal/repository/redis"
	"github.com/okateru/plango/internal/service"
	"github.com/okateru/plango/internal/token"
	httpgin "github.com/okateru/plango/internal/transport/http/gin"
	"github.com/okateru/plango/internal/transport/ws"
	"golang.org/x/sync/errgroup"
)

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server

	hub      *ws.Hub
	manager  *editor.Manager
	registry *render.Registry
	plansPub *redisx.PlansPubSub
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	// Initialize dependencies
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.Host,
		cfg.Postgres.Port,
		cfg.Postgres.Name,
		cfg.Postgres.SSLMode,
	)

	pgxPool, err := postgres.New(context.Background(), postgres.Config{DSN: dsn})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}

	rdb, err := redisx.New(context.Background(), redisx.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	// Initialize repositories
	store := postgresrepo.NewStore(pgxPool)
	cache := redisrepo.New(rdb)
	plansPub := redisx.NewPlansPubSub(rdb)
	statusPub := redisx.NewStatusPubSub(rdb)
	limiter := redisrepo.NewSlidingWindowLimiter(rdb, "rl", 10, 1*time.Minute)
	idempotencyStore := redisrepo.NewIdempotencyStore(rdb, 2*time.Hour)

	// Editing sessions and the viewer-side render state
	manager := editor.NewManager(cfg.Editor.SessionIdleTTL)
	registry := render.NewRegistry(cfg.Editor.BookingFallbackURL)

	// Initialize services
	services := service.NewServices(store, cache, plansPub, statusPub, limiter, manager, service.Config{})

	issuer := token.NewIssuer(cfg.Editor.TokenSecret, 2*time.Hour)
	hub := ws.NewHub(statusPub, logger)

	// Initialize Gin router
	router := httpgin.NewRouter(services, registry, hub, idempotencyStore, issuer, logger)

	return &App{
		cfg:    cfg,
		logger: logger,
		httpServer: &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler: router,
		},
		hub:      hub,
		manager:  manager,
		registry: registry,
		plansPub: plansPub,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server
	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	// Fan live status changes out to WebSocket viewers
	g.Go(func() error {
		if err := a.hub.Run(gCtx); err != nil && gCtx.Err() == nil {
			return fmt.Errorf("websocket hub stopped: %w", err)
		}
		return nil
	})

	// Reap idle editing sessions
	g.Go(func() error {
		if err := a.manager.Run(gCtx); err != nil && gCtx.Err() == nil {
			return fmt.Errorf("session reaper stopped: %w", err)
		}
		return nil
	})

	// Drop stale render instances when a plan changes anywhere in the
	// cluster; the next request rebuilds them from the fresh document.
	g.Go(func() error {
		err := a.plansPub.Subscribe(gCtx, func(_ context.Context, planID string) {
			a.registry.Dispose(planID)
		})
		if err != nil && gCtx.Err() == nil {
			return fmt.Errorf("plan-changed subscription stopped: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.httpServer.Shutdown(ctx)
	})

	return g.Wait()
}
