package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"github.com/vedran77/pokehire/internal/auth"
	"github.com/vedran77/pokehire/internal/config"
	"github.com/vedran77/pokehire/internal/database"
	"github.com/vedran77/pokehire/internal/logging"
	"github.com/vedran77/pokehire/internal/ratelimit"
	"github.com/vedran77/pokehire/internal/repository"
	"github.com/vedran77/pokehire/internal/repository/memory"
	postgresrepo "github.com/vedran77/pokehire/internal/repository/postgres"
	"github.com/vedran77/pokehire/internal/service"
	"github.com/vedran77/pokehire/internal/telemetry"
	"github.com/vedran77/pokehire/internal/transport/http/middleware"
	"github.com/vedran77/pokehire/internal/transport/http/router"
	"github.com/vedran77/pokehire/internal/transport/ws"
)

func main() {
	cfg := config.Load()
	log := logging.New(os.Stdout, cfg.LogFormat, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log logging.Logger) error {
	shutdownTelemetry := telemetry.Setup(ctx, telemetry.Options{
		ServiceName: "pokehire",
		Endpoint:    cfg.OTLPEndpoint,
		Insecure:    cfg.OTLPInsecure,
	}, log)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTelemetry(ctx)
	}()

	// Storage
	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	// Services
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	authService := service.NewAuthService(store, tokens, cfg.StartingBalance)
	profileService := service.NewProfileService(store)
	contractService := service.NewContractService(store, log)
	teamService := service.NewTeamService(store)

	// Real-time
	hub := ws.NewHub(log)
	contractService.SetNotifier(ws.NewHubNotifier(hub))

	trusted, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return err
	}

	var limiter middleware.Limiter
	if cfg.RedisURL != "" {
		rl, err := ratelimit.New(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rl.Close()
		limiter = rl
		log.Info(ctx, "login rate limiting enabled", "limit", cfg.LoginRateLimit, "window", cfg.LoginRateWindow)
	}

	handler := router.New(router.Deps{
		Config:    cfg,
		Log:       log,
		Verifier:  tokens,
		Auth:      authService,
		Profiles:  profileService,
		Contracts: contractService,
		Teams:     teamService,
		Hub:       hub,
		Limiter:   limiter,

		TrustedProxies: trusted,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           otelhttp.NewHandler(handler, "pokehire"),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return hub.Run(gctx)
	})

	g.Go(func() error {
		log.Info(gctx, "starting server", "addr", server.Addr, "store", cfg.Store)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info(context.Background(), "shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// openStore picks the repository backend. Postgres is migrated on boot.
func openStore(ctx context.Context, cfg *config.Config, log logging.Logger) (repository.Store, func(), error) {
	if cfg.Store == "memory" {
		log.Warn(ctx, "using in-memory store, data is lost on restart")
		return memory.NewStore(), func() {}, nil
	}

	if err := database.MigrateDSN(ctx, database.DSN(cfg)); err != nil {
		return nil, nil, err
	}

	pool, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	log.Info(ctx, "connected to database", "host", cfg.DBHost, "name", cfg.DBName)

	return postgresrepo.NewStore(pool), pool.Close, nil
}
