package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"
	"github.com/tmachado/fleetline/internal/auth"
	"github.com/tmachado/fleetline/internal/config"
	"github.com/tmachado/fleetline/internal/hub"
	"github.com/tmachado/fleetline/internal/logging"
	"github.com/tmachado/fleetline/internal/push"
	"github.com/tmachado/fleetline/internal/relay"
	"github.com/tmachado/fleetline/internal/server"
	"github.com/tmachado/fleetline/internal/store"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupStore(cfg *config.Config) *store.Store {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	return store.New(pool)
}

// setupRedis connects to the shared bus. A missing or unreachable bus
// degrades the hub to single-process mode instead of failing startup.
func setupRedis(cfg *config.Config) *goredis.Client {
	if cfg.RedisURL == "" {
		slog.Warn("REDIS_URL not set, running in single-process mode")
		return nil
	}

	opts, err := goredis.ParseURL(cfg.RedisURL)
	if err != nil {
		slog.Warn("Invalid REDIS_URL, running in single-process mode", "error", err)
		return nil
	}
	client := goredis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Warn("Redis unreachable, running in single-process mode", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

func runGracefulShutdown(srv *server.Server, svc *push.Service, cancelBackground context.CancelFunc, redisClient *goredis.Client) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		svc.Stop()
		cancelBackground()

		if redisClient != nil {
			_ = redisClient.Close()
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	st := setupStore(cfg)
	redisClient := setupRedis(cfg)

	registry := hub.NewRegistry(clock)
	broadcaster := hub.NewBroadcaster(registry)
	mux := hub.NewMux(registry, clock, cfg.IdleTimeout)
	monitor := hub.NewMonitor(registry, clock, cfg.HeartbeatInterval)

	backgroundCtx, cancelBackground := context.WithCancel(context.Background())
	defer cancelBackground()

	go monitor.Run(backgroundCtx)

	var rl *relay.Relay
	if redisClient != nil {
		rl = relay.New(relay.NewRedisBus(redisClient), broadcaster)
		go func() {
			if err := rl.Run(backgroundCtx); err != nil {
				slog.Warn("Relay subscriber unavailable, continuing in single-process mode", "error", err)
			}
		}()
	}

	publisher := push.NewPublisher(broadcaster, rl)
	sources := []push.Snapshotter{
		push.NewDashboardSource(st),
		push.NewAnalyticsSource(st),
	}
	svc := push.NewService(publisher, sources, clock, cfg.SnapshotInterval)
	svc.Start()

	events := push.NewEvents(publisher, broadcaster, clock)
	resolver := auth.NewResolver(cfg.JWTSecret)

	srv := server.NewServer(cfg, registry, mux, resolver, events, st, redisClient)
	done := runGracefulShutdown(srv, svc, cancelBackground, redisClient)

	slog.Info("Server starting", "port", cfg.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
