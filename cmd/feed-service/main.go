package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	fcache "github.com/tarnu/challenge-bets/internal/feed-service/cache"
	fhttp "github.com/tarnu/challenge-bets/internal/feed-service/http"
	"github.com/tarnu/challenge-bets/internal/feed-service/repo"
	"github.com/tarnu/challenge-bets/internal/feed-service/ws"
	"github.com/tarnu/challenge-bets/internal/shared/cache"
	"github.com/tarnu/challenge-bets/internal/shared/config"
	"github.com/tarnu/challenge-bets/internal/shared/db"
	"github.com/tarnu/challenge-bets/internal/shared/logger"
	"github.com/tarnu/challenge-bets/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	log.Info("starting service", zap.String("service", cfg.ServiceName), zap.String("env", cfg.Env))

	// conecta com db Postgres (somente leitura neste serviço)
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()
	log.Info("postgres connected")

	// conecta com cache Redis (tallies + pub/sub do feed)
	redisClient, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("failed to connect redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("redis connected")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Hub WebSocket alimentado pelo canal Redis Pub/Sub do challenge-service
	hub := ws.NewHub(func(r *http.Request) bool { return true }) // CORS tratado no gateway
	ws.StartRedisSubscriber(ctx, redisClient, cfg.RedisPubSubChannel, hub)

	api := &fhttp.API{
		ReadRepo: &repo.ReadRepo{DB: pg},
		Cache:    fcache.New(redisClient),
		Hub:      hub,
	}

	// sobe servidor de métricas e health
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	})

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: api.Router(),
	}

	log.Info("feed-service listening", zap.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
