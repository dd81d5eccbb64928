package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/tarnu/challenge-bets/internal/challenge-service/auth"
	"github.com/tarnu/challenge-bets/internal/challenge-service/feed"
	chttp "github.com/tarnu/challenge-bets/internal/challenge-service/http"
	kpub "github.com/tarnu/challenge-bets/internal/challenge-service/producer"
	"github.com/tarnu/challenge-bets/internal/challenge-service/repo"
	"github.com/tarnu/challenge-bets/internal/challenge-service/service"
	"github.com/tarnu/challenge-bets/internal/shared/cache"
	"github.com/tarnu/challenge-bets/internal/shared/config"
	"github.com/tarnu/challenge-bets/internal/shared/db"
	"github.com/tarnu/challenge-bets/internal/shared/kafka"
	"github.com/tarnu/challenge-bets/internal/shared/logger"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	log.Info("starting service", zap.String("service", cfg.ServiceName), zap.String("env", cfg.Env))

	// Storage: Postgres por padrão, memória para desenvolvimento local
	var store service.Store
	var pingPg func(ctx context.Context) error
	switch cfg.StorageDriver {
	case "memory":
		store = repo.NewMemory()
		log.Info("using in-memory storage")
	default:
		pg, err := db.ConnectPostgres(cfg.PostgresDSN)
		if err != nil {
			log.Fatal("postgres connect", zap.Error(err))
		}
		defer pg.Close()
		if err := db.RunMigrations(cfg.PostgresDSN); err != nil {
			log.Fatal("migrations", zap.Error(err))
		}
		store = repo.NewPostgres(pg)
		pingPg = pg.PingContext
		log.Info("postgres connected, migrations applied")
	}

	// Redis: canal Pub/Sub do feed ao vivo
	rdb, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer rdb.Close()

	// Kafka writers, um por tópico de ciclo de vida
	createdW := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicChallengeCreated)
	betW := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetPlaced)
	finalizedW := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicChallengeFinalized)
	defer createdW.Close()
	defer betW.Close()
	defer finalizedW.Close()

	publ := kpub.NewKafkaPublisher(createdW, betW, finalizedW)
	bcast := feed.NewRedisBroadcaster(rdb, cfg.RedisPubSubChannel)

	svc := service.New(log, store, publ, bcast)
	ver := auth.NewVerifier(cfg.JWTSecret, cfg.Env)

	api := chttp.NewServer(log, svc, ver)

	// Métricas Prometheus do ciclo de vida
	created := prometheus.NewCounter(prometheus.CounterOpts{Name: "challenge_created_total", Help: "desafios criados"})
	betsPlaced := prometheus.NewCounter(prometheus.CounterOpts{Name: "challenge_bets_placed_total", Help: "apostas aceitas"})
	betsRejected := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "challenge_bets_rejected_total", Help: "apostas rejeitadas por motivo"}, []string{"reason"})
	finalized := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "challenge_finalized_total", Help: "desafios finalizados por resultado"}, []string{"outcome"})
	prometheus.MustRegister(created, betsPlaced, betsRejected, finalized)

	api.OnChallengeCreated = func() { created.Inc() }
	api.OnBetPlaced = func() { betsPlaced.Inc() }
	api.OnBetRejected = func(reason string) { betsRejected.WithLabelValues(reason).Inc() }
	api.OnFinalized = func(outcome string) { finalized.WithLabelValues(outcome).Inc() }

	// metrics/health
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsMux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if pingPg != nil {
			if err := pingPg(ctx); err != nil {
				http.Error(w, "pg", http.StatusServiceUnavailable)
				return
			}
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			http.Error(w, "redis", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	go func() {
		addr := fmt.Sprintf(":%s", cfg.MetricsPort)
		log.Info("metrics/health", zap.String("addr", addr))
		_ = http.ListenAndServe(addr, metricsMux)
	}()

	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: api.Router(),
	}

	log.Info("challenge-service listening", zap.String("addr", apiSrv.Addr))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
