package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/tarnu/challenge-bets/internal/bet-settlement/settler"
	"github.com/tarnu/challenge-bets/internal/challenge-service/repo"
	"github.com/tarnu/challenge-bets/internal/shared/config"
	"github.com/tarnu/challenge-bets/internal/shared/db"
	"github.com/tarnu/challenge-bets/internal/shared/kafka"
	"github.com/tarnu/challenge-bets/internal/shared/logger"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Conexão com Postgres para atualização do resultado das apostas
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg connect", zap.Error(err))
	}
	defer pg.Close()

	// Kafka consumer: consome challenge_finalized para liquidar apostas
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicChallengeFinalized, "bet-settlement")
	defer reader.Close()

	// Kafka producer: publica bet_settled e, opcionalmente, envia para DLQ
	settledWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetSettled)
	defer settledWriter.Close()

	var dlqWriter *kafka.Writer
	if cfg.TopicChallengeFinalizedDLQ != "" {
		dlqWriter = kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicChallengeFinalizedDLQ)
		defer dlqWriter.Close()
	}

	// Métricas Prometheus para monitoramento da liquidação
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "settlement_messages_consumed_total", Help: "mensagens consumidas"})
	settled := prometheus.NewCounter(prometheus.CounterOpts{Name: "settlement_bets_settled_total", Help: "apostas liquidadas"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "settlement_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, settled, errorsBy)

	// Servidor HTTP para métricas Prometheus e healthcheck
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
			defer cancel()
			if err := pg.PingContext(ctx); err != nil {
				http.Error(w, "pg", http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		addr := ":" + cfg.MetricsPort
		log.Info("metrics/health", zap.String("addr", addr))
		_ = http.ListenAndServe(addr, mux)
	}()

	s := &settler.Settler{
		Log:        log,
		Reader:     reader,
		Store:      repo.NewPostgres(pg),
		Publ:       &settler.KafkaSettledPublisher{Writer: settledWriter},
		DLQ:        dlqWriter,
		OnConsumed: func() { consumed.Inc() },
		OnSettled:  func() { settled.Inc() },
		OnError:    func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("bet-settlement-worker started",
		zap.String("consume", cfg.TopicChallengeFinalized),
		zap.String("publish", cfg.TopicBetSettled),
	)

	if err := s.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("settler stopped with error", zap.Error(err))
	}
	log.Info("bet-settlement-worker stopped")
}
