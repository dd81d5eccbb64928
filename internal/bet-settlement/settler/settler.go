package settler

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/tarnu/challenge-bets/internal/challenge-service/domain"
	"github.com/tarnu/challenge-bets/pkg/contracts/events"
)

// Store define o acesso a apostas necessário para a liquidação
// Implementado pelos repositórios do challenge-service (Postgres e memória)
type Store interface {
	BetsForChallenge(ctx context.Context, challengeID string) ([]domain.Bet, error)
	SetBetResult(ctx context.Context, betID string, result domain.BetResult) error
}

// Publisher publica o evento de aposta liquidada
type Publisher interface {
	PublishBetSettled(ctx context.Context, e events.BetSettled) error
}

// Settler consome eventos challenge_finalized e liquida as apostas do desafio:
// predição igual ao resultado marca WON, diferente marca LOST
// Callbacks de métricas podem ser usados para monitoramento de cada etapa
type Settler struct {
	Log    *zap.Logger
	Reader *kafka.Reader
	Store  Store
	Publ   Publisher
	DLQ    *kafka.Writer

	OnConsumed func()       // métricas (counter++)
	OnSettled  func()       // métricas: apostas liquidadas
	OnError    func(string) // métricas por fase
}

// Run inicia o loop principal de consumo e liquidação
func (s *Settler) Run(ctx context.Context) error {
	for {
		m, err := s.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			s.Log.Warn("kafka read failed", zap.Error(err))
			if s.OnError != nil {
				s.OnError("read")
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		if s.OnConsumed != nil {
			s.OnConsumed()
		}

		var ev events.ChallengeFinalized
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			s.Log.Warn("invalid message", zap.Error(err))
			if s.OnError != nil {
				s.OnError("decode")
			}
			continue
		}

		if err := s.SettleChallenge(ctx, ev); err != nil {
			s.Log.Error("settle challenge", zap.String("challengeId", ev.ChallengeID), zap.Error(err))
			if s.OnError != nil {
				s.OnError("settle")
			}
			if s.DLQ != nil {
				_ = s.writeDLQ(ctx, m.Value, ev.ChallengeID)
			}
			// Backoff simples para evitar flood em caso de erro
			time.Sleep(500 * time.Millisecond)
		}
	}
}

// SettleChallenge liquida todas as apostas de um desafio finalizado
// Reentrega do evento é segura: apostas já liquidadas não mudam de resultado
func (s *Settler) SettleChallenge(ctx context.Context, ev events.ChallengeFinalized) error {
	outcome, ok := domain.ParseOutcome(ev.Outcome)
	if !ok {
		s.Log.Warn("unknown outcome, skipping", zap.String("outcome", ev.Outcome))
		return nil
	}
	succeeded := outcome == domain.StatusCompleted

	bets, err := s.Store.BetsForChallenge(ctx, ev.ChallengeID)
	if err != nil {
		return err
	}

	for _, b := range bets {
		if b.Result != domain.ResultPending {
			continue // já liquidada em uma entrega anterior
		}

		result := domain.ResultLost
		if b.Prediction == succeeded {
			result = domain.ResultWon
		}
		if err := s.Store.SetBetResult(ctx, b.ID, result); err != nil {
			return err
		}
		if s.OnSettled != nil {
			s.OnSettled()
		}

		if s.Publ != nil {
			evs := events.BetSettled{
				BetID:       b.ID,
				ChallengeID: b.ChallengeID,
				BettorID:    b.BettorID,
				Result:      string(result),
				Ts:          time.Now().UTC(),
			}
			if err := s.Publ.PublishBetSettled(ctx, evs); err != nil {
				s.Log.Warn("bet_settled publish failed", zap.String("betId", b.ID), zap.Error(err))
			}
		}
	}
	return nil
}

func (s *Settler) writeDLQ(ctx context.Context, payload []byte, key string) error {
	return s.DLQ.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: payload, Time: time.Now()})
}

// KafkaSettledPublisher publica eventos bet_settled no tópico correspondente
type KafkaSettledPublisher struct {
	Writer *kafka.Writer
}

func (p *KafkaSettledPublisher) PublishBetSettled(ctx context.Context, e events.BetSettled) error {
	b, _ := json.Marshal(e)
	return p.Writer.WriteMessages(ctx, kafka.Message{Key: []byte(e.ChallengeID), Value: b})
}
