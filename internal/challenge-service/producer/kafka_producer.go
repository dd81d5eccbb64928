package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/tarnu/challenge-bets/pkg/contracts/events"
)

// KafkaPublisher publica os eventos de ciclo de vida, um writer por tópico
type KafkaPublisher struct {
	CreatedWriter   *kafka.Writer
	BetWriter       *kafka.Writer
	FinalizedWriter *kafka.Writer
}

func NewKafkaPublisher(created, bet, finalized *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{CreatedWriter: created, BetWriter: bet, FinalizedWriter: finalized}
}

func (p *KafkaPublisher) PublishChallengeCreated(ctx context.Context, e events.ChallengeCreated) error {
	e.TsUnixMs = time.Now().UnixMilli()
	b, _ := json.Marshal(e)
	return p.CreatedWriter.WriteMessages(ctx, kafka.Message{Key: []byte(e.ChallengeID), Value: b})
}

func (p *KafkaPublisher) PublishBetPlaced(ctx context.Context, e events.BetPlaced) error {
	e.TsUnixMs = time.Now().UnixMilli()
	b, _ := json.Marshal(e)
	return p.BetWriter.WriteMessages(ctx, kafka.Message{Key: []byte(e.ChallengeID), Value: b})
}

func (p *KafkaPublisher) PublishChallengeFinalized(ctx context.Context, e events.ChallengeFinalized) error {
	if e.Ts.IsZero() {
		e.Ts = time.Now().UTC()
	}
	b, _ := json.Marshal(e)
	return p.FinalizedWriter.WriteMessages(ctx, kafka.Message{Key: []byte(e.ChallengeID), Value: b})
}
