package feed

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// Canal Redis Pub/Sub usado para o feed ao vivo do feed-service
const ChannelChallengeBroadcast = "challenge_updates_broadcast"

// Tipos de atualização enviados ao feed
const (
	TypeChallengeCreated   = "challenge_created"
	TypeBetPlaced          = "bet_placed"
	TypeChallengeFinalized = "challenge_finalized"
)

// Update é o payload padrão consumido pelo hub WebSocket do feed-service
type Update struct {
	ChallengeID string      `json:"challengeId"`
	Type        string      `json:"type"`
	Payload     interface{} `json:"payload"`
}

type RedisBroadcaster struct {
	r       *redis.Client
	channel string
}

func NewRedisBroadcaster(r *redis.Client, channel string) *RedisBroadcaster {
	if channel == "" {
		channel = ChannelChallengeBroadcast
	}
	return &RedisBroadcaster{r: r, channel: channel}
}

func (b *RedisBroadcaster) PublishUpdate(ctx context.Context, u Update) error {
	payload, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return b.r.Publish(ctx, b.channel, payload).Err()
}
