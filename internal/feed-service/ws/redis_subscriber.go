package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"
)

// PubSubChannel define o canal Redis Pub/Sub alimentado pelo challenge-service
const PubSubChannel = "challenge_updates_broadcast"

// StartRedisSubscriber inicia uma goroutine que escuta o canal Redis Pub/Sub
// e repassa as atualizações de ciclo de vida para os clientes WebSocket
// conectados via Hub
//
// Funcionamento:
// - Recebe mensagens JSON do canal Redis
// - Desserializa para ChallengeUpdate
// - Chama hub.Broadcast para enviar aos clientes inscritos no desafio
func StartRedisSubscriber(ctx context.Context, r *redis.Client, channel string, hub *Hub) {
	if channel == "" {
		channel = PubSubChannel
	}
	sub := r.Subscribe(ctx, channel)
	ch := sub.Channel()
	go func() {
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close() // encerra a inscrição ao finalizar o contexto
				return
			case msg := <-ch:
				if msg == nil {
					continue
				}
				var upd ChallengeUpdate
				if err := json.Unmarshal([]byte(msg.Payload), &upd); err != nil {
					log.Printf("ws subscriber unmarshal error: %v", err)
					continue
				}
				hub.Broadcast(upd) // envia a atualização aos clientes inscritos
			}
		}
	}()
}
