package events

import "time"

// Evento publicado pelo challenge-service quando o criador declara o resultado.
// Consumido pelo bet-settlement-worker para liquidar as apostas do desafio.
type ChallengeFinalized struct {
	ChallengeID string    `json:"challenge_id"`
	CreatorID   string    `json:"creator_id"`
	Outcome     string    `json:"outcome"` // "COMPLETED" | "FAILED"
	Ts          time.Time `json:"ts"`
}
