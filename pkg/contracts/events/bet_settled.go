package events

import "time"

// Evento emitido pelo bet-settlement-worker após liquidar uma aposta.
type BetSettled struct {
	BetID       string    `json:"bet_id"`
	ChallengeID string    `json:"challenge_id"`
	BettorID    string    `json:"bettor_id"`
	Result      string    `json:"result"` // "WON" | "LOST"
	Ts          time.Time `json:"ts"`
}
