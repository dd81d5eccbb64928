package domain

import "time"

// Resultado de liquidação de uma aposta
// PENDING até o desafio ser finalizado e o worker liquidar
type BetResult string

const (
	ResultPending BetResult = "PENDING"
	ResultWon     BetResult = "WON"
	ResultLost    BetResult = "LOST"
)

// Bet é a predição de um usuário sobre o resultado de um desafio
// Imutável após a criação: não existe edição nem retirada
// Invariante: no máximo uma aposta por par (challenge_id, bettor_id)
type Bet struct {
	ID          string
	ChallengeID string
	BettorID    string
	Prediction  bool // true = o desafio será cumprido
	Result      BetResult
	CreatedAt   time.Time
}
