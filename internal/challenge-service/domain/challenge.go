package domain

import "time"

// Status do ciclo de vida de um desafio
// OPEN é o estado inicial; COMPLETED e FAILED são terminais
type ChallengeStatus string

const (
	StatusOpen      ChallengeStatus = "OPEN"
	StatusCompleted ChallengeStatus = "COMPLETED"
	StatusFailed    ChallengeStatus = "FAILED"
)

// Terminal indica se o status não admite mais transições
func (s ChallengeStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// ParseOutcome valida o resultado declarado pelo criador
// Apenas COMPLETED e FAILED são resultados válidos de finalização
func ParseOutcome(raw string) (ChallengeStatus, bool) {
	switch ChallengeStatus(raw) {
	case StatusCompleted:
		return StatusCompleted, true
	case StatusFailed:
		return StatusFailed, true
	}
	return "", false
}

// Challenge é um desafio postado por um usuário, com resultado binário futuro
type Challenge struct {
	ID          string
	CreatorID   string
	Title       string
	Description string
	MediaRef    string // URL opaca opcional; vazio permanece vazio
	Status      ChallengeStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TallyResult agrega as apostas de um desafio por valor de predição
type TallyResult struct {
	SuccessCount int64 `json:"successCount"`
	FailureCount int64 `json:"failureCount"`
}
