package dto

// ChallengeSummary é a projeção de leitura de um desafio no feed
type ChallengeSummary struct {
	ID        string `json:"id"`
	CreatorID string `json:"creatorId"`
	Title     string `json:"title"`
	MediaRef  string `json:"mediaRef,omitempty"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
}

// ChallengeDetail inclui a descrição completa
type ChallengeDetail struct {
	ChallengeSummary
	Description string `json:"description"`
	UpdatedAt   string `json:"updatedAt"`
}

// Tally agrega as apostas de um desafio por predição
type Tally struct {
	ChallengeID  string `json:"challengeId"`
	SuccessCount int64  `json:"successCount"`
	FailureCount int64  `json:"failureCount"`
}
