package events

type BetPlaced struct {
	BetID       string `json:"bet_id"`
	ChallengeID string `json:"challenge_id"`
	BettorID    string `json:"bettor_id"`
	Prediction  bool   `json:"prediction"` // true = aposta no sucesso do desafio
	TsUnixMs    int64  `json:"ts_unix_ms"`
}
