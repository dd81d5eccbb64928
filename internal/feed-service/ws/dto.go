package ws

// ClientMsg representa uma mensagem recebida do cliente WebSocket
// Type: subscribe | unsubscribe | ping
// ChallengeID: obrigatório para subscribe/unsubscribe
type ClientMsg struct {
	Type        string `json:"type"`        // subscribe | unsubscribe | ping
	ChallengeID string `json:"challengeId"` // requerido em subscribe/unsubscribe
}

// ChallengeUpdate representa uma atualização de ciclo de vida enviada aos
// clientes inscritos no desafio correspondente
type ChallengeUpdate struct {
	ChallengeID string      `json:"challengeId"`
	Type        string      `json:"type"` // challenge_created | bet_placed | challenge_finalized
	Payload     interface{} `json:"payload"`
}
