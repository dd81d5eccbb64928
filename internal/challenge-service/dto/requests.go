package dto

type CreateChallengeRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	MediaRef    string `json:"mediaRef,omitempty"` // URL opaca opcional
}

type PlaceBetRequest struct {
	// ponteiro para distinguir "false" de campo ausente
	Prediction *bool `json:"prediction"`
}

type FinalizeChallengeRequest struct {
	Outcome string `json:"outcome"` // "COMPLETED" | "FAILED"
}
