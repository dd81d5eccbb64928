package dto

import (
	"time"

	"github.com/tarnu/challenge-bets/internal/challenge-service/domain"
)

type ChallengeResponse struct {
	ID          string    `json:"id"`
	CreatorID   string    `json:"creatorId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	MediaRef    string    `json:"mediaRef,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type BetResponse struct {
	ID          string    `json:"id"`
	ChallengeID string    `json:"challengeId"`
	BettorID    string    `json:"bettorId"`
	Prediction  bool      `json:"prediction"`
	Result      string    `json:"result"`
	CreatedAt   time.Time `json:"createdAt"`
}

type TallyResponse struct {
	ChallengeID  string `json:"challengeId"`
	SuccessCount int64  `json:"successCount"`
	FailureCount int64  `json:"failureCount"`
}

func FromChallenge(c *domain.Challenge) ChallengeResponse {
	return ChallengeResponse{
		ID:          c.ID,
		CreatorID:   c.CreatorID,
		Title:       c.Title,
		Description: c.Description,
		MediaRef:    c.MediaRef,
		Status:      string(c.Status),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func FromBet(b *domain.Bet) BetResponse {
	return BetResponse{
		ID:          b.ID,
		ChallengeID: b.ChallengeID,
		BettorID:    b.BettorID,
		Prediction:  b.Prediction,
		Result:      string(b.Result),
		CreatedAt:   b.CreatedAt,
	}
}
