package topics

const (
	// Challenges
	ChallengeCreated   = "challenge_created"
	ChallengeFinalized = "challenge_finalized"

	// Bets
	BetPlaced  = "bet_placed"
	BetSettled = "bet_settled"

	// DLQs
	ChallengeFinalizedDLQ = "challenge_finalized_dlq"
)
