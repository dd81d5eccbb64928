package domain

import "errors"

var (
	ErrValidation       = errors.New("invalid input")
	ErrUnauthenticated  = errors.New("authentication required")
	ErrUnauthorized     = errors.New("only the creator may finalize a challenge")
	ErrNotFound         = errors.New("challenge not found")
	ErrChallengeClosed  = errors.New("challenge no longer accepts bets")
	ErrAlreadyFinalized = errors.New("challenge already finalized")
	ErrDuplicateBet     = errors.New("user already placed a bet on this challenge")
)
