package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tarnu/challenge-bets/internal/challenge-service/domain"
)

// Memory implementa o mesmo contrato do repositório Postgres em memória
// Usado no ambiente local (STORAGE_DRIVER=memory) e nos testes
// Um único mutex cobre os dois mapas: o check-then-write de aposta e o
// compare-and-swap de finalização ficam atômicos da mesma forma que na
// transação do Postgres
type Memory struct {
	mu         sync.Mutex
	challenges map[string]*domain.Challenge
	bets       map[string]*domain.Bet // betID -> bet
	byPair     map[string]string      // challengeID+"/"+bettorID -> betID
}

func NewMemory() *Memory {
	return &Memory{
		challenges: make(map[string]*domain.Challenge),
		bets:       make(map[string]*domain.Bet),
		byPair:     make(map[string]string),
	}
}

func pairKey(challengeID, bettorID string) string { return challengeID + "/" + bettorID }

func (m *Memory) InsertChallenge(_ context.Context, c *domain.Challenge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.challenges[c.ID] = &cp
	return nil
}

func (m *Memory) GetChallenge(_ context.Context, id string) (*domain.Challenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.challenges[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *Memory) ListChallenges(_ context.Context) ([]domain.Challenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Challenge, 0, len(m.challenges))
	for _, c := range m.challenges {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) InsertBet(_ context.Context, b *domain.Bet) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.challenges[b.ChallengeID]
	if !ok {
		return domain.ErrNotFound
	}
	if c.Status != domain.StatusOpen {
		return domain.ErrChallengeClosed
	}
	key := pairKey(b.ChallengeID, b.BettorID)
	if _, exists := m.byPair[key]; exists {
		return domain.ErrDuplicateBet
	}

	cp := *b
	m.bets[b.ID] = &cp
	m.byPair[key] = b.ID
	return nil
}

func (m *Memory) FinalizeChallenge(_ context.Context, id string, outcome domain.ChallengeStatus) (*domain.Challenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.challenges[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if c.Status != domain.StatusOpen {
		return nil, domain.ErrAlreadyFinalized
	}
	c.Status = outcome
	c.UpdatedAt = time.Now().UTC()
	cp := *c
	return &cp, nil
}

func (m *Memory) Tally(_ context.Context, challengeID string) (domain.TallyResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var t domain.TallyResult
	if _, ok := m.challenges[challengeID]; !ok {
		return t, domain.ErrNotFound
	}
	for _, b := range m.bets {
		if b.ChallengeID != challengeID {
			continue
		}
		if b.Prediction {
			t.SuccessCount++
		} else {
			t.FailureCount++
		}
	}
	return t, nil
}

func (m *Memory) UserBet(_ context.Context, challengeID, userID string) (*domain.Bet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byPair[pairKey(challengeID, userID)]
	if !ok {
		return nil, nil
	}
	cp := *m.bets[id]
	return &cp, nil
}

func (m *Memory) BetsForChallenge(_ context.Context, challengeID string) ([]domain.Bet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.Bet
	for _, b := range m.bets {
		if b.ChallengeID == challengeID {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) SetBetResult(_ context.Context, betID string, result domain.BetResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bets[betID]
	if !ok {
		return nil
	}
	if b.Result != domain.ResultPending {
		return nil
	}
	b.Result = result
	return nil
}
