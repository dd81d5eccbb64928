package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/tarnu/challenge-bets/internal/challenge-service/domain"
	"github.com/tarnu/challenge-bets/internal/challenge-service/repo"
)

func newTestService() *Service {
	return New(zap.NewNop(), repo.NewMemory(), nil, nil)
}

func TestChallengeLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	c, err := svc.CreateChallenge(ctx, "u1", "Run a marathon", "42km before December", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.Status != domain.StatusOpen {
		t.Fatalf("expected OPEN, got %s", c.Status)
	}
	if c.ID == "" || c.CreatedAt.IsZero() {
		t.Fatalf("missing id or createdAt: %+v", c)
	}

	if _, err := svc.PlaceBet(ctx, c.ID, "u2", true); err != nil {
		t.Fatalf("first bet: %v", err)
	}
	if _, err := svc.PlaceBet(ctx, c.ID, "u2", false); !errors.Is(err, domain.ErrDuplicateBet) {
		t.Fatalf("expected ErrDuplicateBet, got %v", err)
	}

	final, err := svc.FinalizeChallenge(ctx, c.ID, "u1", domain.StatusCompleted)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if final.Status != domain.StatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", final.Status)
	}

	if _, err := svc.PlaceBet(ctx, c.ID, "u3", true); !errors.Is(err, domain.ErrChallengeClosed) {
		t.Fatalf("expected ErrChallengeClosed after finalize, got %v", err)
	}

	tally, err := svc.Tally(ctx, c.ID)
	if err != nil {
		t.Fatalf("tally: %v", err)
	}
	if tally.SuccessCount != 1 || tally.FailureCount != 0 {
		t.Fatalf("expected tally (1,0), got (%d,%d)", tally.SuccessCount, tally.FailureCount)
	}
}

func TestCreateChallengeValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	cases := []struct {
		name, creator, title, desc string
		want                       error
	}{
		{"empty title", "u1", "", "desc", domain.ErrValidation},
		{"blank title", "u1", "   ", "desc", domain.ErrValidation},
		{"empty description", "u1", "title", "", domain.ErrValidation},
		{"no creator", "", "title", "desc", domain.ErrUnauthenticated},
	}
	for _, tc := range cases {
		if _, err := svc.CreateChallenge(ctx, tc.creator, tc.title, tc.desc, ""); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}

	// nenhuma criação inválida pode ter persistido registro
	cs, err := svc.ListChallenges(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(cs) != 0 {
		t.Fatalf("expected no persisted challenges, got %d", len(cs))
	}
}

func TestMediaRefStaysEmpty(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	c, err := svc.CreateChallenge(ctx, "u1", "title", "desc", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.MediaRef != "" {
		t.Fatalf("expected empty mediaRef to stay empty, got %q", c.MediaRef)
	}
}

func TestPlaceBetPreconditionOrder(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	// identidade é verificada antes da existência do desafio
	if _, err := svc.PlaceBet(ctx, "missing", "", true); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if _, err := svc.PlaceBet(ctx, "missing", "u2", true); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFinalizeAuthorization(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	c, err := svc.CreateChallenge(ctx, "u1", "title", "desc", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.FinalizeChallenge(ctx, c.ID, "u2", domain.StatusCompleted); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	// status permanece OPEN após a tentativa do não-criador
	got, err := svc.GetChallenge(ctx, c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.StatusOpen {
		t.Fatalf("status changed by unauthorized finalize: %s", got.Status)
	}
}

func TestFinalizeEdgeCases(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	if _, err := svc.FinalizeChallenge(ctx, "missing", "u1", domain.StatusFailed); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	c, err := svc.CreateChallenge(ctx, "u1", "title", "desc", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.FinalizeChallenge(ctx, c.ID, "u1", domain.StatusOpen); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for non-terminal outcome, got %v", err)
	}

	if _, err := svc.FinalizeChallenge(ctx, c.ID, "u1", domain.StatusFailed); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if _, err := svc.FinalizeChallenge(ctx, c.ID, "u1", domain.StatusCompleted); !errors.Is(err, domain.ErrAlreadyFinalized) {
		t.Fatalf("expected ErrAlreadyFinalized, got %v", err)
	}

	// transição terminal nunca cruza para o outro estado terminal
	got, _ := svc.GetChallenge(ctx, c.ID)
	if got.Status != domain.StatusFailed {
		t.Fatalf("terminal state changed: %s", got.Status)
	}
}

func TestTally(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	if _, err := svc.Tally(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	c, _ := svc.CreateChallenge(ctx, "u1", "title", "desc", "")

	tally, err := svc.Tally(ctx, c.ID)
	if err != nil {
		t.Fatalf("tally: %v", err)
	}
	if tally.SuccessCount != 0 || tally.FailureCount != 0 {
		t.Fatalf("fresh challenge tally must be (0,0), got (%d,%d)", tally.SuccessCount, tally.FailureCount)
	}

	for i, p := range []bool{true, true, false} {
		if _, err := svc.PlaceBet(ctx, c.ID, string(rune('a'+i)), p); err != nil {
			t.Fatalf("bet %d: %v", i, err)
		}
	}
	tally, _ = svc.Tally(ctx, c.ID)
	if tally.SuccessCount != 2 || tally.FailureCount != 1 {
		t.Fatalf("expected tally (2,1), got (%d,%d)", tally.SuccessCount, tally.FailureCount)
	}
}

func TestUserBet(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	c, _ := svc.CreateChallenge(ctx, "u1", "title", "desc", "")

	if _, err := svc.UserBet(ctx, c.ID, ""); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}

	b, err := svc.UserBet(ctx, c.ID, "u2")
	if err != nil {
		t.Fatalf("user bet: %v", err)
	}
	if b != nil {
		t.Fatalf("expected nil bet before betting, got %+v", b)
	}

	placed, _ := svc.PlaceBet(ctx, c.ID, "u2", false)
	b, err = svc.UserBet(ctx, c.ID, "u2")
	if err != nil {
		t.Fatalf("user bet: %v", err)
	}
	if b == nil || b.ID != placed.ID || b.Prediction != false {
		t.Fatalf("unexpected bet: %+v", b)
	}
}

func TestConcurrentDuplicateBets(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	c, _ := svc.CreateChallenge(ctx, "u1", "title", "desc", "")

	const n = 32
	var wg sync.WaitGroup
	results := make([]error, n)
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.PlaceBet(ctx, c.ID, "u2", true)
		}(i)
	}
	wg.Wait()

	var ok, dup int
	for _, err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrDuplicateBet):
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || dup != n-1 {
		t.Fatalf("expected exactly 1 accepted bet, got %d accepted / %d duplicates", ok, dup)
	}

	tally, _ := svc.Tally(ctx, c.ID)
	if tally.SuccessCount != 1 {
		t.Fatalf("tally disagrees with accepted bets: %+v", tally)
	}
}

func TestConcurrentBetAndFinalize(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	c, _ := svc.CreateChallenge(ctx, "u1", "title", "desc", "")

	const bettors = 16
	var wg sync.WaitGroup
	betErrs := make([]error, bettors)

	wg.Add(bettors + 1)
	for i := 0; i < bettors; i++ {
		go func(i int) {
			defer wg.Done()
			_, betErrs[i] = svc.PlaceBet(ctx, c.ID, string(rune('a'+i)), i%2 == 0)
		}(i)
	}
	go func() {
		defer wg.Done()
		if _, err := svc.FinalizeChallenge(ctx, c.ID, "u1", domain.StatusCompleted); err != nil {
			t.Errorf("finalize: %v", err)
		}
	}()
	wg.Wait()

	// cada aposta ou foi aceita antes da transição ficar visível, ou rejeitada
	var accepted int64
	for _, err := range betErrs {
		switch {
		case err == nil:
			accepted++
		case errors.Is(err, domain.ErrChallengeClosed):
		default:
			t.Fatalf("unexpected bet error: %v", err)
		}
	}

	tally, _ := svc.Tally(ctx, c.ID)
	if tally.SuccessCount+tally.FailureCount != accepted {
		t.Fatalf("tally total %d != accepted bets %d", tally.SuccessCount+tally.FailureCount, accepted)
	}

	got, _ := svc.GetChallenge(ctx, c.ID)
	if got.Status != domain.StatusCompleted {
		t.Fatalf("finalize lost: status=%s", got.Status)
	}
}

// untouchableStore falha o teste se qualquer operação chegar ao Store:
// ids fora do formato UUID devem virar not found antes da persistência
// (no Postgres a coluna id é UUID e o driver devolveria erro de sintaxe)
type untouchableStore struct{ t *testing.T }

func (u *untouchableStore) fail() { u.t.Error("store reached with malformed id") }

func (u *untouchableStore) InsertChallenge(context.Context, *domain.Challenge) error {
	u.fail()
	return nil
}
func (u *untouchableStore) GetChallenge(context.Context, string) (*domain.Challenge, error) {
	u.fail()
	return nil, domain.ErrNotFound
}
func (u *untouchableStore) ListChallenges(context.Context) ([]domain.Challenge, error) {
	u.fail()
	return nil, nil
}
func (u *untouchableStore) InsertBet(context.Context, *domain.Bet) error {
	u.fail()
	return nil
}
func (u *untouchableStore) FinalizeChallenge(context.Context, string, domain.ChallengeStatus) (*domain.Challenge, error) {
	u.fail()
	return nil, domain.ErrNotFound
}
func (u *untouchableStore) Tally(context.Context, string) (domain.TallyResult, error) {
	u.fail()
	return domain.TallyResult{}, nil
}
func (u *untouchableStore) UserBet(context.Context, string, string) (*domain.Bet, error) {
	u.fail()
	return nil, nil
}

func TestMalformedChallengeIDIsNotFound(t *testing.T) {
	ctx := context.Background()
	svc := New(zap.NewNop(), &untouchableStore{t: t}, nil, nil)

	const bad = "not-a-uuid"
	if _, err := svc.GetChallenge(ctx, bad); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("get: expected ErrNotFound, got %v", err)
	}
	if _, err := svc.PlaceBet(ctx, bad, "u2", true); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("bet: expected ErrNotFound, got %v", err)
	}
	if _, err := svc.FinalizeChallenge(ctx, bad, "u1", domain.StatusCompleted); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("finalize: expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Tally(ctx, bad); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("tally: expected ErrNotFound, got %v", err)
	}
	if _, err := svc.UserBet(ctx, bad, "u2"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("userBet: expected ErrNotFound, got %v", err)
	}
}
