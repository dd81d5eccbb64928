package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tarnu/challenge-bets/internal/challenge-service/domain"
	"github.com/tarnu/challenge-bets/internal/challenge-service/feed"
	"github.com/tarnu/challenge-bets/pkg/contracts/events"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 4000
)

// ids de desafio são UUIDs gerados pelo próprio serviço; qualquer outro
// formato nunca existe no Store (e estouraria erro de sintaxe na coluna
// UUID do Postgres em vez de not found)
func knownIDFormat(id string) bool { return uuid.Validate(id) == nil }

// Store define as operações de persistência usadas pelo serviço de ciclo de vida
// As implementações garantem atomicidade do check-then-write por desafio
type Store interface {
	InsertChallenge(ctx context.Context, c *domain.Challenge) error
	GetChallenge(ctx context.Context, id string) (*domain.Challenge, error)
	ListChallenges(ctx context.Context) ([]domain.Challenge, error)
	InsertBet(ctx context.Context, b *domain.Bet) error
	FinalizeChallenge(ctx context.Context, id string, outcome domain.ChallengeStatus) (*domain.Challenge, error)
	Tally(ctx context.Context, challengeID string) (domain.TallyResult, error)
	UserBet(ctx context.Context, challengeID, userID string) (*domain.Bet, error)
}

// Publisher publica eventos de ciclo de vida no Kafka
type Publisher interface {
	PublishChallengeCreated(ctx context.Context, e events.ChallengeCreated) error
	PublishBetPlaced(ctx context.Context, e events.BetPlaced) error
	PublishChallengeFinalized(ctx context.Context, e events.ChallengeFinalized) error
}

// Broadcaster envia atualizações para o feed ao vivo (Redis Pub/Sub)
type Broadcaster interface {
	PublishUpdate(ctx context.Context, u feed.Update) error
}

// Service é o serviço de ciclo de vida de desafios e apostas
// Todas as invariantes são aplicadas aqui e no Store, nunca no cliente:
// quem pode apostar, quando, e como um desafio é finalizado
type Service struct {
	log   *zap.Logger
	store Store
	publ  Publisher
	bcast Broadcaster
}

func New(log *zap.Logger, store Store, publ Publisher, bcast Broadcaster) *Service {
	return &Service{log: log, store: store, publ: publ, bcast: bcast}
}

// CreateChallenge registra um novo desafio em estado OPEN
// Título e descrição são obrigatórios; media_ref vazio permanece vazio
func (s *Service) CreateChallenge(ctx context.Context, creatorID, title, description, mediaRef string) (*domain.Challenge, error) {
	if creatorID == "" {
		return nil, domain.ErrUnauthenticated
	}
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" || description == "" {
		return nil, domain.ErrValidation
	}
	if len(title) > maxTitleLen || len(description) > maxDescriptionLen {
		return nil, domain.ErrValidation
	}

	c := &domain.Challenge{
		ID:          uuid.NewString(),
		CreatorID:   creatorID,
		Title:       title,
		Description: description,
		MediaRef:    strings.TrimSpace(mediaRef),
		Status:      domain.StatusOpen,
		CreatedAt:   time.Now().UTC(),
	}
	c.UpdatedAt = c.CreatedAt

	if err := s.store.InsertChallenge(ctx, c); err != nil {
		return nil, err
	}

	s.publish(ctx, "challenge_created", func(ctx context.Context) error {
		return s.publ.PublishChallengeCreated(ctx, events.ChallengeCreated{
			ChallengeID: c.ID,
			CreatorID:   c.CreatorID,
			Title:       c.Title,
			MediaRef:    c.MediaRef,
		})
	})
	s.broadcast(ctx, feed.Update{ChallengeID: c.ID, Type: feed.TypeChallengeCreated, Payload: c})

	return c, nil
}

// PlaceBet registra a predição de um usuário sobre um desafio aberto
// Pré-condições, nesta ordem: autenticado, desafio existe, desafio aberto,
// nenhuma aposta anterior do usuário. As duas últimas são resolvidas
// atomicamente pelo Store
func (s *Service) PlaceBet(ctx context.Context, challengeID, bettorID string, prediction bool) (*domain.Bet, error) {
	if bettorID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if !knownIDFormat(challengeID) {
		return nil, domain.ErrNotFound
	}

	b := &domain.Bet{
		ID:          uuid.NewString(),
		ChallengeID: challengeID,
		BettorID:    bettorID,
		Prediction:  prediction,
		Result:      domain.ResultPending,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.store.InsertBet(ctx, b); err != nil {
		return nil, err
	}

	s.publish(ctx, "bet_placed", func(ctx context.Context) error {
		return s.publ.PublishBetPlaced(ctx, events.BetPlaced{
			BetID:       b.ID,
			ChallengeID: b.ChallengeID,
			BettorID:    b.BettorID,
			Prediction:  b.Prediction,
		})
	})
	s.broadcast(ctx, feed.Update{ChallengeID: challengeID, Type: feed.TypeBetPlaced, Payload: b})

	return b, nil
}

// FinalizeChallenge aplica a transição terminal declarada pelo criador
// A transição é irreversível: nenhuma aposta nem nova finalização é aceita depois
func (s *Service) FinalizeChallenge(ctx context.Context, challengeID, actingUserID string, outcome domain.ChallengeStatus) (*domain.Challenge, error) {
	if actingUserID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if !outcome.Terminal() {
		return nil, domain.ErrValidation
	}
	if !knownIDFormat(challengeID) {
		return nil, domain.ErrNotFound
	}

	c, err := s.store.GetChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if c.CreatorID != actingUserID {
		return nil, domain.ErrUnauthorized
	}

	// o CAS no Store decide corridas entre finalizações concorrentes
	final, err := s.store.FinalizeChallenge(ctx, challengeID, outcome)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, "challenge_finalized", func(ctx context.Context) error {
		return s.publ.PublishChallengeFinalized(ctx, events.ChallengeFinalized{
			ChallengeID: final.ID,
			CreatorID:   final.CreatorID,
			Outcome:     string(final.Status),
			Ts:          time.Now().UTC(),
		})
	})
	s.broadcast(ctx, feed.Update{ChallengeID: final.ID, Type: feed.TypeChallengeFinalized, Payload: final})

	return final, nil
}

// Tally conta as apostas do desafio por predição
func (s *Service) Tally(ctx context.Context, challengeID string) (domain.TallyResult, error) {
	if !knownIDFormat(challengeID) {
		return domain.TallyResult{}, domain.ErrNotFound
	}
	return s.store.Tally(ctx, challengeID)
}

// UserBet retorna a aposta do usuário no desafio, ou nil se ainda não apostou
func (s *Service) UserBet(ctx context.Context, challengeID, userID string) (*domain.Bet, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if !knownIDFormat(challengeID) {
		return nil, domain.ErrNotFound
	}
	if _, err := s.store.GetChallenge(ctx, challengeID); err != nil {
		return nil, err
	}
	return s.store.UserBet(ctx, challengeID, userID)
}

// GetChallenge busca um desafio pelo id
func (s *Service) GetChallenge(ctx context.Context, id string) (*domain.Challenge, error) {
	if !knownIDFormat(id) {
		return nil, domain.ErrNotFound
	}
	return s.store.GetChallenge(ctx, id)
}

// ListChallenges lista os desafios, mais recentes primeiro
func (s *Service) ListChallenges(ctx context.Context) ([]domain.Challenge, error) {
	return s.store.ListChallenges(ctx)
}

// publish emite o evento Kafka em melhor esforço: a escrita já commitada no
// Store é a fonte de verdade, falha de publicação só gera warn
func (s *Service) publish(ctx context.Context, name string, fn func(ctx context.Context) error) {
	if s.publ == nil {
		return
	}
	if err := fn(ctx); err != nil {
		s.log.Warn("event publish failed", zap.String("event", name), zap.Error(err))
	}
}

func (s *Service) broadcast(ctx context.Context, u feed.Update) {
	if s.bcast == nil {
		return
	}
	bctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 500*time.Millisecond)
	defer cancel()
	if err := s.bcast.PublishUpdate(bctx, u); err != nil {
		s.log.Warn("feed broadcast failed", zap.String("challengeId", u.ChallengeID), zap.Error(err))
	}
}
