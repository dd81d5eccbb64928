package repo

import (
	"context"
	"database/sql"

	"github.com/tarnu/challenge-bets/internal/challenge-service/domain"
)

// Postgres implementa a persistência de desafios e apostas em banco Postgres
type Postgres struct{ db *sql.DB }

// NewPostgres retorna uma instância do repositório
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// InsertChallenge persiste um novo desafio (status OPEN)
func (p *Postgres) InsertChallenge(ctx context.Context, c *domain.Challenge) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO challenges (id, creator_id, title, description, media_ref, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$7)`,
		c.ID, c.CreatorID, c.Title, c.Description, c.MediaRef, c.Status, c.CreatedAt,
	)
	return err
}

// GetChallenge busca um desafio pelo id
func (p *Postgres) GetChallenge(ctx context.Context, id string) (*domain.Challenge, error) {
	var c domain.Challenge
	err := p.db.QueryRowContext(ctx, `
		SELECT id, creator_id, title, description, media_ref, status, created_at, updated_at
		FROM challenges WHERE id=$1`, id,
	).Scan(&c.ID, &c.CreatorID, &c.Title, &c.Description, &c.MediaRef, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListChallenges retorna todos os desafios, mais recentes primeiro
func (p *Postgres) ListChallenges(ctx context.Context) ([]domain.Challenge, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, creator_id, title, description, media_ref, status, created_at, updated_at
		FROM challenges ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Challenge
	for rows.Next() {
		var c domain.Challenge
		if err := rows.Scan(&c.ID, &c.CreatorID, &c.Title, &c.Description, &c.MediaRef, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// InsertBet grava a aposta de forma atômica em relação ao fechamento do desafio
// e à unicidade por (challenge_id, bettor_id):
//   - FOR UPDATE na linha do desafio serializa contra FinalizeChallenge
//   - ON CONFLICT DO NOTHING resolve corridas de apostas idênticas (0 linhas = duplicada)
func (p *Postgres) InsertBet(ctx context.Context, b *domain.Bet) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var status domain.ChallengeStatus
	err = tx.QueryRowContext(ctx, `SELECT status FROM challenges WHERE id=$1 FOR UPDATE`, b.ChallengeID).Scan(&status)
	if err == sql.ErrNoRows {
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}
	if status != domain.StatusOpen {
		return domain.ErrChallengeClosed
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO bets (id, challenge_id, bettor_id, prediction, result, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (challenge_id, bettor_id) DO NOTHING`,
		b.ID, b.ChallengeID, b.BettorID, b.Prediction, b.Result, b.CreatedAt,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrDuplicateBet
	}

	return tx.Commit()
}

// FinalizeChallenge aplica a transição terminal via compare-and-swap no status
// Garante OPEN -> {COMPLETED, FAILED} exatamente uma vez por desafio
func (p *Postgres) FinalizeChallenge(ctx context.Context, id string, outcome domain.ChallengeStatus) (*domain.Challenge, error) {
	res, err := p.db.ExecContext(ctx, `
		UPDATE challenges SET status=$1, updated_at=NOW()
		WHERE id=$2 AND status=$3`,
		outcome, id, domain.StatusOpen,
	)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// distingue desconhecido de já finalizado
		if _, err := p.GetChallenge(ctx, id); err != nil {
			return nil, err
		}
		return nil, domain.ErrAlreadyFinalized
	}
	return p.GetChallenge(ctx, id)
}

// Tally conta apostas por valor de predição; (0,0) para desafio sem apostas
func (p *Postgres) Tally(ctx context.Context, challengeID string) (domain.TallyResult, error) {
	var t domain.TallyResult

	var exists bool
	if err := p.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM challenges WHERE id=$1)`, challengeID).Scan(&exists); err != nil {
		return t, err
	}
	if !exists {
		return t, domain.ErrNotFound
	}

	err := p.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE prediction),
			COUNT(*) FILTER (WHERE NOT prediction)
		FROM bets WHERE challenge_id=$1`, challengeID,
	).Scan(&t.SuccessCount, &t.FailureCount)
	return t, err
}

// UserBet retorna a aposta do usuário no desafio, ou nil se não houver
func (p *Postgres) UserBet(ctx context.Context, challengeID, userID string) (*domain.Bet, error) {
	var b domain.Bet
	err := p.db.QueryRowContext(ctx, `
		SELECT id, challenge_id, bettor_id, prediction, result, created_at
		FROM bets WHERE challenge_id=$1 AND bettor_id=$2`,
		challengeID, userID,
	).Scan(&b.ID, &b.ChallengeID, &b.BettorID, &b.Prediction, &b.Result, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// BetsForChallenge lista as apostas de um desafio (usado na liquidação)
func (p *Postgres) BetsForChallenge(ctx context.Context, challengeID string) ([]domain.Bet, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, challenge_id, bettor_id, prediction, result, created_at
		FROM bets WHERE challenge_id=$1 ORDER BY created_at`, challengeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Bet
	for rows.Next() {
		var b domain.Bet
		if err := rows.Scan(&b.ID, &b.ChallengeID, &b.BettorID, &b.Prediction, &b.Result, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// SetBetResult grava o resultado de liquidação de uma aposta
// Só transiciona a partir de PENDING; reentrega do evento não sobrescreve
func (p *Postgres) SetBetResult(ctx context.Context, betID string, result domain.BetResult) error {
	_, err := p.db.ExecContext(ctx, `UPDATE bets SET result=$1 WHERE id=$2 AND result=$3`,
		result, betID, domain.ResultPending)
	return err
}
