package repo

import (
	"context"
	"database/sql"

	"github.com/tarnu/challenge-bets/internal/feed-service/dto"
)

// ReadRepo expõe as consultas de leitura do feed (sem escrita)
type ReadRepo struct {
	DB *sql.DB
}

func (r *ReadRepo) ListChallenges(ctx context.Context) ([]dto.ChallengeSummary, error) {
	const q = `
		SELECT id, creator_id, title, media_ref, status,
		       to_char(created_at, 'YYYY-MM-DD"T"HH24:MI:SSZ')
		FROM challenges
		ORDER BY created_at DESC;
	`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []dto.ChallengeSummary
	for rows.Next() {
		var c dto.ChallengeSummary
		if err := rows.Scan(&c.ID, &c.CreatorID, &c.Title, &c.MediaRef, &c.Status, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *ReadRepo) GetChallenge(ctx context.Context, id string) (*dto.ChallengeDetail, error) {
	const q = `
		SELECT id, creator_id, title, description, media_ref, status,
		       to_char(created_at, 'YYYY-MM-DD"T"HH24:MI:SSZ'),
		       to_char(updated_at, 'YYYY-MM-DD"T"HH24:MI:SSZ')
		FROM challenges
		WHERE id = $1;
	`
	var c dto.ChallengeDetail
	err := r.DB.QueryRowContext(ctx, q, id).Scan(
		&c.ID, &c.CreatorID, &c.Title, &c.Description, &c.MediaRef, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ReadRepo) Tally(ctx context.Context, challengeID string) (dto.Tally, error) {
	const q = `
		SELECT
			COUNT(*) FILTER (WHERE prediction),
			COUNT(*) FILTER (WHERE NOT prediction)
		FROM bets
		WHERE challenge_id = $1;
	`
	t := dto.Tally{ChallengeID: challengeID}

	var exists bool
	if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM challenges WHERE id=$1)`, challengeID).Scan(&exists); err != nil {
		return t, err
	}
	if !exists {
		return t, sql.ErrNoRows
	}

	err := r.DB.QueryRowContext(ctx, q, challengeID).Scan(&t.SuccessCount, &t.FailureCount)
	return t, err
}
