package repository

import (
	"context"
	"ctf_arena/internal/domain/model"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// AttemptRepository is the append-only submission ledger. There is no
// update or delete: the full attempt history is the audit trail.
type AttemptRepository interface {
	Record(ctx context.Context, challenge, username, teamname, proposal string) (*model.Attempt, error)
	ListRecent(ctx context.Context, limit int) ([]model.Attempt, error)
	ListByTeam(ctx context.Context, teamname string) ([]model.Attempt, error)
	ListByChallenge(ctx context.Context, challenge string) ([]model.Attempt, error)
	ListByUser(ctx context.Context, username string) ([]model.Attempt, error)
}

type pgAttemptRepository struct {
	db *sql.DB
}

func NewPgAttemptRepository(db *sql.DB) AttemptRepository {
	return &pgAttemptRepository{db: db}
}

func (r *pgAttemptRepository) Record(ctx context.Context, challenge, username, teamname, proposal string) (*model.Attempt, error) {
	attempt := &model.Attempt{
		ID:        uuid.NewString(),
		Challenge: challenge,
		Username:  username,
		Teamname:  teamname,
		Proposal:  proposal,
	}
	query := `INSERT INTO attempts (id, challenge, username, teamname, proposal)
	          VALUES ($1, $2, $3, $4, $5) RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query, attempt.ID, attempt.Challenge, attempt.Username, attempt.Teamname, attempt.Proposal).
		Scan(&attempt.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("pgAttemptRepository.Record: %w", err)
	}
	return attempt, nil
}

func (r *pgAttemptRepository) ListRecent(ctx context.Context, limit int) ([]model.Attempt, error) {
	query := `SELECT id, challenge, username, teamname, proposal, created_at
	          FROM attempts ORDER BY created_at DESC LIMIT $1`
	return r.queryAttempts(ctx, "ListRecent", query, limit)
}

func (r *pgAttemptRepository) ListByTeam(ctx context.Context, teamname string) ([]model.Attempt, error) {
	query := `SELECT id, challenge, username, teamname, proposal, created_at
	          FROM attempts WHERE teamname = $1 ORDER BY created_at DESC`
	return r.queryAttempts(ctx, "ListByTeam", query, teamname)
}

func (r *pgAttemptRepository) ListByChallenge(ctx context.Context, challenge string) ([]model.Attempt, error) {
	query := `SELECT id, challenge, username, teamname, proposal, created_at
	          FROM attempts WHERE challenge = $1 ORDER BY created_at DESC`
	return r.queryAttempts(ctx, "ListByChallenge", query, challenge)
}

func (r *pgAttemptRepository) ListByUser(ctx context.Context, username string) ([]model.Attempt, error) {
	query := `SELECT id, challenge, username, teamname, proposal, created_at
	          FROM attempts WHERE username = $1 ORDER BY created_at DESC`
	return r.queryAttempts(ctx, "ListByUser", query, username)
}

func (r *pgAttemptRepository) queryAttempts(ctx context.Context, method, query string, args ...interface{}) ([]model.Attempt, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgAttemptRepository.%s query: %w", method, err)
	}
	defer rows.Close()

	attempts := []model.Attempt{}
	for rows.Next() {
		var a model.Attempt
		if err := rows.Scan(&a.ID, &a.Challenge, &a.Username, &a.Teamname, &a.Proposal, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgAttemptRepository.%s scan: %w", method, err)
		}
		attempts = append(attempts, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgAttemptRepository.%s rows.Err: %w", method, err)
	}
	return attempts, nil
}
