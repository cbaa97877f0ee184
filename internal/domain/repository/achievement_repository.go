package repository

import (
	"context"
	"ctf_arena/internal/common"
	"ctf_arena/internal/domain/model"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type AchievementRepository interface {
	// Grant inserts the first achievement for (challenge, teamname). If
	// one already exists it is returned as-is: first-writer-wins with
	// idempotent re-grant, safe under concurrent submissions because the
	// insert is protected by a unique index, not a check-then-insert.
	Grant(ctx context.Context, challenge, teamname, username string) (*model.Achievement, error)
	List(ctx context.Context) ([]model.Achievement, error)
	ListByTeam(ctx context.Context, teamname string) ([]model.Achievement, error)
	ListByChallenge(ctx context.Context, challenge string) ([]model.Achievement, error)
	ListByUser(ctx context.Context, username string) ([]model.Achievement, error)
	Revoke(ctx context.Context, teamname, challenge string) (*model.Achievement, error)
	RevokeAllForTeam(ctx context.Context, teamname string) error
}

type pgAchievementRepository struct {
	db *sql.DB
}

func NewPgAchievementRepository(db *sql.DB) AchievementRepository {
	return &pgAchievementRepository{db: db}
}

func (r *pgAchievementRepository) Grant(ctx context.Context, challenge, teamname, username string) (*model.Achievement, error) {
	achievement := &model.Achievement{
		ID:        uuid.NewString(),
		Challenge: challenge,
		Teamname:  teamname,
		Username:  username,
	}
	query := `INSERT INTO achievements (id, challenge, teamname, username)
	          VALUES ($1, $2, $3, $4) RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query, achievement.ID, achievement.Challenge, achievement.Teamname, achievement.Username).
		Scan(&achievement.CreatedAt)
	if err == nil {
		return achievement, nil
	}
	if !common.IsUniqueViolation(err) {
		return nil, fmt.Errorf("pgAchievementRepository.Grant: %w", err)
	}

	// Lost the race (or a re-grant): the first writer's row stands.
	existing, err := r.findOne(ctx, teamname, challenge)
	if err != nil {
		return nil, fmt.Errorf("pgAchievementRepository.Grant refetch: %w", err)
	}
	return existing, nil
}

func (r *pgAchievementRepository) findOne(ctx context.Context, teamname, challenge string) (*model.Achievement, error) {
	query := `SELECT id, challenge, teamname, username, created_at
	          FROM achievements WHERE teamname = $1 AND challenge = $2`
	a := &model.Achievement{}
	err := r.db.QueryRowContext(ctx, query, teamname, challenge).
		Scan(&a.ID, &a.Challenge, &a.Teamname, &a.Username, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *pgAchievementRepository) List(ctx context.Context) ([]model.Achievement, error) {
	query := `SELECT id, challenge, teamname, username, created_at
	          FROM achievements ORDER BY created_at DESC`
	return r.queryAchievements(ctx, "List", query)
}

func (r *pgAchievementRepository) ListByTeam(ctx context.Context, teamname string) ([]model.Achievement, error) {
	query := `SELECT id, challenge, teamname, username, created_at
	          FROM achievements WHERE teamname = $1 ORDER BY created_at DESC`
	return r.queryAchievements(ctx, "ListByTeam", query, teamname)
}

func (r *pgAchievementRepository) ListByChallenge(ctx context.Context, challenge string) ([]model.Achievement, error) {
	query := `SELECT id, challenge, teamname, username, created_at
	          FROM achievements WHERE challenge = $1 ORDER BY created_at DESC`
	return r.queryAchievements(ctx, "ListByChallenge", query, challenge)
}

func (r *pgAchievementRepository) ListByUser(ctx context.Context, username string) ([]model.Achievement, error) {
	query := `SELECT id, challenge, teamname, username, created_at
	          FROM achievements WHERE username = $1 ORDER BY created_at DESC`
	return r.queryAchievements(ctx, "ListByUser", query, username)
}

// Revoke removes the achievement and returns it, or ErrNotFound if the
// team never solved the challenge.
func (r *pgAchievementRepository) Revoke(ctx context.Context, teamname, challenge string) (*model.Achievement, error) {
	query := `DELETE FROM achievements WHERE teamname = $1 AND challenge = $2
	          RETURNING id, challenge, teamname, username, created_at`
	a := &model.Achievement{}
	err := r.db.QueryRowContext(ctx, query, teamname, challenge).
		Scan(&a.ID, &a.Challenge, &a.Teamname, &a.Username, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgAchievementRepository.Revoke: %w", err)
	}
	return a, nil
}

func (r *pgAchievementRepository) RevokeAllForTeam(ctx context.Context, teamname string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM achievements WHERE teamname = $1`, teamname)
	if err != nil {
		return fmt.Errorf("pgAchievementRepository.RevokeAllForTeam: %w", err)
	}
	return nil
}

func (r *pgAchievementRepository) queryAchievements(ctx context.Context, method, query string, args ...interface{}) ([]model.Achievement, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgAchievementRepository.%s query: %w", method, err)
	}
	defer rows.Close()

	achievements := []model.Achievement{}
	for rows.Next() {
		var a model.Achievement
		if err := rows.Scan(&a.ID, &a.Challenge, &a.Teamname, &a.Username, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgAchievementRepository.%s scan: %w", method, err)
		}
		achievements = append(achievements, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgAchievementRepository.%s rows.Err: %w", method, err)
	}
	return achievements, nil
}
