package repository

import (
	"context"
	"ctf_arena/internal/domain/model"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

type RewardRepository interface {
	Grant(ctx context.Context, teamname, label string, points int) (*model.Reward, error)
	ListByTeam(ctx context.Context, teamname string) ([]model.Reward, error)
	List(ctx context.Context) ([]model.Reward, error)
}

type pgRewardRepository struct {
	db *sql.DB
}

func NewPgRewardRepository(db *sql.DB) RewardRepository {
	return &pgRewardRepository{db: db}
}

func (r *pgRewardRepository) Grant(ctx context.Context, teamname, label string, points int) (*model.Reward, error) {
	reward := &model.Reward{
		ID:       uuid.NewString(),
		Teamname: teamname,
		Label:    label,
		Points:   points,
	}
	query := `INSERT INTO rewards (id, teamname, label, points)
	          VALUES ($1, $2, $3, $4) RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query, reward.ID, reward.Teamname, reward.Label, reward.Points).
		Scan(&reward.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("pgRewardRepository.Grant: %w", err)
	}
	return reward, nil
}

func (r *pgRewardRepository) ListByTeam(ctx context.Context, teamname string) ([]model.Reward, error) {
	query := `SELECT id, teamname, label, points, created_at
	          FROM rewards WHERE teamname = $1 ORDER BY created_at DESC`
	return r.queryRewards(ctx, "ListByTeam", query, teamname)
}

func (r *pgRewardRepository) List(ctx context.Context) ([]model.Reward, error) {
	query := `SELECT id, teamname, label, points, created_at
	          FROM rewards ORDER BY created_at DESC`
	return r.queryRewards(ctx, "List", query)
}

func (r *pgRewardRepository) queryRewards(ctx context.Context, method, query string, args ...interface{}) ([]model.Reward, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgRewardRepository.%s query: %w", method, err)
	}
	defer rows.Close()

	rewards := []model.Reward{}
	for rows.Next() {
		var reward model.Reward
		if err := rows.Scan(&reward.ID, &reward.Teamname, &reward.Label, &reward.Points, &reward.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgRewardRepository.%s scan: %w", method, err)
		}
		rewards = append(rewards, reward)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgRewardRepository.%s rows.Err: %w", method, err)
	}
	return rewards, nil
}
