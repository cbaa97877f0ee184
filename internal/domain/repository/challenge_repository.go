package repository

import (
	"context"
	"ctf_arena/internal/common"
	"ctf_arena/internal/domain/model"
	"database/sql"
	"errors"
	"fmt"
)

type ChallengeRepository interface {
	Create(ctx context.Context, challenge *model.Challenge) error
	// FindByName returns the full row, secret fields included. Callers
	// outside the verification path must serialize the model, never the
	// raw columns.
	FindByName(ctx context.Context, name string) (*model.Challenge, error)
	List(ctx context.Context) ([]model.Challenge, error)
	Update(ctx context.Context, challenge *model.Challenge) error
	SetOpen(ctx context.Context, name string, open bool) error
	SetAllOpen(ctx context.Context, open bool) error
	SetBroken(ctx context.Context, name string, broken bool) error
	Delete(ctx context.Context, name string) error
}

type pgChallengeRepository struct {
	db *sql.DB
}

func NewPgChallengeRepository(db *sql.DB) ChallengeRepository {
	return &pgChallengeRepository{db: db}
}

func (r *pgChallengeRepository) Create(ctx context.Context, c *model.Challenge) error {
	query := `INSERT INTO challenges (name, description, img, author, category, difficulty, flag_hash, salt, is_open, is_broken)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.ExecContext(ctx, query, c.Name, c.Description, c.Img, c.Author, c.Category, c.Difficulty, c.FlagHash, c.Salt, c.IsOpen, c.IsBroken)
	if err != nil {
		if common.IsUniqueViolation(err) {
			return fmt.Errorf("challenge with this name already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgChallengeRepository.Create: %w", err)
	}
	return nil
}

func (r *pgChallengeRepository) FindByName(ctx context.Context, name string) (*model.Challenge, error) {
	query := `SELECT name, description, img, author, category, difficulty, flag_hash, salt, is_open, is_broken, created_at, updated_at
	          FROM challenges WHERE name = $1`
	c := &model.Challenge{}
	err := r.db.QueryRowContext(ctx, query, name).Scan(
		&c.Name, &c.Description, &c.Img, &c.Author, &c.Category, &c.Difficulty,
		&c.FlagHash, &c.Salt, &c.IsOpen, &c.IsBroken, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrChallengeNotFound
		}
		return nil, fmt.Errorf("pgChallengeRepository.FindByName: %w", err)
	}
	return c, nil
}

func (r *pgChallengeRepository) List(ctx context.Context) ([]model.Challenge, error) {
	query := `SELECT name, description, img, author, category, difficulty, flag_hash, salt, is_open, is_broken, created_at, updated_at
	          FROM challenges ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgChallengeRepository.List query: %w", err)
	}
	defer rows.Close()

	challenges := []model.Challenge{}
	for rows.Next() {
		var c model.Challenge
		if err := rows.Scan(&c.Name, &c.Description, &c.Img, &c.Author, &c.Category, &c.Difficulty,
			&c.FlagHash, &c.Salt, &c.IsOpen, &c.IsBroken, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("pgChallengeRepository.List scan: %w", err)
		}
		challenges = append(challenges, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgChallengeRepository.List rows.Err: %w", err)
	}
	return challenges, nil
}

func (r *pgChallengeRepository) Update(ctx context.Context, c *model.Challenge) error {
	query := `UPDATE challenges SET
	            description = $1, img = $2, author = $3, category = $4, difficulty = $5,
	            flag_hash = $6, is_open = $7, is_broken = $8, updated_at = CURRENT_TIMESTAMP
	          WHERE name = $9`
	result, err := r.db.ExecContext(ctx, query, c.Description, c.Img, c.Author, c.Category, c.Difficulty, c.FlagHash, c.IsOpen, c.IsBroken, c.Name)
	if err != nil {
		return fmt.Errorf("pgChallengeRepository.Update: %w", err)
	}
	return r.checkAffected(result)
}

func (r *pgChallengeRepository) SetOpen(ctx context.Context, name string, open bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE challenges SET is_open = $1, updated_at = CURRENT_TIMESTAMP WHERE name = $2`, open, name)
	if err != nil {
		return fmt.Errorf("pgChallengeRepository.SetOpen: %w", err)
	}
	return r.checkAffected(result)
}

func (r *pgChallengeRepository) SetAllOpen(ctx context.Context, open bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE challenges SET is_open = $1, updated_at = CURRENT_TIMESTAMP`, open)
	if err != nil {
		return fmt.Errorf("pgChallengeRepository.SetAllOpen: %w", err)
	}
	return nil
}

func (r *pgChallengeRepository) SetBroken(ctx context.Context, name string, broken bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE challenges SET is_broken = $1, updated_at = CURRENT_TIMESTAMP WHERE name = $2`, broken, name)
	if err != nil {
		return fmt.Errorf("pgChallengeRepository.SetBroken: %w", err)
	}
	return r.checkAffected(result)
}

// Delete removes the challenge only. Attempts and achievements that
// reference the name stay behind as historical record.
func (r *pgChallengeRepository) Delete(ctx context.Context, name string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM challenges WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("pgChallengeRepository.Delete: %w", err)
	}
	return r.checkAffected(result)
}

func (r *pgChallengeRepository) checkAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgChallengeRepository rows affected: %w", err)
	}
	if affected == 0 {
		return common.ErrChallengeNotFound
	}
	return nil
}
