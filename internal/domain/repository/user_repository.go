package repository

import (
	"context"
	"ctf_arena/internal/common"
	"ctf_arena/internal/domain/model"
	"database/sql"
	"errors"
	"fmt"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	// CountTeams returns the number of distinct registered competitor
	// teams, the total_teams operand of the dynamic score formula.
	CountTeams(ctx context.Context) (int, error)
	ListTeams(ctx context.Context) ([]string, error)
}

type pgUserRepository struct {
	db *sql.DB
}

func NewPgUserRepository(db *sql.DB) UserRepository {
	return &pgUserRepository{db: db}
}

func (r *pgUserRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (id, username, teamname, hashed_password, role)
	          VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, query, user.ID, user.Username, user.Teamname, user.HashedPassword, user.Role)
	if err != nil {
		if common.IsUniqueViolation(err) {
			return fmt.Errorf("user with given username already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgUserRepository.Create: %w", err)
	}
	return nil
}

func (r *pgUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `SELECT id, username, teamname, hashed_password, role, created_at, updated_at
	          FROM users WHERE username = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, username), "FindByUsername")
}

func (r *pgUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT id, username, teamname, hashed_password, role, created_at, updated_at
	          FROM users WHERE id = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id), "FindByID")
}

func (r *pgUserRepository) scanUser(row *sql.Row, method string) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(&user.ID, &user.Username, &user.Teamname, &user.HashedPassword, &user.Role, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.%s: %w", method, err)
	}
	return user, nil
}

func (r *pgUserRepository) CountTeams(ctx context.Context) (int, error) {
	query := `SELECT COUNT(DISTINCT teamname) FROM users WHERE role = $1 AND teamname <> ''`
	var count int
	if err := r.db.QueryRowContext(ctx, query, model.RoleUser).Scan(&count); err != nil {
		return 0, fmt.Errorf("pgUserRepository.CountTeams: %w", err)
	}
	return count, nil
}

func (r *pgUserRepository) ListTeams(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT teamname FROM users WHERE role = $1 AND teamname <> '' ORDER BY teamname ASC`
	rows, err := r.db.QueryContext(ctx, query, model.RoleUser)
	if err != nil {
		return nil, fmt.Errorf("pgUserRepository.ListTeams query: %w", err)
	}
	defer rows.Close()

	teams := []string{}
	for rows.Next() {
		var team string
		if err := rows.Scan(&team); err != nil {
			return nil, fmt.Errorf("pgUserRepository.ListTeams scan: %w", err)
		}
		teams = append(teams, team)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgUserRepository.ListTeams rows.Err: %w", err)
	}
	return teams, nil
}
