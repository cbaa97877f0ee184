package repository

import (
	"context"
	"ctf_arena/internal/common"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPgAchievementRepository_Grant(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPgAchievementRepository(db)
	ctx := context.Background()

	t.Run("FirstSolve", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO achievements").
			WithArgs(sqlmock.AnyArg(), "crypto-101", "team-a", "alice").
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

		achievement, err := repo.Grant(ctx, "crypto-101", "team-a", "alice")
		require.NoError(t, err)
		assert.Equal(t, "crypto-101", achievement.Challenge)
		assert.Equal(t, "team-a", achievement.Teamname)
		assert.Equal(t, "alice", achievement.Username)
		assert.NotEmpty(t, achievement.ID)
	})

	t.Run("RegrantReturnsExistingRow", func(t *testing.T) {
		grantedAt := time.Now().Add(-time.Minute)

		mock.ExpectQuery("INSERT INTO achievements").
			WithArgs(sqlmock.AnyArg(), "crypto-101", "team-a", "alice").
			WillReturnError(&pgconn.PgError{Code: common.UniqueViolationCode})
		mock.ExpectQuery("SELECT id, challenge, teamname, username, created_at").
			WithArgs("team-a", "crypto-101").
			WillReturnRows(sqlmock.NewRows([]string{"id", "challenge", "teamname", "username", "created_at"}).
				AddRow("first-writer", "crypto-101", "team-a", "bob", grantedAt))

		achievement, err := repo.Grant(ctx, "crypto-101", "team-a", "alice")
		require.NoError(t, err)

		// The first writer's record stands untouched.
		assert.Equal(t, "first-writer", achievement.ID)
		assert.Equal(t, "bob", achievement.Username)
		assert.WithinDuration(t, grantedAt, achievement.CreatedAt, time.Second)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgAchievementRepository_Revoke(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPgAchievementRepository(db)
	ctx := context.Background()

	t.Run("Existing", func(t *testing.T) {
		mock.ExpectQuery("DELETE FROM achievements").
			WithArgs("team-a", "crypto-101").
			WillReturnRows(sqlmock.NewRows([]string{"id", "challenge", "teamname", "username", "created_at"}).
				AddRow("ach-1", "crypto-101", "team-a", "alice", time.Now()))

		removed, err := repo.Revoke(ctx, "team-a", "crypto-101")
		require.NoError(t, err)
		assert.Equal(t, "ach-1", removed.ID)
	})

	t.Run("NeverSolved", func(t *testing.T) {
		mock.ExpectQuery("DELETE FROM achievements").
			WithArgs("team-b", "crypto-101").
			WillReturnRows(sqlmock.NewRows([]string{"id", "challenge", "teamname", "username", "created_at"}))

		_, err := repo.Revoke(ctx, "team-b", "crypto-101")
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}
