package service

import (
	"context"
	"ctf_arena/internal/common"
	"ctf_arena/internal/domain/model"
	"ctf_arena/internal/domain/repository"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedEvent struct {
	Channel string
	Payload []byte
}

type capturePublisher struct {
	mu     sync.Mutex
	events []capturedEvent
}

func (p *capturePublisher) Publish(_ context.Context, channel string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, capturedEvent{Channel: channel, Payload: payload})
	return nil
}

func (p *capturePublisher) channels() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	channels := make([]string, 0, len(p.events))
	for _, e := range p.events {
		channels = append(channels, e.Channel)
	}
	return channels
}

var achievementColumns = []string{"id", "challenge", "teamname", "username", "created_at"}

func newSolveFixture(t *testing.T) (*SolveService, sqlmock.Sqlmock, *capturePublisher) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	publisher := &capturePublisher{}
	challengeService := NewChallengeService(repository.NewPgChallengeRepository(db))
	solveService := NewSolveService(
		challengeService,
		repository.NewPgAttemptRepository(db),
		repository.NewPgAchievementRepository(db),
		NewBroadcastService(publisher),
		10*time.Minute,
	)
	return solveService, mock, publisher
}

var (
	competitor = model.Identity{Username: "alice", Teamname: "team-a"}
	adminUser  = model.Identity{Username: "root", Teamname: "staff", IsAdmin: true}
)

func expectAttemptInsert(mock sqlmock.Sqlmock) {
	mock.ExpectQuery("INSERT INTO attempts").
		WithArgs(sqlmock.AnyArg(), "crypto-101", "alice", "team-a", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
}

func expectAchievementsForChallenge(mock sqlmock.Sqlmock, rows *sqlmock.Rows) {
	mock.ExpectQuery("SELECT id, challenge, teamname, username, created_at").
		WithArgs("crypto-101").
		WillReturnRows(rows)
}

func expectChallengeLookup(mock sqlmock.Sqlmock, flag string, isOpen, isBroken bool) string {
	salt := "fixed-salt"
	mock.ExpectQuery("SELECT name, description").
		WithArgs("crypto-101").
		WillReturnRows(challengeRow("crypto-101", hashFlag(flag, salt), salt, isOpen, isBroken))
	return salt
}

func TestSolveService_AdminDryRun(t *testing.T) {
	solveService, mock, publisher := newSolveFixture(t)
	ctx := context.Background()

	// Only the challenge lookup runs: no attempt insert, no grant.
	expectChallengeLookup(mock, "FLAG{right}", true, false)

	result, err := solveService.Submit(ctx, adminUser, "crypto-101", "FLAG{right}")
	require.NoError(t, err)

	assert.True(t, result.DryRun)
	assert.Equal(t, model.OutcomeAccepted, result.Outcome)
	assert.Empty(t, publisher.channels())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSolveService_AdminDryRun_BrokenChallenge(t *testing.T) {
	solveService, mock, publisher := newSolveFixture(t)
	ctx := context.Background()

	expectChallengeLookup(mock, "FLAG{right}", true, true)

	result, err := solveService.Submit(ctx, adminUser, "crypto-101", "FLAG{right}")
	require.NoError(t, err)

	// Even with the correct flag, a broken challenge reports Broken and
	// leaves no trace in the ledgers.
	assert.True(t, result.DryRun)
	assert.Equal(t, model.OutcomeBroken, result.Outcome)
	assert.Empty(t, publisher.channels())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSolveService_IncorrectFlagStillRecordsAttempt(t *testing.T) {
	solveService, mock, publisher := newSolveFixture(t)
	ctx := context.Background()

	expectAttemptInsert(mock)
	expectAchievementsForChallenge(mock, sqlmock.NewRows(achievementColumns))
	expectChallengeLookup(mock, "FLAG{right}", true, false)

	result, err := solveService.Submit(ctx, competitor, "crypto-101", "FLAG{wrong}")
	require.NoError(t, err)

	assert.Equal(t, model.OutcomeIncorrectFlag, result.Outcome)
	assert.Equal(t, []string{"audience:admin"}, publisher.channels())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSolveService_AlreadySolvedByOwnTeam(t *testing.T) {
	solveService, mock, _ := newSolveFixture(t)
	ctx := context.Background()

	expectAttemptInsert(mock)
	expectAchievementsForChallenge(mock, sqlmock.NewRows(achievementColumns).
		AddRow("ach-1", "crypto-101", "team-a", "bob", time.Now().Add(-time.Hour)))

	result, err := solveService.Submit(ctx, competitor, "crypto-101", "FLAG{right}")
	require.NoError(t, err)

	// Rejected before any verification, so the secret is never checked.
	assert.Equal(t, model.OutcomeAlreadySolved, result.Outcome)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSolveService_GlobalLockoutWindow(t *testing.T) {
	t.Run("WithinWindow", func(t *testing.T) {
		solveService, mock, _ := newSolveFixture(t)

		expectAttemptInsert(mock)
		expectAchievementsForChallenge(mock, sqlmock.NewRows(achievementColumns).
			AddRow("ach-1", "crypto-101", "team-b", "bob", time.Now().Add(-5*time.Minute)))

		result, err := solveService.Submit(context.Background(), competitor, "crypto-101", "FLAG{right}")
		require.NoError(t, err)

		assert.Equal(t, model.OutcomeTemporarilyLocked, result.Outcome)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("WindowExpired", func(t *testing.T) {
		solveService, mock, publisher := newSolveFixture(t)

		expectAttemptInsert(mock)
		expectAchievementsForChallenge(mock, sqlmock.NewRows(achievementColumns).
			AddRow("ach-1", "crypto-101", "team-b", "bob", time.Now().Add(-11*time.Minute)))
		expectChallengeLookup(mock, "FLAG{right}", true, false)
		mock.ExpectQuery("INSERT INTO achievements").
			WithArgs(sqlmock.AnyArg(), "crypto-101", "team-a", "alice").
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

		result, err := solveService.Submit(context.Background(), competitor, "crypto-101", "FLAG{right}")
		require.NoError(t, err)

		assert.Equal(t, model.OutcomeAccepted, result.Outcome)
		require.NotNil(t, result.Achievement)
		assert.Equal(t, "team-a", result.Achievement.Teamname)
		assert.Contains(t, publisher.channels(), "audience:game")
		assert.Contains(t, publisher.channels(), "audience:player")
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSolveService_GrantIsIdempotentUnderRace(t *testing.T) {
	solveService, mock, _ := newSolveFixture(t)
	ctx := context.Background()

	grantedAt := time.Now().Add(-time.Second)

	expectAttemptInsert(mock)
	expectAchievementsForChallenge(mock, sqlmock.NewRows(achievementColumns))
	expectChallengeLookup(mock, "FLAG{right}", true, false)
	// A teammate's concurrent grant wins the insert race; ours refetches
	// and returns the first writer's row.
	mock.ExpectQuery("INSERT INTO achievements").
		WithArgs(sqlmock.AnyArg(), "crypto-101", "team-a", "alice").
		WillReturnError(&pgconn.PgError{Code: common.UniqueViolationCode})
	mock.ExpectQuery("SELECT id, challenge, teamname, username, created_at").
		WithArgs("team-a", "crypto-101").
		WillReturnRows(sqlmock.NewRows(achievementColumns).
			AddRow("existing-ach", "crypto-101", "team-a", "bob", grantedAt))

	result, err := solveService.Submit(ctx, competitor, "crypto-101", "FLAG{right}")
	require.NoError(t, err)

	assert.Equal(t, model.OutcomeAccepted, result.Outcome)
	require.NotNil(t, result.Achievement)
	assert.Equal(t, "existing-ach", result.Achievement.ID)
	assert.Equal(t, "bob", result.Achievement.Username)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSolveService_MissingChallengeOutcome(t *testing.T) {
	solveService, mock, _ := newSolveFixture(t)
	ctx := context.Background()

	expectAttemptInsert(mock)
	expectAchievementsForChallenge(mock, sqlmock.NewRows(achievementColumns))
	mock.ExpectQuery("SELECT name, description").
		WithArgs("crypto-101").
		WillReturnRows(sqlmock.NewRows(challengeColumns))

	result, err := solveService.Submit(ctx, competitor, "crypto-101", "FLAG{right}")
	require.NoError(t, err)

	assert.Equal(t, model.OutcomeNotFound, result.Outcome)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSolveService_InputValidationBeforeRecording(t *testing.T) {
	solveService, mock, publisher := newSolveFixture(t)

	_, err := solveService.Submit(context.Background(), competitor, "crypto-101", "")
	assert.ErrorIs(t, err, common.ErrBadRequest)

	_, err = solveService.Submit(context.Background(), competitor, "", "FLAG{right}")
	assert.ErrorIs(t, err, common.ErrBadRequest)

	// Malformed input is rejected before step one: nothing recorded.
	assert.Empty(t, publisher.channels())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSolveService_StorageFailureIsNotIncorrectFlag(t *testing.T) {
	solveService, mock, _ := newSolveFixture(t)

	mock.ExpectQuery("INSERT INTO attempts").
		WithArgs(sqlmock.AnyArg(), "crypto-101", "alice", "team-a", sqlmock.AnyArg()).
		WillReturnError(errors.New("connection refused"))

	_, err := solveService.Submit(context.Background(), competitor, "crypto-101", "FLAG{right}")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrStorageUnavailable)
	require.NoError(t, mock.ExpectationsWereMet())
}
