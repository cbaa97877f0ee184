package service

import (
	"ctf_arena/internal/domain/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChallengeValue(t *testing.T) {
	tests := []struct {
		name       string
		base       int
		difficulty model.ChallengeDifficulty
		solvers    int
		totalTeams int
		floor      int
		want       int
	}{
		{"easy unsolved", 500, model.DifficultyEasy, 0, 4, 1, 2000},
		{"easy one solver", 500, model.DifficultyEasy, 1, 4, 1, 1500},
		{"easy two solvers", 500, model.DifficultyEasy, 2, 4, 1, 1000},
		{"medium weight", 500, model.DifficultyMedium, 1, 4, 1, 3000},
		{"hard weight", 500, model.DifficultyHard, 1, 4, 1, 4500},
		{"all teams solved floors at one", 500, model.DifficultyEasy, 4, 4, 1, 500},
		{"more solvers than teams floors at one", 500, model.DifficultyEasy, 6, 4, 1, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ChallengeValue(tt.base, tt.difficulty, tt.solvers, tt.totalTeams, tt.floor)
			assert.Equal(t, tt.want, got)
		})
	}
}

func newTestScoreService() *ScoreService {
	return NewScoreService(nil, nil, nil, nil, 500, 1)
}

func TestGameScore_DynamicRecompute(t *testing.T) {
	s := newTestScoreService()
	t0 := time.Date(2026, 5, 16, 10, 0, 0, 0, time.UTC)

	challenges := []model.Challenge{
		{Name: "crypto101", Difficulty: model.DifficultyEasy},
	}
	teams := []string{"team-a", "team-b", "team-c", "team-d"}

	// First solve: the challenge is worth 500 * 1 * (4 - 1).
	solveA := model.Achievement{ID: "ach-a", Challenge: "crypto101", Teamname: "team-a", Username: "alice", CreatedAt: t0}
	game := s.compute(challenges, []model.Achievement{solveA}, teams, nil)

	require.Contains(t, game.ChallsScore, "crypto101")
	assert.Equal(t, 1500, game.ChallsScore["crypto101"].Score)
	assert.Equal(t, 1500, game.TeamsScore[0].Score)
	assert.Equal(t, "team-a", game.TeamsScore[0].Team)

	// Second solve twelve minutes later devalues the challenge for both
	// solvers, the earlier one included.
	solveB := model.Achievement{ID: "ach-b", Challenge: "crypto101", Teamname: "team-b", Username: "bob", CreatedAt: t0.Add(12 * time.Minute)}
	game = s.compute(challenges, []model.Achievement{solveA, solveB}, teams, nil)

	assert.Equal(t, 1000, game.ChallsScore["crypto101"].Score)
	assert.Equal(t, 1000, game.TeamsScore[0].Score)
	assert.Equal(t, 1000, game.TeamsScore[1].Score)
}

func TestGameScore_TieBreakByEarliestSolve(t *testing.T) {
	s := newTestScoreService()
	t0 := time.Date(2026, 5, 16, 10, 0, 0, 0, time.UTC)

	challenges := []model.Challenge{
		{Name: "crypto101", Difficulty: model.DifficultyEasy},
	}
	teams := []string{"team-b", "team-a", "team-c"}
	achievements := []model.Achievement{
		{ID: "ach-b", Challenge: "crypto101", Teamname: "team-b", Username: "bob", CreatedAt: t0.Add(30 * time.Minute)},
		{ID: "ach-a", Challenge: "crypto101", Teamname: "team-a", Username: "alice", CreatedAt: t0},
	}

	game := s.compute(challenges, achievements, teams, nil)

	// Equal scores; team-a reached its total first.
	require.Len(t, game.TeamsScore, 3)
	assert.Equal(t, "team-a", game.TeamsScore[0].Team)
	assert.Equal(t, 1, game.TeamsScore[0].Rank)
	assert.Equal(t, "team-b", game.TeamsScore[1].Team)
	assert.Equal(t, 2, game.TeamsScore[1].Rank)
	assert.Equal(t, "team-c", game.TeamsScore[2].Team)
	assert.Equal(t, 0, game.TeamsScore[2].Score)
}

func TestGameScore_Breakthroughs(t *testing.T) {
	s := newTestScoreService()
	t0 := time.Date(2026, 5, 16, 10, 0, 0, 0, time.UTC)

	challenges := []model.Challenge{
		{Name: "crypto101", Difficulty: model.DifficultyEasy},
		{Name: "pwn201", Difficulty: model.DifficultyHard},
	}
	teams := []string{"team-a", "team-b"}
	achievements := []model.Achievement{
		{ID: "first-crypto", Challenge: "crypto101", Teamname: "team-a", Username: "alice", CreatedAt: t0},
		{ID: "second-crypto", Challenge: "crypto101", Teamname: "team-b", Username: "bob", CreatedAt: t0.Add(time.Hour)},
		{ID: "first-pwn", Challenge: "pwn201", Teamname: "team-b", Username: "bob", CreatedAt: t0.Add(2 * time.Hour)},
	}

	game := s.compute(challenges, achievements, teams, nil)

	var teamA, teamB model.TeamScore
	for _, ts := range game.TeamsScore {
		switch ts.Team {
		case "team-a":
			teamA = ts
		case "team-b":
			teamB = ts
		}
	}

	require.Len(t, teamA.Breakthroughs, 1)
	assert.Equal(t, "first-crypto", teamA.Breakthroughs[0].ID)
	require.Len(t, teamB.Breakthroughs, 1)
	assert.Equal(t, "first-pwn", teamB.Breakthroughs[0].ID)
}

func TestGameScore_RewardsAddToTeamScore(t *testing.T) {
	s := newTestScoreService()

	challenges := []model.Challenge{
		{Name: "crypto101", Difficulty: model.DifficultyEasy},
	}
	teams := []string{"team-a", "team-b"}
	rewards := []model.Reward{
		{ID: "rw-1", Teamname: "team-b", Label: "write-up prize", Points: 250},
	}

	game := s.compute(challenges, nil, teams, rewards)

	assert.Equal(t, "team-b", game.TeamsScore[0].Team)
	assert.Equal(t, 250, game.TeamsScore[0].Score)
	require.Len(t, game.TeamsScore[0].Rewards, 1)
	assert.Equal(t, "write-up prize", game.TeamsScore[0].Rewards[0].Label)
	assert.Equal(t, 0, game.TeamsScore[1].Score)
}
