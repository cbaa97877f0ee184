package service

import (
	"context"
	"ctf_arena/internal/common"
	"ctf_arena/internal/domain/model"
	"ctf_arena/internal/domain/repository"
	"fmt"
	"sort"
	"time"
)

// ScoreService recomputes scores from the current ledger state on every
// call. Nothing here is cached or mutated: a challenge's value moves as
// the competition evolves, and each call sees a consistent-enough
// snapshot of the store made at that instant.
type ScoreService struct {
	challengeRepo   repository.ChallengeRepository
	achievementRepo repository.AchievementRepository
	userRepo        repository.UserRepository
	rewardRepo      repository.RewardRepository

	baseScore  int
	scoreFloor int
}

func NewScoreService(
	challengeRepo repository.ChallengeRepository,
	achievementRepo repository.AchievementRepository,
	userRepo repository.UserRepository,
	rewardRepo repository.RewardRepository,
	baseScore, scoreFloor int,
) *ScoreService {
	if scoreFloor < 1 {
		scoreFloor = 1
	}
	return &ScoreService{
		challengeRepo:   challengeRepo,
		achievementRepo: achievementRepo,
		userRepo:        userRepo,
		rewardRepo:      rewardRepo,
		baseScore:       baseScore,
		scoreFloor:      scoreFloor,
	}
}

// ChallengeValue computes base * weight * (totalTeams - solvers), floored
// so a fully-solved challenge never drops to zero or negative points.
func ChallengeValue(baseScore int, difficulty model.ChallengeDifficulty, solvers, totalTeams, floor int) int {
	remaining := totalTeams - solvers
	if remaining < floor {
		remaining = floor
	}
	return baseScore * difficulty.Weight() * remaining
}

// ChallengeScore returns the current value of one challenge together
// with the achievements that earned it.
func (s *ScoreService) ChallengeScore(ctx context.Context, name string) (*model.ChallengeScore, error) {
	challenge, err := s.challengeRepo.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	achievements, err := s.achievementRepo.ListByChallenge(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	totalTeams, err := s.userRepo.CountTeams(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count teams: %w", err)
	}

	return &model.ChallengeScore{
		Name:         challenge.Name,
		Score:        ChallengeValue(s.baseScore, challenge.Difficulty, len(achievements), totalTeams, s.scoreFloor),
		Achievements: achievements,
	}, nil
}

// Breakthrough returns the first-blood achievement for a challenge, or
// ErrNotFound if nobody solved it yet.
func (s *ScoreService) Breakthrough(ctx context.Context, challenge string) (*model.Achievement, error) {
	achievements, err := s.achievementRepo.ListByChallenge(ctx, challenge)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	if len(achievements) == 0 {
		return nil, common.ErrNotFound
	}
	first := achievements[0]
	for _, a := range achievements[1:] {
		if a.CreatedAt.Before(first.CreatedAt) {
			first = a
		}
	}
	return &first, nil
}

// GameScore recomputes the full scoreboard: every challenge's current
// value and every team's ranked total.
func (s *ScoreService) GameScore(ctx context.Context) (*model.GameScore, error) {
	challenges, err := s.challengeRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	achievements, err := s.achievementRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	teams, err := s.userRepo.ListTeams(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	rewards, err := s.rewardRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rewards: %w", err)
	}

	return s.compute(challenges, achievements, teams, rewards), nil
}

// compute is the pure part of the scoreboard derivation. Separated from
// GameScore so tests can feed it fixed snapshots.
func (s *ScoreService) compute(
	challenges []model.Challenge,
	achievements []model.Achievement,
	teams []string,
	rewards []model.Reward,
) *model.GameScore {
	totalTeams := len(teams)

	byChallenge := map[string][]model.Achievement{}
	byTeam := map[string][]model.Achievement{}
	for _, a := range achievements {
		byChallenge[a.Challenge] = append(byChallenge[a.Challenge], a)
		byTeam[a.Teamname] = append(byTeam[a.Teamname], a)
	}

	challsScore := map[string]model.ChallengeScore{}
	breakthroughIDs := map[string]string{}
	for _, c := range challenges {
		solvedBy := byChallenge[c.Name]
		challsScore[c.Name] = model.ChallengeScore{
			Name:         c.Name,
			Score:        ChallengeValue(s.baseScore, c.Difficulty, len(solvedBy), totalTeams, s.scoreFloor),
			Achievements: solvedBy,
		}
		if len(solvedBy) > 0 {
			first := solvedBy[0]
			for _, a := range solvedBy[1:] {
				if a.CreatedAt.Before(first.CreatedAt) {
					first = a
				}
			}
			breakthroughIDs[c.Name] = first.ID
		}
	}

	rewardsByTeam := map[string][]model.Reward{}
	for _, reward := range rewards {
		rewardsByTeam[reward.Teamname] = append(rewardsByTeam[reward.Teamname], reward)
	}

	teamsScore := make([]model.TeamScore, 0, totalTeams)
	lastSolve := map[string]time.Time{}
	for _, team := range teams {
		solved := byTeam[team]
		score := 0
		breakthroughs := []model.Achievement{}
		for _, a := range solved {
			if cs, ok := challsScore[a.Challenge]; ok {
				score += cs.Score
			}
			if breakthroughIDs[a.Challenge] == a.ID {
				breakthroughs = append(breakthroughs, a)
			}
			if a.CreatedAt.After(lastSolve[team]) {
				lastSolve[team] = a.CreatedAt
			}
		}
		teamRewards := rewardsByTeam[team]
		for _, reward := range teamRewards {
			score += reward.Points
		}
		teamsScore = append(teamsScore, model.TeamScore{
			Team:          team,
			Score:         score,
			Breakthroughs: breakthroughs,
			Solved:        solved,
			Rewards:       teamRewards,
		})
	}

	// Score descending; ties go to the team that reached its total
	// first, then to name order so the ranking is deterministic.
	sort.SliceStable(teamsScore, func(i, j int) bool {
		a, b := teamsScore[i], teamsScore[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		ta, tb := lastSolve[a.Team], lastSolve[b.Team]
		if !ta.Equal(tb) {
			return ta.Before(tb)
		}
		return a.Team < b.Team
	})
	for i := range teamsScore {
		teamsScore[i].Rank = i + 1
	}

	return &model.GameScore{
		ChallsScore: challsScore,
		TeamsScore:  teamsScore,
	}
}

// TeamScore returns one team's entry from the current scoreboard.
func (s *ScoreService) TeamScore(ctx context.Context, team string) (*model.TeamScore, error) {
	game, err := s.GameScore(ctx)
	if err != nil {
		return nil, err
	}
	for _, ts := range game.TeamsScore {
		if ts.Team == team {
			return &ts, nil
		}
	}
	return nil, common.ErrNotFound
}

// PlayerScore derives a player's personal and team totals.
func (s *ScoreService) PlayerScore(ctx context.Context, username, team string) (*model.PlayerScore, error) {
	game, err := s.GameScore(ctx)
	if err != nil {
		return nil, err
	}

	playerScore := &model.PlayerScore{}
	for _, ts := range game.TeamsScore {
		if ts.Team != team {
			continue
		}
		playerScore.MyTeamScore = ts.Score
		for _, a := range ts.Solved {
			if a.Username == username {
				if cs, ok := game.ChallsScore[a.Challenge]; ok {
					playerScore.MyScore += cs.Score
				}
			}
		}
		break
	}
	return playerScore, nil
}
