package model

// Scores are never persisted. They are recomputed from the current
// ledger state on every call, so a challenge's value keeps moving as
// more teams solve it.

type ChallengeScore struct {
	Name         string        `json:"name"`
	Score        int           `json:"score"`
	Achievements []Achievement `json:"achievements"`
}

type TeamScore struct {
	Rank          int           `json:"rank"`
	Team          string        `json:"team"`
	Score         int           `json:"score"`
	Breakthroughs []Achievement `json:"breakthroughs"`
	Solved        []Achievement `json:"solved"`
	Rewards       []Reward      `json:"rewards"`
}

type GameScore struct {
	ChallsScore map[string]ChallengeScore `json:"challs_score"`
	TeamsScore  []TeamScore               `json:"teams_score"`
}

type PlayerScore struct {
	MyScore     int `json:"my_score"`
	MyTeamScore int `json:"my_team_score"`
}
