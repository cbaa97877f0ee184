package model

import (
	"time"
)

type ChallengeDifficulty string

const (
	DifficultyEasy   ChallengeDifficulty = "easy"
	DifficultyMedium ChallengeDifficulty = "medium"
	DifficultyHard   ChallengeDifficulty = "hard"
)

// Weight maps a difficulty to its scoring multiplier. Unknown values
// weigh like easy so a bad row never zeroes a score.
func (d ChallengeDifficulty) Weight() int {
	switch d {
	case DifficultyMedium:
		return 2
	case DifficultyHard:
		return 3
	default:
		return 1
	}
}

func (d ChallengeDifficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Challenge is the public view of a challenge. Name is the stable primary
// key used in every cross-reference. FlagHash and Salt never leave the
// process: they are excluded from JSON for every audience, admins
// included.
type Challenge struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Img         string              `json:"img"`
	Author      string              `json:"author"`
	Category    string              `json:"category"`
	Difficulty  ChallengeDifficulty `json:"difficulty"`
	FlagHash    string              `json:"-"`
	Salt        string              `json:"-"`
	IsOpen      bool                `json:"is_open"`
	IsBroken    bool                `json:"is_broken"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}
