package model

import "time"

// Reward is an administratively granted score bonus for a team, added on
// top of its recomputed challenge scores.
type Reward struct {
	ID        string    `json:"id"`
	Teamname  string    `json:"teamname"`
	Label     string    `json:"label"`
	Points    int       `json:"points"`
	CreatedAt time.Time `json:"created_at"`
}
