package model

import "time"

// Achievement records that a team first solved a challenge, via a
// specific member. At most one exists per (challenge, teamname); the
// database enforces this with a unique index so concurrent submissions
// cannot duplicate it.
type Achievement struct {
	ID        string    `json:"id"`
	Challenge string    `json:"challenge"`
	Teamname  string    `json:"teamname"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}
