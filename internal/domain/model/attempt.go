package model

import "time"

// Attempt is one flag-guess event. Attempts are append-only: every
// competitor submission is recorded before its correctness is known,
// whatever the outcome, and is never updated or deleted.
type Attempt struct {
	ID        string    `json:"id"`
	Challenge string    `json:"challenge"`
	Username  string    `json:"username"`
	Teamname  string    `json:"teamname"`
	Proposal  string    `json:"proposal"`
	CreatedAt time.Time `json:"created_at"`
}
