package model

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Teamname       string    `json:"teamname"`
	HashedPassword string    `json:"-"` // Not exposed
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Identity is the already-authenticated caller the core trusts, as
// supplied by the auth boundary.
type Identity struct {
	Username string
	Teamname string
	IsAdmin  bool
}
