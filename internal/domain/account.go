package domain

import "time"

// Account represents a registered owner of recipes.
type Account struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
