package domain

import (
	"context"
	"time"
)

// User represents a registered user of the application.
type User struct {
	ID           int64
	Email        string
	DisplayName  string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// Profile holds the gamification counters shown in the navbar.
type Profile struct {
	UserID       int64
	Points       int
	Streak       int
	LastActivity *time.Time // Date (UTC midnight) of the last saved session
	UpdatedAt    time.Time
}

type ProfileRepository interface {
	// Get returns the user's profile, creating an empty one if it is missing.
	Get(ctx context.Context, userID int64) (*Profile, error)
	Update(ctx context.Context, profile *Profile) error
}
