package domain

import (
	"time"

	"github.com/google/uuid"
)

type ProfileType string

const (
	ProfileClient     ProfileType = "client"
	ProfileContractor ProfileType = "contractor"
)

func (t ProfileType) Valid() bool {
	return t == ProfileClient || t == ProfileContractor
}

// Profile is the role and balance bearing half of an account. Balance is in
// whole currency units.
type Profile struct {
	ID          uuid.UUID   `json:"id"`
	UserID      uuid.UUID   `json:"user_id"`
	FullName    string      `json:"full_name"`
	Email       string      `json:"email"`
	ProfileType ProfileType `json:"profile_type"`
	Balance     int64       `json:"balance"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
