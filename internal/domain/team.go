package domain

import (
	"time"

	"github.com/google/uuid"
)

const MaxTeamSize = 6

type Team struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Pokemons  []Pokemon `json:"pokemons"`
	Position  int       `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Pokemon is one roster slot as picked in the team builder.
type Pokemon struct {
	Name           string   `json:"name"`
	Image          string   `json:"image"`
	Types          []string `json:"types"`
	BaseExperience int      `json:"base_experience"`
}
