package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/pokehire/internal/domain"
	"github.com/vedran77/pokehire/internal/repository"
	"github.com/vedran77/pokehire/pkg/validator"
)

type TeamService struct {
	store repository.Store
}

func NewTeamService(store repository.Store) *TeamService {
	return &TeamService{store: store}
}

type TeamInput struct {
	Name     string           `json:"name"`
	Pokemons []domain.Pokemon `json:"pokemons"`
}

// ReplaceAll swaps the user's whole team list for the given one. Invalid
// input is returned as validator.ValidationErrors and nothing is written.
// Concurrent saves for the same user resolve as last write wins.
func (s *TeamService) ReplaceAll(ctx context.Context, userID uuid.UUID, input []TeamInput) ([]domain.Team, error) {
	now := time.Now()
	teams := make([]domain.Team, 0, len(input))
	for i, in := range input {
		pokemons := in.Pokemons
		if pokemons == nil {
			pokemons = []domain.Pokemon{}
		}
		for j := range pokemons {
			if pokemons[j].Types == nil {
				pokemons[j].Types = []string{}
			}
		}
		teams = append(teams, domain.Team{
			ID:        uuid.New(),
			UserID:    userID,
			Name:      strings.TrimSpace(in.Name),
			Pokemons:  pokemons,
			Position:  i,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	if errs := validator.ValidateTeams(teams); errs.HasErrors() {
		return nil, errs
	}

	err := s.store.RunInTx(ctx, func(ctx context.Context, tx repository.Store) error {
		if err := tx.Teams().DeleteByUser(ctx, userID); err != nil {
			return fmt.Errorf("clearing teams: %w", err)
		}
		if len(teams) == 0 {
			return nil
		}
		if err := tx.Teams().CreateMany(ctx, teams); err != nil {
			return fmt.Errorf("inserting teams: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return teams, nil
}

func (s *TeamService) ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Team, error) {
	teams, err := s.store.Teams().ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if teams == nil {
		teams = []domain.Team{}
	}
	return teams, nil
}
