package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/vedran77/pokehire/internal/domain"
)

type TeamRepo struct {
	db DBTX
}

func NewTeamRepo(db DBTX) *TeamRepo {
	return &TeamRepo{db: db}
}

func (r *TeamRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM pokemon_teams WHERE user_id = $1`, userID)
	return err
}

func (r *TeamRepo) CreateMany(ctx context.Context, teams []domain.Team) error {
	query := `
		INSERT INTO pokemon_teams (id, user_id, name, position, pokemons, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	for _, t := range teams {
		pokemons, err := json.Marshal(t.Pokemons)
		if err != nil {
			return fmt.Errorf("encoding pokemons: %w", err)
		}
		if _, err := r.db.Exec(ctx, query,
			t.ID, t.UserID, t.Name, t.Position, pokemons, t.CreatedAt, t.UpdatedAt,
		); err != nil {
			return mapError(err)
		}
	}
	return nil
}

func (r *TeamRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Team, error) {
	query := `
		SELECT id, user_id, name, position, pokemons, created_at, updated_at
		FROM pokemon_teams
		WHERE user_id = $1
		ORDER BY position`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []domain.Team
	for rows.Next() {
		var t domain.Team
		var pokemons []byte
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name, &t.Position, &pokemons, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(pokemons, &t.Pokemons); err != nil {
			return nil, fmt.Errorf("decoding pokemons of team %s: %w", t.ID, err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}
