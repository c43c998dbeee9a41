package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/vedran77/pokehire/internal/domain"
)

const profileColumns = `id, user_id, full_name, email, profile_type, balance, created_at, updated_at`

type ProfileRepo struct {
	db DBTX
}

func NewProfileRepo(db DBTX) *ProfileRepo {
	return &ProfileRepo{db: db}
}

func (r *ProfileRepo) Create(ctx context.Context, p *domain.Profile) error {
	query := `
		INSERT INTO profiles (id, user_id, full_name, email, profile_type, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		p.ID, p.UserID, p.FullName, p.Email, string(p.ProfileType), p.Balance, p.CreatedAt, p.UpdatedAt,
	)
	return mapError(err)
}

func (r *ProfileRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	return r.scanProfile(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID)
}

func (r *ProfileRepo) GetByUserIDForUpdate(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	return r.scanProfile(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = $1 FOR UPDATE`, userID)
}

func (r *ProfileRepo) AdjustBalance(ctx context.Context, userID uuid.UUID, delta int64) (*domain.Profile, error) {
	query := `
		UPDATE profiles SET balance = balance + $2, updated_at = now()
		WHERE user_id = $1
		RETURNING ` + profileColumns
	return r.scanProfile(ctx, query, userID, delta)
}

func (r *ProfileRepo) ListByType(ctx context.Context, profileType domain.ProfileType) ([]domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE profile_type = $1 ORDER BY full_name, created_at`

	rows, err := r.db.Query(ctx, query, string(profileType))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []domain.Profile
	for rows.Next() {
		p, err := scanProfileRow(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

func (r *ProfileRepo) scanProfile(ctx context.Context, query string, args ...any) (*domain.Profile, error) {
	p, err := scanProfileRow(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func scanProfileRow(row pgx.Row) (*domain.Profile, error) {
	var p domain.Profile
	var profileType string
	err := row.Scan(
		&p.ID, &p.UserID, &p.FullName, &p.Email, &profileType,
		&p.Balance, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.ProfileType = domain.ProfileType(profileType)
	return &p, nil
}
