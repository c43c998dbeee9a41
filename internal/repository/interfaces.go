package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/vedran77/pokehire/internal/domain"
)

// ErrDuplicate is returned when a write violates a uniqueness constraint.
var ErrDuplicate = errors.New("duplicate record")

// Lookups return (nil, nil) when the record does not exist.

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.Profile) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Profile, error)
	// GetByUserIDForUpdate locks the profile row until the surrounding
	// transaction ends.
	GetByUserIDForUpdate(ctx context.Context, userID uuid.UUID) (*domain.Profile, error)
	AdjustBalance(ctx context.Context, userID uuid.UUID, delta int64) (*domain.Profile, error)
	ListByType(ctx context.Context, profileType domain.ProfileType) ([]domain.Profile, error)
}

type ContractRepository interface {
	Create(ctx context.Context, contract *domain.Contract) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Contract, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Contract, error)
	// UpdateStatus moves the contract to status `to` only if it is currently
	// in `from`. It reports false when no row matched.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.ContractStatus) (bool, error)
	ListByParty(ctx context.Context, userID uuid.UUID) ([]domain.Contract, error)
}

type TeamRepository interface {
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
	CreateMany(ctx context.Context, teams []domain.Team) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Team, error)
}

// Store vends repositories bound to one connection or transaction.
type Store interface {
	Users() UserRepository
	Profiles() ProfileRepository
	Contracts() ContractRepository
	Teams() TeamRepository

	// RunInTx runs fn against a Store whose writes commit together or not at
	// all. Nested calls join the outer transaction.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}
