package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/vedran77/pokehire/internal/domain"
	"github.com/vedran77/pokehire/internal/repository"
)

var ErrProfileNotFound = errors.New("profile not found")

type ProfileService struct {
	store repository.Store
}

func NewProfileService(store repository.Store) *ProfileService {
	return &ProfileService{store: store}
}

type ContractorSummary struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	FullName string    `json:"full_name"`
}

func (s *ProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	p, err := s.store.Profiles().GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProfileNotFound
	}
	return p, nil
}

// AdjustBalance applies delta without any floor; callers that debit must
// check funds themselves.
func (s *ProfileService) AdjustBalance(ctx context.Context, userID uuid.UUID, delta int64) (*domain.Profile, error) {
	p, err := s.store.Profiles().AdjustBalance(ctx, userID, delta)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProfileNotFound
	}
	return p, nil
}

// ListContractors returns every contractor keyed by user ID, which is what
// contract creation expects as contractorId.
func (s *ProfileService) ListContractors(ctx context.Context) ([]ContractorSummary, error) {
	profiles, err := s.store.Profiles().ListByType(ctx, domain.ProfileContractor)
	if err != nil {
		return nil, err
	}

	out := make([]ContractorSummary, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, ContractorSummary{ID: p.UserID, Email: p.Email, FullName: p.FullName})
	}
	return out, nil
}
