package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/pokehire/internal/auth"
	"github.com/vedran77/pokehire/internal/domain"
	"github.com/vedran77/pokehire/internal/repository"
)

var (
	ErrEmailTaken   = errors.New("email already taken")
	ErrInvalidCreds = errors.New("invalid email or password")
	ErrUserNotFound = errors.New("user not found")
)

// TokenIssuer mints session tokens for a user.
type TokenIssuer interface {
	Issue(userID uuid.UUID) (string, error)
}

type AuthService struct {
	store           repository.Store
	tokens          TokenIssuer
	startingBalance int64
}

func NewAuthService(store repository.Store, tokens TokenIssuer, startingBalance int64) *AuthService {
	return &AuthService{
		store:           store,
		tokens:          tokens,
		startingBalance: startingBalance,
	}
}

type SignupInput struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FullName    string `json:"fullName"`
	ProfileType string `json:"profileType"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token   string          `json:"token"`
	User    *domain.User    `json:"user"`
	Profile *domain.Profile `json:"profile"`
}

type MeResponse struct {
	ID      uuid.UUID       `json:"id"`
	Email   string          `json:"email"`
	Profile *domain.Profile `json:"profile"`
}

// Signup creates a user and its profile in one transaction and issues a
// session token for it.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*AuthResponse, error) {
	email := normalizeEmail(input.Email)

	existing, err := s.store.Users().GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	profile := &domain.Profile{
		ID:          uuid.New(),
		UserID:      user.ID,
		FullName:    strings.TrimSpace(input.FullName),
		Email:       email,
		ProfileType: domain.ProfileType(input.ProfileType),
		Balance:     s.startingBalance,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.store.RunInTx(ctx, func(ctx context.Context, tx repository.Store) error {
		if err := tx.Users().Create(ctx, user); err != nil {
			return fmt.Errorf("creating user: %w", err)
		}
		if err := tx.Profiles().Create(ctx, profile); err != nil {
			return fmt.Errorf("creating profile: %w", err)
		}
		return nil
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generating token: %w", err)
	}

	return &AuthResponse{Token: token, User: user, Profile: profile}, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	user, err := s.store.Users().GetByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCreds
	}

	if !auth.VerifyPassword(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCreds
	}

	profile, err := s.store.Profiles().GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generating token: %w", err)
	}

	return &AuthResponse{Token: token, User: user, Profile: profile}, nil
}

func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*MeResponse, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	profile, err := s.store.Profiles().GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}

	return &MeResponse{ID: user.ID, Email: user.Email, Profile: profile}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
