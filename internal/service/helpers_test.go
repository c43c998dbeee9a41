package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/vedran77/pokehire/internal/auth"
	"github.com/vedran77/pokehire/internal/domain"
	"github.com/vedran77/pokehire/internal/logging"
	"github.com/vedran77/pokehire/internal/repository"
	"github.com/vedran77/pokehire/internal/repository/memory"
)

type testEnv struct {
	store     repository.Store
	tokens    *auth.TokenIssuer
	auth      *AuthService
	profiles  *ProfileService
	contracts *ContractService
	teams     *TeamService
	notifier  *recordingNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithStore(t, memory.NewStore())
}

func newTestEnvWithStore(t *testing.T, store repository.Store) *testEnv {
	t.Helper()
	tokens := auth.NewTokenIssuer("test-secret-"+t.Name(), time.Hour)
	n := &recordingNotifier{}
	contracts := NewContractService(store, logging.Discard())
	contracts.SetNotifier(n)
	return &testEnv{
		store:     store,
		tokens:    tokens,
		auth:      NewAuthService(store, tokens, 100),
		profiles:  NewProfileService(store),
		contracts: contracts,
		teams:     NewTeamService(store),
		notifier:  n,
	}
}

func (e *testEnv) signup(t *testing.T, email string, pt domain.ProfileType) *AuthResponse {
	t.Helper()
	resp, err := e.auth.Signup(context.Background(), SignupInput{
		Email:       email,
		Password:    "pikachu123",
		FullName:    "Trainer " + email,
		ProfileType: string(pt),
	})
	require.NoError(t, err)
	return resp
}

func (e *testEnv) balance(t *testing.T, userID uuid.UUID) int64 {
	t.Helper()
	p, err := e.profiles.GetProfile(context.Background(), userID)
	require.NoError(t, err)
	return p.Balance
}

type notification struct {
	event      string
	contractID uuid.UUID
	status     domain.ContractStatus
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notification
}

func (n *recordingNotifier) NotifyContract(event string, c *domain.Contract) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, notification{event: event, contractID: c.ID, status: c.Status})
}

func (n *recordingNotifier) names() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.event)
	}
	return out
}

// failingStore wraps a store and fails every balance credit.
type failingStore struct {
	repository.Store
}

func (s failingStore) Profiles() repository.ProfileRepository {
	return failingProfiles{s.Store.Profiles()}
}

func (s failingStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	return s.Store.RunInTx(ctx, func(ctx context.Context, tx repository.Store) error {
		return fn(ctx, failingStore{tx})
	})
}

type failingProfiles struct {
	repository.ProfileRepository
}

func (p failingProfiles) AdjustBalance(ctx context.Context, userID uuid.UUID, delta int64) (*domain.Profile, error) {
	if delta > 0 {
		return nil, errCreditFailed
	}
	return p.ProfileRepository.AdjustBalance(ctx, userID, delta)
}

var errCreditFailed = errors.New("credit failed")
