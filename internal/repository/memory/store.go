// Package memory is a map-backed implementation of the repository
// interfaces. It is used by tests and by the server when STORE=memory.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/pokehire/internal/domain"
	"github.com/vedran77/pokehire/internal/repository"
)

type tables struct {
	users     map[uuid.UUID]domain.User
	profiles  map[uuid.UUID]domain.Profile // keyed by user ID
	contracts map[uuid.UUID]domain.Contract
	teams     map[uuid.UUID][]domain.Team // keyed by user ID
}

func newTables() tables {
	return tables{
		users:     make(map[uuid.UUID]domain.User),
		profiles:  make(map[uuid.UUID]domain.Profile),
		contracts: make(map[uuid.UUID]domain.Contract),
		teams:     make(map[uuid.UUID][]domain.Team),
	}
}

func (t tables) clone() tables {
	c := newTables()
	for k, v := range t.users {
		c.users[k] = v
	}
	for k, v := range t.profiles {
		c.profiles[k] = v
	}
	for k, v := range t.contracts {
		c.contracts[k] = v
	}
	for k, v := range t.teams {
		c.teams[k] = cloneTeams(v)
	}
	return c
}

type state struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	t    tables
}

// rlock is the read counterpart of lock. Reads outside a transaction wait
// for the open one, so they never see writes that may still roll back.
func (st *state) rlock(inTx bool) func() {
	if !inTx {
		st.txMu.Lock()
	}
	st.mu.RLock()
	return func() {
		st.mu.RUnlock()
		if !inTx {
			st.txMu.Unlock()
		}
	}
}

// lock takes the write lock and returns its release. A write outside a
// transaction also waits for the open transaction, so a rollback never
// discards it.
func (st *state) lock(inTx bool) func() {
	if !inTx {
		st.txMu.Lock()
	}
	st.mu.Lock()
	return func() {
		st.mu.Unlock()
		if !inTx {
			st.txMu.Unlock()
		}
	}
}

// Store holds all data in process memory. Transactions are serialized and
// roll back by restoring a snapshot taken at begin. Operations outside a
// transaction wait for the open one, so nothing observes uncommitted data.
type Store struct {
	s    *state
	inTx bool
}

func NewStore() *Store {
	return &Store{s: &state{t: newTables()}}
}

func (s *Store) Users() repository.UserRepository         { return userRepo{s.s, s.inTx} }
func (s *Store) Profiles() repository.ProfileRepository   { return profileRepo{s.s, s.inTx} }
func (s *Store) Contracts() repository.ContractRepository { return contractRepo{s.s, s.inTx} }
func (s *Store) Teams() repository.TeamRepository         { return teamRepo{s.s, s.inTx} }

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) (err error) {
	if s.inTx {
		return fn(ctx, s)
	}

	s.s.txMu.Lock()
	defer s.s.txMu.Unlock()

	s.s.mu.RLock()
	snapshot := s.s.t.clone()
	s.s.mu.RUnlock()

	defer func() {
		p := recover()
		if err != nil || p != nil {
			s.s.mu.Lock()
			s.s.t = snapshot
			s.s.mu.Unlock()
		}
		if p != nil {
			panic(p)
		}
	}()

	return fn(ctx, &Store{s: s.s, inTx: true})
}

type userRepo struct {
	s  *state
	tx bool
}

func (r userRepo) Create(_ context.Context, user *domain.User) error {
	defer r.s.lock(r.tx)()

	for _, u := range r.s.t.users {
		if u.Email == user.Email {
			return fmt.Errorf("%w: users_email_key", repository.ErrDuplicate)
		}
	}
	if _, ok := r.s.t.users[user.ID]; ok {
		return fmt.Errorf("%w: users_pkey", repository.ErrDuplicate)
	}
	r.s.t.users[user.ID] = *user
	return nil
}

func (r userRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	defer r.s.rlock(r.tx)()

	u, ok := r.s.t.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	defer r.s.rlock(r.tx)()

	for _, u := range r.s.t.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

type profileRepo struct {
	s  *state
	tx bool
}

func (r profileRepo) Create(_ context.Context, p *domain.Profile) error {
	defer r.s.lock(r.tx)()

	if _, ok := r.s.t.profiles[p.UserID]; ok {
		return fmt.Errorf("%w: profiles_user_id_key", repository.ErrDuplicate)
	}
	r.s.t.profiles[p.UserID] = *p
	return nil
}

func (r profileRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*domain.Profile, error) {
	defer r.s.rlock(r.tx)()

	p, ok := r.s.t.profiles[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r profileRepo) GetByUserIDForUpdate(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	return r.GetByUserID(ctx, userID)
}

func (r profileRepo) AdjustBalance(_ context.Context, userID uuid.UUID, delta int64) (*domain.Profile, error) {
	defer r.s.lock(r.tx)()

	p, ok := r.s.t.profiles[userID]
	if !ok {
		return nil, nil
	}
	p.Balance += delta
	p.UpdatedAt = time.Now()
	r.s.t.profiles[userID] = p
	return &p, nil
}

func (r profileRepo) ListByType(_ context.Context, profileType domain.ProfileType) ([]domain.Profile, error) {
	defer r.s.rlock(r.tx)()

	var out []domain.Profile
	for _, p := range r.s.t.profiles {
		if p.ProfileType == profileType {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FullName != out[j].FullName {
			return out[i].FullName < out[j].FullName
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

type contractRepo struct {
	s  *state
	tx bool
}

func (r contractRepo) Create(_ context.Context, c *domain.Contract) error {
	defer r.s.lock(r.tx)()

	if _, ok := r.s.t.contracts[c.ID]; ok {
		return fmt.Errorf("%w: contracts_pkey", repository.ErrDuplicate)
	}
	stored := *c
	stored.Client, stored.Contractor = nil, nil
	r.s.t.contracts[c.ID] = stored
	return nil
}

func (r contractRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Contract, error) {
	defer r.s.rlock(r.tx)()

	c, ok := r.s.t.contracts[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r contractRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Contract, error) {
	return r.GetByID(ctx, id)
}

func (r contractRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to domain.ContractStatus) (bool, error) {
	defer r.s.lock(r.tx)()

	c, ok := r.s.t.contracts[id]
	if !ok || c.Status != from {
		return false, nil
	}
	c.Status = to
	c.UpdatedAt = time.Now()
	r.s.t.contracts[id] = c
	return true, nil
}

func (r contractRepo) ListByParty(_ context.Context, userID uuid.UUID) ([]domain.Contract, error) {
	defer r.s.rlock(r.tx)()

	var out []domain.Contract
	for _, c := range r.s.t.contracts {
		if !c.IsParty(userID) {
			continue
		}
		c.Client = r.summary(c.ClientID)
		c.Contractor = r.summary(c.ContractorID)
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

// summary must be called with mu held.
func (r contractRepo) summary(userID uuid.UUID) *domain.PartySummary {
	ps := &domain.PartySummary{ID: userID}
	if u, ok := r.s.t.users[userID]; ok {
		ps.Email = u.Email
	}
	if p, ok := r.s.t.profiles[userID]; ok {
		ps.FullName = p.FullName
	}
	return ps
}

type teamRepo struct {
	s  *state
	tx bool
}

func (r teamRepo) DeleteByUser(_ context.Context, userID uuid.UUID) error {
	defer r.s.lock(r.tx)()

	delete(r.s.t.teams, userID)
	return nil
}

func (r teamRepo) CreateMany(_ context.Context, teams []domain.Team) error {
	defer r.s.lock(r.tx)()

	for _, t := range teams {
		r.s.t.teams[t.UserID] = append(r.s.t.teams[t.UserID], cloneTeams([]domain.Team{t})...)
	}
	return nil
}

func (r teamRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.Team, error) {
	defer r.s.rlock(r.tx)()

	out := cloneTeams(r.s.t.teams[userID])
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func cloneTeams(in []domain.Team) []domain.Team {
	if in == nil {
		return nil
	}
	out := make([]domain.Team, len(in))
	for i, t := range in {
		t.Pokemons = slices.Clone(t.Pokemons)
		for j := range t.Pokemons {
			t.Pokemons[j].Types = slices.Clone(t.Pokemons[j].Types)
		}
		out[i] = t
	}
	return out
}
