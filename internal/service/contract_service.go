package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/pokehire/internal/domain"
	"github.com/vedran77/pokehire/internal/logging"
	"github.com/vedran77/pokehire/internal/repository"
)

var (
	ErrContractNotFound     = errors.New("contract not found")
	ErrNotContractor        = errors.New("only the contractor can perform this action")
	ErrInvalidContractState = errors.New("contract status does not allow this action")
	ErrInsufficientFunds    = errors.New("client has insufficient balance")
	ErrContractConflict     = errors.New("contract was modified concurrently")
	ErrInvalidContractor    = errors.New("contractor not found")
	ErrSelfContract         = errors.New("cannot create a contract with yourself")
)

// Contract event names sent through the Notifier.
const (
	EventContractCreated   = "contract.created"
	EventContractAccepted  = "contract.accepted"
	EventContractRejected  = "contract.rejected"
	EventContractCompleted = "contract.completed"
)

// Notifier pushes contract events to both parties of a contract.
type Notifier interface {
	NotifyContract(event string, contract *domain.Contract)
}

type ContractService struct {
	store    repository.Store
	log      logging.Logger
	notifier Notifier
}

func NewContractService(store repository.Store, log logging.Logger) *ContractService {
	return &ContractService{
		store: store,
		log:   log,
	}
}

// SetNotifier sets the real-time notifier (optional dependency).
func (s *ContractService) SetNotifier(n Notifier) {
	s.notifier = n
}

type CreateContractInput struct {
	ContractorID string `json:"contractorId"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Amount       int64  `json:"amount"`
}

// Create opens a pending contract with the caller as client.
func (s *ContractService) Create(ctx context.Context, clientID uuid.UUID, input CreateContractInput) (*domain.Contract, error) {
	contractorID, err := uuid.Parse(strings.TrimSpace(input.ContractorID))
	if err != nil {
		return nil, ErrInvalidContractor
	}
	if contractorID == clientID {
		return nil, ErrSelfContract
	}

	contractor, err := s.store.Profiles().GetByUserID(ctx, contractorID)
	if err != nil {
		return nil, fmt.Errorf("looking up contractor: %w", err)
	}
	if contractor == nil || contractor.ProfileType != domain.ProfileContractor {
		return nil, ErrInvalidContractor
	}

	now := time.Now()
	c := &domain.Contract{
		ID:           uuid.New(),
		ClientID:     clientID,
		ContractorID: contractorID,
		Title:        strings.TrimSpace(input.Title),
		Description:  strings.TrimSpace(input.Description),
		Amount:       input.Amount,
		Status:       domain.ContractPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.Contracts().Create(ctx, c); err != nil {
		return nil, fmt.Errorf("creating contract: %w", err)
	}

	s.notify(EventContractCreated, c)
	return c, nil
}

func (s *ContractService) Accept(ctx context.Context, userID, contractID uuid.UUID) (*domain.Contract, error) {
	c, err := s.transition(ctx, userID, contractID, domain.ContractActive)
	if err != nil {
		return nil, err
	}
	s.notify(EventContractAccepted, c)
	return c, nil
}

func (s *ContractService) Reject(ctx context.Context, userID, contractID uuid.UUID) (*domain.Contract, error) {
	c, err := s.transition(ctx, userID, contractID, domain.ContractRejected)
	if err != nil {
		return nil, err
	}
	s.notify(EventContractRejected, c)
	return c, nil
}

// Complete marks an active contract completed and moves its amount from the
// client's balance to the contractor's. The status change and both balance
// writes commit together.
func (s *ContractService) Complete(ctx context.Context, userID, contractID uuid.UUID) (*domain.Contract, error) {
	var completed *domain.Contract

	err := s.store.RunInTx(ctx, func(ctx context.Context, tx repository.Store) error {
		c, err := tx.Contracts().GetByIDForUpdate(ctx, contractID)
		if err != nil {
			return err
		}
		if err := checkTransition(c, userID, domain.ContractCompleted); err != nil {
			return err
		}

		client, contractor, err := lockParties(ctx, tx, c)
		if err != nil {
			return err
		}
		if client.Balance < c.Amount {
			return ErrInsufficientFunds
		}

		ok, err := tx.Contracts().UpdateStatus(ctx, c.ID, domain.ContractActive, domain.ContractCompleted)
		if err != nil {
			return fmt.Errorf("updating contract status: %w", err)
		}
		if !ok {
			return ErrContractConflict
		}

		if _, err := tx.Profiles().AdjustBalance(ctx, client.UserID, -c.Amount); err != nil {
			return fmt.Errorf("debiting client: %w", err)
		}
		if _, err := tx.Profiles().AdjustBalance(ctx, contractor.UserID, c.Amount); err != nil {
			return fmt.Errorf("crediting contractor: %w", err)
		}

		c.Status = domain.ContractCompleted
		c.UpdatedAt = time.Now()
		completed = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "contract completed",
		"contract_id", completed.ID,
		"client_id", completed.ClientID,
		"contractor_id", completed.ContractorID,
		"amount", completed.Amount,
	)
	s.notify(EventContractCompleted, completed)
	return completed, nil
}

// ListForUser returns every contract the user is a party to, newest first.
func (s *ContractService) ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Contract, error) {
	contracts, err := s.store.Contracts().ListByParty(ctx, userID)
	if err != nil {
		return nil, err
	}
	if contracts == nil {
		contracts = []domain.Contract{}
	}
	return contracts, nil
}

func (s *ContractService) transition(ctx context.Context, userID, contractID uuid.UUID, to domain.ContractStatus) (*domain.Contract, error) {
	c, err := s.store.Contracts().GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(c, userID, to); err != nil {
		return nil, err
	}

	ok, err := s.store.Contracts().UpdateStatus(ctx, c.ID, c.Status, to)
	if err != nil {
		return nil, fmt.Errorf("updating contract status: %w", err)
	}
	if !ok {
		return nil, ErrContractConflict
	}

	c.Status = to
	c.UpdatedAt = time.Now()
	return c, nil
}

// checkTransition applies the authorization rule before the state rule: only
// the contractor may move a contract forward.
func checkTransition(c *domain.Contract, userID uuid.UUID, to domain.ContractStatus) error {
	if c == nil {
		return ErrContractNotFound
	}
	if c.ContractorID != userID {
		return ErrNotContractor
	}
	if !domain.CanTransition(c.Status, to) {
		return ErrInvalidContractState
	}
	return nil
}

// lockParties locks both profiles in user ID order so concurrent completions
// touching the same pair cannot deadlock.
func lockParties(ctx context.Context, tx repository.Store, c *domain.Contract) (client, contractor *domain.Profile, err error) {
	ids := []uuid.UUID{c.ClientID, c.ContractorID}
	if ids[0].String() > ids[1].String() {
		ids[0], ids[1] = ids[1], ids[0]
	}

	locked := make(map[uuid.UUID]*domain.Profile, 2)
	for _, id := range ids {
		p, err := tx.Profiles().GetByUserIDForUpdate(ctx, id)
		if err != nil {
			return nil, nil, fmt.Errorf("locking profile: %w", err)
		}
		if p == nil {
			return nil, nil, ErrProfileNotFound
		}
		locked[id] = p
	}
	return locked[c.ClientID], locked[c.ContractorID], nil
}

func (s *ContractService) notify(event string, c *domain.Contract) {
	if s.notifier != nil {
		s.notifier.NotifyContract(event, c)
	}
}
