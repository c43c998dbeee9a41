package domain

import (
	"time"

	"github.com/google/uuid"
)

type ContractStatus string

const (
	ContractPending   ContractStatus = "pending"
	ContractActive    ContractStatus = "active"
	ContractRejected  ContractStatus = "rejected"
	ContractCompleted ContractStatus = "completed"
)

var contractTransitions = map[ContractStatus][]ContractStatus{
	ContractPending: {ContractActive, ContractRejected},
	ContractActive:  {ContractCompleted},
}

// CanTransition reports whether a contract may move from one status to another.
// Rejected and completed have no outgoing edges.
func CanTransition(from, to ContractStatus) bool {
	for _, next := range contractTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s ContractStatus) Terminal() bool {
	return len(contractTransitions[s]) == 0
}

type Contract struct {
	ID           uuid.UUID      `json:"id"`
	ClientID     uuid.UUID      `json:"client_id"`
	ContractorID uuid.UUID      `json:"contractor_id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Amount       int64          `json:"amount"`
	Status       ContractStatus `json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`

	// Joined fields
	Client     *PartySummary `json:"client,omitempty"`
	Contractor *PartySummary `json:"contractor,omitempty"`
}

// IsParty reports whether the user is the client or contractor of c.
func (c *Contract) IsParty(userID uuid.UUID) bool {
	return c.ClientID == userID || c.ContractorID == userID
}

type PartySummary struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	FullName string    `json:"full_name,omitempty"`
}
