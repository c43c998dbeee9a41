package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/vedran77/pokehire/internal/domain"
)

const contractColumns = `id, client_id, contractor_id, title, description, amount, status, created_at, updated_at`

type ContractRepo struct {
	db DBTX
}

func NewContractRepo(db DBTX) *ContractRepo {
	return &ContractRepo{db: db}
}

func (r *ContractRepo) Create(ctx context.Context, c *domain.Contract) error {
	query := `
		INSERT INTO contracts (id, client_id, contractor_id, title, description, amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(ctx, query,
		c.ID, c.ClientID, c.ContractorID, c.Title, c.Description,
		c.Amount, string(c.Status), c.CreatedAt, c.UpdatedAt,
	)
	return mapError(err)
}

func (r *ContractRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Contract, error) {
	return r.scanContract(ctx, `SELECT `+contractColumns+` FROM contracts WHERE id = $1`, id)
}

func (r *ContractRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Contract, error) {
	return r.scanContract(ctx, `SELECT `+contractColumns+` FROM contracts WHERE id = $1 FOR UPDATE`, id)
}

func (r *ContractRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.ContractStatus) (bool, error) {
	query := `UPDATE contracts SET status = $3, updated_at = now() WHERE id = $1 AND status = $2`
	tag, err := r.db.Exec(ctx, query, id, string(from), string(to))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *ContractRepo) ListByParty(ctx context.Context, userID uuid.UUID) ([]domain.Contract, error) {
	query := `
		SELECT c.id, c.client_id, c.contractor_id, c.title, c.description, c.amount, c.status,
			c.created_at, c.updated_at,
			cu.email, COALESCE(cp.full_name, ''),
			ku.email, COALESCE(kp.full_name, '')
		FROM contracts c
		JOIN users cu ON cu.id = c.client_id
		JOIN users ku ON ku.id = c.contractor_id
		LEFT JOIN profiles cp ON cp.user_id = c.client_id
		LEFT JOIN profiles kp ON kp.user_id = c.contractor_id
		WHERE c.client_id = $1 OR c.contractor_id = $1
		ORDER BY c.created_at DESC, c.id`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contracts []domain.Contract
	for rows.Next() {
		var c domain.Contract
		var status string
		client := &domain.PartySummary{}
		contractor := &domain.PartySummary{}
		if err := rows.Scan(
			&c.ID, &c.ClientID, &c.ContractorID, &c.Title, &c.Description, &c.Amount, &status,
			&c.CreatedAt, &c.UpdatedAt,
			&client.Email, &client.FullName,
			&contractor.Email, &contractor.FullName,
		); err != nil {
			return nil, err
		}
		c.Status = domain.ContractStatus(status)
		client.ID = c.ClientID
		contractor.ID = c.ContractorID
		c.Client = client
		c.Contractor = contractor
		contracts = append(contracts, c)
	}
	return contracts, rows.Err()
}

func (r *ContractRepo) scanContract(ctx context.Context, query string, arg any) (*domain.Contract, error) {
	var c domain.Contract
	var status string
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&c.ID, &c.ClientID, &c.ContractorID, &c.Title, &c.Description,
		&c.Amount, &status, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c.Status = domain.ContractStatus(status)
	return &c, nil
}
