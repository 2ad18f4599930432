// Package repository implements contact vault persistence for PostgreSQL, MySQL and memory.
package repository

import (
	"context"
	"database/sql"
	"errors"

	contactDomain "github.com/xambitlan/disclosure/internal/contact/domain"
	"github.com/xambitlan/disclosure/internal/database"
	apperrors "github.com/xambitlan/disclosure/internal/errors"
)

// PostgreSQLContactRepository implements contact vault persistence for PostgreSQL.
type PostgreSQLContactRepository struct {
	db *sql.DB
}

// NewPostgreSQLContactRepository creates a new PostgreSQL contact repository.
func NewPostgreSQLContactRepository(db *sql.DB) *PostgreSQLContactRepository {
	return &PostgreSQLContactRepository{db: db}
}

// Upsert inserts the provider's entry or replaces its envelope and hash, keeping created_at.
func (p *PostgreSQLContactRepository) Upsert(ctx context.Context, vault *contactDomain.ContactVault) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO contact_vaults (provider_id, envelope, contact_hash, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5)
			  ON CONFLICT (provider_id) DO UPDATE
			  SET envelope = EXCLUDED.envelope,
			      contact_hash = EXCLUDED.contact_hash,
			      updated_at = EXCLUDED.updated_at`

	_, err := querier.ExecContext(
		ctx,
		query,
		vault.ProviderID,
		vault.Envelope,
		vault.ContactHash,
		vault.CreatedAt,
		vault.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to upsert contact")
	}
	return nil
}

// GetByProviderID retrieves the provider's vault entry.
func (p *PostgreSQLContactRepository) GetByProviderID(
	ctx context.Context,
	providerID string,
) (*contactDomain.ContactVault, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT provider_id, envelope, contact_hash, created_at, updated_at
			  FROM contact_vaults
			  WHERE provider_id = $1`

	return scanVault(querier.QueryRowContext(ctx, query, providerID))
}

func scanVault(row *sql.Row) (*contactDomain.ContactVault, error) {
	var vault contactDomain.ContactVault
	err := row.Scan(
		&vault.ProviderID,
		&vault.Envelope,
		&vault.ContactHash,
		&vault.CreatedAt,
		&vault.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, contactDomain.ErrContactNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get contact")
	}
	return &vault, nil
}
