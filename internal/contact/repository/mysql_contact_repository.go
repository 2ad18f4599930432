package repository

import (
	"context"
	"database/sql"

	contactDomain "github.com/xambitlan/disclosure/internal/contact/domain"
	"github.com/xambitlan/disclosure/internal/database"
	apperrors "github.com/xambitlan/disclosure/internal/errors"
)

// MySQLContactRepository implements contact vault persistence for MySQL.
type MySQLContactRepository struct {
	db *sql.DB
}

// NewMySQLContactRepository creates a new MySQL contact repository.
func NewMySQLContactRepository(db *sql.DB) *MySQLContactRepository {
	return &MySQLContactRepository{db: db}
}

// Upsert inserts the provider's entry or replaces its envelope and hash, keeping created_at.
func (m *MySQLContactRepository) Upsert(ctx context.Context, vault *contactDomain.ContactVault) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO contact_vaults (provider_id, envelope, contact_hash, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?)
			  ON DUPLICATE KEY UPDATE
			  envelope = VALUES(envelope),
			  contact_hash = VALUES(contact_hash),
			  updated_at = VALUES(updated_at)`

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
func (m *MySQLContactRepository) GetByProviderID(
	ctx context.Context,
	providerID string,
) (*contactDomain.ContactVault, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT provider_id, envelope, contact_hash, created_at, updated_at
			  FROM contact_vaults
			  WHERE provider_id = ?`

	return scanVault(querier.QueryRowContext(ctx, query, providerID))
}
