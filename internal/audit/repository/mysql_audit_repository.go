package repository

import (
	"context"
	"database/sql"
	"errors"

	auditDomain "github.com/xambitlan/disclosure/internal/audit/domain"
	"github.com/xambitlan/disclosure/internal/database"
	apperrors "github.com/xambitlan/disclosure/internal/errors"
)

// MySQLAuditRepository implements audit chain persistence for MySQL.
type MySQLAuditRepository struct {
	db *sql.DB
}

// NewMySQLAuditRepository creates a new MySQL audit repository.
func NewMySQLAuditRepository(db *sql.DB) *MySQLAuditRepository {
	return &MySQLAuditRepository{db: db}
}

// LastEntry returns the chain head. FOR UPDATE makes InnoDB read the latest
// committed row instead of the transaction snapshot.
func (m *MySQLAuditRepository) LastEntry(
	ctx context.Context,
	resourceType, resourceID string,
) (*auditDomain.AuditEntry, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, user_id, action, resource_type, resource_id, details, sequence,
				  previous_hash, chain_hash, created_at
			  FROM audit_entries
			  WHERE resource_type = ? AND resource_id = ?
			  ORDER BY sequence DESC
			  LIMIT 1
			  FOR UPDATE`

	entry, err := scanAuditEntry(querier.QueryRowContext(ctx, query, resourceType, resourceID), true)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auditDomain.ErrChainNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get audit chain head")
	}
	return entry, nil
}

// Create inserts an entry. A duplicate sequence is reported as ErrSequenceConflict;
// InnoDB only rolls back the failed statement, not the transaction.
func (m *MySQLAuditRepository) Create(ctx context.Context, entry *auditDomain.AuditEntry) error {
	querier := database.GetTx(ctx, m.db)

	id, err := entry.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit entry id")
	}

	details, err := marshalDetails(entry.Details)
	if err != nil {
		return err
	}

	query := `INSERT INTO audit_entries (id, user_id, action, resource_type, resource_id, details,
				  sequence, previous_hash, chain_hash, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		entry.UserID,
		string(entry.Action),
		entry.ResourceType,
		entry.ResourceID,
		details,
		entry.Sequence,
		entry.PreviousHash,
		entry.ChainHash,
		entry.Timestamp,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return auditDomain.ErrSequenceConflict
		}
		return apperrors.Wrap(err, "failed to create audit entry")
	}
	return nil
}

// ListByResource returns a chain page ordered by sequence ascending.
func (m *MySQLAuditRepository) ListByResource(
	ctx context.Context,
	resourceType, resourceID string,
	offset, limit int,
) ([]*auditDomain.AuditEntry, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, user_id, action, resource_type, resource_id, details, sequence,
				  previous_hash, chain_hash, created_at
			  FROM audit_entries
			  WHERE resource_type = ? AND resource_id = ?
			  ORDER BY sequence ASC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, resourceType, resourceID, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit entries")
	}
	defer rows.Close() //nolint:errcheck

	entries := make([]*auditDomain.AuditEntry, 0)
	for rows.Next() {
		entry, err := scanAuditEntry(rows, true)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan audit entry")
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit entries")
	}
	return entries, nil
}

// ListResources returns every chain owner.
func (m *MySQLAuditRepository) ListResources(ctx context.Context) ([]auditDomain.ResourceRef, error) {
	querier := database.GetTx(ctx, m.db)
	return listResources(ctx, querier)
}
