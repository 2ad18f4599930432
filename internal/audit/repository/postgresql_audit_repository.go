// Package repository implements audit chain persistence.
//
// Provides PostgreSQL, MySQL and in-memory implementations with transaction support
// via database.GetTx(). PostgreSQL uses native UUID types, MySQL uses BINARY(16) types.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	auditDomain "github.com/xambitlan/disclosure/internal/audit/domain"
	"github.com/xambitlan/disclosure/internal/database"
	apperrors "github.com/xambitlan/disclosure/internal/errors"
)

// PostgreSQLAuditRepository implements audit chain persistence for PostgreSQL.
type PostgreSQLAuditRepository struct {
	db *sql.DB
}

// NewPostgreSQLAuditRepository creates a new PostgreSQL audit repository.
func NewPostgreSQLAuditRepository(db *sql.DB) *PostgreSQLAuditRepository {
	return &PostgreSQLAuditRepository{db: db}
}

// LastEntry returns the chain head, locking it for the rest of the transaction.
func (p *PostgreSQLAuditRepository) LastEntry(
	ctx context.Context,
	resourceType, resourceID string,
) (*auditDomain.AuditEntry, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, user_id, action, resource_type, resource_id, details, sequence,
				  previous_hash, chain_hash, created_at
			  FROM audit_entries
			  WHERE resource_type = $1 AND resource_id = $2
			  ORDER BY sequence DESC
			  LIMIT 1
			  FOR UPDATE`

	entry, err := scanAuditEntry(querier.QueryRowContext(ctx, query, resourceType, resourceID), false)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auditDomain.ErrChainNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get audit chain head")
	}
	return entry, nil
}

// Create inserts an entry. ON CONFLICT keeps the surrounding transaction usable
// so the caller can retry against the new head.
func (p *PostgreSQLAuditRepository) Create(ctx context.Context, entry *auditDomain.AuditEntry) error {
	querier := database.GetTx(ctx, p.db)

	details, err := marshalDetails(entry.Details)
	if err != nil {
		return err
	}

	query := `INSERT INTO audit_entries (id, user_id, action, resource_type, resource_id, details,
				  sequence, previous_hash, chain_hash, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			  ON CONFLICT (resource_type, resource_id, sequence) DO NOTHING`

	result, err := querier.ExecContext(
		ctx,
		query,
		entry.ID,
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
		return apperrors.Wrap(err, "failed to create audit entry")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return auditDomain.ErrSequenceConflict
	}
	return nil
}

// ListByResource returns a chain page ordered by sequence ascending.
func (p *PostgreSQLAuditRepository) ListByResource(
	ctx context.Context,
	resourceType, resourceID string,
	offset, limit int,
) ([]*auditDomain.AuditEntry, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, user_id, action, resource_type, resource_id, details, sequence,
				  previous_hash, chain_hash, created_at
			  FROM audit_entries
			  WHERE resource_type = $1 AND resource_id = $2
			  ORDER BY sequence ASC
			  LIMIT $3 OFFSET $4`

	rows, err := querier.QueryContext(ctx, query, resourceType, resourceID, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit entries")
	}
	defer rows.Close() //nolint:errcheck

	entries := make([]*auditDomain.AuditEntry, 0)
	for rows.Next() {
		entry, err := scanAuditEntry(rows, false)
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
func (p *PostgreSQLAuditRepository) ListResources(ctx context.Context) ([]auditDomain.ResourceRef, error) {
	querier := database.GetTx(ctx, p.db)
	return listResources(ctx, querier)
}

func listResources(ctx context.Context, querier database.Querier) ([]auditDomain.ResourceRef, error) {
	query := `SELECT DISTINCT resource_type, resource_id FROM audit_entries ORDER BY resource_type, resource_id`

	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit chains")
	}
	defer rows.Close() //nolint:errcheck

	refs := make([]auditDomain.ResourceRef, 0)
	for rows.Next() {
		var ref auditDomain.ResourceRef
		if err := rows.Scan(&ref.ResourceType, &ref.ResourceID); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan audit chain")
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit chains")
	}
	return refs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanAuditEntry reads one row. binaryID selects MySQL's BINARY(16) id encoding.
func scanAuditEntry(row rowScanner, binaryID bool) (*auditDomain.AuditEntry, error) {
	var (
		entry   auditDomain.AuditEntry
		idBytes []byte
		action  string
		details []byte
	)

	var err error
	if binaryID {
		err = row.Scan(&idBytes, &entry.UserID, &action, &entry.ResourceType, &entry.ResourceID,
			&details, &entry.Sequence, &entry.PreviousHash, &entry.ChainHash, &entry.Timestamp)
	} else {
		err = row.Scan(&entry.ID, &entry.UserID, &action, &entry.ResourceType, &entry.ResourceID,
			&details, &entry.Sequence, &entry.PreviousHash, &entry.ChainHash, &entry.Timestamp)
	}
	if err != nil {
		return nil, err
	}

	if binaryID {
		if err := entry.ID.UnmarshalBinary(idBytes); err != nil {
			return nil, err
		}
	}

	entry.Action = auditDomain.Action(action)
	if len(details) > 0 {
		if err := json.Unmarshal(details, &entry.Details); err != nil {
			return nil, err
		}
	}
	entry.Timestamp = entry.Timestamp.UTC()
	return &entry, nil
}

func marshalDetails(details map[string]string) ([]byte, error) {
	if len(details) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(details)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal audit details")
	}
	return b, nil
}
