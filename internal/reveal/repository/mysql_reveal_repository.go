package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	revealDomain "github.com/xambitlan/disclosure/internal/reveal/domain"
)

// MySQLRevealRequestRepository implements reveal request persistence for MySQL.
type MySQLRevealRequestRepository struct {
	db      *sql.DB
	dialect dialect
}

// NewMySQLRevealRequestRepository creates a new MySQL reveal request repository.
func NewMySQLRevealRequestRepository(db *sql.DB) *MySQLRevealRequestRepository {
	return &MySQLRevealRequestRepository{db: db, dialect: dialect{binaryIDs: true}}
}

// Create inserts a new PENDING request. The pending_pair generated column is
// computed by MySQL and carries the unique key.
func (m *MySQLRevealRequestRepository) Create(ctx context.Context, request *revealDomain.RevealRequest) error {
	return m.dialect.insertRequest(ctx, m.db, request)
}

// GetByID retrieves a request by ID.
func (m *MySQLRevealRequestRepository) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*revealDomain.RevealRequest, error) {
	return m.dialect.getRequest(ctx, m.db, id)
}

// Update applies a transition if the stored version matches.
func (m *MySQLRevealRequestRepository) Update(
	ctx context.Context,
	request *revealDomain.RevealRequest,
	expectedVersion int64,
) error {
	return m.dialect.updateRequest(ctx, m.db, request, expectedVersion)
}

// List returns one side of a participant's requests, newest first.
func (m *MySQLRevealRequestRepository) List(
	ctx context.Context,
	participantID string,
	filter *revealDomain.ListFilter,
) ([]*revealDomain.RevealRequest, error) {
	query, args := m.dialect.listQuery(participantID, filter)
	return m.dialect.queryRequests(ctx, m.db, query, args)
}

// ListStale returns overdue PENDING and APPROVED requests.
func (m *MySQLRevealRequestRepository) ListStale(
	ctx context.Context,
	filter *revealDomain.StaleFilter,
) ([]*revealDomain.RevealRequest, error) {
	query, args := m.dialect.staleQuery(filter)
	return m.dialect.queryRequests(ctx, m.db, query, args)
}
