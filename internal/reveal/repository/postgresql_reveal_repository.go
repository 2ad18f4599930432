package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/xambitlan/disclosure/internal/database"
	apperrors "github.com/xambitlan/disclosure/internal/errors"
	revealDomain "github.com/xambitlan/disclosure/internal/reveal/domain"
)

// PostgreSQLRevealRequestRepository implements reveal request persistence for PostgreSQL.
type PostgreSQLRevealRequestRepository struct {
	db      *sql.DB
	dialect dialect
}

// NewPostgreSQLRevealRequestRepository creates a new PostgreSQL reveal request repository.
func NewPostgreSQLRevealRequestRepository(db *sql.DB) *PostgreSQLRevealRequestRepository {
	return &PostgreSQLRevealRequestRepository{db: db}
}

// Create inserts a new PENDING request.
func (p *PostgreSQLRevealRequestRepository) Create(ctx context.Context, request *revealDomain.RevealRequest) error {
	return p.dialect.insertRequest(ctx, p.db, request)
}

// GetByID retrieves a request by ID.
func (p *PostgreSQLRevealRequestRepository) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*revealDomain.RevealRequest, error) {
	return p.dialect.getRequest(ctx, p.db, id)
}

// Update applies a transition if the stored version matches.
func (p *PostgreSQLRevealRequestRepository) Update(
	ctx context.Context,
	request *revealDomain.RevealRequest,
	expectedVersion int64,
) error {
	return p.dialect.updateRequest(ctx, p.db, request, expectedVersion)
}

// List returns one side of a participant's requests, newest first.
func (p *PostgreSQLRevealRequestRepository) List(
	ctx context.Context,
	participantID string,
	filter *revealDomain.ListFilter,
) ([]*revealDomain.RevealRequest, error) {
	query, args := p.dialect.listQuery(participantID, filter)
	return p.dialect.queryRequests(ctx, p.db, query, args)
}

// ListStale returns overdue PENDING and APPROVED requests.
func (p *PostgreSQLRevealRequestRepository) ListStale(
	ctx context.Context,
	filter *revealDomain.StaleFilter,
) ([]*revealDomain.RevealRequest, error) {
	query, args := p.dialect.staleQuery(filter)
	return p.dialect.queryRequests(ctx, p.db, query, args)
}

// SQLServiceDirectory reads the services table maintained by the marketplace.
type SQLServiceDirectory struct {
	db    *sql.DB
	query string
}

// NewPostgreSQLServiceDirectory creates a service directory for PostgreSQL.
func NewPostgreSQLServiceDirectory(db *sql.DB) *SQLServiceDirectory {
	return &SQLServiceDirectory{db: db, query: `SELECT id, provider_id, title FROM services WHERE id = $1`}
}

// NewMySQLServiceDirectory creates a service directory for MySQL.
func NewMySQLServiceDirectory(db *sql.DB) *SQLServiceDirectory {
	return &SQLServiceDirectory{db: db, query: `SELECT id, provider_id, title FROM services WHERE id = ?`}
}

// GetService resolves a service to its provider.
func (s *SQLServiceDirectory) GetService(ctx context.Context, serviceID string) (*revealDomain.Service, error) {
	var service revealDomain.Service
	err := database.GetTx(ctx, s.db).QueryRowContext(ctx, s.query, serviceID).Scan(
		&service.ID,
		&service.ProviderID,
		&service.Title,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, revealDomain.ErrServiceNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get service")
	}
	return &service, nil
}

// SQLPaymentLedger verifies payments recorded by the escrow collaborator in the payments table.
type SQLPaymentLedger struct {
	db    *sql.DB
	query string
}

// NewPostgreSQLPaymentLedger creates a payment ledger for PostgreSQL.
func NewPostgreSQLPaymentLedger(db *sql.DB) *SQLPaymentLedger {
	return &SQLPaymentLedger{
		db: db,
		query: `SELECT COUNT(*) FROM payments
			  WHERE reference = $1 AND client_id = $2 AND service_id = $3 AND status = 'confirmed'`,
	}
}

// NewMySQLPaymentLedger creates a payment ledger for MySQL.
func NewMySQLPaymentLedger(db *sql.DB) *SQLPaymentLedger {
	return &SQLPaymentLedger{
		db: db,
		query: `SELECT COUNT(*) FROM payments
			  WHERE reference = ? AND client_id = ? AND service_id = ? AND status = 'confirmed'`,
	}
}

// VerifyPayment reports whether paymentRef is a confirmed payment by clientID for serviceID.
func (s *SQLPaymentLedger) VerifyPayment(ctx context.Context, paymentRef, clientID, serviceID string) (bool, error) {
	var count int
	if err := database.GetTx(ctx, s.db).QueryRowContext(ctx, s.query, paymentRef, clientID, serviceID).Scan(&count); err != nil {
		return false, apperrors.Wrap(err, "failed to verify payment")
	}
	return count > 0, nil
}
