// Package repository implements reveal request persistence and the SQL-backed
// service directory and payment ledger.
//
// Provides PostgreSQL, MySQL and in-memory implementations with transaction support
// via database.GetTx(). PostgreSQL uses native UUID types, MySQL uses BINARY(16) types.
// The one-PENDING-request-per-pair rule is a partial unique index on PostgreSQL and a
// unique generated column on MySQL.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/xambitlan/disclosure/internal/database"
	apperrors "github.com/xambitlan/disclosure/internal/errors"
	revealDomain "github.com/xambitlan/disclosure/internal/reveal/domain"
)

const requestColumns = `id, service_id, client_id, provider_id, status, payment_ref, message,
			  consent_signature, consent_message, access_token, expires_at, created_at, updated_at, version`

// dialect holds what differs between the PostgreSQL and MySQL queries.
type dialect struct {
	binaryIDs bool
}

// builder accumulates WHERE conditions and their arguments.
type builder struct {
	dialect
	conditions []string
	args       []any
}

func (b *builder) placeholder() string {
	if b.binaryIDs {
		return "?"
	}
	return "$" + strconv.Itoa(len(b.args))
}

// where adds "column op placeholder" with value.
func (b *builder) where(column, op string, value any) {
	b.args = append(b.args, value)
	b.conditions = append(b.conditions, column+" "+op+" "+b.placeholder())
}

// bind adds a positional argument and returns its placeholder.
func (b *builder) bind(value any) string {
	b.args = append(b.args, value)
	return b.placeholder()
}

func (b *builder) clause() string {
	if len(b.conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.conditions, " AND ")
}

func (d dialect) id(id uuid.UUID) (any, error) {
	if !d.binaryIDs {
		return id, nil
	}
	return id.MarshalBinary()
}

func participantColumn(role revealDomain.Role) string {
	if role == revealDomain.RoleProvider {
		return "provider_id"
	}
	return "client_id"
}

// listQuery builds the List query for one side of participantID's requests.
func (d dialect) listQuery(participantID string, filter *revealDomain.ListFilter) (string, []any) {
	b := &builder{dialect: d}
	b.where(participantColumn(filter.Role), "=", participantID)
	if filter.Status != "" {
		b.where("status", "=", string(filter.Status))
	}

	query := `SELECT ` + requestColumns + ` FROM reveal_requests` + b.clause() +
		` ORDER BY created_at DESC, id DESC LIMIT ` + b.bind(filter.Limit) + ` OFFSET ` + b.bind(filter.Offset)
	return query, b.args
}

// staleQuery builds the ListStale query, oldest expiry first.
func (d dialect) staleQuery(filter *revealDomain.StaleFilter) (string, []any) {
	b := &builder{dialect: d}
	b.conditions = append(b.conditions, "status IN ('PENDING', 'APPROVED')")
	b.where("expires_at", "<", filter.Now)
	if filter.ServiceID != "" {
		b.where("service_id", "=", filter.ServiceID)
		b.where("client_id", "=", filter.ClientID)
	}
	if filter.ParticipantID != "" {
		b.where(participantColumn(filter.Role), "=", filter.ParticipantID)
	}

	query := `SELECT ` + requestColumns + ` FROM reveal_requests` + b.clause() + ` ORDER BY expires_at ASC`
	if filter.Limit > 0 {
		query += ` LIMIT ` + b.bind(filter.Limit)
	}
	return query, b.args
}

// paymentRefIndex binds each payment reference to a single request.
const paymentRefIndex = "idx_reveal_requests_payment_ref"

// insertRequest runs the shared INSERT. A unique violation on paymentRefIndex is
// a reused payment; any other is the pending-pair index.
func (d dialect) insertRequest(ctx context.Context, db *sql.DB, request *revealDomain.RevealRequest) error {
	id, err := d.id(request.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal reveal request id")
	}

	b := &builder{dialect: d}
	values := []string{
		b.bind(id), b.bind(request.ServiceID), b.bind(request.ClientID), b.bind(request.ProviderID),
		b.bind(string(request.Status)), b.bind(request.PaymentRef), b.bind(request.Message),
		b.bind(request.ConsentSignature), b.bind(request.ConsentMessage), b.bind(request.AccessToken),
		b.bind(request.ExpiresAt), b.bind(request.CreatedAt), b.bind(request.UpdatedAt), b.bind(request.Version),
	}
	query := `INSERT INTO reveal_requests (` + requestColumns + `)
			  VALUES (` + strings.Join(values, ", ") + `)`

	_, err = database.GetTx(ctx, db).ExecContext(ctx, query, b.args...)
	if err != nil {
		switch {
		case database.IsUniqueViolationOn(err, paymentRefIndex):
			return revealDomain.ErrPaymentAlreadyUsed
		case database.IsUniqueViolation(err):
			return revealDomain.ErrDuplicateRequest
		}
		return apperrors.Wrap(err, "failed to create reveal request")
	}
	return nil
}

// updateRequest writes the mutable columns guarded by the expected version.
func (d dialect) updateRequest(
	ctx context.Context,
	db *sql.DB,
	request *revealDomain.RevealRequest,
	expectedVersion int64,
) error {
	id, err := d.id(request.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal reveal request id")
	}

	b := &builder{dialect: d}
	query := `UPDATE reveal_requests
			  SET status = ` + b.bind(string(request.Status)) + `,
			      consent_signature = ` + b.bind(request.ConsentSignature) + `,
			      consent_message = ` + b.bind(request.ConsentMessage) + `,
			      access_token = ` + b.bind(request.AccessToken) + `,
			      expires_at = ` + b.bind(request.ExpiresAt) + `,
			      updated_at = ` + b.bind(request.UpdatedAt) + `,
			      version = ` + b.bind(request.Version) + `
			  WHERE id = ` + b.bind(id) + ` AND version = ` + b.bind(expectedVersion)

	result, err := database.GetTx(ctx, db).ExecContext(ctx, query, b.args...)
	if err != nil {
		return apperrors.Wrap(err, "failed to update reveal request")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return revealDomain.ErrVersionConflict
	}
	return nil
}

func (d dialect) getRequest(ctx context.Context, db *sql.DB, requestID uuid.UUID) (*revealDomain.RevealRequest, error) {
	id, err := d.id(requestID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal reveal request id")
	}

	b := &builder{dialect: d}
	b.where("id", "=", id)
	query := `SELECT ` + requestColumns + ` FROM reveal_requests` + b.clause()

	request, err := scanRequest(database.GetTx(ctx, db).QueryRowContext(ctx, query, b.args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, revealDomain.ErrRevealRequestNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get reveal request")
	}
	return request, nil
}

func (d dialect) queryRequests(
	ctx context.Context,
	db *sql.DB,
	query string,
	args []any,
) ([]*revealDomain.RevealRequest, error) {
	rows, err := database.GetTx(ctx, db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list reveal requests")
	}
	defer rows.Close() //nolint:errcheck

	requests := make([]*revealDomain.RevealRequest, 0)
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan reveal request")
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate reveal requests")
	}
	return requests, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanRequest reads requestColumns. uuid.UUID scans both the PostgreSQL text
// form and MySQL BINARY(16).
func scanRequest(row rowScanner) (*revealDomain.RevealRequest, error) {
	var request revealDomain.RevealRequest
	var status string
	err := row.Scan(
		&request.ID,
		&request.ServiceID,
		&request.ClientID,
		&request.ProviderID,
		&status,
		&request.PaymentRef,
		&request.Message,
		&request.ConsentSignature,
		&request.ConsentMessage,
		&request.AccessToken,
		&request.ExpiresAt,
		&request.CreatedAt,
		&request.UpdatedAt,
		&request.Version,
	)
	if err != nil {
		return nil, err
	}
	request.Status = revealDomain.Status(status)
	return &request, nil
}
