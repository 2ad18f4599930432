// Package repository implements challenge and session persistence.
//
// Provides PostgreSQL, MySQL and in-memory implementations with transaction support
// via database.GetTx(). PostgreSQL uses native UUID types, MySQL uses BINARY(16) types.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/xambitlan/disclosure/internal/database"
	apperrors "github.com/xambitlan/disclosure/internal/errors"
	identityDomain "github.com/xambitlan/disclosure/internal/identity/domain"
)

// PostgreSQLChallengeRepository implements challenge persistence for PostgreSQL.
type PostgreSQLChallengeRepository struct {
	db *sql.DB
}

// NewPostgreSQLChallengeRepository creates a new PostgreSQL challenge repository.
func NewPostgreSQLChallengeRepository(db *sql.DB) *PostgreSQLChallengeRepository {
	return &PostgreSQLChallengeRepository{db: db}
}

// Create inserts a new challenge.
func (p *PostgreSQLChallengeRepository) Create(ctx context.Context, challenge *identityDomain.Challenge) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO identity_challenges (id, nonce_hash, expires_at, consumed_at, created_at)
			  VALUES ($1, $2, $3, $4, $5)`

	_, err := querier.ExecContext(
		ctx,
		query,
		challenge.ID,
		challenge.NonceHash,
		challenge.ExpiresAt,
		challenge.ConsumedAt,
		challenge.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create challenge")
	}
	return nil
}

// GetByNonceHash retrieves a challenge by the hash of its nonce.
func (p *PostgreSQLChallengeRepository) GetByNonceHash(
	ctx context.Context,
	nonceHash string,
) (*identityDomain.Challenge, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, nonce_hash, expires_at, consumed_at, created_at
			  FROM identity_challenges
			  WHERE nonce_hash = $1`

	var challenge identityDomain.Challenge
	err := querier.QueryRowContext(ctx, query, nonceHash).Scan(
		&challenge.ID,
		&challenge.NonceHash,
		&challenge.ExpiresAt,
		&challenge.ConsumedAt,
		&challenge.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, identityDomain.ErrChallengeNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get challenge")
	}
	return &challenge, nil
}

// Consume marks the challenge used. The consumed_at IS NULL guard makes this a
// compare-and-swap: a second redemption affects zero rows.
func (p *PostgreSQLChallengeRepository) Consume(
	ctx context.Context,
	challengeID uuid.UUID,
	consumedAt time.Time,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE identity_challenges SET consumed_at = $1 WHERE id = $2 AND consumed_at IS NULL`

	result, err := querier.ExecContext(ctx, query, consumedAt, challengeID)
	if err != nil {
		return apperrors.Wrap(err, "failed to consume challenge")
	}
	return consumeResult(result)
}

// CountExpired counts challenges that expired before olderThan.
func (p *PostgreSQLChallengeRepository) CountExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)
	return countRows(ctx, querier, `SELECT COUNT(*) FROM identity_challenges WHERE expires_at < $1`, olderThan)
}

// DeleteExpired deletes challenges that expired before olderThan.
func (p *PostgreSQLChallengeRepository) DeleteExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)
	return deleteRows(ctx, querier, `DELETE FROM identity_challenges WHERE expires_at < $1`, olderThan)
}

// PostgreSQLSessionRepository implements session persistence for PostgreSQL.
type PostgreSQLSessionRepository struct {
	db *sql.DB
}

// NewPostgreSQLSessionRepository creates a new PostgreSQL session repository.
func NewPostgreSQLSessionRepository(db *sql.DB) *PostgreSQLSessionRepository {
	return &PostgreSQLSessionRepository{db: db}
}

// Create inserts a new session.
func (p *PostgreSQLSessionRepository) Create(ctx context.Context, session *identityDomain.Session) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO identity_sessions (id, identity_id, token_hash, expires_at, created_at)
			  VALUES ($1, $2, $3, $4, $5)`

	_, err := querier.ExecContext(
		ctx,
		query,
		session.ID,
		session.IdentityID,
		session.TokenHash,
		session.ExpiresAt,
		session.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create session")
	}
	return nil
}

// GetByTokenHash retrieves a session by the hash of its bearer token.
func (p *PostgreSQLSessionRepository) GetByTokenHash(
	ctx context.Context,
	tokenHash string,
) (*identityDomain.Session, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, identity_id, token_hash, expires_at, created_at
			  FROM identity_sessions
			  WHERE token_hash = $1`

	var session identityDomain.Session
	err := querier.QueryRowContext(ctx, query, tokenHash).Scan(
		&session.ID,
		&session.IdentityID,
		&session.TokenHash,
		&session.ExpiresAt,
		&session.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, identityDomain.ErrSessionNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get session")
	}
	return &session, nil
}

// CountExpired counts sessions that expired before olderThan.
func (p *PostgreSQLSessionRepository) CountExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)
	return countRows(ctx, querier, `SELECT COUNT(*) FROM identity_sessions WHERE expires_at < $1`, olderThan)
}

// DeleteExpired deletes sessions that expired before olderThan.
func (p *PostgreSQLSessionRepository) DeleteExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)
	return deleteRows(ctx, querier, `DELETE FROM identity_sessions WHERE expires_at < $1`, olderThan)
}

func consumeResult(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return identityDomain.ErrChallengeConsumed
	}
	return nil
}

func countRows(ctx context.Context, querier database.Querier, query string, olderThan time.Time) (int64, error) {
	var count int64
	if err := querier.QueryRowContext(ctx, query, olderThan).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count expired rows")
	}
	return count, nil
}

func deleteRows(ctx context.Context, querier database.Querier, query string, olderThan time.Time) (int64, error) {
	result, err := querier.ExecContext(ctx, query, olderThan)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired rows")
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get rows affected")
	}
	return count, nil
}
