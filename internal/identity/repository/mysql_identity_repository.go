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

// MySQLChallengeRepository implements challenge persistence for MySQL.
type MySQLChallengeRepository struct {
	db *sql.DB
}

// NewMySQLChallengeRepository creates a new MySQL challenge repository.
func NewMySQLChallengeRepository(db *sql.DB) *MySQLChallengeRepository {
	return &MySQLChallengeRepository{db: db}
}

// Create inserts a new challenge.
func (m *MySQLChallengeRepository) Create(ctx context.Context, challenge *identityDomain.Challenge) error {
	querier := database.GetTx(ctx, m.db)

	id, err := challenge.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal challenge id")
	}

	query := `INSERT INTO identity_challenges (id, nonce_hash, expires_at, consumed_at, created_at)
			  VALUES (?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
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
func (m *MySQLChallengeRepository) GetByNonceHash(
	ctx context.Context,
	nonceHash string,
) (*identityDomain.Challenge, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, nonce_hash, expires_at, consumed_at, created_at
			  FROM identity_challenges
			  WHERE nonce_hash = ?`

	var (
		challenge identityDomain.Challenge
		id        []byte
	)
	err := querier.QueryRowContext(ctx, query, nonceHash).Scan(
		&id,
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
	if err := challenge.ID.UnmarshalBinary(id); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal challenge id")
	}
	return &challenge, nil
}

// Consume marks the challenge used if it is still unused.
func (m *MySQLChallengeRepository) Consume(
	ctx context.Context,
	challengeID uuid.UUID,
	consumedAt time.Time,
) error {
	querier := database.GetTx(ctx, m.db)

	id, err := challengeID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal challenge id")
	}

	query := `UPDATE identity_challenges SET consumed_at = ? WHERE id = ? AND consumed_at IS NULL`

	result, err := querier.ExecContext(ctx, query, consumedAt, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to consume challenge")
	}
	return consumeResult(result)
}

// CountExpired counts challenges that expired before olderThan.
func (m *MySQLChallengeRepository) CountExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	querier := database.GetTx(ctx, m.db)
	return countRows(ctx, querier, `SELECT COUNT(*) FROM identity_challenges WHERE expires_at < ?`, olderThan)
}

// DeleteExpired deletes challenges that expired before olderThan.
func (m *MySQLChallengeRepository) DeleteExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	querier := database.GetTx(ctx, m.db)
	return deleteRows(ctx, querier, `DELETE FROM identity_challenges WHERE expires_at < ?`, olderThan)
}

// MySQLSessionRepository implements session persistence for MySQL.
type MySQLSessionRepository struct {
	db *sql.DB
}

// NewMySQLSessionRepository creates a new MySQL session repository.
func NewMySQLSessionRepository(db *sql.DB) *MySQLSessionRepository {
	return &MySQLSessionRepository{db: db}
}

// Create inserts a new session.
func (m *MySQLSessionRepository) Create(ctx context.Context, session *identityDomain.Session) error {
	querier := database.GetTx(ctx, m.db)

	id, err := session.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal session id")
	}

	query := `INSERT INTO identity_sessions (id, identity_id, token_hash, expires_at, created_at)
			  VALUES (?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
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
func (m *MySQLSessionRepository) GetByTokenHash(
	ctx context.Context,
	tokenHash string,
) (*identityDomain.Session, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, identity_id, token_hash, expires_at, created_at
			  FROM identity_sessions
			  WHERE token_hash = ?`

	var (
		session identityDomain.Session
		id      []byte
	)
	err := querier.QueryRowContext(ctx, query, tokenHash).Scan(
		&id,
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
	if err := session.ID.UnmarshalBinary(id); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal session id")
	}
	return &session, nil
}

// CountExpired counts sessions that expired before olderThan.
func (m *MySQLSessionRepository) CountExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	querier := database.GetTx(ctx, m.db)
	return countRows(ctx, querier, `SELECT COUNT(*) FROM identity_sessions WHERE expires_at < ?`, olderThan)
}

// DeleteExpired deletes sessions that expired before olderThan.
func (m *MySQLSessionRepository) DeleteExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	querier := database.GetTx(ctx, m.db)
	return deleteRows(ctx, querier, `DELETE FROM identity_sessions WHERE expires_at < ?`, olderThan)
}
