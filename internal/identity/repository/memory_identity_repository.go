package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xambitlan/disclosure/internal/database"
	identityDomain "github.com/xambitlan/disclosure/internal/identity/domain"
)

// MemoryChallengeRepository keeps challenges in process memory.
type MemoryChallengeRepository struct {
	mu     sync.Mutex
	byHash map[string]*identityDomain.Challenge
}

// NewMemoryChallengeRepository creates an empty in-memory challenge repository.
func NewMemoryChallengeRepository() *MemoryChallengeRepository {
	return &MemoryChallengeRepository{byHash: make(map[string]*identityDomain.Challenge)}
}

// Create stores a copy of the challenge.
func (m *MemoryChallengeRepository) Create(_ context.Context, challenge *identityDomain.Challenge) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := *challenge
	m.byHash[challenge.NonceHash] = &c
	return nil
}

// GetByNonceHash returns a copy of the stored challenge.
func (m *MemoryChallengeRepository) GetByNonceHash(
	_ context.Context,
	nonceHash string,
) (*identityDomain.Challenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.byHash[nonceHash]
	if !ok {
		return nil, identityDomain.ErrChallengeNotFound
	}
	out := *c
	return &out, nil
}

// Consume sets ConsumedAt if it is still unset.
func (m *MemoryChallengeRepository) Consume(ctx context.Context, challengeID uuid.UUID, consumedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.byHash {
		if c.ID != challengeID {
			continue
		}
		if c.ConsumedAt != nil {
			return identityDomain.ErrChallengeConsumed
		}
		at := consumedAt
		c.ConsumedAt = &at
		database.OnRollback(ctx, func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			c.ConsumedAt = nil
		})
		return nil
	}
	return identityDomain.ErrChallengeNotFound
}

// CountExpired counts challenges that expired before olderThan.
func (m *MemoryChallengeRepository) CountExpired(_ context.Context, olderThan time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var count int64
	for _, c := range m.byHash {
		if c.ExpiresAt.Before(olderThan) {
			count++
		}
	}
	return count, nil
}

// DeleteExpired removes challenges that expired before olderThan.
func (m *MemoryChallengeRepository) DeleteExpired(_ context.Context, olderThan time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var count int64
	for hash, c := range m.byHash {
		if c.ExpiresAt.Before(olderThan) {
			delete(m.byHash, hash)
			count++
		}
	}
	return count, nil
}

// MemorySessionRepository keeps sessions in process memory.
type MemorySessionRepository struct {
	mu     sync.RWMutex
	byHash map[string]*identityDomain.Session
}

// NewMemorySessionRepository creates an empty in-memory session repository.
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{byHash: make(map[string]*identityDomain.Session)}
}

// Create stores a copy of the session.
func (m *MemorySessionRepository) Create(ctx context.Context, session *identityDomain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := *session
	m.byHash[session.TokenHash] = &s
	database.OnRollback(ctx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.byHash, s.TokenHash)
	})
	return nil
}

// GetByTokenHash returns a copy of the stored session.
func (m *MemorySessionRepository) GetByTokenHash(
	_ context.Context,
	tokenHash string,
) (*identityDomain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.byHash[tokenHash]
	if !ok {
		return nil, identityDomain.ErrSessionNotFound
	}
	out := *s
	return &out, nil
}

// CountExpired counts sessions that expired before olderThan.
func (m *MemorySessionRepository) CountExpired(_ context.Context, olderThan time.Time) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var count int64
	for _, s := range m.byHash {
		if s.ExpiresAt.Before(olderThan) {
			count++
		}
	}
	return count, nil
}

// DeleteExpired removes sessions that expired before olderThan.
func (m *MemorySessionRepository) DeleteExpired(_ context.Context, olderThan time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var count int64
	for hash, s := range m.byHash {
		if s.ExpiresAt.Before(olderThan) {
			delete(m.byHash, hash)
			count++
		}
	}
	return count, nil
}
