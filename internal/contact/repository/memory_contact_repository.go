package repository

import (
	"bytes"
	"context"
	"sync"

	contactDomain "github.com/xambitlan/disclosure/internal/contact/domain"
	"github.com/xambitlan/disclosure/internal/database"
)

// MemoryContactRepository keeps vault entries in process memory.
type MemoryContactRepository struct {
	mu     sync.RWMutex
	vaults map[string]*contactDomain.ContactVault
}

// NewMemoryContactRepository creates an empty in-memory contact repository.
func NewMemoryContactRepository() *MemoryContactRepository {
	return &MemoryContactRepository{vaults: make(map[string]*contactDomain.ContactVault)}
}

// Upsert stores a copy of vault, keeping the original created_at on update.
func (m *MemoryContactRepository) Upsert(ctx context.Context, vault *contactDomain.ContactVault) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := *vault
	v.Envelope = bytes.Clone(vault.Envelope)
	existing, replaced := m.vaults[vault.ProviderID]
	if replaced {
		v.CreatedAt = existing.CreatedAt
	}
	m.vaults[vault.ProviderID] = &v

	database.OnRollback(ctx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if replaced {
			m.vaults[v.ProviderID] = existing
			return
		}
		delete(m.vaults, v.ProviderID)
	})
	return nil
}

// GetByProviderID returns a copy of the provider's vault entry.
func (m *MemoryContactRepository) GetByProviderID(
	_ context.Context,
	providerID string,
) (*contactDomain.ContactVault, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.vaults[providerID]
	if !ok {
		return nil, contactDomain.ErrContactNotFound
	}
	out := *v
	out.Envelope = bytes.Clone(v.Envelope)
	return &out, nil
}
