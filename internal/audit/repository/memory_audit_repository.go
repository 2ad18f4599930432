package repository

import (
	"context"
	"sort"
	"sync"

	auditDomain "github.com/xambitlan/disclosure/internal/audit/domain"
	"github.com/xambitlan/disclosure/internal/database"
)

// MemoryAuditRepository keeps audit chains in process memory.
// It backs DB_DRIVER=memory and concurrency tests.
type MemoryAuditRepository struct {
	mu     sync.RWMutex
	chains map[auditDomain.ResourceRef][]*auditDomain.AuditEntry
}

// NewMemoryAuditRepository creates an empty in-memory audit repository.
func NewMemoryAuditRepository() *MemoryAuditRepository {
	return &MemoryAuditRepository{
		chains: make(map[auditDomain.ResourceRef][]*auditDomain.AuditEntry),
	}
}

// LastEntry returns a copy of the chain head.
func (m *MemoryAuditRepository) LastEntry(
	_ context.Context,
	resourceType, resourceID string,
) (*auditDomain.AuditEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	chain := m.chains[auditDomain.ResourceRef{ResourceType: resourceType, ResourceID: resourceID}]
	if len(chain) == 0 {
		return nil, auditDomain.ErrChainNotFound
	}
	return cloneEntry(chain[len(chain)-1]), nil
}

// Create appends entry when its sequence is the next free slot.
// A rolled back unit of work truncates the chain to its previous length.
func (m *MemoryAuditRepository) Create(ctx context.Context, entry *auditDomain.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ref := auditDomain.ResourceRef{ResourceType: entry.ResourceType, ResourceID: entry.ResourceID}
	chain := m.chains[ref]
	if entry.Sequence != int64(len(chain)+1) {
		return auditDomain.ErrSequenceConflict
	}
	m.chains[ref] = append(chain, cloneEntry(entry))

	previous := len(chain)
	database.OnRollback(ctx, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if previous == 0 {
			delete(m.chains, ref)
			return
		}
		m.chains[ref] = m.chains[ref][:previous]
	})
	return nil
}

// ListByResource returns copies of a chain page.
func (m *MemoryAuditRepository) ListByResource(
	_ context.Context,
	resourceType, resourceID string,
	offset, limit int,
) ([]*auditDomain.AuditEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	chain := m.chains[auditDomain.ResourceRef{ResourceType: resourceType, ResourceID: resourceID}]
	entries := make([]*auditDomain.AuditEntry, 0)
	for i := offset; i < len(chain) && len(entries) < limit; i++ {
		entries = append(entries, cloneEntry(chain[i]))
	}
	return entries, nil
}

// ListResources returns chain owners sorted by type then id.
func (m *MemoryAuditRepository) ListResources(_ context.Context) ([]auditDomain.ResourceRef, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	refs := make([]auditDomain.ResourceRef, 0, len(m.chains))
	for ref := range m.chains {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].ResourceType != refs[j].ResourceType {
			return refs[i].ResourceType < refs[j].ResourceType
		}
		return refs[i].ResourceID < refs[j].ResourceID
	})
	return refs, nil
}

func cloneEntry(e *auditDomain.AuditEntry) *auditDomain.AuditEntry {
	c := *e
	if e.Details != nil {
		c.Details = make(map[string]string, len(e.Details))
		for k, v := range e.Details {
			c.Details[k] = v
		}
	}
	return &c
}
