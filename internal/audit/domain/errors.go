package domain

import (
	"github.com/xambitlan/disclosure/internal/errors"
)

// Audit trail errors.
var (
	// ErrSequenceConflict indicates another writer appended to the same chain first.
	ErrSequenceConflict = errors.Wrap(errors.ErrConflict, "audit sequence conflict")

	// ErrChainNotFound indicates the resource has no audit entries.
	ErrChainNotFound = errors.Wrap(errors.ErrNotFound, "audit chain not found")

	// ErrAppendContention indicates the append kept losing the sequence race.
	ErrAppendContention = errors.New("audit append contention")
)
