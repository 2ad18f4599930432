// Package domain defines the tamper-evident audit trail.
//
// Entries are grouped into chains, one per (resource type, resource id). Each
// entry's ChainHash covers its own canonical bytes and the ChainHash of the
// entry before it, so rewriting or deleting an entry breaks every hash after it.
package domain

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Action identifies what an audit entry records.
type Action string

// Disclosure-relevant actions.
const (
	ActionRevealRequest          Action = "REVEAL_REQUEST"
	ActionRevealConsent          Action = "REVEAL_CONSENT"
	ActionRevealDeny             Action = "REVEAL_DENY"
	ActionRevealExpire           Action = "REVEAL_EXPIRE"
	ActionRevealAccess           Action = "REVEAL_ACCESS"
	ActionRevealAccessSuspicious Action = "REVEAL_ACCESS_SUSPICIOUS"
	ActionProfileContactUpdate   Action = "PROFILE_CONTACT_UPDATE"
	ActionUserVerify             Action = "USER_VERIFY"
)

// Resource types that own audit chains.
const (
	ResourceRevealRequest = "reveal_request"
	ResourceContact       = "contact"
	ResourceIdentity      = "identity"
)

// GenesisHash is the previous hash of the first entry of every chain.
var GenesisHash = strings.Repeat("0", 64)

// AuditEntry is one link of a resource's chain.
type AuditEntry struct {
	ID           uuid.UUID
	UserID       string // empty for system actions such as lazy expiry
	Action       Action
	ResourceType string
	ResourceID   string
	Details      map[string]string
	Timestamp    time.Time
	Sequence     int64
	PreviousHash string
	ChainHash    string
}

// Canonical returns the unambiguous byte form of every field except ChainHash.
// Strings are length-prefixed, integers are fixed-width big-endian.
func (e *AuditEntry) Canonical() ([]byte, error) {
	details := []byte(nil)
	if len(e.Details) > 0 {
		var err error
		// encoding/json sorts map keys.
		details, err = json.Marshal(e.Details)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal details: %w", err)
		}
	}

	buf := make([]byte, 0, 256+len(details))
	buf = append(buf, e.ID[:]...)
	buf = appendLengthPrefixed(buf, []byte(e.UserID))
	buf = appendLengthPrefixed(buf, []byte(e.Action))
	buf = appendLengthPrefixed(buf, []byte(e.ResourceType))
	buf = appendLengthPrefixed(buf, []byte(e.ResourceID))
	buf = appendLengthPrefixed(buf, details)
	buf = binary.BigEndian.AppendUint64(buf, uint64(e.Timestamp.UTC().UnixMicro()))
	buf = binary.BigEndian.AppendUint64(buf, uint64(e.Sequence))
	buf = appendLengthPrefixed(buf, []byte(e.PreviousHash))
	return buf, nil
}

// ComputeChainHash returns hex(SHA-256(canonical(e) || e.PreviousHash)).
func ComputeChainHash(e *AuditEntry) (string, error) {
	canonical, err := e.Canonical()
	if err != nil {
		return "", err
	}

	h := sha256.New()
	h.Write(canonical)
	h.Write([]byte(e.PreviousHash))
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Seal links e after prev (nil for the first entry) and fills Sequence,
// PreviousHash and ChainHash.
func (e *AuditEntry) Seal(prev *AuditEntry) error {
	if prev == nil {
		e.Sequence = 1
		e.PreviousHash = GenesisHash
	} else {
		e.Sequence = prev.Sequence + 1
		e.PreviousHash = prev.ChainHash
	}

	hash, err := ComputeChainHash(e)
	if err != nil {
		return err
	}
	e.ChainHash = hash
	return nil
}

// ChainReport is the outcome of a chain verification.
// FirstInvalidIndex is -1 when the chain is valid.
type ChainReport struct {
	ResourceType      string
	ResourceID        string
	Length            int
	Valid             bool
	FirstInvalidIndex int
}

// VerifyChain recomputes the chain from the first entry. entries must be the
// whole chain ordered by sequence. A failure at index i means the entry at i,
// or the link into it, was altered.
func VerifyChain(entries []*AuditEntry) ChainReport {
	report := ChainReport{Length: len(entries), Valid: true, FirstInvalidIndex: -1}
	if len(entries) > 0 {
		report.ResourceType = entries[0].ResourceType
		report.ResourceID = entries[0].ResourceID
	}

	expectedPrev := GenesisHash
	for i, entry := range entries {
		hash, err := ComputeChainHash(entry)
		if err != nil ||
			entry.Sequence != int64(i+1) ||
			entry.PreviousHash != expectedPrev ||
			entry.ResourceType != report.ResourceType ||
			entry.ResourceID != report.ResourceID ||
			hash != entry.ChainHash {
			report.Valid = false
			report.FirstInvalidIndex = i
			return report
		}
		expectedPrev = entry.ChainHash
	}
	return report
}

func appendLengthPrefixed(buf []byte, data []byte) []byte {
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(data)))
	return append(buf, data...)
}

// AppendInput carries the caller-supplied fields of a new entry.
type AppendInput struct {
	UserID       string
	Action       Action
	ResourceType string
	ResourceID   string
	Details      map[string]string
}

// ResourceRef names one audit chain.
type ResourceRef struct {
	ResourceType string
	ResourceID   string
}
