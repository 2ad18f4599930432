// Package domain defines the reveal request: a client's paid, consent-gated
// request to learn a provider's contact information.
//
// Lifecycle: PENDING -> APPROVED | DENIED. PENDING and APPROVED become EXPIRED
// once a read observes now > ExpiresAt. APPROVED, DENIED and EXPIRED are terminal
// for consent; APPROVED still lets the client read the contact until expiry.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a reveal request.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusDenied   Status = "DENIED"
	StatusExpired  Status = "EXPIRED"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusDenied, StatusExpired:
		return true
	}
	return false
}

// Role selects which side of a request a listing is for.
type Role string

const (
	RoleClient   Role = "client"
	RoleProvider Role = "provider"
)

// RevealRequest is owned by the state machine. Version increases on every
// transition and guards updates with compare-and-swap.
type RevealRequest struct {
	ID               uuid.UUID
	ServiceID        string
	ClientID         string
	ProviderID       string
	Status           Status
	PaymentRef       string
	Message          string
	ConsentSignature string
	ConsentMessage   string
	AccessToken      string
	ExpiresAt        time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Version          int64
}

// ShouldExpire reports whether a read at now must move the request to EXPIRED.
func (r *RevealRequest) ShouldExpire(now time.Time) bool {
	if r.Status != StatusPending && r.Status != StatusApproved {
		return false
	}
	return now.After(r.ExpiresAt)
}

// IsClient reports whether actorID is the requesting client.
func (r *RevealRequest) IsClient(actorID string) bool {
	return strings.EqualFold(r.ClientID, actorID)
}

// IsProvider reports whether actorID is the provider who must consent.
func (r *RevealRequest) IsProvider(actorID string) bool {
	return strings.EqualFold(r.ProviderID, actorID)
}

// IsParticipant reports whether actorID is the client or the provider.
func (r *RevealRequest) IsParticipant(actorID string) bool {
	return r.IsClient(actorID) || r.IsProvider(actorID)
}

// ViewFor returns a copy fit for actorID. The access token is only shown to
// the client and only while the request is APPROVED.
func (r *RevealRequest) ViewFor(actorID string) *RevealRequest {
	view := *r
	if !r.IsClient(actorID) || r.Status != StatusApproved {
		view.AccessToken = ""
	}
	return &view
}

// Service is the directory entry a reveal request is opened against.
type Service struct {
	ID         string
	ProviderID string
	Title      string
}

// CreateInput contains the client's request.
type CreateInput struct {
	ServiceID  string
	PaymentRef string
	Message    string
}

// ConsentInput contains the provider's decision. The signature over
// SignedMessage is stored as evidence of consent.
type ConsentInput struct {
	Signature     string
	SignedMessage string
	Approve       bool
}

// ListFilter selects one side of the actor's requests.
type ListFilter struct {
	Role   Role
	Status Status // empty for all
	Offset int
	Limit  int
}

// StaleFilter selects PENDING or APPROVED requests whose expiry has passed.
type StaleFilter struct {
	ServiceID     string // with ClientID, restricts to one pair
	ClientID      string
	ParticipantID string // with Role, restricts to one side of one identity
	Role          Role
	Now           time.Time
	Limit         int
}
