package dto

import (
	"time"

	identityDomain "github.com/xambitlan/disclosure/internal/identity/domain"
)

// ChallengeResponse carries the nonce the caller must bind as proof signal.
type ChallengeResponse struct {
	ID        string    `json:"id"`
	Nonce     string    `json:"nonce"`
	ExpiresAt time.Time `json:"expires_at"`
}

// MapChallengeToResponse converts a challenge output to an API response.
func MapChallengeToResponse(output *identityDomain.IssueChallengeOutput) ChallengeResponse {
	return ChallengeResponse{
		ID:        output.ID.String(),
		Nonce:     output.Nonce,
		ExpiresAt: output.ExpiresAt,
	}
}

// SessionResponse carries the session bearer token. It is only returned once.
type SessionResponse struct {
	IdentityID string    `json:"identity_id"`
	Token      string    `json:"token"` //nolint:gosec // returned once on creation
	ExpiresAt  time.Time `json:"expires_at"`
}

// MapSessionToResponse converts a session output to an API response.
func MapSessionToResponse(output *identityDomain.EstablishSessionOutput) SessionResponse {
	return SessionResponse{
		IdentityID: output.IdentityID,
		Token:      output.Token,
		ExpiresAt:  output.ExpiresAt,
	}
}
