package dto

import (
	"time"

	contactDTO "github.com/xambitlan/disclosure/internal/contact/http/dto"
	contactDomain "github.com/xambitlan/disclosure/internal/contact/domain"
	revealDomain "github.com/xambitlan/disclosure/internal/reveal/domain"
)

// RevealRequestResponse represents a reveal request in API responses.
type RevealRequestResponse struct {
	ID          string    `json:"id"`
	ServiceID   string    `json:"service_id"`
	ClientID    string    `json:"client_id"`
	ProviderID  string    `json:"provider_id"`
	Status      string    `json:"status"`
	PaymentRef  string    `json:"payment_ref"`
	Message     string    `json:"message,omitempty"`
	AccessToken string    `json:"access_token,omitempty"`
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at,omitzero"`
}

// ListRevealRequestsResponse is a page of reveal requests.
type ListRevealRequestsResponse struct {
	Data []RevealRequestResponse `json:"data"`
}

// RevealedContactResponse carries the plaintext released by an approved request.
type RevealedContactResponse struct {
	RequestID string                     `json:"request_id"`
	Contact   contactDTO.ContactResponse `json:"contact"`
}

// MapRevealRequestToResponse converts a domain reveal request to an API response.
// Callers pass the actor's view so the token is only present for the client.
func MapRevealRequestToResponse(request *revealDomain.RevealRequest) RevealRequestResponse {
	return RevealRequestResponse{
		ID:          request.ID.String(),
		ServiceID:   request.ServiceID,
		ClientID:    request.ClientID,
		ProviderID:  request.ProviderID,
		Status:      string(request.Status),
		PaymentRef:  request.PaymentRef,
		Message:     request.Message,
		AccessToken: request.AccessToken,
		ExpiresAt:   request.ExpiresAt,
		CreatedAt:   request.CreatedAt,
		UpdatedAt:   request.UpdatedAt,
	}
}

// MapRevealRequestsToListResponse converts a page of requests to an API response.
func MapRevealRequestsToListResponse(requests []*revealDomain.RevealRequest) ListRevealRequestsResponse {
	data := make([]RevealRequestResponse, 0, len(requests))
	for _, request := range requests {
		data = append(data, MapRevealRequestToResponse(request))
	}
	return ListRevealRequestsResponse{Data: data}
}

// MapRevealedContactToResponse wraps a decrypted contact record.
func MapRevealedContactToResponse(requestID string, record *contactDomain.ContactRecord) RevealedContactResponse {
	return RevealedContactResponse{
		RequestID: requestID,
		Contact:   contactDTO.MapRecordToResponse(record),
	}
}
