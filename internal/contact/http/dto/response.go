package dto

import (
	"time"

	contactDomain "github.com/xambitlan/disclosure/internal/contact/domain"
)

// ContactHashResponse exposes the stored digest without the envelope.
type ContactHashResponse struct {
	ProviderID  string    `json:"provider_id"`
	ContactHash string    `json:"contact_hash"`
	UpdatedAt   time.Time `json:"updated_at,omitzero"`
}

// MapVaultToResponse converts a vault entry to a hash response.
func MapVaultToResponse(vault *contactDomain.ContactVault) ContactHashResponse {
	return ContactHashResponse{
		ProviderID:  vault.ProviderID,
		ContactHash: vault.ContactHash,
		UpdatedAt:   vault.UpdatedAt,
	}
}

// ContactResponse is the plaintext contact record returned by an approved reveal.
type ContactResponse struct {
	WhatsApp  string `json:"whatsapp,omitempty"`
	Email     string `json:"email,omitempty"`
	Website   string `json:"website,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	Instagram string `json:"instagram,omitempty"`
}

// MapRecordToResponse converts a decrypted record to its response shape.
func MapRecordToResponse(record *contactDomain.ContactRecord) ContactResponse {
	return ContactResponse{
		WhatsApp:  record.WhatsApp,
		Email:     record.Email,
		Website:   record.Website,
		Facebook:  record.Facebook,
		Instagram: record.Instagram,
	}
}
