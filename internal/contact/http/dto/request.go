// Package dto provides data transfer objects for the contact endpoints.
package dto

import (
	validation "github.com/jellydator/validation"

	contactDomain "github.com/xambitlan/disclosure/internal/contact/domain"
	customValidation "github.com/xambitlan/disclosure/internal/validation"
)

// SetContactRequest carries the provider's plaintext contact channels.
type SetContactRequest struct {
	WhatsApp  string `json:"whatsapp"`
	Email     string `json:"email"`
	Website   string `json:"website"`
	Facebook  string `json:"facebook"`
	Instagram string `json:"instagram"`
}

// Validate checks if the set contact request is valid.
// Channel formats are checked again by the domain record before encryption.
func (r *SetContactRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.WhatsApp, customValidation.WhatsApp),
		validation.Field(&r.Email, validation.Length(0, 254), customValidation.Email),
		validation.Field(&r.Website, validation.Length(0, 2048), customValidation.Website),
		validation.Field(&r.Facebook, customValidation.Facebook),
		validation.Field(&r.Instagram, customValidation.Instagram),
	)
}

// ToRecord maps the request to a versioned contact record.
func (r *SetContactRequest) ToRecord() *contactDomain.ContactRecord {
	return &contactDomain.ContactRecord{
		Version:   contactDomain.RecordVersion,
		WhatsApp:  r.WhatsApp,
		Email:     r.Email,
		Website:   r.Website,
		Facebook:  r.Facebook,
		Instagram: r.Instagram,
	}
}
