// Package dto provides data transfer objects for the reveal request endpoints.
package dto

import (
	validation "github.com/jellydator/validation"

	revealDomain "github.com/xambitlan/disclosure/internal/reveal/domain"
	customValidation "github.com/xambitlan/disclosure/internal/validation"
)

// CreateRevealRequest is the client's paid request for a provider's contact.
type CreateRevealRequest struct {
	PaymentRef string `json:"payment_ref"`
	Message    string `json:"message"`
}

// Validate checks if the create reveal request is valid.
func (r *CreateRevealRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.PaymentRef,
			validation.Required,
			customValidation.NotBlank,
			customValidation.NoWhitespace,
			validation.Length(1, 255),
		),
		validation.Field(&r.Message, validation.Length(0, 1000)),
	)
}

// ToInput maps the request to the use case input.
func (r *CreateRevealRequest) ToInput(serviceID string) *revealDomain.CreateInput {
	return &revealDomain.CreateInput{
		ServiceID:  serviceID,
		PaymentRef: r.PaymentRef,
		Message:    r.Message,
	}
}

// ConsentRequest is the provider's signed decision. Approve is a pointer so an
// omitted decision is rejected instead of read as a denial.
type ConsentRequest struct {
	Signature     string `json:"signature"`
	SignedMessage string `json:"signed_message"`
	Approve       *bool  `json:"approve"`
}

// Validate checks if the consent request is valid.
func (r *ConsentRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Signature, validation.Required, customValidation.NotBlank, validation.Length(1, 1024)),
		validation.Field(&r.SignedMessage, validation.Required, customValidation.NotBlank, validation.Length(1, 4096)),
		validation.Field(&r.Approve, validation.NotNil),
	)
}

// ToInput maps the request to the use case input.
func (r *ConsentRequest) ToInput() *revealDomain.ConsentInput {
	return &revealDomain.ConsentInput{
		Signature:     r.Signature,
		SignedMessage: r.SignedMessage,
		Approve:       r.Approve != nil && *r.Approve,
	}
}
