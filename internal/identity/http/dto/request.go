// Package dto provides data transfer objects for the identity endpoints.
package dto

import (
	validation "github.com/jellydator/validation"

	identityDomain "github.com/xambitlan/disclosure/internal/identity/domain"
	customValidation "github.com/xambitlan/disclosure/internal/validation"
)

// EstablishSessionRequest redeems a challenge nonce with the identity gateway's assertion.
type EstablishSessionRequest struct {
	NullifierHash string `json:"nullifier_hash"`
	Nonce         string `json:"nonce"`
	Assertion     string `json:"assertion"`
}

// Validate checks if the establish session request is valid.
func (r *EstablishSessionRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.NullifierHash, validation.Required, customValidation.Nullifier),
		validation.Field(&r.Nonce, validation.Required, customValidation.HexDigest),
		validation.Field(&r.Assertion, validation.Required, customValidation.HexDigest),
	)
}

// ToInput maps the request to the use case input.
func (r *EstablishSessionRequest) ToInput() *identityDomain.EstablishSessionInput {
	return &identityDomain.EstablishSessionInput{
		NullifierHash: r.NullifierHash,
		Nonce:         r.Nonce,
		Assertion:     r.Assertion,
	}
}
