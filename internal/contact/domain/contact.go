// Package domain defines the provider contact record and its encrypted vault entry.
//
// The record has a fixed, versioned shape so the envelope plaintext is always
// the canonical JSON of a validated ContactRecord.
package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	validation "github.com/jellydator/validation"

	customValidation "github.com/xambitlan/disclosure/internal/validation"
)

// RecordVersion is the only contact record schema version currently written.
const RecordVersion = 1

// ContactRecord holds the channels a provider can be reached on. At least one is required.
type ContactRecord struct {
	Version   int    `json:"v"`
	WhatsApp  string `json:"whatsapp,omitempty"`
	Email     string `json:"email,omitempty"`
	Website   string `json:"website,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	Instagram string `json:"instagram,omitempty"`
}

// Normalize trims every channel and stamps the current schema version when unset.
func (r *ContactRecord) Normalize() {
	if r.Version == 0 {
		r.Version = RecordVersion
	}
	r.WhatsApp = strings.TrimSpace(r.WhatsApp)
	r.Email = strings.TrimSpace(r.Email)
	r.Website = strings.TrimSpace(r.Website)
	r.Facebook = strings.TrimSpace(r.Facebook)
	r.Instagram = strings.TrimSpace(r.Instagram)
}

// Validate checks the schema version, the per-channel formats and that the record is not empty.
func (r *ContactRecord) Validate() error {
	if err := validation.ValidateStruct(r,
		validation.Field(&r.Version, validation.Required, validation.In(RecordVersion)),
		validation.Field(&r.WhatsApp, customValidation.WhatsApp),
		validation.Field(&r.Email, validation.Length(0, 254), customValidation.Email),
		validation.Field(&r.Website, validation.Length(0, 2048), customValidation.Website),
		validation.Field(&r.Facebook, customValidation.Facebook),
		validation.Field(&r.Instagram, customValidation.Instagram),
	); err != nil {
		return err
	}

	if len(r.Channels()) == 0 {
		return ErrEmptyContact
	}
	return nil
}

// Channels lists the names of the non-empty channels in schema order.
func (r *ContactRecord) Channels() []string {
	var channels []string
	for _, ch := range []struct {
		name  string
		value string
	}{
		{"whatsapp", r.WhatsApp},
		{"email", r.Email},
		{"website", r.Website},
		{"facebook", r.Facebook},
		{"instagram", r.Instagram},
	} {
		if ch.value != "" {
			channels = append(channels, ch.name)
		}
	}
	return channels
}

// Canonical returns the serialized form that is encrypted and hashed.
// encoding/json emits struct fields in declaration order, so equal records
// always serialize to equal bytes.
func (r *ContactRecord) Canonical() ([]byte, error) {
	return json.Marshal(r)
}

// Hash returns the hex SHA-256 of the canonical serialization.
func (r *ContactRecord) Hash() (string, error) {
	canonical, err := r.Canonical()
	if err != nil {
		return "", err
	}
	return HashCanonical(canonical), nil
}

// HashCanonical hashes already-serialized record bytes.
func HashCanonical(canonical []byte) string {
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])
}

// SealedContact is the output of encrypting a record: the envelope and the plaintext digest.
type SealedContact struct {
	Envelope    []byte
	ContactHash string
}

// ContactVault is the persisted, encrypted contact of one provider.
type ContactVault struct {
	ProviderID  string
	Envelope    []byte
	ContactHash string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
