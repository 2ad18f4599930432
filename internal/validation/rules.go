// Package validation provides custom validation rules for the application.
package validation

import (
	"net/url"
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/xambitlan/disclosure/internal/errors"
)

var (
	// emailRegex is a basic email validation pattern
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	socialHandleRegex = regexp.MustCompile(`^[a-zA-Z0-9._]{1,30}$`)
	instagramURLRegex = regexp.MustCompile(`^(?:https?://)?(?:www\.)?instagram\.com/([a-zA-Z0-9._]+)/?$`)
	facebookNameRegex = regexp.MustCompile(`^[a-zA-Z0-9.]{5,50}$`)
	facebookURLRegex  = regexp.MustCompile(`^(?:https?://)?(?:www\.)?facebook\.com/([a-zA-Z0-9.]+)/?$`)
	nullifierRegex    = regexp.MustCompile(`^0x[a-fA-F0-9]{64}$`)
	hexDigestRegex    = regexp.MustCompile(`^[a-f0-9]{64}$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// Email validates email format using regex
var Email = validation.NewStringRuleWithError(
	func(s string) bool {
		return emailRegex.MatchString(s)
	},
	validation.NewError("validation_email_format", "must be a valid email address"),
)

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// WhatsApp accepts any formatting as long as the number has 10 to 15 digits.
var WhatsApp = validation.NewStringRuleWithError(
	func(s string) bool {
		digits := 0
		for _, r := range s {
			if r >= '0' && r <= '9' {
				digits++
			}
		}
		return digits >= 10 && digits <= 15
	},
	validation.NewError("validation_whatsapp", "must contain between 10 and 15 digits"),
)

// Website requires an absolute http or https URL.
var Website = validation.NewStringRuleWithError(
	func(s string) bool {
		u, err := url.Parse(s)
		if err != nil || u.Host == "" {
			return false
		}
		return u.Scheme == "http" || u.Scheme == "https"
	},
	validation.NewError("validation_website", "must be an http or https URL"),
)

// Instagram accepts "@handle", a bare handle or a profile URL.
var Instagram = validation.NewStringRuleWithError(
	func(s string) bool {
		return InstagramHandle(s) != ""
	},
	validation.NewError("validation_instagram", "must be an Instagram handle or profile URL"),
)

// Facebook accepts a profile URL or a 5 to 50 character username.
var Facebook = validation.NewStringRuleWithError(
	func(s string) bool {
		return FacebookHandle(s) != ""
	},
	validation.NewError("validation_facebook", "must be a Facebook username or profile URL"),
)

// Nullifier validates a 0x-prefixed 32-byte hex identity nullifier.
var Nullifier = validation.NewStringRuleWithError(
	func(s string) bool {
		return nullifierRegex.MatchString(s)
	},
	validation.NewError("validation_nullifier", "must be a 0x-prefixed 64 character hex string"),
)

// HexDigest validates a lowercase hex SHA-256 or Keccak-256 digest.
var HexDigest = validation.NewStringRuleWithError(
	func(s string) bool {
		return hexDigestRegex.MatchString(s)
	},
	validation.NewError("validation_hex_digest", "must be a 64 character lowercase hex string"),
)

// InstagramHandle extracts the handle from input, or returns "" when input is not a valid handle.
func InstagramHandle(input string) string {
	handle := input
	if strings.HasPrefix(input, "@") {
		handle = input[1:]
	} else if m := instagramURLRegex.FindStringSubmatch(input); m != nil {
		handle = m[1]
	}

	if !socialHandleRegex.MatchString(handle) || strings.Contains(handle, "..") {
		return ""
	}
	return handle
}

// FacebookHandle extracts the username from input, or returns "" when it is not valid.
func FacebookHandle(input string) string {
	if m := facebookURLRegex.FindStringSubmatch(input); m != nil {
		return m[1]
	}
	if facebookNameRegex.MatchString(input) {
		return input
	}
	return ""
}
