package validation

import (
	"testing"

	validation "github.com/jellydator/validation"
	"github.com/stretchr/testify/assert"
)

func assertRule(t *testing.T, rule validation.Rule, valid, invalid []string) {
	t.Helper()
	for _, v := range valid {
		assert.NoError(t, rule.Validate(v), "expected %q to be valid", v)
	}
	for _, v := range invalid {
		assert.Error(t, rule.Validate(v), "expected %q to be invalid", v)
	}
}

func TestEmail(t *testing.T) {
	assertRule(t, Email,
		[]string{"user@example.com", "a@b.mx", "user+tag@mail.example.com", "first.last@example.com"},
		[]string{"userexample.com", "user@", "@example.com", "user@example", "user @example.com"},
	)
}

func TestNoWhitespace(t *testing.T) {
	assertRule(t, NoWhitespace,
		[]string{"validstring", "valid string"},
		[]string{" validstring", "validstring ", " validstring "},
	)
}

func TestNotBlank(t *testing.T) {
	assertRule(t, NotBlank,
		[]string{"validstring"},
		[]string{"   ", "\t\t", "\n\n", " \t\n "},
	)
}

func TestWhatsApp(t *testing.T) {
	assertRule(t, WhatsApp,
		[]string{"+52 55 1234 5678", "5511999999999", "(55) 1234-5678", "123456789012345"},
		[]string{"12345", "+52 55 1234", "1234567890123456", "phone"},
	)
}

func TestWebsite(t *testing.T) {
	assertRule(t, Website,
		[]string{"https://example.com", "http://example.com/path?q=1"},
		[]string{"ftp://example.com", "javascript:alert(1)", "example.com", "https://"},
	)
}

func TestInstagram(t *testing.T) {
	assertRule(t, Instagram,
		[]string{"@maria.garcia", "maria_garcia", "https://www.instagram.com/maria.garcia", "instagram.com/maria/"},
		[]string{"@maria..garcia", "@", "has space", "@this_handle_is_far_too_long_for_instagram"},
	)

	assert.Equal(t, "maria.garcia", InstagramHandle("https://instagram.com/maria.garcia"))
	assert.Equal(t, "maria", InstagramHandle("@maria"))
	assert.Empty(t, InstagramHandle("@ma..ria"))
}

func TestFacebook(t *testing.T) {
	assertRule(t, Facebook,
		[]string{"maria.garcia", "https://facebook.com/maria.garcia", "www.facebook.com/mg"},
		[]string{"abc", "name with spaces", "@maria"},
	)

	assert.Equal(t, "mg", FacebookHandle("https://www.facebook.com/mg"))
}

func TestNullifier(t *testing.T) {
	assertRule(t, Nullifier,
		[]string{"0x" + "ab12" + "0000000000000000000000000000000000000000000000000000000000ff"},
		[]string{"ab12", "0x1234", "0xzz00000000000000000000000000000000000000000000000000000000000000"},
	)
}

func TestHexDigest(t *testing.T) {
	assertRule(t, HexDigest,
		[]string{"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		[]string{"E3B0C44298FC1C149AFBF4C8996FB92427AE41E4649B934CA495991B7852B855", "e3b0", "not-hex"},
	)
}

func TestWrapValidationError(t *testing.T) {
	assert.NoError(t, WrapValidationError(nil))

	err := WrapValidationError(assert.AnError)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid input")
}
