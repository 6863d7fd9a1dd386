package validation

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/nyaruka/phonenumbers"

	"github.com/elskow/registry-auth/internal/config"
)

const (
	minPasswordLength = 8
	minUsernameLength = 4
	maxUsernameLength = 32
	maxNameLength     = 128
)

// IdentifierValidator checks and canonicalizes login identifiers for the
// configured deployment variant.
type IdentifierValidator struct {
	kind   config.IdentifierKind
	region string
}

func NewIdentifierValidator(cfg *config.AuthConfig) *IdentifierValidator {
	kind := cfg.IdentifierKind
	if kind == "" {
		kind = config.IdentifierPhone
	}
	return &IdentifierValidator{
		kind:   kind,
		region: strings.ToUpper(cfg.DefaultRegion),
	}
}

// Kind reports which identifier variant is enforced.
func (v *IdentifierValidator) Kind() config.IdentifierKind {
	return v.kind
}

// Normalize validates identifier and returns its canonical form: E.164 for
// phone numbers, the trimmed input for usernames.
func (v *IdentifierValidator) Normalize(identifier string) (string, bool) {
	switch v.kind {
	case config.IdentifierUsername:
		username := strings.TrimSpace(identifier)
		if !ValidUsername(username) {
			return "", false
		}
		return username, true
	default:
		formatted, err := FormatPhoneNumber(identifier, v.region)
		if err != nil {
			return "", false
		}
		return formatted, true
	}
}

// FormatPhoneNumber parses number and renders it as E.164. Numbers without a
// leading '+' are only accepted when region is set.
func FormatPhoneNumber(number, region string) (string, error) {
	parsed, err := phonenumbers.Parse(strings.TrimSpace(number), region)
	if err != nil {
		return "", err
	}
	return phonenumbers.Format(parsed, phonenumbers.E164), nil
}

func ValidPhoneNumber(number, region string) bool {
	_, err := FormatPhoneNumber(number, region)
	return err == nil
}

func ValidUsername(username string) bool {
	n := utf8.RuneCountInString(username)
	if n < minUsernameLength || n > maxUsernameLength {
		return false
	}
	for _, r := range username {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// ValidPassword requires at least 8 characters with a lowercase letter, an
// uppercase letter and a digit.
func ValidPassword(password string) bool {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return false
	}
	var lower, upper, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return lower && upper && digit
}

func ValidName(name string) bool {
	trimmed := strings.TrimSpace(name)
	return trimmed != "" && utf8.RuneCountInString(trimmed) <= maxNameLength
}
