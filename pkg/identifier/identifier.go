// Package identifier validates the names used inside workflow definitions:
// block labels and parameter keys. Both appear in {{ key }} template
// expressions, so failures name the exact offending character class and the
// UI can tell the user which substitution to make.
package identifier

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var (
	ErrEmpty            = errors.New("identifier is empty")
	ErrLeadingDigit     = errors.New("identifier starts with a digit")
	ErrWhitespace       = errors.New("identifier contains whitespace")
	ErrDash             = errors.New("identifier contains a dash")
	ErrSlash            = errors.New("identifier contains a slash")
	ErrDot              = errors.New("identifier contains a dot")
	ErrInvalidCharacter = errors.New("identifier contains an invalid character")
	ErrDuplicate        = errors.New("identifier is already in use")
	ErrReservedKeyword  = errors.New("identifier is a reserved keyword")
)

// reservedKeys are the boolean/null literals and logical operators of the
// template expression language; allowing them as parameter keys would make
// {{ key }} ambiguous.
var reservedKeys = []string{"true", "false", "null", "none", "and", "or", "not", "in", "is"}

var (
	formatPattern   = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	sanitizePattern = regexp.MustCompile(`[\s-]+`)
)

// ValidationError reports why a candidate was rejected. Error returns the
// human-readable message to show next to the offending field.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return e.Err }

func newValidationError(sentinel error, format string, args ...any) *ValidationError {
	return &ValidationError{
		Message: fmt.Sprintf(format, args...),
		Err:     sentinel,
	}
}

// IsValidFormat reports whether candidate matches the identifier grammar,
// without any duplicate or reserved-word context. Intended for live-typing
// feedback.
func IsValidFormat(candidate string) bool {
	return formatPattern.MatchString(strings.TrimSpace(candidate))
}

// Sanitize collapses runs of whitespace and dashes into single underscores,
// producing an auto-fix suggestion. It does not resolve duplicates or a
// leading digit.
func Sanitize(candidate string) string {
	return sanitizePattern.ReplaceAllString(strings.TrimSpace(candidate), "_")
}

// ValidateLabel checks a block label against the identifier grammar and the
// labels already in use. current names the entry being renamed, so renaming a
// label to itself is always valid. On success the trimmed candidate is
// returned.
func ValidateLabel(candidate string, existing []string, current string) (string, error) {
	trimmed := strings.TrimSpace(candidate)

	if err := checkCharacters(trimmed, false); err != nil {
		return "", err
	}

	if err := checkDuplicate(trimmed, existing, current); err != nil {
		return "", err
	}

	return trimmed, nil
}

// ValidateKey checks a parameter key. Keys live inside template expressions,
// so the rule set is stricter than for labels: reserved keywords of the
// expression language are rejected, and slash and dot get dedicated errors.
func ValidateKey(candidate string, existing []string, current string) (string, error) {
	trimmed := strings.TrimSpace(candidate)

	if err := checkCharacters(trimmed, true); err != nil {
		return "", err
	}

	for _, reserved := range reservedKeys {
		if strings.EqualFold(trimmed, reserved) {
			return "", newValidationError(ErrReservedKeyword,
				"%q is a reserved word in template expressions and cannot be used as a parameter key", trimmed)
		}
	}

	if err := checkDuplicate(trimmed, existing, current); err != nil {
		return "", err
	}

	return trimmed, nil
}

func checkCharacters(trimmed string, keyDomain bool) error {
	if trimmed == "" {
		return newValidationError(ErrEmpty, "name cannot be empty")
	}

	first := rune(trimmed[0])
	if unicode.IsDigit(first) {
		return newValidationError(ErrLeadingDigit, "name cannot start with a digit: %q", trimmed)
	}

	for _, r := range trimmed {
		switch {
		case unicode.IsSpace(r):
			return newValidationError(ErrWhitespace, "name cannot contain spaces; use underscores instead: %q", trimmed)
		case r == '-':
			return newValidationError(ErrDash, "name cannot contain dashes; use underscores instead: %q", trimmed)
		case keyDomain && r == '/':
			return newValidationError(ErrSlash, "parameter key cannot contain slashes: %q", trimmed)
		case keyDomain && r == '.':
			return newValidationError(ErrDot, "parameter key cannot contain dots: %q", trimmed)
		case !isWordChar(r):
			return newValidationError(ErrInvalidCharacter, "name contains invalid character %q; only letters, digits and underscores are allowed", r)
		}
	}

	return nil
}

func checkDuplicate(trimmed string, existing []string, current string) error {
	for _, name := range existing {
		if strings.EqualFold(name, trimmed) && !strings.EqualFold(name, current) {
			return newValidationError(ErrDuplicate, "%q is already in use", trimmed)
		}
	}

	return nil
}

func isWordChar(r rune) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}
