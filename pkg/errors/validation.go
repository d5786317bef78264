package errors

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// MaxSourceBytes bounds the size of diagram text accepted by the API.
const MaxSourceBytes = 1 << 20

// ValidateDocumentID checks that id is a canonical UUID string.
func ValidateDocumentID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "document id cannot be empty")
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return Wrap(ErrCodeInvalidID, err, "invalid document id: %q", id)
	}
	if parsed.String() != strings.ToLower(id) {
		return New(ErrCodeInvalidID, "document id must be in canonical form: %q", id)
	}
	return nil
}

// ValidateDocumentName validates a user-supplied diagram name.
//
// The validation rules are intentionally conservative:
//   - Empty names are allowed (the store assigns a default)
//   - No control characters
//   - Maximum length of 200 characters
func ValidateDocumentName(name string) error {
	if len(name) > 200 {
		return New(ErrCodeInvalidInput, "name too long (max 200 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "name contains invalid control characters")
		}
	}
	return nil
}

// ValidateSource rejects diagram text that cannot be processed at all.
// Header and line-level checks belong to the parser, not here.
func ValidateSource(src string) error {
	if len(src) > MaxSourceBytes {
		return New(ErrCodeInvalidInput, "diagram source too large (max %d bytes)", MaxSourceBytes)
	}
	if strings.ContainsRune(src, '\x00') {
		return New(ErrCodeInvalidInput, "diagram source contains null bytes")
	}
	return nil
}
