package security

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/fotoserve/queuepulse/pkg/core"
)

// Limits for caller-supplied identifiers and stored text
const (
	// MaxQueueNameLength is the maximum length for queue names
	MaxQueueNameLength = 255

	// MaxJobIDLength is the maximum length for job ids
	MaxJobIDLength = 255

	// MaxErrorMessageLength is the maximum length for stored error messages
	MaxErrorMessageLength = 4096
)

// validIdentifier matches alphanumeric, hyphens, underscores, and dots
var validIdentifier = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_\-\.]*$`)

// ValidateQueueName validates a queue name before it is used in a control
// operation URL or a ledger query.
func ValidateQueueName(name string) error {
	if name == "" {
		return core.ErrInvalidQueueName
	}
	if len(name) > MaxQueueNameLength {
		return core.ErrQueueNameTooLong
	}
	if !validIdentifier.MatchString(name) {
		return core.ErrInvalidQueueName
	}
	return nil
}

// ValidateJobID validates a job id before it is used in a control operation URL.
func ValidateJobID(id string) error {
	if id == "" {
		return core.ErrInvalidJobID
	}
	if len(id) > MaxJobIDLength {
		return core.ErrJobIDTooLong
	}
	if !validIdentifier.MatchString(id) {
		return core.ErrInvalidJobID
	}
	return nil
}

// SanitizeErrorMessage truncates and sanitizes error messages for storage
func SanitizeErrorMessage(msg string) string {
	if msg == "" {
		return ""
	}

	// Remove any null bytes or control characters (except newlines)
	var sanitized strings.Builder
	sanitized.Grow(len(msg))

	for _, r := range msg {
		if r == '\n' || r == '\r' || r == '\t' || (r >= 32 && r != 127) {
			sanitized.WriteRune(r)
		}
	}

	result := sanitized.String()

	// Truncate if too long
	if utf8.RuneCountInString(result) > MaxErrorMessageLength {
		runes := []rune(result)
		result = string(runes[:MaxErrorMessageLength-3]) + "..."
	}

	return result
}
