package utils

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
)

const (
	MinUsernameLength = 3
	MaxUsernameLength = 20
)

var (
	usernameRegex  = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
	stripCharRegex = regexp.MustCompile(`[^a-zA-Z0-9_]`)
)

// ValidateUsername validates username format.
// Rules: 3-20 characters, letters, numbers, underscores only.
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)

	if len(username) < MinUsernameLength {
		return &ValidationError{Field: "username", Message: "Username must be at least 3 characters"}
	}
	if len(username) > MaxUsernameLength {
		return &ValidationError{Field: "username", Message: "Username must be at most 20 characters"}
	}
	if !usernameRegex.MatchString(username) {
		return &ValidationError{Field: "username", Message: "Username can only contain letters, numbers, and underscores"}
	}
	return nil
}

// DeriveBaseUsername builds a starting username for a just-in-time created
// user: the email local-part stripped to allowed characters and truncated,
// or a stub built from the tail of the identity subject when there is no email.
func DeriveBaseUsername(email, subjectID string) string {
	if email != "" {
		base := stripCharRegex.ReplaceAllString(strings.Split(email, "@")[0], "")
		if len(base) > MaxUsernameLength {
			base = base[:MaxUsernameLength]
		}
		if len(base) >= MinUsernameLength {
			return base
		}
	}
	// Subject ids look like "provider|opaque"; use the opaque tail.
	tail := subjectID
	if idx := strings.LastIndex(subjectID, "|"); idx != -1 {
		tail = subjectID[idx+1:]
	}
	if len(tail) > 6 {
		tail = tail[len(tail)-6:]
	}
	return "user_" + tail
}

// SuffixedUsername produces a collision-evading variant of base with a
// random 4-digit suffix, keeping the total within the length limit.
func SuffixedUsername(base string, rng *rand.Rand) string {
	if len(base) > 15 {
		base = base[:15]
	}
	return fmt.Sprintf("%s_%d", base, 1000+rng.Intn(9000))
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
