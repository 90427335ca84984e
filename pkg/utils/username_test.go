package utils

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUsername(t *testing.T) {
	valid := []string{"abc", "user_123", "UPPER_lower_9", "12345678901234567890"}
	for _, name := range valid {
		assert.NoError(t, ValidateUsername(name), name)
	}

	invalid := []string{"", "ab", "123456789012345678901", "with space", "héllo", "dash-ed", "dot.ted"}
	for _, name := range invalid {
		assert.Error(t, ValidateUsername(name), name)
	}
}

func TestDeriveBaseUsernameFromEmail(t *testing.T) {
	assert.Equal(t, "maria", DeriveBaseUsername("maria@example.com", "auth0|abc123"))
	assert.Equal(t, "marialopez", DeriveBaseUsername("maria.lopez@example.com", "auth0|abc123"))
	assert.Equal(t, "abcdefghijklmnopqrst", DeriveBaseUsername("abcdefghijklmnopqrstuvwxyz@example.com", "auth0|abc123"))
}

func TestDeriveBaseUsernameFallsBackToSubject(t *testing.T) {
	// Local part too short after stripping.
	assert.Equal(t, "user_def456", DeriveBaseUsername("a@example.com", "auth0|def456"))
	assert.Equal(t, "user_def456", DeriveBaseUsername("", "auth0|def456"))

	// Long opaque tails keep only the last six characters.
	assert.Equal(t, "user_345678", DeriveBaseUsername("", "auth0|012345678"))

	// No provider separator.
	assert.Equal(t, "user_raw", DeriveBaseUsername("", "raw"))
}

func TestSuffixedUsername(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 50; i++ {
		name := SuffixedUsername("somebody", rng)
		assert.NoError(t, ValidateUsername(name))
		assert.Regexp(t, `^somebody_\d{4}$`, name)
	}

	long := SuffixedUsername("a_very_long_base_name", rng)
	assert.NoError(t, ValidateUsername(long))
	assert.LessOrEqual(t, len(long), MaxUsernameLength)
}
