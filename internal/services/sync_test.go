package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProfileChanged(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// Identical timestamps: nothing new.
	assert.False(t, ProfileChanged(base, base))

	// Within the buffer: treated as unchanged to absorb clock skew between
	// the write that produced the client's copy and the stored timestamp.
	assert.False(t, ProfileChanged(base.Add(500*time.Millisecond), base))
	assert.False(t, ProfileChanged(base.Add(SyncBuffer), base))

	// Meaningfully newer.
	assert.True(t, ProfileChanged(base.Add(SyncBuffer+time.Millisecond), base))
	assert.True(t, ProfileChanged(base.Add(time.Hour), base))

	// Server older than client (client clock ran ahead): unchanged.
	assert.False(t, ProfileChanged(base, base.Add(time.Minute)))
}
