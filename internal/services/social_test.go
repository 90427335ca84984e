package services

import (
	"testing"

	"github.com/pictocat/backend/internal/apperr"
	"github.com/pictocat/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestValidateFriendRequest(t *testing.T) {
	alice := func() *models.User { return &models.User{ID: "auth0|alice"} }
	bob := func() *models.User { return &models.User{ID: "auth0|bob"} }

	t.Run("self", func(t *testing.T) {
		err := ValidateFriendRequest(alice(), alice())
		assert.True(t, apperr.IsCode(err, apperr.CodeValidation))
	})

	t.Run("nil target", func(t *testing.T) {
		err := ValidateFriendRequest(alice(), nil)
		assert.True(t, apperr.IsCode(err, apperr.CodeValidation))
	})

	t.Run("already friends", func(t *testing.T) {
		a, b := alice(), bob()
		a.Friends = []string{b.ID}
		err := ValidateFriendRequest(a, b)
		assert.True(t, apperr.IsCode(err, apperr.CodeConflict))
	})

	t.Run("pending in same direction", func(t *testing.T) {
		a, b := alice(), bob()
		b.FriendRequestsReceived = []string{a.ID}
		err := ValidateFriendRequest(a, b)
		assert.True(t, apperr.IsCode(err, apperr.CodeConflict))
	})

	t.Run("pending in opposite direction", func(t *testing.T) {
		a, b := alice(), bob()
		a.FriendRequestsReceived = []string{b.ID}
		err := ValidateFriendRequest(a, b)
		assert.True(t, apperr.IsCode(err, apperr.CodeConflict))
	})

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, ValidateFriendRequest(alice(), bob()))
	})
}

func TestFriendshipStatus(t *testing.T) {
	me := &models.User{
		ID:                     "auth0|me",
		Friends:                []string{"auth0|friend"},
		FriendRequestsSent:     []string{"auth0|invited"},
		FriendRequestsReceived: []string{"auth0|inviter"},
	}

	cases := []struct {
		targetID string
		want     string
	}{
		{"auth0|me", FriendshipSelf},
		{"auth0|friend", FriendshipFriends},
		{"auth0|invited", FriendshipSent},
		{"auth0|inviter", FriendshipReceived},
		{"auth0|stranger", FriendshipNone},
	}
	for _, tc := range cases {
		got := FriendshipStatus(me, &models.User{ID: tc.targetID})
		assert.Equal(t, tc.want, got, "target %s", tc.targetID)
	}
}
