package services

import (
	"github.com/pictocat/backend/internal/apperr"
	"github.com/pictocat/backend/internal/models"
)

// Friendship status values relative to a requesting user.
const (
	FriendshipSelf     = "self"
	FriendshipFriends  = "friends"
	FriendshipSent     = "sent"
	FriendshipReceived = "received"
	FriendshipNone     = "none"
)

func contains(set []string, id string) bool {
	for _, v := range set {
		if v == id {
			return true
		}
	}
	return false
}

// ValidateFriendRequest enforces the None → Sent transition: the target must
// be a real, different user, the pair must not already be friends, and no
// request may be pending in either direction.
func ValidateFriendRequest(requester, target *models.User) error {
	if target == nil || requester.ID == target.ID {
		return apperr.New(apperr.CodeValidation, "Usuario objetivo no válido.")
	}
	if contains(target.Friends, requester.ID) || contains(requester.Friends, target.ID) {
		return apperr.New(apperr.CodeConflict, "Ya son amigos.")
	}
	if contains(target.FriendRequestsReceived, requester.ID) || contains(requester.FriendRequestsReceived, target.ID) {
		return apperr.New(apperr.CodeConflict, "Ya existe una solicitud pendiente.")
	}
	return nil
}

// FriendshipStatus classifies the relationship between the requesting user
// and a target profile for the public-profile view.
func FriendshipStatus(requester, target *models.User) string {
	switch {
	case requester.ID == target.ID:
		return FriendshipSelf
	case contains(requester.Friends, target.ID):
		return FriendshipFriends
	case contains(requester.FriendRequestsSent, target.ID):
		return FriendshipSent
	case contains(requester.FriendRequestsReceived, target.ID):
		return FriendshipReceived
	default:
		return FriendshipNone
	}
}
