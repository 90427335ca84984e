package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/pictocat/backend/internal/apperr"
	"github.com/pictocat/backend/internal/database"
	"github.com/pictocat/backend/internal/models"
	"github.com/pictocat/backend/internal/services"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// friendSummary is the lightweight projection shown in friend lists.
type friendSummary struct {
	ID               string `json:"id"`
	Username         string `json:"username"`
	IsVerified       bool   `json:"isVerified"`
	ProfilePictureID *int   `json:"profilePictureId"`
	Level            int    `json:"level"`
}

func loadFriendSummaries(ctx context.Context, ids []string) ([]friendSummary, error) {
	summaries := make([]friendSummary, 0, len(ids))
	if len(ids) == 0 {
		return summaries, nil
	}
	cur, err := database.DB.Collection(database.CollUsers).Find(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{
			"username": 1, "isVerified": 1, "profilePictureId": 1, "playerStats.level": 1,
		}))
	if err != nil {
		return nil, err
	}
	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	for _, u := range users {
		summaries = append(summaries, friendSummary{
			ID:               u.ID,
			Username:         u.Username,
			IsVerified:       u.IsVerified,
			ProfilePictureID: u.ProfilePictureID,
			Level:            u.PlayerStats.Level,
		})
	}
	return summaries, nil
}

// GetFriendData returns the caller's friends and pending requests, resolved
// to display summaries.
func GetFriendData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := fetchUser(ctx, identity(r).UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	friends, err := loadFriendSummaries(ctx, user.Friends)
	if err != nil {
		writeError(w, err)
		return
	}
	received, err := loadFriendSummaries(ctx, user.FriendRequestsReceived)
	if err != nil {
		writeError(w, err)
		return
	}
	sent, err := loadFriendSummaries(ctx, user.FriendRequestsSent)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"friends":          friends,
		"requestsReceived": received,
		"requestsSent":     sent,
	})
}

type addFriendRequest struct {
	Username string `json:"username" validate:"required,min=3,max=20"`
}

// AddFriend records a pending request on both documents. The two writes are
// sequenced without a transaction; a failure between them leaves a one-sided
// request that the next successful call repairs via $addToSet.
func AddFriend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req addFriendRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	requester, err := fetchUser(ctx, identity(r).UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	var target models.User
	err = database.DB.Collection(database.CollUsers).
		FindOne(ctx, bson.M{"username": req.Username}).Decode(&target)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			writeError(w, apperr.New(apperr.CodeNotFound, "Usuario no encontrado."))
			return
		}
		writeError(w, err)
		return
	}

	if err := services.ValidateFriendRequest(requester, &target); err != nil {
		writeError(w, err)
		return
	}

	now := time.Now()
	users := database.DB.Collection(database.CollUsers)
	if _, err := users.UpdateOne(ctx, bson.M{"_id": requester.ID}, bson.M{
		"$addToSet": bson.M{"friendRequestsSent": target.ID},
		"$set":      bson.M{"lastModified": now},
	}); err != nil {
		writeError(w, err)
		return
	}
	if _, err := users.UpdateOne(ctx, bson.M{"_id": target.ID}, bson.M{
		"$addToSet": bson.M{"friendRequestsReceived": requester.ID},
		"$set":      bson.M{"lastModified": now},
	}); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Solicitud enviada.",
	})
}

type respondFriendRequest struct {
	RequesterID string `json:"requesterId" validate:"required"`
	Accept      bool   `json:"accept"`
}

// RespondToFriendRequest accepts or rejects a pending request. Accepting
// moves both sides into the friends arrays; either way the pending entries
// are pulled.
func RespondToFriendRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req respondFriendRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := fetchUser(ctx, identity(r).UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	pending := false
	for _, id := range user.FriendRequestsReceived {
		if id == req.RequesterID {
			pending = true
			break
		}
	}
	if !pending {
		writeError(w, apperr.New(apperr.CodeNotFound, "Solicitud no encontrada."))
		return
	}

	now := time.Now()
	users := database.DB.Collection(database.CollUsers)

	myUpdate := bson.M{
		"$pull": bson.M{"friendRequestsReceived": req.RequesterID},
		"$set":  bson.M{"lastModified": now},
	}
	theirUpdate := bson.M{
		"$pull": bson.M{"friendRequestsSent": user.ID},
		"$set":  bson.M{"lastModified": now},
	}

	var events []services.UnlockEvent
	if req.Accept {
		myUpdate["$addToSet"] = bson.M{"friends": req.RequesterID}
		theirUpdate["$addToSet"] = bson.M{"friends": user.ID}

		user.Friends = append(user.Friends, req.RequesterID)
		events = services.EvaluateAchievements(user)
		if len(events) > 0 {
			set := myUpdate["$set"].(bson.M)
			set["coins"] = user.Coins
			set["playerStats"] = user.PlayerStats
			set["unlockedAchievements"] = user.UnlockedAchievements
		}
	}

	if _, err := users.UpdateOne(ctx, bson.M{"_id": user.ID}, myUpdate); err != nil {
		writeError(w, err)
		return
	}
	if _, err := users.UpdateOne(ctx, bson.M{"_id": req.RequesterID}, theirUpdate); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":                   true,
		"accepted":                  req.Accept,
		"newlyUnlockedAchievements": achievementEventsPayload(events),
	})
}

type removeFriendRequest struct {
	FriendID string `json:"friendId" validate:"required"`
}

// RemoveFriend severs the relationship from both documents.
func RemoveFriend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req removeFriendRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	userID := identity(r).UserID
	now := time.Now()
	users := database.DB.Collection(database.CollUsers)

	if _, err := users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$pull": bson.M{"friends": req.FriendID},
		"$set":  bson.M{"lastModified": now},
	}); err != nil {
		writeError(w, err)
		return
	}
	if _, err := users.UpdateOne(ctx, bson.M{"_id": req.FriendID}, bson.M{
		"$pull": bson.M{"friends": userID},
		"$set":  bson.M{"lastModified": now},
	}); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
