package handlers

import (
	"errors"
	"net/http"
	"regexp"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pictocat/backend/internal/apperr"
	"github.com/pictocat/backend/internal/database"
	"github.com/pictocat/backend/internal/models"
	"github.com/pictocat/backend/internal/services"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const feedLimit = 50

type publishPhraseRequest struct {
	PhraseID   string `json:"phraseId" validate:"required"`
	ImageURL   string `json:"imageUrl"`
	ImageTheme string `json:"imageTheme"`
	Privacy    string `json:"privacy" validate:"required,oneof=private friends public"`
}

// PublishPhrase moves a phrase between privacy levels, maintaining the feed
// projection and the server-owned publicPhrases counter in step.
func PublishPhrase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req publishPhraseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := fetchUser(ctx, identity(r).UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	phraseIdx := -1
	for i, p := range user.Phrases {
		if p.ID == req.PhraseID {
			phraseIdx = i
			break
		}
	}
	if phraseIdx == -1 {
		writeError(w, apperr.New(apperr.CodeNotFound, "Frase no encontrada."))
		return
	}
	phrase := user.Phrases[phraseIdx]

	wasVisible := phrase.Privacy != models.PrivacyPrivate
	isVisible := req.Privacy != models.PrivacyPrivate

	phrases := database.DB.Collection(database.CollPublicPhrases)
	key := bson.M{"userId": user.ID, "phraseId": phrase.ID}
	if isVisible {
		_, err = phrases.UpdateOne(ctx, key, bson.M{
			"$set": bson.M{
				"username":   user.Username,
				"text":       phrase.Text,
				"imageUrl":   req.ImageURL,
				"imageTheme": req.ImageTheme,
				"privacy":    req.Privacy,
			},
			"$setOnInsert": bson.M{"likes": []string{}},
		}, options.Update().SetUpsert(true))
	} else {
		_, err = phrases.DeleteOne(ctx, key)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	switch {
	case !wasVisible && isVisible:
		_ = services.RecordStat(user, "publicPhrases", 1)
	case wasVisible && !isVisible:
		_ = services.RecordStat(user, "publicPhrases", -1)
	}
	user.Phrases[phraseIdx].Privacy = req.Privacy

	events := services.EvaluateAchievements(user)

	now := time.Now()
	set := bson.M{
		"phrases.$.privacy":   req.Privacy,
		"stats.publicPhrases": user.Stats.PublicPhrases,
		"lastModified":        now,
	}
	if len(events) > 0 {
		set["coins"] = user.Coins
		set["playerStats"] = user.PlayerStats
		set["unlockedAchievements"] = user.UnlockedAchievements
	}
	if _, err := database.DB.Collection(database.CollUsers).UpdateOne(ctx,
		bson.M{"_id": user.ID, "phrases.id": phrase.ID},
		bson.M{"$set": set}); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":                   true,
		"privacy":                   req.Privacy,
		"lastModified":              now.UTC().Format(time.RFC3339Nano),
		"newlyUnlockedAchievements": achievementEventsPayload(events),
	})
}

// LikePhrase toggles the caller's like on a published phrase.
func LikePhrase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := identity(r).UserID

	phraseOID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "publicPhraseId"))
	if err != nil {
		writeError(w, apperr.New(apperr.CodeValidation, "Identificador de frase inválido."))
		return
	}

	phrases := database.DB.Collection(database.CollPublicPhrases)
	var phrase models.PublicPhrase
	if err := phrases.FindOne(ctx, bson.M{"_id": phraseOID}).Decode(&phrase); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			writeError(w, apperr.New(apperr.CodeNotFound, "Frase no encontrada."))
			return
		}
		writeError(w, err)
		return
	}

	liked := false
	for _, id := range phrase.Likes {
		if id == userID {
			liked = true
			break
		}
	}

	var update bson.M
	if liked {
		update = bson.M{"$pull": bson.M{"likes": userID}}
	} else {
		update = bson.M{"$addToSet": bson.M{"likes": userID}}
	}
	if _, err := phrases.UpdateOne(ctx, bson.M{"_id": phraseOID}, update); err != nil {
		writeError(w, err)
		return
	}

	likeCount := len(phrase.Likes)
	if liked {
		likeCount--
	} else {
		likeCount++
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"liked":     !liked,
		"likeCount": likeCount,
	})
}

// feedPipeline reduces the likes array to a count plus the caller's own
// state and joins the author's verification badge and avatar.
func feedPipeline(match bson.M, callerID string, withAuthor bool) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.M{"_id": -1}}},
		{{Key: "$limit", Value: feedLimit}},
	}
	if withAuthor {
		pipeline = append(pipeline,
			bson.D{{Key: "$lookup", Value: bson.M{
				"from":         database.CollUsers,
				"localField":   "userId",
				"foreignField": "_id",
				"as":           "author",
			}}},
			bson.D{{Key: "$unwind", Value: bson.M{"path": "$author", "preserveNullAndEmptyArrays": true}}},
		)
	}
	project := bson.M{
		"_id":        bson.M{"$toString": "$_id"},
		"text":       1,
		"imageUrl":   1,
		"imageTheme": 1,
		"likeCount":  bson.M{"$size": bson.M{"$ifNull": bson.A{"$likes", bson.A{}}}},
		"isLikedByMe": bson.M{"$in": bson.A{
			callerID, bson.M{"$ifNull": bson.A{"$likes", bson.A{}}},
		}},
	}
	if withAuthor {
		project["username"] = "$author.username"
		project["isUserVerified"] = "$author.isVerified"
	}
	return append(pipeline, bson.D{{Key: "$project", Value: project}})
}

// GetPublicFeed returns recent published phrases visible to the caller:
// everything public plus friends-only phrases from the caller's friends.
func GetPublicFeed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := fetchUser(ctx, identity(r).UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	visibleAuthors := append([]string{user.ID}, user.Friends...)
	match := bson.M{"$or": bson.A{
		bson.M{"privacy": models.PrivacyPublic},
		bson.M{"privacy": models.PrivacyFriends, "userId": bson.M{"$in": visibleAuthors}},
	}}

	cur, err := database.DB.Collection(database.CollPublicPhrases).
		Aggregate(ctx, feedPipeline(match, user.ID, true))
	if err != nil {
		writeError(w, err)
		return
	}
	feed := []models.FeedPhrase{}
	if err := cur.All(ctx, &feed); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"phrases": feed})
}

// GetPublicProfile returns another user's public card and the subset of
// their published phrases the caller may see.
func GetPublicProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := fetchUser(ctx, identity(r).UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	username := chi.URLParam(r, "username")
	var target models.User
	err = database.DB.Collection(database.CollUsers).
		FindOne(ctx, bson.M{"username": username}).Decode(&target)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			writeError(w, apperr.New(apperr.CodeNotFound, "Usuario no encontrado."))
			return
		}
		writeError(w, err)
		return
	}

	visibility := bson.A{models.PrivacyPublic}
	if caller.ID == target.ID || caller.IsFriendsWith(target.ID) {
		visibility = append(visibility, models.PrivacyFriends)
	}
	match := bson.M{"userId": target.ID, "privacy": bson.M{"$in": visibility}}

	cur, err := database.DB.Collection(database.CollPublicPhrases).
		Aggregate(ctx, feedPipeline(match, caller.ID, false))
	if err != nil {
		writeError(w, err)
		return
	}
	published := []models.FeedPhrase{}
	if err := cur.All(ctx, &published); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":               target.ID,
		"username":         target.Username,
		"bio":              target.Bio,
		"isVerified":       target.IsVerified,
		"profilePictureId": target.ProfilePictureID,
		"level":            target.PlayerStats.Level,
		"friendship":       services.FriendshipStatus(caller, &target),
		"phrases":          published,
	})
}

// SearchUsers finds users by username prefix or fragment, capped at 10.
func SearchUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query().Get("q")
	if len(query) < 2 {
		writeJSON(w, http.StatusOK, map[string]interface{}{"users": []friendSummary{}})
		return
	}

	cur, err := database.DB.Collection(database.CollUsers).Find(ctx,
		bson.M{"username": bson.M{"$regex": regexp.QuoteMeta(query), "$options": "i"}},
		options.Find().
			SetLimit(10).
			SetProjection(bson.M{
				"username": 1, "isVerified": 1, "profilePictureId": 1, "playerStats.level": 1,
			}))
	if err != nil {
		writeError(w, err)
		return
	}
	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		writeError(w, err)
		return
	}

	results := make([]friendSummary, 0, len(users))
	for _, u := range users {
		results = append(results, friendSummary{
			ID:               u.ID,
			Username:         u.Username,
			IsVerified:       u.IsVerified,
			ProfilePictureID: u.ProfilePictureID,
			Level:            u.PlayerStats.Level,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"users": results})
}
