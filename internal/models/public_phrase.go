package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PublicPhrase is a denormalized projection of a user's phrase for the
// social feed. It exists only while the phrase's privacy is friends or
// public, keyed by (userId, phraseId); text, image and username are copied
// here so feed reads never join back into user documents.
type PublicPhrase struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"publicPhraseId"`
	UserID     string             `bson:"userId" json:"userId"`
	PhraseID   string             `bson:"phraseId" json:"phraseId"`
	Username   string             `bson:"username" json:"username"`
	Text       string             `bson:"text" json:"text"`
	ImageURL   string             `bson:"imageUrl" json:"imageUrl"`
	ImageTheme string             `bson:"imageTheme" json:"imageTheme"`
	Privacy    string             `bson:"privacy" json:"privacy"`
	Likes      []string           `bson:"likes" json:"-"`
}

// FeedPhrase is the shape returned to clients from feed and profile reads,
// with the likes set reduced to a count plus the caller's own like state.
type FeedPhrase struct {
	PublicPhraseID    string  `bson:"_id" json:"publicPhraseId"`
	Text              string  `bson:"text" json:"text"`
	ImageURL          string  `bson:"imageUrl" json:"imageUrl"`
	ImageTheme        string  `bson:"imageTheme" json:"imageTheme"`
	LikeCount         int     `bson:"likeCount" json:"likeCount"`
	IsLikedByMe       bool    `bson:"isLikedByMe" json:"isLikedByMe"`
	Username          string  `bson:"username,omitempty" json:"username,omitempty"`
	IsUserVerified    bool    `bson:"isUserVerified,omitempty" json:"isUserVerified,omitempty"`
	ProfilePictureURL *string `bson:"profilePictureUrl,omitempty" json:"profilePictureUrl,omitempty"`
}
