package models

import (
	"time"
)

// Phrase is one entry on a user's communication board.
type Phrase struct {
	ID              string `bson:"id" json:"id"`
	Text            string `bson:"text" json:"text"`
	SelectedImageID *int   `bson:"selectedImageId" json:"selectedImageId"`
	IsCustom        bool   `bson:"isCustom" json:"isCustom"`
	Privacy         string `bson:"privacy" json:"privacy"` // private | friends | public
}

// Privacy values for phrases.
const (
	PrivacyPrivate = "private"
	PrivacyFriends = "friends"
	PrivacyPublic  = "public"
)

type PlayerStats struct {
	Level         int `bson:"level" json:"level"`
	XP            int `bson:"xp" json:"xp"`
	XPToNextLevel int `bson:"xpToNextLevel" json:"xpToNextLevel"`
}

// UserStats are the monotonic counters achievements are evaluated against.
// PublicPhrases is the one counter allowed to go back down (unpublishing).
type UserStats struct {
	GamesPlayed     int `bson:"gamesPlayed" json:"gamesPlayed"`
	EnvelopesOpened int `bson:"envelopesOpened" json:"envelopesOpened"`
	PublicPhrases   int `bson:"publicPhrases" json:"publicPhrases"`
}

// UserAchievement tracks how far a user has climbed one achievement ladder.
type UserAchievement struct {
	ID           string `bson:"id" json:"id"`
	UnlockedTier int    `bson:"unlockedTier" json:"unlockedTier"`
	Progress     int    `bson:"progress" json:"progress"`
}

// DailyPassRewards is the reward bundle generated for the current 24h window.
type DailyPassRewards struct {
	ImageIDs   []int  `bson:"imageIds" json:"imageIds"`
	UpgradeID  string `bson:"upgradeId" json:"upgradeId"`
	CoinReward int    `bson:"coinReward" json:"coinReward"`
}

// DailyPass keeps two independent clocks: when rewards were last generated
// and when they were last claimed. Both are epoch milliseconds.
type DailyPass struct {
	LastGeneratedTimestamp int64             `bson:"lastGeneratedTimestamp,omitempty" json:"lastGeneratedTimestamp,omitempty"`
	LastClaimedTimestamp   int64             `bson:"lastClaimedTimestamp,omitempty" json:"lastClaimedTimestamp,omitempty"`
	Rewards                *DailyPassRewards `bson:"rewards,omitempty" json:"rewards,omitempty"`
}

// User is the single source of truth for a player's economy and social state.
// Keyed by the identity provider's subject id, created just-in-time on the
// first authenticated data fetch.
type User struct {
	ID         string    `bson:"_id" json:"id"`
	Username   string    `bson:"username" json:"username"`
	Email      string    `bson:"email,omitempty" json:"email,omitempty"`
	Role       string    `bson:"role" json:"role"` // user | mod | admin
	IsVerified bool      `bson:"isVerified" json:"isVerified"`
	// LastModified drives the sync protocol; refreshed on every mutating
	// write and never moves backwards.
	LastModified time.Time `bson:"lastModified" json:"lastModified"`

	Coins                  int                        `bson:"coins" json:"coins"`
	Phrases                []Phrase                   `bson:"phrases" json:"phrases"`
	UnlockedImageIDs       []int                      `bson:"unlockedImageIds" json:"unlockedImageIds"`
	PlayerStats            PlayerStats                `bson:"playerStats" json:"playerStats"`
	PurchasedUpgrades      []string                   `bson:"purchasedUpgrades" json:"purchasedUpgrades"`
	Bio                    string                     `bson:"bio" json:"bio"`
	ProfilePictureID       *int                       `bson:"profilePictureId" json:"profilePictureId"`
	Friends                []string                   `bson:"friends" json:"friends"`
	FriendRequestsSent     []string                   `bson:"friendRequestsSent" json:"friendRequestsSent"`
	FriendRequestsReceived []string                   `bson:"friendRequestsReceived" json:"friendRequestsReceived"`
	UnlockedAchievements   map[string]UserAchievement `bson:"unlockedAchievements" json:"unlockedAchievements"`
	Stats                  UserStats                  `bson:"stats" json:"stats"`
	DailyPass              *DailyPass                 `bson:"dailyPass,omitempty" json:"dailyPass,omitempty"`
}

// Roles.
const (
	RoleUser  = "user"
	RoleMod   = "mod"
	RoleAdmin = "admin"
)

// HasUnlockedImage reports whether the user owns the given catalog image.
func (u *User) HasUnlockedImage(id int) bool {
	for _, owned := range u.UnlockedImageIDs {
		if owned == id {
			return true
		}
	}
	return false
}

// IsFriendsWith reports whether the given user id is in the friends set.
func (u *User) IsFriendsWith(id string) bool {
	for _, f := range u.Friends {
		if f == id {
			return true
		}
	}
	return false
}
