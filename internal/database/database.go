package database

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var Client *mongo.Client
var DB *mongo.Database

// Collection names. One document per user, one per catalog item, one per
// published phrase; envelopes/upgrades/system_config hold seeded reference data.
const (
	CollUsers         = "users"
	CollCats          = "cats"
	CollEnvelopes     = "envelopes"
	CollUpgrades      = "upgrades"
	CollPublicPhrases = "public_phrases"
	CollSystemConfig  = "system_config"
)

func Connect(mongoURI string) error {
	// Use longer timeout for Atlas connections
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(mongoURI)
	clientOptions.SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return err
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return err
	}

	Client = client

	// Extract database name from the URI, falling back to "pictocat".
	dbName := "pictocat"
	if parts := strings.Split(mongoURI, "/"); len(parts) > 3 {
		dbPart := strings.Split(parts[len(parts)-1], "?")[0]
		if dbPart != "" {
			dbName = dbPart
		}
	}
	DB = client.Database(dbName)

	log.Info().Str("db", dbName).Msg("✅ Connected to MongoDB")
	return nil
}

// EnsureIndexes configures the indexes the engine depends on. Called on
// startup from main after Mongo has connected.
func EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		CollUsers: {
			{
				Keys:    bson.D{{Key: "username", Value: 1}},
				Options: options.Index().SetName("idx_username").SetUnique(true),
			},
		},
		CollCats: {
			{
				Keys:    bson.D{{Key: "numeric_id", Value: 1}},
				Options: options.Index().SetName("idx_numeric_id").SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "rarity", Value: 1}},
				Options: options.Index().SetName("idx_rarity"),
			},
		},
		CollPublicPhrases: {
			// One projection per (userId, phraseId); publish upserts against this key.
			{
				Keys: bson.D{
					{Key: "userId", Value: 1},
					{Key: "phraseId", Value: 1},
				},
				Options: options.Index().SetName("idx_user_phrase").SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "privacy", Value: 1}},
				Options: options.Index().SetName("idx_privacy"),
			},
		},
	}

	for coll, models := range indexes {
		if _, err := DB.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}
	return nil
}

func Disconnect() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return Client.Disconnect(ctx)
}
