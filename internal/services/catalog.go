package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pictocat/backend/internal/database"
	"github.com/pictocat/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// CatalogCacheKey is the Redis key the full catalog is cached under.
	CatalogCacheKey = "cache:catalog"
	// CatalogCacheTTL bounds staleness of the read-mostly catalog; admin
	// writes invalidate the key eagerly anyway.
	CatalogCacheTTL = 6 * time.Hour
)

// LoadCatalog returns the full catalog ordered by numeric id, serving from
// the Redis cache when possible. A cache failure is never fatal; the catalog
// falls back to Mongo.
func LoadCatalog(ctx context.Context) ([]models.CatImage, error) {
	if database.RedisClient != nil {
		if val, err := database.RedisClient.Get(ctx, CatalogCacheKey).Result(); err == nil {
			var cached []models.CatImage
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return cached, nil
			}
		}
	}

	cur, err := database.DB.Collection(database.CollCats).Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "numeric_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	catalog := []models.CatImage{}
	if err := cur.All(ctx, &catalog); err != nil {
		return nil, err
	}

	if database.RedisClient != nil {
		if data, err := json.Marshal(catalog); err == nil {
			database.RedisClient.Set(ctx, CatalogCacheKey, data, CatalogCacheTTL)
		}
	}

	return catalog, nil
}

// InvalidateCatalogCache drops the cached catalog after an admin write.
func InvalidateCatalogCache(ctx context.Context) {
	if database.RedisClient != nil {
		database.RedisClient.Del(ctx, CatalogCacheKey)
	}
}

// LockedImagesFor returns the catalog entries the user has not unlocked yet.
func LockedImagesFor(catalog []models.CatImage, ownedIDs []int) []models.CatImage {
	owned := make(map[int]bool, len(ownedIDs))
	for _, id := range ownedIDs {
		owned[id] = true
	}
	var locked []models.CatImage
	for _, img := range catalog {
		if !owned[img.NumericID] {
			locked = append(locked, img)
		}
	}
	return locked
}

// CatalogByID indexes a catalog snapshot by numeric id.
func CatalogByID(catalog []models.CatImage) map[int]models.CatImage {
	index := make(map[int]models.CatImage, len(catalog))
	for _, img := range catalog {
		index[img.NumericID] = img
	}
	return index
}
