package models

// Rarity tiers for catalog images. Ordinal: common < rare < epic.
const (
	RarityCommon = "common"
	RarityRare   = "rare"
	RarityEpic   = "epic"
)

// CatImage is one unlockable catalog item. Stored in the `cats` collection
// with `numeric_id` as the stable client-facing id; the collection is seeded
// externally and read-mostly at runtime.
type CatImage struct {
	NumericID int    `bson:"numeric_id" json:"id"`
	URL       string `bson:"url" json:"url"`
	Theme     string `bson:"theme" json:"theme"`
	Rarity    string `bson:"rarity" json:"rarity"`
}
