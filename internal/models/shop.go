package models

// RarityProbabilities weight a single gacha draw. The three values should
// sum to 100; the epic branch is the implicit remainder so drift is
// tolerated at draw time but rejected on admin edits.
type RarityProbabilities struct {
	Common int `bson:"common" json:"common"`
	Rare   int `bson:"rare" json:"rare"`
	Epic   int `bson:"epic" json:"epic"`
}

// Envelope is a purchasable gacha pack yielding up to ImageCount new images.
type Envelope struct {
	ID                   string              `bson:"_id" json:"id"`
	Name                 string              `bson:"name" json:"name"`
	Description          string              `bson:"description" json:"description"`
	BaseCost             int                 `bson:"baseCost" json:"baseCost"`
	CostIncreasePerLevel int                 `bson:"costIncreasePerLevel" json:"costIncreasePerLevel"`
	ImageCount           int                 `bson:"imageCount" json:"imageCount"`
	XP                   int                 `bson:"xp" json:"xp"`
	Color                string              `bson:"color" json:"color"`
	RarityProbabilities  RarityProbabilities `bson:"rarityProbabilities" json:"rarityProbabilities"`
	// CurrentCost is computed per-request from the player's level; never stored.
	CurrentCost int `bson:"-" json:"currentCost,omitempty"`
}

// CostAtLevel derives the purchase price for a player at the given level.
func (e *Envelope) CostAtLevel(level int) int {
	if level < 1 {
		level = 1
	}
	return e.BaseCost + (level-1)*e.CostIncreasePerLevel
}

// Upgrade is a permanent, purchase-once game upgrade gated by level and coins.
type Upgrade struct {
	ID            string `bson:"_id" json:"id"`
	Name          string `bson:"name" json:"name"`
	Description   string `bson:"description" json:"description"`
	Cost          int    `bson:"cost" json:"cost"`
	LevelRequired int    `bson:"levelRequired" json:"levelRequired"`
	Icon          string `bson:"icon" json:"icon"`
}
