package models

// AchievementTier is one rung of a reward ladder: reach Value on the
// achievement's stat, earn Coins and XP. Tiers are strictly increasing in
// Value and claimed in order.
type AchievementTier struct {
	Value int `json:"value"`
	Coins int `json:"coins"`
	XP    int `json:"xp"`
}

// Achievement is static reference data, never mutated at runtime. Stat is a
// selector into the user snapshot: a counter name, a set cardinality
// ("friends.length", "unlockedImageIds.length"), "coins", or
// "playerStats.level".
type Achievement struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Category    string            `json:"category"`
	Stat        string            `json:"stat"`
	Tiers       []AchievementTier `json:"tiers"`
}
