package services

import (
	"fmt"

	"github.com/pictocat/backend/internal/apperr"
	"github.com/pictocat/backend/internal/models"
)

// Progression ledger: validated mutations over an in-memory user snapshot.
// Handlers compose several of these, run the achievement evaluator, and then
// commit everything in a single document update so each user action stays
// atomic from the caller's perspective.

// SpendCoins debits the balance; it never lets the balance go negative.
func SpendCoins(u *models.User, amount int) error {
	if amount < 0 {
		return apperr.New(apperr.CodeValidation, "amount must be non-negative")
	}
	if u.Coins < amount {
		return apperr.New(apperr.CodeInsufficientFunds, "No tienes suficientes monedas.")
	}
	u.Coins -= amount
	return nil
}

// GrantCoins credits the balance.
func GrantCoins(u *models.User, amount int) {
	if amount > 0 {
		u.Coins += amount
	}
}

// GrantXP credits experience and runs the leveling loop.
func GrantXP(u *models.User, amount int) {
	if amount > 0 {
		ApplyXP(&u.PlayerStats, amount)
	}
}

// UnlockImages unions the given catalog ids into the unlocked set and
// returns the ids that were actually new. Idempotent; the set only grows.
func UnlockImages(u *models.User, ids []int) []int {
	owned := make(map[int]bool, len(u.UnlockedImageIDs))
	for _, id := range u.UnlockedImageIDs {
		owned[id] = true
	}

	var added []int
	for _, id := range ids {
		if owned[id] {
			continue
		}
		owned[id] = true
		u.UnlockedImageIDs = append(u.UnlockedImageIDs, id)
		added = append(added, id)
	}
	return added
}

// PurchaseUpgrade debits the upgrade's cost and records the purchase. Each
// upgrade can be bought at most once and is gated by player level.
func PurchaseUpgrade(u *models.User, upgrade *models.Upgrade) error {
	for _, owned := range u.PurchasedUpgrades {
		if owned == upgrade.ID {
			return apperr.New(apperr.CodeAlreadyOwned, "¡Mejora ya comprada!")
		}
	}
	if u.PlayerStats.Level < upgrade.LevelRequired {
		return apperr.New(apperr.CodeLevelTooLow, fmt.Sprintf("¡Requiere nivel %d!", upgrade.LevelRequired))
	}
	if err := SpendCoins(u, upgrade.Cost); err != nil {
		return err
	}
	u.PurchasedUpgrades = append(u.PurchasedUpgrades, upgrade.ID)
	return nil
}

// RecordStat increments a named counter. Only publicPhrases may receive a
// negative delta (unpublishing), and no counter ever drops below zero.
func RecordStat(u *models.User, name string, delta int) error {
	var counter *int
	switch name {
	case "gamesPlayed":
		counter = &u.Stats.GamesPlayed
	case "envelopesOpened":
		counter = &u.Stats.EnvelopesOpened
	case "publicPhrases":
		counter = &u.Stats.PublicPhrases
	default:
		return apperr.New(apperr.CodeValidation, "unknown stat counter: "+name)
	}
	if delta < 0 && name != "publicPhrases" {
		return apperr.New(apperr.CodeValidation, name+" cannot decrease")
	}
	*counter += delta
	if *counter < 0 {
		*counter = 0
	}
	return nil
}
