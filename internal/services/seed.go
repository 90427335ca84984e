package services

import (
	"context"

	"github.com/pictocat/backend/internal/database"
	"github.com/pictocat/backend/internal/models"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SeedEnvelopes is the envelope reference data written on first access.
var SeedEnvelopes = []models.Envelope{
	{
		ID:                   "bronze",
		Name:                 "Sobre de Bronce",
		Description:          "Una nueva imagen de gato al azar.",
		BaseCost:             75,
		CostIncreasePerLevel: 5,
		ImageCount:           1,
		XP:                   10,
		Color:                "from-orange-400 to-yellow-500",
		RarityProbabilities:  models.RarityProbabilities{Common: 80, Rare: 15, Epic: 5},
	},
	{
		ID:                   "silver",
		Name:                 "Sobre de Plata",
		Description:          "¡Tres nuevas imágenes de gatos!",
		BaseCost:             150,
		CostIncreasePerLevel: 10,
		ImageCount:           3,
		XP:                   30,
		Color:                "from-slate-400 to-gray-500",
		RarityProbabilities:  models.RarityProbabilities{Common: 60, Rare: 30, Epic: 10},
	},
	{
		ID:                   "gold",
		Name:                 "Sobre de Oro",
		Description:          "¡Cinco nuevas imágenes de gatos al azar!",
		BaseCost:             300,
		CostIncreasePerLevel: 20,
		ImageCount:           5,
		XP:                   80,
		Color:                "from-amber-400 to-yellow-500",
		RarityProbabilities:  models.RarityProbabilities{Common: 40, Rare: 40, Epic: 20},
	},
}

// SeedUpgrades is the permanent upgrade reference data.
var SeedUpgrades = []models.Upgrade{
	{ID: "goldenPaw", Name: "Pata Dorada", Description: "Aumenta las monedas ganadas en un 50%.", Cost: 500, LevelRequired: 3, Icon: "coin"},
	{ID: "betterBait", Name: "Cebo Mejorado", Description: "Los ratones permanecen visibles 250ms más en Caza Ratones.", Cost: 350, LevelRequired: 2, Icon: "mouse"},
	{ID: "extraTime", Name: "Tiempo Extra", Description: "Añade 5 segundos al juego Caza Ratones.", Cost: 700, LevelRequired: 5, Icon: "time"},
	{ID: "photographicMemory", Name: "Memoria Fotográfica", Description: "Revela todas las cartas por 1.5s al inicio de Memoria Felina.", Cost: 600, LevelRequired: 4, Icon: "brain"},
	{ID: "smartyCat", Name: "Gato Inteligente", Description: "Elimina una respuesta incorrecta en cada pregunta de Triviatos.", Cost: 450, LevelRequired: 3, Icon: "question"},
	{ID: "xpBoost", Name: "Bono de XP", Description: "Aumenta toda la experiencia (XP) ganada en un 25%.", Cost: 1000, LevelRequired: 6, Icon: "star"},
}

var rareThemes = []string{"Gatos en Apuros", "Gatos Gruñones"}

var epicImageURLs = []string{
	"https://media.tenor.com/ldNjzyrqeIMAAAAC/gato-meme.gif",
	"https://i.redd.it/elohtitdb7351.jpg",
	"https://images7.memedroid.com/images/UPLOADED475/64f8c02457e24.jpeg",
}

// EnsureShopData seeds envelopes, upgrades and catalog rarities on first
// access, guarded by a single flag document. Safe to race under concurrent
// cold starts: every write is an idempotent upsert/overwrite and the last
// writer wins.
func EnsureShopData(ctx context.Context) error {
	systemConfig := database.DB.Collection(database.CollSystemConfig)

	var flag struct {
		IsSeeded bool `bson:"isSeeded"`
	}
	err := systemConfig.FindOne(ctx, bson.M{"_id": "shop_config"}).Decode(&flag)
	if err == nil && flag.IsSeeded {
		return nil
	}

	log.Info().Msg("Shop data not seeded. Initializing...")

	envelopes := database.DB.Collection(database.CollEnvelopes)
	if _, err := envelopes.DeleteMany(ctx, bson.M{}); err != nil {
		return err
	}
	envelopeDocs := make([]interface{}, len(SeedEnvelopes))
	for i, e := range SeedEnvelopes {
		envelopeDocs[i] = e
	}
	if _, err := envelopes.InsertMany(ctx, envelopeDocs); err != nil {
		return err
	}

	upgrades := database.DB.Collection(database.CollUpgrades)
	if _, err := upgrades.DeleteMany(ctx, bson.M{}); err != nil {
		return err
	}
	upgradeDocs := make([]interface{}, len(SeedUpgrades))
	for i, u := range SeedUpgrades {
		upgradeDocs[i] = u
	}
	if _, err := upgrades.InsertMany(ctx, upgradeDocs); err != nil {
		return err
	}

	// Catalog rarities: everything defaults to common, a couple of themes are
	// rare, a handful of specific images are epic.
	cats := database.DB.Collection(database.CollCats)
	if _, err := cats.UpdateMany(ctx, bson.M{}, bson.M{"$set": bson.M{"rarity": models.RarityCommon}}); err != nil {
		return err
	}
	if _, err := cats.UpdateMany(ctx, bson.M{"theme": bson.M{"$in": rareThemes}}, bson.M{"$set": bson.M{"rarity": models.RarityRare}}); err != nil {
		return err
	}
	if _, err := cats.UpdateMany(ctx, bson.M{"url": bson.M{"$in": epicImageURLs}}, bson.M{"$set": bson.M{"rarity": models.RarityEpic}}); err != nil {
		return err
	}

	_, err = systemConfig.UpdateOne(ctx,
		bson.M{"_id": "shop_config"},
		bson.M{"$set": bson.M{"isSeeded": true}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return err
	}

	log.Info().Msg("✅ Shop data seeded")
	return nil
}
