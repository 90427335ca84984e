package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pictocat/backend/internal/config"
	"github.com/pictocat/backend/internal/handlers"
	"github.com/pictocat/backend/internal/middleware"
)

// New assembles the HTTP router. Middleware ordering matters: CORS first so
// even rate-limited responses carry the headers, then logging, then the
// limiters, with authentication applied only to the protected groups.
func New(cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.RequestLogger)
	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity() {
			r.Use(mw)
		}
	}
	r.Use(middleware.RateLimitMiddleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Public surface: the catalog is readable before login and activity
	// events accept anonymous reporters.
	r.Get("/api/catalog", handlers.GetCatalog)
	r.Post("/api/activity", handlers.RecordActivity)
	r.Get("/api/achievements", handlers.GetAchievements)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret, cfg.JWTIssuer))

		r.Get("/api/user/data", handlers.GetUserData)
		r.Post("/api/user/data", handlers.SaveUserData)
		r.Get("/api/user/sync", handlers.SyncUserData)
		r.Put("/api/user/profile", handlers.UpdateProfile)
		r.Put("/api/user/profile-picture", handlers.UpdateProfilePicture)

		r.Get("/api/shop", handlers.GetShopData)
		r.Post("/api/shop/envelopes/{envelopeId}", handlers.PurchaseEnvelope)
		r.Post("/api/shop/upgrades/{upgradeId}", handlers.BuyUpgrade)

		r.Get("/api/daily-pass", handlers.GetDailyPassStatus)
		r.Post("/api/daily-pass/claim", handlers.ClaimDailyPass)

		r.Get("/api/friends", handlers.GetFriendData)
		r.Post("/api/friends/requests", handlers.AddFriend)
		r.Post("/api/friends/requests/respond", handlers.RespondToFriendRequest)
		r.Delete("/api/friends", handlers.RemoveFriend)

		r.Post("/api/phrases/publish", handlers.PublishPhrase)
		r.Post("/api/phrases/{publicPhraseId}/like", handlers.LikePhrase)
		r.Get("/api/feed", handlers.GetPublicFeed)
		r.Get("/api/users/search", handlers.SearchUsers)
		r.Get("/api/users/{username}/profile", handlers.GetPublicProfile)

		// The stricter per-IP suggestion limit is part of the production
		// middleware chain; it matches this path only.
		r.Post("/api/suggestions", handlers.GetSuggestions)

		r.Route("/api/admin", func(r chi.Router) {
			r.Get("/users", handlers.GetAllUsers)
			r.Get("/phrases", handlers.GetAllPublicPhrases)
			r.Put("/users/{userId}/verified", handlers.SetVerifiedStatus)
			r.Delete("/phrases/{publicPhraseId}", handlers.CensorPhrase)
			r.Put("/envelopes/{envelopeId}", handlers.UpdateEnvelope)
			r.Post("/catalog", handlers.AddCatalogImage)
			r.Get("/insights", handlers.GetInsights)
			r.Post("/unblock-ip", handlers.UnblockIP)
		})
	})

	return r
}
