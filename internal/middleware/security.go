package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/pictocat/backend/pkg/clientip"
	"golang.org/x/time/rate"
)

const (
	headerXContentTypeOptions     = "X-Content-Type-Options"
	headerXFrameOptions           = "X-Frame-Options"
	headerXXSSProtection          = "X-XSS-Protection"
	headerContentSecurityPolicy   = "Content-Security-Policy"
	headerStrictTransportSecurity = "Strict-Transport-Security"
)

// SecurityHeaders sets security-related response headers.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(headerXContentTypeOptions, "nosniff")
		w.Header().Set(headerXFrameOptions, "DENY")
		w.Header().Set(headerXXSSProtection, "1; mode=block")
		w.Header().Set(headerContentSecurityPolicy, "default-src 'self'")
		w.Header().Set(headerStrictTransportSecurity, "max-age=31536000; includeSubDomains")
		next.ServeHTTP(w, r)
	})
}

// --- Global rate limiting (per-IP, 2/s, burst 20) ---

var (
	globalEntries    = make(map[string]*limiterEntry)
	globalEntriesMu  sync.Mutex
	globalCleanupRun bool
)

const (
	globalRateLimitRPS    = 2
	globalRateLimitBurst  = 20
	globalCleanupInterval = 5 * time.Minute
	globalLimiterTTL      = 30 * time.Minute
)

type limiterEntry struct {
	limiter *rate.Limiter
	lastUse time.Time
}

func getGlobalLimiter(ip string) *rate.Limiter {
	globalEntriesMu.Lock()
	defer globalEntriesMu.Unlock()
	startGlobalCleanupOnce()
	e, ok := globalEntries[ip]
	if !ok {
		e = &limiterEntry{
			limiter: rate.NewLimiter(rate.Limit(globalRateLimitRPS), globalRateLimitBurst),
			lastUse: time.Now(),
		}
		globalEntries[ip] = e
	}
	e.lastUse = time.Now()
	return e.limiter
}

func startGlobalCleanupOnce() {
	if globalCleanupRun {
		return
	}
	globalCleanupRun = true
	go func() {
		ticker := time.NewTicker(globalCleanupInterval)
		defer ticker.Stop()
		for range ticker.C {
			globalEntriesMu.Lock()
			now := time.Now()
			for ip, e := range globalEntries {
				if now.Sub(e.lastUse) > globalLimiterTTL {
					delete(globalEntries, ip)
				}
			}
			globalEntriesMu.Unlock()
		}
	}()
}

// GlobalRateLimit limits each IP to 2 req/s, burst 20. Returns 429 when exceeded.
func GlobalRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientip.RealClientIP(r)
		if !getGlobalLimiter(ip).Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"message":"Too many requests. Please slow down."}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --- Suggestion route rate limiting (1 req/5s, burst 2) ---
// The AI suggestion endpoint fans out to an external provider, so it gets a
// much stricter per-IP limit than the rest of the API.

var (
	suggestEntries    = make(map[string]*limiterEntry)
	suggestEntriesMu  sync.Mutex
	suggestCleanupRun bool
)

const (
	suggestRateLimitEvery  = 5 * time.Second
	suggestRateLimitBurst  = 2
	suggestCleanupInterval = 5 * time.Minute
	suggestLimiterTTL      = 30 * time.Minute
)

func getSuggestLimiter(ip string) *rate.Limiter {
	suggestEntriesMu.Lock()
	defer suggestEntriesMu.Unlock()
	startSuggestCleanupOnce()
	e, ok := suggestEntries[ip]
	if !ok {
		e = &limiterEntry{
			limiter: rate.NewLimiter(rate.Every(suggestRateLimitEvery), suggestRateLimitBurst),
			lastUse: time.Now(),
		}
		suggestEntries[ip] = e
	}
	e.lastUse = time.Now()
	return e.limiter
}

func startSuggestCleanupOnce() {
	if suggestCleanupRun {
		return
	}
	suggestCleanupRun = true
	go func() {
		ticker := time.NewTicker(suggestCleanupInterval)
		defer ticker.Stop()
		for range ticker.C {
			suggestEntriesMu.Lock()
			now := time.Now()
			for ip, e := range suggestEntries {
				if now.Sub(e.lastUse) > suggestLimiterTTL {
					delete(suggestEntries, ip)
				}
			}
			suggestEntriesMu.Unlock()
		}
	}()
}

// SuggestionRateLimit applies the stricter limit to the AI suggestion route only.
// Use after GlobalRateLimit.
func SuggestionRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/suggestions" {
			next.ServeHTTP(w, r)
			return
		}
		ip := clientip.RealClientIP(r)
		if !getSuggestLimiter(ip).Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"message":"Too many suggestion requests. Please try again later."}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ProductionSecurity returns middlewares for production: SecurityHeaders → GlobalRateLimit → SuggestionRateLimit.
func ProductionSecurity() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		SecurityHeaders,
		GlobalRateLimit,
		SuggestionRateLimit,
	}
}
