package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// RolesClaim is the namespaced custom claim the identity provider attaches
// role assignments under.
const RolesClaim = "https://pictocat.app/roles"

// Identity is the authenticated caller extracted from the bearer token.
// UserID is the provider's opaque subject id and doubles as the user
// document key.
type Identity struct {
	UserID string
	Email  string
	Roles  []string
}

// HasRole reports whether the token carried the given role assignment.
func (id Identity) HasRole(role string) bool {
	for _, r := range id.Roles {
		if r == role {
			return true
		}
	}
	return false
}

type ctxKeyIdentity struct{}

// IdentityFromContext returns the Identity placed by Auth, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKeyIdentity{}).(Identity)
	return id, ok
}

type tokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
	// Roles is decoded manually from the namespaced claim.
	Roles []string `json:"-"`
}

func parseToken(raw, secret, issuer string) (*tokenClaims, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(
		raw,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
	)
	if err != nil {
		return nil, err
	}

	// Re-decode to pick up the namespaced roles claim, which has no stable
	// struct field name.
	if mapClaims, ok := token.Claims.(*tokenClaims); ok {
		claims = mapClaims
	}
	return claims, nil
}

func rolesFromToken(raw string) []string {
	// The payload segment is all we need; signature was already verified.
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return nil
	}
	payload, err := jwt.NewParser().DecodeSegment(parts[1])
	if err != nil {
		return nil
	}
	var body map[string]json.RawMessage
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil
	}
	var roles []string
	if rawRoles, ok := body[RolesClaim]; ok {
		_ = json.Unmarshal(rawRoles, &roles)
	}
	return roles
}

// IdentityFromRequest verifies the bearer token on r and returns the caller.
// Useful for routes where authentication is optional.
func IdentityFromRequest(r *http.Request, secret, issuer string) (Identity, error) {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		raw = strings.TrimSpace(raw[7:])
	}
	if raw == "" {
		return Identity{}, jwt.ErrTokenMalformed
	}

	claims, err := parseToken(raw, secret, issuer)
	if err != nil {
		return Identity{}, err
	}
	if claims.Subject == "" {
		return Identity{}, jwt.ErrTokenInvalidSubject
	}

	return Identity{
		UserID: claims.Subject,
		Email:  claims.Email,
		Roles:  rolesFromToken(raw),
	}, nil
}

// Auth validates the bearer token and seeds the request context with the
// caller's identity. Missing or invalid credentials yield 401.
func Auth(secret, issuer string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := IdentityFromRequest(r, secret, issuer)
			if err != nil {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyIdentity{}, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"message":"Unauthorized"}`))
}
