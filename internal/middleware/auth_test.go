package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "test-secret"
	testIssuer = "https://pictocat.app/"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":      "auth0|user123",
		"iss":      testIssuer,
		"email":    "user@example.com",
		"exp":      time.Now().Add(time.Hour).Unix(),
		RolesClaim: []string{"admin"},
	}
}

func authedRequest(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/user/data", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestAuthAcceptsValidToken(t *testing.T) {
	var got Identity
	handler := Auth(testSecret, testIssuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFromContext(r.Context())
		require.True(t, ok)
		got = id
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(signToken(t, testSecret, validClaims())))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "auth0|user123", got.UserID)
	assert.Equal(t, "user@example.com", got.Email)
	assert.True(t, got.HasRole("admin"))
	assert.False(t, got.HasRole("mod"))
}

func TestAuthRejectsBadCredentials(t *testing.T) {
	handler := Auth(testSecret, testIssuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	expired := validClaims()
	expired["exp"] = time.Now().Add(-time.Hour).Unix()

	wrongIssuer := validClaims()
	wrongIssuer["iss"] = "https://evil.example.com/"

	noSubject := validClaims()
	delete(noSubject, "sub")

	cases := map[string]string{
		"missing token":   "",
		"garbage token":   "not.a.jwt",
		"wrong secret":    signToken(t, "other-secret", validClaims()),
		"expired":         signToken(t, testSecret, expired),
		"wrong issuer":    signToken(t, testSecret, wrongIssuer),
		"missing subject": signToken(t, testSecret, noSubject),
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, authedRequest(token))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"message":"Unauthorized"}`, rec.Body.String())
		})
	}
}

func TestAuthRejectsUnexpectedSigningMethod(t *testing.T) {
	handler := Auth(testSecret, testIssuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	// alg=none with an empty signature must never pass.
	token := jwt.NewWithClaims(jwt.SigningMethodNone, validClaims())
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(signed))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestIdentityFromRequestOptionalUse(t *testing.T) {
	req := authedRequest(signToken(t, testSecret, validClaims()))
	id, err := IdentityFromRequest(req, testSecret, testIssuer)
	require.NoError(t, err)
	assert.Equal(t, "auth0|user123", id.UserID)

	_, err = IdentityFromRequest(authedRequest(""), testSecret, testIssuer)
	assert.Error(t, err)
}

func TestRolesFromTokenIgnoresMalformedClaim(t *testing.T) {
	claims := validClaims()
	claims[RolesClaim] = "not-an-array"
	req := authedRequest(signToken(t, testSecret, claims))

	id, err := IdentityFromRequest(req, testSecret, testIssuer)
	require.NoError(t, err)
	assert.Empty(t, id.Roles)
}
