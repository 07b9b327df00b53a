package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"net/http"
	"strings"
)

const (
	HeaderName = "Authorization"
	QueryParam = "token"
)

// Device-themed words for feed token generation
var tokenWords = []string{
	"tracker", "chain", "phrase", "instrument", "table",
	"groove", "scale", "mixer", "effect", "sample",
	"wavsynth", "macrosyn", "hyper", "fmsynth", "sampler",
	"midi", "song", "live", "pulse",
}

// Auth guards the device feed endpoint with a shared token
type Auth struct {
	token string
}

// New creates a new Auth instance with the given token
func New(token string) *Auth {
	return &Auth{token: token}
}

// GenerateToken creates a random 3-word token
func GenerateToken() string {
	words := make([]string, 3)
	for i := range words {
		words[i] = tokenWords[randomInt(len(tokenWords))]
	}
	return strings.Join(words, "-")
}

// Token returns the configured token
func (a *Auth) Token() string {
	return a.token
}

// Valid reports whether candidate matches the configured token
func (a *Auth) Valid(candidate string) bool {
	if a.token == "" || candidate == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(a.token)) == 1
}

// TokenFromRequest extracts a bearer token, falling back to the token query parameter
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get(HeaderName); h != "" {
		if rest, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(rest)
		}
		return ""
	}
	return r.URL.Query().Get(QueryParam)
}

// RequireToken middleware for publisher endpoints (returns 401)
func (a *Auth) RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.Valid(TokenFromRequest(r)) {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code":"UNAUTHORIZED","error":"Unauthorized - feed token required"}`))
	})
}

// randomInt returns a random int in [0, max)
func randomInt(max int) int {
	bytes := make([]byte, 1)
	rand.Read(bytes)
	return int(bytes[0]) % max
}
