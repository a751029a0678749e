package httpapi

import (
	"net/http"
	"strings"
)

const bearerPrefix = "Bearer "

// bearerToken extracts the bearer token from the Authorization header. An
// empty return fails closed downstream: the scope resolver rejects it.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(auth[len(bearerPrefix):])
}
