package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const PhoneKey contextKey = "phone"

// BearerPhone validates the lightweight Authorization header used by the
// portal: the bearer value is the plaintext phone number established at
// code verification. No signing is involved; this gates casual access
// only, which is the documented security model.
func BearerPhone(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			writeJSONError(w, http.StatusUnauthorized, "missing or invalid authorization header")
			return
		}
		phone := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if phone == "" {
			writeJSONError(w, http.StatusBadRequest, "empty phone in authorization header")
			return
		}
		ctx := context.WithValue(r.Context(), PhoneKey, phone)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// PhoneFromContext extracts the authenticated phone from the request context.
func PhoneFromContext(ctx context.Context) (string, bool) {
	p, ok := ctx.Value(PhoneKey).(string)
	return p, ok
}
