package auth

import (
	"context"
	"net/http"
)

// contextKey is unexported so only this package can read or write identity
// values in a request context — a plain string key could be shadowed by any
// package that guesses it.
type contextKey string

const emailKey contextKey = "email"

// SessionCookie is the name of the HttpOnly cookie holding the JWT.
const SessionCookie = "crave_session"

// RequireAuth enforces a valid session on protected routes. It reads the
// JWT from the session cookie, validates it, and stores the resolved email
// in the request context; missing or invalid tokens get 401 and the chain
// stops. Downstream handlers treat the email as the identity — the user
// directory's get-or-create is idempotent, so resolving it to a row on
// every request is safe.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email, err := extractEmail(r, tokens)
			if err != nil {
				http.Error(w, `{"error":"unauthorized","message":"valid authentication required"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), emailKey, email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// EmailFromContext retrieves the authenticated user's email.
// Returns ("", false) for anonymous requests.
func EmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(emailKey).(string)
	return email, ok && email != ""
}

// WithEmail returns a context carrying the given identity. Handler tests
// use it to fake an authenticated request without minting tokens.
func WithEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, emailKey, email)
}

func extractEmail(r *http.Request, tokens *TokenService) (string, error) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return "", err
	}
	return tokens.Validate(cookie.Value)
}
