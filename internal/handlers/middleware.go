package handlers

import (
	"context"
	"net/http"

	"github.com/pandamarket/apiserver/internal/auth"
)

type contextKey string

const contextUserIDKey contextKey = "uid"

// Session authenticates requests from the access-token cookie.
type Session struct {
	tokens   *auth.TokenManager
	denylist *auth.Denylist
}

// NewSession constructs the session middleware. denylist may be nil, in
// which case verification stays fully stateless.
func NewSession(tokens *auth.TokenManager, denylist *auth.Denylist) *Session {
	return &Session{tokens: tokens, denylist: denylist}
}

// WithSession extracts and validates the access-token cookie. No cookie
// lets the request proceed anonymously; an invalid, expired or revoked
// token is rejected before any handler logic runs; a valid one attaches
// the user id to the request context. No database lookup happens here —
// the token's claims are authoritative for its lifetime.
func (s *Session) WithSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := auth.ReadToken(r, auth.AccessTokenCookie)
		if tokenString == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := s.tokens.Verify(auth.KindAccess, tokenString)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		revoked, err := s.denylist.IsRevoked(r.Context(), claims.ID)
		if err != nil || revoked {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		ctx := context.WithValue(r.Context(), contextUserIDKey, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth rejects anonymous requests. It runs after WithSession, so
// authentication failures have already been handled; only the missing-
// cookie case reaches the rejection here.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := userIDFromContext(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func userIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(contextUserIDKey).(int64)
	if !ok || userID < 1 {
		return 0, false
	}
	return userID, true
}

// requesterID returns the authenticated user id, or zero for anonymous
// requests.
func requesterID(r *http.Request) int64 {
	userID, _ := userIDFromContext(r.Context())
	return userID
}
