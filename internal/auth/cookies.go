package auth

import (
	"net/http"
	"time"
)

// Cookie names for the two session tokens.
const (
	AccessTokenCookie  = "access-token"
	RefreshTokenCookie = "refresh-token"
)

// CookieWriter writes and clears the session cookie pair.
type CookieWriter struct {
	secure     bool
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewCookieWriter constructs a CookieWriter. secure marks cookies Secure
// and should be enabled in production.
func NewCookieWriter(secure bool, accessTTL, refreshTTL time.Duration) *CookieWriter {
	return &CookieWriter{
		secure:     secure,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// SetSession sets both token cookies on the response.
func (c *CookieWriter) SetSession(w http.ResponseWriter, accessToken, refreshToken string) {
	http.SetCookie(w, c.sessionCookie(AccessTokenCookie, accessToken, c.accessTTL))
	http.SetCookie(w, c.sessionCookie(RefreshTokenCookie, refreshToken, c.refreshTTL))
}

// ClearSession expires both token cookies.
func (c *CookieWriter) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, c.sessionCookie(AccessTokenCookie, "", -time.Second))
	http.SetCookie(w, c.sessionCookie(RefreshTokenCookie, "", -time.Second))
}

func (c *CookieWriter) sessionCookie(name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ReadToken returns the named token cookie's value, or "" when absent.
func ReadToken(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
