package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenKind distinguishes the two session token types.
type TokenKind string

const (
	// KindAccess is the short-lived token presented on every request.
	KindAccess TokenKind = "access"

	// KindRefresh is the long-lived token exchanged for new tokens.
	KindRefresh TokenKind = "refresh"
)

// ErrInvalidToken is returned for every verification failure: bad
// signature, expired, wrong kind, malformed. A single uniform error avoids
// leaking whether a presented token was expired or tampered with.
var ErrInvalidToken = errors.New("invalid token")

// SessionClaims are the claims carried by both token kinds.
type SessionClaims struct {
	UserID int64     `json:"uid"`
	Kind   TokenKind `json:"kind"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies the access/refresh token pair. Each
// kind is signed with its own secret, so a leaked access-signing key
// cannot forge refresh tokens and vice versa.
//
// Tokens are stateless: verification never touches the database. The
// baseline design has no revocation; when a Denylist is configured the
// middleware and refresh path additionally reject denylisted token ids.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewTokenManager constructs a TokenManager from the two secrets and TTLs.
func NewTokenManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) (*TokenManager, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, errors.New("both token secrets are required")
	}
	if accessSecret == refreshSecret {
		return nil, errors.New("access and refresh secrets must differ")
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("token TTLs must be positive")
	}
	return &TokenManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}, nil
}

// AccessTTL returns the configured access token lifetime.
func (m *TokenManager) AccessTTL() time.Duration { return m.accessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (m *TokenManager) RefreshTTL() time.Duration { return m.refreshTTL }

// Issue signs a token of the given kind for the user. Every token carries
// a fresh uuid token id so it can be denylisted individually.
func (m *TokenManager) Issue(kind TokenKind, userID int64) (string, error) {
	secret, ttl, err := m.kindParams(kind)
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := SessionClaims{
		UserID: userID,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// IssuePair signs a fresh access/refresh token pair for the user.
func (m *TokenManager) IssuePair(userID int64) (access, refresh string, err error) {
	access, err = m.Issue(KindAccess, userID)
	if err != nil {
		return "", "", err
	}
	refresh, err = m.Issue(KindRefresh, userID)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// Verify validates signature, expiry and kind, and returns the claims.
// Every failure maps to ErrInvalidToken.
func (m *TokenManager) Verify(kind TokenKind, tokenString string) (*SessionClaims, error) {
	secret, _, err := m.kindParams(kind)
	if err != nil {
		return nil, err
	}

	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Kind != kind || claims.UserID < 1 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (m *TokenManager) kindParams(kind TokenKind) ([]byte, time.Duration, error) {
	switch kind {
	case KindAccess:
		return m.accessSecret, m.accessTTL, nil
	case KindRefresh:
		return m.refreshSecret, m.refreshTTL, nil
	default:
		return nil, 0, errors.New("unknown token kind")
	}
}
