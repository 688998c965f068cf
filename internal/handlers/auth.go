package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pandamarket/apiserver/internal/auth"
	"github.com/pandamarket/apiserver/internal/services"
)

// AuthHandler provides registration, login, token refresh and logout.
type AuthHandler struct {
	userService *services.UserService
	tokens      *auth.TokenManager
	cookies     *auth.CookieWriter
	denylist    *auth.Denylist
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(userService *services.UserService, tokens *auth.TokenManager, cookies *auth.CookieWriter, denylist *auth.Denylist) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		tokens:      tokens,
		cookies:     cookies,
		denylist:    denylist,
	}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, handler *AuthHandler) {
	r.Post("/register", handler.Register)
	r.Post("/login", handler.Login)
	r.Post("/refresh", handler.Refresh)
	r.Post("/logout", handler.Logout)
}

// Register creates a new account and starts a session. Registration and
// login share the same issuance path: both set the cookie pair.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	user, err := h.userService.Register(r.Context(), services.RegisterInput{
		Email:    req.Email,
		Nickname: req.Nickname,
		Password: req.Password,
		Image:    req.Image,
	})
	if err != nil {
		writeServiceError(w, err, "failed to register")
		return
	}

	if err := h.startSession(w, user.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Login verifies credentials and sets the cookie pair.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing credentials")
		return
	}

	user, err := h.userService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err, "failed to authenticate")
		return
	}

	if err := h.startSession(w, user.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Refresh exchanges a valid refresh token for a fresh cookie pair. The
// refresh token is rotated on every use; when a denylist is configured
// the rotated-out token id is revoked for its remaining lifetime.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	tokenString := auth.ReadToken(r, auth.RefreshTokenCookie)
	if tokenString == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	claims, err := h.tokens.Verify(auth.KindRefresh, tokenString)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	revoked, err := h.denylist.IsRevoked(r.Context(), claims.ID)
	if err != nil || revoked {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.userService.GetByID(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.startSession(w, user.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	_ = h.denylist.Revoke(r.Context(), claims.ID, claims.ExpiresAt.Time)

	writeJSON(w, http.StatusOK, user)
}

// Logout clears the cookie pair and, when a denylist is configured,
// revokes both presented tokens.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	for _, pair := range []struct {
		cookie string
		kind   auth.TokenKind
	}{
		{auth.AccessTokenCookie, auth.KindAccess},
		{auth.RefreshTokenCookie, auth.KindRefresh},
	} {
		tokenString := auth.ReadToken(r, pair.cookie)
		if tokenString == "" {
			continue
		}
		if claims, err := h.tokens.Verify(pair.kind, tokenString); err == nil {
			_ = h.denylist.Revoke(r.Context(), claims.ID, claims.ExpiresAt.Time)
		}
	}

	h.cookies.ClearSession(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the current authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, "failed to load user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) startSession(w http.ResponseWriter, userID int64) error {
	accessToken, refreshToken, err := h.tokens.IssuePair(userID)
	if err != nil {
		return err
	}
	h.cookies.SetSession(w, accessToken, refreshToken)
	return nil
}

type RegisterRequest struct {
	Email    string  `json:"email"`
	Nickname string  `json:"nickname"`
	Password string  `json:"password"`
	Image    *string `json:"image"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
