package http

import (
	"net/http"
	"time"

	"github.com/vncsmyrnk/featurevote/internal/core/ports"
)

type AuthHandler struct {
	identity       ports.IdentityService
	tokenTTL       time.Duration
	cookieDomain   string
	cookieSameSite http.SameSite
}

func NewAuthHandler(identity ports.IdentityService, tokenTTL time.Duration, cookieDomain string, cookieSameSite http.SameSite) *AuthHandler {
	if tokenTTL <= 0 {
		tokenTTL = 15 * time.Minute
	}
	return &AuthHandler{
		identity:       identity,
		tokenTTL:       tokenTTL,
		cookieDomain:   cookieDomain,
		cookieSameSite: cookieSameSite,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// IssueToken godoc
// @Summary      Issues an access token for the authenticated user
// @Description  Returns a bearer token and sets it as the access_token cookie.
// @Tags         auth
// @Success      200
// @Failure      401
// @Router       /api/auth/token [post]
func (h *AuthHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "missing user context")
		return
	}

	token, err := h.identity.IssueAccessToken(user)
	if err != nil {
		respondError(w, r, err)
		return
	}

	h.setAccessTokenCookie(w, token)
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(h.tokenTTL.Seconds()),
	})
}

// Logout godoc
// @Summary      Logs the authenticated user out
// @Description  Clears the access token cookie
// @Tags         auth
// @Success      200
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: accessTokenCookie, MaxAge: -1, Path: "/", Domain: h.cookieDomain})
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *AuthHandler) setAccessTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    token,
		Path:     "/",
		Domain:   h.cookieDomain,
		HttpOnly: true,
		Secure:   true,
		SameSite: h.cookieSameSite,
		MaxAge:   int(h.tokenTTL.Seconds()),
	})
}
