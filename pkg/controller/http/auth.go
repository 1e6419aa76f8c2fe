package http

import (
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareus/pkg/domain/model/auth"
	"github.com/secmon-lab/briareus/pkg/domain/types"
	"github.com/secmon-lab/briareus/pkg/usecase"
)

type loginRequest struct {
	Email string `json:"email"`
}

type meResponse struct {
	AccountID int64    `json:"account_id"`
	Email     string   `json:"email"`
	Name      string   `json:"name"`
	Role      string   `json:"role"`
	Status    string   `json:"status"`
	Sections  []string `json:"sections"`
}

func sessionCookies(r *http.Request, token *auth.Token) (*http.Cookie, *http.Cookie) {
	id := &http.Cookie{
		Name:     "token_id",
		Value:    token.ID.String(),
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		Expires:  token.ExpiresAt,
	}
	secret := &http.Cookie{
		Name:     "token_secret",
		Value:    string(token.Secret),
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		Expires:  token.ExpiresAt,
	}
	return id, secret
}

func clearSessionCookies(w http.ResponseWriter, r *http.Request) {
	for _, name := range []string{"token_id", "token_secret"} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,
		})
	}
}

// authLoginHandler issues a session for a registered account
func authLoginHandler(authUC *usecase.AuthUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeJSON(r, &req); err != nil {
			handleError(r.Context(), w, goerr.Wrap(usecase.ErrValidation, "invalid request body"))
			return
		}

		token, err := authUC.Login(r.Context(), req.Email)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}

		idCookie, secretCookie := sessionCookies(r, token)
		http.SetCookie(w, idCookie)
		http.SetCookie(w, secretCookie)

		writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true})
	}
}

// authLogoutHandler deletes the session and clears cookies
func authLogoutHandler(authUC *usecase.AuthUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if tokenIDCookie, err := r.Cookie("token_id"); err == nil {
			tokenID := auth.TokenID(tokenIDCookie.Value)
			if err := authUC.Logout(r.Context(), tokenID); err != nil {
				handleError(r.Context(), w, goerr.Wrap(err, "failed to logout"))
				return
			}
		}

		clearSessionCookies(w, r)
		writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true})
	}
}

// authMeHandler returns the acting identity. Runs behind authMiddleware so
// the identity is always present.
func authMeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := auth.IdentityFrom(r.Context())
		if identity == nil {
			handleError(r.Context(), w, goerr.Wrap(types.ErrNotFound, "no active session"))
			return
		}

		sections := make([]string, len(identity.Sections))
		for i, s := range identity.Sections {
			sections[i] = s.String()
		}

		writeJSON(r.Context(), w, http.StatusOK, meResponse{
			AccountID: identity.AccountID,
			Email:     identity.Email,
			Name:      identity.Name,
			Role:      identity.RoleID.String(),
			Status:    identity.Status.String(),
			Sections:  sections,
		})
	}
}
