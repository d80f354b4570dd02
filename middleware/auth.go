package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"ensaj-backend/constants"
	"ensaj-backend/services"
	"ensaj-backend/utils"
)

type contextKey string

const UserContextKey contextKey = "user"

// bearerToken extrait le jeton de l'en-tête "Authorization: Bearer <token>"
func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// Auth vérifie le token JWT et qu'il n'a pas été révoqué par une déconnexion
func Auth(jwtSecret string, revoker services.TokenRevoker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				utils.RespondError(w, http.StatusUnauthorized, constants.ErrNotAuthenticated)
				return
			}

			tokenString, ok := bearerToken(r)
			if !ok {
				utils.RespondError(w, http.StatusUnauthorized, "Format du token invalide")
				return
			}

			claims, err := utils.ValidateToken(tokenString, jwtSecret)
			if err != nil {
				utils.RespondError(w, http.StatusUnauthorized, constants.ErrInvalidToken)
				return
			}

			revoked, err := revoker.IsRevoked(r.Context(), claims.ID)
			if err != nil {
				slog.Error("Erreur vérification révocation", "error", err)
				utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
				return
			}
			if revoked {
				utils.RespondError(w, http.StatusUnauthorized, constants.ErrRevokedToken)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserFromContext récupère les informations de l'utilisateur depuis le contexte
func GetUserFromContext(ctx context.Context) *utils.Claims {
	claims, ok := ctx.Value(UserContextKey).(*utils.Claims)
	if !ok {
		return nil
	}
	return claims
}

// WithClaims place des claims dans le contexte, comme le ferait Auth
func WithClaims(ctx context.Context, claims *utils.Claims) context.Context {
	return context.WithValue(ctx, UserContextKey, claims)
}
