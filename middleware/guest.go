package middleware

import (
	"net/http"

	"ensaj-backend/constants"
	"ensaj-backend/utils"
)

// Guest refuse l'accès si un token valide est déjà présent (login, register).
// Un token absent, mal formé ou expiré laisse passer la requête.
func Guest(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			if _, err := utils.ValidateToken(tokenString, jwtSecret); err == nil {
				utils.RespondError(w, http.StatusForbidden, constants.ErrAlreadyAuthenticated)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
