package middleware

import (
	"log/slog"
	"net/http"

	"ensaj-backend/constants"
	"ensaj-backend/services"
	"ensaj-backend/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RequireAdmin vérifie que l'utilisateur authentifié a le rôle ADMIN.
// Le rôle est relu en base pour qu'une rétrogradation prenne effet immédiatement.
func RequireAdmin(users services.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetUserFromContext(r.Context())
			if claims == nil {
				utils.RespondError(w, http.StatusUnauthorized, constants.ErrNotAuthenticated)
				return
			}

			userID, err := primitive.ObjectIDFromHex(claims.UserID)
			if err != nil {
				utils.RespondError(w, http.StatusUnauthorized, constants.ErrInvalidToken)
				return
			}

			user, err := users.FindByID(r.Context(), userID)
			if err != nil {
				slog.Error("Erreur récupération utilisateur", "error", err)
				utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
				return
			}
			if user == nil {
				utils.RespondError(w, http.StatusUnauthorized, constants.ErrUserNotFound)
				return
			}

			if !user.IsAdmin() {
				slog.Warn("⚠️  Accès admin refusé", "user_id", claims.UserID)
				utils.RespondError(w, http.StatusForbidden, constants.ErrAdminOnly)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
