package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"ensaj-backend/constants"
	"ensaj-backend/middleware"
	"ensaj-backend/services"
	"ensaj-backend/utils"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Clock fournit l'instant de référence d'une requête, capturé une seule fois par handler
type Clock func() time.Time

// NewClock retourne une horloge dans le fuseau de l'application
func NewClock(loc *time.Location) Clock {
	return func() time.Time { return time.Now().In(loc) }
}

// decodeJSON décode le corps de la requête. Retourne false et écrit l'erreur si non.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.RespondError(w, http.StatusBadRequest, constants.ErrInvalidJSONBody)
		return false
	}
	return true
}

// ParseObjectIDVar extrait et valide un ObjectID depuis les vars (clé configurable, msg d'erreur configurable).
func ParseObjectIDVar(w http.ResponseWriter, r *http.Request, key, errMsg string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)[key])
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, errMsg)
		return primitive.NilObjectID, false
	}
	return id, true
}

// currentUserID retourne l'ID de l'utilisateur authentifié, ou écrit une 401
func currentUserID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		utils.RespondError(w, http.StatusUnauthorized, constants.ErrNotAuthenticated)
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		utils.RespondError(w, http.StatusUnauthorized, constants.ErrInvalidToken)
		return primitive.NilObjectID, false
	}
	return id, true
}

// respondServiceError traduit une erreur de service en réponse HTTP.
// Les erreurs inattendues sont journalisées et jamais renvoyées telles quelles.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		utils.RespondValidation(w, verr.FirstMessage(), verr.Fields)
		return
	}

	var serr *services.Error
	if errors.As(err, &serr) {
		switch serr.Kind {
		case services.KindInvalidCredentials:
			utils.RespondValidation(w, serr.Error(), map[string][]string{"email": {serr.Error()}})
			return
		case services.KindConflict:
			utils.RespondJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": serr.Error()})
			return
		case services.KindForbidden:
			utils.RespondError(w, http.StatusForbidden, serr.Error())
			return
		case services.KindNotFound:
			utils.RespondError(w, http.StatusNotFound, serr.Error())
			return
		}
	}

	slog.Error("Erreur lors de "+action, "method", r.Method, "path", r.URL.Path, "error", err)
	utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
}
