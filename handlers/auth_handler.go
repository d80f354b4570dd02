package handlers

import (
	"net/http"

	"ensaj-backend/constants"
	"ensaj-backend/middleware"
	"ensaj-backend/models"
	"ensaj-backend/services"
	"ensaj-backend/utils"
)

// AuthHandler gère l'inscription, la connexion et le profil de l'utilisateur courant
type AuthHandler struct {
	identity *services.IdentityService
	now      Clock
}

// NewAuthHandler crée une nouvelle instance de AuthHandler
func NewAuthHandler(identity *services.IdentityService, now Clock) *AuthHandler {
	return &AuthHandler{identity: identity, now: now}
}

// Register gère l'inscription d'un nouvel utilisateur avec un code d'invitation
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.identity.Register(r.Context(), req, h.now())
	if err != nil {
		respondServiceError(w, r, err, "l'inscription")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, resp)
}

// Login gère la connexion d'un utilisateur
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.identity.Login(r.Context(), req, h.now())
	if err != nil {
		respondServiceError(w, r, err, "la connexion")
		return
	}

	utils.RespondJSON(w, http.StatusOK, resp)
}

// Logout révoque le token courant
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		utils.RespondError(w, http.StatusUnauthorized, constants.ErrNotAuthenticated)
		return
	}

	if err := h.identity.Logout(r.Context(), claims); err != nil {
		respondServiceError(w, r, err, "la déconnexion")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": constants.MsgLogout})
}

// User retourne l'utilisateur authentifié
func (h *AuthHandler) User(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	user, err := h.identity.CurrentUser(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err, "la récupération du profil")
		return
	}

	utils.RespondJSON(w, http.StatusOK, user)
}

// UpdateProfile modifie nom, prénom et email
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var req models.UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.identity.UpdateProfile(r.Context(), userID, req, h.now())
	if err != nil {
		respondServiceError(w, r, err, "la mise à jour du profil")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"message": constants.MsgProfileUpdated,
		"user":    user,
	})
}

// ChangePassword remplace le mot de passe de l'utilisateur courant
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var req models.ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.identity.ChangePassword(r.Context(), userID, req, h.now()); err != nil {
		respondServiceError(w, r, err, "le changement de mot de passe")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": constants.MsgPasswordUpdated})
}
