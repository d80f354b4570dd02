package handlers

import (
	"net/http"

	"ensaj-backend/constants"
	"ensaj-backend/models"
	"ensaj-backend/services"
	"ensaj-backend/utils"
)

// AdminHandler gère l'administration des comptes et des codes d'inscription
type AdminHandler struct {
	users *services.UserService
	codes *services.CodeService
	now   Clock
}

// NewAdminHandler crée une nouvelle instance de AdminHandler
func NewAdminHandler(users *services.UserService, codes *services.CodeService, now Clock) *AdminHandler {
	return &AdminHandler{users: users, codes: codes, now: now}
}

// GetUsers retourne la liste de tous les utilisateurs
func (h *AdminHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		respondServiceError(w, r, err, "la récupération des utilisateurs")
		return
	}
	if users == nil {
		users = []models.User{}
	}

	utils.RespondJSON(w, http.StatusOK, users)
}

// GetUser retourne un utilisateur
func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseObjectIDVar(w, r, "id", constants.ErrInvalidUserID)
	if !ok {
		return
	}

	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err, "la récupération de l'utilisateur")
		return
	}

	utils.RespondJSON(w, http.StatusOK, user)
}

// CreateUser crée un compte avec un rôle explicite
func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.users.Create(r.Context(), req, h.now())
	if err != nil {
		respondServiceError(w, r, err, "la création de l'utilisateur")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, user)
}

// UpdateUser modifie partiellement un utilisateur
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseObjectIDVar(w, r, "id", constants.ErrInvalidUserID)
	if !ok {
		return
	}

	var req models.UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.users.Update(r.Context(), id, req, h.now())
	if err != nil {
		respondServiceError(w, r, err, "la mise à jour de l'utilisateur")
		return
	}

	utils.RespondJSON(w, http.StatusOK, user)
}

// DeleteUser supprime un utilisateur (jamais soi-même)
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actorID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := ParseObjectIDVar(w, r, "id", constants.ErrInvalidUserID)
	if !ok {
		return
	}

	if err := h.users.Delete(r.Context(), actorID, id); err != nil {
		respondServiceError(w, r, err, "la suppression de l'utilisateur")
		return
	}

	utils.RespondNoContent(w)
}

// GetCodes retourne tous les codes d'inscription, les plus récents d'abord
func (h *AdminHandler) GetCodes(w http.ResponseWriter, r *http.Request) {
	codes, err := h.codes.List(r.Context())
	if err != nil {
		respondServiceError(w, r, err, "la récupération des codes")
		return
	}
	if codes == nil {
		codes = []models.RegistrationCode{}
	}

	utils.RespondJSON(w, http.StatusOK, codes)
}

// CreateCode enregistre un code saisi manuellement
func (h *AdminHandler) CreateCode(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCodeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	code, err := h.codes.Create(r.Context(), req, h.now())
	if err != nil {
		respondServiceError(w, r, err, "la création du code")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, code)
}

// GenerateCodes génère un lot de codes aléatoires
func (h *AdminHandler) GenerateCodes(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateCodesRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	codes, err := h.codes.Generate(r.Context(), req.Count, h.now())
	if err != nil {
		respondServiceError(w, r, err, "la génération des codes")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, codes)
}

// DeleteCode supprime un code non utilisé
func (h *AdminHandler) DeleteCode(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseObjectIDVar(w, r, "id", constants.ErrInvalidCodeID)
	if !ok {
		return
	}

	if err := h.codes.Delete(r.Context(), id); err != nil {
		respondServiceError(w, r, err, "la suppression du code")
		return
	}

	utils.RespondNoContent(w)
}
