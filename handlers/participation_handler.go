package handlers

import (
	"net/http"

	"ensaj-backend/constants"
	"ensaj-backend/models"
	"ensaj-backend/services"
	"ensaj-backend/utils"
)

// ParticipationHandler gère les participations aux événements
type ParticipationHandler struct {
	participations *services.ParticipationService
	now            Clock
}

// NewParticipationHandler crée une nouvelle instance de ParticipationHandler
func NewParticipationHandler(participations *services.ParticipationService, now Clock) *ParticipationHandler {
	return &ParticipationHandler{participations: participations, now: now}
}

// Create enregistre la participation de l'utilisateur courant
func (h *ParticipationHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var req models.CreateParticipationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	participation, err := h.participations.Create(r.Context(), userID, req, h.now())
	if err != nil {
		respondServiceError(w, r, err, "la création de la participation")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, participation)
}

// Update modifie une participation appartenant à l'utilisateur courant
func (h *ParticipationHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := ParseObjectIDVar(w, r, "id", constants.ErrInvalidParticipationID)
	if !ok {
		return
	}

	var req models.UpdateParticipationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	participation, err := h.participations.Update(r.Context(), userID, id, req, h.now())
	if err != nil {
		respondServiceError(w, r, err, "la mise à jour de la participation")
		return
	}

	utils.RespondJSON(w, http.StatusOK, participation)
}

// Delete supprime une participation appartenant à l'utilisateur courant
func (h *ParticipationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := ParseObjectIDVar(w, r, "id", constants.ErrInvalidParticipationID)
	if !ok {
		return
	}

	if err := h.participations.Delete(r.Context(), userID, id); err != nil {
		respondServiceError(w, r, err, "la suppression de la participation")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": constants.MsgParticipationDeleted})
}

// ForUser retourne les participations de l'utilisateur courant avec leur événement
func (h *ParticipationHandler) ForUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	parts, err := h.participations.ListForUser(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err, "la récupération des participations")
		return
	}
	if parts == nil {
		parts = []models.ParticipationWithEvent{}
	}

	utils.RespondJSON(w, http.StatusOK, parts)
}

// ForEvent retourne les participants d'un événement
func (h *ParticipationHandler) ForEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := ParseObjectIDVar(w, r, "id", constants.ErrInvalidEventID)
	if !ok {
		return
	}

	parts, err := h.participations.ListForEvent(r.Context(), eventID)
	if err != nil {
		respondServiceError(w, r, err, "la récupération des participants")
		return
	}
	if parts == nil {
		parts = []models.ParticipationWithUser{}
	}

	utils.RespondJSON(w, http.StatusOK, parts)
}

// UserParticipations retourne la vue à plat des participations de l'utilisateur
func (h *ParticipationHandler) UserParticipations(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	views, err := h.participations.UserParticipations(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err, "la récupération des participations")
		return
	}
	if views == nil {
		views = []models.UserParticipationView{}
	}

	utils.RespondJSON(w, http.StatusOK, views)
}

// UpcomingEvents retourne les événements à venir de l'utilisateur
func (h *ParticipationHandler) UpcomingEvents(w http.ResponseWriter, r *http.Request) {
	h.userEvents(w, r, true)
}

// PastEvents retourne les événements passés de l'utilisateur
func (h *ParticipationHandler) PastEvents(w http.ResponseWriter, r *http.Request) {
	h.userEvents(w, r, false)
}

func (h *ParticipationHandler) userEvents(w http.ResponseWriter, r *http.Request, upcoming bool) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	next, past, err := h.participations.UserEvents(r.Context(), userID, h.now())
	if err != nil {
		respondServiceError(w, r, err, "la récupération des événements")
		return
	}

	views := past
	if upcoming {
		views = next
	}
	if views == nil {
		views = []models.UserEventView{}
	}

	utils.RespondJSON(w, http.StatusOK, views)
}
