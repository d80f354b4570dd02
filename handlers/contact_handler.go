package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"ensaj-backend/constants"
	"ensaj-backend/models"
	"ensaj-backend/services"
	"ensaj-backend/utils"
)

// ContactForwarder transmet les messages du site à l'équipe
type ContactForwarder interface {
	ForwardContact(ctx context.Context, req models.ContactRequest) error
	ForwardQuestion(ctx context.Context, req models.QuestionRequest) error
}

// ContactHandler gère le formulaire de contact et la page Q&A
type ContactHandler struct {
	forwarder ContactForwarder
}

// NewContactHandler crée une nouvelle instance de ContactHandler
func NewContactHandler(forwarder ContactForwarder) *ContactHandler {
	return &ContactHandler{forwarder: forwarder}
}

// respondForwardError distingue les erreurs de saisie des échecs d'envoi
func respondForwardError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		utils.RespondValidation(w, verr.FirstMessage(), verr.Fields)
		return
	}

	slog.Error("❌ Transmission du message impossible", "path", r.URL.Path, "error", err)
	utils.RespondJSON(w, http.StatusInternalServerError, models.SuccessResponse{
		Success: false,
		Message: constants.MsgSendFailed,
	})
}

// Contact transmet un message du formulaire de contact
func (h *ContactHandler) Contact(w http.ResponseWriter, r *http.Request) {
	var req models.ContactRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.forwarder.ForwardContact(r.Context(), req); err != nil {
		respondForwardError(w, r, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, models.SuccessResponse{Success: true})
}

// Question transmet une question de la page Q&A
func (h *ContactHandler) Question(w http.ResponseWriter, r *http.Request) {
	var req models.QuestionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.forwarder.ForwardQuestion(r.Context(), req); err != nil {
		respondForwardError(w, r, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: constants.MsgQuestionSent,
	})
}
