package handlers

import (
	"net/http"

	"ensaj-backend/models"
	"ensaj-backend/services"
	"ensaj-backend/utils"
)

// FCMHandler gère l'enregistrement des appareils pour les notifications push
type FCMHandler struct {
	notifier *services.PushNotifier
	now      Clock
}

// NewFCMHandler crée une nouvelle instance de FCMHandler
func NewFCMHandler(notifier *services.PushNotifier, now Clock) *FCMHandler {
	return &FCMHandler{notifier: notifier, now: now}
}

// Subscribe enregistre un token FCM pour l'utilisateur courant
func (h *FCMHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var req models.FCMSubscribeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.UserAgent == "" {
		req.UserAgent = r.UserAgent()
	}

	if err := h.notifier.Subscribe(r.Context(), userID, req, h.now()); err != nil {
		respondServiceError(w, r, err, "l'enregistrement du token FCM")
		return
	}

	utils.RespondSuccess(w, "Notifications activées", nil)
}
