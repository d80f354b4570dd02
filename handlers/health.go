package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"ensaj-backend/utils"
)

var startTime = time.Now()

// HealthHandler gère les endpoints de santé
type HealthHandler struct {
	environment string
	ping        func(ctx context.Context) error
}

// NewHealthHandler crée un nouveau HealthHandler; ping vérifie la base
func NewHealthHandler(environment string, ping func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{environment: environment, ping: ping}
}

// Health retourne l'état de santé du serveur avec métriques
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(startTime).String()

	// Vérifier la connexion MongoDB
	dbStatus := "ok"
	if err := h.ping(r.Context()); err != nil {
		dbStatus = "error"
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "ok",
		"message":    "Le serveur fonctionne correctement",
		"env":        h.environment,
		"database":   "MongoDB",
		"db_status":  dbStatus,
		"uptime":     uptime,
		"go_version": runtime.Version(),
	})
}
