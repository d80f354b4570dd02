package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"ensaj-backend/constants"
	"ensaj-backend/i18n"
	"ensaj-backend/services"
	"ensaj-backend/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// StatsHandler gère le tableau de bord, les exports et les statistiques personnelles
type StatsHandler struct {
	stats      *services.StatsService
	translator *i18n.Translator
	now        Clock
}

// NewStatsHandler crée une nouvelle instance de StatsHandler
func NewStatsHandler(stats *services.StatsService, translator *i18n.Translator, now Clock) *StatsHandler {
	return &StatsHandler{stats: stats, translator: translator, now: now}
}

func locale(r *http.Request) string {
	return r.Header.Get(constants.HeaderAcceptLanguage)
}

// Global retourne les statistiques globales
func (h *StatsHandler) Global(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Global(r.Context(), h.now())
	if err != nil {
		respondServiceError(w, r, err, "le calcul des statistiques")
		return
	}

	utils.RespondJSON(w, http.StatusOK, stats)
}

// Participation retourne les statistiques de participation détaillées
func (h *StatsHandler) Participation(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Participation(r.Context(), h.now(), h.translator.MonthLabeler(locale(r)))
	if err != nil {
		respondServiceError(w, r, err, "le calcul des statistiques de participation")
		return
	}

	utils.RespondJSON(w, http.StatusOK, stats)
}

// UserMonthly retourne la série mensuelle présent/absent de l'utilisateur courant
func (h *StatsHandler) UserMonthly(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	period := r.URL.Query().Get("period")
	series, err := h.stats.UserMonthly(r.Context(), userID, period, h.now(), h.translator.MonthLabeler(locale(r)))
	if err != nil {
		respondServiceError(w, r, err, "le calcul des statistiques mensuelles")
		return
	}

	utils.RespondJSON(w, http.StatusOK, series)
}

// ExportParticipations renvoie le classeur Excel des participations
func (h *StatsHandler) ExportParticipations(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	stats, err := h.stats.Participation(r.Context(), now, h.translator.MonthLabeler(locale(r)))
	if err != nil {
		respondServiceError(w, r, err, "l'export des participations")
		return
	}

	data, err := services.BuildParticipationWorkbook(*stats, now.Location())
	if err != nil {
		respondServiceError(w, r, err, "la génération du classeur")
		return
	}

	filename := "participations-" + now.Format("2006-01-02") + ".xlsx"
	writeFile(w, xlsxContentType, filename, data)
}

// ParticipationChart renvoie le graphique PNG des 12 derniers mois
func (h *StatsHandler) ParticipationChart(w http.ResponseWriter, r *http.Request) {
	lang := locale(r)
	stats, err := h.stats.Participation(r.Context(), h.now(), h.translator.MonthLabeler(lang))
	if err != nil {
		respondServiceError(w, r, err, "le calcul du graphique")
		return
	}

	png, err := services.RenderMonthlyChart(stats.MonthlyStats, h.translator.T(lang, "chart_monthly_participants", nil))
	if err != nil {
		respondServiceError(w, r, err, "le rendu du graphique")
		return
	}

	writeFile(w, "image/png", "", png)
}

// writeFile écrit un contenu binaire; filename vide = affichage en ligne
func writeFile(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set(constants.HeaderContentType, contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "no-store")
	if filename != "" {
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.Warn("⚠️  Envoi de fichier interrompu", "error", err)
	}
}
