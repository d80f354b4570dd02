package handlers

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"ensaj-backend/constants"
	"ensaj-backend/models"
	"ensaj-backend/services"
	"ensaj-backend/utils"
)

// Mémoire réservée aux champs texte d'un formulaire multipart
const multipartOverhead = 1 << 20

// EventHandler gère le catalogue d'événements
type EventHandler struct {
	events        *services.EventService
	photoMaxBytes int64
	now           Clock
}

// NewEventHandler crée une nouvelle instance de EventHandler
func NewEventHandler(events *services.EventService, photoMaxBytes int64, now Clock) *EventHandler {
	return &EventHandler{events: events, photoMaxBytes: photoMaxBytes, now: now}
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get(constants.HeaderContentType))
	return err == nil && mediaType == "multipart/form-data"
}

// readEventInput lit un événement en JSON ou en multipart (avec photo optionnelle).
// Retourne false et écrit l'erreur si le corps est illisible.
func (h *EventHandler) readEventInput(w http.ResponseWriter, r *http.Request) (models.EventInput, *services.PhotoUpload, bool) {
	var in models.EventInput

	if !isMultipart(r) {
		return in, nil, decodeJSON(w, r, &in)
	}

	// Le corps est borné avant lecture: rien n'est écrit sur disque au-delà
	r.Body = http.MaxBytesReader(w, r.Body, h.photoMaxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.photoMaxBytes + multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.RespondError(w, http.StatusRequestEntityTooLarge, constants.ErrPayloadTooLarge)
			return in, nil, false
		}
		utils.RespondError(w, http.StatusBadRequest, constants.ErrInvalidData)
		return in, nil, false
	}

	field := func(name string) *string {
		values, ok := r.MultipartForm.Value[name]
		if !ok || len(values) == 0 {
			return nil
		}
		v := values[0]
		return &v
	}
	in.Titre = field("titre")
	in.Description = field("description")
	in.DateEvent = field("date_event")

	file, _, err := r.FormFile("photo")
	if err == http.ErrMissingFile {
		return in, nil, true
	}
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, constants.ErrInvalidData)
		return in, nil, false
	}
	defer file.Close()

	// Un octet de plus que la limite suffit au service pour refuser la photo
	data, err := io.ReadAll(io.LimitReader(file, h.photoMaxBytes+1))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, constants.ErrInvalidData)
		return in, nil, false
	}

	return in, &services.PhotoUpload{Data: data}, true
}

// GetEvents retourne tous les événements, date décroissante
func (h *EventHandler) GetEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.List(r.Context())
	if err != nil {
		respondServiceError(w, r, err, "la récupération des événements")
		return
	}
	if events == nil {
		events = []models.EventWithCreator{}
	}

	utils.RespondJSON(w, http.StatusOK, events)
}

// GetEvent retourne un événement et son créateur
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseObjectIDVar(w, r, "id", constants.ErrInvalidEventID)
	if !ok {
		return
	}

	event, err := h.events.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err, "la récupération de l'événement")
		return
	}

	utils.RespondJSON(w, http.StatusOK, event)
}

// CreateEvent crée un événement; le créateur est l'utilisateur authentifié
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	actorID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	in, photo, ok := h.readEventInput(w, r)
	if !ok {
		return
	}

	event, err := h.events.Create(r.Context(), actorID, in, photo, h.now())
	if err != nil {
		respondServiceError(w, r, err, "la création de l'événement")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": constants.MsgEventCreated,
		"event":   event,
	})
}

// UpdateEvent modifie partiellement un événement
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseObjectIDVar(w, r, "id", constants.ErrInvalidEventID)
	if !ok {
		return
	}

	in, photo, ok := h.readEventInput(w, r)
	if !ok {
		return
	}

	// Les navigateurs n'envoient pas de PUT multipart: POST + _method=PUT
	if r.Method == http.MethodPost && !strings.EqualFold(r.FormValue("_method"), http.MethodPut) {
		utils.RespondError(w, http.StatusMethodNotAllowed, constants.ErrMethodNotAllowed)
		return
	}

	event, err := h.events.Update(r.Context(), id, in, photo, h.now())
	if err != nil {
		respondServiceError(w, r, err, "la mise à jour de l'événement")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"message": constants.MsgEventUpdated,
		"event":   event,
	})
}

// DeleteEvent supprime un événement, sa photo et ses participations
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseObjectIDVar(w, r, "id", constants.ErrInvalidEventID)
	if !ok {
		return
	}

	if err := h.events.Delete(r.Context(), id); err != nil {
		respondServiceError(w, r, err, "la suppression de l'événement")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": constants.MsgEventDeleted})
}

// GetEventsWithParticipations retourne les événements avec leurs participants (vue admin)
func (h *EventHandler) GetEventsWithParticipations(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.ListWithParticipations(r.Context())
	if err != nil {
		respondServiceError(w, r, err, "la récupération des participations par événement")
		return
	}

	utils.RespondJSON(w, http.StatusOK, events)
}
