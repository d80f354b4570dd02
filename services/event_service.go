package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"ensaj-backend/constants"
	"ensaj-backend/models"
	"ensaj-backend/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PhotoUpload est le contenu brut d'une photo envoyée avec un événement
type PhotoUpload struct {
	Data []byte
}

// EventNotifier est prévenu de la création d'un événement
type EventNotifier interface {
	NotifyNewEvent(ctx context.Context, event models.Event)
}

// EventService gère le catalogue d'événements
type EventService struct {
	events         EventStore
	participations ParticipationStore
	photos         PhotoStore
	notifier       EventNotifier
	photoMaxBytes  int64
}

// NewEventService crée une nouvelle instance de EventService.
// notifier peut être nil.
func NewEventService(events EventStore, participations ParticipationStore, photos PhotoStore, notifier EventNotifier, photoMaxBytes int64) *EventService {
	return &EventService{
		events:         events,
		participations: participations,
		photos:         photos,
		notifier:       notifier,
		photoMaxBytes:  photoMaxBytes,
	}
}

func (s *EventService) decorate(e *models.Event) {
	e.PhotoURL = s.photos.URL(e.Photo)
}

// List retourne tous les événements, date décroissante, avec leur créateur
func (s *EventService) List(ctx context.Context) ([]models.EventWithCreator, error) {
	events, err := s.events.FindAllWithCreator(ctx)
	if err != nil {
		return nil, err
	}
	for i := range events {
		s.decorate(&events[i].Event)
	}
	return events, nil
}

// Get retourne un événement et son créateur
func (s *EventService) Get(ctx context.Context, id primitive.ObjectID) (*models.EventWithCreator, error) {
	event, err := s.events.FindByIDWithCreator(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, notFound(constants.ErrEventNotFound)
	}
	s.decorate(&event.Event)
	return event, nil
}

// checkPhoto valide la taille et le type réel (par signature) de la photo
func (s *EventService) checkPhoto(v *utils.Validator, photo *PhotoUpload) string {
	if photo == nil {
		return ""
	}
	if int64(len(photo.Data)) > s.photoMaxBytes {
		v.Add("photo", fmt.Sprintf("la photo ne doit pas dépasser %d Ko", s.photoMaxBytes/1024))
		return ""
	}
	contentType := http.DetectContentType(photo.Data)
	if _, ok := photoExtensions[contentType]; !ok {
		v.Add("photo", "le fichier doit être une image (jpeg, png, jpg, gif)")
		return ""
	}
	return contentType
}

func normalizeDescription(d *string) *string {
	if d == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*d)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// Create crée un événement; le créateur est l'utilisateur authentifié
func (s *EventService) Create(ctx context.Context, actorID primitive.ObjectID, in models.EventInput, photo *PhotoUpload, now time.Time) (*models.EventWithCreator, error) {
	v := utils.NewValidator()

	titre := ""
	if in.Titre != nil {
		titre = strings.TrimSpace(*in.Titre)
	}
	if v.Check(utils.ValidateRequired("titre", titre)) {
		v.Check(utils.ValidateMaxLength("titre", titre, 255))
	}

	var date time.Time
	if in.DateEvent == nil || strings.TrimSpace(*in.DateEvent) == "" {
		v.Add("date_event", "le champ date_event est requis")
	} else if d, err := models.ParseFlexibleTime(*in.DateEvent, now); err != nil {
		v.Add("date_event", "le champ date_event n'est pas une date valide")
	} else {
		date = d
	}

	contentType := s.checkPhoto(v, photo)
	if err := invalid(v); err != nil {
		return nil, err
	}

	event := &models.Event{
		Titre:       titre,
		Description: normalizeDescription(in.Description),
		DateEvent:   date,
		CreatedBy:   &actorID,
		CreatedAt:   now,
	}

	if photo != nil {
		key, err := s.photos.Save(ctx, photo.Data, contentType)
		if err != nil {
			return nil, err
		}
		event.Photo = key
	}

	if err := s.events.Create(ctx, event); err != nil {
		s.discardPhoto(ctx, event.Photo)
		return nil, err
	}

	slog.Info("✓ Événement créé", "event_id", event.ID.Hex(), "titre", event.Titre)

	if s.notifier != nil {
		go s.notifier.NotifyNewEvent(context.WithoutCancel(ctx), *event)
	}

	return s.Get(ctx, event.ID)
}

// Update modifie partiellement un événement. Une nouvelle photo remplace
// l'ancienne, supprimée seulement après la mise à jour réussie.
func (s *EventService) Update(ctx context.Context, id primitive.ObjectID, in models.EventInput, photo *PhotoUpload, now time.Time) (*models.EventWithCreator, error) {
	current, err := s.events.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, notFound(constants.ErrEventNotFound)
	}

	v := utils.NewValidator()
	fields := bson.M{}

	if in.Titre != nil {
		titre := strings.TrimSpace(*in.Titre)
		if v.Check(utils.ValidateRequired("titre", titre)) && v.Check(utils.ValidateMaxLength("titre", titre, 255)) {
			fields["titre"] = titre
		}
	}
	if in.Description != nil {
		fields["description"] = normalizeDescription(in.Description)
	}
	if in.DateEvent != nil {
		d, err := models.ParseFlexibleTime(*in.DateEvent, now)
		if err != nil {
			v.Add("date_event", "le champ date_event n'est pas une date valide")
		} else {
			fields["date_event"] = d
			if !d.Equal(current.DateEvent) {
				fields["reminder_sent"] = false
			}
		}
	}

	contentType := s.checkPhoto(v, photo)
	if err := invalid(v); err != nil {
		return nil, err
	}

	newKey := ""
	if photo != nil {
		newKey, err = s.photos.Save(ctx, photo.Data, contentType)
		if err != nil {
			return nil, err
		}
		fields["photo"] = newKey
	}

	fields["updated_at"] = now
	if err := s.events.Update(ctx, id, fields); err != nil {
		s.discardPhoto(ctx, newKey)
		return nil, err
	}

	if newKey != "" {
		s.discardPhoto(ctx, current.Photo)
	}

	return s.Get(ctx, id)
}

// Delete supprime la photo, les participations puis l'événement
func (s *EventService) Delete(ctx context.Context, id primitive.ObjectID) error {
	event, err := s.events.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if event == nil {
		return notFound(constants.ErrEventNotFound)
	}

	// Une photo orpheline ne bloque pas la suppression
	s.discardPhoto(ctx, event.Photo)

	removed, err := s.participations.DeleteByEvent(ctx, id)
	if err != nil {
		return err
	}
	if err := s.events.Delete(ctx, id); err != nil {
		return err
	}

	slog.Info("🗑️  Événement supprimé", "event_id", id.Hex(), "participations", removed)
	return nil
}

// ListWithParticipations retourne chaque événement avec ses participants et son taux de présence
func (s *EventService) ListWithParticipations(ctx context.Context) ([]models.EventWithParticipations, error) {
	events, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.EventWithParticipations, 0, len(events))
	for _, e := range events {
		parts, err := s.participations.FindByEventWithUser(ctx, e.ID)
		if err != nil {
			return nil, err
		}
		present := 0
		for _, p := range parts {
			if p.StatutPresence == models.PresencePresent {
				present++
			}
		}
		out = append(out, models.EventWithParticipations{
			EventWithCreator: e,
			Participations:   parts,
			PresenceRate:     PresenceRate(present, len(parts)),
		})
	}
	return out, nil
}

func (s *EventService) discardPhoto(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.photos.Delete(ctx, key); err != nil {
		slog.Warn("⚠️  Suppression de photo impossible", "key", key, "error", err)
	}
}
