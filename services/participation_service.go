package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"ensaj-backend/constants"
	"ensaj-backend/database"
	"ensaj-backend/models"
	"ensaj-backend/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ParticipationService gère le registre des participations
type ParticipationService struct {
	participations ParticipationStore
	events         EventStore
	photos         PhotoStore
}

// NewParticipationService crée une nouvelle instance de ParticipationService
func NewParticipationService(participations ParticipationStore, events EventStore, photos PhotoStore) *ParticipationService {
	return &ParticipationService{
		participations: participations,
		events:         events,
		photos:         photos,
	}
}

// normalizeRole applique la règle: un absent n'a pas de rôle
func normalizeRole(role *string, presence string) *string {
	if presence == models.PresenceAbsent || role == nil {
		return nil
	}
	r := strings.TrimSpace(*role)
	if r == "" {
		return nil
	}
	return &r
}

func checkRole(v *utils.Validator, role *string) {
	if role == nil || strings.TrimSpace(*role) == "" {
		return
	}
	v.Check(utils.ValidateOneOf("role", strings.TrimSpace(*role), models.RoleParticipant, models.RoleOrganisateur))
}

// Create enregistre la participation de l'utilisateur courant à un événement
func (s *ParticipationService) Create(ctx context.Context, userID primitive.ObjectID, req models.CreateParticipationRequest, now time.Time) (*models.Participation, error) {
	v := utils.NewValidator()

	var eventID primitive.ObjectID
	if v.Check(utils.ValidateRequired("event_id", req.EventID)) {
		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.EventID))
		if err != nil {
			v.Add("event_id", "l'événement sélectionné est invalide")
		} else {
			event, err := s.events.FindByID(ctx, id)
			if err != nil {
				return nil, err
			}
			if event == nil {
				v.Add("event_id", "l'événement sélectionné est invalide")
			}
			eventID = id
		}
	}
	checkRole(v, req.Role)
	if v.Check(utils.ValidateRequired("statut_presence", req.StatutPresence)) {
		v.Check(utils.ValidateOneOf("statut_presence", req.StatutPresence, models.PresencePresent, models.PresenceAbsent))
	}
	if err := invalid(v); err != nil {
		return nil, err
	}

	p := &models.Participation{
		UserID:         userID,
		EventID:        eventID,
		Role:           normalizeRole(req.Role, req.StatutPresence),
		StatutPresence: req.StatutPresence,
		CreatedAt:      now,
	}
	if err := s.participations.Create(ctx, p); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, conflict(constants.MsgAlreadyParticipates)
		}
		return nil, err
	}

	participationsCreatedTotal.Inc()
	return p, nil
}

// findOwned charge une participation et vérifie qu'elle appartient à userID
func (s *ParticipationService) findOwned(ctx context.Context, userID, id primitive.ObjectID) (*models.Participation, error) {
	p, err := s.participations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, notFound(constants.ErrParticipationNotFound)
	}
	if p.UserID != userID {
		return nil, forbidden(constants.ErrForbidden)
	}
	return p, nil
}

// Update modifie le rôle et/ou la présence d'une participation de l'utilisateur courant
func (s *ParticipationService) Update(ctx context.Context, userID, id primitive.ObjectID, req models.UpdateParticipationRequest, now time.Time) (*models.Participation, error) {
	current, err := s.findOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	v := utils.NewValidator()
	presence := current.StatutPresence
	if req.StatutPresence != nil {
		if v.Check(utils.ValidateOneOf("statut_presence", *req.StatutPresence, models.PresencePresent, models.PresenceAbsent)) {
			presence = *req.StatutPresence
		}
	}
	role := current.Role
	if req.Role.Set {
		checkRole(v, req.Role.Value)
		role = req.Role.Value
	}
	if err := invalid(v); err != nil {
		return nil, err
	}

	fields := bson.M{
		"statut_presence": presence,
		"role":            normalizeRole(role, presence),
		"updated_at":      now,
	}
	updated, err := s.participations.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, notFound(constants.ErrParticipationNotFound)
	}
	return updated, nil
}

// Delete supprime une participation de l'utilisateur courant
func (s *ParticipationService) Delete(ctx context.Context, userID, id primitive.ObjectID) error {
	if _, err := s.findOwned(ctx, userID, id); err != nil {
		return err
	}
	return s.participations.Delete(ctx, id)
}

// ListForUser retourne les participations de l'utilisateur avec l'événement joint
func (s *ParticipationService) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.ParticipationWithEvent, error) {
	parts, err := s.participations.FindByUserWithEvent(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range parts {
		if parts[i].Event != nil {
			parts[i].Event.PhotoURL = s.photos.URL(parts[i].Event.Photo)
		}
	}
	return parts, nil
}

// ListForEvent retourne les participants d'un événement existant
func (s *ParticipationService) ListForEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.ParticipationWithUser, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, notFound(constants.ErrEventNotFound)
	}
	return s.participations.FindByEventWithUser(ctx, eventID)
}

// UserParticipations retourne la vue aplatie des participations de l'utilisateur
func (s *ParticipationService) UserParticipations(ctx context.Context, userID primitive.ObjectID) ([]models.UserParticipationView, error) {
	parts, err := s.participations.FindByUserWithEvent(ctx, userID)
	if err != nil {
		return nil, err
	}
	return FlattenParticipations(parts), nil
}

// UserEvents retourne les événements à venir et passés de l'utilisateur, séparés par now
func (s *ParticipationService) UserEvents(ctx context.Context, userID primitive.ObjectID, now time.Time) (upcoming, past []models.UserEventView, err error) {
	parts, err := s.participations.FindByUserWithEvent(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	upcoming, past = PartitionUserEvents(parts, now, s.photos.URL)
	return upcoming, past, nil
}

// FlattenParticipations aplatit les participations; un événement disparu devient "Événement inconnu"
func FlattenParticipations(parts []models.ParticipationWithEvent) []models.UserParticipationView {
	out := make([]models.UserParticipationView, 0, len(parts))
	for _, p := range parts {
		view := models.UserParticipationView{
			ID:             p.ID,
			EventID:        p.EventID,
			EventTitle:     constants.ErrUnknownEventTitle,
			Role:           p.Role,
			StatutPresence: p.StatutPresence,
		}
		if p.Event != nil {
			view.EventTitle = p.Event.Titre
			date := p.Event.DateEvent
			view.DateEvent = &date
		}
		out = append(out, view)
	}
	return out
}

// PartitionUserEvents sépare les participations en événements à venir (date >= now,
// ordre croissant) et passés (date < now, ordre décroissant).
func PartitionUserEvents(parts []models.ParticipationWithEvent, now time.Time, photoURL func(key string) string) (upcoming, past []models.UserEventView) {
	upcoming = []models.UserEventView{}
	past = []models.UserEventView{}
	for _, p := range parts {
		if p.Event == nil {
			continue
		}
		view := models.UserEventView{
			ID:              p.Event.ID,
			ParticipationID: p.ID,
			Titre:           p.Event.Titre,
			Description:     p.Event.Description,
			DateEvent:       p.Event.DateEvent,
			PhotoURL:        photoURL(p.Event.Photo),
			Role:            p.Role,
			StatutPresence:  p.StatutPresence,
		}
		if p.Event.DateEvent.Before(now) {
			past = append(past, view)
		} else {
			upcoming = append(upcoming, view)
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool { return upcoming[i].DateEvent.Before(upcoming[j].DateEvent) })
	sort.SliceStable(past, func(i, j int) bool { return past[i].DateEvent.After(past[j].DateEvent) })
	return upcoming, past
}
