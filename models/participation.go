package models

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Rôles et statuts d'une participation
const (
	RoleParticipant  = "participant"
	RoleOrganisateur = "organisateur"

	PresencePresent = "present"
	PresenceAbsent  = "absent"
)

// Participation relie un utilisateur à un événement (unique par couple)
type Participation struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID         primitive.ObjectID `json:"user_id" bson:"user_id"`
	EventID        primitive.ObjectID `json:"event_id" bson:"event_id"`
	Role           *string            `json:"role" bson:"role"`
	StatutPresence string             `json:"statut_presence" bson:"statut_presence"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at" bson:"updated_at"`
}

// ParticipationWithEvent est une participation jointe à son événement
type ParticipationWithEvent struct {
	Participation `bson:",inline"`
	Event         *Event `json:"event" bson:"event,omitempty"`
}

// ParticipationWithUser est une participation jointe à son utilisateur
type ParticipationWithUser struct {
	Participation `bson:",inline"`
	User          *UserSummary `json:"user" bson:"user,omitempty"`
}

// CreateParticipationRequest représente la requête de participation
type CreateParticipationRequest struct {
	EventID        string  `json:"event_id"`
	Role           *string `json:"role"`
	StatutPresence string  `json:"statut_presence"`
}

// UpdateParticipationRequest représente la modification d'une participation
type UpdateParticipationRequest struct {
	Role           OptionalString `json:"role"`
	StatutPresence *string        `json:"statut_presence,omitempty"`
}

// OptionalString distingue une clé JSON absente d'une clé à null
type OptionalString struct {
	Set   bool
	Value *string
}

// UnmarshalJSON n'est appelé que si la clé est présente
func (o *OptionalString) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// UserParticipationView est une ligne de /user/participations
type UserParticipationView struct {
	ID             primitive.ObjectID `json:"id"`
	EventID        primitive.ObjectID `json:"event_id"`
	EventTitle     string             `json:"event_title"`
	DateEvent      *time.Time         `json:"date_event"`
	Role           *string            `json:"role"`
	StatutPresence string             `json:"statut_presence"`
}

// UserEventView est une ligne de /user/events/upcoming et /user/events/past
type UserEventView struct {
	ID              primitive.ObjectID `json:"id"`
	ParticipationID primitive.ObjectID `json:"participation_id"`
	Titre           string             `json:"titre"`
	Description     *string            `json:"description"`
	DateEvent       time.Time          `json:"date_event"`
	PhotoURL        string             `json:"photo_url,omitempty"`
	Role            *string            `json:"role"`
	StatutPresence  string             `json:"statut_presence"`
}
