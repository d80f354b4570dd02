package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event représente un événement de l'association
type Event struct {
	ID           primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Titre        string              `json:"titre" bson:"titre"`
	Description  *string             `json:"description" bson:"description,omitempty"`
	DateEvent    time.Time           `json:"date_event" bson:"date_event"`
	Photo        string              `json:"photo,omitempty" bson:"photo,omitempty"` // Clé de stockage (UUID)
	PhotoURL     string              `json:"photo_url,omitempty" bson:"-"`
	CreatedBy    *primitive.ObjectID `json:"created_by" bson:"created_by,omitempty"`
	ReminderSent bool                `json:"-" bson:"reminder_sent"`
	CreatedAt    time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at" bson:"updated_at"`
}

// EventWithCreator est un événement accompagné de son créateur
type EventWithCreator struct {
	Event   `bson:",inline"`
	Creator *UserSummary `json:"creator" bson:"creator,omitempty"`
}

// EventWithParticipations est la vue admin d'un événement et de ses participants
type EventWithParticipations struct {
	EventWithCreator
	Participations []ParticipationWithUser `json:"participations"`
	PresenceRate   float64                 `json:"presence_rate"`
}

// EventInput représente les champs saisis pour créer ou modifier un événement.
// Un champ nil est absent de la requête. date_event est interprétée par ParseFlexibleTime.
type EventInput struct {
	Titre       *string `json:"titre"`
	Description *string `json:"description"`
	DateEvent   *string `json:"date_event"`
}
