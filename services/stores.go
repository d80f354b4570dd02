package services

import (
	"context"
	"time"

	"ensaj-backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Interfaces de persistance consommées par les services.
// Les implémentations Mongo se trouvent dans le package database.

// UserStore persiste les utilisateurs
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	EmailExists(ctx context.Context, email string, exclude primitive.ObjectID) (bool, error)
	FindAll(ctx context.Context) ([]models.User, error)
	UpdateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// CodeStore persiste les codes d'inscription
type CodeStore interface {
	Create(ctx context.Context, code *models.RegistrationCode) error
	FindByCode(ctx context.Context, code string) (*models.RegistrationCode, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.RegistrationCode, error)
	FindAll(ctx context.Context) ([]models.RegistrationCode, error)
	Consume(ctx context.Context, code string, userID primitive.ObjectID, at time.Time) (bool, error)
	Release(ctx context.Context, code string, userID primitive.ObjectID) error
	DeleteUnused(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// EventStore persiste les événements
type EventStore interface {
	Create(ctx context.Context, event *models.Event) error
	FindAll(ctx context.Context) ([]models.Event, error)
	FindAllWithCreator(ctx context.Context) ([]models.EventWithCreator, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error)
	FindByIDWithCreator(ctx context.Context, id primitive.ObjectID) (*models.EventWithCreator, error)
	Update(ctx context.Context, id primitive.ObjectID, fields bson.M) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	UnsetCreator(ctx context.Context, userID primitive.ObjectID) error
	FindToRemind(ctx context.Context, from, to time.Time) ([]models.Event, error)
	MarkReminderSent(ctx context.Context, id primitive.ObjectID) error
}

// ParticipationStore persiste les participations
type ParticipationStore interface {
	Create(ctx context.Context, p *models.Participation) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Participation, error)
	Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Participation, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByEvent(ctx context.Context, eventID primitive.ObjectID) (int64, error)
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
	FindAll(ctx context.Context) ([]models.Participation, error)
	FindByUserWithEvent(ctx context.Context, userID primitive.ObjectID) ([]models.ParticipationWithEvent, error)
	FindByEventWithUser(ctx context.Context, eventID primitive.ObjectID) ([]models.ParticipationWithUser, error)
	FindPresentUserIDs(ctx context.Context, eventID primitive.ObjectID) ([]primitive.ObjectID, error)
	MonthlyPresenceByUser(ctx context.Context, userID primitive.ObjectID, since *time.Time, loc *time.Location) ([]models.MonthlyPresenceRow, error)
}

// PushTokenStore persiste les tokens FCM
type PushTokenStore interface {
	Upsert(ctx context.Context, token *models.FCMToken) error
	FindAll(ctx context.Context) ([]models.FCMToken, error)
	FindByUserIDs(ctx context.Context, userIDs []primitive.ObjectID) ([]models.FCMToken, error)
	DeleteTokens(ctx context.Context, tokens []string) error
	DeleteByUserID(ctx context.Context, userID primitive.ObjectID) error
}

// TokenRevoker tient la liste des jetons révoqués
type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
