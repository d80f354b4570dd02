package database

import (
	"context"
	"fmt"
	"time"

	"ensaj-backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EventRepository gère les opérations sur les événements
type EventRepository struct {
	collection *mongo.Collection
}

// NewEventRepository crée une nouvelle instance de EventRepository
func NewEventRepository(db *mongo.Database) *EventRepository {
	return &EventRepository{
		collection: db.Collection("events"),
	}
}

// creatorLookup joint le créateur (sans mot de passe) sous la clé "creator"
func creatorLookup() []bson.M {
	return []bson.M{
		{
			BSONLookup: bson.M{
				"from":         "users",
				"localField":   "created_by",
				"foreignField": "_id",
				"as":           "creator",
			},
		},
		{BSONUnwind: bson.M{"path": "$creator", "preserveNullAndEmptyArrays": true}},
		{BSONProject: bson.M{"creator.password": 0, "creator.role": 0, "creator.created_at": 0, "creator.updated_at": 0}},
	}
}

// Create crée un nouvel événement
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	event.ID = primitive.NewObjectID()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	event.UpdatedAt = event.CreatedAt

	_, err := r.collection.InsertOne(ctx, event)
	if err != nil {
		return fmt.Errorf("erreur lors de la création de l'événement: %w", err)
	}

	return nil
}

// FindAll retourne tous les événements, les plus récents d'abord
func (r *EventRepository) FindAll(ctx context.Context) ([]models.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "date_event", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la recherche des événements: %w", err)
	}
	defer cursor.Close(ctx)

	events := []models.Event{}
	if err = cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("erreur lors du décodage des événements: %w", err)
	}

	return events, nil
}

// FindAllWithCreator retourne tous les événements avec leur créateur, date décroissante
func (r *EventRepository) FindAllWithCreator(ctx context.Context) ([]models.EventWithCreator, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pipeline := append([]bson.M{{BSONSort: bson.D{{Key: "date_event", Value: -1}}}}, creatorLookup()...)

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la recherche des événements: %w", err)
	}
	defer cursor.Close(ctx)

	events := []models.EventWithCreator{}
	if err = cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("erreur lors du décodage des événements: %w", err)
	}

	return events, nil
}

// FindByID recherche un événement par ID
func (r *EventRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var event models.Event
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&event)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la recherche de l'événement: %w", err)
	}

	return &event, nil
}

// FindByIDWithCreator recherche un événement et son créateur
func (r *EventRepository) FindByIDWithCreator(ctx context.Context, id primitive.ObjectID) (*models.EventWithCreator, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pipeline := append([]bson.M{{BSONMatch: bson.M{"_id": id}}}, creatorLookup()...)

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la recherche de l'événement: %w", err)
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		return nil, cursor.Err()
	}

	var event models.EventWithCreator
	if err := cursor.Decode(&event); err != nil {
		return nil, fmt.Errorf("erreur lors du décodage de l'événement: %w", err)
	}

	return &event, nil
}

// Update met à jour des champs d'un événement
func (r *EventRepository) Update(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, ok := fields["updated_at"]; !ok {
		fields["updated_at"] = time.Now()
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{BSONSet: fields})
	if err != nil {
		return fmt.Errorf("erreur lors de la mise à jour de l'événement: %w", err)
	}

	return nil
}

// Delete supprime un événement
func (r *EventRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("erreur lors de la suppression de l'événement: %w", err)
	}

	return nil
}

// UnsetCreator détache les événements créés par un utilisateur supprimé
func (r *EventRepository) UnsetCreator(ctx context.Context, userID primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.collection.UpdateMany(ctx, bson.M{"created_by": userID}, bson.M{BSONUnset: bson.M{"created_by": ""}})
	if err != nil {
		return fmt.Errorf("erreur lors du détachement des événements: %w", err)
	}

	return nil
}

// FindToRemind retourne les événements débutant dans [from, to) sans rappel envoyé
func (r *EventRepository) FindToRemind(ctx context.Context, from, to time.Time) ([]models.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{
		"date_event":    bson.M{BSONGte: from, BSONLt: to},
		"reminder_sent": bson.M{"$ne": true},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la recherche des événements à rappeler: %w", err)
	}
	defer cursor.Close(ctx)

	events := []models.Event{}
	if err = cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("erreur lors du décodage des événements: %w", err)
	}

	return events, nil
}

// MarkReminderSent marque le rappel d'un événement comme envoyé
func (r *EventRepository) MarkReminderSent(ctx context.Context, id primitive.ObjectID) error {
	return r.Update(ctx, id, bson.M{"reminder_sent": true})
}
