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

// ParticipationRepository gère les participations aux événements.
// L'unicité (user_id, event_id) est garantie par un index unique.
type ParticipationRepository struct {
	collection *mongo.Collection
}

// NewParticipationRepository crée une nouvelle instance de ParticipationRepository
func NewParticipationRepository(db *mongo.Database) *ParticipationRepository {
	return &ParticipationRepository{
		collection: db.Collection("participations"),
	}
}

// Create crée une participation; ErrDuplicate si l'utilisateur participe déjà
func (r *ParticipationRepository) Create(ctx context.Context, p *models.Participation) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p.ID = primitive.NewObjectID()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	p.UpdatedAt = p.CreatedAt

	_, err := r.collection.InsertOne(ctx, p)
	return wrapWriteError(err, "la création de la participation")
}

// FindByID recherche une participation par ID
func (r *ParticipationRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Participation, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var p models.Participation
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la recherche de la participation: %w", err)
	}

	return &p, nil
}

// Update met à jour une participation et retourne le document modifié
func (r *ParticipationRepository) Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Participation, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, ok := fields["updated_at"]; !ok {
		fields["updated_at"] = time.Now()
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p models.Participation
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{BSONSet: fields}, opts).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la mise à jour de la participation: %w", err)
	}

	return &p, nil
}

// Delete supprime une participation
func (r *ParticipationRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("erreur lors de la suppression de la participation: %w", err)
	}

	return nil
}

// DeleteByEvent supprime toutes les participations d'un événement
func (r *ParticipationRepository) DeleteByEvent(ctx context.Context, eventID primitive.ObjectID) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	res, err := r.collection.DeleteMany(ctx, bson.M{"event_id": eventID})
	if err != nil {
		return 0, fmt.Errorf("erreur lors de la suppression des participations: %w", err)
	}

	return res.DeletedCount, nil
}

// DeleteByUser supprime toutes les participations d'un utilisateur
func (r *ParticipationRepository) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	res, err := r.collection.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("erreur lors de la suppression des participations: %w", err)
	}

	return res.DeletedCount, nil
}

// FindAll retourne toutes les participations
func (r *ParticipationRepository) FindAll(ctx context.Context) ([]models.Participation, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la recherche des participations: %w", err)
	}
	defer cursor.Close(ctx)

	parts := []models.Participation{}
	if err = cursor.All(ctx, &parts); err != nil {
		return nil, fmt.Errorf("erreur lors du décodage des participations: %w", err)
	}

	return parts, nil
}

// FindByUserWithEvent retourne les participations d'un utilisateur avec l'événement joint.
// Une participation dont l'événement a disparu est conservée avec event à nil.
func (r *ParticipationRepository) FindByUserWithEvent(ctx context.Context, userID primitive.ObjectID) ([]models.ParticipationWithEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pipeline := []bson.M{
		{BSONMatch: bson.M{"user_id": userID}},
		{
			BSONLookup: bson.M{
				"from":         "events",
				"localField":   "event_id",
				"foreignField": "_id",
				"as":           "event",
			},
		},
		{BSONUnwind: bson.M{"path": "$event", "preserveNullAndEmptyArrays": true}},
		{BSONSort: bson.D{{Key: "event.date_event", Value: -1}, {Key: "created_at", Value: -1}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la récupération des participations: %w", err)
	}
	defer cursor.Close(ctx)

	parts := []models.ParticipationWithEvent{}
	if err = cursor.All(ctx, &parts); err != nil {
		return nil, fmt.Errorf("erreur lors du décodage des participations: %w", err)
	}

	return parts, nil
}

// FindByEventWithUser retourne les participations d'un événement avec l'utilisateur joint
func (r *ParticipationRepository) FindByEventWithUser(ctx context.Context, eventID primitive.ObjectID) ([]models.ParticipationWithUser, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pipeline := []bson.M{
		{BSONMatch: bson.M{"event_id": eventID}},
		{
			BSONLookup: bson.M{
				"from":         "users",
				"localField":   "user_id",
				"foreignField": "_id",
				"as":           "user",
			},
		},
		{BSONUnwind: bson.M{"path": "$user", "preserveNullAndEmptyArrays": true}},
		{BSONProject: bson.M{"user.password": 0, "user.role": 0, "user.created_at": 0, "user.updated_at": 0}},
		{BSONSort: bson.D{{Key: "created_at", Value: 1}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la récupération des participants: %w", err)
	}
	defer cursor.Close(ctx)

	parts := []models.ParticipationWithUser{}
	if err = cursor.All(ctx, &parts); err != nil {
		return nil, fmt.Errorf("erreur lors du décodage des participants: %w", err)
	}

	return parts, nil
}

// FindPresentUserIDs retourne les utilisateurs marqués présents à un événement
func (r *ParticipationRepository) FindPresentUserIDs(ctx context.Context, eventID primitive.ObjectID) ([]primitive.ObjectID, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	values, err := r.collection.Distinct(ctx, "user_id", bson.M{"event_id": eventID, "statut_presence": models.PresencePresent})
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la recherche des présents: %w", err)
	}

	ids := make([]primitive.ObjectID, 0, len(values))
	for _, v := range values {
		if id, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, id)
		}
	}

	return ids, nil
}

// MonthlyPresenceByUser agrège les participations d'un utilisateur par mois de l'événement.
// since nul signifie toute la période. Les mois sans donnée ne sont pas renvoyés.
func (r *ParticipationRepository) MonthlyPresenceByUser(ctx context.Context, userID primitive.ObjectID, since *time.Time, loc *time.Location) ([]models.MonthlyPresenceRow, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	isPresent := bson.M{BSONEq: bson.A{"$statut_presence", models.PresencePresent}}
	pipeline := []bson.M{
		{BSONMatch: bson.M{"user_id": userID}},
		{
			BSONLookup: bson.M{
				"from":         "events",
				"localField":   "event_id",
				"foreignField": "_id",
				"as":           "event",
			},
		},
		{BSONUnwind: "$event"},
	}
	if since != nil {
		pipeline = append(pipeline, bson.M{BSONMatch: bson.M{"event.date_event": bson.M{BSONGte: *since}}})
	}
	pipeline = append(pipeline,
		bson.M{
			BSONGroup: bson.M{
				"_id": bson.M{
					"year":  bson.M{"$year": bson.M{"date": "$event.date_event", "timezone": loc.String()}},
					"month": bson.M{"$month": bson.M{"date": "$event.date_event", "timezone": loc.String()}},
				},
				"present": bson.M{BSONSum: bson.M{BSONCond: bson.A{isPresent, 1, 0}}},
				"absent":  bson.M{BSONSum: bson.M{BSONCond: bson.A{isPresent, 0, 1}}},
			},
		},
		bson.M{BSONProject: bson.M{"_id": 0, "year": "$_id.year", "month": "$_id.month", "present": 1, "absent": 1}},
		bson.M{BSONSort: bson.D{{Key: "year", Value: 1}, {Key: "month", Value: 1}}},
	)

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("erreur lors de l'agrégation mensuelle: %w", err)
	}
	defer cursor.Close(ctx)

	rows := []models.MonthlyPresenceRow{}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("erreur lors du décodage de l'agrégation: %w", err)
	}

	return rows, nil
}
