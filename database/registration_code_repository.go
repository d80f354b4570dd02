package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ensaj-backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RegistrationCodeRepository gère les codes d'inscription
type RegistrationCodeRepository struct {
	collection *mongo.Collection
}

// NewRegistrationCodeRepository crée une nouvelle instance de RegistrationCodeRepository
func NewRegistrationCodeRepository(db *mongo.Database) *RegistrationCodeRepository {
	return &RegistrationCodeRepository{
		collection: db.Collection("codes_inscription"),
	}
}

// Create insère un code; ErrDuplicate si le code existe déjà
func (r *RegistrationCodeRepository) Create(ctx context.Context, code *models.RegistrationCode) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	code.ID = primitive.NewObjectID()
	code.Code = strings.TrimSpace(code.Code)
	if code.CreatedAt.IsZero() {
		code.CreatedAt = time.Now()
	}
	code.UpdatedAt = code.CreatedAt

	_, err := r.collection.InsertOne(ctx, code)
	return wrapWriteError(err, "la création du code")
}

// FindByCode recherche un code par sa valeur
func (r *RegistrationCodeRepository) FindByCode(ctx context.Context, code string) (*models.RegistrationCode, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var rc models.RegistrationCode
	err := r.collection.FindOne(ctx, bson.M{"code": strings.TrimSpace(code)}).Decode(&rc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la recherche du code: %w", err)
	}

	return &rc, nil
}

// FindByID recherche un code par ID
func (r *RegistrationCodeRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.RegistrationCode, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var rc models.RegistrationCode
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&rc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la recherche du code: %w", err)
	}

	return &rc, nil
}

// FindAll retourne tous les codes, les plus récents d'abord
func (r *RegistrationCodeRepository) FindAll(ctx context.Context) ([]models.RegistrationCode, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la recherche des codes: %w", err)
	}
	defer cursor.Close(ctx)

	codes := []models.RegistrationCode{}
	if err = cursor.All(ctx, &codes); err != nil {
		return nil, fmt.Errorf("erreur lors du décodage des codes: %w", err)
	}

	return codes, nil
}

// Consume marque un code inutilisé comme utilisé par userID.
// La condition is_used:false et la mise à jour forment une seule opération:
// deux inscriptions concurrentes ne peuvent pas consommer le même code.
func (r *RegistrationCodeRepository) Consume(ctx context.Context, code string, userID primitive.ObjectID, at time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"code": strings.TrimSpace(code), "is_used": false}
	update := bson.M{BSONSet: bson.M{
		"is_used":    true,
		"used_by":    userID,
		"used_at":    at,
		"updated_at": at,
	}}

	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("erreur lors de la consommation du code: %w", err)
	}

	return res.ModifiedCount == 1, nil
}

// Release rend un code consommé par userID de nouveau disponible
func (r *RegistrationCodeRepository) Release(ctx context.Context, code string, userID primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"code": strings.TrimSpace(code), "used_by": userID}
	update := bson.M{
		BSONSet:   bson.M{"is_used": false, "updated_at": time.Now()},
		BSONUnset: bson.M{"used_by": "", "used_at": ""},
	}

	if _, err := r.collection.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("erreur lors de la libération du code: %w", err)
	}

	return nil
}

// DeleteUnused supprime un code seulement s'il n'a pas été utilisé
func (r *RegistrationCodeRepository) DeleteUnused(ctx context.Context, id primitive.ObjectID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "is_used": false})
	if err != nil {
		return false, fmt.Errorf("erreur lors de la suppression du code: %w", err)
	}

	return res.DeletedCount == 1, nil
}
