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

// FCMTokenRepository gère les opérations sur les tokens FCM
type FCMTokenRepository struct {
	collection *mongo.Collection
}

// NewFCMTokenRepository crée une nouvelle instance de FCMTokenRepository
func NewFCMTokenRepository(db *mongo.Database) *FCMTokenRepository {
	return &FCMTokenRepository{
		collection: db.Collection("fcm_tokens"),
	}
}

// Upsert enregistre un token ou le rattache au nouvel utilisateur s'il existe déjà
func (r *FCMTokenRepository) Upsert(ctx context.Context, token *models.FCMToken) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	filter := bson.M{"token": token.Token}
	update := bson.M{
		BSONSet: bson.M{
			"user_id":    token.UserID,
			"device":     token.Device,
			"user_agent": token.UserAgent,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{"_id": primitive.NewObjectID(), "created_at": now},
	}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("erreur lors de l'enregistrement du token FCM: %w", err)
	}

	return nil
}

// FindByUserIDs recherche les tokens d'un ensemble d'utilisateurs
func (r *FCMTokenRepository) FindByUserIDs(ctx context.Context, userIDs []primitive.ObjectID) ([]models.FCMToken, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": bson.M{"$in": userIDs}})
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la recherche des tokens: %w", err)
	}
	defer cursor.Close(ctx)

	tokens := []models.FCMToken{}
	if err = cursor.All(ctx, &tokens); err != nil {
		return nil, fmt.Errorf("erreur lors du décodage des tokens: %w", err)
	}

	return tokens, nil
}

// FindAll retourne tous les tokens FCM
func (r *FCMTokenRepository) FindAll(ctx context.Context) ([]models.FCMToken, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la recherche des tokens: %w", err)
	}
	defer cursor.Close(ctx)

	tokens := []models.FCMToken{}
	if err = cursor.All(ctx, &tokens); err != nil {
		return nil, fmt.Errorf("erreur lors du décodage des tokens: %w", err)
	}

	return tokens, nil
}

// DeleteTokens supprime des tokens invalides
func (r *FCMTokenRepository) DeleteTokens(ctx context.Context, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.collection.DeleteMany(ctx, bson.M{"token": bson.M{"$in": tokens}})
	if err != nil {
		return fmt.Errorf("erreur lors de la suppression des tokens: %w", err)
	}

	return nil
}

// DeleteByUserID supprime tous les tokens d'un utilisateur
func (r *FCMTokenRepository) DeleteByUserID(ctx context.Context, userID primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.collection.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return fmt.Errorf("erreur lors de la suppression des tokens: %w", err)
	}

	return nil
}
