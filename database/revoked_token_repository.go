package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RevokedTokenRepository conserve les jti révoqués jusqu'à leur expiration.
// Un index TTL sur expires_at purge les entrées échues.
type RevokedTokenRepository struct {
	collection *mongo.Collection
}

// NewRevokedTokenRepository crée une nouvelle instance de RevokedTokenRepository
func NewRevokedTokenRepository(db *mongo.Database) *RevokedTokenRepository {
	return &RevokedTokenRepository{
		collection: db.Collection("revoked_tokens"),
	}
}

// Revoke ajoute un jti à la liste de révocation
func (r *RevokedTokenRepository) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.collection.UpdateOne(ctx,
		bson.M{"jti": jti},
		bson.M{BSONSet: bson.M{"jti": jti, "expires_at": expiresAt}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("erreur lors de la révocation du token: %w", err)
	}

	return nil
}

// IsRevoked indique si un jti a été révoqué
func (r *RevokedTokenRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"jti": jti}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("erreur lors de la vérification du token: %w", err)
	}

	return count > 0, nil
}
