package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RegistrationCode représente un code d'inscription à usage unique
type RegistrationCode struct {
	ID        primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Code      string              `json:"code" bson:"code"`
	IsUsed    bool                `json:"is_used" bson:"is_used"`
	UsedBy    *primitive.ObjectID `json:"used_by,omitempty" bson:"used_by,omitempty"`
	UsedAt    *time.Time          `json:"used_at,omitempty" bson:"used_at,omitempty"`
	CreatedAt time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time           `json:"updated_at" bson:"updated_at"`
}

// CreateCodeRequest représente la création manuelle d'un code
type CreateCodeRequest struct {
	Code string `json:"code"`
}

// GenerateCodesRequest représente la génération de codes aléatoires
type GenerateCodesRequest struct {
	Count int `json:"count"`
}
