package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Rôles possibles d'un utilisateur
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// User représente un adhérent ou un administrateur
type User struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Nom       string             `json:"nom" bson:"nom"`
	Prenom    string             `json:"prenom" bson:"prenom"`
	Email     string             `json:"email" bson:"email"`
	Password  string             `json:"-" bson:"password"` // Le "-" empêche la sérialisation du mot de passe
	Role      string             `json:"role" bson:"role"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// IsAdmin indique si l'utilisateur a le rôle ADMIN
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Summary retourne la vue publique réduite de l'utilisateur
func (u *User) Summary() *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID, Nom: u.Nom, Prenom: u.Prenom, Email: u.Email}
}

// UserSummary est la vue d'un utilisateur jointe aux événements et participations
type UserSummary struct {
	ID     primitive.ObjectID `json:"id" bson:"_id"`
	Nom    string             `json:"nom" bson:"nom"`
	Prenom string             `json:"prenom" bson:"prenom"`
	Email  string             `json:"email" bson:"email"`
}

// RegisterRequest représente la requête d'inscription
type RegisterRequest struct {
	Nom                  string `json:"nom"`
	Prenom               string `json:"prenom"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
	Code                 string `json:"code"`
}

// LoginRequest représente la requête de connexion
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse représente la réponse d'authentification
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// UpdateProfileRequest représente la modification du profil par l'utilisateur lui-même
type UpdateProfileRequest struct {
	Nom    string `json:"nom"`
	Prenom string `json:"prenom"`
	Email  string `json:"email"`
}

// ChangePasswordRequest représente la requête de changement de mot de passe
type ChangePasswordRequest struct {
	CurrentPassword         string `json:"current_password"`
	NewPassword             string `json:"new_password"`
	NewPasswordConfirmation string `json:"new_password_confirmation"`
}

// CreateUserRequest représente la création d'un utilisateur par un admin
type CreateUserRequest struct {
	Nom      string `json:"nom"`
	Prenom   string `json:"prenom"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UpdateUserRequest représente la modification d'un utilisateur par un admin.
// Les pointeurs distinguent un champ absent d'un champ vide.
type UpdateUserRequest struct {
	Nom      *string `json:"nom,omitempty"`
	Prenom   *string `json:"prenom,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
	Role     *string `json:"role,omitempty"`
}

// ErrorResponse représente une réponse d'erreur
type ErrorResponse struct {
	Error   string              `json:"error"`
	Message string              `json:"message,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// SuccessResponse représente une réponse de succès générique
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}
