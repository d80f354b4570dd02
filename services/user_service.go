package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ensaj-backend/constants"
	"ensaj-backend/database"
	"ensaj-backend/models"
	"ensaj-backend/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserService gère l'administration des comptes
type UserService struct {
	users          UserStore
	events         EventStore
	participations ParticipationStore
	pushTokens     PushTokenStore
}

// NewUserService crée une nouvelle instance de UserService
func NewUserService(users UserStore, events EventStore, participations ParticipationStore, pushTokens PushTokenStore) *UserService {
	return &UserService{
		users:          users,
		events:         events,
		participations: participations,
		pushTokens:     pushTokens,
	}
}

// List retourne tous les utilisateurs
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.users.FindAll(ctx)
}

// Get retourne un utilisateur par ID
func (s *UserService) Get(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, notFound(constants.ErrUserNotFound)
	}
	return user, nil
}

// Create crée un compte avec un rôle explicite
func (s *UserService) Create(ctx context.Context, req models.CreateUserRequest, now time.Time) (*models.User, error) {
	req.Nom = strings.TrimSpace(req.Nom)
	req.Prenom = strings.TrimSpace(req.Prenom)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	v := utils.NewValidator()
	if v.Check(utils.ValidateRequired("nom", req.Nom)) {
		v.Check(utils.ValidateMaxLength("nom", req.Nom, 100))
	}
	if v.Check(utils.ValidateRequired("prenom", req.Prenom)) {
		v.Check(utils.ValidateMaxLength("prenom", req.Prenom, 100))
	}
	if v.Check(utils.ValidateEmail(req.Email)) {
		v.Check(utils.ValidateMaxLength("email", req.Email, 150))
	}
	v.Check(utils.ValidatePassword("password", req.Password))
	if v.Check(utils.ValidateRequired("role", req.Role)) {
		v.Check(utils.ValidateOneOf("role", req.Role, models.RoleAdmin, models.RoleUser))
	}
	if !v.Has("email") {
		exists, err := s.users.EmailExists(ctx, req.Email, primitive.NilObjectID)
		if err != nil {
			return nil, err
		}
		if exists {
			v.Add("email", constants.MsgEmailTaken)
		}
	}
	if err := invalid(v); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("erreur lors du hachage du mot de passe: %w", err)
	}

	user := &models.User{
		Nom:       req.Nom,
		Prenom:    req.Prenom,
		Email:     req.Email,
		Password:  hash,
		Role:      req.Role,
		CreatedAt: now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, fieldError("email", constants.MsgEmailTaken)
		}
		return nil, err
	}

	return user, nil
}

// Update modifie partiellement un compte; le mot de passe est re-haché s'il est fourni
func (s *UserService) Update(ctx context.Context, id primitive.ObjectID, req models.UpdateUserRequest, now time.Time) (*models.User, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	v := utils.NewValidator()
	fields := bson.M{}

	if req.Nom != nil {
		nom := strings.TrimSpace(*req.Nom)
		if v.Check(utils.ValidateRequired("nom", nom)) && v.Check(utils.ValidateMaxLength("nom", nom, 100)) {
			fields["nom"] = nom
		}
	}
	if req.Prenom != nil {
		prenom := strings.TrimSpace(*req.Prenom)
		if v.Check(utils.ValidateRequired("prenom", prenom)) && v.Check(utils.ValidateMaxLength("prenom", prenom, 100)) {
			fields["prenom"] = prenom
		}
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if v.Check(utils.ValidateEmail(email)) && v.Check(utils.ValidateMaxLength("email", email, 150)) {
			exists, err := s.users.EmailExists(ctx, email, id)
			if err != nil {
				return nil, err
			}
			if exists {
				v.Add("email", constants.MsgEmailTaken)
			} else {
				fields["email"] = email
			}
		}
	}
	if req.Password != nil && *req.Password != "" {
		if v.Check(utils.ValidatePassword("password", *req.Password)) {
			hash, err := utils.HashPassword(*req.Password)
			if err != nil {
				return nil, fmt.Errorf("erreur lors du hachage du mot de passe: %w", err)
			}
			fields["password"] = hash
		}
	}
	if req.Role != nil {
		if v.Check(utils.ValidateOneOf("role", *req.Role, models.RoleAdmin, models.RoleUser)) {
			fields["role"] = *req.Role
		}
	}
	if err := invalid(v); err != nil {
		return nil, err
	}

	if len(fields) > 0 {
		fields["updated_at"] = now
		if err := s.users.UpdateFields(ctx, id, fields); err != nil {
			if errors.Is(err, database.ErrDuplicate) {
				return nil, fieldError("email", constants.MsgEmailTaken)
			}
			return nil, err
		}
	}

	return s.Get(ctx, id)
}

// Delete supprime un compte et ses données dépendantes.
// Un administrateur ne peut pas supprimer son propre compte.
func (s *UserService) Delete(ctx context.Context, actorID, id primitive.ObjectID) error {
	if actorID == id {
		return forbidden(constants.MsgSelfDelete)
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	removed, err := s.participations.DeleteByUser(ctx, id)
	if err != nil {
		return err
	}
	if err := s.events.UnsetCreator(ctx, id); err != nil {
		return err
	}
	if err := s.pushTokens.DeleteByUserID(ctx, id); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	slog.Info("🗑️  Utilisateur supprimé", "user_id", id.Hex(), "participations", removed)
	return nil
}

// CreateAdmin crée ou promeut un administrateur (utilisé par ensajctl)
func (s *UserService) CreateAdmin(ctx context.Context, req models.CreateUserRequest, now time.Time) (*models.User, error) {
	existing, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		req.Role = models.RoleAdmin
		return s.Create(ctx, req, now)
	}

	role := models.RoleAdmin
	return s.Update(ctx, existing.ID, models.UpdateUserRequest{Role: &role, Password: &req.Password}, now)
}
