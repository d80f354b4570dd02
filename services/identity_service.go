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

// IdentityService gère l'inscription, la connexion et le profil
type IdentityService struct {
	users     UserStore
	codes     CodeStore
	revoker   TokenRevoker
	jwtSecret string
	tokenTTL  time.Duration
}

// NewIdentityService crée une nouvelle instance de IdentityService
func NewIdentityService(users UserStore, codes CodeStore, revoker TokenRevoker, jwtSecret string, tokenTTL time.Duration) *IdentityService {
	return &IdentityService{
		users:     users,
		codes:     codes,
		revoker:   revoker,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

// Register inscrit un nouvel adhérent en consommant un code d'invitation
func (s *IdentityService) Register(ctx context.Context, req models.RegisterRequest, now time.Time) (*models.AuthResponse, error) {
	req.Nom = strings.TrimSpace(req.Nom)
	req.Prenom = strings.TrimSpace(req.Prenom)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Code = strings.TrimSpace(req.Code)

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
	if v.Check(utils.ValidatePassword("password", req.Password)) && req.Password != req.PasswordConfirmation {
		v.Add("password", "la confirmation du mot de passe ne correspond pas")
	}
	v.Check(utils.ValidateRequired("code", req.Code))

	if !v.Has("email") {
		exists, err := s.users.EmailExists(ctx, req.Email, primitive.NilObjectID)
		if err != nil {
			return nil, err
		}
		if exists {
			v.Add("email", constants.MsgEmailTaken)
		}
	}
	if !v.Has("code") {
		code, err := s.codes.FindByCode(ctx, req.Code)
		if err != nil {
			return nil, err
		}
		if code == nil || code.IsUsed {
			v.Add("code", constants.MsgInvalidCode)
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
		ID:        primitive.NewObjectID(),
		Nom:       req.Nom,
		Prenom:    req.Prenom,
		Email:     req.Email,
		Password:  hash,
		Role:      models.RoleUser,
		CreatedAt: now,
	}

	// Le code est réservé avant la création du compte; une inscription
	// concurrente sur le même code échoue ici.
	consumed, err := s.codes.Consume(ctx, req.Code, user.ID, now)
	if err != nil {
		return nil, err
	}
	if !consumed {
		return nil, fieldError("code", constants.MsgInvalidCode)
	}

	if err := s.users.Create(ctx, user); err != nil {
		if relErr := s.codes.Release(ctx, req.Code, user.ID); relErr != nil {
			slog.Error("libération du code impossible", "code", req.Code, "error", relErr)
		}
		if errors.Is(err, database.ErrDuplicate) {
			return nil, fieldError("email", constants.MsgEmailTaken)
		}
		return nil, err
	}

	registrationsTotal.Inc()
	slog.Info("✓ Nouvel adhérent inscrit", "user_id", user.ID.Hex())

	return s.issue(user, now)
}

// Login authentifie un utilisateur. Email inconnu et mauvais mot de passe
// produisent la même erreur.
func (s *IdentityService) Login(ctx context.Context, req models.LoginRequest, now time.Time) (*models.AuthResponse, error) {
	v := utils.NewValidator()
	v.Check(utils.ValidateRequired("email", req.Email))
	v.Check(utils.ValidateRequired("password", req.Password))
	if err := invalid(v); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	hash := ""
	if user != nil {
		hash = user.Password
	}
	if !utils.CheckPassword(hash, req.Password) {
		return nil, &Error{Kind: KindInvalidCredentials, Message: constants.MsgInvalidCredentials}
	}

	return s.issue(user, now)
}

// Logout révoque le jeton courant jusqu'à son expiration naturelle
func (s *IdentityService) Logout(ctx context.Context, claims *utils.Claims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	return s.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

// CurrentUser retourne l'utilisateur authentifié
func (s *IdentityService) CurrentUser(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, notFound(constants.ErrUserNotFound)
	}
	return user, nil
}

// UpdateProfile modifie nom, prénom et email de l'utilisateur courant
func (s *IdentityService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, req models.UpdateProfileRequest, now time.Time) (*models.User, error) {
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
	if !v.Has("email") {
		exists, err := s.users.EmailExists(ctx, req.Email, userID)
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

	fields := bson.M{"nom": req.Nom, "prenom": req.Prenom, "email": req.Email, "updated_at": now}
	if err := s.users.UpdateFields(ctx, userID, fields); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, fieldError("email", constants.MsgEmailTaken)
		}
		return nil, err
	}

	return s.CurrentUser(ctx, userID)
}

// ChangePassword remplace le mot de passe après vérification de l'actuel
func (s *IdentityService) ChangePassword(ctx context.Context, userID primitive.ObjectID, req models.ChangePasswordRequest, now time.Time) error {
	v := utils.NewValidator()
	v.Check(utils.ValidateRequired("current_password", req.CurrentPassword))
	if v.Check(utils.ValidatePassword("new_password", req.NewPassword)) && req.NewPassword != req.NewPasswordConfirmation {
		v.Add("new_password", "la confirmation du mot de passe ne correspond pas")
	}
	if err := invalid(v); err != nil {
		return err
	}

	user, err := s.CurrentUser(ctx, userID)
	if err != nil {
		return err
	}
	if !utils.CheckPassword(user.Password, req.CurrentPassword) {
		return fieldError("current_password", constants.MsgWrongPassword)
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("erreur lors du hachage du mot de passe: %w", err)
	}

	return s.users.UpdateFields(ctx, userID, bson.M{"password": hash, "updated_at": now})
}

func (s *IdentityService) issue(user *models.User, now time.Time) (*models.AuthResponse, error) {
	token, _, err := utils.GenerateToken(user.ID.Hex(), user.Email, s.jwtSecret, s.tokenTTL, now)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, User: *user}, nil
}
