package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ensaj-backend/constants"
	"ensaj-backend/database"
	"ensaj-backend/models"
	"ensaj-backend/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	maxCodesPerBatch   = 100
	maxGenerateRetries = 10
)

// CodeService gère les codes d'inscription
type CodeService struct {
	codes  CodeStore
	random func(n int) (string, error)
}

// NewCodeService crée une nouvelle instance de CodeService
func NewCodeService(codes CodeStore) *CodeService {
	return &CodeService{codes: codes, random: utils.RandomCode}
}

// List retourne les codes, les plus récents d'abord
func (s *CodeService) List(ctx context.Context) ([]models.RegistrationCode, error) {
	return s.codes.FindAll(ctx)
}

// Create enregistre un code saisi manuellement
func (s *CodeService) Create(ctx context.Context, req models.CreateCodeRequest, now time.Time) (*models.RegistrationCode, error) {
	value := strings.TrimSpace(req.Code)

	v := utils.NewValidator()
	if v.Check(utils.ValidateRequired("code", value)) {
		v.Check(utils.ValidateMaxLength("code", value, 50))
	}
	if err := invalid(v); err != nil {
		return nil, err
	}

	code := &models.RegistrationCode{Code: value, CreatedAt: now}
	if err := s.codes.Create(ctx, code); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, fieldError("code", "ce code existe déjà")
		}
		return nil, err
	}

	codesCreatedTotal.WithLabelValues(codeSourceManual).Inc()
	return code, nil
}

// Generate crée count codes aléatoires de 8 caractères.
// Une collision avec un code existant est rejetée par l'index unique et retentée.
func (s *CodeService) Generate(ctx context.Context, count int, now time.Time) ([]models.RegistrationCode, error) {
	if count < 1 || count > maxCodesPerBatch {
		return nil, fieldError("count", fmt.Sprintf("le nombre de codes doit être compris entre 1 et %d", maxCodesPerBatch))
	}

	created := make([]models.RegistrationCode, 0, count)
	for i := 0; i < count; i++ {
		code, err := s.generateOne(ctx, now)
		if err != nil {
			return created, err
		}
		created = append(created, *code)
	}

	codesCreatedTotal.WithLabelValues(codeSourceGenerated).Add(float64(len(created)))
	return created, nil
}

func (s *CodeService) generateOne(ctx context.Context, now time.Time) (*models.RegistrationCode, error) {
	for attempt := 0; attempt < maxGenerateRetries; attempt++ {
		value, err := s.random(utils.RegistrationCodeLength)
		if err != nil {
			return nil, err
		}

		code := &models.RegistrationCode{Code: value, CreatedAt: now}
		err = s.codes.Create(ctx, code)
		if err == nil {
			return code, nil
		}
		if !errors.Is(err, database.ErrDuplicate) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("impossible de générer un code unique après %d tentatives", maxGenerateRetries)
}

// Delete supprime un code non utilisé
func (s *CodeService) Delete(ctx context.Context, id primitive.ObjectID) error {
	deleted, err := s.codes.DeleteUnused(ctx, id)
	if err != nil {
		return err
	}
	if deleted {
		return nil
	}

	// Rien de supprimé: soit le code n'existe pas, soit il a été utilisé
	code, err := s.codes.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if code == nil {
		return notFound(constants.ErrCodeNotFound)
	}
	return forbidden(constants.MsgUsedCode)
}
