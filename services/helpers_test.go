package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"ensaj-backend/models"
	"ensaj-backend/testutils"
	"ensaj-backend/utils"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var testNow = time.Date(2025, time.March, 15, 10, 0, 0, 0, time.UTC)

func testLabel(year int, m time.Month) string {
	return fmt.Sprintf("%d-%02d", year, int(m))
}

// fieldErrors extrait les erreurs par champ d'une ValidationError
func fieldErrors(t *testing.T, err error) utils.FieldErrors {
	t.Helper()
	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "ValidationError attendue, obtenu %v", err)
	return ve.Fields
}

func seedUser(t *testing.T, store *testutils.Store, password string) *models.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	u := &models.User{
		Nom:       gofakeit.LastName(),
		Prenom:    gofakeit.FirstName(),
		Email:     gofakeit.Email(),
		Password:  hash,
		Role:      models.RoleUser,
		CreatedAt: testNow,
	}
	require.NoError(t, store.Users().Create(context.Background(), u))
	return u
}

func seedEvent(t *testing.T, store *testutils.Store, titre string, date time.Time) *models.Event {
	t.Helper()
	e := &models.Event{Titre: titre, DateEvent: date, CreatedAt: testNow}
	require.NoError(t, store.Events().Create(context.Background(), e))
	return e
}

func seedParticipation(t *testing.T, store *testutils.Store, userID, eventID primitive.ObjectID, presence string, role *string) *models.Participation {
	t.Helper()
	p := &models.Participation{UserID: userID, EventID: eventID, StatutPresence: presence, Role: role, CreatedAt: testNow}
	require.NoError(t, store.Participations().Create(context.Background(), p))
	return p
}

func strPtr(s string) *string { return &s }
