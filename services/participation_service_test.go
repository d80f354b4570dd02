package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"ensaj-backend/constants"
	"ensaj-backend/models"
	"ensaj-backend/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newParticipationService() (*ParticipationService, *testutils.Store) {
	store := testutils.NewStore()
	return NewParticipationService(store.Participations(), store.Events(), testutils.NewPhotos()), store
}

func TestCreateParticipation(t *testing.T) {
	ctx := context.Background()

	t.Run("présent organisateur puis doublon", func(t *testing.T) {
		svc, store := newParticipationService()
		user := seedUser(t, store, "motdepasse")
		event := seedEvent(t, store, "Gala", testNow.AddDate(0, 0, 7))

		req := models.CreateParticipationRequest{
			EventID:        event.ID.Hex(),
			Role:           strPtr(models.RoleOrganisateur),
			StatutPresence: models.PresencePresent,
		}
		p, err := svc.Create(ctx, user.ID, req, testNow)
		require.NoError(t, err)
		require.NotNil(t, p.Role)
		assert.Equal(t, models.RoleOrganisateur, *p.Role)

		_, err = svc.Create(ctx, user.ID, req, testNow)
		assert.True(t, errors.Is(err, ErrConflict))
		assert.EqualError(t, err, constants.MsgAlreadyParticipates)
	})

	t.Run("absent efface le rôle", func(t *testing.T) {
		svc, store := newParticipationService()
		user := seedUser(t, store, "motdepasse")
		event := seedEvent(t, store, "Gala", testNow)

		p, err := svc.Create(ctx, user.ID, models.CreateParticipationRequest{
			EventID:        event.ID.Hex(),
			Role:           strPtr(models.RoleParticipant),
			StatutPresence: models.PresenceAbsent,
		}, testNow)
		require.NoError(t, err)
		assert.Nil(t, p.Role)

		stored, err := store.Participations().FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Nil(t, stored.Role)
	})

	t.Run("événement inconnu ou identifiant invalide", func(t *testing.T) {
		svc, store := newParticipationService()
		user := seedUser(t, store, "motdepasse")

		for _, id := range []string{"", "pas-un-id", primitive.NewObjectID().Hex()} {
			_, err := svc.Create(ctx, user.ID, models.CreateParticipationRequest{EventID: id, StatutPresence: models.PresencePresent}, testNow)
			assert.Contains(t, fieldErrors(t, err), "event_id", "event_id=%q", id)
		}
	})

	t.Run("rôle et présence hors liste", func(t *testing.T) {
		svc, store := newParticipationService()
		user := seedUser(t, store, "motdepasse")
		event := seedEvent(t, store, "Gala", testNow)

		_, err := svc.Create(ctx, user.ID, models.CreateParticipationRequest{
			EventID:        event.ID.Hex(),
			Role:           strPtr("invité"),
			StatutPresence: "peut-être",
		}, testNow)
		fields := fieldErrors(t, err)
		assert.Contains(t, fields, "role")
		assert.Contains(t, fields, "statut_presence")
	})
}

func TestUpdateParticipation(t *testing.T) {
	ctx := context.Background()
	svc, store := newParticipationService()
	owner := seedUser(t, store, "motdepasse")
	intruder := seedUser(t, store, "motdepasse")
	event := seedEvent(t, store, "Conférence", testNow)
	p := seedParticipation(t, store, owner.ID, event.ID, models.PresencePresent, strPtr(models.RoleParticipant))

	t.Run("un autre utilisateur est refusé et la ligne est inchangée", func(t *testing.T) {
		_, err := svc.Update(ctx, intruder.ID, p.ID, models.UpdateParticipationRequest{StatutPresence: strPtr(models.PresenceAbsent)}, testNow)
		assert.True(t, errors.Is(err, ErrForbidden))

		stored, err := store.Participations().FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, models.PresencePresent, stored.StatutPresence)
		assert.NotNil(t, stored.Role)
	})

	t.Run("participation inconnue", func(t *testing.T) {
		_, err := svc.Update(ctx, owner.ID, primitive.NewObjectID(), models.UpdateParticipationRequest{}, testNow)
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("passer absent efface le rôle", func(t *testing.T) {
		updated, err := svc.Update(ctx, owner.ID, p.ID, models.UpdateParticipationRequest{StatutPresence: strPtr(models.PresenceAbsent)}, testNow)
		require.NoError(t, err)
		assert.Equal(t, models.PresenceAbsent, updated.StatutPresence)
		assert.Nil(t, updated.Role)
	})

	t.Run("un rôle envoyé avec absent reste nul", func(t *testing.T) {
		updated, err := svc.Update(ctx, owner.ID, p.ID, models.UpdateParticipationRequest{
			Role: models.OptionalString{Set: true, Value: strPtr(models.RoleOrganisateur)},
		}, testNow)
		require.NoError(t, err)
		assert.Nil(t, updated.Role)
	})

	t.Run("redevenir présent avec un rôle", func(t *testing.T) {
		updated, err := svc.Update(ctx, owner.ID, p.ID, models.UpdateParticipationRequest{
			Role:           models.OptionalString{Set: true, Value: strPtr(models.RoleOrganisateur)},
			StatutPresence: strPtr(models.PresencePresent),
		}, testNow)
		require.NoError(t, err)
		require.NotNil(t, updated.Role)
		assert.Equal(t, models.RoleOrganisateur, *updated.Role)
	})
}

func TestDeleteParticipation(t *testing.T) {
	ctx := context.Background()
	svc, store := newParticipationService()
	owner := seedUser(t, store, "motdepasse")
	intruder := seedUser(t, store, "motdepasse")
	event := seedEvent(t, store, "Conférence", testNow)
	p := seedParticipation(t, store, owner.ID, event.ID, models.PresencePresent, nil)

	assert.True(t, errors.Is(svc.Delete(ctx, intruder.ID, p.ID), ErrForbidden))
	require.NoError(t, svc.Delete(ctx, owner.ID, p.ID))

	stored, err := store.Participations().FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestListForEvent(t *testing.T) {
	ctx := context.Background()
	svc, store := newParticipationService()
	user := seedUser(t, store, "motdepasse")
	event := seedEvent(t, store, "Conférence", testNow)
	seedParticipation(t, store, user.ID, event.ID, models.PresencePresent, nil)

	parts, err := svc.ListForEvent(ctx, event.ID)
	require.NoError(t, err)
	require.Len(t, parts, 1)
	require.NotNil(t, parts[0].User)
	assert.Equal(t, user.Email, parts[0].User.Email)

	_, err = svc.ListForEvent(ctx, primitive.NewObjectID())
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFlattenParticipations(t *testing.T) {
	date := testNow
	event := &models.Event{ID: primitive.NewObjectID(), Titre: "Gala", DateEvent: date}
	parts := []models.ParticipationWithEvent{
		{Participation: models.Participation{ID: primitive.NewObjectID(), EventID: event.ID, StatutPresence: models.PresencePresent}, Event: event},
		{Participation: models.Participation{ID: primitive.NewObjectID(), EventID: primitive.NewObjectID(), StatutPresence: models.PresenceAbsent}},
	}

	views := FlattenParticipations(parts)
	require.Len(t, views, 2)
	assert.Equal(t, "Gala", views[0].EventTitle)
	require.NotNil(t, views[0].DateEvent)
	assert.True(t, date.Equal(*views[0].DateEvent))
	assert.Equal(t, constants.ErrUnknownEventTitle, views[1].EventTitle)
	assert.Nil(t, views[1].DateEvent)
}

func TestPartitionUserEvents(t *testing.T) {
	now := testNow
	mk := func(offset time.Duration) models.ParticipationWithEvent {
		e := &models.Event{ID: primitive.NewObjectID(), DateEvent: now.Add(offset), Photo: "p"}
		return models.ParticipationWithEvent{Participation: models.Participation{ID: primitive.NewObjectID()}, Event: e}
	}
	parts := []models.ParticipationWithEvent{
		mk(48 * time.Hour),
		mk(-24 * time.Hour),
		mk(0),
		mk(-72 * time.Hour),
		mk(time.Hour),
		{Participation: models.Participation{ID: primitive.NewObjectID()}},
	}

	upcoming, past := PartitionUserEvents(parts, now, func(key string) string { return "url/" + key })

	require.Len(t, upcoming, 3)
	require.Len(t, past, 2)
	assert.True(t, upcoming[0].DateEvent.Equal(now), "un événement à now est à venir")
	assert.True(t, upcoming[1].DateEvent.Equal(now.Add(time.Hour)))
	assert.True(t, upcoming[2].DateEvent.Equal(now.Add(48*time.Hour)))
	assert.True(t, past[0].DateEvent.Equal(now.Add(-24*time.Hour)))
	assert.True(t, past[1].DateEvent.Equal(now.Add(-72*time.Hour)))
	assert.Equal(t, "url/p", upcoming[0].PhotoURL)
}
