package handlers

import (
	"net/http"
	"testing"
	"time"

	"ensaj-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParticipationLifecycle(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.seedUser(t, models.RoleUser, "motdepasse")
	_, intruderToken := env.seedUser(t, models.RoleUser, "motdepasse")
	ev := env.seedEvent(t, "Journée d'intégration", testNow.Add(72*time.Hour))

	var created models.Participation
	t.Run("présent et organisateur", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/api/participations", token, map[string]string{
			"event_id": ev.ID.Hex(), "role": models.RoleOrganisateur, "statut_presence": models.PresencePresent,
		})
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		decode(t, rr, &created)
		require.NotNil(t, created.Role)
		assert.Equal(t, models.RoleOrganisateur, *created.Role)
	})

	t.Run("deuxième participation refusée", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/api/participations", token, map[string]string{
			"event_id": ev.ID.Hex(), "statut_presence": models.PresenceAbsent,
		})
		require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		assert.JSONEq(t, `{"message":"Vous participez déjà à cet événement"}`, rr.Body.String())
	})

	t.Run("événement inconnu", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/api/participations", intruderToken, map[string]string{
			"event_id": primitive.NewObjectID().Hex(), "statut_presence": models.PresencePresent,
		})
		require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		var body models.ErrorResponse
		decode(t, rr, &body)
		assert.Contains(t, body.Errors, "event_id")
	})

	t.Run("modification par un tiers interdite", func(t *testing.T) {
		rr := env.do(t, http.MethodPut, "/api/participations/"+created.ID.Hex(), intruderToken, map[string]string{
			"statut_presence": models.PresenceAbsent,
		})
		assert.Equal(t, http.StatusForbidden, rr.Code)

		got, err := env.store.Participations().FindByID(t.Context(), created.ID)
		require.NoError(t, err)
		assert.Equal(t, models.PresencePresent, got.StatutPresence)
	})

	t.Run("absent efface le rôle", func(t *testing.T) {
		rr := env.do(t, http.MethodPut, "/api/participations/"+created.ID.Hex(), token, map[string]string{
			"statut_presence": models.PresenceAbsent, "role": models.RoleParticipant,
		})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var updated models.Participation
		decode(t, rr, &updated)
		assert.Equal(t, models.PresenceAbsent, updated.StatutPresence)
		assert.Nil(t, updated.Role)
	})

	t.Run("listes utilisateur et événement", func(t *testing.T) {
		rr := env.do(t, http.MethodGet, "/api/participations/user", token, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		var mine []models.ParticipationWithEvent
		decode(t, rr, &mine)
		require.Len(t, mine, 1)
		require.NotNil(t, mine[0].Event)
		assert.Equal(t, ev.Titre, mine[0].Event.Titre)

		rr = env.do(t, http.MethodGet, "/api/participations/event/"+ev.ID.Hex(), token, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		var attendees []models.ParticipationWithUser
		decode(t, rr, &attendees)
		assert.Len(t, attendees, 1)

		rr = env.do(t, http.MethodGet, "/api/participations/event/"+primitive.NewObjectID().Hex(), token, nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("suppression", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodDelete, "/api/participations/"+created.ID.Hex(), intruderToken, nil).Code)

		rr := env.do(t, http.MethodDelete, "/api/participations/"+created.ID.Hex(), token, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"message":"Participation supprimée avec succès"}`, rr.Body.String())

		assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, "/api/participations/"+created.ID.Hex(), token, nil).Code)
	})
}

func TestUserEventViews(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.seedUser(t, models.RoleUser, "motdepasse")
	upcoming := env.seedEvent(t, "À venir", testNow.Add(time.Hour))
	past := env.seedEvent(t, "Passé", testNow.Add(-time.Hour))
	onTime := env.seedEvent(t, "Maintenant", testNow)

	for _, ev := range []*models.Event{upcoming, past, onTime} {
		p := &models.Participation{UserID: user.ID, EventID: ev.ID, StatutPresence: models.PresencePresent}
		require.NoError(t, env.store.Participations().Create(t.Context(), p))
	}

	titles := func(path string) []string {
		rr := env.do(t, http.MethodGet, path, token, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		var views []models.UserEventView
		decode(t, rr, &views)
		out := make([]string, 0, len(views))
		for _, v := range views {
			out = append(out, v.Titre)
		}
		return out
	}

	assert.ElementsMatch(t, []string{"À venir", "Maintenant"}, titles("/api/user/events/upcoming"))
	assert.ElementsMatch(t, []string{"Passé"}, titles("/api/user/events/past"))

	rr := env.do(t, http.MethodGet, "/api/user/participations", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var flat []models.UserParticipationView
	decode(t, rr, &flat)
	assert.Len(t, flat, 3)
}
