package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ensaj-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type eventResponse struct {
	Message string                  `json:"message"`
	Event   models.EventWithCreator `json:"event"`
}

// multipartRequest construit une requête de formulaire avec une photo optionnelle
func multipartRequest(t *testing.T, method, path, token string, fields map[string]string, photo []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if photo != nil {
		part, err := mw.CreateFormFile("photo", "affiche.png")
		require.NoError(t, err)
		_, err = part.Write(photo)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestEventCRUD(t *testing.T) {
	env := newTestEnv(t)
	admin, token := env.seedUser(t, models.RoleAdmin, "motdepasse")
	_, userToken := env.seedUser(t, models.RoleUser, "motdepasse")

	var created eventResponse
	t.Run("création multipart avec photo", func(t *testing.T) {
		req := multipartRequest(t, http.MethodPost, "/api/events", token, map[string]string{
			"titre":       "Forum Entreprises",
			"description": "Rencontre avec les recruteurs",
			"date_event":  "2025-04-10 09:00",
		}, pngHeader)

		rr := env.serve(req)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		decode(t, rr, &created)

		assert.Equal(t, "Événement créé avec succès", created.Message)
		assert.Equal(t, "Forum Entreprises", created.Event.Titre)
		require.NotNil(t, created.Event.Creator)
		assert.Equal(t, admin.ID, created.Event.Creator.ID)
		assert.True(t, env.photos.Has(created.Event.Photo))
	})

	t.Run("création JSON invalide", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/api/events", token, map[string]string{"description": "sans titre"})
		require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

		var body models.ErrorResponse
		decode(t, rr, &body)
		assert.Contains(t, body.Errors, "titre")
		assert.Contains(t, body.Errors, "date_event")
	})

	t.Run("lecture par un adhérent", func(t *testing.T) {
		rr := env.do(t, http.MethodGet, "/api/events/"+created.Event.ID.Hex(), userToken, nil)
		require.Equal(t, http.StatusOK, rr.Code)

		var got models.EventWithCreator
		decode(t, rr, &got)
		assert.Equal(t, created.Event.ID, got.ID)
		assert.Equal(t, "https://cdn.test/"+created.Event.Photo, got.PhotoURL)
	})

	t.Run("mise à jour POST _method=PUT remplace la photo", func(t *testing.T) {
		oldPhoto := created.Event.Photo
		req := multipartRequest(t, http.MethodPost, "/api/events/"+created.Event.ID.Hex(), token, map[string]string{
			"_method": "PUT",
			"titre":   "Forum Entreprises 2025",
		}, pngHeader)

		rr := env.serve(req)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var updated eventResponse
		decode(t, rr, &updated)
		assert.Equal(t, "Forum Entreprises 2025", updated.Event.Titre)
		assert.NotEqual(t, oldPhoto, updated.Event.Photo)
		assert.False(t, env.photos.Has(oldPhoto))
		assert.True(t, env.photos.Has(updated.Event.Photo))
	})

	t.Run("POST sans _method refusé", func(t *testing.T) {
		req := multipartRequest(t, http.MethodPost, "/api/events/"+created.Event.ID.Hex(), token, map[string]string{"titre": "x"}, nil)
		assert.Equal(t, http.StatusMethodNotAllowed, env.serve(req).Code)
	})

	t.Run("mise à jour JSON d'un événement inconnu", func(t *testing.T) {
		rr := env.do(t, http.MethodPut, "/api/events/"+primitive.NewObjectID().Hex(), token, map[string]string{"titre": "x"})
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("liste", func(t *testing.T) {
		env.seedEvent(t, "Plus ancien", testNow.AddDate(0, -2, 0))

		rr := env.do(t, http.MethodGet, "/api/events", userToken, nil)
		require.Equal(t, http.StatusOK, rr.Code)

		var events []models.EventWithCreator
		decode(t, rr, &events)
		require.Len(t, events, 2)
		assert.Equal(t, created.Event.ID, events[0].ID, "date décroissante")
	})

	t.Run("suppression en cascade", func(t *testing.T) {
		owner, _ := env.seedUser(t, models.RoleUser, "motdepasse")
		p := &models.Participation{UserID: owner.ID, EventID: created.Event.ID, StatutPresence: models.PresencePresent}
		require.NoError(t, env.store.Participations().Create(t.Context(), p))

		rr := env.do(t, http.MethodDelete, "/api/events/"+created.Event.ID.Hex(), token, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"message":"Événement supprimé avec succès"}`, rr.Body.String())

		assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/events/"+created.Event.ID.Hex(), token, nil).Code)
		got, err := env.store.Participations().FindByID(t.Context(), p.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestEventUploadTooLarge(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.seedUser(t, models.RoleAdmin, "motdepasse")

	t.Run("corps au-delà de la limite refusé avant lecture", func(t *testing.T) {
		photo := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 2<<20)...)
		req := multipartRequest(t, http.MethodPost, "/api/events", token, map[string]string{
			"titre":      "Gala",
			"date_event": "2025-04-10 20:00",
		}, photo)

		rr := env.serve(req)
		require.Equal(t, http.StatusRequestEntityTooLarge, rr.Code, rr.Body.String())
		var body models.ErrorResponse
		decode(t, rr, &body)
		assert.Equal(t, "Requête trop volumineuse", body.Message)

		events, err := env.store.Events().FindAll(t.Context())
		require.NoError(t, err)
		assert.Empty(t, events)
	})
}

func TestEventsWithParticipations(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.seedUser(t, models.RoleAdmin, "motdepasse")
	u1, _ := env.seedUser(t, models.RoleUser, "motdepasse")
	u2, _ := env.seedUser(t, models.RoleUser, "motdepasse")
	ev := env.seedEvent(t, "Hackathon", testNow.Add(48*time.Hour))

	for _, p := range []*models.Participation{
		{UserID: u1.ID, EventID: ev.ID, StatutPresence: models.PresencePresent},
		{UserID: u2.ID, EventID: ev.ID, StatutPresence: models.PresenceAbsent},
	} {
		require.NoError(t, env.store.Participations().Create(t.Context(), p))
	}

	rr := env.do(t, http.MethodGet, "/api/events-participates", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var events []models.EventWithParticipations
	decode(t, rr, &events)
	require.Len(t, events, 1)
	assert.Len(t, events[0].Participations, 2)
	assert.InDelta(t, 50.0, events[0].PresenceRate, 0.01)
	for _, p := range events[0].Participations {
		assert.NotNil(t, p.User)
	}
}
