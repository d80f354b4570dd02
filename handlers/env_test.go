package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ensaj-backend/i18n"
	"ensaj-backend/middleware"
	"ensaj-backend/models"
	"ensaj-backend/services"
	"ensaj-backend/testutils"
	"ensaj-backend/utils"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

var testNow = time.Date(2025, time.March, 15, 10, 0, 0, 0, time.UTC)

type fakeForwarder struct {
	contacts  []models.ContactRequest
	questions []models.QuestionRequest
	err       error
}

func (f *fakeForwarder) ForwardContact(_ context.Context, req models.ContactRequest) error {
	if f.err != nil {
		return f.err
	}
	f.contacts = append(f.contacts, req)
	return nil
}

func (f *fakeForwarder) ForwardQuestion(_ context.Context, req models.QuestionRequest) error {
	if f.err != nil {
		return f.err
	}
	f.questions = append(f.questions, req)
	return nil
}

// testEnv câble le routeur complet sur un store en mémoire
type testEnv struct {
	store     *testutils.Store
	photos    *testutils.Photos
	forwarder *fakeForwarder
	router    *mux.Router
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := testutils.NewStore()
	photos := testutils.NewPhotos()
	forwarder := &fakeForwarder{}
	clock := Clock(func() time.Time { return testNow })

	identity := services.NewIdentityService(store.Users(), store.Codes(), store.Revoker(), testSecret, time.Hour)
	events := services.NewEventService(store.Events(), store.Participations(), photos, nil, 1024)
	participations := services.NewParticipationService(store.Participations(), store.Events(), photos)
	stats := services.NewStatsService(store.Events(), store.Participations(), photos)
	push := services.NewPushNotifier(store.PushTokens(), services.NewDisabledFCMService(), time.UTC)

	routes := &Routes{
		Auth:           NewAuthHandler(identity, clock),
		Admin:          NewAdminHandler(services.NewUserService(store.Users(), store.Events(), store.Participations(), store.PushTokens()), services.NewCodeService(store.Codes()), clock),
		Events:         NewEventHandler(events, 1024, clock),
		Participations: NewParticipationHandler(participations, clock),
		Stats:          NewStatsHandler(stats, i18n.NewTranslator("fr"), clock),
		Contact:        NewContactHandler(forwarder),
		FCM:            NewFCMHandler(push, clock),
		Health:         NewHealthHandler("test", func(context.Context) error { return nil }),
		JWTSecret:      testSecret,
		Revoker:        store.Revoker(),
		Users:          store.Users(),
		Limiter:        middleware.NewIPRateLimiter(1000, 1000),
	}

	router := mux.NewRouter()
	router.Use(middleware.CORS([]string{"https://ensaj.test"}))
	routes.Register(router)

	return &testEnv{store: store, photos: photos, forwarder: forwarder, router: router}
}

// seedUser crée un compte et retourne un token valide à l'heure réelle
func (e *testEnv) seedUser(t *testing.T, role, password string) (*models.User, string) {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)

	u := &models.User{
		Nom:       gofakeit.LastName(),
		Prenom:    gofakeit.FirstName(),
		Email:     gofakeit.Email(),
		Password:  hash,
		Role:      role,
		CreatedAt: testNow,
	}
	require.NoError(t, e.store.Users().Create(context.Background(), u))

	token, _, err := utils.GenerateToken(u.ID.Hex(), u.Email, testSecret, time.Hour, time.Now())
	require.NoError(t, err)
	return u, token
}

func (e *testEnv) seedEvent(t *testing.T, titre string, date time.Time) *models.Event {
	t.Helper()
	ev := &models.Event{Titre: titre, DateEvent: date, CreatedAt: testNow}
	require.NoError(t, e.store.Events().Create(context.Background(), ev))
	return ev
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) serve(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), dst), rr.Body.String())
}

func strPtr(s string) *string { return &s }
