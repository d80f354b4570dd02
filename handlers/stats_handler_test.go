package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ensaj-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func seedStats(t *testing.T, env *testEnv) (adminToken, userToken string) {
	t.Helper()
	_, adminToken = env.seedUser(t, models.RoleAdmin, "motdepasse")
	user, userToken := env.seedUser(t, models.RoleUser, "motdepasse")

	thisMonth := env.seedEvent(t, "Conférence IA", testNow.AddDate(0, 0, -5))
	lastMonth := env.seedEvent(t, "Visite d'usine", testNow.AddDate(0, -1, 0))

	for _, p := range []*models.Participation{
		{UserID: user.ID, EventID: thisMonth.ID, StatutPresence: models.PresencePresent, Role: strPtr(models.RoleParticipant)},
		{UserID: user.ID, EventID: lastMonth.ID, StatutPresence: models.PresenceAbsent},
	} {
		require.NoError(t, env.store.Participations().Create(t.Context(), p))
	}
	return adminToken, userToken
}

func TestGlobalStats(t *testing.T) {
	env := newTestEnv(t)
	adminToken, _ := seedStats(t, env)

	rr := env.do(t, http.MethodGet, "/api/stats", adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var stats models.GlobalStats
	decode(t, rr, &stats)
	assert.Equal(t, 2, stats.TotalEvents)
	assert.Equal(t, 1, stats.TotalParticipants)
	assert.InDelta(t, 50.0, stats.PresenceRate, 0.01)
	assert.Equal(t, 1, stats.EventsThisMonth)
	assert.Len(t, stats.EventsByMonth, 12)
}

func TestParticipationStatsLocalized(t *testing.T) {
	env := newTestEnv(t)
	adminToken, _ := seedStats(t, env)

	req := httptest.NewRequest(http.MethodGet, "/api/participation-stats", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	rr := env.serve(req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var stats models.ParticipationStats
	decode(t, rr, &stats)
	assert.Equal(t, 1, stats.PresenceCount)
	assert.Equal(t, 1, stats.AbsenceCount)
	assert.Equal(t, 1, stats.ParticipantRoleCount)
	require.Len(t, stats.MonthlyStats, 12)

	last := stats.MonthlyStats[11]
	assert.Equal(t, 2025, last.Year)
	assert.Equal(t, int(time.March), last.MonthNumber)
	assert.Contains(t, last.Month, "2025")
	assert.NotContains(t, last.Month, "mars")
}

func TestUserMonthlyStats(t *testing.T) {
	env := newTestEnv(t)
	_, userToken := seedStats(t, env)

	rr := env.do(t, http.MethodGet, "/api/user/stats/monthly?period=quarter", userToken, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var series []models.UserMonthlyStat
	decode(t, rr, &series)
	require.NotEmpty(t, series)

	present, absent := 0, 0
	for _, s := range series {
		present += s.Present
		absent += s.Absent
		assert.Equal(t, s.Present+s.Absent, s.Total)
	}
	assert.Equal(t, 1, present)
	assert.Equal(t, 1, absent)

	rr = env.do(t, http.MethodGet, "/api/user/stats/monthly?period=all", userToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var all []models.UserMonthlyStat
	decode(t, rr, &all)

	rr = env.do(t, http.MethodGet, "/api/user/stats/monthly?period=decade", userToken, nil)
	require.Equal(t, http.StatusOK, rr.Code, "une période inconnue vaut all")
	var unknown []models.UserMonthlyStat
	decode(t, rr, &unknown)
	assert.Equal(t, all, unknown)
}

func TestExportsAndChart(t *testing.T) {
	env := newTestEnv(t)
	adminToken, userToken := seedStats(t, env)

	t.Run("classeur Excel", func(t *testing.T) {
		rr := env.do(t, http.MethodGet, "/api/exports/participations.xlsx", adminToken, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Header().Get("Content-Disposition"), "participations-2025-03-15.xlsx")

		f, err := excelize.OpenReader(bytes.NewReader(rr.Body.Bytes()))
		require.NoError(t, err)
		defer f.Close()

		rows, err := f.GetRows("Événements")
		require.NoError(t, err)
		assert.Len(t, rows, 3)
	})

	t.Run("graphique PNG", func(t *testing.T) {
		rr := env.do(t, http.MethodGet, "/api/participation-stats/chart.png", adminToken, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
		assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte("\x89PNG")))
	})

	t.Run("réservé aux admins", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/api/participation-stats/chart.png", userToken, nil).Code)
	})
}
