package services

import (
	"bytes"
	"testing"

	"ensaj-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func sampleParticipationStats() models.ParticipationStats {
	events := []models.EventWithCreator{
		{Event: models.Event{ID: primitive.NewObjectID(), Titre: "Gala", DateEvent: testNow}},
	}
	parts := []models.Participation{
		{EventID: events[0].ID, StatutPresence: models.PresencePresent},
		{EventID: events[0].ID, StatutPresence: models.PresenceAbsent},
	}
	return ComputeParticipationStats(events, parts, testNow, testLabel)
}

func TestBuildParticipationWorkbook(t *testing.T) {
	data, err := BuildParticipationWorkbook(sampleParticipationStats(), nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{eventsSheet, monthlySheet}, f.GetSheetList())

	rows, err := f.GetRows(eventsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Titre", rows[0][0])
	assert.Equal(t, []string{"Gala", "15/03/2025 10:00", "2", "1", "50"}, rows[1])

	monthly, err := f.GetRows(monthlySheet)
	require.NoError(t, err)
	require.Len(t, monthly, 13)
	assert.Equal(t, "2025-03", monthly[12][0])
	assert.Equal(t, "2", monthly[12][3])
}

func TestRenderMonthlyChart(t *testing.T) {
	pngMagic := []byte("\x89PNG")

	t.Run("histogramme", func(t *testing.T) {
		data, err := RenderMonthlyChart(sampleParticipationStats().MonthlyStats, "Participants par mois")
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, pngMagic))
	})

	t.Run("aucune donnée", func(t *testing.T) {
		data, err := RenderMonthlyChart(ComputeParticipationStats(nil, nil, testNow, testLabel).MonthlyStats, "Participants par mois")
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, pngMagic))
	})
}
