package i18n

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonthLabeler(t *testing.T) {
	tr := NewTranslator("fr")

	tests := []struct {
		name   string
		locale string
		month  time.Month
		want   string
	}{
		{"français par défaut", "", time.February, "févr. 2025"},
		{"anglais explicite", "en", time.February, "Feb 2025"},
		{"en-tête Accept-Language", "en-US,en;q=0.9,fr;q=0.8", time.December, "Dec 2025"},
		{"langue inconnue", "de", time.August, "août 2025"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tr.MonthLabeler(tt.locale)(2025, tt.month))
		})
	}
}

func TestTranslatorFallbacks(t *testing.T) {
	tr := NewTranslator("%%")
	assert.Equal(t, "Participants par mois", tr.T("", "chart_monthly_participants", nil))
	assert.Equal(t, "cle_inconnue", tr.T("fr", "cle_inconnue", nil))
	assert.Empty(t, tr.T("fr", "", nil))
}
