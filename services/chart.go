package services

import (
	"bytes"
	"math"

	"ensaj-backend/models"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	chartBackground = drawing.ColorWhite
	chartBar        = drawing.ColorFromHex("1f6feb")
	chartText       = drawing.ColorFromHex("24292f")
)

// RenderMonthlyChart produit un histogramme PNG des participants par mois
func RenderMonthlyChart(series []models.MonthlyActivity, title string) ([]byte, error) {
	peak := 0
	for _, m := range series {
		peak = max(peak, m.ParticipantCount)
	}
	if peak == 0 {
		return renderNoDataPlaceholder("Aucune participation sur la période")
	}

	bars := make([]chart.Value, 0, len(series))
	for _, m := range series {
		bars = append(bars, chart.Value{
			Label: m.Month,
			Value: float64(m.ParticipantCount),
			Style: chart.Style{FillColor: chartBar, StrokeColor: chartBar},
		})
	}

	graph := chart.BarChart{
		Title:      title,
		TitleStyle: chart.Style{FontColor: chartText},
		Width:      900,
		Height:     420,
		BarWidth:   40,
		BarSpacing: 20,
		Background: chart.Style{
			FillColor: chartBackground,
			Padding:   chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
		},
		Canvas: chart.Style{FillColor: chartBackground},
		XAxis:  chart.Style{FontColor: chartText},
		YAxis: chart.YAxis{
			Style: chart.Style{FontColor: chartText},
			Range: &chart.ContinuousRange{Min: 0, Max: math.Ceil(float64(peak) * 1.2)},
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer(nil)
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// renderNoDataPlaceholder dessine directement une image avec un message centré
func renderNoDataPlaceholder(msg string) ([]byte, error) {
	const (
		width  = 400
		height = 200
	)

	r, err := chart.PNG(width, height)
	if err != nil {
		return nil, err
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return nil, err
	}

	r.SetFillColor(chartBackground)
	r.MoveTo(0, 0)
	r.LineTo(width, 0)
	r.LineTo(width, height)
	r.LineTo(0, height)
	r.Close()
	r.Fill()

	r.SetFont(font)
	r.SetFontColor(chartText)
	r.SetFontSize(12.0)
	tb := r.MeasureText(msg)
	r.Text(msg, (width-tb.Width())/2, (height+tb.Height())/2)

	buffer := bytes.NewBuffer(nil)
	if err := r.Save(buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
