package services

import (
	"fmt"
	"time"

	"ensaj-backend/models"

	"github.com/xuri/excelize/v2"
)

const (
	eventsSheet  = "Événements"
	monthlySheet = "Mensuel"
)

// BuildParticipationWorkbook produit le classeur Excel des statistiques de participation :
// une feuille par événement et une feuille pour la série des 12 derniers mois.
func BuildParticipationWorkbook(stats models.ParticipationStats, loc *time.Location) ([]byte, error) {
	if loc == nil {
		loc = time.UTC
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), eventsSheet); err != nil {
		return nil, fmt.Errorf("erreur lors de la création de la feuille %s: %w", eventsSheet, err)
	}
	if _, err := f.NewSheet(monthlySheet); err != nil {
		return nil, fmt.Errorf("erreur lors de la création de la feuille %s: %w", monthlySheet, err)
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la création du style: %w", err)
	}

	eventRows := [][]interface{}{{"Titre", "Date", "Participants", "Présents", "Taux de présence (%)"}}
	for _, e := range stats.Events {
		eventRows = append(eventRows, []interface{}{
			e.Titre,
			e.DateEvent.In(loc).Format("02/01/2006 15:04"),
			e.ParticipantCount,
			e.PresentCount,
			e.PresenceRate,
		})
	}
	if err := writeRows(f, eventsSheet, eventRows, header); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(eventsSheet, "A", "A", 40); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(eventsSheet, "B", "E", 20); err != nil {
		return nil, err
	}

	monthRows := [][]interface{}{{"Mois", "Année", "Événements", "Participants"}}
	for _, m := range stats.MonthlyStats {
		monthRows = append(monthRows, []interface{}{m.Month, m.Year, m.EventCount, m.ParticipantCount})
	}
	if err := writeRows(f, monthlySheet, monthRows, header); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(monthlySheet, "A", "D", 16); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("erreur lors de l'écriture du classeur: %w", err)
	}
	return buf.Bytes(), nil
}

// writeRows écrit les lignes à partir de A1 et applique le style d'en-tête à la première
func writeRows(f *excelize.File, sheet string, rows [][]interface{}, headerStyle int) error {
	for idx, row := range rows {
		axis, err := excelize.CoordinatesToCellName(1, idx+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, axis, &row); err != nil {
			return fmt.Errorf("erreur lors de l'écriture de la feuille %s: %w", sheet, err)
		}
	}
	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, headerStyle)
}
