package services

import (
	"math"
	"time"

	"ensaj-backend/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// trailingMonths est la taille des séries mensuelles glissantes
const trailingMonths = 12

// Périodes acceptées par la série mensuelle d'un utilisateur
const (
	PeriodAll      = "all"
	PeriodQuarter  = "quarter"
	PeriodSemester = "semester"
	PeriodYear     = "year"
)

// MonthLabeler produit le libellé d'un mois ("janv. 2025", "Jan 2025")
type MonthLabeler func(year int, month time.Month) string

// PresenceRate retourne le pourcentage de présents arrondi à une décimale, 0 si total est nul
func PresenceRate(present, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(1000*float64(present)/float64(total)) / 10
}

// month identifie un mois calendaire
type month struct {
	year  int
	month time.Month
}

func monthOf(t time.Time, loc *time.Location) month {
	t = t.In(loc)
	return month{year: t.Year(), month: t.Month()}
}

func (m month) add(n int) month {
	t := time.Date(m.year, m.month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	return month{year: t.Year(), month: t.Month()}
}

func (m month) before(o month) bool {
	return m.year < o.year || (m.year == o.year && m.month < o.month)
}

// trailing retourne les n mois se terminant au mois de now, par ordre croissant
func trailing(now time.Time, n int) []month {
	current := monthOf(now, now.Location())
	out := make([]month, n)
	for i := 0; i < n; i++ {
		out[i] = current.add(i - n + 1)
	}
	return out
}

// ComputeGlobalStats calcule le tableau de bord admin à partir d'un instant de référence
func ComputeGlobalStats(events []models.Event, parts []models.Participation, now time.Time) models.GlobalStats {
	loc := now.Location()
	current := monthOf(now, loc)

	perMonth := make(map[month]int)
	thisMonth := 0
	for _, e := range events {
		m := monthOf(e.DateEvent, loc)
		perMonth[m]++
		if m == current {
			thisMonth++
		}
	}

	participants := make(map[primitive.ObjectID]struct{})
	present := 0
	for _, p := range parts {
		participants[p.UserID] = struct{}{}
		if p.StatutPresence == models.PresencePresent {
			present++
		}
	}

	byMonth := make([]models.MonthCount, 0, trailingMonths)
	for _, m := range trailing(now, trailingMonths) {
		byMonth = append(byMonth, models.MonthCount{Year: m.year, Month: int(m.month), Count: perMonth[m]})
	}

	return models.GlobalStats{
		TotalEvents:       len(events),
		TotalParticipants: len(participants),
		PresenceRate:      PresenceRate(present, len(parts)),
		EventsThisMonth:   thisMonth,
		EventsByMonth:     byMonth,
	}
}

// ComputeParticipationStats calcule les statistiques détaillées de participation.
// Les participations dont l'événement n'existe plus sont ignorées.
func ComputeParticipationStats(events []models.EventWithCreator, parts []models.Participation, now time.Time, label MonthLabeler) models.ParticipationStats {
	loc := now.Location()

	type counter struct{ total, present int }
	perEvent := make(map[primitive.ObjectID]*counter, len(events))
	eventMonth := make(map[primitive.ObjectID]month, len(events))
	eventsPerMonth := make(map[month]int)
	for _, e := range events {
		perEvent[e.ID] = &counter{}
		m := monthOf(e.DateEvent, loc)
		eventMonth[e.ID] = m
		eventsPerMonth[m]++
	}

	stats := models.ParticipationStats{}
	participantsPerMonth := make(map[month]int)
	for _, p := range parts {
		c, ok := perEvent[p.EventID]
		if !ok {
			continue
		}
		c.total++
		if p.StatutPresence == models.PresencePresent {
			c.present++
			stats.PresenceCount++
		} else {
			stats.AbsenceCount++
		}
		if p.Role != nil {
			switch *p.Role {
			case models.RoleParticipant:
				stats.ParticipantRoleCount++
			case models.RoleOrganisateur:
				stats.OrganizerRoleCount++
			}
		}
		participantsPerMonth[eventMonth[p.EventID]]++
	}

	stats.Events = make([]models.EventStats, 0, len(events))
	for _, e := range events {
		c := perEvent[e.ID]
		stats.Events = append(stats.Events, models.EventStats{
			EventWithCreator: e,
			ParticipantCount: c.total,
			PresentCount:     c.present,
			PresenceRate:     PresenceRate(c.present, c.total),
		})
	}

	stats.MonthlyStats = make([]models.MonthlyActivity, 0, trailingMonths)
	for _, m := range trailing(now, trailingMonths) {
		stats.MonthlyStats = append(stats.MonthlyStats, models.MonthlyActivity{
			Month:            label(m.year, m.month),
			Year:             m.year,
			MonthNumber:      int(m.month),
			EventCount:       eventsPerMonth[m],
			ParticipantCount: participantsPerMonth[m],
		})
	}

	return stats
}

// PeriodStart retourne la borne basse d'une période, nil pour "all".
// Une période vide ou inconnue vaut "all".
func PeriodStart(period string, now time.Time) *time.Time {
	var since time.Time
	switch period {
	case PeriodQuarter:
		since = now.AddDate(0, -3, 0)
	case PeriodSemester:
		since = now.AddDate(0, -6, 0)
	case PeriodYear:
		since = now.AddDate(-1, 0, 0)
	default:
		return nil
	}
	return &since
}

// DenseUserMonthly complète les lignes agrégées en une série continue de mois.
// La série commence au mois de since (ou au premier mois avec données si since est nil)
// et s'arrête au plus tard du mois courant et du dernier mois avec données.
func DenseUserMonthly(rows []models.MonthlyPresenceRow, since *time.Time, now time.Time, label MonthLabeler) []models.UserMonthlyStat {
	loc := now.Location()
	byMonth := make(map[month]models.MonthlyPresenceRow, len(rows))
	var first, last month
	for i, r := range rows {
		m := month{year: r.Year, month: time.Month(r.Month)}
		byMonth[m] = r
		if i == 0 || m.before(first) {
			first = m
		}
		if i == 0 || last.before(m) {
			last = m
		}
	}

	var start month
	switch {
	case since != nil:
		start = monthOf(*since, loc)
	case len(rows) > 0:
		start = first
	default:
		return []models.UserMonthlyStat{}
	}

	end := monthOf(now, loc)
	if len(rows) > 0 && end.before(last) {
		end = last
	}

	out := []models.UserMonthlyStat{}
	for m := start; !end.before(m); m = m.add(1) {
		r := byMonth[m]
		out = append(out, models.UserMonthlyStat{
			Month:       label(m.year, m.month),
			Year:        m.year,
			MonthNumber: int(m.month),
			Present:     r.Present,
			Absent:      r.Absent,
			Total:       r.Present + r.Absent,
		})
	}
	return out
}
