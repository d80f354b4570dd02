package models

// MonthCount est un compteur d'événements pour un mois calendaire
type MonthCount struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Count int `json:"count"`
}

// GlobalStats représente le tableau de bord admin
type GlobalStats struct {
	TotalEvents       int          `json:"totalEvents"`
	TotalParticipants int          `json:"totalParticipants"`
	PresenceRate      float64      `json:"presenceRate"`
	EventsThisMonth   int          `json:"eventsThisMonth"`
	EventsByMonth     []MonthCount `json:"eventsByMonth"`
}

// EventStats est un événement enrichi de ses compteurs de participation
type EventStats struct {
	EventWithCreator
	ParticipantCount int     `json:"participant_count"`
	PresentCount     int     `json:"present_count"`
	PresenceRate     float64 `json:"presence_rate"`
}

// MonthlyActivity est un point de la série des 12 derniers mois
type MonthlyActivity struct {
	Month            string `json:"month"`
	Year             int    `json:"year"`
	MonthNumber      int    `json:"month_number"`
	EventCount       int    `json:"event_count"`
	ParticipantCount int    `json:"participant_count"`
}

// ParticipationStats représente les statistiques détaillées de participation
type ParticipationStats struct {
	Events               []EventStats      `json:"events"`
	PresenceCount        int               `json:"presence_count"`
	AbsenceCount         int               `json:"absence_count"`
	ParticipantRoleCount int               `json:"participant_role_count"`
	OrganizerRoleCount   int               `json:"organizer_role_count"`
	MonthlyStats         []MonthlyActivity `json:"monthly_stats"`
}

// UserMonthlyStat est un point de la série mensuelle d'un utilisateur
type UserMonthlyStat struct {
	Month       string `json:"month"`
	Year        int    `json:"year"`
	MonthNumber int    `json:"month_number"`
	Present     int    `json:"present"`
	Absent      int    `json:"absent"`
	Total       int    `json:"total"`
}

// MonthlyPresenceRow est le résultat brut de l'agrégation par mois d'un utilisateur
type MonthlyPresenceRow struct {
	Year    int `bson:"year"`
	Month   int `bson:"month"`
	Present int `bson:"present"`
	Absent  int `bson:"absent"`
}
