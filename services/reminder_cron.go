package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ensaj-backend/models"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Fenêtre pendant laquelle un événement à venir déclenche un rappel
const reminderWindow = 24 * time.Hour

// Reminder envoie le rappel d'un événement à une liste d'utilisateurs
type Reminder interface {
	NotifyReminder(ctx context.Context, event models.Event, userIDs []primitive.ObjectID)
}

// ReminderCron envoie les rappels des événements des prochaines 24h
type ReminderCron struct {
	events         EventStore
	participations ParticipationStore
	reminder       Reminder
	cron           *cron.Cron
	now            func() time.Time
}

// NewReminderCron crée une nouvelle instance
func NewReminderCron(events EventStore, participations ParticipationStore, reminder Reminder, loc *time.Location) *ReminderCron {
	if loc == nil {
		loc = time.UTC
	}
	return &ReminderCron{
		events:         events,
		participations: participations,
		reminder:       reminder,
		cron:           cron.New(cron.WithLocation(loc)),
		now:            time.Now,
	}
}

// Start démarre le cron job selon la planification donnée
func (rc *ReminderCron) Start(schedule string) error {
	if _, err := rc.cron.AddFunc(schedule, func() { rc.Run(context.Background()) }); err != nil {
		return fmt.Errorf("planification de rappel invalide %q: %w", schedule, err)
	}
	rc.cron.Start()
	slog.Info("✓ Cron job rappels démarré", "schedule", schedule)
	return nil
}

// Stop arrête le cron job et attend la fin de l'exécution en cours
func (rc *ReminderCron) Stop() {
	<-rc.cron.Stop().Done()
}

// Run envoie les rappels dus et retourne le nombre d'événements traités
func (rc *ReminderCron) Run(ctx context.Context) int {
	now := rc.now()
	events, err := rc.events.FindToRemind(ctx, now, now.Add(reminderWindow))
	if err != nil {
		slog.Error("Erreur recherche événements à rappeler", "error", err)
		return 0
	}
	if len(events) == 0 {
		return 0
	}

	slog.Info("🔔 Événements à rappeler", "count", len(events))

	sent := 0
	for _, event := range events {
		userIDs, err := rc.participations.FindPresentUserIDs(ctx, event.ID)
		if err != nil {
			slog.Error("Erreur récupération des participants", "event_id", event.ID.Hex(), "error", err)
			continue
		}
		rc.reminder.NotifyReminder(ctx, event, userIDs)

		if err := rc.events.MarkReminderSent(ctx, event.ID); err != nil {
			slog.Error("Erreur marquage du rappel", "event_id", event.ID.Hex(), "error", err)
			continue
		}
		sent++
	}
	return sent
}
