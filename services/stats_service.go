package services

import (
	"context"
	"time"

	"ensaj-backend/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StatsService expose les agrégations en lecture seule
type StatsService struct {
	events         EventStore
	participations ParticipationStore
	photos         PhotoStore
}

// NewStatsService crée une nouvelle instance de StatsService
func NewStatsService(events EventStore, participations ParticipationStore, photos PhotoStore) *StatsService {
	return &StatsService{events: events, participations: participations, photos: photos}
}

// Global retourne le tableau de bord admin
func (s *StatsService) Global(ctx context.Context, now time.Time) (*models.GlobalStats, error) {
	events, err := s.events.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	parts, err := s.participations.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := ComputeGlobalStats(events, parts, now)
	return &stats, nil
}

// Participation retourne les statistiques détaillées de participation
func (s *StatsService) Participation(ctx context.Context, now time.Time, label MonthLabeler) (*models.ParticipationStats, error) {
	events, err := s.events.FindAllWithCreator(ctx)
	if err != nil {
		return nil, err
	}
	parts, err := s.participations.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	for i := range events {
		events[i].PhotoURL = s.photos.URL(events[i].Photo)
	}

	stats := ComputeParticipationStats(events, parts, now, label)
	return &stats, nil
}

// UserMonthly retourne la série mensuelle présent/absent d'un utilisateur
func (s *StatsService) UserMonthly(ctx context.Context, userID primitive.ObjectID, period string, now time.Time, label MonthLabeler) ([]models.UserMonthlyStat, error) {
	since := PeriodStart(period, now)
	rows, err := s.participations.MonthlyPresenceByUser(ctx, userID, since, now.Location())
	if err != nil {
		return nil, err
	}

	return DenseUserMonthly(rows, since, now, label), nil
}
