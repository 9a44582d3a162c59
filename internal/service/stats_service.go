package service

import (
	"context"

	"github.com/rs/zerolog"

	"lumiere/internal/domain"
	"lumiere/internal/models"
)

// Stats is the admin overview snapshot.
type Stats struct {
	TotalReservations int            `json:"total_reservations"`
	ByStatus          map[string]int `json:"by_status"`
	TodayConfirmed    int            `json:"today_confirmed"`
	TotalTables       int            `json:"total_tables"`
	ActiveLocks       int            `json:"active_locks"`
}

// AgentDashboard is the working view for front-of-house staff.
type AgentDashboard struct {
	Date           string                `json:"date"`
	TodayConfirmed []*models.Reservation `json:"today_confirmed"`
	LiveHolds      []*models.Reservation `json:"live_holds"`
	UpcomingWeek   []*models.Reservation `json:"upcoming_week"`
}

type StatsService struct {
	store  domain.Store
	locker domain.Locker
	clock  domain.Clock
	logger *zerolog.Logger
}

func NewStatsService(store domain.Store, locker domain.Locker, clock domain.Clock, logger *zerolog.Logger) *StatsService {
	return &StatsService{store: store, locker: locker, clock: clock, logger: logger}
}

func (s *StatsService) Overview(ctx context.Context) (*Stats, error) {
	total, err := s.store.CountReservations(ctx)
	if err != nil {
		return nil, err
	}

	byStatus := make(map[string]int, len(models.ValidStatuses))
	for _, status := range models.ValidStatuses {
		n, err := s.store.CountReservationsByStatus(ctx, status)
		if err != nil {
			return nil, err
		}
		byStatus[status] = n
	}

	today := s.clock.Now().Format("2006-01-02")
	todayConfirmed, err := s.store.CountReservationsOnDate(ctx, today, models.StatusConfirmed)
	if err != nil {
		return nil, err
	}

	tables, err := s.store.CountTables(ctx)
	if err != nil {
		return nil, err
	}

	return &Stats{
		TotalReservations: total,
		ByStatus:          byStatus,
		TodayConfirmed:    todayConfirmed,
		TotalTables:       tables,
		ActiveLocks:       s.locker.Held(),
	}, nil
}

func (s *StatsService) Dashboard(ctx context.Context) (*AgentDashboard, error) {
	now := s.clock.Now()
	today := now.Format("2006-01-02")
	weekEnd := now.AddDate(0, 0, 7).Format("2006-01-02")

	todayConfirmed, err := s.store.ConfirmedOnDate(ctx, today)
	if err != nil {
		return nil, err
	}
	liveHolds, err := s.store.LiveHoldsOnDate(ctx, today, now)
	if err != nil {
		return nil, err
	}
	upcoming, err := s.store.ConfirmedOnDateRange(ctx, today, weekEnd)
	if err != nil {
		return nil, err
	}

	return &AgentDashboard{
		Date:           today,
		TodayConfirmed: todayConfirmed,
		LiveHolds:      liveHolds,
		UpcomingWeek:   upcoming,
	}, nil
}
