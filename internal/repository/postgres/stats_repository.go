package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain/repository"
)

type statsRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewStatsRepository создает новый экземпляр stats repository
func NewStatsRepository(db *DB) repository.StatsRepository {
	return &statsRepository{
		db:     db.DB,
		logger: db.logger,
	}
}

// GetPlatformStats возвращает агрегированную статистику по мечтам
func (r *statsRepository) GetPlatformStats(ctx context.Context, activityDays int) (*domain.PlatformStats, error) {
	if activityDays <= 0 {
		activityDays = 14
	}

	stats := &domain.PlatformStats{
		LastUpdated: time.Now().UTC(),
	}

	// Общие счётчики одним запросом
	var totals struct {
		TotalDreams        int `db:"total_dreams"`
		ActiveStations     int `db:"active_stations"`
		CommunitiesForming int `db:"communities_forming"`
	}
	query := `
		WITH per_station AS (
			SELECT origin_station, COUNT(*) AS cnt
			FROM dreams
			GROUP BY origin_station
		)
		SELECT
			COALESCE(SUM(cnt), 0) AS total_dreams,
			COUNT(*) AS active_stations,
			COUNT(*) FILTER (WHERE cnt >= $1) AS communities_forming
		FROM per_station`

	if err := r.db.GetContext(ctx, &totals, query, domain.CommunityThreshold); err != nil {
		r.logger.Error("failed to get dream totals", zap.Error(err))
		return nil, fmt.Errorf("get dream totals: %w", err)
	}
	stats.TotalDreams = totals.TotalDreams
	stats.ActiveStations = totals.ActiveStations
	stats.CommunitiesForming = totals.CommunitiesForming

	activity, err := r.getRecentActivity(ctx, activityDays)
	if err != nil {
		r.logger.Error("failed to get recent activity", zap.Error(err))
		return nil, fmt.Errorf("get recent activity: %w", err)
	}
	stats.RecentActivity = activity

	return stats, nil
}

// getRecentActivity возвращает количество новых мечт по дням, включая дни без мечт
func (r *statsRepository) getRecentActivity(ctx context.Context, days int) ([]domain.ActivityPoint, error) {
	query := `
		SELECT
			g.day AT TIME ZONE 'UTC' AS day,
			COUNT(d.id) AS dreams
		FROM generate_series(
			date_trunc('day', NOW() AT TIME ZONE 'UTC') - ($1::int - 1) * INTERVAL '1 day',
			date_trunc('day', NOW() AT TIME ZONE 'UTC'),
			INTERVAL '1 day'
		) AS g(day)
		LEFT JOIN dreams d
			ON date_trunc('day', d.created_at AT TIME ZONE 'UTC') = g.day
		GROUP BY g.day
		ORDER BY g.day`

	points := make([]domain.ActivityPoint, 0, days)
	if err := r.db.SelectContext(ctx, &points, query, days); err != nil {
		return nil, fmt.Errorf("query recent activity: %w", err)
	}

	return points, nil
}
