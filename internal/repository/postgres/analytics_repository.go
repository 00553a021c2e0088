package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain/repository"
)

type analyticsRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewAnalyticsRepository(db *DB) repository.AnalyticsRepository {
	return &analyticsRepository{
		db:     db.DB,
		logger: db.logger,
	}
}

func (r *analyticsRepository) SaveEvent(ctx context.Context, event *domain.AnalyticsEvent) error {
	props := event.Properties
	if props == nil {
		props = map[string]interface{}{}
	}
	propsJSON, err := json.Marshal(props)
	if err != nil {
		return fmt.Errorf("marshal event properties: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO analytics_events (id, event_type, session_id, properties, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		event.ID, event.EventType, event.SessionID, string(propsJSON), event.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to save analytics event",
			zap.String("event_type", event.EventType),
			zap.Error(err))
		return fmt.Errorf("insert analytics event: %w", err)
	}

	return nil
}

func (r *analyticsRepository) GetAdvocacySummary(ctx context.Context, limit int) (*domain.AdvocacySummary, error) {
	if limit <= 0 || limit > MaxQueryLimit {
		limit = 10
	}

	summary := &domain.AdvocacySummary{
		TopOrigins:      make([]domain.RankedItem, 0),
		TopDestinations: make([]domain.RankedItem, 0),
		TopCorridors:    make([]domain.Corridor, 0),
		EventCounts:     make(map[string]int),
		GeneratedAt:     time.Now().UTC(),
	}

	err := r.db.SelectContext(ctx, &summary.TopOrigins, `
		SELECT origin_station AS name, COUNT(*) AS count
		FROM dreams
		GROUP BY origin_station
		ORDER BY count DESC, name
		LIMIT $1`, limit)
	if err != nil {
		r.logger.Error("Failed to get top origins", zap.Error(err))
		return nil, fmt.Errorf("top origins: %w", err)
	}

	err = r.db.SelectContext(ctx, &summary.TopDestinations, `
		SELECT destination_city AS name, COUNT(*) AS count
		FROM dreams
		GROUP BY destination_city
		ORDER BY count DESC, name
		LIMIT $1`, limit)
	if err != nil {
		r.logger.Error("Failed to get top destinations", zap.Error(err))
		return nil, fmt.Errorf("top destinations: %w", err)
	}

	err = r.db.SelectContext(ctx, &summary.TopCorridors, `
		SELECT origin_station, destination_city, COUNT(*) AS count
		FROM dreams
		GROUP BY origin_station, destination_city
		ORDER BY count DESC, origin_station, destination_city
		LIMIT $1`, limit)
	if err != nil {
		r.logger.Error("Failed to get top corridors", zap.Error(err))
		return nil, fmt.Errorf("top corridors: %w", err)
	}

	var eventCounts []domain.RankedItem
	err = r.db.SelectContext(ctx, &eventCounts, `
		SELECT event_type AS name, COUNT(*) AS count
		FROM analytics_events
		GROUP BY event_type`)
	if err != nil {
		r.logger.Error("Failed to get event counts", zap.Error(err))
		return nil, fmt.Errorf("event counts: %w", err)
	}
	for _, ec := range eventCounts {
		summary.EventCounts[ec.Name] = ec.Count
	}

	return summary, nil
}
