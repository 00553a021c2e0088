package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain/repository"
)

type dreamRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewDreamRepository(db *DB) repository.DreamRepository {
	return &dreamRepository{
		db:     db.DB,
		logger: db.logger,
	}
}

const dreamColumns = `
	id, dreamer_name, origin_station, origin_country, origin_lat, origin_lng,
	destination_city, destination_country, destination_lat, destination_lng,
	email, email_verified, created_at, expires_at`

func (r *dreamRepository) Create(ctx context.Context, dream *domain.Dream) error {
	query := `
		INSERT INTO dreams (` + dreamColumns + `)
		VALUES (
			:id, :dreamer_name, :origin_station, :origin_country, :origin_lat, :origin_lng,
			:destination_city, :destination_country, :destination_lat, :destination_lng,
			:email, :email_verified, :created_at, :expires_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, dream); err != nil {
		r.logger.Error("Failed to insert dream",
			zap.String("id", dream.ID),
			zap.String("origin_station", dream.OriginStation),
			zap.Error(err))
		return fmt.Errorf("insert dream: %w", err)
	}

	return nil
}

func (r *dreamRepository) List(ctx context.Context, limit, offset int) ([]domain.Dream, int, error) {
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM dreams`); err != nil {
		r.logger.Error("Failed to count dreams", zap.Error(err))
		return nil, 0, fmt.Errorf("count dreams: %w", err)
	}

	query := `SELECT ` + dreamColumns + `
		FROM dreams
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2`

	dreams := make([]domain.Dream, 0)
	if err := r.db.SelectContext(ctx, &dreams, query, clampLimit(limit), offset); err != nil {
		r.logger.Error("Failed to list dreams",
			zap.Int("limit", limit),
			zap.Int("offset", offset),
			zap.Error(err))
		return nil, 0, fmt.Errorf("list dreams: %w", err)
	}

	return dreams, total, nil
}

func (r *dreamRepository) CountByOriginStation(ctx context.Context, station string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM dreams WHERE origin_station = $1`, station)
	if err != nil {
		r.logger.Error("Failed to count dreams by origin", zap.String("station", station), zap.Error(err))
		return 0, fmt.Errorf("count dreams by origin: %w", err)
	}
	return count, nil
}

// ListWithCoordinates читает страницами по (created_at, id), пока не наберёт limit
// или не кончатся строки. Каждая мечта с координатами попадает ровно один раз.
func (r *dreamRepository) ListWithCoordinates(ctx context.Context, limit int) ([]domain.Dream, error) {
	firstPage := `SELECT ` + dreamColumns + `
		FROM dreams
		WHERE origin_lat IS NOT NULL AND origin_lng IS NOT NULL
		ORDER BY created_at DESC, id DESC
		LIMIT $1`
	nextPage := `SELECT ` + dreamColumns + `
		FROM dreams
		WHERE origin_lat IS NOT NULL AND origin_lng IS NOT NULL
			AND (created_at, id) < ($1, $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3`

	dreams := make([]domain.Dream, 0)
	for {
		page := coordinatesPageSize
		if limit > 0 && limit-len(dreams) < page {
			page = limit - len(dreams)
		}
		if page <= 0 {
			break
		}

		batch := make([]domain.Dream, 0, page)
		var err error
		if len(dreams) == 0 {
			err = r.db.SelectContext(ctx, &batch, firstPage, page)
		} else {
			last := dreams[len(dreams)-1]
			err = r.db.SelectContext(ctx, &batch, nextPage, last.CreatedAt, last.ID, page)
		}
		if err != nil {
			r.logger.Error("Failed to list dreams with coordinates",
				zap.Int("loaded", len(dreams)),
				zap.Error(err))
			return nil, fmt.Errorf("list dreams with coordinates: %w", err)
		}

		dreams = append(dreams, batch...)
		if len(batch) < page {
			break
		}
	}

	return dreams, nil
}

func (r *dreamRepository) OriginStationCounts(ctx context.Context, limit int) ([]domain.StationDreamCount, error) {
	if limit <= 0 || limit > MaxStationCounts {
		limit = MaxStationCounts
	}

	// Координаты станции: из мечт, а если их там нет - из справочника
	query := `
		WITH counts AS (
			SELECT origin_station, AVG(origin_lat) AS lat, AVG(origin_lng) AS lng, COUNT(*) AS dream_count
			FROM dreams
			GROUP BY origin_station
		)
		SELECT
			c.origin_station,
			COALESCE(c.lat, s.lat) AS lat,
			COALESCE(c.lng, s.lng) AS lng,
			c.dream_count
		FROM counts c
		LEFT JOIN LATERAL (
			SELECT lat, lng FROM stations WHERE name = c.origin_station LIMIT 1
		) s ON TRUE
		ORDER BY c.dream_count DESC, c.origin_station
		LIMIT $1`

	counts := make([]domain.StationDreamCount, 0)
	if err := r.db.SelectContext(ctx, &counts, query, limit); err != nil {
		r.logger.Error("Failed to aggregate origin station counts", zap.Error(err))
		return nil, fmt.Errorf("origin station counts: %w", err)
	}

	return counts, nil
}
