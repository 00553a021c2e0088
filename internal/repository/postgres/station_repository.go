package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain/repository"
)

type stationRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewStationRepository(db *DB) repository.StationRepository {
	return &stationRepository{
		db:     db.DB,
		logger: db.logger,
	}
}

// Search - совпадения с начала названия идут раньше совпадений в середине названия или города
func (r *stationRepository) Search(ctx context.Context, query, country string, limit int) ([]domain.Station, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	prefix := escapeLike(q) + "%"
	contains := "%" + escapeLike(q) + "%"

	sqlQuery := `
		SELECT id, name, city, country, country_name, lat, lng, station_type
		FROM stations
		WHERE (LOWER(name) LIKE $1 OR LOWER(city) LIKE $1)`
	args := []interface{}{contains}
	argIdx := 2

	if country != "" {
		sqlQuery += fmt.Sprintf(" AND country = $%d", argIdx)
		args = append(args, strings.ToUpper(country))
		argIdx++
	}

	sqlQuery += fmt.Sprintf(`
		ORDER BY CASE WHEN LOWER(name) LIKE $%d THEN 0 ELSE 1 END, name
		LIMIT $%d`, argIdx, argIdx+1)
	args = append(args, prefix, clampLimit(limit))

	stations := make([]domain.Station, 0)
	if err := r.db.SelectContext(ctx, &stations, sqlQuery, args...); err != nil {
		r.logger.Error("Failed to search stations",
			zap.String("query", q),
			zap.String("country", country),
			zap.Error(err))
		return nil, fmt.Errorf("search stations: %w", err)
	}

	return stations, nil
}

func (r *stationRepository) FindByName(ctx context.Context, name string) (*domain.Station, error) {
	var station domain.Station
	err := r.db.GetContext(ctx, &station, `
		SELECT id, name, city, country, country_name, lat, lng, station_type
		FROM stations
		WHERE name = $1
		ORDER BY id
		LIMIT 1`, name)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to find station", zap.String("name", name), zap.Error(err))
		return nil, fmt.Errorf("find station by name: %w", err)
	}

	return &station, nil
}

type placeRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewPlaceRepository(db *DB) repository.PlaceRepository {
	return &placeRepository{
		db:     db.DB,
		logger: db.logger,
	}
}

func (r *placeRepository) Search(ctx context.Context, query, category string, limit int) ([]domain.Place, error) {
	sqlQuery := `
		SELECT id, name, description, category, city, country, lat, lng, image_url
		FROM places
		WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if q := strings.ToLower(strings.TrimSpace(query)); q != "" {
		sqlQuery += fmt.Sprintf(
			" AND (LOWER(name) LIKE $%d OR LOWER(city) LIKE $%d OR LOWER(description) LIKE $%d)",
			argIdx, argIdx, argIdx)
		args = append(args, "%"+escapeLike(q)+"%")
		argIdx++
	}

	if category != "" {
		sqlQuery += fmt.Sprintf(" AND category = $%d", argIdx)
		args = append(args, category)
		argIdx++
	}

	sqlQuery += fmt.Sprintf(" ORDER BY name LIMIT $%d", argIdx)
	args = append(args, clampLimit(limit))

	places := make([]domain.Place, 0)
	if err := r.db.SelectContext(ctx, &places, sqlQuery, args...); err != nil {
		r.logger.Error("Failed to search places", zap.String("query", query), zap.Error(err))
		return nil, fmt.Errorf("search places: %w", err)
	}

	return places, nil
}
