package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain/repository"
)

type realityRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewRealityRepository(db *DB) repository.RealityRepository {
	return &realityRepository{
		db:     db.DB,
		logger: db.logger,
	}
}

type realityStationRow struct {
	domain.RealityStation
	Operators pq.StringArray `db:"operators"`
}

type realityRouteRow struct {
	domain.RealityRoute
	Path []byte `db:"path"`
}

func (r *realityRepository) GetNetwork(ctx context.Context) (*domain.RealityNetwork, error) {
	stations, err := r.getStations(ctx)
	if err != nil {
		r.logger.Error("Failed to load reality stations", zap.Error(err))
		return nil, err
	}

	routes, err := r.getRoutes(ctx)
	if err != nil {
		r.logger.Error("Failed to load reality routes", zap.Error(err))
		return nil, err
	}

	return &domain.RealityNetwork{
		Stations: stations,
		Routes:   routes,
	}, nil
}

func (r *realityRepository) getStations(ctx context.Context) ([]domain.RealityStation, error) {
	query := `
		SELECT
			s.id, s.name, s.country, s.lat, s.lng,
			COUNT(rt.id) AS route_count,
			COALESCE(
				ARRAY_AGG(DISTINCT rt.operator) FILTER (WHERE rt.operator IS NOT NULL),
				'{}'
			) AS operators
		FROM reality_stations s
		LEFT JOIN reality_routes rt
			ON rt.from_station = s.id OR rt.to_station = s.id
		GROUP BY s.id, s.name, s.country, s.lat, s.lng
		ORDER BY s.name`

	var rows []realityStationRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("query reality stations: %w", err)
	}

	stations := make([]domain.RealityStation, len(rows))
	for i, row := range rows {
		stations[i] = row.RealityStation
		stations[i].Operators = []string(row.Operators)
		if stations[i].Operators == nil {
			stations[i].Operators = []string{}
		}
	}

	return stations, nil
}

func (r *realityRepository) getRoutes(ctx context.Context) ([]domain.RealityRoute, error) {
	query := `
		SELECT id, name, operator, from_station, to_station, frequency, path, active_from
		FROM reality_routes
		ORDER BY name`

	var rows []realityRouteRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("query reality routes: %w", err)
	}

	routes := make([]domain.RealityRoute, len(rows))
	for i, row := range rows {
		routes[i] = row.RealityRoute
		if len(row.Path) > 0 {
			if err := json.Unmarshal(row.Path, &routes[i].Path); err != nil {
				r.logger.Warn("Failed to unmarshal route path",
					zap.String("route_id", row.ID),
					zap.Error(err))
			}
		}
	}

	return routes, nil
}
