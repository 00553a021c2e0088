package testhelpers

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain/repository"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/repository/postgres"
)

// NewDBForTest creates a postgres.DB with test database and logger
func NewDBForTest(db *sqlx.DB, logger *zap.Logger) *postgres.DB {
	return postgres.NewDBForTest(db, logger)
}

// NewDreamRepositoryForTest creates a dream repository with test database and logger
func NewDreamRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.DreamRepository {
	return postgres.NewDreamRepository(NewDBForTest(db, logger))
}

// NewStationRepositoryForTest creates a station repository with test database and logger
func NewStationRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.StationRepository {
	return postgres.NewStationRepository(NewDBForTest(db, logger))
}

// NewPlaceRepositoryForTest creates a place repository with test database and logger
func NewPlaceRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.PlaceRepository {
	return postgres.NewPlaceRepository(NewDBForTest(db, logger))
}

// NewStatsRepositoryForTest creates a stats repository with test database and logger
func NewStatsRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.StatsRepository {
	return postgres.NewStatsRepository(NewDBForTest(db, logger))
}

// NewRealityRepositoryForTest creates a reality network repository with test database and logger
func NewRealityRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.RealityRepository {
	return postgres.NewRealityRepository(NewDBForTest(db, logger))
}

// NewAnalyticsRepositoryForTest creates an analytics repository with test database and logger
func NewAnalyticsRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.AnalyticsRepository {
	return postgres.NewAnalyticsRepository(NewDBForTest(db, logger))
}
