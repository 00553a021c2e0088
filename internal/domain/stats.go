package domain

import "time"

// PlatformStats - агрегированная статистика платформы
type PlatformStats struct {
	TotalDreams        int             `json:"total_dreams"`
	ActiveStations     int             `json:"active_stations"`
	CommunitiesForming int             `json:"communities_forming"`
	LastUpdated        time.Time       `json:"last_updated"`
	RecentActivity     []ActivityPoint `json:"recent_activity"`
}

// ActivityPoint - количество новых мечт за день
type ActivityPoint struct {
	Date   time.Time `json:"date" db:"day"`
	Dreams int       `json:"dreams" db:"dreams"`
}
