package dto

import (
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain"
	"github.com/giovanto/pyjama-party-platform-sub000/pkg/mapview"
	"github.com/giovanto/pyjama-party-platform-sub000/pkg/share"
)

// StationSearchResponse - ответ автодополнения
type StationSearchResponse struct {
	Stations []domain.Station `json:"stations"`
}

// PlaceSearchResponse - точки интереса
type PlaceSearchResponse struct {
	Places []domain.Place `json:"places"`
}

// CreateDreamResponse - ответ на отправку мечты.
// community_message равен null, пока на станции меньше двух мечт.
type CreateDreamResponse struct {
	Success          bool         `json:"success"`
	Dream            domain.Dream `json:"dream"`
	CommunityMessage *string      `json:"community_message"`
}

// DreamListResponse - страница мечт
type DreamListResponse struct {
	Dreams []domain.Dream `json:"dreams"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// Источник данных слоя «Реальность»
const (
	RealitySourceDatabase = "database"
	RealitySourceFallback = "fallback"
)

// RealityMapResponse - станции и маршруты ночных поездов как GeoJSON
type RealityMapResponse struct {
	Stations *geojson.FeatureCollection `json:"stations"`
	Routes   *geojson.FeatureCollection `json:"routes"`
	Source   string                     `json:"source,omitempty"`
}

// CriticalMassResponse - готовность станций
type CriticalMassResponse struct {
	Stations []domain.CriticalMassEntry `json:"stations"`
	Total    int                        `json:"total"`
}

// HeatmapResponse - облако точек тепловой карты
type HeatmapResponse struct {
	Points []mapview.HeatPoint `json:"points"`
	Count  int                 `json:"count"`
	Routes int                 `json:"routes"`
}

// AnalyticsEventResponse - событие принято
type AnalyticsEventResponse struct {
	Accepted bool   `json:"accepted"`
	ID       string `json:"id,omitempty"`
}

// ShareLinksResponse - ссылки «поделиться»
type ShareLinksResponse struct {
	URL   string      `json:"url"`
	Text  string      `json:"text"`
	Links share.Links `json:"links"`
}

// HealthResponse - состояние сервиса
type HealthResponse struct {
	Status   string            `json:"status"`
	Time     time.Time         `json:"time"`
	Services map[string]string `json:"services,omitempty"`
}
