package domain

import "time"

// AnalyticsEvent - событие телеметрии (только с согласия пользователя)
type AnalyticsEvent struct {
	ID         string                 `json:"id" db:"id"`
	EventType  string                 `json:"event_type" db:"event_type"`
	SessionID  string                 `json:"session_id,omitempty" db:"session_id"`
	Properties map[string]interface{} `json:"properties,omitempty" db:"-"`
	CreatedAt  time.Time              `json:"created_at" db:"created_at"`
}

// RankedItem - элемент рейтинга
type RankedItem struct {
	Name  string `json:"name" db:"name"`
	Count int    `json:"count" db:"count"`
}

// Corridor - пара станция отправления → пункт назначения
type Corridor struct {
	From  string `json:"from" db:"origin_station"`
	To    string `json:"to" db:"destination_city"`
	Count int    `json:"count" db:"count"`
}

// AdvocacySummary - сводка для политической кампании
type AdvocacySummary struct {
	TopOrigins      []RankedItem   `json:"top_origins"`
	TopDestinations []RankedItem   `json:"top_destinations"`
	TopCorridors    []Corridor     `json:"top_corridors"`
	EventCounts     map[string]int `json:"event_counts"`
	GeneratedAt     time.Time      `json:"generated_at"`
}
