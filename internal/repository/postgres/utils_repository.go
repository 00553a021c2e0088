package postgres

import "strings"

// Лимиты запросов
const (
	// DefaultQueryLimit - лимит по умолчанию для запросов
	DefaultQueryLimit = 50
	// MaxQueryLimit - максимальный лимит для запросов
	MaxQueryLimit = 500
	// MaxStationCounts - сколько станций отдаём в агрегатах (critical mass, heatmap)
	MaxStationCounts = 1000
)

// coordinatesPageSize - размер страницы при выборке мечт для карты
var coordinatesPageSize = 1000

// clampLimit приводит лимит к диапазону [1, MaxQueryLimit]
func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultQueryLimit
	case limit > MaxQueryLimit:
		return MaxQueryLimit
	default:
		return limit
	}
}

// escapeLike экранирует спецсимволы шаблона LIKE
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
