// Package mapview управляет состоянием карты: реестр слоёв, переключение
// «Мечта»/«Реальность», производные оверлеи и построение GeoJSON.
// Конкретная картографическая библиотека скрыта за интерфейсом MapHandle.
package mapview

import (
	"context"
	"errors"
	"image"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ErrMapUnavailable - карта не загружена или упала, операция не выполнена
var ErrMapUnavailable = errors.New("map is not available")

// LayerType - тип отрисовки слоя
type LayerType string

const (
	TypeCircle  LayerType = "circle"
	TypeLine    LayerType = "line"
	TypeSymbol  LayerType = "symbol"
	TypeHeatmap LayerType = "heatmap"
)

// SourceSpec - описание GeoJSON источника
type SourceSpec struct {
	ID             string
	Cluster        bool
	ClusterRadius  int
	ClusterMaxZoom int
	Data           *geojson.FeatureCollection
}

// LayerSpec - описание слоя поверх источника
type LayerSpec struct {
	ID     string
	Source string
	Type   LayerType
	// Filter - выражение фильтра в терминах библиотеки карты, например
	// ["has", "point_count"] для кластеров
	Filter []interface{}
	Paint  map[string]interface{}
	Layout map[string]interface{}
	// Visible - начальная видимость при создании
	Visible bool
}

// EventType - событие карты
type EventType string

const (
	EventLoad  EventType = "load"
	EventError EventType = "error"
	EventClick EventType = "click"
)

// Event - событие карты. Для click заполнены LayerID и Feature
type Event struct {
	Type    EventType
	LayerID string
	Feature *geojson.Feature
	LngLat  orb.Point
	Err     error
}

// EventHandler - обработчик события
type EventHandler func(Event)

// MapHandle - тонкий адаптер над экземпляром карты. Один экземпляр делят
// менеджер слоёв, оверлеи и экспорт, поэтому вызывающий код проверяет
// существование источников и слоёв перед изменением.
type MapHandle interface {
	Loaded() bool

	HasSource(id string) bool
	AddSource(src SourceSpec) error
	SetSourceData(id string, fc *geojson.FeatureCollection) error
	RemoveSource(id string) error

	HasLayer(id string) bool
	AddLayer(layer LayerSpec) error
	RemoveLayer(id string) error
	SetVisibility(layerID string, visible bool) error
	SetPaintProperty(layerID, name string, value interface{}) error

	// ClusterExpansionZoom - зум, на котором кластер распадается (считает движок кластеризации)
	ClusterExpansionZoom(sourceID string, clusterID int64) (float64, error)
	EaseTo(center orb.Point, zoom float64) error

	// On подписывает обработчик. Для click layerID ограничивает слой, пустая строка - любой
	On(event EventType, layerID string, handler EventHandler) (unsubscribe func())

	CaptureCanvas(ctx context.Context, width, height int) (image.Image, error)
}
