package domain

// StaticMapRequest - параметры снимка карты для экспорта
type StaticMapRequest struct {
	Lat    float64
	Lng    float64
	Zoom   float64
	Width  int
	Height int
	Style  string // пустой - стиль из конфигурации
	Retina bool
}
