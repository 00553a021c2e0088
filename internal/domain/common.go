package domain

type Point struct {
	Lat float64 `json:"lat" db:"lat"`
	Lng float64 `json:"lng" db:"lng"`
}

// LngLat возвращает координаты в порядке GeoJSON
func (p Point) LngLat() [2]float64 {
	return [2]float64{p.Lng, p.Lat}
}

type BoundingBox struct {
	MinLat float64 `json:"min_lat" db:"min_lat"`
	MinLng float64 `json:"min_lng" db:"min_lng"`
	MaxLat float64 `json:"max_lat" db:"max_lat"`
	MaxLng float64 `json:"max_lng" db:"max_lng"`
}

// Contains проверяет, попадает ли точка в прямоугольник
func (b BoundingBox) Contains(p Point) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat && p.Lng >= b.MinLng && p.Lng <= b.MaxLng
}
