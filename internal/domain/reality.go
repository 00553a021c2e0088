package domain

// RealityStation - станция, через которую уже ходят ночные поезда
type RealityStation struct {
	ID        string   `json:"id" db:"id"`
	Name      string   `json:"name" db:"name"`
	Country   string   `json:"country" db:"country"`
	Lat       float64  `json:"lat" db:"lat"`
	Lng       float64  `json:"lng" db:"lng"`
	Operators []string `json:"operators" db:"-"`
	Routes    int      `json:"routes" db:"route_count"`
}

// RealityRoute - действующий маршрут ночного поезда
type RealityRoute struct {
	ID         string       `json:"id" db:"id"`
	Name       string       `json:"name" db:"name"`
	Operator   string       `json:"operator" db:"operator"`
	From       string       `json:"from" db:"from_station"`
	To         string       `json:"to" db:"to_station"`
	Frequency  string       `json:"frequency" db:"frequency"`
	Path       [][2]float64 `json:"path" db:"-"` // [lng, lat]
	ActiveFrom *string      `json:"active_from,omitempty" db:"active_from"`
}

// RealityNetwork - инфраструктура слоя «Реальность»
type RealityNetwork struct {
	Stations []RealityStation `json:"stations"`
	Routes   []RealityRoute   `json:"routes"`
}
