package domain

// Station - станция из справочника (только чтение)
type Station struct {
	ID          string  `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	City        string  `json:"city" db:"city"`
	Country     string  `json:"country" db:"country"`
	CountryName string  `json:"country_name" db:"country_name"`
	Lat         float64 `json:"lat" db:"lat"`
	Lng         float64 `json:"lng" db:"lng"`
	StationType string  `json:"station_type" db:"station_type"`
}

// Place - подобранная вручную точка интереса для слоя мечт
type Place struct {
	ID          string  `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Description string  `json:"description" db:"description"`
	Category    string  `json:"category" db:"category"`
	City        string  `json:"city" db:"city"`
	Country     string  `json:"country" db:"country"`
	Lat         float64 `json:"lat" db:"lat"`
	Lng         float64 `json:"lng" db:"lng"`
	ImageURL    *string `json:"image_url,omitempty" db:"image_url"`
}

// StationDreamCount - сколько мечт начинается на станции
type StationDreamCount struct {
	Station string   `json:"station" db:"origin_station"`
	Lat     *float64 `json:"lat,omitempty" db:"lat"`
	Lng     *float64 `json:"lng,omitempty" db:"lng"`
	Count   int      `json:"count" db:"dream_count"`
}
