package dto

import "strings"

// StationSearchRequest - автодополнение станций
type StationSearchRequest struct {
	Query   string `query:"q" json:"q"`
	Country string `query:"country" json:"country" validate:"omitempty,len=2,alpha"`
	Limit   int    `query:"limit" json:"limit" validate:"omitempty,min=1,max=50"`
}

// PlaceSearchRequest - поиск точек интереса для слоя мечт
type PlaceSearchRequest struct {
	Query    string `query:"q" json:"q"`
	Category string `query:"category" json:"category" validate:"omitempty,max=50"`
	Limit    int    `query:"limit" json:"limit" validate:"omitempty,min=1,max=500"`
}

// ListDreamsRequest - страница мечт
type ListDreamsRequest struct {
	Limit  int `query:"limit" json:"limit" validate:"omitempty,min=1,max=500"`
	Offset int `query:"offset" json:"offset" validate:"omitempty,min=0"`
}

// DreamRequest - тело POST /api/dreams.
// Принимает оба варианта имён полей: snake_case и старые from/to/dreamerName.
type DreamRequest struct {
	DreamerName        string   `json:"dreamer_name"`
	DreamerNameAlt     string   `json:"dreamerName"`
	OriginStation      string   `json:"origin_station"`
	From               string   `json:"from"`
	OriginCountry      *string  `json:"origin_country,omitempty"`
	OriginLat          *float64 `json:"origin_lat,omitempty"`
	OriginLng          *float64 `json:"origin_lng,omitempty"`
	DestinationCity    string   `json:"destination_city"`
	To                 string   `json:"to"`
	DestinationCountry *string  `json:"destination_country,omitempty"`
	DestinationLat     *float64 `json:"destination_lat,omitempty"`
	DestinationLng     *float64 `json:"destination_lng,omitempty"`
	Email              string   `json:"email,omitempty"`
	JoinPajamaParty    bool     `json:"join_pajama_party"`
	JoinPajamaPartyAlt bool     `json:"joinPajamaParty"`
}

// CreateDreamInput - нормализованная мечта для валидации и сохранения
type CreateDreamInput struct {
	DreamerName        string   `json:"dreamer_name" validate:"required,max=100"`
	OriginStation      string   `json:"origin_station" validate:"required,max=100"`
	OriginCountry      *string  `json:"origin_country" validate:"omitempty,max=100"`
	OriginLat          *float64 `json:"origin_lat" validate:"omitempty,min=-90,max=90"`
	OriginLng          *float64 `json:"origin_lng" validate:"omitempty,min=-180,max=180"`
	DestinationCity    string   `json:"destination_city" validate:"required,max=100"`
	DestinationCountry *string  `json:"destination_country" validate:"omitempty,max=100"`
	DestinationLat     *float64 `json:"destination_lat" validate:"omitempty,min=-90,max=90"`
	DestinationLng     *float64 `json:"destination_lng" validate:"omitempty,min=-180,max=180"`
	Email              string   `json:"email" validate:"required_if=JoinPajamaParty true,omitempty,email,max=254"`
	JoinPajamaParty    bool     `json:"join_pajama_party"`
}

// Normalize сводит оба варианта имён к одному и обрезает пробелы.
// snake_case имеет приоритет.
func (r DreamRequest) Normalize() CreateDreamInput {
	return CreateDreamInput{
		DreamerName:        firstNonEmpty(r.DreamerName, r.DreamerNameAlt),
		OriginStation:      firstNonEmpty(r.OriginStation, r.From),
		OriginCountry:      trimPtr(r.OriginCountry),
		OriginLat:          r.OriginLat,
		OriginLng:          r.OriginLng,
		DestinationCity:    firstNonEmpty(r.DestinationCity, r.To),
		DestinationCountry: trimPtr(r.DestinationCountry),
		DestinationLat:     r.DestinationLat,
		DestinationLng:     r.DestinationLng,
		Email:              strings.TrimSpace(r.Email),
		JoinPajamaParty:    r.JoinPajamaParty || r.JoinPajamaPartyAlt,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// CriticalMassRequest - станции с готовностью к вечеринке
type CriticalMassRequest struct {
	Limit int `query:"limit" json:"limit" validate:"omitempty,min=1,max=1000"`
}

// HeatmapRequest - параметры тепловой карты
type HeatmapRequest struct {
	Samples int `query:"samples" json:"samples" validate:"omitempty,min=2,max=100"`
}

// AnalyticsEventRequest - событие телеметрии. Без consent=true событие отбрасывается
type AnalyticsEventRequest struct {
	EventType  string                 `json:"event_type" validate:"required,max=64"`
	SessionID  string                 `json:"session_id" validate:"omitempty,max=128"`
	Properties map[string]interface{} `json:"properties,omitempty"`
	Consent    bool                   `json:"consent"`
}

// AdvocacyRequest - параметры сводки для кампании
type AdvocacyRequest struct {
	Limit int `query:"limit" json:"limit" validate:"omitempty,min=1,max=100"`
}

// ExportMapRequest - картинка карты для соцсетей
type ExportMapRequest struct {
	Lat      float64 `query:"lat" json:"lat" validate:"min=-90,max=90"`
	Lng      float64 `query:"lng" json:"lng" validate:"min=-180,max=180"`
	Zoom     float64 `query:"zoom" json:"zoom" validate:"min=0,max=22"`
	Width    int     `query:"width" json:"width" validate:"omitempty,min=1"`
	Height   int     `query:"height" json:"height" validate:"omitempty,min=1"`
	Title    string  `query:"title" json:"title" validate:"omitempty,max=120"`
	Subtitle string  `query:"subtitle" json:"subtitle" validate:"omitempty,max=200"`
	Style    string  `query:"style" json:"style" validate:"omitempty,max=100"`
}

// ShareLinksRequest - ссылки «поделиться»
type ShareLinksRequest struct {
	URL  string `query:"url" json:"url" validate:"omitempty,url"`
	Text string `query:"text" json:"text" validate:"omitempty,max=280"`
}
