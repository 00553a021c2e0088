package domain

import "time"

// Stream names
const (
	StreamDreamSubmitted   = "stream:dreams:submitted"
	StreamCommunityForming = "stream:community:forming"
)

// DreamSubmittedEvent - публикуется после сохранения мечты
type DreamSubmittedEvent struct {
	DreamID         string    `json:"dream_id"`
	OriginStation   string    `json:"origin_station"`
	DestinationCity string    `json:"destination_city"`
	HasCoordinates  bool      `json:"has_coordinates"`
	SubmittedAt     time.Time `json:"submitted_at"`
}

// CommunityFormingEvent - на станции впервые набралось сообщество
type CommunityFormingEvent struct {
	Station    string    `json:"station"`
	DreamCount int       `json:"dream_count"`
	DetectedAt time.Time `json:"detected_at"`
}

// StreamMessage - сообщение из Redis Stream
type StreamMessage struct {
	ID   string
	Data string
}
