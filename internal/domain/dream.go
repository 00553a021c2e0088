package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DreamRetention - срок хранения мечты (политика конфиденциальности: 30 дней)
	DreamRetention = 30 * 24 * time.Hour

	// CommunityThreshold - сколько мечт с одной станции отправления образуют сообщество
	CommunityThreshold = 2

	// TempDreamIDPrefix - префикс временных ID оптимистичных записей на клиенте
	TempDreamIDPrefix = "temp-"
)

// Dream - мечта о ночном поезде, отправленная через форму
type Dream struct {
	ID                 string    `json:"id" db:"id"`
	DreamerName        string    `json:"dreamer_name" db:"dreamer_name"`
	OriginStation      string    `json:"origin_station" db:"origin_station"`
	OriginCountry      *string   `json:"origin_country,omitempty" db:"origin_country"`
	OriginLat          *float64  `json:"origin_lat,omitempty" db:"origin_lat"`
	OriginLng          *float64  `json:"origin_lng,omitempty" db:"origin_lng"`
	DestinationCity    string    `json:"destination_city" db:"destination_city"`
	DestinationCountry *string   `json:"destination_country,omitempty" db:"destination_country"`
	DestinationLat     *float64  `json:"destination_lat,omitempty" db:"destination_lat"`
	DestinationLng     *float64  `json:"destination_lng,omitempty" db:"destination_lng"`
	Email              *string   `json:"email,omitempty" db:"email"`
	EmailVerified      bool      `json:"email_verified" db:"email_verified"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	ExpiresAt          time.Time `json:"expires_at" db:"expires_at"`
}

// HasOriginCoordinates - есть ли координаты станции отправления
func (d *Dream) HasOriginCoordinates() bool {
	return d.OriginLat != nil && d.OriginLng != nil
}

// HasDestinationCoordinates - есть ли координаты пункта назначения
func (d *Dream) HasDestinationCoordinates() bool {
	return d.DestinationLat != nil && d.DestinationLng != nil
}

// IsOptimistic - запись создана на клиенте и ещё не подтверждена сервером
func (d *Dream) IsOptimistic() bool {
	return strings.HasPrefix(d.ID, TempDreamIDPrefix)
}

// Public возвращает копию без персональных данных для публичных списков
func (d Dream) Public() Dream {
	d.Email = nil
	return d
}

// StampCreated проставляет время создания и срок истечения
func (d *Dream) StampCreated(now time.Time) {
	d.CreatedAt = now.UTC()
	d.ExpiresAt = d.CreatedAt.Add(DreamRetention)
}

// IsCommunityForming - образует ли указанное число мечт сообщество
func IsCommunityForming(count int) bool {
	return count >= CommunityThreshold
}

// CommunityMessage формирует сообщение для станции, где формируется сообщество.
// Пустая строка, если порог не достигнут.
func CommunityMessage(station string, count int) string {
	if !IsCommunityForming(count) {
		return ""
	}
	return fmt.Sprintf(
		"A community is forming at %s! %d dreamers want night trains from here. Join them for a pajama party.",
		station, count,
	)
}
