// Package client - Go SDK для API платформы: вызовы сервера и клиентское
// состояние (поиск станций, оптимистичные мечты, статистика, аналитика).
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain"
	"github.com/giovanto/pyjama-party-platform-sub000/pkg/mapview"
)

const (
	defaultTimeout = 15 * time.Second
	maxErrorBody   = 16 << 10

	// placeLayerLimit - сколько точек интереса грузить в слой мечт
	placeLayerLimit = 500
)

// Client - HTTP клиент API
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option настраивает Client
type Option func(*Client)

// WithHTTPClient подменяет http.Client (тесты, прокси)
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithLogger задает логгер
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New создает клиент для baseURL вида https://pajamaparty.eu
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StationQuery - параметры автодополнения
type StationQuery struct {
	Query   string
	Country string
	Limit   int
}

// DreamPayload - тело POST /api/dreams
type DreamPayload struct {
	DreamerName        string   `json:"dreamer_name"`
	OriginStation      string   `json:"origin_station"`
	OriginCountry      *string  `json:"origin_country,omitempty"`
	OriginLat          *float64 `json:"origin_lat,omitempty"`
	OriginLng          *float64 `json:"origin_lng,omitempty"`
	DestinationCity    string   `json:"destination_city"`
	DestinationCountry *string  `json:"destination_country,omitempty"`
	DestinationLat     *float64 `json:"destination_lat,omitempty"`
	DestinationLng     *float64 `json:"destination_lng,omitempty"`
	Email              string   `json:"email,omitempty"`
	JoinPajamaParty    bool     `json:"join_pajama_party"`
}

// SubmitResult - ответ на отправку мечты
type SubmitResult struct {
	Success          bool         `json:"success"`
	Dream            domain.Dream `json:"dream"`
	CommunityMessage *string      `json:"community_message"`
}

// DreamPage - страница мечт
type DreamPage struct {
	Dreams []domain.Dream `json:"dreams"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// RealityMap - слой «Реальность»
type RealityMap struct {
	Stations *geojson.FeatureCollection `json:"stations"`
	Routes   *geojson.FeatureCollection `json:"routes"`
	Source   string                     `json:"source,omitempty"`
}

// Event - событие аналитики
type Event struct {
	EventType  string                 `json:"event_type"`
	SessionID  string                 `json:"session_id,omitempty"`
	Properties map[string]interface{} `json:"properties,omitempty"`
	Consent    bool                   `json:"consent"`
}

// SearchStations - GET /api/stations/search.
// Сервер может вернуть {stations: [...]} или голый массив.
func (c *Client) SearchStations(ctx context.Context, q StationQuery) ([]domain.Station, error) {
	params := url.Values{"q": {q.Query}}
	if q.Country != "" {
		params.Set("country", q.Country)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/stations/search", params, nil, &raw); err != nil {
		return nil, err
	}

	return decodeStations(raw)
}

func decodeStations(raw json.RawMessage) ([]domain.Station, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []domain.Station{}, nil
	}

	var stations []domain.Station
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &stations); err != nil {
			return nil, fmt.Errorf("decode stations: %w", err)
		}
	} else {
		var wrapped struct {
			Stations []domain.Station `json:"stations"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, fmt.Errorf("decode stations: %w", err)
		}
		stations = wrapped.Stations
	}

	if stations == nil {
		stations = []domain.Station{}
	}
	return stations, nil
}

// SearchPlaces - GET /api/places/search
func (c *Client) SearchPlaces(ctx context.Context, query, category string, limit int) ([]domain.Place, error) {
	params := url.Values{}
	if query != "" {
		params.Set("q", query)
	}
	if category != "" {
		params.Set("category", category)
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var resp struct {
		Places []domain.Place `json:"places"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/places/search", params, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Places, nil
}

// CreateDream - POST /api/dreams
func (c *Client) CreateDream(ctx context.Context, payload DreamPayload) (*SubmitResult, error) {
	var result SubmitResult
	if err := c.do(ctx, http.MethodPost, "/api/dreams", nil, payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListDreams - GET /api/dreams
func (c *Client) ListDreams(ctx context.Context, limit, offset int) (*DreamPage, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		params.Set("offset", strconv.Itoa(offset))
	}

	var page DreamPage
	if err := c.do(ctx, http.MethodGet, "/api/dreams", params, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Stats - GET /api/stats
func (c *Client) Stats(ctx context.Context) (*domain.PlatformStats, error) {
	var stats domain.PlatformStats
	if err := c.do(ctx, http.MethodGet, "/api/stats", nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Reality - GET /api/reality/map, при ошибке статический /reality-network.geojson
func (c *Client) Reality(ctx context.Context) (*RealityMap, error) {
	var m RealityMap
	err := c.do(ctx, http.MethodGet, "/api/reality/map", nil, nil, &m)
	if err == nil && m.Stations != nil && m.Routes != nil {
		return &m, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	c.logger.Warn("Reality map unavailable, trying static file", zap.Error(err))

	var fallback RealityMap
	if ferr := c.do(ctx, http.MethodGet, "/reality-network.geojson", nil, nil, &fallback); ferr != nil {
		if err == nil {
			err = ferr
		}
		return nil, err
	}
	if fallback.Stations == nil || fallback.Routes == nil {
		return nil, &ServerError{Status: http.StatusOK, Message: "reality network payload is incomplete"}
	}
	return &fallback, nil
}

// TrackEvent - POST /api/analytics/events без проверки согласия; см. Analytics
func (c *Client) TrackEvent(ctx context.Context, event Event) error {
	return c.do(ctx, http.MethodPost, "/api/analytics/events", nil, event, nil)
}

// Advocacy - GET /api/analytics/advocacy
func (c *Client) Advocacy(ctx context.Context, limit int) (*domain.AdvocacySummary, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var summary domain.AdvocacySummary
	if err := c.do(ctx, http.MethodGet, "/api/analytics/advocacy", params, nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// DreamFeatures - слой мечт (точки и линии маршрутов)
func (c *Client) DreamFeatures(ctx context.Context) (*geojson.FeatureCollection, error) {
	fc := geojson.NewFeatureCollection()
	if err := c.do(ctx, http.MethodGet, "/api/dreams/geojson", nil, nil, fc); err != nil {
		return nil, err
	}
	return fc, nil
}

// PlaceFeatures - точки интереса слоя мечт
func (c *Client) PlaceFeatures(ctx context.Context) (*geojson.FeatureCollection, error) {
	places, err := c.SearchPlaces(ctx, "", "", placeLayerLimit)
	if err != nil {
		return nil, err
	}
	return mapview.PlaceFeatures(places), nil
}

// RealityFeatures - станции и маршруты слоя «Реальность»
func (c *Client) RealityFeatures(ctx context.Context) (stations, routes *geojson.FeatureCollection, err error) {
	m, err := c.Reality(ctx)
	if err != nil {
		return nil, nil, err
	}
	return m.Stations, m.Routes, nil
}

var _ mapview.FeatureSource = (*Client)(nil)

// do выполняет запрос. Отмена контекста возвращается как есть, без обертки
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		c.logger.Warn("Request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return &TransportError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		serverErr := decodeServerError(resp.StatusCode, data)
		c.logger.Debug("Server returned error",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("code", serverErr.Code))
		return serverErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &TransportError{Op: "decode " + path, Err: err}
	}
	return nil
}
