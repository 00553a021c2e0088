package mapbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/giovanto/pyjama-party-platform-sub000/internal/config"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain"
	"github.com/giovanto/pyjama-party-platform-sub000/internal/domain/repository"
)

// Ограничения Static Images API
const (
	MaxStaticSize  = 1280
	MinStaticSize  = 1
	maxErrorBody   = 4 << 10
	maxImageBytes  = 20 << 20
	defaultTimeout = 15 * time.Second
)

type client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
	style       string
	logger      *zap.Logger
}

// NewMapboxClient создает новый клиент для Mapbox API
func NewMapboxClient(cfg *config.MapboxConfig, logger *zap.Logger) repository.MapboxRepository {
	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		accessToken: cfg.AccessToken,
		style:       cfg.Style,
		logger:      logger,
	}
}

type apiError struct {
	Message string `json:"message"`
}

// StaticImage возвращает PNG снимок карты через Static Images API
func (c *client) StaticImage(ctx context.Context, req domain.StaticMapRequest) ([]byte, error) {
	if c.accessToken == "" {
		return nil, fmt.Errorf("mapbox access token is not configured")
	}
	if req.Width < MinStaticSize || req.Width > MaxStaticSize || req.Height < MinStaticSize || req.Height > MaxStaticSize {
		return nil, fmt.Errorf("static image size %dx%d is out of range 1..%d", req.Width, req.Height, MaxStaticSize)
	}

	style := req.Style
	if style == "" {
		style = c.style
	}

	size := fmt.Sprintf("%dx%d", req.Width, req.Height)
	if req.Retina {
		size += "@2x"
	}

	// /styles/v1/{username}/{style_id}/static/{lon},{lat},{zoom}/{width}x{height}
	endpoint := fmt.Sprintf("%s/styles/v1/%s/static/%.5f,%.5f,%.2f/%s?%s",
		c.baseURL,
		style,
		req.Lng,
		req.Lat,
		req.Zoom,
		size,
		url.Values{
			"access_token": {c.accessToken},
			"attribution":  {"false"},
			"logo":         {"false"},
		}.Encode(),
	)

	c.logger.Debug("Calling Mapbox Static Images API",
		zap.String("style", style),
		zap.Float64("lat", req.Lat),
		zap.Float64("lng", req.Lng),
		zap.Float64("zoom", req.Zoom),
		zap.String("size", size))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		c.logger.Error("Failed to create request", zap.Error(err))
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("Failed to execute request", zap.Error(err))
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			body = []byte(apiErr.Message)
		}
		c.logger.Error("Mapbox API returned error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(body)))
		return nil, fmt.Errorf("mapbox API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		return nil, fmt.Errorf("mapbox API returned unexpected content type %q", ct)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		c.logger.Error("Failed to read image", zap.Error(err))
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	c.logger.Debug("Mapbox Static Images API call successful", zap.Int("bytes", len(data)))

	return data, nil
}
