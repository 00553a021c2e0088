package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Log      LogConfig
	Worker   WorkerConfig
	Mapbox   MapboxConfig
	Reality  RealityConfig
	Export   ExportConfig
	CORS     CORSConfig
	Stats    StatsConfig
}

type ServerConfig struct {
	Host string
	Port int
	Env  string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CacheConfig struct {
	StationSearchTTL time.Duration
	StatsTTL         time.Duration
	TilesCacheTTL    time.Duration
}

type LogConfig struct {
	Level string
}

type WorkerConfig struct {
	Enabled           bool
	ConsumerGroup     string
	StreamReadTimeout time.Duration
	MaxRetries        int
}

type MapboxConfig struct {
	AccessToken    string
	PublicToken    string // токен для браузера (pk.*)
	BaseURL        string
	Style          string
	RequestTimeout int // seconds
}

type RealityConfig struct {
	FallbackPath string
}

type ExportConfig struct {
	Watermark    string
	Attribution  string
	MaxWidth     int
	MaxHeight    int
	ShareBaseURL string
	Hashtags     []string
}

type CORSConfig struct {
	AllowOrigins string
}

type StatsConfig struct {
	ActivityWindowDays int
}

func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile читает конфигурацию из env-файла и переменных окружения.
// Отсутствующий файл не считается ошибкой: в контейнере всё приходит из окружения.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("API_HOST"),
			Port: v.GetInt("API_PORT"),
			Env:  v.GetString("API_ENV"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			DBName:          v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxConns:        v.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(v.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Cache: CacheConfig{
			StationSearchTTL: time.Duration(v.GetInt("STATION_SEARCH_CACHE_TTL")) * time.Second,
			StatsTTL:         time.Duration(v.GetInt("STATS_CACHE_TTL")) * time.Second,
			TilesCacheTTL:    time.Duration(v.GetInt("TILES_CACHE_TTL")) * time.Second,
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Worker: WorkerConfig{
			Enabled:           v.GetBool("WORKER_ENABLED"),
			ConsumerGroup:     v.GetString("WORKER_CONSUMER_GROUP"),
			StreamReadTimeout: time.Duration(v.GetInt("WORKER_STREAM_READ_TIMEOUT")) * time.Millisecond,
			MaxRetries:        v.GetInt("WORKER_MAX_RETRIES"),
		},
		Mapbox: MapboxConfig{
			AccessToken:    v.GetString("MAPBOX_ACCESS_TOKEN"),
			PublicToken:    v.GetString("MAPBOX_PUBLIC_TOKEN"),
			BaseURL:        v.GetString("MAPBOX_BASE_URL"),
			Style:          v.GetString("MAPBOX_STYLE"),
			RequestTimeout: v.GetInt("MAPBOX_REQUEST_TIMEOUT"),
		},
		Reality: RealityConfig{
			FallbackPath: v.GetString("REALITY_FALLBACK_PATH"),
		},
		Export: ExportConfig{
			Watermark:    v.GetString("EXPORT_WATERMARK"),
			Attribution:  v.GetString("EXPORT_ATTRIBUTION"),
			MaxWidth:     v.GetInt("EXPORT_MAX_WIDTH"),
			MaxHeight:    v.GetInt("EXPORT_MAX_HEIGHT"),
			ShareBaseURL: v.GetString("SHARE_BASE_URL"),
			Hashtags:     parseList(v.GetString("SHARE_HASHTAGS")),
		},
		CORS: CORSConfig{
			AllowOrigins: v.GetString("CORS_ALLOW_ORIGINS"),
		},
		Stats: StatsConfig{
			ActivityWindowDays: v.GetInt("STATS_ACTIVITY_WINDOW_DAYS"),
		},
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("API_HOST", "0.0.0.0")
	v.SetDefault("API_PORT", 8080)
	v.SetDefault("API_ENV", "development")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "pajama_party")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", 1800)
	v.SetDefault("DB_CONN_MAX_IDLE_TIME", 300)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("STATION_SEARCH_CACHE_TTL", 300)
	v.SetDefault("STATS_CACHE_TTL", 60)
	v.SetDefault("TILES_CACHE_TTL", 3600)

	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("WORKER_CONSUMER_GROUP", "dream-community-workers")
	v.SetDefault("WORKER_STREAM_READ_TIMEOUT", 5000)
	v.SetDefault("WORKER_MAX_RETRIES", 3)

	v.SetDefault("MAPBOX_BASE_URL", "https://api.mapbox.com")
	v.SetDefault("MAPBOX_STYLE", "mapbox/dark-v11")
	v.SetDefault("MAPBOX_REQUEST_TIMEOUT", 15)

	v.SetDefault("REALITY_FALLBACK_PATH", "./static/reality-network.geojson")

	v.SetDefault("EXPORT_WATERMARK", "pajamaparty.eu")
	v.SetDefault("EXPORT_ATTRIBUTION", "© Mapbox © OpenStreetMap")
	v.SetDefault("EXPORT_MAX_WIDTH", 2400)
	v.SetDefault("EXPORT_MAX_HEIGHT", 2400)
	v.SetDefault("SHARE_BASE_URL", "https://pajamaparty.eu")
	v.SetDefault("SHARE_HASHTAGS", "PajamaParty,NightTrains")

	v.SetDefault("CORS_ALLOW_ORIGINS", "http://localhost:3000")

	v.SetDefault("STATS_ACTIVITY_WINDOW_DAYS", 14)
}

func parseList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
