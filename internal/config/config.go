package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	Cache     CacheConfig
	Limiter   LimiterConfig
	Search    SearchConfig
	Places    PlacesConfig
	Inventory InventoryConfig
	Push      PushConfig
	Metrics   MetricsConfig
	Log       LogConfig
}

type ServerConfig struct {
	Host string
	Port int
	Env  string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	// Enabled выключает персистентность целиком; кеш и лимитер
	// остаются in-memory
	Enabled bool
}

// CacheConfig - параметры географического кеша. Порог и TTL зависят от
// класса устройства: на мобильных пользователь перемещается плотнее.
type CacheConfig struct {
	MobileThresholdMeters  float64
	MobileExpiry           time.Duration
	DesktopThresholdMeters float64
	DesktopExpiry          time.Duration
	MobileProfile          bool
	CleanupInterval        time.Duration
	SnapshotTTL            time.Duration
}

type LimiterConfig struct {
	PerMinute int
	PerDay    int
}

type SearchConfig struct {
	MinInterval          time.Duration
	MoveThresholdMeters  float64
	RequestTimeout       time.Duration
	DefaultCenterLat     float64
	DefaultCenterLng     float64
	DefaultZoom          int
	Keyword              string
}

type PlacesConfig struct {
	BaseURL        string
	APIKey         string
	RequestTimeout time.Duration
}

type InventoryConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
}

type PushConfig struct {
	URL            string
	PingInterval   time.Duration
	ReconnectDelay time.Duration
}

type MetricsConfig struct {
	Enabled bool
	Addr    string
}

type LogConfig struct {
	Level string
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	// .env опционален: в контейнере всё приходит из переменных окружения
	_ = viper.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Host: viper.GetString("API_HOST"),
			Port: viper.GetInt("API_PORT"),
			Env:  viper.GetString("API_ENV"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
			Enabled:  viper.GetBool("REDIS_ENABLED"),
		},
		Cache: CacheConfig{
			MobileThresholdMeters:  viper.GetFloat64("CACHE_MOBILE_THRESHOLD_M"),
			MobileExpiry:           time.Duration(viper.GetInt("CACHE_MOBILE_EXPIRY_SEC")) * time.Second,
			DesktopThresholdMeters: viper.GetFloat64("CACHE_DESKTOP_THRESHOLD_M"),
			DesktopExpiry:          time.Duration(viper.GetInt("CACHE_DESKTOP_EXPIRY_SEC")) * time.Second,
			MobileProfile:          viper.GetBool("CACHE_MOBILE_PROFILE"),
			CleanupInterval:        time.Duration(viper.GetInt("CACHE_CLEANUP_INTERVAL_SEC")) * time.Second,
			SnapshotTTL:            time.Duration(viper.GetInt("CACHE_SNAPSHOT_TTL_SEC")) * time.Second,
		},
		Limiter: LimiterConfig{
			PerMinute: viper.GetInt("LIMITER_PER_MINUTE"),
			PerDay:    viper.GetInt("LIMITER_PER_DAY"),
		},
		Search: SearchConfig{
			MinInterval:         time.Duration(viper.GetInt("SEARCH_MIN_INTERVAL_MS")) * time.Millisecond,
			MoveThresholdMeters: viper.GetFloat64("SEARCH_MOVE_THRESHOLD_M"),
			RequestTimeout:      time.Duration(viper.GetInt("SEARCH_REQUEST_TIMEOUT_SEC")) * time.Second,
			DefaultCenterLat:    viper.GetFloat64("SEARCH_DEFAULT_CENTER_LAT"),
			DefaultCenterLng:    viper.GetFloat64("SEARCH_DEFAULT_CENTER_LNG"),
			DefaultZoom:         viper.GetInt("SEARCH_DEFAULT_ZOOM"),
			Keyword:             viper.GetString("SEARCH_KEYWORD"),
		},
		Places: PlacesConfig{
			BaseURL:        viper.GetString("PLACES_BASE_URL"),
			APIKey:         viper.GetString("PLACES_API_KEY"),
			RequestTimeout: time.Duration(viper.GetInt("PLACES_REQUEST_TIMEOUT")) * time.Second,
		},
		Inventory: InventoryConfig{
			BaseURL:        viper.GetString("INVENTORY_BASE_URL"),
			RequestTimeout: time.Duration(viper.GetInt("INVENTORY_REQUEST_TIMEOUT")) * time.Second,
		},
		Push: PushConfig{
			URL:            viper.GetString("PUSH_URL"),
			PingInterval:   time.Duration(viper.GetInt("PUSH_PING_INTERVAL_SEC")) * time.Second,
			ReconnectDelay: time.Duration(viper.GetInt("PUSH_RECONNECT_DELAY_MS")) * time.Millisecond,
		},
		Metrics: MetricsConfig{
			Enabled: viper.GetBool("METRICS_ENABLED"),
			Addr:    viper.GetString("METRICS_ADDR"),
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
	}

	applyDefaults(cfg)

	return cfg, nil
}

// applyDefaults - значения по умолчанию; пороги кеша и лимиты
// настраиваемые, а не высеченные в камне
func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Cache.MobileThresholdMeters == 0 {
		cfg.Cache.MobileThresholdMeters = 50
	}
	if cfg.Cache.MobileExpiry == 0 {
		cfg.Cache.MobileExpiry = 2 * time.Minute
	}
	if cfg.Cache.DesktopThresholdMeters == 0 {
		cfg.Cache.DesktopThresholdMeters = 150
	}
	if cfg.Cache.DesktopExpiry == 0 {
		cfg.Cache.DesktopExpiry = 5 * time.Minute
	}
	if cfg.Cache.CleanupInterval == 0 {
		cfg.Cache.CleanupInterval = 30 * time.Second
	}
	if cfg.Cache.SnapshotTTL == 0 {
		cfg.Cache.SnapshotTTL = 10 * time.Minute
	}
	if cfg.Limiter.PerMinute == 0 {
		cfg.Limiter.PerMinute = 10
	}
	if cfg.Limiter.PerDay == 0 {
		cfg.Limiter.PerDay = 200
	}
	if cfg.Search.MinInterval == 0 {
		cfg.Search.MinInterval = 2 * time.Second
	}
	if cfg.Search.MoveThresholdMeters == 0 {
		cfg.Search.MoveThresholdMeters = 30
	}
	if cfg.Search.RequestTimeout == 0 {
		cfg.Search.RequestTimeout = 10 * time.Second
	}
	if cfg.Search.DefaultCenterLat == 0 && cfg.Search.DefaultCenterLng == 0 {
		// Bogotá
		cfg.Search.DefaultCenterLat = 4.711
		cfg.Search.DefaultCenterLng = -74.0721
	}
	if cfg.Search.DefaultZoom == 0 {
		cfg.Search.DefaultZoom = 15
	}
	if cfg.Search.Keyword == "" {
		cfg.Search.Keyword = "parking"
	}
	if cfg.Places.BaseURL == "" {
		cfg.Places.BaseURL = "https://maps.googleapis.com/maps/api/place"
	}
	if cfg.Places.RequestTimeout == 0 {
		cfg.Places.RequestTimeout = 10 * time.Second
	}
	if cfg.Inventory.RequestTimeout == 0 {
		cfg.Inventory.RequestTimeout = 10 * time.Second
	}
	if cfg.Push.PingInterval == 0 {
		cfg.Push.PingInterval = 30 * time.Second
	}
	if cfg.Push.ReconnectDelay == 0 {
		cfg.Push.ReconnectDelay = time.Second
	}
	if cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = ":9091"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// DefaultCenter возвращает фолбэк-центр для невалидных координат
func (c *Config) DefaultCenter() (float64, float64) {
	return c.Search.DefaultCenterLat, c.Search.DefaultCenterLng
}
