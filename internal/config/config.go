package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// App holds the runtime configuration loaded from environment variables.
type App struct {
	Env               string        `yaml:"env"`
	HTTPPort          string        `yaml:"http_port"`
	APIBaseURL        string        `yaml:"api_base_url"`
	PublicHost        string        `yaml:"public_host"`
	StreamPort        string        `yaml:"stream_port"`
	RefreshInterval   time.Duration `yaml:"refresh_interval"`
	CountdownInterval time.Duration `yaml:"countdown_interval"`
	ImagesPerPage     int           `yaml:"images_per_page"`
	RecentLimit       int           `yaml:"recent_limit"`
	UnauthorizedHours int           `yaml:"unauthorized_hours"`
	HourlyHours       int           `yaml:"hourly_hours"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
	AutoRefresh       bool          `yaml:"auto_refresh"`
	DisplayTZ         string        `yaml:"display_tz"`
	Workers           int           `yaml:"workers"`
	RateLimitPerMin   int           `yaml:"rate_limit_per_min"`
	RateLimitBackend  string        `yaml:"rate_limit_backend"`
	RedisAddr         string        `yaml:"redis_addr"`
	ServiceJWTKey     string        `yaml:"service_jwt_key"`
	ServiceJWTIssuer  string        `yaml:"service_jwt_issuer"`
	ServiceJWTTTL     time.Duration `yaml:"service_jwt_ttl"`
}

// Defaults returns the configuration used when nothing is overridden.
func Defaults() App {
	return App{
		Env:               "dev",
		HTTPPort:          "8080",
		APIBaseURL:        "http://localhost:5000",
		StreamPort:        "5001",
		RefreshInterval:   10 * time.Second,
		CountdownInterval: time.Second,
		ImagesPerPage:     20,
		RecentLimit:       50,
		UnauthorizedHours: 24,
		HourlyHours:       24,
		RequestTimeout:    15 * time.Second,
		AutoRefresh:       true,
		DisplayTZ:         "Local",
		Workers:           4,
		RateLimitPerMin:   120,
		RateLimitBackend:  "memory",
		RedisAddr:         "localhost:6379",
		ServiceJWTIssuer:  "access-dashboard",
		ServiceJWTTTL:     5 * time.Minute,
	}
}

// Load returns application config: defaults, then the YAML file named by
// DASHBOARD_CONFIG (if any), then environment variables.
func Load() (App, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (App, error) {
	cfg := Defaults()
	if path := getenv("DASHBOARD_CONFIG"); path != "" {
		if err := overlayFile(&cfg, path); err != nil {
			return App{}, err
		}
	}

	e := env{get: getenv}
	cfg.Env = e.str("APP_ENV", cfg.Env)
	cfg.HTTPPort = e.str("HTTP_PORT", cfg.HTTPPort)
	cfg.APIBaseURL = e.str("API_BASE_URL", cfg.APIBaseURL)
	cfg.PublicHost = e.str("PUBLIC_HOST", cfg.PublicHost)
	cfg.StreamPort = e.str("STREAM_PORT", cfg.StreamPort)
	cfg.RefreshInterval = e.duration("REFRESH_INTERVAL", cfg.RefreshInterval)
	cfg.CountdownInterval = e.duration("COUNTDOWN_INTERVAL", cfg.CountdownInterval)
	cfg.ImagesPerPage = e.integer("IMAGES_PER_PAGE", cfg.ImagesPerPage)
	cfg.RecentLimit = e.integer("RECENT_LIMIT", cfg.RecentLimit)
	cfg.UnauthorizedHours = e.integer("UNAUTHORIZED_HOURS", cfg.UnauthorizedHours)
	cfg.HourlyHours = e.integer("HOURLY_HOURS", cfg.HourlyHours)
	cfg.RequestTimeout = e.duration("REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.AutoRefresh = e.boolean("AUTO_REFRESH", cfg.AutoRefresh)
	cfg.DisplayTZ = e.str("DISPLAY_TZ", cfg.DisplayTZ)
	cfg.Workers = e.integer("WORKERS", cfg.Workers)
	cfg.RateLimitPerMin = e.integer("RATE_LIMIT_PER_MIN", cfg.RateLimitPerMin)
	cfg.RateLimitBackend = e.str("RATE_LIMIT_BACKEND", cfg.RateLimitBackend)
	cfg.RedisAddr = e.str("REDIS_ADDR", cfg.RedisAddr)
	cfg.ServiceJWTKey = e.str("SERVICE_JWT_KEY", cfg.ServiceJWTKey)
	cfg.ServiceJWTIssuer = e.str("SERVICE_JWT_ISSUER", cfg.ServiceJWTIssuer)
	cfg.ServiceJWTTTL = e.duration("SERVICE_JWT_TTL", cfg.ServiceJWTTTL)

	if err := cfg.Validate(); err != nil {
		return App{}, err
	}
	return cfg, nil
}

// Validate rejects settings the dashboard cannot run with.
func (a App) Validate() error {
	if a.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL must not be empty")
	}
	if a.RefreshInterval < a.CountdownInterval || a.CountdownInterval <= 0 {
		return fmt.Errorf("refresh interval %s must be at least the countdown interval %s", a.RefreshInterval, a.CountdownInterval)
	}
	if a.ImagesPerPage <= 0 {
		return fmt.Errorf("IMAGES_PER_PAGE must be positive, got %d", a.ImagesPerPage)
	}
	switch a.RateLimitBackend {
	case "memory":
	case "redis":
		if a.RedisAddr == "" {
			return fmt.Errorf("RATE_LIMIT_BACKEND=redis requires REDIS_ADDR")
		}
	default:
		return fmt.Errorf("unknown RATE_LIMIT_BACKEND %q", a.RateLimitBackend)
	}
	if a.Workers <= 0 {
		return fmt.Errorf("WORKERS must be positive, got %d", a.Workers)
	}
	return nil
}

// Location resolves DisplayTZ, falling back to the local zone.
func (a App) Location() *time.Location {
	if a.DisplayTZ == "" || a.DisplayTZ == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(a.DisplayTZ)
	if err != nil {
		log.Printf("invalid DISPLAY_TZ %q: %v, using local time", a.DisplayTZ, err)
		return time.Local
	}
	return loc
}

func overlayFile(cfg *App, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	// yaml.v3 decodes "10s" style strings into time.Duration fields.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

type env struct {
	get func(string) string
}

func (e env) str(key, fallback string) string {
	if val := e.get(key); val != "" {
		return val
	}
	return fallback
}

func (e env) duration(key string, fallback time.Duration) time.Duration {
	if val := e.get(key); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using fallback %s", key, err, fallback)
			return fallback
		}
		return d
	}
	return fallback
}

func (e env) boolean(key string, fallback bool) bool {
	if val := e.get(key); val != "" {
		if val == "1" || val == "true" || val == "TRUE" {
			return true
		}
		if val == "0" || val == "false" || val == "FALSE" {
			return false
		}
		log.Printf("invalid bool for %s, using fallback %v", key, fallback)
	}
	return fallback
}

func (e env) integer(key string, fallback int) int {
	if val := e.get(key); val != "" {
		var parsed int
		if _, err := fmt.Sscanf(val, "%d", &parsed); err == nil {
			return parsed
		}
		log.Printf("invalid int for %s, using fallback %d", key, fallback)
	}
	return fallback
}
