package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/meltforce/mapty/internal/models"
)

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Store       StoreConfig       `yaml:"store"`
	Map         MapConfig         `yaml:"map"`
	Geolocation GeolocationConfig `yaml:"geolocation"`
	Form        FormConfig        `yaml:"form"`
	Auth        AuthConfig        `yaml:"auth"`
	Tailscale   TailscaleConfig   `yaml:"tailscale"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type StoreConfig struct {
	Driver         string `yaml:"driver"` // memory, sqlite or postgres
	Path           string `yaml:"path"`
	DSN            string `yaml:"dsn"`
	Key            string `yaml:"key"`
	MigrationsPath string `yaml:"migrations_path"`
}

type MapConfig struct {
	Zoom int `yaml:"zoom"`
}

// GeolocationConfig is the device position reported at startup. Leaving
// latitude and longitude unset simulates a denied position request.
type GeolocationConfig struct {
	Latitude  *float64      `yaml:"latitude"`
	Longitude *float64      `yaml:"longitude"`
	Delay     time.Duration `yaml:"delay"`
	Timeout   time.Duration `yaml:"timeout"`
}

type FormConfig struct {
	HideDelay time.Duration `yaml:"hide_delay"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// Position returns the configured device position, or nil when unset.
func (g GeolocationConfig) Position() *models.Coordinates {
	if g.Latitude == nil || g.Longitude == nil {
		return nil
	}
	return &models.Coordinates{Lat: *g.Latitude, Lng: *g.Longitude}
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{Host: "127.0.0.1", Port: 8080},
		Store:  StoreConfig{Driver: "sqlite", Path: "data", Key: "workouts", MigrationsPath: "migrations"},
		Map:    MapConfig{Zoom: 15},
		Form:   FormConfig{HideDelay: time.Second},
		Tailscale: TailscaleConfig{
			Hostname: "mapty",
			StateDir: "tsnet-state",
		},
	}
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix MAPTY_ and underscore-separated paths:
//
//	MAPTY_SERVER_HOST, MAPTY_SERVER_PORT,
//	MAPTY_STORE_DRIVER, MAPTY_STORE_PATH, MAPTY_STORE_DSN, MAPTY_STORE_KEY,
//	MAPTY_GEO_LATITUDE, MAPTY_GEO_LONGITUDE, MAPTY_GEO_TIMEOUT,
//	MAPTY_AUTH_API_KEY
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MAPTY_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("MAPTY_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("MAPTY_STORE_DRIVER"); v != "" {
		cfg.Store.Driver = v
	}
	if v := os.Getenv("MAPTY_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("MAPTY_STORE_DSN"); v != "" {
		cfg.Store.DSN = v
	}
	if v := os.Getenv("MAPTY_STORE_KEY"); v != "" {
		cfg.Store.Key = v
	}
	if v := os.Getenv("MAPTY_GEO_LATITUDE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Geolocation.Latitude = &f
		}
	}
	if v := os.Getenv("MAPTY_GEO_LONGITUDE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Geolocation.Longitude = &f
		}
	}
	if v := os.Getenv("MAPTY_GEO_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Geolocation.Timeout = d
		}
	}
	if v := os.Getenv("MAPTY_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	switch c.Store.Driver {
	case "memory":
	case "sqlite":
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for sqlite")
		}
	case "postgres":
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required for postgres")
		}
	default:
		return fmt.Errorf("store.driver %q is not one of memory, sqlite, postgres", c.Store.Driver)
	}
	if c.Store.Key == "" {
		return fmt.Errorf("store.key is required")
	}
	if (c.Geolocation.Latitude == nil) != (c.Geolocation.Longitude == nil) {
		return fmt.Errorf("geolocation.latitude and geolocation.longitude must be set together")
	}
	if p := c.Geolocation.Position(); p != nil {
		if !p.Valid() {
			return fmt.Errorf("geolocation position %v is out of range", *p)
		}
	}
	if c.Geolocation.Timeout < 0 {
		return fmt.Errorf("geolocation.timeout must not be negative")
	}
	if c.Map.Zoom < 1 || c.Map.Zoom > 20 {
		return fmt.Errorf("map.zoom must be between 1 and 20")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	return nil
}
