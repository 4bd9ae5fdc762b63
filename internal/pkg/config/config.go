package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/text/language"

	"github.com/samirrijal/immoreims/internal/core/domain"
)

// DefaultSourceURL is the published Reims transaction export.
const DefaultSourceURL = "https://raw.githubusercontent.com/Aubinrocky/Immobilier/main/datasetimmobilierreimssansimmeubles.csv"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Source    SourceConfig    `mapstructure:"source"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	AllowOrigins string `mapstructure:"allow_origins"`
}

type SourceConfig struct {
	URL      string `mapstructure:"url"`
	Timeout  int    `mapstructure:"timeout"`   // seconds
	CacheTTL int    `mapstructure:"cache_ttl"` // seconds, 0 disables the L2 cache
	Preload  bool   `mapstructure:"preload"`
}

type DashboardConfig struct {
	Years         []int    `mapstructure:"years"`
	PropertyTypes []string `mapstructure:"property_types"`
	PreviewLimit  int      `mapstructure:"preview_limit"`
	CenterLat     float64  `mapstructure:"center_lat"`
	CenterLon     float64  `mapstructure:"center_lon"`
	Zoom          int      `mapstructure:"zoom"`
	POIZoom       int      `mapstructure:"poi_zoom"`
	Locale        string   `mapstructure:"locale"`
}

// Types parses the configured property types.
func (d DashboardConfig) Types() ([]domain.PropertyType, error) {
	types := make([]domain.PropertyType, 0, len(d.PropertyTypes))
	for _, raw := range d.PropertyTypes {
		pt, ok := domain.ParsePropertyType(raw)
		if !ok {
			return nil, fmt.Errorf("unknown property type %q", raw)
		}
		types = append(types, pt)
	}
	return types, nil
}

// Language parses the configured locale.
func (d DashboardConfig) Language() (language.Tag, error) {
	return language.Parse(d.Locale)
}

type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Enabled bool   `mapstructure:"enabled"`
}

type ValkeyConfig struct {
	Addr    string `mapstructure:"addr"`
	Prefix  string `mapstructure:"prefix"`
	Enabled bool   `mapstructure:"enabled"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	OTLPAddr    string `mapstructure:"otlp_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from .env, an optional config file and
// environment variables.
func Load(service string) (*Config, error) {
	_ = godotenv.Load() // OK if missing

	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.allow_origins", "http://localhost:3000, http://localhost:5173")
	v.SetDefault("source.url", DefaultSourceURL)
	v.SetDefault("source.timeout", 60)
	v.SetDefault("source.cache_ttl", 86400)
	v.SetDefault("source.preload", true)
	v.SetDefault("dashboard.years", domain.DefaultYears)
	v.SetDefault("dashboard.property_types", []string{string(domain.Apartment), string(domain.House)})
	v.SetDefault("dashboard.preview_limit", 100)
	v.SetDefault("dashboard.center_lat", 49.258329)
	v.SetDefault("dashboard.center_lon", 4.031696)
	v.SetDefault("dashboard.zoom", 13)
	v.SetDefault("dashboard.poi_zoom", 19)
	v.SetDefault("dashboard.locale", "fr")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.enabled", true)
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("valkey.prefix", "immoreims:")
	v.SetDefault("valkey.enabled", true)
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.otlp_addr", "localhost:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: IMMOREIMS_SOURCE_URL → source.url
	v.SetEnvPrefix("IMMOREIMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Source.URL == "" {
		errs = append(errs, "source.url is required")
	}
	if c.Source.Timeout <= 0 {
		errs = append(errs, "source.timeout must be positive")
	}
	if c.Source.CacheTTL < 0 {
		errs = append(errs, "source.cache_ttl must not be negative")
	}
	if len(c.Dashboard.Years) == 0 {
		errs = append(errs, "dashboard.years must not be empty")
	}
	if len(c.Dashboard.PropertyTypes) == 0 {
		errs = append(errs, "dashboard.property_types must not be empty")
	} else if _, err := c.Dashboard.Types(); err != nil {
		errs = append(errs, "dashboard.property_types: "+err.Error())
	}
	if c.Dashboard.PreviewLimit <= 0 {
		errs = append(errs, "dashboard.preview_limit must be positive")
	}
	if c.Dashboard.CenterLat < -90 || c.Dashboard.CenterLat > 90 {
		errs = append(errs, "dashboard.center_lat must be within [-90, 90]")
	}
	if c.Dashboard.CenterLon < -180 || c.Dashboard.CenterLon > 180 {
		errs = append(errs, "dashboard.center_lon must be within [-180, 180]")
	}
	if _, err := c.Dashboard.Language(); err != nil {
		errs = append(errs, fmt.Sprintf("dashboard.locale %q is not a valid language tag", c.Dashboard.Locale))
	}
	if c.NATS.Enabled && c.NATS.URL == "" {
		errs = append(errs, "nats.url is required when nats is enabled")
	}
	if c.Valkey.Enabled && c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required when valkey is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
