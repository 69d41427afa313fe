// Package config resolves and validates all pipeline settings into one value
// object. Components never read configuration sources themselves; they
// receive a validated Config (or a slice of it) from the caller.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/tephralabs/lavaflow/internal/domain"
)

// Accepted layouts for the analysis window bounds.
var windowLayouts = []string{"2006-01-02 15:04", "2006-01-02"}

// Config holds every setting of the pipeline, resolved from config file,
// environment, and flags.
type Config struct {
	Volcano string

	// Reference point (the vent) and download search radius.
	ReferenceLat float64
	ReferenceLon float64
	RadiusM      float64

	// FIRMS access.
	MapKey            string
	Products          []string
	FetchTimeout      time.Duration
	FetchDays         int // days per download request, API caps at 10
	RequestsPerMinute int

	// Analysis filters and window.
	MaxTrack    float64
	MinFRP      float64
	WindowStart time.Time
	WindowEnd   time.Time

	// Breakthrough tracking: "pooled" or "per-source".
	TrackerMode string

	// Storage.
	ArchiveDir string
	OutputDir  string

	// Optional Kafka sink for breakthrough events; disabled when no brokers
	// are configured.
	KafkaBrokers []string
	KafkaTopic   string

	// Service surface for watch mode.
	HTTPAddr      string
	WatchInterval time.Duration

	LogLevel  string
	LogFormat string
}

// SetDefaults registers the default value for every key on a viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("volcano", "")
	v.SetDefault("reference.lat", 0.0)
	v.SetDefault("reference.lon", 0.0)
	v.SetDefault("reference.radius_m", 3000.0)

	v.SetDefault("firms.map_key", "")
	products := make([]string, 0, len(domain.DefaultSources))
	for _, s := range domain.DefaultSources {
		products = append(products, s.Product)
	}
	v.SetDefault("firms.products", products)
	v.SetDefault("firms.timeout", "30s")
	v.SetDefault("firms.fetch_days", 2)
	v.SetDefault("firms.requests_per_minute", 30)

	v.SetDefault("filter.max_track", 0.5)
	v.SetDefault("filter.min_frp", 0.0)
	v.SetDefault("window.start", "")
	v.SetDefault("window.end", "")

	v.SetDefault("tracker.mode", "pooled")

	v.SetDefault("storage.archive_dir", "data/archive")
	v.SetDefault("storage.output_dir", "data/output")

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "lava-breakthrough-events")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("watch.interval", "1h")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// FromViper builds and validates a Config from resolved viper state.
func FromViper(v *viper.Viper) (*Config, error) {
	fetchTimeout, err := time.ParseDuration(v.GetString("firms.timeout"))
	if err != nil {
		return nil, fmt.Errorf("config: invalid firms.timeout: %w", err)
	}
	watchInterval, err := time.ParseDuration(v.GetString("watch.interval"))
	if err != nil {
		return nil, fmt.Errorf("config: invalid watch.interval: %w", err)
	}

	start, err := parseWindowBound(v.GetString("window.start"))
	if err != nil {
		return nil, fmt.Errorf("config: invalid window.start: %w", err)
	}
	end, err := parseWindowBound(v.GetString("window.end"))
	if err != nil {
		return nil, fmt.Errorf("config: invalid window.end: %w", err)
	}

	cfg := &Config{
		Volcano:           v.GetString("volcano"),
		ReferenceLat:      v.GetFloat64("reference.lat"),
		ReferenceLon:      v.GetFloat64("reference.lon"),
		RadiusM:           v.GetFloat64("reference.radius_m"),
		MapKey:            v.GetString("firms.map_key"),
		Products:          v.GetStringSlice("firms.products"),
		FetchTimeout:      fetchTimeout,
		FetchDays:         v.GetInt("firms.fetch_days"),
		RequestsPerMinute: v.GetInt("firms.requests_per_minute"),
		MaxTrack:          v.GetFloat64("filter.max_track"),
		MinFRP:            v.GetFloat64("filter.min_frp"),
		WindowStart:       start,
		WindowEnd:         end,
		TrackerMode:       v.GetString("tracker.mode"),
		ArchiveDir:        v.GetString("storage.archive_dir"),
		OutputDir:         v.GetString("storage.output_dir"),
		KafkaBrokers:      v.GetStringSlice("kafka.brokers"),
		KafkaTopic:        v.GetString("kafka.topic"),
		HTTPAddr:          v.GetString("http.addr"),
		WatchInterval:     watchInterval,
		LogLevel:          v.GetString("log.level"),
		LogFormat:         v.GetString("log.format"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every setting needed by the analysis stages. Invalid
// analysis settings are fatal to the whole run: a distance computed against
// a bogus reference point would be silently meaningless.
func (c *Config) Validate() error {
	if c.ReferenceLat < -90 || c.ReferenceLat > 90 {
		return fmt.Errorf("config: reference.lat %v out of range [-90, 90]", c.ReferenceLat)
	}
	if c.ReferenceLon < -180 || c.ReferenceLon > 180 {
		return fmt.Errorf("config: reference.lon %v out of range [-180, 180]", c.ReferenceLon)
	}
	if c.RadiusM <= 0 {
		return fmt.Errorf("config: reference.radius_m must be positive, got %v", c.RadiusM)
	}
	if len(c.Products) == 0 {
		return errors.New("config: firms.products must not be empty")
	}
	if c.FetchTimeout <= 0 {
		return errors.New("config: firms.timeout must be positive")
	}
	if c.FetchDays < 1 || c.FetchDays > 10 {
		return fmt.Errorf("config: firms.fetch_days must be in [1, 10], got %d", c.FetchDays)
	}
	if c.MaxTrack <= 0 {
		return fmt.Errorf("config: filter.max_track must be positive, got %v", c.MaxTrack)
	}
	if c.MinFRP < 0 {
		return fmt.Errorf("config: filter.min_frp must not be negative, got %v", c.MinFRP)
	}
	if c.WindowStart.IsZero() || c.WindowEnd.IsZero() {
		return errors.New("config: window.start and window.end are required")
	}
	if c.WindowEnd.Before(c.WindowStart) {
		return fmt.Errorf("config: window.end %v precedes window.start %v", c.WindowEnd, c.WindowStart)
	}
	if c.TrackerMode != "pooled" && c.TrackerMode != "per-source" {
		return fmt.Errorf("config: tracker.mode must be %q or %q, got %q", "pooled", "per-source", c.TrackerMode)
	}
	if c.ArchiveDir == "" || c.OutputDir == "" {
		return errors.New("config: storage.archive_dir and storage.output_dir are required")
	}
	if c.WatchInterval <= 0 {
		return errors.New("config: watch.interval must be positive")
	}
	if c.KafkaEnabled() && c.KafkaTopic == "" {
		return errors.New("config: kafka.topic is required when brokers are set")
	}
	return nil
}

// RequireMapKey verifies the FIRMS map key is present. Only ingestion needs
// it; analysis of existing archives runs without one.
func (c *Config) RequireMapKey() error {
	if strings.TrimSpace(c.MapKey) == "" {
		return errors.New("config: firms.map_key is required to download data")
	}
	return nil
}

// KafkaEnabled reports whether the breakthrough-event sink is configured.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func parseWindowBound(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	for _, layout := range windowLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", value)
}
