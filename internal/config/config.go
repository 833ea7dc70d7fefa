package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/couchcryptid/accessibility-etl/internal/domain"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all process settings, populated from environment variables.
// Input and output paths come from command flags, not from here.
type Config struct {
	LogLevel        string
	LogFormat       string
	HTTPAddr        string // empty disables the status server
	ShutdownTimeout time.Duration
	MetricsTextfile string // empty disables the textfile dump

	// Reverse geocoding (Nominatim).
	NominatimEnabled   bool
	NominatimURL       string
	NominatimUserAgent string
	NominatimTimeout   time.Duration
	NominatimRate      float64 // requests per second
	NominatimCacheSize int

	// OpenStreetMap Overpass source.
	OverpassURL     string
	OverpassTimeout time.Duration

	// Optional Kafka sink; disabled when no brokers are configured.
	KafkaBrokers []string
	KafkaTopic   string

	// Cleaning parameters.
	BoundingBox    domain.BoundingBox
	UTMZone        int
	VocabularyPath string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	nominatimTimeout, err := parsePositiveDuration("NOMINATIM_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	overpassTimeout, err := parsePositiveDuration("OVERPASS_TIMEOUT", "60s")
	if err != nil {
		return nil, err
	}

	rate, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("NOMINATIM_RATE", "1"), 64)
	if err != nil || rate <= 0 {
		return nil, errors.New("invalid NOMINATIM_RATE")
	}

	zone, err := strconv.Atoi(sharedcfg.EnvOrDefault("UTM_ZONE", "30"))
	if err != nil || zone < 1 || zone > 60 {
		return nil, errors.New("invalid UTM_ZONE")
	}

	box, err := domain.ParseBoundingBox(sharedcfg.EnvOrDefault("BBOX", "37.8,38.9,-0.9,0.1"))
	if err != nil {
		return nil, fmt.Errorf("invalid BBOX: %w", err)
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		HTTPAddr:        os.Getenv("HTTP_ADDR"),
		ShutdownTimeout: shutdownTimeout,
		MetricsTextfile: os.Getenv("METRICS_TEXTFILE"),

		NominatimEnabled:   os.Getenv("NOMINATIM_ENABLED") != "false",
		NominatimURL:       sharedcfg.EnvOrDefault("NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
		NominatimUserAgent: sharedcfg.EnvOrDefault("NOMINATIM_USER_AGENT", "AlicanteAccessibilityBot/1.0"),
		NominatimTimeout:   nominatimTimeout,
		NominatimRate:      rate,
		NominatimCacheSize: parseCacheSize(),

		OverpassURL:     sharedcfg.EnvOrDefault("OVERPASS_URL", "https://overpass-api.de/api/interpreter"),
		OverpassTimeout: overpassTimeout,

		KafkaBrokers: brokers,
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "accessibility-places"),

		BoundingBox:    box,
		UTMZone:        zone,
		VocabularyPath: os.Getenv("VOCABULARY_PATH"),
	}

	if cfg.NominatimEnabled && cfg.NominatimUserAgent == "" {
		return nil, errors.New("NOMINATIM_USER_AGENT is required when geocoding is enabled")
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// KafkaEnabled reports whether the Kafka sink should be attached.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseCacheSize() int {
	if s := os.Getenv("NOMINATIM_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
