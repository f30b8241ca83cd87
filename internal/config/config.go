package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vishalsinha2004/Indora-Customer/internal/models"
)

// Capabilities toggles optional booking features. The agent runs one
// state machine parameterized by this table instead of parallel variants.
type Capabilities struct {
	DeviceLocation bool
	ForwardSearch  bool
	Rating         bool
}

// AgentConfig captures all tunable parameters for the booking agent.
// Values are primarily loaded from environment variables with sane defaults
// so the binary can run locally without excessive setup.
type AgentConfig struct {
	HTTPAddr        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	BackendBaseURL string
	NominatimURL   string
	OSRMURL        string
	RouteCacheTTL  time.Duration

	RazorpayKeyID     string
	RazorpayKeySecret string
	Currency          string
	PaymentTimeout    time.Duration

	PollInterval time.Duration

	RedisAddr     string
	RedisPassword string
	StatePath     string

	MapCenter models.Coord

	DeviceLocationURL     string
	DeviceLocationTimeout time.Duration

	Catalog      []models.VehicleType
	Capabilities Capabilities

	LogLevel string
}

func defaultAgentConfig() AgentConfig {
	return AgentConfig{
		HTTPAddr:        ":7100",
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    10 * time.Second,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 15 * time.Second,

		BackendBaseURL: "http://127.0.0.1:8000/api",
		NominatimURL:   "https://nominatim.openstreetmap.org",
		OSRMURL:        "https://router.project-osrm.org",
		RouteCacheTTL:  time.Minute,

		Currency:       "INR",
		PaymentTimeout: 5 * time.Minute,

		PollInterval: 3 * time.Second,

		StatePath: "indora-state.json",

		// Delhi, the original app's default viewport.
		MapCenter: models.Coord{Lat: 28.6139, Lng: 77.2090},

		DeviceLocationTimeout: 5 * time.Second,

		Catalog: []models.VehicleType{
			{ID: "2-wheeler", Label: "Bike", Active: true},
			{ID: "3-wheeler", Label: "Auto", Active: true},
			{ID: "4-wheeler", Label: "Cab", Active: true},
			{ID: "premium", Label: "Premium", Active: false},
		},
		Capabilities: Capabilities{
			DeviceLocation: true,
			ForwardSearch:  true,
			Rating:         true,
		},

		LogLevel: "info",
	}
}

func Load() (AgentConfig, error) {
	cfg := defaultAgentConfig()
	var errs []error

	setStringFromEnv(&cfg.HTTPAddr, "HTTP_ADDR")
	setDurationFromEnv(&cfg.ReadTimeout, "HTTP_READ_TIMEOUT", &errs)
	setDurationFromEnv(&cfg.WriteTimeout, "HTTP_WRITE_TIMEOUT", &errs)
	setDurationFromEnv(&cfg.IdleTimeout, "HTTP_IDLE_TIMEOUT", &errs)
	setDurationFromEnv(&cfg.ShutdownTimeout, "HTTP_SHUTDOWN_TIMEOUT", &errs)

	setStringFromEnv(&cfg.BackendBaseURL, "INDORA_API_URL")
	setStringFromEnv(&cfg.NominatimURL, "NOMINATIM_URL")
	setStringFromEnv(&cfg.OSRMURL, "OSRM_URL")
	setDurationFromEnv(&cfg.RouteCacheTTL, "ROUTE_CACHE_TTL", &errs)

	cfg.RazorpayKeyID = strings.TrimSpace(os.Getenv("RAZORPAY_KEY_ID"))
	cfg.RazorpayKeySecret = os.Getenv("RAZORPAY_KEY_SECRET")
	setStringFromEnv(&cfg.Currency, "PAYMENT_CURRENCY")
	setDurationFromEnv(&cfg.PaymentTimeout, "PAYMENT_TIMEOUT", &errs)

	setDurationFromEnv(&cfg.PollInterval, "POLL_INTERVAL", &errs)

	cfg.RedisAddr = strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	setStringFromEnv(&cfg.StatePath, "STATE_PATH")

	setFloatFromEnv(&cfg.MapCenter.Lat, "MAP_CENTER_LAT", &errs)
	setFloatFromEnv(&cfg.MapCenter.Lng, "MAP_CENTER_LNG", &errs)

	setStringFromEnv(&cfg.DeviceLocationURL, "DEVICE_LOCATION_URL")
	setDurationFromEnv(&cfg.DeviceLocationTimeout, "DEVICE_LOCATION_TIMEOUT", &errs)

	if v := os.Getenv("VEHICLE_CATALOG"); v != "" {
		catalog, err := parseCatalog(v)
		if err != nil {
			errs = append(errs, err)
		} else {
			cfg.Catalog = catalog
		}
	}
	setBoolFromEnv(&cfg.Capabilities.DeviceLocation, "FEATURE_DEVICE_LOCATION")
	setBoolFromEnv(&cfg.Capabilities.ForwardSearch, "FEATURE_FORWARD_SEARCH")
	setBoolFromEnv(&cfg.Capabilities.Rating, "FEATURE_RATING")

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}

	if cfg.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("POLL_INTERVAL must be > 0"))
	}
	if cfg.PaymentTimeout <= 0 {
		errs = append(errs, fmt.Errorf("PAYMENT_TIMEOUT must be > 0"))
	}
	if len(cfg.Catalog) == 0 {
		errs = append(errs, fmt.Errorf("vehicle catalog must not be empty"))
	}

	return cfg, errors.Join(errs...)
}

// parseCatalog reads "id:label:active,id:label:active" entries.
func parseCatalog(v string) ([]models.VehicleType, error) {
	var out []models.VehicleType
	for _, raw := range strings.Split(v, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		parts := strings.Split(raw, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid VEHICLE_CATALOG entry %q", raw)
		}
		active, err := strconv.ParseBool(parts[2])
		if err != nil {
			return nil, fmt.Errorf("invalid VEHICLE_CATALOG entry %q: %w", raw, err)
		}
		out = append(out, models.VehicleType{
			ID:     strings.TrimSpace(parts[0]),
			Label:  strings.TrimSpace(parts[1]),
			Active: active,
		})
	}
	return out, nil
}

func setDurationFromEnv(target *time.Duration, key string, errs *[]error) {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
			return
		}
		*target = d
	}
}

func setFloatFromEnv(target *float64, key string, errs *[]error) {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
			return
		}
		*target = f
	}
}

func setBoolFromEnv(target *bool, key string) {
	if v := os.Getenv(key); v != "" {
		*target = strings.EqualFold(v, "true")
	}
}

func setStringFromEnv(target *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*target = v
	}
}
