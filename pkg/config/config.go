// Package config binds the process-wide, immutable configuration the
// query surface needs — the store location and the routing upstream's
// credentials — once at startup from flags and environment variables
// (spec.md §5, §6).
//
// Grounded on MeKo-Christian-WaterColorMap/internal/cmd/root.go's
// cobra+viper initConfig/initLogging pattern: persistent flags bound to
// viper, an env prefix, and a log/slog handler selected by a log-level
// flag.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config is the process-wide, immutable handle spec.md §5 describes:
// bound once at startup, shared read-only across every concurrent
// request thereafter.
type Config struct {
	// StorePath is a local feature-store file path. Mutually exclusive
	// with StoreURL; exactly one must be set.
	StorePath string
	// StoreURL is a remote feature-store URL fetched via HTTP Range
	// requests. Mutually exclusive with StorePath.
	StoreURL string

	// StadiaMapsAPIKey and StadiaMapsEndpointBase are the two
	// environment variables spec.md §6 names for the routing upstream.
	StadiaMapsAPIKey       string
	StadiaMapsEndpointBase string

	LogLevel string
}

// Load builds a Config from viper's already-bound flags and environment
// ("GREENSPACE_" prefix, automatic env), validating the mutual
// exclusion between a local and remote store and the presence of both
// routing environment variables.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		StorePath:              v.GetString("store-path"),
		StoreURL:               v.GetString("store-url"),
		StadiaMapsAPIKey:       v.GetString("stadia-maps-api-key"),
		StadiaMapsEndpointBase: v.GetString("stadia-maps-endpoint-base"),
		LogLevel:               v.GetString("log-level"),
	}

	if cfg.StorePath == "" && cfg.StoreURL == "" {
		return nil, fmt.Errorf("config: exactly one of --store-path or --store-url is required")
	}
	if cfg.StorePath != "" && cfg.StoreURL != "" {
		return nil, fmt.Errorf("config: --store-path and --store-url are mutually exclusive")
	}
	if cfg.StadiaMapsAPIKey == "" {
		return nil, fmt.Errorf("config: STADIA_MAPS_API_KEY is required")
	}
	if cfg.StadiaMapsEndpointBase == "" {
		return nil, fmt.Errorf("config: STADIA_MAPS_ENDPOINT_BASE is required")
	}
	return cfg, nil
}

// NewViper constructs a viper instance bound to the environment
// variables spec.md §6 names, using the "GREENSPACE" prefix for every
// other setting (flags are expected to already be bound by the caller
// via viper.BindPFlag, following root.go's convention).
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("GREENSPACE")
	v.AutomaticEnv()
	v.BindEnv("stadia-maps-api-key", "STADIA_MAPS_API_KEY")
	v.BindEnv("stadia-maps-endpoint-base", "STADIA_MAPS_ENDPOINT_BASE")
	return v
}

// NewLogger builds the process-wide slog.Logger from a textual level
// name, defaulting to info on an unrecognized value.
func NewLogger(levelStr string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(levelStr) {
	case "debug":
		level = slog.LevelDebug
	case "info", "":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error", "err":
		level = slog.LevelError
	default:
		fmt.Fprintf(os.Stderr, "unknown log level %q, defaulting to info\n", levelStr)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
