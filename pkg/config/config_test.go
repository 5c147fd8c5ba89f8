package config

import (
	"testing"

	"github.com/spf13/viper"
)

func TestLoadRequiresExactlyOneStoreLocation(t *testing.T) {
	v := viper.New()
	v.Set("stadia-maps-api-key", "k")
	v.Set("stadia-maps-endpoint-base", "https://example.com")

	if _, err := Load(v); err == nil {
		t.Fatal("expected an error when neither store-path nor store-url is set")
	}

	v.Set("store-path", "/tmp/regions.fgb")
	v.Set("store-url", "https://example.com/regions.fgb")
	if _, err := Load(v); err == nil {
		t.Fatal("expected an error when both store-path and store-url are set")
	}
}

func TestLoadRequiresRoutingEnvVars(t *testing.T) {
	v := viper.New()
	v.Set("store-path", "/tmp/regions.fgb")

	if _, err := Load(v); err == nil {
		t.Fatal("expected an error when the routing env vars are unset")
	}
}

func TestLoadSucceeds(t *testing.T) {
	v := viper.New()
	v.Set("store-path", "/tmp/regions.fgb")
	v.Set("stadia-maps-api-key", "k")
	v.Set("stadia-maps-endpoint-base", "https://example.com")

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StorePath != "/tmp/regions.fgb" {
		t.Errorf("StorePath = %q", cfg.StorePath)
	}
}
