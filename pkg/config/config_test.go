package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/psdatlas/pkg/psdb"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvRedisAddr, EnvMongoURI, EnvAddr} {
		t.Setenv(k, "")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	def := Default()
	if cfg.Padding != def.Padding || cfg.Server.Addr != def.Server.Addr || cfg.Jobs.Backend != JobsFile {
		t.Errorf("Load = %+v, want defaults", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
padding = 4
coordinate_system = "BOTTOM_LEFT"
formats = ["png", "json"]

[cache]
redis_addr = "cache:6379"
redis_db = 2
ttl = "12h"

[jobs]
backend = "none"

[server]
addr = "127.0.0.1:9000"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Padding != 4 {
		t.Errorf("Padding = %d", cfg.Padding)
	}
	if cfg.CoordinateSystem != psdb.BottomLeft {
		t.Errorf("CoordinateSystem = %v", cfg.CoordinateSystem)
	}
	if strings.Join(cfg.Formats, ",") != "png,json" {
		t.Errorf("Formats = %v", cfg.Formats)
	}
	if cfg.Cache.RedisAddr != "cache:6379" || cfg.Cache.RedisDB != 2 || cfg.Cache.TTL.Duration != 12*time.Hour {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Jobs.Backend != JobsNone {
		t.Errorf("Jobs.Backend = %q", cfg.Jobs.Backend)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	// Unset values keep their defaults.
	if cfg.Server.MaxBodyBytes != Default().Server.MaxBodyBytes {
		t.Errorf("MaxBodyBytes = %d", cfg.Server.MaxBodyBytes)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvRedisAddr, "env-redis:6379")
	t.Setenv(EnvMongoURI, "mongodb://env:27017")
	t.Setenv(EnvAddr, ":7777")

	cfg, err := Load(writeConfig(t, "[cache]\nredis_addr = \"file:6379\"\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Cache.RedisAddr != "env-redis:6379" {
		t.Errorf("RedisAddr = %q, env should win", cfg.Cache.RedisAddr)
	}
	if cfg.Jobs.MongoURI != "mongodb://env:27017" || cfg.Jobs.Backend != JobsMongo {
		t.Errorf("Jobs = %+v", cfg.Jobs)
	}
	if cfg.Server.Addr != ":7777" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name    string
		content string
	}{
		{"malformed", "padding = "},
		{"unknown key", "colour = \"red\"\n"},
		{"negative padding", "padding = -1\n"},
		{"bad coordinate system", "coordinate_system = \"center\"\n"},
		{"bad backend", "[jobs]\nbackend = \"postgres\"\n"},
		{"mongo without uri", "[jobs]\nbackend = \"mongo\"\n"},
		{"bad ttl", "[cache]\nttl = \"soon\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	p, err := Path()
	if err != nil {
		t.Fatal(err)
	}
	if p != filepath.Join("/xdg", "psdatlas", "config.toml") {
		t.Errorf("Path() = %q", p)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	clearEnv(t)
	cfg := Default()
	cfg.CoordinateSystem = psdb.BottomLeft
	cfg.Cache.TTL = Duration{90 * time.Minute}

	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(string(data), `coordinate_system = "bottom-left"`) {
		t.Errorf("encoded config missing coordinate system:\n%s", data)
	}

	back, err := Load(writeConfig(t, string(data)))
	if err != nil {
		t.Fatalf("Load encoded: %v\n%s", err, data)
	}
	if back.CoordinateSystem != psdb.BottomLeft || back.Cache.TTL.Duration != 90*time.Minute {
		t.Errorf("round trip = %+v", back)
	}
}
