package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/ritzau/casegraph/pkg/model"
)

// FileName is the optional config file read from the working directory
const FileName = "casegraph.toml"

// EnvPrefix marks environment overrides, e.g. CASEGRAPH_PORT=9090 or
// CASEGRAPH_OCR_URL=http://ocr:3001
const EnvPrefix = "CASEGRAPH_"

// Config holds all configuration for the application
type Config struct {
	DataPath   string `koanf:"data"`
	Storage    string `koanf:"storage" validate:"oneof=json sqlite"`
	Port       int    `koanf:"port" validate:"min=0,max=65535"`
	Open       bool   `koanf:"open"`
	Watch      bool   `koanf:"watch"`
	Dev        bool   `koanf:"dev"`
	List       bool   `koanf:"list"`
	Verbosity  string `koanf:"verbosity" validate:"omitempty,oneof=trace debug info warn error"`
	VerboseCnt int    `koanf:"verbose"`
	JSONLogs   bool   `koanf:"json"`

	OCR     Service `koanf:"ocr"`
	Report  Service `koanf:"report"`
	Breaker Breaker `koanf:"breaker"`
}

// Service locates one of the external ingest services
type Service struct {
	URL     string        `koanf:"url" validate:"required,url"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
}

// Breaker tunes the circuit breakers in front of the ingest services
type Breaker struct {
	Timeout   time.Duration `koanf:"timeout" validate:"gt=0"`
	Threshold float64       `koanf:"threshold" validate:"gt=0,lte=1"`
	Requests  uint32        `koanf:"requests" validate:"gt=0"`
}

// Load loads configuration from defaults, config file, environment variables, and flags.
// Priority: Flags > Env > Config File > Defaults
func Load(f *pflag.FlagSet) (*Config, error) {
	return load(f, FileName)
}

func load(f *pflag.FlagSet, path string) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	defaults := map[string]interface{}{
		"data":              "",
		"storage":           "json",
		"port":              8080,
		"open":              true,
		"watch":             false,
		"dev":               false,
		"list":              false,
		"verbosity":         "",
		"verbose":           0,
		"json":              false,
		"ocr.url":           "http://localhost:3001",
		"ocr.timeout":       "2m",
		"report.url":        "http://localhost:3001",
		"report.timeout":    "1m",
		"breaker.timeout":   "30s",
		"breaker.threshold": 0.6,
		"breaker.requests":  3,
	}
	if err := k.Load(makeMapProvider(defaults), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config File (optional)
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	// 3. Environment Variables
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(s, EnvPrefix)), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if f != nil {
		if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := model.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
