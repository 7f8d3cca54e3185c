// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

// Duration decodes yaml scalars like "30m" or "8760h".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// Std returns the plain time.Duration value.
func (d Duration) Std() time.Duration { return time.Duration(d) }

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type APIConfig struct {
	Port           int           `yaml:"port"`
	RequestTimeout Duration `yaml:"request_timeout"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type IdentityConfig struct {
	JWTSecret string `yaml:"jwt_secret"` // HMAC secret shared with the identity service
	Issuer    string `yaml:"issuer"`
}

type CatalogConfig struct {
	BaseURL  string        `yaml:"base_url"`
	Timeout  Duration `yaml:"timeout"`
	CacheTTL Duration `yaml:"cache_ttl"`
}

type EntitlementConfig struct {
	// Period a completed purchase grants access for. Zero means perpetual
	// access; that is a deliberate configuration choice, not a default.
	Period Duration `yaml:"period"`
	// PendingTimeout is how long a pending payment may wait for its gateway
	// callback before the sweeper cancels it.
	PendingTimeout Duration `yaml:"pending_timeout"`
	SweepInterval  Duration `yaml:"sweep_interval"`
}

type Config struct {
	Log         LogConfig         `yaml:"log"`
	API         APIConfig         `yaml:"api"`
	Database    DatabaseConfig    `yaml:"database"`
	Redis       RedisConfig       `yaml:"redis"`
	Identity    IdentityConfig    `yaml:"identity"`
	Catalog     CatalogConfig     `yaml:"catalog"`
	Entitlement EntitlementConfig `yaml:"entitlement"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.API.Port == 0 {
		cfg.API.Port = 8080
	}
	if cfg.API.RequestTimeout <= 0 {
		cfg.API.RequestTimeout = Duration(15 * time.Second)
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Catalog.Timeout <= 0 {
		cfg.Catalog.Timeout = Duration(5 * time.Second)
	}
	if cfg.Catalog.CacheTTL <= 0 {
		cfg.Catalog.CacheTTL = Duration(5 * time.Minute)
	}
	if cfg.Entitlement.PendingTimeout <= 0 {
		cfg.Entitlement.PendingTimeout = Duration(30 * time.Minute)
	}
	if cfg.Entitlement.SweepInterval <= 0 {
		cfg.Entitlement.SweepInterval = Duration(time.Minute)
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Identity.JWTSecret == "" {
		return nil, errors.New("identity.jwt_secret is required")
	}
	if cfg.Catalog.BaseURL == "" {
		return nil, errors.New("catalog.base_url is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
