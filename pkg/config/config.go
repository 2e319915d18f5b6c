package config

import (
	"os"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/pario-ai/advisor/pkg/cache"
	"github.com/pario-ai/advisor/pkg/catalog"
	"github.com/pario-ai/advisor/pkg/models"
)

// Backend defaults applied to descriptors that leave the field unset.
const (
	DefaultMaxRetries = 2
	DefaultTimeout    = 15 * time.Second
)

// Config holds all advisor configuration.
type Config struct {
	Listen       string                     `yaml:"listen"`
	CORSOrigins  []string                   `yaml:"cors_origins"`
	DBPath       string                     `yaml:"db_path"`
	Locale       string                     `yaml:"locale"`
	Log          LogConfig                  `yaml:"log"`
	Backends     []models.BackendDescriptor `yaml:"backends"`
	Retry        RetryConfig                `yaml:"retry"`
	Cache        CacheConfig                `yaml:"cache"`
	Conversation ConversationConfig         `yaml:"conversation"`
	Session      SessionConfig              `yaml:"session"`
	Journal      JournalConfig              `yaml:"journal"`
}

// LogConfig controls the global zap logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

// RetryConfig controls the delay between attempts on one backend.
type RetryConfig struct {
	Backoff    time.Duration `yaml:"backoff"`
	MaxBackoff time.Duration `yaml:"max_backoff"`
}

// CacheConfig controls the fingerprint cache. The TTLs must be positive
// while the cache is enabled; only static lookups never expire.
type CacheConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Store           string        `yaml:"store"` // memory or sqlite
	ProfileTTL      time.Duration `yaml:"profile_ttl"`
	QueryTTL        time.Duration `yaml:"query_ttl"`
	ClaimTTL        time.Duration `yaml:"claim_ttl"`
	JanitorInterval time.Duration `yaml:"janitor_interval"`
}

// ConversationConfig bounds the per-session conversation log.
type ConversationConfig struct {
	Retention int `yaml:"retention"`
	Display   int `yaml:"display"`
}

// SessionConfig controls idle session expiry.
type SessionConfig struct {
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// JournalConfig controls the resolution journal.
type JournalConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Retention time.Duration `yaml:"retention"`
}

// Store names.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Default returns a Config with sensible defaults: a local Ollama model
// followed by a hosted inference model.
func Default() *Config {
	ttl := cache.DefaultTTLPolicy()
	return &Config{
		Listen: ":8080",
		DBPath: "advisor.db",
		Locale: catalog.DefaultLocale,
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Backends: []models.BackendDescriptor{
			{
				Name:       "ollama",
				Kind:       models.BackendLocal,
				Model:      "phi3:mini",
				MaxRetries: DefaultMaxRetries,
				Timeout:    DefaultTimeout,
				Options: models.GenerationOptions{
					Temperature: 0.7,
					TopP:        0.9,
					MaxTokens:   200,
					NumCtx:      1024,
				},
			},
			{
				Name:       "huggingface",
				Kind:       models.BackendHosted,
				Model:      "google/flan-t5-large",
				MaxRetries: DefaultMaxRetries,
				Timeout:    30 * time.Second,
				Options: models.GenerationOptions{
					Temperature: 0.7,
					MaxTokens:   200,
					DoSample:    true,
				},
			},
		},
		Cache: CacheConfig{
			Enabled:         true,
			Store:           StoreMemory,
			ProfileTTL:      ttl.Profile,
			QueryTTL:        ttl.Query,
			ClaimTTL:        ttl.Claim,
			JanitorInterval: time.Minute,
		},
		Conversation: ConversationConfig{
			Retention: 10,
			Display:   5,
		},
		Session: SessionConfig{
			IdleTimeout: 2 * time.Hour,
		},
		Journal: JournalConfig{
			Enabled:   false,
			Retention: 30 * 24 * time.Hour,
		},
	}
}

// Load reads a YAML config file and expands environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "read config")
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, eris.Wrap(err, "parse config")
	}

	for i := range cfg.Backends {
		b := &cfg.Backends[i]
		if b.MaxRetries == 0 {
			b.MaxRetries = DefaultMaxRetries
		}
		if b.Timeout == 0 {
			b.Timeout = DefaultTimeout
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the advisor cannot run with.
func (c *Config) Validate() error {
	if _, ok := catalog.Language(c.Locale); !ok {
		return eris.Errorf("config: unsupported locale %q", c.Locale)
	}

	seen := make(map[string]bool, len(c.Backends))
	for i, b := range c.Backends {
		if b.Name == "" {
			return eris.Errorf("config: backends[%d]: name is required", i)
		}
		if seen[b.Name] {
			return eris.Errorf("config: duplicate backend name %q", b.Name)
		}
		seen[b.Name] = true

		switch b.Kind {
		case models.BackendLocal, models.BackendHosted, models.BackendAnthropic:
		default:
			return eris.Errorf("config: backend %q: unknown kind %q", b.Name, b.Kind)
		}
		if b.MaxRetries <= 0 {
			return eris.Errorf("config: backend %q: max_retries must be positive", b.Name)
		}
		if b.Timeout <= 0 {
			return eris.Errorf("config: backend %q: timeout must be positive", b.Name)
		}
		if b.RateLimit < 0 {
			return eris.Errorf("config: backend %q: rate_limit must not be negative", b.Name)
		}
	}

	switch c.Cache.Store {
	case StoreMemory, StoreSQLite:
	default:
		return eris.Errorf("config: unknown cache store %q", c.Cache.Store)
	}
	if c.Cache.Enabled && (c.Cache.ProfileTTL <= 0 || c.Cache.QueryTTL <= 0 || c.Cache.ClaimTTL <= 0) {
		return eris.New("config: cache TTLs must be positive; set cache.enabled to false to disable caching")
	}

	if c.Conversation.Retention <= 0 {
		return eris.New("config: conversation.retention must be positive")
	}
	if c.Conversation.Display <= 0 || c.Conversation.Display > c.Conversation.Retention {
		return eris.New("config: conversation.display must be between 1 and retention")
	}
	return nil
}

// Descriptors returns the backends in cascade order with Priority set.
func (c *Config) Descriptors() []models.BackendDescriptor {
	out := make([]models.BackendDescriptor, len(c.Backends))
	for i, b := range c.Backends {
		b.Priority = i
		out[i] = b
	}
	return out
}

// TTLPolicy returns the cache TTLs per category.
func (c *Config) TTLPolicy() cache.TTLPolicy {
	return cache.TTLPolicy{
		Profile: c.Cache.ProfileTTL,
		Query:   c.Cache.QueryTTL,
		Claim:   c.Cache.ClaimTTL,
	}
}

// InitLogger builds the global zap logger from cfg.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
