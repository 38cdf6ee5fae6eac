package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

const DefaultPath = "config/config.toml"

type ServerConfig struct {
	Port      string   `toml:"port" validate:"required,numeric"`
	PublicURL string   `toml:"public_url"`
	Mode      string   `toml:"mode" validate:"omitempty,oneof=debug release test"`
	CORS      []string `toml:"cors_allow_origins"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format" validate:"omitempty,oneof=json console"`
	Output string `toml:"output"`
}

type LLMConfig struct {
	Provider        string `toml:"provider" validate:"omitempty,oneof=claude openai gemini ollama"`
	Model           string `toml:"model"`
	ClassifierModel string `toml:"classifier_model"`
	APIKey          string `toml:"api_key"`
	BaseURL         string `toml:"base_url"`
}

type StoreConfig struct {
	Driver      string `toml:"driver" validate:"required,oneof=postgres sqlite memgraph"`
	DSN         string `toml:"dsn"`
	AutoMigrate bool   `toml:"auto_migrate"`
	MaxOpenConn int    `toml:"max_open_conns"`
	MaxIdleConn int    `toml:"max_idle_conns"`
}

type MemgraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type CacheConfig struct {
	Backend         string `toml:"backend" validate:"omitempty,oneof=memory redis none"`
	CatalogTTLSec   int    `toml:"catalog_ttl_seconds" validate:"gte=0"`
	DownloadsTTLSec int    `toml:"downloads_ttl_seconds" validate:"gte=0"`
}

func (c CacheConfig) CatalogTTL() time.Duration {
	return time.Duration(c.CatalogTTLSec) * time.Second
}

func (c CacheConfig) DownloadsTTL() time.Duration {
	return time.Duration(c.DownloadsTTLSec) * time.Second
}

type RedisConfig struct {
	URL string `toml:"url"`
}

type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret"`
	Audience  string `toml:"audience"`
	Issuer    string `toml:"issuer"`
}

type BillingConfig struct {
	StripeSecretKey string `toml:"stripe_secret_key"`
	StarterPriceID  string `toml:"starter_price_id"`
	ProPriceID      string `toml:"pro_price_id"`
	Currency        string `toml:"currency"`
}

type StorageConfig struct {
	S3Region      string `toml:"s3_region"`
	PresignTTLSec int    `toml:"presign_ttl_seconds" validate:"gte=0"`
}

func (c StorageConfig) PresignTTL() time.Duration {
	return time.Duration(c.PresignTTLSec) * time.Second
}

type TracingConfig struct {
	Endpoint    string `toml:"endpoint"`
	ServiceName string `toml:"service_name"`
}

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Log      LogConfig      `toml:"log"`
	LLM      LLMConfig      `toml:"llm"`
	Store    StoreConfig    `toml:"store"`
	Memgraph MemgraphConfig `toml:"memgraph"`
	Cache    CacheConfig    `toml:"cache"`
	Redis    RedisConfig    `toml:"redis"`
	Auth     AuthConfig     `toml:"auth"`
	Billing  BillingConfig  `toml:"billing"`
	Storage  StorageConfig  `toml:"storage"`
	Tracing  TracingConfig  `toml:"tracing"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080", Mode: "release"},
		Log:    LogConfig{Level: "info", Format: "json", Output: "stdout"},
		LLM: LLMConfig{
			Provider:        "claude",
			Model:           "claude-3-5-sonnet-20241022",
			ClassifierModel: "claude-3-5-haiku-20241022",
		},
		Store: StoreConfig{
			Driver:      "sqlite",
			DSN:         "file:automationvault.db?_pragma=busy_timeout(5000)",
			AutoMigrate: true,
			MaxOpenConn: 10,
			MaxIdleConn: 5,
		},
		Memgraph: MemgraphConfig{URI: "bolt://localhost:7687"},
		Cache:    CacheConfig{Backend: "memory", CatalogTTLSec: 120, DownloadsTTLSec: 60},
		Billing:  BillingConfig{Currency: "usd"},
		Storage:  StorageConfig{PresignTTLSec: 900},
		Tracing:  TracingConfig{ServiceName: "automationvault"},
	}
}

// Load reads the TOML file at path on top of the defaults. A missing file is
// returned as an error wrapping fs.ErrNotExist.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides file values with environment variables when present.
func (c *Config) ApplyEnv() {
	set := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := os.Getenv(k); v != "" {
				*dst = v
				return
			}
		}
	}

	set(&c.Server.Port, "PORT")
	set(&c.Server.PublicURL, "PUBLIC_URL")
	set(&c.Log.Level, "LOG_LEVEL")
	set(&c.Log.Format, "LOG_FORMAT")

	set(&c.LLM.Provider, "LLM_PROVIDER")
	set(&c.LLM.Model, "LLM_MODEL")
	set(&c.LLM.ClassifierModel, "LLM_CLASSIFIER_MODEL")
	set(&c.LLM.APIKey, "LLM_API_KEY", "CLAUDE_API_KEY")
	set(&c.LLM.BaseURL, "LLM_BASE_URL")

	set(&c.Store.Driver, "STORE_DRIVER")
	set(&c.Store.DSN, "DATABASE_URL")
	set(&c.Memgraph.URI, "MEMGRAPH_URI")
	set(&c.Memgraph.User, "MEMGRAPH_USER")
	set(&c.Memgraph.Password, "MEMGRAPH_PASSWORD")

	set(&c.Cache.Backend, "CACHE_BACKEND")
	set(&c.Redis.URL, "REDIS_URL")
	if v := os.Getenv("CATALOG_CACHE_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Cache.CatalogTTLSec = n
		}
	}

	set(&c.Auth.JWTSecret, "JWT_SECRET", "SUPABASE_JWT_SECRET")
	set(&c.Auth.Audience, "JWT_AUDIENCE")

	set(&c.Billing.StripeSecretKey, "STRIPE_SECRET_KEY")
	set(&c.Billing.StarterPriceID, "STRIPE_PRICE_STARTER")
	set(&c.Billing.ProPriceID, "STRIPE_PRICE_PRO")

	set(&c.Storage.S3Region, "AWS_REGION")
	set(&c.Tracing.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Cache.Backend == "redis" && c.Redis.URL == "" {
		return fmt.Errorf("invalid configuration: cache backend redis requires redis.url")
	}
	return nil
}
