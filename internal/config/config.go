package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const AppName = "resume-analyzer"

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Gemini  GeminiConfig  `mapstructure:"gemini"`
	Render  RenderConfig  `mapstructure:"render"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Ledger  LedgerConfig  `mapstructure:"ledger"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	AllowOrigins    []string      `mapstructure:"allow-origins"`
	BodyLimit       string        `mapstructure:"body-limit"`
	MaxUploadBytes  int64         `mapstructure:"max-upload-bytes"`
	ReadTimeout     time.Duration `mapstructure:"read-timeout"`
	WriteTimeout    time.Duration `mapstructure:"write-timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown-timeout"`
}

type GeminiConfig struct {
	APIKey       string  `mapstructure:"api-key"`
	APIKeyFile   string  `mapstructure:"api-key-file"`
	Model        string  `mapstructure:"model"`
	Temperature  float32 `mapstructure:"temperature"`
	BaseURL      string  `mapstructure:"base-url"`
	MaxLogLength int     `mapstructure:"max-log-length"`
}

type RenderConfig struct {
	// Scale is the upscaling factor against 72 DPI.
	Scale      float64 `mapstructure:"scale"`
	ScratchDir string  `mapstructure:"scratch-dir"`
}

type CacheConfig struct {
	URL      string        `mapstructure:"url"`
	Password string        `mapstructure:"password"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type LedgerConfig struct {
	DatabaseURL string `mapstructure:"database-url"`
}

type LoggingConfig struct {
	JSON  bool `mapstructure:"json"`
	Debug bool `mapstructure:"debug"`
}

// env keys kept compatible with the deployment's plain variable names
var envBindings = map[string]string{
	"gemini.api-key":       "GEMINI_API_KEY",
	"gemini.api-key-file":  "GEMINI_API_KEY_FILE",
	"gemini.model":         "GEMINI_MODEL",
	"gemini.base-url":      "GEMINI_BASE_URL",
	"server.addr":          "LISTEN_ADDR",
	"server.allow-origins": "CORS_ALLOW_ORIGINS",
	"render.scale":         "RENDER_SCALE",
	"render.scratch-dir":   "SCRATCH_DIR",
	"cache.url":            "VALKEY_URL",
	"cache.password":       "VALKEY_PASSWORD",
	"cache.ttl":            "CACHE_TTL",
	"ledger.database-url":  "DATABASE_URL",
	"logging.json":         "LOG_JSON",
	"logging.debug":        "LOG_DEBUG",
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.allow-origins", []string{"*"})
	v.SetDefault("server.body-limit", "25M")
	v.SetDefault("server.max-upload-bytes", 20<<20)
	v.SetDefault("server.read-timeout", 30*time.Second)
	v.SetDefault("server.write-timeout", 5*time.Minute)
	v.SetDefault("server.shutdown-timeout", 15*time.Second)

	v.SetDefault("gemini.model", "gemini-2.0-flash")
	v.SetDefault("gemini.temperature", 0)
	v.SetDefault("gemini.max-log-length", 200)

	v.SetDefault("render.scale", 10)

	v.SetDefault("cache.ttl", 24*time.Hour)
}

func BindEnv(v *viper.Viper) error {
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("binding %s environment variable: %w", env, err)
		}
	}
	return nil
}

// Load reads .env (if present), the optional config file and the environment.
// An empty cfgFile looks for resume-analyzer.yaml in the working directory and
// tolerates its absence.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env file: %w", err)
	}

	SetDefaults(v)

	if err := BindEnv(v); err != nil {
		return nil, err
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", cfgFile, err)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(AppName)
		v.SetConfigType("yaml")

		var notFound viper.ConfigFileNotFoundError
		if err := v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Render.Scale <= 0 {
		return fmt.Errorf("render.scale must be positive, got %v", c.Render.Scale)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max-upload-bytes must be positive, got %d", c.Server.MaxUploadBytes)
	}
	if c.Gemini.Temperature < 0 {
		return fmt.Errorf("gemini.temperature must not be negative, got %v", c.Gemini.Temperature)
	}

	origins := c.Server.AllowOrigins[:0]
	for _, o := range c.Server.AllowOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c.Server.AllowOrigins = origins

	return nil
}
