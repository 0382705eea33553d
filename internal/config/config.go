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

// Session backends.
const (
	SessionMemory = "memory"
	SessionRedis  = "redis"
)

// LLM providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderMock   = "mock"
)

// Config holds all service configuration. Keys match the environment
// variable names, lowercased.
type Config struct {
	Port           string `mapstructure:"port"`
	LogLevel       string `mapstructure:"log_level"`
	LogDevelopment bool   `mapstructure:"log_development"`
	AllowedOrigins string `mapstructure:"allowed_origins"`

	SessionBackend string        `mapstructure:"session_backend"`
	SessionTTL     time.Duration `mapstructure:"session_ttl"`
	RedisAddr      string        `mapstructure:"redis_addr"`
	RedisPassword  string        `mapstructure:"redis_password"`
	RedisDB        int           `mapstructure:"redis_db"`

	LLMProvider       string        `mapstructure:"llm_provider"`
	OpenAIAPIKey      string        `mapstructure:"openai_api_key"`
	OpenAIBaseURL     string        `mapstructure:"openai_base_url"`
	OpenAIModel       string        `mapstructure:"openai_model"`
	GeminiAPIKey      string        `mapstructure:"gemini_api_key"`
	GeminiModel       string        `mapstructure:"gemini_model"`
	GeminiBaseURL     string        `mapstructure:"gemini_base_url"`
	LLMTemperature    float64       `mapstructure:"llm_temperature"`
	LLMMaxTokens      int           `mapstructure:"llm_max_tokens"`
	GenerationTimeout time.Duration `mapstructure:"generation_timeout"`

	InitialCredits float64 `mapstructure:"initial_credits"`
	CostPerReport  float64 `mapstructure:"cost_per_report"`
	MaxUploadMB    int64   `mapstructure:"max_upload_mb"`

	MinioEndpoint  string `mapstructure:"minio_endpoint"`
	MinioAccessKey string `mapstructure:"minio_access_key"`
	MinioSecretKey string `mapstructure:"minio_secret_key"`
	MinioBucket    string `mapstructure:"minio_bucket"`
	MinioUseSSL    bool   `mapstructure:"minio_use_ssl"`
}

var defaults = map[string]any{
	"port":            "8080",
	"log_level":       "info",
	"log_development": false,
	"allowed_origins": "http://localhost:5173,http://localhost:3000",

	"session_backend": SessionMemory,
	"session_ttl":     "24h",
	"redis_addr":      "localhost:6379",
	"redis_password":  "",
	"redis_db":        0,

	"llm_provider":       ProviderOpenAI,
	"openai_api_key":     "",
	"openai_base_url":    "https://api.openai.com/v1",
	"openai_model":       "gpt-4o-mini",
	"gemini_api_key":     "",
	"gemini_model":       "gemini-2.0-flash",
	"gemini_base_url":    "",
	"llm_temperature":    0.1,
	"llm_max_tokens":     1500,
	"generation_timeout": "90s",

	"initial_credits": 100.0,
	"cost_per_report": 1.0,
	"max_upload_mb":   200,

	"minio_endpoint":   "",
	"minio_access_key": "",
	"minio_secret_key": "",
	"minio_bucket":     "research-exports",
	"minio_use_ssl":    false,
}

// Load reads configuration from defaults, an optional config file, a .env
// file in the working directory and the environment, in increasing order of
// precedence.
func Load(configFile string) (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.LLMProvider = strings.ToLower(strings.TrimSpace(cfg.LLMProvider))
	cfg.SessionBackend = strings.ToLower(strings.TrimSpace(cfg.SessionBackend))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.InitialCredits < 0 {
		errs = append(errs, errors.New("INITIAL_CREDITS must not be negative"))
	}
	if c.CostPerReport < 0 {
		errs = append(errs, errors.New("COST_PER_REPORT must not be negative"))
	}
	if c.MaxUploadMB <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_MB must be positive"))
	}
	switch c.SessionBackend {
	case SessionMemory, SessionRedis:
	default:
		errs = append(errs, fmt.Errorf("unknown SESSION_BACKEND %q", c.SessionBackend))
	}
	switch c.LLMProvider {
	case ProviderOpenAI, ProviderGemini, ProviderMock:
	default:
		errs = append(errs, fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider))
	}
	return errors.Join(errs...)
}

// Origins returns ALLOWED_ORIGINS as a list.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// MaxUploadBytes is MAX_UPLOAD_MB in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

// ArchiveEnabled reports whether exports are archived to object storage.
func (c *Config) ArchiveEnabled() bool {
	return c.MinioEndpoint != ""
}

// ProviderKey returns the API key of the configured provider.
func (c *Config) ProviderKey() string {
	switch c.LLMProvider {
	case ProviderOpenAI:
		return c.OpenAIAPIKey
	case ProviderGemini:
		return c.GeminiAPIKey
	default:
		return ""
	}
}
