// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LLM providers accepted by llm.provider.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderSample    = "sample"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Auth    AuthConfig    `mapstructure:"auth"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Fetch   FetchConfig   `mapstructure:"fetch"`
	Crawl   CrawlConfig   `mapstructure:"crawl"`
	LLM     LLMConfig     `mapstructure:"llm"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port                  int `mapstructure:"port"`
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds"`
}

// AuthConfig defines API authentication toggles.
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
}

// HTTPConfig configures outbound API clients.
type HTTPConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// FetchConfig governs the direct fetch path.
type FetchConfig struct {
	UserAgent      string  `mapstructure:"user_agent"`
	Accept         string  `mapstructure:"accept"`
	AcceptLanguage string  `mapstructure:"accept_language"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	MaxBodyBytes   int     `mapstructure:"max_body_bytes"`
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// CrawlConfig configures the crawl service client and orchestrator.
type CrawlConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	// TimeoutSeconds bounds a whole crawl job; zero leaves only the poll budget.
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// LLMConfig configures the report synthesizer's model.
type LLMConfig struct {
	Provider    string  `mapstructure:"provider"`
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// Load builds a Config from disk/environment and validates it.
func Load(path string) (Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Read builds a Config from disk/environment without validation.
func Read(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("REPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	if err := bindProviderEnv(v); err != nil {
		return Config{}, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.request_timeout_seconds", 120)
	v.SetDefault("auth.enabled", false)
	v.SetDefault("http.timeout_seconds", 30)
	v.SetDefault("fetch.user_agent", "site-report/0.1 (+https://github.com/JakeFAU/site-report)")
	v.SetDefault("fetch.accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	v.SetDefault("fetch.accept_language", "en-US,en;q=0.9")
	v.SetDefault("fetch.timeout_seconds", 15)
	v.SetDefault("fetch.max_body_bytes", 5*1024*1024)
	v.SetDefault("fetch.rate_limit_rps", 1.0)
	v.SetDefault("fetch.rate_limit_burst", 2)
	v.SetDefault("crawl.base_url", "https://api.firecrawl.dev")
	v.SetDefault("crawl.timeout_seconds", 0)
	v.SetDefault("llm.provider", ProviderOpenAI)
	v.SetDefault("llm.model", "gpt-4")
	v.SetDefault("llm.max_tokens", 2000)
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("logging.development", true)
}

// bindProviderEnv lets the vendors' conventional variables supply the keys.
func bindProviderEnv(v *viper.Viper) error {
	if err := v.BindEnv("llm.api_key", "REPORT_LLM_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY"); err != nil {
		return fmt.Errorf("bind llm.api_key: %w", err)
	}
	if err := v.BindEnv("crawl.api_key", "REPORT_CRAWL_API_KEY", "FIRECRAWL_API_KEY"); err != nil {
		return fmt.Errorf("bind crawl.api_key: %w", err)
	}
	return nil
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Server.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("server.request_timeout_seconds must be > 0")
	}
	if c.Auth.Enabled && c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key must be set when auth is enabled")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if err := c.ValidateFetch(); err != nil {
		return err
	}
	if err := c.ValidateCrawl(); err != nil {
		return err
	}
	return c.ValidateLLM()
}

// ValidateFetch checks only what the direct fetch path needs.
func (c Config) ValidateFetch() error {
	if c.Fetch.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.timeout_seconds must be > 0")
	}
	if c.Fetch.RateLimitRPS < 0 {
		return fmt.Errorf("fetch.rate_limit_rps must be >= 0")
	}
	return nil
}

// ValidateCrawl checks the crawl service settings.
func (c Config) ValidateCrawl() error {
	if c.Crawl.APIKey == "" {
		return fmt.Errorf("crawl.api_key must be set (or FIRECRAWL_API_KEY)")
	}
	if c.Crawl.TimeoutSeconds < 0 {
		return fmt.Errorf("crawl.timeout_seconds must be >= 0")
	}
	return nil
}

// ValidateLLM checks the language model settings.
func (c Config) ValidateLLM() error {
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderAnthropic:
		if c.LLM.APIKey == "" {
			return fmt.Errorf("llm.api_key must be set (or OPENAI_API_KEY) for provider %q", c.LLM.Provider)
		}
	case ProviderSample:
	default:
		return fmt.Errorf("llm.provider %q is not one of openai, anthropic, sample", c.LLM.Provider)
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("llm.max_tokens must be > 0")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be within [0, 2]")
	}
	return nil
}

// FetchHeaders are the request headers of direct fetches; empty values are omitted.
func (c Config) FetchHeaders() http.Header {
	headers := http.Header{}
	if c.Fetch.Accept != "" {
		headers.Set("Accept", c.Fetch.Accept)
	}
	if c.Fetch.AcceptLanguage != "" {
		headers.Set("Accept-Language", c.Fetch.AcceptLanguage)
	}
	return headers
}

// RequestTimeout is the per-request budget of the HTTP API.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSeconds) * time.Second
}

// FetchTimeout is the direct fetch timeout.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// ClientTimeout is the timeout of outbound API clients.
func (c Config) ClientTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// CrawlTimeout is the optional wall clock bound of a crawl job.
func (c Config) CrawlTimeout() time.Duration {
	return time.Duration(c.Crawl.TimeoutSeconds) * time.Second
}
