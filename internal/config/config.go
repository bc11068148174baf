package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig    `yaml:"store" mapstructure:"store"`
	OpenAI     ProviderConfig `yaml:"openai" mapstructure:"openai"`
	Anthropic  ProviderConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Gemini     ProviderConfig `yaml:"gemini" mapstructure:"gemini"`
	Perplexity ProviderConfig `yaml:"perplexity" mapstructure:"perplexity"`
	Leads      LeadsConfig    `yaml:"leads" mapstructure:"leads"`
	Redact     RedactConfig   `yaml:"redact" mapstructure:"redact"`
	Retry      RetryConfig    `yaml:"retry" mapstructure:"retry"`
	Batch      BatchConfig    `yaml:"batch" mapstructure:"batch"`
	Server     ServerConfig   `yaml:"server" mapstructure:"server"`
	Log        LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the session store backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// ProviderConfig holds one provider's credential and tuning.
type ProviderConfig struct {
	Key   string  `yaml:"key" mapstructure:"key"`
	Model string  `yaml:"model" mapstructure:"model"`
	RPS   float64 `yaml:"rps" mapstructure:"rps"`
	Burst int     `yaml:"burst" mapstructure:"burst"`
}

// LeadsConfig configures the sales-opportunities pipeline.
type LeadsConfig struct {
	ProfileProvider string `yaml:"profile_provider" mapstructure:"profile_provider"`
}

// RedactConfig configures the redaction pipeline.
type RedactConfig struct {
	TermsPath string `yaml:"terms_path" mapstructure:"terms_path"`
	LiveProbe bool   `yaml:"live_probe" mapstructure:"live_probe"`
	Verify    bool   `yaml:"verify" mapstructure:"verify"`
}

// RetryConfig configures provider call retries.
type RetryConfig struct {
	MaxAttempts   int `yaml:"max_attempts" mapstructure:"max_attempts"`
	BaseDelaySecs int `yaml:"base_delay_secs" mapstructure:"base_delay_secs"`
}

// BatchConfig configures batched upload processing.
type BatchConfig struct {
	Size int `yaml:"size" mapstructure:"size"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ProviderKeys returns the credential map keyed by provider name.
func (c *Config) ProviderKeys() map[string]string {
	return map[string]string{
		"openai":     c.OpenAI.Key,
		"anthropic":  c.Anthropic.Key,
		"gemini":     c.Gemini.Key,
		"perplexity": c.Perplexity.Key,
	}
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("RESEARCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "research.db")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("openai.model", "gpt-4o")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("gemini.model", "gemini-2.0-flash")
	v.SetDefault("perplexity.model", "sonar-deep-research")
	v.SetDefault("leads.profile_provider", "anthropic")
	v.SetDefault("redact.live_probe", false)
	v.SetDefault("redact.verify", true)
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.base_delay_secs", 1)
	v.SetDefault("batch.size", 10)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
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
