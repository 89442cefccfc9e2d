package model

import "time"

// Config is the full runtime configuration.
type Config struct {
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// LLMConfig selects and configures the model provider.
type LLMConfig struct {
	Provider     string `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama
	Model        string `yaml:"model" mapstructure:"model"`
	APIKey       string `yaml:"-" mapstructure:"-"` // Never written to config files
	BaseURL      string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	SystemPrompt string `yaml:"system_prompt,omitempty" mapstructure:"system_prompt"`
	UserPrompt   string `yaml:"user_prompt,omitempty" mapstructure:"user_prompt"`
	Timeout      int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens    int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// ConcurrencyConfig bounds the batch orchestrator.
type ConcurrencyConfig struct {
	// CruxWorkers is the in-flight ceiling for model calls. It is a fixed
	// constant rather than NumCPU: the provider rate-limits us, not the host.
	CruxWorkers       int     `yaml:"crux_workers" mapstructure:"crux_workers"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
}

// CacheConfig controls the in-memory model response cache.
type CacheConfig struct {
	Enabled         bool          `yaml:"enabled" mapstructure:"enabled"`
	TTL             time.Duration `yaml:"ttl" mapstructure:"ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" mapstructure:"cleanup_interval"`
}

// OutputConfig controls report rendering and log verbosity.
type OutputConfig struct {
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
	Format  string `yaml:"format" mapstructure:"format"` // json or yaml
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:  "openai",
			Model:     "gpt-4o-mini",
			Timeout:   60,
			MaxTokens: 2000,
		},
		Concurrency: ConcurrencyConfig{
			CruxWorkers:       6,
			RequestsPerSecond: 2,
			Burst:             6,
		},
		Cache: CacheConfig{
			Enabled:         true,
			TTL:             30 * time.Minute,
			CleanupInterval: 10 * time.Minute,
		},
		Output: OutputConfig{
			Format: "json",
		},
	}
}
