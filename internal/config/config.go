package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// SettingsFile is the optional tool settings file looked up in the
// config directory. Prompt templates live in separate files (prompts.go).
const SettingsFile = "testsmith.yaml"

// Config holds all testsmith settings.
type Config struct {
	LLM     LLMConfig     `yaml:"llm"`
	Build   BuildConfig   `yaml:"build"`
	History HistoryConfig `yaml:"history"`
}

// LLMConfig configures the local inference endpoint.
type LLMConfig struct {
	Host        string  `yaml:"host"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	TopP        float64 `yaml:"top_p"`
	MaxTokens   int     `yaml:"max_tokens"`
	Timeout     string  `yaml:"timeout"`
}

// TimeoutDuration parses the configured timeout, falling back to the
// default when the string is empty or malformed.
func (l LLMConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(l.Timeout)
	if err != nil || d <= 0 {
		return 120 * time.Second
	}
	return d
}

// BuildConfig configures the cmake/ctest driver.
type BuildConfig struct {
	// MaxFixAttempts bounds total build attempts when the LLM error
	// loop is enabled. 2 means one fix round after the first failure.
	MaxFixAttempts int `yaml:"max_fix_attempts"`
}

// HistoryConfig configures the run history store.
type HistoryConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Host:        "http://localhost:11434",
			Model:       "llama3.1",
			Temperature: 0.3,
			TopP:        0.9,
			MaxTokens:   4000,
			Timeout:     "120s",
		},
		Build: BuildConfig{
			MaxFixAttempts: 2,
		},
		History: HistoryConfig{
			DatabasePath: filepath.Join(".testsmith", "history.db"),
		},
	}
}

// Load reads testsmith.yaml from dir when present and applies environment
// overrides. A missing settings file is not an error; defaults apply.
func Load(dir string) (*Config, error) {
	cfg := Default()

	path := filepath.Join(dir, SettingsFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	applyEnv(cfg)

	if cfg.Build.MaxFixAttempts < 1 {
		cfg.Build.MaxFixAttempts = 1
	}
	return cfg, nil
}

// applyEnv layers environment overrides on top of file settings.
func applyEnv(cfg *Config) {
	if v := os.Getenv("OLLAMA_HOST"); v != "" {
		cfg.LLM.Host = v
	}
	if v := os.Getenv("TESTSMITH_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
}
