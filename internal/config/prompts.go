package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Prompt template file names. Each command loads what it needs; a missing
// file is fatal for that command.
const (
	GenerateFile   = "generate_tests.yaml"
	RefineFile     = "refine_tests.yaml"
	BuildErrorFile = "build_error_resolution.yaml"
)

// GenerateConfig mirrors generate_tests.yaml: a shared system prompt plus
// one prompt template per file kind (controller, model, plugin).
type GenerateConfig struct {
	SystemPrompt string                  `yaml:"system_prompt"`
	Rules        map[string]GenerateRule `yaml:"rules"`
}

// GenerateRule is the per-kind generation rule.
type GenerateRule struct {
	PromptTemplate string `yaml:"prompt_template"`
}

// RefineConfig mirrors refine_tests.yaml.
type RefineConfig struct {
	SystemPrompt   string `yaml:"system_prompt"`
	PromptTemplate string `yaml:"prompt_template"`
}

// BuildErrorConfig mirrors build_error_resolution.yaml.
type BuildErrorConfig struct {
	SystemPrompt   string `yaml:"system_prompt"`
	PromptTemplate string `yaml:"prompt_template"`
}

// LoadGenerate reads generate_tests.yaml from dir.
func LoadGenerate(dir string) (*GenerateConfig, error) {
	var cfg GenerateConfig
	if err := loadYAML(filepath.Join(dir, GenerateFile), &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadRefine reads refine_tests.yaml from dir.
func LoadRefine(dir string) (*RefineConfig, error) {
	var cfg RefineConfig
	if err := loadYAML(filepath.Join(dir, RefineFile), &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadBuildError reads build_error_resolution.yaml from dir.
func LoadBuildError(dir string) (*BuildErrorConfig, error) {
	var cfg BuildErrorConfig
	if err := loadYAML(filepath.Join(dir, BuildErrorFile), &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config file not found: %w", err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}
