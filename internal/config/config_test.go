package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:11434", cfg.LLM.Host)
	assert.Equal(t, "llama3.1", cfg.LLM.Model)
	assert.Equal(t, 0.3, cfg.LLM.Temperature)
	assert.Equal(t, 0.9, cfg.LLM.TopP)
	assert.Equal(t, 4000, cfg.LLM.MaxTokens)
	assert.Equal(t, 120*time.Second, cfg.LLM.TimeoutDuration())
	assert.Equal(t, 2, cfg.Build.MaxFixAttempts)
}

func TestLoadSettingsFile(t *testing.T) {
	dir := t.TempDir()
	data := `
llm:
  model: codellama
  timeout: 30s
build:
  max_fix_attempts: 5
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, SettingsFile), []byte(data), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "codellama", cfg.LLM.Model)
	assert.Equal(t, 30*time.Second, cfg.LLM.TimeoutDuration())
	assert.Equal(t, 5, cfg.Build.MaxFixAttempts)
	// Untouched fields keep defaults.
	assert.Equal(t, "http://localhost:11434", cfg.LLM.Host)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("OLLAMA_HOST", "http://10.0.0.5:11434")
	t.Setenv("TESTSMITH_MODEL", "mistral")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "http://10.0.0.5:11434", cfg.LLM.Host)
	assert.Equal(t, "mistral", cfg.LLM.Model)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, SettingsFile), []byte("llm: ["), 0644))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestTimeoutFallback(t *testing.T) {
	l := LLMConfig{Timeout: "not-a-duration"}
	assert.Equal(t, 120*time.Second, l.TimeoutDuration())

	l = LLMConfig{Timeout: "-5s"}
	assert.Equal(t, 120*time.Second, l.TimeoutDuration())
}

func TestLoadGenerateMissingIsFatal(t *testing.T) {
	_, err := LoadGenerate(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestLoadGenerateRules(t *testing.T) {
	dir := t.TempDir()
	data := `
system_prompt: You are a C++ test engineer.
rules:
  controller:
    prompt_template: "Test {file_name} with classes {classes}"
  model:
    prompt_template: "Model tests for {file_name}"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, GenerateFile), []byte(data), 0644))

	cfg, err := LoadGenerate(dir)
	require.NoError(t, err)

	assert.Equal(t, "You are a C++ test engineer.", cfg.SystemPrompt)
	require.Len(t, cfg.Rules, 2)
	assert.Equal(t, "Test {file_name} with classes {classes}", cfg.Rules["controller"].PromptTemplate)
}

func TestLoadRefineAndBuildError(t *testing.T) {
	dir := t.TempDir()
	refine := "system_prompt: refine\nprompt_template: \"Refine {file_name}\"\n"
	fix := "system_prompt: fix\nprompt_template: \"Fix {error_output} in {test_directory}\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, RefineFile), []byte(refine), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, BuildErrorFile), []byte(fix), 0644))

	r, err := LoadRefine(dir)
	require.NoError(t, err)
	assert.Equal(t, "Refine {file_name}", r.PromptTemplate)

	b, err := LoadBuildError(dir)
	require.NoError(t, err)
	assert.Equal(t, "fix", b.SystemPrompt)
}
