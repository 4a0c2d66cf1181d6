package prompt

import (
	"path/filepath"
	"strings"

	"testsmith/internal/config"
	"testsmith/pkg/types"
)

// maxFunctions caps how many detected function names are injected into a
// generation prompt; long files would otherwise drown the template.
const maxFunctions = 10

// Prompt is a system/user message pair ready for the LLM client.
type Prompt struct {
	System string
	User   string
}

// Fill substitutes {name} placeholders in template from vars. Doubled
// braces escape to literals, and unknown placeholders are left intact so
// user-authored templates fail soft.
func Fill(template string, vars map[string]string) string {
	var sb strings.Builder
	sb.Grow(len(template))

	for i := 0; i < len(template); i++ {
		c := template[i]
		switch c {
		case '{':
			if i+1 < len(template) && template[i+1] == '{' {
				sb.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(template[i:], '}')
			if end < 0 {
				sb.WriteByte(c)
				continue
			}
			name := template[i+1 : i+end]
			if val, ok := vars[name]; ok {
				sb.WriteString(val)
				i += end
				continue
			}
			sb.WriteByte(c)
		case '}':
			if i+1 < len(template) && template[i+1] == '}' {
				sb.WriteByte('}')
				i++
				continue
			}
			sb.WriteByte(c)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// BuildGenerate fills the generation rule for src's kind. ok is false when
// no rule exists for the kind; the caller skips the file.
func BuildGenerate(cfg *config.GenerateConfig, src *types.SourceFile) (Prompt, bool) {
	rule, ok := cfg.Rules[string(src.Kind)]
	if !ok || rule.PromptTemplate == "" {
		return Prompt{}, false
	}

	functions := src.Functions
	if len(functions) > maxFunctions {
		functions = functions[:maxFunctions]
	}

	user := Fill(rule.PromptTemplate, map[string]string{
		"source_code": src.Content,
		"file_name":   filepath.Base(src.Path),
		"classes":     strings.Join(src.Classes, ", "),
		"functions":   strings.Join(functions, ", "),
	})
	return Prompt{System: cfg.SystemPrompt, User: user}, true
}

// BuildRefine fills the refinement template for a generated test file.
func BuildRefine(cfg *config.RefineConfig, testPath, testCode string) Prompt {
	user := Fill(cfg.PromptTemplate, map[string]string{
		"test_code": testCode,
		"file_name": filepath.Base(testPath),
	})
	return Prompt{System: cfg.SystemPrompt, User: user}
}

// BuildFix fills the build-error resolution template.
func BuildFix(cfg *config.BuildErrorConfig, errorOutput, testDir string) Prompt {
	user := Fill(cfg.PromptTemplate, map[string]string{
		"error_output":   errorOutput,
		"test_directory": testDir,
	})
	return Prompt{System: cfg.SystemPrompt, User: user}
}
