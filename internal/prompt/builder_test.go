package prompt

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"testsmith/internal/config"
	"testsmith/pkg/types"
)

func TestFill(t *testing.T) {
	vars := map[string]string{"name": "Foo", "kind": "controller"}

	assert.Equal(t, "test Foo as controller", Fill("test {name} as {kind}", vars))
	assert.Equal(t, "no placeholders", Fill("no placeholders", vars))
	assert.Equal(t, "", Fill("", vars))
}

func TestFillEscapedBraces(t *testing.T) {
	got := Fill("TEST_F({name}) {{ body }}", map[string]string{"name": "Foo"})
	assert.Equal(t, "TEST_F(Foo) { body }", got)
}

func TestFillUnknownPlaceholderLeftIntact(t *testing.T) {
	got := Fill("keep {unknown} here, fill {name}", map[string]string{"name": "X"})
	assert.Equal(t, "keep {unknown} here, fill X", got)
}

func TestFillUnterminatedBrace(t *testing.T) {
	got := Fill("dangling {name", map[string]string{"name": "X"})
	assert.Equal(t, "dangling {name", got)
}

func TestBuildGenerateDeterministic(t *testing.T) {
	cfg := &config.GenerateConfig{
		SystemPrompt: "sys",
		Rules: map[string]config.GenerateRule{
			"controller": {PromptTemplate: "file={file_name} classes={classes} functions={functions}\n{source_code}"},
		},
	}
	src := &types.SourceFile{
		Path:      "src/controllers/UserController.cc",
		Kind:      types.KindController,
		Content:   "class UserController {};",
		Classes:   []string{"UserController"},
		Functions: []string{"getUser", "createUser"},
	}

	p1, ok := BuildGenerate(cfg, src)
	require.True(t, ok)
	p2, _ := BuildGenerate(cfg, src)

	assert.Equal(t, p1, p2, "prompt must be a pure function of its inputs")
	assert.Equal(t, "sys", p1.System)
	assert.Equal(t, "file=UserController.cc classes=UserController functions=getUser, createUser\nclass UserController {};", p1.User)
}

func TestBuildGenerateCapsFunctions(t *testing.T) {
	cfg := &config.GenerateConfig{
		Rules: map[string]config.GenerateRule{
			"model": {PromptTemplate: "{functions}"},
		},
	}
	var fns []string
	for i := 0; i < 25; i++ {
		fns = append(fns, fmt.Sprintf("fn%02d", i))
	}
	src := &types.SourceFile{Path: "models/M.cc", Kind: types.KindModel, Functions: fns}

	p, ok := BuildGenerate(cfg, src)
	require.True(t, ok)
	assert.Len(t, strings.Split(p.User, ", "), 10)
	assert.Contains(t, p.User, "fn09")
	assert.NotContains(t, p.User, "fn10")
}

func TestBuildGenerateMissingRule(t *testing.T) {
	cfg := &config.GenerateConfig{Rules: map[string]config.GenerateRule{}}
	src := &types.SourceFile{Path: "util/x.cc", Kind: types.KindUnknown}

	_, ok := BuildGenerate(cfg, src)
	assert.False(t, ok)
}

func TestBuildRefine(t *testing.T) {
	cfg := &config.RefineConfig{
		SystemPrompt:   "refine-sys",
		PromptTemplate: "improve {file_name}:\n{test_code}",
	}

	p := BuildRefine(cfg, "tests/FooTest.cc", "TEST(Foo, Basic) {}")
	assert.Equal(t, "refine-sys", p.System)
	assert.Equal(t, "improve FooTest.cc:\nTEST(Foo, Basic) {}", p.User)
}

func TestBuildFix(t *testing.T) {
	cfg := &config.BuildErrorConfig{
		SystemPrompt:   "fix-sys",
		PromptTemplate: "errors in {test_directory}:\n{error_output}",
	}

	p := BuildFix(cfg, "undefined reference to `main'", "tests")
	assert.Equal(t, "fix-sys", p.System)
	assert.Contains(t, p.User, "errors in tests:")
	assert.Contains(t, p.User, "undefined reference")
}
