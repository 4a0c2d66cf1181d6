package analyzer

import (
	"os"
	"regexp"
	"strings"

	"testsmith/pkg/types"
)

// C++ patterns
var (
	cppClass    = regexp.MustCompile(`(?m)class\s+(\w+)\s*[:{]`)
	cppStruct   = regexp.MustCompile(`(?m)^(\s*)struct\s+(\w+)\s*\{`)
	cppFunction = regexp.MustCompile(`(?m)\w+\s+(\w+)\s*\([^)]*\)\s*(?:const\s*)?[{;]`)
	cppInclude  = regexp.MustCompile(`#include\s*[<"](.*?)[>"]`)
)

// Control-flow keywords the function pattern also matches.
var notFunctions = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true,
	"return": true, "catch": true, "sizeof": true,
}

// Analyze reads a C++ source file and extracts the metadata used for
// prompt building: class names, function names, includes, and the file
// kind inferred from its path.
func Analyze(path string) (*types.SourceFile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return AnalyzeContent(path, string(content)), nil
}

// AnalyzeContent extracts symbols from already-loaded source text.
func AnalyzeContent(path, content string) *types.SourceFile {
	src := &types.SourceFile{
		Path:    path,
		Kind:    ClassifyPath(path),
		Content: content,
	}

	for _, m := range cppClass.FindAllStringSubmatch(content, -1) {
		src.Classes = append(src.Classes, m[1])
	}
	for _, m := range cppStruct.FindAllStringSubmatch(content, -1) {
		src.Classes = append(src.Classes, m[2])
	}
	seen := make(map[string]bool)
	for _, m := range cppFunction.FindAllStringSubmatch(content, -1) {
		name := m[1]
		if notFunctions[name] || seen[name] {
			continue
		}
		seen[name] = true
		src.Functions = append(src.Functions, name)
	}
	for _, m := range cppInclude.FindAllStringSubmatch(content, -1) {
		src.Includes = append(src.Includes, m[1])
	}

	return src
}

// ClassifyPath maps a source path to its Drogon file kind. Controllers are
// named *Controller*; models and plugins live in their conventional
// directories.
func ClassifyPath(path string) types.FileKind {
	norm := strings.ReplaceAll(path, "\\", "/")
	switch {
	case strings.Contains(norm, "Controller"):
		return types.KindController
	case containsSegment(norm, "models"):
		return types.KindModel
	case containsSegment(norm, "plugins"):
		return types.KindPlugin
	default:
		return types.KindUnknown
	}
}

func containsSegment(path, seg string) bool {
	for _, p := range strings.Split(path, "/") {
		if p == seg {
			return true
		}
	}
	return false
}
