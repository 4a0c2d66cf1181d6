package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, paths ...string) {
	t.Helper()
	for _, p := range paths {
		full := filepath.Join(root, p)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte("// stub\n"), 0644))
	}
}

func TestCollectWalksSourceExtensions(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir,
		"controllers/UserController.cc",
		"models/User.cpp",
		"plugins/Cache.cxx",
		"main.cc",
		"README.md",
		"include/User.h",
	)

	files, err := Collect(dir)
	require.NoError(t, err)

	var rel []string
	for _, f := range files {
		r, _ := filepath.Rel(dir, f)
		rel = append(rel, r)
	}
	assert.ElementsMatch(t, []string{
		"controllers/UserController.cc",
		"models/User.cpp",
		"plugins/Cache.cxx",
		"main.cc",
	}, rel)
}

func TestCollectIsSorted(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "z.cc", "a.cc", "m.cc")

	files, err := Collect(dir)
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.True(t, files[0] < files[1] && files[1] < files[2])
}

func TestCollectSingleFilePassthrough(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "Foo.cc")
	path := filepath.Join(dir, "Foo.cc")

	files, err := Collect(path)
	require.NoError(t, err)
	assert.Equal(t, []string{path}, files)
}

func TestCollectExcludesOutputDirs(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir,
		"src/App.cc",
		"tests/AppTest.cc",
		"build/generated.cc",
	)

	files, err := Collect(dir, filepath.Join(dir, "tests"), filepath.Join(dir, "build"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Contains(t, files[0], "App.cc")
}

func TestCollectSkipsHiddenDirs(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "src/App.cc", ".cache/tmp.cc")

	files, err := Collect(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
}

func TestCollectMissingPath(t *testing.T) {
	_, err := Collect(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
