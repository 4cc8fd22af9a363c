package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "build.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigValid(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
tasks:
  - id: compile
    kind: command
    command: ["echo", "hi"]
  - id: ship
    kind: copy
    src: a.txt
    dst: b.txt
    requires: [compile]
`)
	desc, raw, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotEmpty(t, raw)
	require.Len(t, desc.Tasks, 2)
	require.Equal(t, "compile", desc.Tasks[0].ID)
}

func TestLoadConfigDuplicateID(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
tasks:
  - id: a
    kind: command
    command: ["true"]
  - id: a
    kind: command
    command: ["true"]
`)
	_, _, err := LoadConfig(path)
	require.Error(t, err)
}

func TestLoadConfigUnknownRequires(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
tasks:
  - id: a
    kind: command
    command: ["true"]
    requires: [nope]
`)
	_, _, err := LoadConfig(path)
	require.Error(t, err)
}

func TestLoadConfigMissingCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
tasks:
  - id: a
    kind: command
`)
	_, _, err := LoadConfig(path)
	require.Error(t, err)
}

func TestLoadConfigUnknownKind(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
tasks:
  - id: a
    kind: bogus
`)
	_, _, err := LoadConfig(path)
	require.Error(t, err)
}

func TestWatchedPaths(t *testing.T) {
	desc := &BuildDescription{Tasks: []TaskSpec{
		{ID: "a", Kind: "command", Command: []string{"true"}, Reads: []string{"x.txt", "y.txt"}},
		{ID: "b", Kind: "copy", Src: "y.txt", Dst: "z.txt"},
	}}
	paths := desc.WatchedPaths()
	require.ElementsMatch(t, []string{"x.txt", "y.txt"}, paths)
}
