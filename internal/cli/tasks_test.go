package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"piebuild"
	"piebuild/resource"
)

func newTestSession(t *testing.T) (*piebuild.Pie, *piebuild.Session) {
	t.Helper()
	p := piebuild.New()
	p.RegisterProvider("file", resource.NewFileSystem())
	s, err := p.NewSession()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close(); p.Close() })
	return p, s
}

func TestBuildRegistryAndCommandTask(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.txt")

	desc := &BuildDescription{Tasks: []TaskSpec{
		{ID: "echo", Kind: "command", Command: []string{"echo", "-n", "hi"}, Output: out},
	}}
	reg, err := BuildRegistry(desc)
	require.NoError(t, err)

	_, s := newTestSession(t)
	output, err := s.Require(reg.Get("echo"))
	require.NoError(t, err)
	co := output.(CommandOutput)
	require.Equal(t, "hi", co.Stdout)
	require.Equal(t, 0, co.ExitCode)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, "hi", string(data))
}

func TestCopyTask(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")
	require.NoError(t, os.WriteFile(src, []byte("payload"), 0o644))

	desc := &BuildDescription{Tasks: []TaskSpec{
		{ID: "copy", Kind: "copy", Src: src, Dst: dst},
	}}
	reg, err := BuildRegistry(desc)
	require.NoError(t, err)

	_, s := newTestSession(t)
	output, err := s.Require(reg.Get("copy"))
	require.NoError(t, err)
	require.Equal(t, dst, output)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, "payload", string(data))
}

func TestCopyTaskMissingSource(t *testing.T) {
	dir := t.TempDir()
	desc := &BuildDescription{Tasks: []TaskSpec{
		{ID: "copy", Kind: "copy", Src: filepath.Join(dir, "missing.txt"), Dst: filepath.Join(dir, "dst.txt")},
	}}
	reg, err := BuildRegistry(desc)
	require.NoError(t, err)

	_, s := newTestSession(t)
	_, err = s.Require(reg.Get("copy"))
	require.Error(t, err)
}

func TestCommandTaskRequiresUpstream(t *testing.T) {
	dir := t.TempDir()
	mid := filepath.Join(dir, "mid.txt")
	final := filepath.Join(dir, "final.txt")

	desc := &BuildDescription{Tasks: []TaskSpec{
		{ID: "first", Kind: "command", Command: []string{"echo", "-n", "first-out"}, Output: mid},
		{ID: "second", Kind: "command", Command: []string{"echo", "-n", "second-out"}, Output: final, Requires: []string{"first"}},
	}}
	reg, err := BuildRegistry(desc)
	require.NoError(t, err)

	_, s := newTestSession(t)
	_, err = s.Require(reg.Get("second"))
	require.NoError(t, err)

	data, err := os.ReadFile(mid)
	require.NoError(t, err)
	require.Equal(t, "first-out", string(data))
}
