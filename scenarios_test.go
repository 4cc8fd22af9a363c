package piebuild_test

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"piebuild"
	"piebuild/resource"
)

// readTask reads a file's contents (scenario A-D, H's READ task).
type readTask struct {
	id    string
	path  string
	execs *int
}

func (t *readTask) Key() piebuild.TaskKey {
	return piebuild.TaskKey{Kind: "test.read", ID: t.id}
}

func (t *readTask) Execute(ctx *piebuild.Context) (any, error) {
	*t.execs++
	handle, err := ctx.Read(resource.NewFile(t.path), resource.Modified{})
	if err != nil {
		return nil, err
	}
	of := handle.(*resource.OpenFile)
	if !of.Exists() {
		return "", nil
	}
	data, err := io.ReadAll(of.File)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// upperTask requires a readTask and uppercases its output (scenario D, H's
// UPPER task), via the default Equals checker so early cutoff applies.
type upperTask struct {
	id    string
	reads piebuild.Task
	execs *int
}

func (t *upperTask) Key() piebuild.TaskKey {
	return piebuild.TaskKey{Kind: "test.upper", ID: t.id}
}

func (t *upperTask) Execute(ctx *piebuild.Context) (any, error) {
	*t.execs++
	out, err := ctx.Require(t.reads, piebuild.Equals{})
	if err != nil {
		return nil, err
	}
	return strings.ToUpper(out.(string)), nil
}

// writeTask writes fixed content to a file (scenarios F, G).
type writeTask struct {
	id      string
	path    string
	content string
}

func (t *writeTask) Key() piebuild.TaskKey {
	return piebuild.TaskKey{Kind: "test.write", ID: t.id}
}

func (t *writeTask) Execute(ctx *piebuild.Context) (any, error) {
	err := ctx.Write(resource.NewFile(t.path), resource.Modified{}, func(w any) error {
		f := w.(*os.File)
		_, err := f.Write([]byte(t.content))
		return err
	})
	return t.content, err
}

// requireTask requires another task without touching any resource
// (scenario E's cyclic A/B pair).
type requireTask struct {
	id  string
	req piebuild.Task
}

func (t *requireTask) Key() piebuild.TaskKey {
	return piebuild.TaskKey{Kind: "test.require", ID: t.id}
}

func (t *requireTask) Execute(ctx *piebuild.Context) (any, error) {
	return ctx.Require(t.req, piebuild.Equals{})
}

func newEngine(t *testing.T) (*piebuild.Pie, *piebuild.Session) {
	t.Helper()
	p := piebuild.New()
	p.RegisterProvider("file", resource.NewFileSystem())
	s, err := p.NewSession()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close(); p.Close() })
	return p, s
}

// touch bumps path's mtime (and optionally rewrites its content), sleeping
// long enough that the new mtime is distinguishable on filesystems with
// coarse mtime resolution.
func touch(t *testing.T, path, content string) {
	t.Helper()
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// Scenario A: new task, new file.
func TestScenarioA_NewTaskNewFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(path, []byte("Hi"), 0o644))

	_, s := newEngine(t)
	execs := 0
	r := &readTask{id: "r", path: path, execs: &execs}

	out, err := s.Require(r)
	require.NoError(t, err)
	require.Equal(t, "Hi", out)
	require.Equal(t, 1, execs)
}

// Scenario B: reuse without touching the file.
func TestScenarioB_Reuse(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(path, []byte("Hi"), 0o644))

	_, s := newEngine(t)
	execs := 0
	r := &readTask{id: "r", path: path, execs: &execs}

	_, err := s.Require(r)
	require.NoError(t, err)
	out, err := s.Require(r)
	require.NoError(t, err)
	require.Equal(t, "Hi", out)
	require.Equal(t, 1, execs, "second require must not re-execute")
}

// Scenario C: invalidation by modification.
func TestScenarioC_InvalidationByModification(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(path, []byte("Hi"), 0o644))

	p, s := newEngine(t)
	execs := 0
	r := &readTask{id: "r", path: path, execs: &execs}

	_, err := s.Require(r)
	require.NoError(t, err)

	touch(t, path, "Hello")
	s.Close()
	s, err = p.NewSession()
	require.NoError(t, err)
	out, err := s.Require(r)
	require.NoError(t, err)
	require.Equal(t, "Hello", out)
	require.Equal(t, 2, execs)
}

// Scenario D: early cutoff.
func TestScenarioD_EarlyCutoff(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	p, s := newEngine(t)
	readExecs, upperExecs := 0, 0
	r := &readTask{id: "r", path: path, execs: &readExecs}
	u := &upperTask{id: "u", reads: r, execs: &upperExecs}

	out, err := s.Require(u)
	require.NoError(t, err)
	require.Equal(t, "HELLO", out)
	require.Equal(t, 1, readExecs)
	require.Equal(t, 1, upperExecs)

	touch(t, path, "hello") // same bytes, new mtime
	s.Close()
	s, err = p.NewSession()
	require.NoError(t, err)
	out, err = s.Require(u)
	require.NoError(t, err)
	require.Equal(t, "HELLO", out)
	require.Equal(t, 2, readExecs, "READ's file stamp changed, must re-execute")
	require.Equal(t, 1, upperExecs, "UPPER's Equals stamp over READ's output is unchanged")
}

// Scenario E: cycle.
func TestScenarioE_Cycle(t *testing.T) {
	_, s := newEngine(t)
	a := &requireTask{id: "a"}
	b := &requireTask{id: "b", req: a}
	a.req = b

	_, err := s.Require(a)
	require.Error(t, err)
	var soundnessErr *piebuild.SoundnessError
	require.True(t, errors.As(err, &soundnessErr))
	require.Equal(t, piebuild.SoundnessCycle, soundnessErr.Kind)
}

// Scenario F: hidden dependency on read.
func TestScenarioF_HiddenDependencyOnRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")

	_, s := newEngine(t)
	w := &writeTask{id: "w", path: path, content: "v1"}
	_, err := s.Require(w)
	require.NoError(t, err)

	execs := 0
	r := &readTask{id: "r-no-require", path: path, execs: &execs}
	_, err = s.Require(r)
	require.Error(t, err)
	var soundnessErr *piebuild.SoundnessError
	require.True(t, errors.As(err, &soundnessErr))
	require.Equal(t, piebuild.SoundnessHiddenDependencyOnRead, soundnessErr.Kind)
}

// Scenario G: overlap.
func TestScenarioG_Overlap(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")

	_, s := newEngine(t)
	w1 := &writeTask{id: "w1", path: path, content: "v1"}
	w2 := &writeTask{id: "w2", path: path, content: "v2"}

	_, err := s.Require(w1)
	require.NoError(t, err)

	_, err = s.Require(w2)
	require.Error(t, err)
	var soundnessErr *piebuild.SoundnessError
	require.True(t, errors.As(err, &soundnessErr))
	require.Equal(t, piebuild.SoundnessOverlappingWriter, soundnessErr.Kind)
}

// Scenario H: bottom-up propagation.
func TestScenarioH_BottomUpPropagation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	_, s := newEngine(t)
	readExecs, upperExecs := 0, 0
	r := &readTask{id: "r", path: path, execs: &readExecs}
	u := &upperTask{id: "u", reads: r, execs: &upperExecs}

	out, err := s.Require(u)
	require.NoError(t, err)
	require.Equal(t, "HELLO", out)

	touch(t, path, "world")
	require.NoError(t, s.Changed(resource.NewFile(path)))
	require.NoError(t, s.BuildAffected())

	require.Equal(t, 2, readExecs)
	require.Equal(t, 2, upperExecs)
}
