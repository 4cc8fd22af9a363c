package cli

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"piebuild"
	"piebuild/internal/runstate"
	"piebuild/resource"
	"piebuild/tracker"
)

// Options configures a single CLI invocation, gathered from cobra flags by
// cmd/piebuild before any engine code runs — the same "canonicalize inputs
// at the boundary" discipline the teacher's own invocation parser followed.
type Options struct {
	File         string
	Targets      []string
	LogLevel     string
	LogJSON      bool
	RunStatePath string
	Metrics      *Metrics
}

// Metrics carries an already-constructed metrics tracker (built by
// cmd/piebuild over its own Prometheus registry), so cmd/piebuild can decide
// whether to also serve /metrics without this package importing net/http.
type Metrics struct {
	Tracker piebuild.Tracker
}

// Result summarizes a completed build for cmd/piebuild to report.
type Result struct {
	Outputs     map[string]any
	CheckErrors []string
}

func newLogger(opts Options) zerolog.Logger {
	level, err := zerolog.ParseLevel(opts.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	var w io.Writer = os.Stderr
	if !opts.LogJSON {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func buildEngine(opts Options) *piebuild.Pie {
	trackers := []piebuild.Tracker{tracker.NewLogging(newLogger(opts))}
	if opts.Metrics != nil {
		trackers = append(trackers, opts.Metrics.Tracker)
	}
	pie := piebuild.New(piebuild.WithTracker(tracker.New(trackers...)))
	pie.RegisterProvider("file", resource.NewFileSystem())
	return pie
}

// targetTasks resolves opts.Targets to Task instances, defaulting to every
// task in the description (in file order) when none are named.
func targetTasks(desc *BuildDescription, reg *Registry, opts Options) ([]piebuild.Task, error) {
	if len(opts.Targets) == 0 {
		return reg.Tasks(desc), nil
	}
	out := make([]piebuild.Task, 0, len(opts.Targets))
	for _, id := range opts.Targets {
		t := reg.Get(id)
		if t == nil {
			return nil, fmt.Errorf("cli: unknown target task %q", id)
		}
		out = append(out, t)
	}
	return out, nil
}

// RunBuild loads the build description at opts.File and runs a top-down
// build (spec §4.6) of its target tasks.
func RunBuild(opts Options) (*Result, error) {
	desc, raw, err := LoadConfig(opts.File)
	if err != nil {
		return nil, err
	}
	reg, err := BuildRegistry(desc)
	if err != nil {
		return nil, err
	}
	targets, err := targetTasks(desc, reg, opts)
	if err != nil {
		return nil, err
	}

	pie := buildEngine(opts)
	defer pie.Close()
	session, err := pie.NewSession()
	if err != nil {
		return nil, err
	}
	defer session.Close()

	result := &Result{Outputs: make(map[string]any, len(targets))}
	for i, t := range targets {
		output, err := session.Require(t)
		if err != nil {
			return nil, fmt.Errorf("cli: build failed on %s: %w", t.Key(), err)
		}
		id := t.Key().ID
		if i < len(opts.Targets) {
			id = opts.Targets[i]
		}
		result.Outputs[id] = output
	}
	result.CheckErrors = checkErrorStrings(session)

	if opts.RunStatePath != "" {
		if err := recordRun(opts.RunStatePath, raw, result.CheckErrors); err != nil {
			return result, err
		}
	}
	return result, nil
}

func graphHash(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

func recordRun(path string, raw []byte, checkErrors []string) error {
	store, err := runstate.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()
	_, err = store.RecordRun(graphHash(raw), checkErrors)
	return err
}

// WarnAboutPriorRun reports the previous invocation's check errors, if the
// run-state store at path has one recorded, so `piebuild watch` can surface
// the non-fatal check errors a previous run already saw before starting a
// new one. A run that failed (including on a soundness error) records
// nothing.
func WarnAboutPriorRun(path string) ([]string, error) {
	store, err := runstate.Open(path)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	rec, ok, err := store.LastRun()
	if err != nil || !ok {
		return nil, err
	}
	return rec.CheckErrors, nil
}
