package piebuild

import (
	"fmt"
	"strings"
)

// SoundnessError is raised when the dependency graph the caller built is
// provably wrong: a cycle, a hidden dependency, or two tasks writing the
// same resource. These are programmer errors, not recoverable build
// failures (spec §7) — the engine detects them by panicking at the point
// of violation and Session recovers the panic at the session boundary,
// returning it here rather than letting it escape as a bare panic.
type SoundnessError struct {
	Kind    SoundnessKind
	Message string
}

// SoundnessKind distinguishes the four soundness violations the engine
// guards against.
type SoundnessKind int

const (
	SoundnessCycle SoundnessKind = iota
	SoundnessHiddenDependencyOnRead
	SoundnessHiddenDependencyOnWrite
	SoundnessOverlappingWriter
)

func (k SoundnessKind) String() string {
	switch k {
	case SoundnessCycle:
		return "cycle"
	case SoundnessHiddenDependencyOnRead:
		return "hidden dependency on read"
	case SoundnessHiddenDependencyOnWrite:
		return "hidden dependency on write"
	case SoundnessOverlappingWriter:
		return "overlapping writer"
	default:
		return "unknown soundness violation"
	}
}

func (e *SoundnessError) Error() string {
	return fmt.Sprintf("piebuild: %s: %s", e.Kind, e.Message)
}

func newCycleError(requiring Task, requested Task, stack []Task) *SoundnessError {
	names := make([]string, 0, len(stack)+1)
	for _, t := range stack {
		names = append(names, t.Key().String())
	}
	names = append(names, requiring.Key().String())
	return &SoundnessError{
		Kind: SoundnessCycle,
		Message: fmt.Sprintf("task %s would transitively require itself via %s (stack: %s)",
			requested.Key(), requiring.Key(), strings.Join(names, " -> ")),
	}
}

// newHiddenDependencyError reports that reader lacks a transitive require on
// writer despite a Reads/Writes edge existing between them and resource.
// reader and writer keep those roles regardless of which side's operation
// (the read or the write) is what triggered the check — spec §4.8 checks
// has_transitive_path(R, W) in both directions.
func newHiddenDependencyError(kind SoundnessKind, reader, writer Task, resource Resource) *SoundnessError {
	trigger := "read"
	if kind == SoundnessHiddenDependencyOnWrite {
		trigger = "write"
	}
	return &SoundnessError{
		Kind: kind,
		Message: fmt.Sprintf("task %s reads resource %s which task %s writes, without a transitive require of it (detected on %s)",
			reader.Key(), resource.Key(), writer.Key(), trigger),
	}
}

func newOverlapError(resource Resource, first, second Task) *SoundnessError {
	return &SoundnessError{
		Kind: SoundnessOverlappingWriter,
		Message: fmt.Sprintf("resource %s already has writer %s; task %s cannot also write it",
			resource.Key(), first.Key(), second.Key()),
	}
}

// CheckError is a non-fatal I/O error observed while checking a
// dependency's consistency. Such errors never abort the build: the
// dependency they belong to is simply treated as inconsistent so the
// owning task re-executes, and the error is retained on Session for later
// inspection.
type CheckError struct {
	Task Task
	Err  error
}

func (e CheckError) Error() string {
	return fmt.Sprintf("check error for task %s: %v", e.Task.Key(), e.Err)
}

// recoverSoundness converts a panic carrying a *SoundnessError into a
// returned error. Any other panic value is re-raised: only soundness
// violations are part of the engine's controlled-panic contract.
func recoverSoundness(errOut *error) {
	if r := recover(); r != nil {
		if se, ok := r.(*SoundnessError); ok {
			*errOut = se
			return
		}
		panic(r)
	}
}
