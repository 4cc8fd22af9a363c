// Package piebuild is a programmatic incremental build engine: it executes
// user-defined computations ("tasks") with dynamic, self-describing
// dependencies, re-executing only those tasks whose dependencies have
// become inconsistent since the previous build.
//
// Unlike file-based build tools, dependencies are discovered during task
// execution rather than declared statically — a task may inspect an
// intermediate result before deciding what else it needs. The engine is
// organized around five capabilities:
//
//   - Task: user code with a deterministic output (package-level Task).
//   - Resource: externally mutable state addressed by a key, e.g. a file
//     (see package resource for built-in implementations).
//   - Checker: produces and compares stamps of tasks' outputs or
//     resources' state, to decide whether a dependency is still
//     consistent (OutputChecker, ResourceChecker).
//   - Tracker: an observer of build lifecycle events (see package
//     tracker).
//   - Context: what a running task uses to declare dependencies
//     (Require, Read, Write).
//
// A Pie is the long-lived engine façade; a Session is a single build
// transaction opened on it, driven either top-down (Session.Require,
// demand-driven) or bottom-up (Session.Changed + Session.BuildAffected,
// change-driven).
package piebuild
