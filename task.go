package piebuild

import "piebuild/internal/erased"

// TaskKey identifies a Task across the lifetime of a Pie. Two tasks with
// equal keys are treated as the same graph node: the second Require simply
// reuses the first's interned node.
type TaskKey = erased.TaskKey

// ResourceKey identifies a Resource the same way TaskKey identifies a Task.
type ResourceKey = erased.ResourceKey

// Task is a unit of computation with a deterministic output. Implementations
// are supplied by engine users; the engine only ever invokes them through
// Execute, never inspects them otherwise.
type Task interface {
	// Key returns this task's identity. It must be stable for the
	// lifetime of the task and must not depend on anything the task
	// reads or writes.
	Key() TaskKey

	// Execute runs the task's body. It may call back into ctx to declare
	// dependencies on other tasks or resources before returning its
	// output.
	Execute(ctx *Context) (any, error)
}

// Resource is externally mutable state addressable by a key: a file path,
// a map entry, or anything else a Provider understands.
type Resource interface {
	Key() ResourceKey
}
