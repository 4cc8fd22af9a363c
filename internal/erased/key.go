// Package erased provides the comparable identity types that let a single
// store hold tasks and resources of many unrelated Go types.
//
// Go has no generic Eq/Hash/Clone derive and no trait objects, so rather
// than erasing the task or resource value itself, piebuild asks each task
// and resource to name its own identity as a comparable key. The key, not
// the value, is what the store interns and hashes; the value is retrieved
// by the caller when it needs to execute or type-assert it back.
package erased

// TaskKey identifies a Task across its lifetime in a store. Kind is
// typically the task's Go type name; ID distinguishes instances of that
// type. Two tasks with equal keys are treated as the same node.
type TaskKey struct {
	Kind string
	ID   string
}

// ResourceKey identifies a Resource the same way TaskKey identifies a Task.
type ResourceKey struct {
	Kind string
	ID   string
}

func (k TaskKey) String() string     { return k.Kind + ":" + k.ID }
func (k ResourceKey) String() string { return k.Kind + ":" + k.ID }
