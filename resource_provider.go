package piebuild

// Provider is the pluggable capability backing a family of resources
// sharing a Kind (see ResourceKey): it knows how to open a reader or
// writer handle for a resource addressed by key. The built-in
// implementations (filesystem, shared map) live in package resource.
type Provider interface {
	// Reader opens a handle for reading the resource at key. Its
	// concrete type is provider-specific (e.g. *resource.OpenFile for
	// the filesystem provider); callers and checkers type-assert it.
	Reader(key ResourceKey) (any, error)
	// Writer opens a handle for writing the resource at key, held only
	// for the duration of the caller's writer function.
	Writer(key ResourceKey) (any, error)
}
