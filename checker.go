package piebuild

import "reflect"

// Stamp is a compact, comparable snapshot of a task's output or a
// resource's state, produced and compared by a checker. Its concrete type
// is whatever the checker that produced it chooses.
type Stamp = any

// Inconsistency describes why a dependency was found stale. It carries
// enough structure for a caller (test, CLI, tracker) to explain *why* a
// task was considered out of date, not just that it was.
type Inconsistency struct {
	// Reason is a short, human-readable description, e.g. "file modified"
	// or "output changed".
	Reason string
	// Prior is the stamp that was recorded when the dependency was
	// established.
	Prior Stamp
	// Current is the stamp observed now, or nil if it could not be
	// computed (see the non-fatal I/O error path).
	Current Stamp
}

// OutputChecker produces and compares stamps of a task's output, used by
// Requires dependency records.
type OutputChecker interface {
	// Stamp captures output into a comparable snapshot.
	Stamp(output any) (Stamp, error)
	// Check compares output's current stamp against prior, returning a
	// non-nil Inconsistency if they differ.
	Check(output any, prior Stamp) (*Inconsistency, error)
}

// ResourceChecker produces and compares stamps of a resource's external
// state, used by Reads and Writes dependency records. state is the Provider
// registered for the resource's kind (e.g. a *resource.FileSystem); how a
// checker uses it is up to the checker (the built-in file checkers ignore it
// and stat the path named by key).
type ResourceChecker interface {
	Stamp(key ResourceKey, state any) (Stamp, error)
	Check(key ResourceKey, state any, prior Stamp) (*Inconsistency, error)
}

// ReaderStamper is an optional capability a ResourceChecker may implement
// to snapshot state from an already-open reader handle, avoiding a
// redundant second open/stat call after Context.Read opens one.
type ReaderStamper interface {
	StampReader(r any) (Stamp, error)
}

// WriterStamper is the Write-side analogue of ReaderStamper: it snapshots
// state from the writer handle the task was just given, after the user's
// writer function returns.
type WriterStamper interface {
	StampWriter(w any) (Stamp, error)
}

// Equals is the default OutputChecker: the stamp is the output value
// itself, and two outputs are consistent iff Equal reports them equal.
// Equals is what gives the engine early cutoff — if B's output is
// bit-for-bit identical to its prior output, A (which Requires B via
// Equals) does not need to re-execute even though B did.
type Equals struct {
	// Equal compares two output values. Defaults to reflect.DeepEqual
	// when nil.
	Equal func(a, b any) bool
}

func (e Equals) Stamp(output any) (Stamp, error) { return output, nil }

func (e Equals) Check(output any, prior Stamp) (*Inconsistency, error) {
	eq := e.Equal
	if eq == nil {
		eq = reflect.DeepEqual
	}
	if eq(output, prior) {
		return nil, nil
	}
	return &Inconsistency{Reason: "output changed", Prior: prior, Current: output}, nil
}

// AlwaysConsistent is an OutputChecker for dependents that need only a
// task's side effect, not its return value: the stamp is a unit value and
// Check never reports inconsistency.
type AlwaysConsistent struct{}

func (AlwaysConsistent) Stamp(output any) (Stamp, error) { return struct{}{}, nil }

func (AlwaysConsistent) Check(output any, prior Stamp) (*Inconsistency, error) { return nil, nil }

// DefaultOutputChecker is the checker Session.Require uses for the
// top-level requested task, and the one Context.RequireDefault uses.
func DefaultOutputChecker() OutputChecker { return Equals{} }
