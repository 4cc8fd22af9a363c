package piebuild

// Record is a dependency record: one of Reads, Writes, Requires, or
// ReservedRequires (spec data model §3/§4.2). It is stored as edge data in
// the engine's internal graph.
type Record interface {
	isInconsistent(cc consistencyContext) (*Inconsistency, error)
}

// consistencyContext is what a dependency record needs to check itself:
// enough to recursively make a required task consistent and to reach the
// resource-provider state a checker inspects. Implemented by the session's
// active driver (top-down or bottom-up), since "recursively make this task
// consistent" means different things to each.
type consistencyContext interface {
	requireForConsistency(t Task) (any, error)
	providerState(key ResourceKey) (Provider, bool)
}

// ReadsRecord records that a task read a resource through a checker,
// capturing the stamp at read time.
type ReadsRecord struct {
	Resource ResourceKey
	Checker  ResourceChecker
	Stamp    Stamp
}

func (r ReadsRecord) isInconsistent(cc consistencyContext) (*Inconsistency, error) {
	provider, ok := cc.providerState(r.Resource)
	if !ok {
		return &Inconsistency{Reason: "no provider registered for resource kind " + r.Resource.Kind}, nil
	}
	return r.Checker.Check(r.Resource, provider, r.Stamp)
}

// WritesRecord records that a task wrote a resource through a checker,
// capturing the stamp at write time.
type WritesRecord struct {
	Resource ResourceKey
	Checker  ResourceChecker
	Stamp    Stamp
}

func (r WritesRecord) isInconsistent(cc consistencyContext) (*Inconsistency, error) {
	provider, ok := cc.providerState(r.Resource)
	if !ok {
		return &Inconsistency{Reason: "no provider registered for resource kind " + r.Resource.Kind}, nil
	}
	return r.Checker.Check(r.Resource, provider, r.Stamp)
}

// RequiresRecord records that a task required another task's output
// through a checker.
type RequiresRecord struct {
	Task    Task
	Checker OutputChecker
	Stamp   Stamp
}

func (r RequiresRecord) isInconsistent(cc consistencyContext) (*Inconsistency, error) {
	output, err := cc.requireForConsistency(r.Task)
	if err != nil {
		return nil, err
	}
	return r.Checker.Check(output, r.Stamp)
}

// ReservedRequiresRecord is a placeholder edge inserted before a task's
// output is known, so that cycle detection can run at edge-insertion time
// rather than after the callee returns (spec §9 "Reserved dependency
// record"). It must never be consistency-checked: the driver always
// upgrades it to a RequiresRecord before the edge could be inspected, and
// calling isInconsistent on one still reserved is an engine-internal bug,
// not a user-facing error.
type ReservedRequiresRecord struct {
	Task Task
}

func (r ReservedRequiresRecord) isInconsistent(consistencyContext) (*Inconsistency, error) {
	panic("piebuild: isInconsistent called on a still-reserved dependency record for " + r.Task.Key().String())
}
