package piebuild

// Tracker is an observer of build lifecycle events (spec §4.4). All calls
// are paired start/end where meaningful. The engine invokes a tracker
// synchronously and directly, without recovering panics, so implementations
// must not panic; tracker.Composite recovers a panic from any of its members
// so that one misbehaving member does not keep the others from observing an
// event.
// Concrete tracker implementations (no-op, composite, structured logging,
// metrics) live in package tracker so that the core engine package stays
// free of logging/metrics dependencies.
type Tracker interface {
	BuildStart()
	BuildEnd()

	RequireStart(task Task)
	RequireEnd(task Task, output any, err error)

	ReadStart(resource Resource)
	ReadEnd(resource Resource, err error)

	WriteStart(resource Resource)
	WriteEnd(resource Resource, err error)

	CheckTaskStart(task Task)
	CheckTaskEnd(task Task, inconsistency *Inconsistency, err error)

	CheckResourceStart(resource Resource)
	CheckResourceEnd(resource Resource, inconsistency *Inconsistency, err error)

	ExecuteStart(task Task)
	ExecuteEnd(task Task, output any, err error)

	ScheduleAffectedByResource(resource Resource, scheduled []Task)
	ScheduleAffectedByTask(task Task, scheduled []Task)
	ScheduleTask(task Task)
}
