package piebuild

// noopTracker is Pie's default tracker so that New() never requires a
// caller to think about observability. Package tracker's Noop is the
// public equivalent, kept identical so that wrapping one in a
// tracker.Composite behaves the same as leaving the default in place.
type noopTracker struct{}

func (noopTracker) BuildStart() {}
func (noopTracker) BuildEnd()   {}

func (noopTracker) RequireStart(Task)              {}
func (noopTracker) RequireEnd(Task, any, error)     {}
func (noopTracker) ReadStart(Resource)              {}
func (noopTracker) ReadEnd(Resource, error)         {}
func (noopTracker) WriteStart(Resource)             {}
func (noopTracker) WriteEnd(Resource, error)        {}
func (noopTracker) CheckTaskStart(Task)             {}
func (noopTracker) CheckTaskEnd(Task, *Inconsistency, error) {}
func (noopTracker) CheckResourceStart(Resource)     {}
func (noopTracker) CheckResourceEnd(Resource, *Inconsistency, error) {}
func (noopTracker) ExecuteStart(Task)               {}
func (noopTracker) ExecuteEnd(Task, any, error)     {}
func (noopTracker) ScheduleAffectedByResource(Resource, []Task) {}
func (noopTracker) ScheduleAffectedByTask(Task, []Task)         {}
func (noopTracker) ScheduleTask(Task)               {}
