package tracker

import "piebuild"

// Noop observes nothing. It is the public equivalent of piebuild's own
// unexported default tracker, useful as an embeddable base for trackers
// that only care about a handful of events.
type Noop struct{}

var _ piebuild.Tracker = Noop{}

func (Noop) BuildStart() {}
func (Noop) BuildEnd()   {}

func (Noop) RequireStart(piebuild.Task)          {}
func (Noop) RequireEnd(piebuild.Task, any, error) {}

func (Noop) ReadStart(piebuild.Resource)      {}
func (Noop) ReadEnd(piebuild.Resource, error) {}

func (Noop) WriteStart(piebuild.Resource)      {}
func (Noop) WriteEnd(piebuild.Resource, error) {}

func (Noop) CheckTaskStart(piebuild.Task) {}
func (Noop) CheckTaskEnd(piebuild.Task, *piebuild.Inconsistency, error) {}

func (Noop) CheckResourceStart(piebuild.Resource) {}
func (Noop) CheckResourceEnd(piebuild.Resource, *piebuild.Inconsistency, error) {}

func (Noop) ExecuteStart(piebuild.Task)          {}
func (Noop) ExecuteEnd(piebuild.Task, any, error) {}

func (Noop) ScheduleAffectedByResource(piebuild.Resource, []piebuild.Task) {}
func (Noop) ScheduleAffectedByTask(piebuild.Task, []piebuild.Task)         {}
func (Noop) ScheduleTask(piebuild.Task)                                   {}
