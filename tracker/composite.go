package tracker

import "piebuild"

// Composite fans every event out to an ordered list of trackers. A panic
// from one member is recovered and does not prevent the rest of the list
// from observing the event, matching the "a tracker must never abort a
// build" contract documented on piebuild.Tracker.
type Composite struct {
	Trackers []piebuild.Tracker
}

var _ piebuild.Tracker = Composite{}

// New builds a Composite over trackers, in the order they should observe
// events.
func New(trackers ...piebuild.Tracker) Composite {
	return Composite{Trackers: trackers}
}

func safeInvoke(fn func()) {
	defer func() { recover() }()
	fn()
}

func (c Composite) BuildStart() {
	for _, t := range c.Trackers {
		t := t
		safeInvoke(t.BuildStart)
	}
}

func (c Composite) BuildEnd() {
	for _, t := range c.Trackers {
		t := t
		safeInvoke(t.BuildEnd)
	}
}

func (c Composite) RequireStart(task piebuild.Task) {
	for _, t := range c.Trackers {
		t := t
		safeInvoke(func() { t.RequireStart(task) })
	}
}

func (c Composite) RequireEnd(task piebuild.Task, output any, err error) {
	for _, t := range c.Trackers {
		t := t
		safeInvoke(func() { t.RequireEnd(task, output, err) })
	}
}

func (c Composite) ReadStart(r piebuild.Resource) {
	for _, t := range c.Trackers {
		t := t
		safeInvoke(func() { t.ReadStart(r) })
	}
}

func (c Composite) ReadEnd(r piebuild.Resource, err error) {
	for _, t := range c.Trackers {
		t := t
		safeInvoke(func() { t.ReadEnd(r, err) })
	}
}

func (c Composite) WriteStart(r piebuild.Resource) {
	for _, t := range c.Trackers {
		t := t
		safeInvoke(func() { t.WriteStart(r) })
	}
}

func (c Composite) WriteEnd(r piebuild.Resource, err error) {
	for _, t := range c.Trackers {
		t := t
		safeInvoke(func() { t.WriteEnd(r, err) })
	}
}

func (c Composite) CheckTaskStart(task piebuild.Task) {
	for _, t := range c.Trackers {
		t := t
		safeInvoke(func() { t.CheckTaskStart(task) })
	}
}

func (c Composite) CheckTaskEnd(task piebuild.Task, inc *piebuild.Inconsistency, err error) {
	for _, t := range c.Trackers {
		t := t
		safeInvoke(func() { t.CheckTaskEnd(task, inc, err) })
	}
}

func (c Composite) CheckResourceStart(r piebuild.Resource) {
	for _, t := range c.Trackers {
		t := t
		safeInvoke(func() { t.CheckResourceStart(r) })
	}
}

func (c Composite) CheckResourceEnd(r piebuild.Resource, inc *piebuild.Inconsistency, err error) {
	for _, t := range c.Trackers {
		t := t
		safeInvoke(func() { t.CheckResourceEnd(r, inc, err) })
	}
}

func (c Composite) ExecuteStart(task piebuild.Task) {
	for _, t := range c.Trackers {
		t := t
		safeInvoke(func() { t.ExecuteStart(task) })
	}
}

func (c Composite) ExecuteEnd(task piebuild.Task, output any, err error) {
	for _, t := range c.Trackers {
		t := t
		safeInvoke(func() { t.ExecuteEnd(task, output, err) })
	}
}

func (c Composite) ScheduleAffectedByResource(r piebuild.Resource, scheduled []piebuild.Task) {
	for _, t := range c.Trackers {
		t := t
		safeInvoke(func() { t.ScheduleAffectedByResource(r, scheduled) })
	}
}

func (c Composite) ScheduleAffectedByTask(task piebuild.Task, scheduled []piebuild.Task) {
	for _, t := range c.Trackers {
		t := t
		safeInvoke(func() { t.ScheduleAffectedByTask(task, scheduled) })
	}
}

func (c Composite) ScheduleTask(task piebuild.Task) {
	for _, t := range c.Trackers {
		t := t
		safeInvoke(func() { t.ScheduleTask(task) })
	}
}
