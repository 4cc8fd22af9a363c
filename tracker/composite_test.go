package tracker_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"piebuild"
	"piebuild/tracker"
)

type fakeTask struct{ id string }

func (t fakeTask) Key() piebuild.TaskKey      { return piebuild.TaskKey{Kind: "fake", ID: t.id} }
func (t fakeTask) Execute(*piebuild.Context) (any, error) { return nil, nil }

// panicTracker panics on every call, standing in for a misbehaving
// observer that must never be allowed to abort a build.
type panicTracker struct{}

func (panicTracker) BuildStart()                                                         { panic("boom") }
func (panicTracker) BuildEnd()                                                           { panic("boom") }
func (panicTracker) RequireStart(piebuild.Task)                                          { panic("boom") }
func (panicTracker) RequireEnd(piebuild.Task, any, error)                                { panic("boom") }
func (panicTracker) ReadStart(piebuild.Resource)                                         { panic("boom") }
func (panicTracker) ReadEnd(piebuild.Resource, error)                                    { panic("boom") }
func (panicTracker) WriteStart(piebuild.Resource)                                        { panic("boom") }
func (panicTracker) WriteEnd(piebuild.Resource, error)                                   { panic("boom") }
func (panicTracker) CheckTaskStart(piebuild.Task)                                        { panic("boom") }
func (panicTracker) CheckTaskEnd(piebuild.Task, *piebuild.Inconsistency, error)           { panic("boom") }
func (panicTracker) CheckResourceStart(piebuild.Resource)                                { panic("boom") }
func (panicTracker) CheckResourceEnd(piebuild.Resource, *piebuild.Inconsistency, error)   { panic("boom") }
func (panicTracker) ExecuteStart(piebuild.Task)                                          { panic("boom") }
func (panicTracker) ExecuteEnd(piebuild.Task, any, error)                                { panic("boom") }
func (panicTracker) ScheduleAffectedByResource(piebuild.Resource, []piebuild.Task)        { panic("boom") }
func (panicTracker) ScheduleAffectedByTask(piebuild.Task, []piebuild.Task)                { panic("boom") }
func (panicTracker) ScheduleTask(piebuild.Task)                                          { panic("boom") }

var _ piebuild.Tracker = panicTracker{}

// countingTracker records how many times each method it cares about fired,
// so the test can confirm a panicking sibling doesn't block it.
type countingTracker struct{ buildStarts, requireEnds int }

func (c *countingTracker) BuildStart()                                                       { c.buildStarts++ }
func (c *countingTracker) BuildEnd()                                                         {}
func (c *countingTracker) RequireStart(piebuild.Task)                                        {}
func (c *countingTracker) RequireEnd(piebuild.Task, any, error)                              { c.requireEnds++ }
func (c *countingTracker) ReadStart(piebuild.Resource)                                       {}
func (c *countingTracker) ReadEnd(piebuild.Resource, error)                                  {}
func (c *countingTracker) WriteStart(piebuild.Resource)                                      {}
func (c *countingTracker) WriteEnd(piebuild.Resource, error)                                 {}
func (c *countingTracker) CheckTaskStart(piebuild.Task)                                      {}
func (c *countingTracker) CheckTaskEnd(piebuild.Task, *piebuild.Inconsistency, error)         {}
func (c *countingTracker) CheckResourceStart(piebuild.Resource)                              {}
func (c *countingTracker) CheckResourceEnd(piebuild.Resource, *piebuild.Inconsistency, error) {}
func (c *countingTracker) ExecuteStart(piebuild.Task)                                        {}
func (c *countingTracker) ExecuteEnd(piebuild.Task, any, error)                              {}
func (c *countingTracker) ScheduleAffectedByResource(piebuild.Resource, []piebuild.Task)      {}
func (c *countingTracker) ScheduleAffectedByTask(piebuild.Task, []piebuild.Task)              {}
func (c *countingTracker) ScheduleTask(piebuild.Task)                                        {}

var _ piebuild.Tracker = (*countingTracker)(nil)

func TestCompositeSwallowsPanickingMember(t *testing.T) {
	counter := &countingTracker{}
	composite := tracker.New(panicTracker{}, counter)

	require.NotPanics(t, func() { composite.BuildStart() })
	require.Equal(t, 1, counter.buildStarts)

	require.NotPanics(t, func() {
		composite.RequireEnd(fakeTask{id: "t"}, "out", nil)
	})
	require.Equal(t, 1, counter.requireEnds)
}

func TestNoopSatisfiesTracker(t *testing.T) {
	var tr piebuild.Tracker = tracker.Noop{}
	require.NotPanics(t, func() {
		tr.BuildStart()
		tr.BuildEnd()
	})
}
