package piebuild

import "piebuild/internal/graph"

// Session is a single build transaction opened on a Pie (spec §4.5). It
// holds the per-build "consistent" set, the currently executing task
// pointer used to attribute new dependencies, and the list of non-fatal
// check errors accumulated during the build. Exactly one Session may be
// open on a Pie at a time.
type Session struct {
	pie *Pie

	consistent           map[graph.NodeID]struct{}
	checkErrors          []CheckError
	currentExecutingTask *graph.NodeID

	activeDriver driver
	topDown      *topDownDriver
	bottomUp     *bottomUpDriver

	closed bool
}

// Require enters the top-down driver: it makes task consistent (executing
// it and anything it transitively requires, as needed) and returns its
// output. A cycle or hidden-dependency or overlapping-writer violation is
// returned as a *SoundnessError rather than panicking past this call.
func (s *Session) Require(task Task) (output any, err error) {
	defer recoverSoundness(&err)
	s.pie.tracker.RequireStart(task)
	s.activeDriver = s.topDown
	output, err = s.topDown.requireTask(task, DefaultOutputChecker())
	s.pie.tracker.RequireEnd(task, output, err)
	return output, err
}

// Changed enters the bottom-up driver and schedules every task with a
// Reads or Writes dependency on resource whose recorded stamp no longer
// matches the resource's current state. It does not execute anything by
// itself; call BuildAffected to drain the schedule.
func (s *Session) Changed(resource Resource) (err error) {
	defer recoverSoundness(&err)
	s.activeDriver = s.bottomUp
	return s.bottomUp.scheduleAffectedByResource(resource)
}

// BuildAffected drains the bottom-up schedule built up by prior calls to
// Changed, executing each scheduled task (and anything newly affected by
// its output) until nothing remains scheduled.
func (s *Session) BuildAffected() (err error) {
	defer recoverSoundness(&err)
	s.pie.tracker.BuildStart()
	s.activeDriver = s.bottomUp
	err = s.bottomUp.drain()
	s.pie.tracker.BuildEnd()
	return err
}

// ResetConsistency clears the per-session "consistent" memoization set (spec
// §4.5). A long-lived Session kept open across multiple independent
// Changed/BuildAffected cycles (as the watch command does) would otherwise
// let a node marked consistent in one cycle short-circuit its dependency
// checks in a later cycle, even though something it depends on may have
// changed in between. Call this between cycles on any Session reused that
// way; a Session used for a single Require or a single Changed/BuildAffected
// round never needs it.
func (s *Session) ResetConsistency() {
	s.consistent = make(map[graph.NodeID]struct{})
}

// CheckErrors returns the non-fatal resource/output check errors observed
// during this session so far. The slice is owned by the caller.
func (s *Session) CheckErrors() []CheckError {
	out := make([]CheckError, len(s.checkErrors))
	copy(out, s.checkErrors)
	return out
}

func (s *Session) recordCheckError(task Task, err error) {
	s.checkErrors = append(s.checkErrors, CheckError{Task: task, Err: err})
}
