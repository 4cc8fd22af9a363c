package piebuild

import "piebuild/internal/graph"

// checkDependency runs a single dependency record's isInconsistent check,
// wrapping it in the tracker event pair spec §4.4 designates for it:
// CheckTaskStart/End for a Requires edge (another task's output), and
// CheckResourceStart/End for a Reads or Writes edge (a resource's external
// state) — the original's resource-check tracing kept distinct from its
// task-check tracing. node is the edge's target, used to look up the
// Resource object for the resource-check events.
func (s *Session) checkDependency(task Task, node graph.NodeID, rec Record, cc consistencyContext) (*Inconsistency, error) {
	switch rec.(type) {
	case ReadsRecord, WritesRecord:
		resource, _ := s.pie.store.resourceOf(node)
		s.pie.tracker.CheckResourceStart(resource)
		inconsistency, err := rec.isInconsistent(cc)
		s.pie.tracker.CheckResourceEnd(resource, inconsistency, err)
		return inconsistency, err
	default:
		s.pie.tracker.CheckTaskStart(task)
		inconsistency, err := rec.isInconsistent(cc)
		s.pie.tracker.CheckTaskEnd(task, inconsistency, err)
		return inconsistency, err
	}
}
