package piebuild

import "piebuild/internal/graph"

// topDownDriver implements the demand-driven strategy (spec §4.6): Require
// recursively walks down from the requested task, consistency-checking each
// dependency in place and only executing a task when something it depends
// on (directly or transitively) is found stale.
//
// Ported from the require_task_with_stamper / should_execute_task pair in
// the project's research pack (context/top_down.rs): a task's existing
// outgoing dependency edges are interrogated in place rather than rebuilt
// from scratch, so a task that turns out to be consistent keeps its old
// edges untouched.
type topDownDriver struct {
	session *Session
	stack   []Task
}

var _ driver = (*topDownDriver)(nil)
var _ consistencyContext = (*topDownDriver)(nil)

func (d *topDownDriver) requireTask(t Task, checker OutputChecker) (any, error) {
	s := d.session
	store := s.pie.store
	node := store.internTask(t)

	var requiring *graph.NodeID
	if s.currentExecutingTask != nil {
		requiring = s.currentExecutingTask
		if err := store.reserveRequiresEdge(*requiring, node, t); err != nil {
			requiringTask, _ := store.taskOf(*requiring)
			panic(newCycleError(requiringTask, t, d.stack))
		}
	}

	output, err := d.makeConsistent(t, node)
	if err != nil {
		return nil, err
	}

	if requiring != nil {
		stamp, serr := checker.Stamp(output)
		if serr != nil {
			return output, serr
		}
		store.updateRequiresEdge(*requiring, node, RequiresRecord{Task: t, Checker: checker, Stamp: stamp})
	}
	return output, nil
}

// makeConsistent ensures node is up to date within the current session,
// executing t if necessary, and marks it consistent so later requires of
// the same task within this session are answered from the stored output
// without re-checking its dependencies.
func (d *topDownDriver) makeConsistent(t Task, node graph.NodeID) (any, error) {
	s := d.session
	store := s.pie.store

	if _, ok := s.consistent[node]; ok {
		output, _ := store.outputOf(node)
		return output, nil
	}

	should := d.shouldExecuteTask(t, node)

	var output any
	if should {
		store.resetTask(node)

		prevExecuting := s.currentExecutingTask
		n := node
		s.currentExecutingTask = &n
		d.stack = append(d.stack, t)

		s.pie.tracker.ExecuteStart(t)
		out, execErr := t.Execute(&Context{session: s})
		s.pie.tracker.ExecuteEnd(t, out, execErr)

		d.stack = d.stack[:len(d.stack)-1]
		s.currentExecutingTask = prevExecuting

		if execErr != nil {
			return nil, execErr
		}
		store.setOutput(node, out)
		output = out
	} else {
		output, _ = store.outputOf(node)
	}

	s.consistent[node] = struct{}{}
	return output, nil
}

// shouldExecuteTask reports whether node needs to (re-)execute: true if it
// has never executed, if it has no recorded dependencies but also no
// stored output, or if any existing dependency is found inconsistent. A
// non-fatal check error is recorded on the session and treated the same as
// an inconsistency (spec §7: resource I/O errors never abort the build).
func (d *topDownDriver) shouldExecuteTask(t Task, node graph.NodeID) bool {
	s := d.session
	store := s.pie.store
	deps := store.outgoingDeps(node)

	if len(deps) == 0 {
		return !store.hasOutput(node)
	}

	for _, edge := range deps {
		inconsistency, err := s.checkDependency(t, edge.Node, edge.Data, d)
		if err != nil {
			s.recordCheckError(t, err)
			return true
		}
		if inconsistency != nil {
			return true
		}
	}
	return false
}

// requireForConsistency lets a RequiresRecord recursively make its target
// consistent while checking itself, via the same top-down entry point used
// for live Context.Require calls (spec §4.6), using the engine's default
// output checker to attribute any edge recorded along the way.
func (d *topDownDriver) requireForConsistency(t Task) (any, error) {
	return d.requireTask(t, DefaultOutputChecker())
}

func (d *topDownDriver) providerState(key ResourceKey) (Provider, bool) {
	return d.session.pie.providerFor(key)
}

func (d *topDownDriver) readResource(r Resource, checker ResourceChecker) (any, error) {
	return d.session.doReadResource(r, checker)
}

func (d *topDownDriver) writeResource(r Resource, checker ResourceChecker, fn func(w any) error) error {
	return d.session.doWriteResource(r, checker, fn)
}
