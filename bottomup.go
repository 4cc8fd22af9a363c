package piebuild

import (
	"sort"

	"piebuild/internal/graph"
)

// bottomUpDriver implements the change-driven strategy (spec §4.7):
// scheduleAffectedByResource seeds a priority queue with every task holding
// a Reads/Writes edge to a changed resource, and drain executes that queue,
// propagating further scheduling to whatever reads a just-written resource
// or requires a just-executed task whose output actually changed.
//
// Ported from BottomUpContext in the project's research pack
// (context/bottom_up.rs): the dependency-ordered Queue type there (sort
// ascending by topological order, pop from the end) is reproduced here as
// bottomUpQueue.
type bottomUpDriver struct {
	session   *Session
	scheduled bottomUpQueue
	executing map[graph.NodeID]struct{}
	stack     []Task
}

func newBottomUpDriver(s *Session) *bottomUpDriver {
	return &bottomUpDriver{
		session:   s,
		scheduled: newBottomUpQueue(),
		executing: make(map[graph.NodeID]struct{}),
	}
}

var _ driver = (*bottomUpDriver)(nil)
var _ consistencyContext = (*bottomUpDriver)(nil)

// scheduleAffectedByResource seeds the queue with every task that reads or
// writes resource, whose recorded stamp no longer matches its current
// state.
func (d *bottomUpDriver) scheduleAffectedByResource(r Resource) error {
	s := d.session
	store := s.pie.store
	node := store.internResource(r)

	var scheduledTasks []Task
	for _, edge := range store.readWriteEdgesTo(node) {
		task, _ := store.taskOf(edge.Node)
		before := len(d.scheduled.vec)
		if err := d.tryScheduleByDependency(task, edge.Node, node, edge.Data); err != nil {
			return err
		}
		if len(d.scheduled.vec) > before {
			scheduledTasks = append(scheduledTasks, task)
		}
	}
	s.pie.tracker.ScheduleAffectedByResource(r, scheduledTasks)
	return nil
}

// tryScheduleByDependency schedules the task holding node if dependency is
// found inconsistent (or errors while checking, which is treated the same
// way, per spec §7's non-fatal I/O error policy). It never schedules a task
// that is currently on the execution stack. resourceNode is the resource end
// of dependency, used only to attribute CheckResourceStart/End events.
func (d *bottomUpDriver) tryScheduleByDependency(task Task, node, resourceNode graph.NodeID, dependency Record) error {
	if _, executing := d.executing[node]; executing {
		return nil
	}
	inconsistency, err := d.session.checkDependency(task, resourceNode, dependency, d)
	if err != nil {
		d.session.recordCheckError(task, err)
		d.scheduled.add(node)
		return nil
	}
	if inconsistency != nil {
		d.session.pie.tracker.ScheduleTask(task)
		d.scheduled.add(node)
	}
	return nil
}

// drain executes every scheduled task to completion, scheduling further
// tasks as a side effect, until the queue is empty.
func (d *bottomUpDriver) drain() error {
	for d.scheduled.isNotEmpty() {
		node, ok := d.scheduled.pop(d.session.pie.store)
		if !ok {
			break
		}
		if _, err := d.executeAndSchedule(node); err != nil {
			return err
		}
	}
	return nil
}

// executeAndSchedule executes the task at node and, from the fresh output,
// schedules every reader of a resource it wrote and every requirer whose
// recorded output stamp no longer matches.
func (d *bottomUpDriver) executeAndSchedule(node graph.NodeID) (any, error) {
	s := d.session
	store := s.pie.store
	task, _ := store.taskOf(node)

	output, err := d.execute(task, node)
	if err != nil {
		return nil, err
	}

	for _, dep := range store.outgoingDeps(node) {
		writes, ok := dep.Data.(WritesRecord)
		if !ok {
			continue
		}
		writtenResource := dep.Node
		var readers []Task
		for _, edge := range store.readWriteEdgesTo(writtenResource) {
			readRec, ok := edge.Data.(ReadsRecord)
			if !ok {
				continue
			}
			readingTask, _ := store.taskOf(edge.Node)
			if err := d.tryScheduleByDependency(readingTask, edge.Node, writtenResource, readRec); err != nil {
				return nil, err
			}
			readers = append(readers, readingTask)
		}
		if resource, ok := store.resourceOf(writtenResource); ok {
			s.pie.tracker.ScheduleAffectedByResource(resource, readers)
		}
		_ = writes
	}

	var requirers []Task
	for _, req := range store.requirersOf(node) {
		if _, executing := d.executing[req.Node]; executing {
			continue
		}
		requiringTask, _ := store.taskOf(req.Node)
		inconsistency, cerr := req.Rec.Checker.Check(output, req.Rec.Stamp)
		if cerr != nil {
			s.recordCheckError(requiringTask, cerr)
			d.scheduled.add(req.Node)
			requirers = append(requirers, requiringTask)
			continue
		}
		if inconsistency != nil {
			s.pie.tracker.ScheduleTask(requiringTask)
			d.scheduled.add(req.Node)
			requirers = append(requirers, requiringTask)
		}
	}
	s.pie.tracker.ScheduleAffectedByTask(task, requirers)

	s.consistent[node] = struct{}{}
	return output, nil
}

// execute runs task's body, recording it as the currently executing task so
// that resource accesses and nested requires attribute their dependency
// edges correctly.
func (d *bottomUpDriver) execute(t Task, node graph.NodeID) (any, error) {
	s := d.session
	store := s.pie.store

	store.resetTask(node)
	prevExecuting := s.currentExecutingTask
	n := node
	s.currentExecutingTask = &n
	d.executing[node] = struct{}{}
	d.stack = append(d.stack, t)

	s.pie.tracker.ExecuteStart(t)
	output, err := t.Execute(&Context{session: s})
	s.pie.tracker.ExecuteEnd(t, output, err)

	d.stack = d.stack[:len(d.stack)-1]
	delete(d.executing, node)
	s.currentExecutingTask = prevExecuting

	if err != nil {
		return nil, err
	}
	store.setOutput(node, output)
	return output, nil
}

// requireScheduledNow drains the queue, executing tasks in dependency
// order, until src itself is executed (because it was scheduled, directly
// or transitively) or the queue runs dry without ever reaching it.
func (d *bottomUpDriver) requireScheduledNow(src graph.NodeID) (any, bool, error) {
	store := d.session.pie.store
	for d.scheduled.isNotEmpty() {
		node, ok := d.scheduled.popLeastWithDependencyFrom(src, store)
		if !ok {
			break
		}
		output, err := d.executeAndSchedule(node)
		if err != nil {
			return nil, false, err
		}
		if node == src {
			return output, true, nil
		}
	}
	return nil, false, nil
}

// makeTaskConsistent is the bottom-up analogue of topDownDriver.makeConsistent.
// A brand-new task (no stored output) executes unconditionally; an existing
// task is left alone unless draining the schedule up to it shows it was
// actually affected.
func (d *bottomUpDriver) makeTaskConsistent(t Task, node graph.NodeID) (any, error) {
	s := d.session
	store := s.pie.store

	if _, ok := s.consistent[node]; ok {
		output, _ := store.outputOf(node)
		return output, nil
	}
	if !store.hasOutput(node) {
		return d.execute(t, node)
	}

	output, scheduled, err := d.requireScheduledNow(node)
	if err != nil {
		return nil, err
	}
	if scheduled {
		return output, nil
	}
	// Not scheduled: nothing it (transitively) depends on changed, since the
	// absence of hidden dependencies and overlapping writers guarantees
	// draining the schedule would have reached it otherwise.
	out, _ := store.outputOf(node)
	return out, nil
}

func (d *bottomUpDriver) requireTask(t Task, checker OutputChecker) (any, error) {
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

	output, err := d.makeTaskConsistent(t, node)
	if err != nil {
		return nil, err
	}

	stamp, serr := checker.Stamp(output)
	if serr != nil {
		return output, serr
	}
	if requiring != nil {
		store.updateRequiresEdge(*requiring, node, RequiresRecord{Task: t, Checker: checker, Stamp: stamp})
	}
	// Only executeAndSchedule marks node consistent; the "brand new" and
	// "not scheduled" paths of makeTaskConsistent do not, so do it here
	// unconditionally.
	s.consistent[node] = struct{}{}
	return output, nil
}

func (d *bottomUpDriver) requireForConsistency(t Task) (any, error) {
	return d.requireTask(t, DefaultOutputChecker())
}

func (d *bottomUpDriver) providerState(key ResourceKey) (Provider, bool) {
	return d.session.pie.providerFor(key)
}

func (d *bottomUpDriver) readResource(r Resource, checker ResourceChecker) (any, error) {
	return d.session.doReadResource(r, checker)
}

func (d *bottomUpDriver) writeResource(r Resource, checker ResourceChecker, fn func(w any) error) error {
	return d.session.doWriteResource(r, checker, fn)
}

// bottomUpQueue is a dependency-ordered priority queue of task nodes: pop
// always returns the node with the greatest topological order (i.e. the
// one furthest from any root; nothing it transitively depends on can still
// be queued, since every dependency orders after it), so that affected
// tasks execute deepest-dependency-first.
type bottomUpQueue struct {
	set map[graph.NodeID]struct{}
	vec []graph.NodeID
}

func newBottomUpQueue() bottomUpQueue {
	return bottomUpQueue{set: make(map[graph.NodeID]struct{})}
}

func (q *bottomUpQueue) isNotEmpty() bool { return len(q.vec) > 0 }

func (q *bottomUpQueue) add(node graph.NodeID) {
	if _, ok := q.set[node]; ok {
		return
	}
	q.set[node] = struct{}{}
	q.vec = append(q.vec, node)
}

func (q *bottomUpQueue) sortByDependencies(store *engineStore) {
	sort.Slice(q.vec, func(i, j int) bool {
		return store.topologicallyCompare(q.vec[i], q.vec[j]) < 0
	})
}

func (q *bottomUpQueue) pop(store *engineStore) (graph.NodeID, bool) {
	q.sortByDependencies(store)
	if len(q.vec) == 0 {
		return graph.NodeID{}, false
	}
	last := q.vec[len(q.vec)-1]
	q.vec = q.vec[:len(q.vec)-1]
	delete(q.set, last)
	return last, true
}

// popLeastWithDependencyFrom removes and returns the node, among those with
// a transitive dependency from src (or equal to src), that sorts last —
// i.e. the one nearest the bottom of the dependency order still reachable
// from src.
func (q *bottomUpQueue) popLeastWithDependencyFrom(src graph.NodeID, store *engineStore) (graph.NodeID, bool) {
	q.sortByDependencies(store)
	for i := len(q.vec) - 1; i >= 0; i-- {
		dst := q.vec[i]
		if src == dst || store.hasTransitivePath(src, dst) {
			q.vec[i] = q.vec[len(q.vec)-1]
			q.vec = q.vec[:len(q.vec)-1]
			delete(q.set, dst)
			return dst, true
		}
	}
	return graph.NodeID{}, false
}
