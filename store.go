package piebuild

import "piebuild/internal/graph"

// nodeKind distinguishes the two flavors of node the engine's graph holds.
type nodeKind int

const (
	nodeKindTask nodeKind = iota
	nodeKindResource
)

// nodeData is the payload stored at every graph node: either a task (with
// an optional stored output) or a resource.
type nodeData struct {
	kind      nodeKind
	task      Task
	resource  Resource
	output    any
	hasOutput bool
}

// engineStore wraps the generic incremental-topological-order graph with
// the task/resource interning and dependency-record bookkeeping described
// in spec §4.3. It has no knowledge of top-down vs. bottom-up traversal —
// that lives in the drivers — only of the graph's shape and invariants.
type engineStore struct {
	g             *graph.DAG[nodeData, Record]
	taskNodes     map[TaskKey]graph.NodeID
	resourceNodes map[ResourceKey]graph.NodeID
}

func newEngineStore() *engineStore {
	return &engineStore{
		g:             graph.New[nodeData, Record](),
		taskNodes:     make(map[TaskKey]graph.NodeID),
		resourceNodes: make(map[ResourceKey]graph.NodeID),
	}
}

func (s *engineStore) internTask(t Task) graph.NodeID {
	key := t.Key()
	if n, ok := s.taskNodes[key]; ok {
		return n
	}
	n := s.g.AddNode(nodeData{kind: nodeKindTask, task: t})
	s.taskNodes[key] = n
	return n
}

func (s *engineStore) internResource(r Resource) graph.NodeID {
	key := r.Key()
	if n, ok := s.resourceNodes[key]; ok {
		return n
	}
	n := s.g.AddNode(nodeData{kind: nodeKindResource, resource: r})
	s.resourceNodes[key] = n
	return n
}

func (s *engineStore) taskOf(n graph.NodeID) (Task, bool) {
	d, ok := s.g.GetNodeData(n)
	if !ok || d.kind != nodeKindTask {
		return nil, false
	}
	return d.task, true
}

func (s *engineStore) resourceOf(n graph.NodeID) (Resource, bool) {
	d, ok := s.g.GetNodeData(n)
	if !ok || d.kind != nodeKindResource {
		return nil, false
	}
	return d.resource, true
}

func (s *engineStore) hasOutput(n graph.NodeID) bool {
	d, ok := s.g.GetNodeData(n)
	return ok && d.hasOutput
}

func (s *engineStore) outputOf(n graph.NodeID) (any, bool) {
	d, ok := s.g.GetNodeData(n)
	if !ok || !d.hasOutput {
		return nil, false
	}
	return d.output, true
}

func (s *engineStore) setOutput(n graph.NodeID, output any) {
	d, ok := s.g.GetNodeData(n)
	if !ok {
		return
	}
	d.output = output
	d.hasOutput = true
	s.g.SetNodeData(n, d)
}

// outgoingDeps returns the dependency records recorded on n's outgoing
// edges, in the order they were declared.
func (s *engineStore) outgoingDeps(n graph.NodeID) []graph.Edge[Record] {
	return s.g.GetOutgoingEdges(n)
}

// addReadsEdge and addWritesEdge never fail: resource nodes have no
// outgoing edges of their own, so an edge from a task to a resource cannot
// participate in a cycle.
func (s *engineStore) addReadsEdge(from graph.NodeID, to graph.NodeID, rec ReadsRecord) {
	_ = s.g.AddEdge(from, to, rec)
}

func (s *engineStore) addWritesEdge(from graph.NodeID, to graph.NodeID, rec WritesRecord) {
	_ = s.g.AddEdge(from, to, rec)
}

// reserveRequiresEdge adds a placeholder Requires edge before the callee's
// output is known, so that a cycle is caught before recursing into a task
// that would (transitively) require the caller. It returns
// graph.ErrCycleDetected if the edge would close a cycle.
func (s *engineStore) reserveRequiresEdge(from, to graph.NodeID, task Task) error {
	return s.g.AddEdge(from, to, ReservedRequiresRecord{Task: task})
}

// updateRequiresEdge upgrades a previously reserved edge to a full record
// once the callee's output and stamp are known.
func (s *engineStore) updateRequiresEdge(from, to graph.NodeID, rec RequiresRecord) {
	s.g.SetEdgeData(from, to, rec)
}

// resetTask clears a task's stored output and removes all of its outgoing
// edges, in preparation for re-execution. Per spec §4.3, reset clears
// output as well as edges (the original reference implementation left this
// as an open TODO; this spec resolves it in favor of clearing).
func (s *engineStore) resetTask(n graph.NodeID) {
	_ = s.g.RemoveEdgesOfNode(n)
	d, ok := s.g.GetNodeData(n)
	if !ok {
		return
	}
	d.output = nil
	d.hasOutput = false
	s.g.SetNodeData(n, d)
}

func (s *engineStore) topologicallyCompare(a, b graph.NodeID) int {
	return s.g.TopologicallyCompare(a, b)
}

func (s *engineStore) hasTransitivePath(from, to graph.NodeID) bool {
	return s.g.ContainsTransitiveEdge(from, to)
}

// writerOf returns the task node holding a Writes edge to the resource
// node r, if any.
func (s *engineStore) writerOf(r graph.NodeID) (graph.NodeID, bool) {
	for _, e := range s.g.GetIncomingEdges(r) {
		if _, ok := e.Data.(WritesRecord); ok {
			return e.Node, true
		}
	}
	return graph.NodeID{}, false
}

// readersOf returns the task nodes holding a Reads edge to the resource
// node r.
func (s *engineStore) readersOf(r graph.NodeID) []graph.NodeID {
	var out []graph.NodeID
	for _, e := range s.g.GetIncomingEdges(r) {
		if _, ok := e.Data.(ReadsRecord); ok {
			out = append(out, e.Node)
		}
	}
	return out
}

// requirersOf returns the task nodes holding a Requires edge to the task
// node n, paired with their recorded RequiresRecord.
func (s *engineStore) requirersOf(n graph.NodeID) []struct {
	Node graph.NodeID
	Rec  RequiresRecord
} {
	var out []struct {
		Node graph.NodeID
		Rec  RequiresRecord
	}
	for _, e := range s.g.GetIncomingEdges(n) {
		if rec, ok := e.Data.(RequiresRecord); ok {
			out = append(out, struct {
				Node graph.NodeID
				Rec  RequiresRecord
			}{e.Node, rec})
		}
	}
	return out
}

// readWriteEdgesTo returns every (task node, record) pair with a Reads or
// Writes edge to the resource node r — the seed set for bottom-up
// propagation from a changed resource.
func (s *engineStore) readWriteEdgesTo(r graph.NodeID) []graph.Edge[Record] {
	var out []graph.Edge[Record]
	for _, e := range s.g.GetIncomingEdges(r) {
		switch e.Data.(type) {
		case ReadsRecord, WritesRecord:
			out = append(out, e)
		}
	}
	return out
}
