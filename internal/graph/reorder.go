package graph

import "sort"

// dfsForward walks children of start whose topological order is below
// upperBound, collecting every visited node (start included) in discovery
// order. Reaching a child whose order equals upperBound means that child
// can reach back to the edge's source — the new edge would close a cycle.
func (g *DAG[N, E]) dfsForward(start NodeID, upperBound uint32) ([]NodeID, error) {
	visited := map[NodeID]struct{}{}
	var order []NodeID
	var walk func(n NodeID) error
	walk = func(n NodeID) error {
		if _, ok := visited[n]; ok {
			return nil
		}
		visited[n] = struct{}{}
		order = append(order, n)
		node, ok := g.get(n)
		if !ok {
			return nil
		}
		for _, c := range node.children {
			co, _ := g.TopoOrder(c)
			if co == upperBound {
				return ErrCycleDetected
			}
			if co < upperBound {
				if err := walk(c); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if err := walk(start); err != nil {
		return nil, err
	}
	return order, nil
}

// dfsForwardCycleCheck is the read-only variant used by WouldEdgeInduceCycle:
// it performs the same bounded search but never mutates the graph.
func (g *DAG[N, E]) dfsForwardCycleCheck(start NodeID, upperBound uint32) ([]NodeID, error) {
	return g.dfsForward(start, upperBound)
}

// dfsBackward walks parents of start whose topological order is above
// lowerBound, collecting every visited node (start included) in discovery
// order.
func (g *DAG[N, E]) dfsBackward(start NodeID, lowerBound uint32) []NodeID {
	visited := map[NodeID]struct{}{}
	var order []NodeID
	var walk func(n NodeID)
	walk = func(n NodeID) {
		if _, ok := visited[n]; ok {
			return
		}
		visited[n] = struct{}{}
		order = append(order, n)
		node, ok := g.get(n)
		if !ok {
			return
		}
		for _, p := range node.parents {
			po, _ := g.TopoOrder(p)
			if po > lowerBound {
				walk(p)
			}
		}
	}
	walk(start)
	return order
}

// reorderNodes implements the Pearce & Kelly reassignment step: the
// backward-affected set and forward-affected set are each sorted
// ascending by their existing topological order, then concatenated
// (backward first, forward second), their existing topological order
// values are collected and sorted ascending, and the sorted values are
// re-zipped against the concatenated node list. Backward-set nodes
// therefore end up with the smallest new order values and forward-set
// nodes the largest, while the graph's total ordering positions in use
// do not change — only which node occupies each position.
func (g *DAG[N, E]) reorderNodes(backward, forward []NodeID) {
	sortByTopoOrder := func(ids []NodeID) []NodeID {
		sorted := append([]NodeID(nil), ids...)
		sort.Slice(sorted, func(i, j int) bool {
			oi, _ := g.TopoOrder(sorted[i])
			oj, _ := g.TopoOrder(sorted[j])
			return oi < oj
		})
		return sorted
	}
	backward = sortByTopoOrder(backward)
	forward = sortByTopoOrder(forward)

	allKeys := make([]NodeID, 0, len(backward)+len(forward))
	allKeys = append(allKeys, backward...)
	allKeys = append(allKeys, forward...)

	orders := make([]uint32, 0, len(allKeys))
	for _, id := range allKeys {
		o, _ := g.TopoOrder(id)
		orders = append(orders, o)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i] < orders[j] })

	for i, id := range allKeys {
		if n, ok := g.get(id); ok {
			n.topoOrder = orders[i]
		}
	}
}
