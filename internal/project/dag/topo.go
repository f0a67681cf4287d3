package dag

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

type Topo struct {
	Order   []NodeID   // линейный порядок (только реальные узлы)
	Batches [][]NodeID // волны независимых узлов
	Cyclic  bool
	Cycles  []NodeID // узлы, оставшиеся в цикле или за ним
}

func nodeID(i int) NodeID {
	id, err := safecast.Conv[NodeID](i)
	if err != nil {
		panic(fmt.Errorf("node id overflow: %w", err))
	}
	return id
}

func ToposortKahn(g Graph) *Topo {
	nodeCount := len(g.Edges)
	indeg := make([]int, len(g.Indeg))
	copy(indeg, g.Indeg)

	topo := &Topo{
		Order:   make([]NodeID, 0, nodeCount),
		Batches: make([][]NodeID, 0),
	}

	active := 0
	for i := range nodeCount {
		if g.Present[i] {
			active++
		}
	}

	current := make([]NodeID, 0, nodeCount)
	for i := range nodeCount {
		if g.Present[i] && indeg[i] == 0 {
			current = append(current, nodeID(i))
		}
	}
	slices.Sort(current)

	visited := 0
	for len(current) > 0 {
		batch := make([]NodeID, len(current))
		copy(batch, current)
		topo.Batches = append(topo.Batches, batch)

		next := make([]NodeID, 0)
		for _, id := range batch {
			topo.Order = append(topo.Order, id)
			visited++
			for _, to := range g.Edges[int(id)] {
				if !g.Present[int(to)] {
					continue
				}
				indeg[int(to)]--
				if indeg[int(to)] == 0 {
					next = append(next, to)
				}
			}
		}
		slices.Sort(next)
		current = next
	}

	if visited != active {
		topo.Cyclic = true
		for i := range nodeCount {
			if g.Present[i] && indeg[i] > 0 {
				topo.Cycles = append(topo.Cycles, nodeID(i))
			}
		}
		slices.Sort(topo.Cycles)
	}

	return topo
}

// Cycles finds one cycle per strongly connected component that has one
// (including a node with an edge to itself). Each cycle starts at the
// smallest node of its component and follows edges in order; the last
// node's edge back to the first closes it.
func Cycles(g Graph) [][]NodeID {
	var out [][]NodeID
	for _, comp := range StronglyConnected(g) {
		start := comp[0]
		if len(comp) == 1 && !slices.Contains(g.Edges[start], start) {
			continue
		}
		in := make(map[NodeID]bool, len(comp))
		for _, id := range comp {
			in[id] = true
		}
		out = append(out, findCycle(g, start, in))
	}
	return out
}

// findCycle walks from start inside one component until an edge returns to
// start. A strongly connected component always has such a path.
func findCycle(g Graph, start NodeID, in map[NodeID]bool) []NodeID {
	path := []NodeID{start}
	onPath := map[NodeID]bool{start: true}
	var walk func(n NodeID) bool
	walk = func(n NodeID) bool {
		for _, to := range g.Edges[n] {
			if to == start {
				return true
			}
			if !in[to] || onPath[to] {
				continue
			}
			path = append(path, to)
			onPath[to] = true
			if walk(to) {
				return true
			}
			path = path[:len(path)-1]
			delete(onPath, to)
		}
		return false
	}
	walk(start)
	return path
}

// StronglyConnected returns the strongly connected components of the
// present nodes (Tarjan). Each component is sorted; components are ordered
// by their smallest node.
func StronglyConnected(g Graph) [][]NodeID {
	n := len(g.Edges)
	index := make([]int, n)
	low := make([]int, n)
	onStack := make([]bool, n)
	for i := range index {
		index[i] = -1
	}
	var (
		stack []NodeID
		comps [][]NodeID
		next  int
	)
	var strong func(v NodeID)
	strong = func(v NodeID) {
		index[v], low[v] = next, next
		next++
		stack = append(stack, v)
		onStack[v] = true
		for _, w := range g.Edges[v] {
			if !g.Present[w] {
				continue
			}
			if index[w] < 0 {
				strong(w)
				low[v] = min(low[v], low[w])
			} else if onStack[w] {
				low[v] = min(low[v], index[w])
			}
		}
		if low[v] != index[v] {
			return
		}
		var comp []NodeID
		for {
			w := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[w] = false
			comp = append(comp, w)
			if w == v {
				break
			}
		}
		slices.Sort(comp)
		comps = append(comps, comp)
	}
	for i := range n {
		if g.Present[i] && index[i] < 0 {
			strong(nodeID(i))
		}
	}
	slices.SortFunc(comps, func(a, b []NodeID) int { return int(a[0]) - int(b[0]) })
	return comps
}
