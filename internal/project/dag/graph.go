package dag

import (
	"fmt"
	"slices"
	"strings"

	"shale/internal/diag"
	"shale/internal/project"
	"shale/internal/source"
)

type Graph struct {
	Edges   [][]NodeID // Edges[from] = []to
	Indeg   []int      // входящие степени для Kahn (учитывает только присутствующие узлы)
	Present []bool     // признак, что узел реально существует (а не только импортируется)
}

// NewGraph returns an empty graph of n present nodes.
func NewGraph(n int) Graph {
	g := Graph{
		Edges:   make([][]NodeID, n),
		Indeg:   make([]int, n),
		Present: make([]bool, n),
	}
	for i := range g.Present {
		g.Present[i] = true
	}
	return g
}

// AddEdge adds from -> to once.
func (g *Graph) AddEdge(from, to NodeID) {
	if slices.Contains(g.Edges[from], to) {
		return
	}
	g.Edges[from] = append(g.Edges[from], to)
	if g.Present[to] {
		g.Indeg[to]++
	}
}

type ModuleNode struct {
	Meta     project.ModuleMeta
	Reporter diag.Reporter
}

type ModuleSlot struct {
	Meta     project.ModuleMeta
	Reporter diag.Reporter
	Present  bool
}

func BuildGraph(idx ModuleIndex, nodes []ModuleNode) (Graph, []ModuleSlot) {
	nodeCount := len(idx.IDToName)
	g := Graph{
		Edges:   make([][]NodeID, nodeCount),
		Indeg:   make([]int, nodeCount),
		Present: make([]bool, nodeCount),
	}
	slots := make([]ModuleSlot, nodeCount)
	for i, name := range idx.IDToName {
		slots[i].Meta.Path = name
	}

	for _, node := range nodes {
		meta := node.Meta
		if meta.Path == "" {
			continue
		}
		id, ok := idx.NameToID[meta.Path]
		if !ok {
			// не должно происходить, индекс строится на тех же метаданных
			continue
		}
		slot := &slots[int(id)]
		if slot.Present {
			continue
		}
		slot.Meta = meta
		slot.Reporter = node.Reporter
		slot.Present = true
		g.Present[int(id)] = true
	}

	for from := range slots {
		slot := &slots[from]
		if !slot.Present || len(slot.Meta.Imports) == 0 {
			continue
		}
		seen := make(map[NodeID]source.Span, len(slot.Meta.Imports))
		for _, dep := range slot.Meta.Imports {
			if dep.Path == "" {
				continue
			}
			toID, ok := idx.NameToID[dep.Path]
			if !ok {
				continue
			}
			if NodeID(from) == toID {
				report(slot.Reporter, diag.ProjSelfImport, dep.Span,
					fmt.Sprintf("module %q imports itself", slot.Meta.Path), nil)
				continue
			}
			if prev, dup := seen[toID]; dup {
				report(slot.Reporter, diag.ProjDuplicateImport, dep.Span,
					fmt.Sprintf("%q is already imported", dep.Path),
					[]diag.Note{{Span: prev, Msg: "first import is here"}})
				continue
			}
			seen[toID] = dep.Span

			g.Edges[from] = append(g.Edges[from], toID)
			if g.Present[int(toID)] {
				g.Indeg[int(toID)]++
			} else {
				report(slot.Reporter, diag.ProjImportNotFound, dep.Span,
					fmt.Sprintf("module %q imports missing file %q", slot.Meta.Path, idx.IDToName[int(toID)]), nil)
			}
		}
		if len(g.Edges[from]) > 1 {
			slices.Sort(g.Edges[from])
		}
	}

	return g, slots
}

func report(r diag.Reporter, code diag.Code, sp source.Span, msg string, notes []diag.Note) {
	if r == nil {
		return
	}
	r.Report(code, diag.SevError, sp, msg, notes, nil)
}

// ReportCycles reports one ProjImportCycle per cycle, at the import that
// closes it.
func ReportCycles(idx ModuleIndex, g Graph, slots []ModuleSlot) int {
	reported := 0
	for _, cycle := range Cycles(g) {
		names := make([]string, 0, len(cycle)+1)
		for _, id := range cycle {
			names = append(names, idx.IDToName[int(id)])
		}
		names = append(names, names[0])

		last := slots[int(cycle[len(cycle)-1])]
		closing := last.Meta.Span
		for _, imp := range last.Meta.Imports {
			if imp.Path == names[0] {
				closing = imp.Span
				break
			}
		}
		report(last.Reporter, diag.ProjImportCycle, closing,
			"import cycle: "+strings.Join(names, " -> "), nil)
		reported++
	}
	return reported
}
