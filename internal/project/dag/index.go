// Package dag builds the module import graph of a program, orders it and
// finds its cycles. The graph helpers also serve the function call graph.
package dag

import (
	"slices"

	"shale/internal/project"
)

// NodeID indexes a graph node: a module path, or a function in call graphs.
type NodeID uint32

type ModuleIndex struct {
	NameToID map[string]NodeID
	IDToName []string
}

// BuildIndex numbers every module path the metas mention, imported or
// not, in sorted order so IDs are stable across runs.
func BuildIndex(metas []project.ModuleMeta) ModuleIndex {
	seen := make(map[string]bool, len(metas))
	var paths []string
	add := func(p string) {
		if p != "" && !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}
	for _, meta := range metas {
		add(meta.Path)
		for _, dep := range meta.Imports {
			add(dep.Path)
		}
	}
	slices.Sort(paths)

	idx := ModuleIndex{NameToID: make(map[string]NodeID, len(paths)), IDToName: paths}
	for i, path := range paths {
		idx.NameToID[path] = NodeID(i) // #nosec G115 -- one node per file
	}
	return idx
}
