package driver

import (
	"crypto/sha256"
	"fmt"

	"shale/internal/project"
	"shale/internal/project/dag"
)

// ComputeModuleHashes walks the topological order backwards so every
// module's hash covers its own content and the hashes of its imports.
// A cyclic graph yields no hashes.
func ComputeModuleHashes(idx dag.ModuleIndex, g dag.Graph, slots []dag.ModuleSlot, topo *dag.Topo) map[string]project.Digest {
	hashes := make(map[string]project.Digest, len(slots))
	if topo == nil || topo.Cyclic {
		return hashes
	}
	for i := len(topo.Order) - 1; i >= 0; i-- {
		id := topo.Order[i]
		slot := &slots[int(id)]
		if !slot.Present {
			continue
		}
		deps := make([]project.Digest, 0, len(g.Edges[int(id)]))
		for _, to := range g.Edges[int(id)] {
			if g.Present[int(to)] {
				deps = append(deps, hashes[idx.IDToName[int(to)]])
			}
		}
		hashes[slot.Meta.Path] = project.Combine(slot.Meta.ContentHash, deps...)
	}
	return hashes
}

// cacheKey identifies a shell artifact: the program hash, the root path
// (it is printed in the header) and every option that changes the text.
func (c *compilation) cacheKey(prog *program) project.Digest {
	o := c.opts
	settings := sha256.Sum256(fmt.Appendf(nil, "v%d|%s|%s|%t|%s|%s", diskCacheSchemaVersion, prog.metas[0].Path, o.Target, o.Diagnostics, o.Entry, o.Version))
	return project.Combine(prog.hashes[prog.metas[0].Path], project.Digest(settings))
}
