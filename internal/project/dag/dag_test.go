package dag

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"shale/internal/diag"
	"shale/internal/project"
	"shale/internal/source"
)

func idsToNames(idx ModuleIndex, ids []NodeID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = idx.IDToName[int(id)]
	}
	return out
}

func TestBuildIndexIncludesImports(t *testing.T) {
	metas := []project.ModuleMeta{
		{Path: "main.shl", Imports: []project.ImportMeta{{Path: "lib/math.shl"}, {Path: "lib/util.shl"}}},
		{Path: "lib/util.shl"},
	}
	idx := BuildIndex(metas)
	want := []string{"lib/math.shl", "lib/util.shl", "main.shl"}
	if diff := cmp.Diff(want, idx.IDToName); diff != "" {
		t.Fatalf("index (-want +got):\n%s", diff)
	}
	for i, name := range want {
		if id := idx.NameToID[name]; int(id) != i {
			t.Fatalf("NameToID[%q] = %d, want %d", name, id, i)
		}
	}
}

func TestBuildGraphReportsImportProblems(t *testing.T) {
	missing := source.Span{File: 1, Start: 5, End: 8}
	self := source.Span{File: 1, Start: 10, End: 14}
	dup := source.Span{File: 1, Start: 20, End: 24}
	app := project.ModuleMeta{
		Path: "app",
		Imports: []project.ImportMeta{
			{Path: "core", Span: source.Span{File: 1, Start: 1, End: 4}},
			{Path: "util", Span: missing},
			{Path: "app", Span: self},
			{Path: "core", Span: dup},
		},
	}
	core := project.ModuleMeta{Path: "core"}

	bag := diag.NewBag(10)
	nodes := []ModuleNode{
		{Meta: app, Reporter: diag.BagReporter{Bag: bag}},
		{Meta: core},
	}
	idx := BuildIndex([]project.ModuleMeta{app, core})
	g, _ := BuildGraph(idx, nodes)

	appDeps := idsToNames(idx, g.Edges[idx.NameToID["app"]])
	if diff := cmp.Diff([]string{"core", "util"}, appDeps); diff != "" {
		t.Fatalf("app deps (-want +got):\n%s", diff)
	}
	if g.Present[idx.NameToID["util"]] {
		t.Fatal("util is imported but was never loaded")
	}

	var got []diag.Code
	for _, d := range bag.Items() {
		got = append(got, d.Code)
	}
	want := []diag.Code{diag.ProjImportNotFound, diag.ProjSelfImport, diag.ProjDuplicateImport}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("codes (-want +got):\n%s", diff)
	}
}

func TestToposortKahnBatches(t *testing.T) {
	metas := []project.ModuleMeta{
		{Path: "b", Imports: []project.ImportMeta{{Path: "c"}}},
		{Path: "a"},
		{Path: "c"},
	}
	nodes := []ModuleNode{{Meta: metas[0]}, {Meta: metas[1]}, {Meta: metas[2]}}
	idx := BuildIndex(metas)
	g, _ := BuildGraph(idx, nodes)

	topo := ToposortKahn(g)
	if topo.Cyclic {
		t.Fatalf("expected acyclic graph")
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, idsToNames(idx, topo.Order)); diff != "" {
		t.Fatalf("order (-want +got):\n%s", diff)
	}
	var batches [][]string
	for _, b := range topo.Batches {
		batches = append(batches, idsToNames(idx, b))
	}
	if diff := cmp.Diff([][]string{{"a", "b"}, {"c"}}, batches); diff != "" {
		t.Fatalf("batches (-want +got):\n%s", diff)
	}
}

func TestReportCyclesOncePerCycle(t *testing.T) {
	// a -> b -> c -> a, plus d -> d is excluded by BuildGraph (self import)
	closing := source.Span{File: 3, Start: 7, End: 12}
	metas := []project.ModuleMeta{
		{Path: "a", Imports: []project.ImportMeta{{Path: "b", Span: source.Span{File: 1, Start: 1, End: 2}}}},
		{Path: "b", Imports: []project.ImportMeta{{Path: "c", Span: source.Span{File: 2, Start: 1, End: 2}}}},
		{Path: "c", Imports: []project.ImportMeta{{Path: "a", Span: closing}}},
		{Path: "e", Imports: []project.ImportMeta{{Path: "a"}}},
	}
	bag := diag.NewBag(10)
	var nodes []ModuleNode
	for _, m := range metas {
		nodes = append(nodes, ModuleNode{Meta: m, Reporter: diag.BagReporter{Bag: bag}})
	}
	idx := BuildIndex(metas)
	g, slots := BuildGraph(idx, nodes)

	topo := ToposortKahn(g)
	if !topo.Cyclic {
		t.Fatal("expected a cycle")
	}
	if n := ReportCycles(idx, g, slots); n != 1 {
		t.Fatalf("reported %d cycles, want 1", n)
	}
	items := bag.Items()
	if len(items) != 1 || items[0].Code != diag.ProjImportCycle {
		t.Fatalf("diagnostics = %+v", items)
	}
	if items[0].Primary != closing || items[0].Message != "import cycle: a -> b -> c -> a" {
		t.Fatalf("cycle diagnostic = %q at %v", items[0].Message, items[0].Primary)
	}
}

func TestCyclesOnCallGraph(t *testing.T) {
	// 0 -> 1 -> 0 (mutual), 2 -> 2 (direct), 3 -> 0 (calls into a cycle)
	g := NewGraph(4)
	g.AddEdge(0, 1)
	g.AddEdge(1, 0)
	g.AddEdge(2, 2)
	g.AddEdge(3, 0)
	g.AddEdge(3, 0)

	if len(g.Edges[3]) != 1 {
		t.Fatalf("AddEdge must not duplicate edges: %v", g.Edges[3])
	}
	want := [][]NodeID{{0, 1}, {2}}
	if diff := cmp.Diff(want, Cycles(g)); diff != "" {
		t.Fatalf("cycles (-want +got):\n%s", diff)
	}
	comps := StronglyConnected(g)
	if len(comps) != 3 {
		t.Fatalf("components = %v", comps)
	}
}
