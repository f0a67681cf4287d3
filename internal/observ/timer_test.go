package observ

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// fakeClock advances by step on every reading.
func fakeClock(step time.Duration) func() time.Time {
	now := time.Unix(0, 0)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	tm.now = fakeClock(time.Millisecond)
	parse := tm.Begin("parse")
	tm.End(parse, "files=2")
	sema := tm.Begin("sema")
	tm.End(sema, "")
	tm.End(42, "ignored")

	want := Report{
		TotalMS: 2,
		Phases: []PhaseReport{
			{Name: "parse", DurationMS: 1, Note: "files=2"},
			{Name: "sema", DurationMS: 1},
		},
	}
	if diff := cmp.Diff(want, tm.Report()); diff != "" {
		t.Fatalf("report (-want +got):\n%s", diff)
	}
}

func TestMergeSumsByName(t *testing.T) {
	a := Report{TotalMS: 3, Phases: []PhaseReport{{Name: "parse", DurationMS: 1, Note: "x"}, {Name: "sema", DurationMS: 2}}}
	b := Report{TotalMS: 5, Phases: []PhaseReport{{Name: "sema", DurationMS: 1}, {Name: "codegen", DurationMS: 4}}}
	got := Report{}.Merge(a).Merge(b)
	want := Report{TotalMS: 8, Phases: []PhaseReport{
		{Name: "parse", DurationMS: 1, Note: "x"},
		{Name: "sema", DurationMS: 3},
		{Name: "codegen", DurationMS: 4},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("merge (-want +got):\n%s", diff)
	}
	if a.Phases[1].DurationMS != 2 {
		t.Fatalf("Merge mutated its receiver")
	}
}

func TestWriteSummary(t *testing.T) {
	var sb strings.Builder
	r := Report{TotalMS: 1.5, Phases: []PhaseReport{{Name: "parse", DurationMS: 1.5, Note: "files=1"}}}
	if err := r.WriteSummary(&sb); err != nil {
		t.Fatal(err)
	}
	want := "timings:\n  parse          1.50 ms  // files=1\n  total          1.50 ms\n"
	if sb.String() != want {
		t.Fatalf("got %q\nwant %q", sb.String(), want)
	}
}
