package builtins

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"shale/internal/target"
)

func TestSudoOptionTable(t *testing.T) {
	b, ok := Lookup("sudo")
	if !ok {
		t.Fatal("sudo is not a builtin")
	}
	want := []string{"user", "non_interactive", "invalidate", "prompt", "preserve_env", "allow_fail"}
	if diff := cmp.Diff(want, b.OptionNames()); diff != "" {
		t.Fatalf("sudo options (-want +got):\n%s", diff)
	}
	af, _ := b.Option("allow_fail")
	if af.Context != CtxStatement || af.Kind != OptLitBool {
		t.Fatalf("allow_fail = %+v", af)
	}
	mod, _ := LookupModifier("sudo")
	if _, ok := mod.Option("allow_fail"); ok {
		t.Fatal("the sudo modifier must not accept allow_fail")
	}
}

func TestCaptureAllowFailContext(t *testing.T) {
	b, _ := Lookup("capture")
	af, ok := b.Option("allow_fail")
	if !ok || af.Context != CtxCapture {
		t.Fatalf("capture allow_fail = %+v, %v", af, ok)
	}
}

func TestPlacementsAndCapabilities(t *testing.T) {
	tests := []struct {
		name  string
		place Placement
	}{
		{"lines", PlaceForHeader},
		{"range", PlaceForHeader},
		{"glob", PlacePattern},
		{"print", PlaceStatement},
		{"run", PlaceAny},
	}
	for _, tt := range tests {
		b, ok := Lookup(tt.name)
		if !ok || b.Place != tt.place {
			t.Fatalf("%s: place = %v, want %v", tt.name, b.Place, tt.place)
		}
	}
	wa, _ := Lookup("wait_any")
	if wa.Requires != target.CapWaitAny || target.Portable.Has(wa.Requires) {
		t.Fatalf("wait_any must require a capability portable lacks")
	}
	if !IsReserved("args") || !IsReserved("print") || IsReserved("main") {
		t.Fatal("IsReserved mismatch")
	}
}

func TestSuggest(t *testing.T) {
	tests := []struct {
		name       string
		candidates []string
		want       string
		ok         bool
	}{
		{"alow_fail", []string{"allow_fail", "stderr"}, "allow_fail", true},
		{"allow_fial", []string{"allow_fail", "stderr"}, "allow_fail", true},
		{"usr", []string{"user", "prompt"}, "user", true},
		{"zzzzzz", []string{"user", "prompt"}, "", false},
		{"x", nil, "", false},
	}
	for _, tt := range tests {
		got, ok := Suggest(tt.name, tt.candidates)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("Suggest(%q) = %q,%v; want %q,%v", tt.name, got, ok, tt.want, tt.ok)
		}
	}
	if got := DidYouMean("pritn", Names()); got != "; did you mean 'print'?" {
		t.Fatalf("DidYouMean = %q", got)
	}
}
