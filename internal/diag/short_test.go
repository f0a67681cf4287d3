package diag

import (
	"testing"

	"shale/internal/source"
)

func TestFormatShort(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.AddVirtual("sample.shl", []byte("a\nb\n"))

	diags := []Diagnostic{
		NewError(SemaUnknownOption, source.Span{File: file, Start: 2, End: 3}, "unknown option 'usr'").
			WithNote(source.Span{File: file, Start: 0, End: 1}, "did you mean 'user'?"),
		New(SevWarning, SynUnexpectedToken, source.Span{File: file, Start: 0, End: 1}, "first line\nsecond"),
	}

	want := "note SEM3004 sample.shl:1:1 did you mean 'user'?\n" +
		"warning SYN2001 sample.shl:1:1 first line second\n" +
		"error SEM3004 sample.shl:2:1 unknown option 'usr'"
	if got := FormatShort(diags, fs, true); got != want {
		t.Fatalf("unexpected output:\nwant:\n%s\n\ngot:\n%s", want, got)
	}
}

func TestBagLimitSortDedup(t *testing.T) {
	bag := NewBag(3)
	sp := func(s uint32) source.Span { return source.Span{Start: s, End: s + 1} }

	bag.Add(NewError(SemaTypeMismatch, sp(9), "late"))
	bag.Add(NewError(SemaUnknownIdentifier, sp(1), "early"))
	bag.Add(NewError(SemaUnknownIdentifier, sp(1), "early again"))
	if bag.Add(NewError(SemaError, sp(0), "over the limit")) {
		t.Fatal("Add must refuse diagnostics past the limit")
	}

	bag.Sort()
	bag.Dedup()
	items := bag.Items()
	if len(items) != 2 || items[0].Message != "early" || items[1].Message != "late" {
		t.Fatalf("unexpected items: %+v", items)
	}
	if !bag.HasErrors() {
		t.Fatal("HasErrors = false")
	}
}

func TestCodeID(t *testing.T) {
	tests := map[Code]string{
		LexInvalidEscape:      "LEX1003",
		SynSeparatorInArgs:    "SYN2009",
		SemaTargetUnsupported: "SEM3008",
		IOLoadFileError:       "IO4001",
		ProjImportCycle:       "PRJ5003",
		Code(9999):            "E0000",
	}
	for code, want := range tests {
		if got := code.ID(); got != want {
			t.Fatalf("%d.ID() = %q, want %q", code, got, want)
		}
	}
	if ProjImportCycle.String() != "[PRJ5003]: Import cycle detected" {
		t.Fatalf("String() = %q", ProjImportCycle.String())
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(0)
	r := NewDedupReporter(BagReporter{Bag: bag})
	span := source.Span{Start: 1, End: 2}
	r.Report(SemaError, SevError, span, "x", nil, nil)
	r.Report(SemaError, SevError, span, "x", nil, nil)
	r.Report(SemaError, SevError, span, "y", nil, nil)
	if bag.Len() != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", bag.Len())
	}
}
