package fix

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"

	"shale/internal/diag"
	"shale/internal/source"
)

func loadFile(t *testing.T, fsys afero.Fs, path, content string) (*source.FileSet, source.FileID) {
	t.Helper()
	if err := afero.WriteFile(fsys, path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	fs := source.NewFileSetFS(fsys)
	id, err := fs.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	return fs, id
}

func replace(file source.FileID, start, end uint32, text string) diag.Diagnostic {
	sp := source.Span{File: file, Start: start, End: end}
	return diag.NewError(diag.SemaUnknownIdentifier, sp, "unknown").
		WithFix("replace", diag.FixEdit{Span: sp, NewText: text})
}

func TestApplyAllRewritesFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	fs, id := loadFile(t, fsys, "/p/main.shl", "print(nme, vlaue)\n")
	diags := []diag.Diagnostic{
		replace(id, 11, 16, "value"),
		replace(id, 6, 9, "name"),
		replace(id, 7, 8, "x"), // overlaps the fix at 6..9
		diag.NewError(diag.SemaTypeMismatch, source.Span{File: id}, "no fix here"),
	}
	res, err := Apply(fsys, fs, diags, ApplyOptions{Mode: ApplyModeAll})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	got, _ := afero.ReadFile(fsys, "/p/main.shl")
	if diff := cmp.Diff("print(name, value)\n", string(got)); diff != "" {
		t.Fatalf("content (-want +got):\n%s", diff)
	}
	if len(res.Applied) != 2 || len(res.Skipped) != 1 || res.Skipped[0].Reason != "conflicts with an earlier fix" {
		t.Fatalf("unexpected result %+v", res)
	}
	info, _ := fsys.Stat("/p/main.shl")
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("mode changed to %v", info.Mode().Perm())
	}
}

func TestApplyOnceAndDryRun(t *testing.T) {
	fsys := afero.NewMemMapFs()
	fs, id := loadFile(t, fsys, "/m.shl", "a b")
	diags := []diag.Diagnostic{replace(id, 2, 3, "B"), replace(id, 0, 1, "A")}
	res, err := Apply(fsys, fs, diags, ApplyOptions{Mode: ApplyModeOnce, DryRun: true})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(res.FileChanges) != 1 || string(res.FileChanges[0].Content) != "A b" {
		t.Fatalf("want first fix in source order, got %+v", res.FileChanges)
	}
	got, _ := afero.ReadFile(fsys, "/m.shl")
	if string(got) != "a b" {
		t.Fatalf("dry run wrote the file")
	}
}

func TestApplySkipsVirtualFiles(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("mem.shl", []byte("x"))
	_, err := Apply(afero.NewMemMapFs(), fs, []diag.Diagnostic{replace(id, 0, 1, "y")}, ApplyOptions{Mode: ApplyModeAll})
	if !errors.Is(err, ErrNoFixes) {
		t.Fatalf("want ErrNoFixes, got %v", err)
	}
}

func TestSpansConflict(t *testing.T) {
	sp := func(a, b uint32) source.Span { return source.Span{Start: a, End: b} }
	tests := []struct {
		a, b source.Span
		want bool
	}{
		{sp(0, 3), sp(3, 5), false},
		{sp(0, 3), sp(2, 5), true},
		{sp(2, 2), sp(2, 2), false},
		{sp(2, 2), sp(0, 5), true},
		{sp(0, 2), sp(2, 2), false},
	}
	for _, tt := range tests {
		if got := spansConflict(tt.a, tt.b); got != tt.want {
			t.Fatalf("spansConflict(%v, %v) = %v", tt.a, tt.b, got)
		}
	}
}
