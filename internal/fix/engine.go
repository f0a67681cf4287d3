// Package fix applies the edits attached to diagnostics back to the source
// files they came from.
package fix

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/afero"

	"shale/internal/diag"
	"shale/internal/source"
)

// ErrNoFixes is returned when no fixes were applied.
var ErrNoFixes = errors.New("no applicable fixes found")

// ApplyMode selects which fixes are applied.
type ApplyMode uint8

const (
	// ApplyModeOnce applies the first fix in source order.
	ApplyModeOnce ApplyMode = iota
	// ApplyModeAll applies every fix that does not overlap an earlier one.
	ApplyModeAll
)

type ApplyOptions struct {
	Mode ApplyMode
	// DryRun computes the result without writing files.
	DryRun bool
}

// AppliedFix records a fix that was applied.
type AppliedFix struct {
	Title   string
	Code    diag.Code
	Message string
	Path    string
}

// SkippedFix records a fix that was not applied and why.
type SkippedFix struct {
	Title  string
	Reason string
}

// FileChange is the new content of one modified file.
type FileChange struct {
	Path      string
	EditCount int
	Content   []byte
}

type ApplyResult struct {
	Applied     []AppliedFix
	Skipped     []SkippedFix
	FileChanges []FileChange
}

type candidate struct {
	diag  diag.Diagnostic
	fix   diag.Fix
	order int
}

// Apply selects fixes from diagnostics and writes the edited files to fsys.
func Apply(fsys afero.Fs, fs *source.FileSet, diagnostics []diag.Diagnostic, opts ApplyOptions) (*ApplyResult, error) {
	result := &ApplyResult{}
	if fs == nil {
		return result, fmt.Errorf("fix: FileSet is nil")
	}

	candidates := gatherCandidates(diagnostics)
	if len(candidates) == 0 {
		return result, ErrNoFixes
	}
	sortCandidates(candidates)
	if opts.Mode == ApplyModeOnce {
		candidates = candidates[:1]
	}

	edits := make(map[source.FileID][]diag.FixEdit)
	for _, cand := range candidates {
		if reason := checkCandidate(fs, cand, edits); reason != "" {
			result.Skipped = append(result.Skipped, SkippedFix{Title: cand.fix.Title, Reason: reason})
			continue
		}
		for _, e := range cand.fix.Edits {
			edits[e.Span.File] = append(edits[e.Span.File], e)
		}
		result.Applied = append(result.Applied, AppliedFix{
			Title:   cand.fix.Title,
			Code:    cand.diag.Code,
			Message: cand.diag.Message,
			Path:    fs.Get(cand.diag.Primary.File).Path,
		})
	}
	if len(result.Applied) == 0 {
		return result, ErrNoFixes
	}

	for fileID, fileEdits := range edits {
		file := fs.Get(fileID)
		result.FileChanges = append(result.FileChanges, FileChange{
			Path:      file.Path,
			EditCount: len(fileEdits),
			Content:   applyEdits(file.Content, fileEdits),
		})
	}
	sort.Slice(result.FileChanges, func(i, j int) bool {
		return result.FileChanges[i].Path < result.FileChanges[j].Path
	})
	if opts.DryRun {
		return result, nil
	}
	for _, ch := range result.FileChanges {
		if err := writePreservingMode(fsys, ch.Path, ch.Content); err != nil {
			return result, err
		}
	}
	return result, nil
}

func gatherCandidates(diagnostics []diag.Diagnostic) []candidate {
	var cands []candidate
	for _, d := range diagnostics {
		for _, f := range d.Fixes {
			cands = append(cands, candidate{diag: d, fix: f, order: len(cands)})
		}
	}
	return cands
}

// sortCandidates orders fixes by file, then position, then discovery order.
func sortCandidates(candidates []candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		di, dj := candidates[i].diag.Primary, candidates[j].diag.Primary
		if di.File != dj.File {
			return di.File < dj.File
		}
		if di.Start != dj.Start {
			return di.Start < dj.Start
		}
		if di.End != dj.End {
			return di.End < dj.End
		}
		return candidates[i].order < candidates[j].order
	})
}

// checkCandidate returns why cand cannot be applied on top of accepted, or "".
func checkCandidate(fs *source.FileSet, cand candidate, accepted map[source.FileID][]diag.FixEdit) string {
	if len(cand.fix.Edits) == 0 {
		return "fix has no edits"
	}
	for i, e := range cand.fix.Edits {
		if int(e.Span.File) >= fs.Len() {
			return "edit points to an unknown file"
		}
		file := fs.Get(e.Span.File)
		if file.Flags&source.FileVirtual != 0 {
			return "target file is virtual"
		}
		if e.Span.End < e.Span.Start || int(e.Span.End) > len(file.Content) {
			return "edit span out of range"
		}
		for _, prev := range accepted[e.Span.File] {
			if spansConflict(prev.Span, e.Span) {
				return "conflicts with an earlier fix"
			}
		}
		for _, other := range cand.fix.Edits[:i] {
			if other.Span.File == e.Span.File && spansConflict(other.Span, e.Span) {
				return "fix has overlapping edits"
			}
		}
	}
	return ""
}

// spansConflict reports whether two half-open spans overlap. Two insertions
// never conflict; an insertion conflicts with a span strictly containing it.
func spansConflict(a, b source.Span) bool {
	switch {
	case a.Start == a.End && b.Start == b.End:
		return false
	case a.Start == a.End:
		return b.Start < a.Start && a.Start < b.End
	case b.Start == b.End:
		return a.Start < b.Start && b.Start < a.End
	}
	return a.Start < b.End && b.Start < a.End
}

// applyEdits rewrites content back to front so earlier offsets stay valid.
func applyEdits(content []byte, edits []diag.FixEdit) []byte {
	sorted := append([]diag.FixEdit(nil), edits...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Span.Start > sorted[j].Span.Start
	})
	out := append([]byte(nil), content...)
	for _, e := range sorted {
		tail := append([]byte(e.NewText), out[e.Span.End:]...)
		out = append(out[:e.Span.Start], tail...)
	}
	return out
}

func writePreservingMode(fsys afero.Fs, path string, content []byte) error {
	mode := os.FileMode(0o644)
	if info, err := fsys.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := afero.WriteFile(fsys, path, content, mode); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
