// Package testkit holds structural checks shared by parser, driver and fuzz
// tests.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"shale/internal/ast"
	"shale/internal/source"
)

// CheckSpanInvariants verifies the spans of a parsed file:
// the file span is non-empty and inside the content, every item span is
// non-empty and inside the file span, and every function body lies inside
// its item.
func CheckSpanInvariants(b *ast.Builder, fileID ast.FileID, sf *source.File) error {
	if b == nil || sf == nil {
		return fmt.Errorf("nil builder or file")
	}
	f := b.Files.Get(fileID)
	if f == nil {
		return fmt.Errorf("file node not found")
	}
	contentLen, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if len(f.Items) > 0 && f.Span.End <= f.Span.Start {
		return fmt.Errorf("file span is empty: %v", f.Span)
	}
	if f.Span.File != sf.ID {
		return fmt.Errorf("file span points to file %d, want %d", f.Span.File, sf.ID)
	}
	if f.Span.End > contentLen {
		return fmt.Errorf("file span end beyond content: %d > %d", f.Span.End, contentLen)
	}

	for _, id := range f.Items {
		item := b.Items.Get(id)
		if item == nil {
			return fmt.Errorf("nil item for id=%d", id)
		}
		if err := within(item.Span, f.Span, sf.ID); err != nil {
			return fmt.Errorf("item %d: %w", id, err)
		}
		fn, ok := b.Items.Fn(id)
		if !ok {
			continue
		}
		body := b.Stmts.Get(fn.Body)
		if body == nil {
			return fmt.Errorf("fn item %d has no body", id)
		}
		if err := within(body.Span, item.Span, sf.ID); err != nil {
			return fmt.Errorf("body of item %d: %w", id, err)
		}
	}
	return nil
}

func within(sp, outer source.Span, file source.FileID) error {
	if sp.End <= sp.Start {
		return fmt.Errorf("empty span %v", sp)
	}
	if sp.File != file {
		return fmt.Errorf("span in file %d, want %d", sp.File, file)
	}
	if sp.Start < outer.Start || sp.End > outer.End {
		return fmt.Errorf("span %v outside %v", sp, outer)
	}
	return nil
}
