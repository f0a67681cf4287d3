package diag

import (
	"fmt"
	"sort"
	"strings"

	"shale/internal/source"
)

type shortDiagnostic struct {
	Severity string
	Code     string
	Path     string
	Line     uint32
	Column   uint32
	Message  string
}

// FormatShort renders one line per diagnostic ("error SEM3002 a.shl:3:5 msg"),
// sorted by position. Notes follow as "note" lines when includeNotes is set.
// Tests compare against this form.
func FormatShort(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if fs == nil || len(diags) == 0 {
		return ""
	}
	rendered := make([]shortDiagnostic, 0, len(diags))
	for i := range diags {
		d := &diags[i]
		rendered = append(rendered, resolveShort(fs, d.Primary, severityLabel(d.Severity), d.Code, d.Message))
		if includeNotes {
			for _, n := range d.Notes {
				rendered = append(rendered, resolveShort(fs, n.Span, "note", d.Code, n.Msg))
			}
		}
	}
	sort.SliceStable(rendered, func(i, j int) bool {
		a, b := rendered[i], rendered[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})

	lines := make([]string, 0, len(rendered))
	for _, d := range rendered {
		lines = append(lines, fmt.Sprintf("%s %s %s:%d:%d %s", d.Severity, d.Code, d.Path, d.Line, d.Column, d.Message))
	}
	return strings.Join(lines, "\n")
}

func resolveShort(fs *source.FileSet, span source.Span, sev string, code Code, msg string) shortDiagnostic {
	start, _ := fs.Resolve(span)
	return shortDiagnostic{
		Severity: sev,
		Code:     code.ID(),
		Path:     strings.TrimPrefix(fs.Get(span.File).Path, "./"),
		Line:     start.Line,
		Column:   start.Col,
		Message:  sanitizeMessage(msg),
	}
}

func severityLabel(sev Severity) string {
	switch sev {
	case SevError:
		return "error"
	case SevWarning:
		return "warning"
	default:
		return "info"
	}
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
