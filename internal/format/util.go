package format

import "shale/internal/source"

func clampToContent(pos, length int) int {
	if pos < 0 {
		return 0
	}
	if pos > length {
		return length
	}
	return pos
}

func isBlank(b byte) bool { return b == ' ' || b == '\t' }

// byteRange is a half-open range of source offsets.
type byteRange struct{ start, end int }

func (r byteRange) contains(off int) bool { return off >= r.start && off < r.end }

func rangeOf(sp source.Span) byteRange {
	return byteRange{start: int(sp.Start), end: int(sp.End)}
}
