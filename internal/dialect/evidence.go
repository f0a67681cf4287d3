package dialect

import "shale/internal/source"

// Hint is one piece of evidence for a dialect. Advice says what to write
// in shale instead.
type Hint struct {
	Dialect Kind
	Score   int
	Reason  string
	Advice  string
	Span    source.Span
}

// Evidence aggregates the hints of one file.
type Evidence struct {
	hints []Hint
}

func NewEvidence() *Evidence {
	return &Evidence{hints: make([]Hint, 0, 16)}
}

func (e *Evidence) Add(h Hint) {
	if e == nil {
		return
	}
	e.hints = append(e.hints, h)
}

func (e *Evidence) Hints() []Hint {
	if e == nil {
		return nil
	}
	return e.hints
}

// Strongest returns the highest scoring hint for k; the earliest wins a tie.
func (e *Evidence) Strongest(k Kind) (Hint, bool) {
	var best Hint
	found := false
	for _, h := range e.Hints() {
		if h.Dialect == k && (!found || h.Score > best.Score) {
			best, found = h, true
		}
	}
	return best, found
}
