package token

import "shale/internal/source"

type TriviaKind uint8

const (
	TriviaSpace TriviaKind = iota
	TriviaComment
)

type Trivia struct {
	Kind TriviaKind
	Span source.Span
	Text string
}

func (k TriviaKind) String() string {
	if k == TriviaComment {
		return "comment"
	}
	return "space"
}
