package dialect

import "fmt"

// Kind is a foreign language a shale file may resemble.
type Kind uint8

const (
	Unknown Kind = iota
	Bash
	Python
	Go

	kindCount
)

func (k Kind) String() string {
	switch k {
	case Bash:
		return "bash"
	case Python:
		return "python"
	case Go:
		return "go"
	default:
		return "unknown"
	}
}

func (k Kind) GoString() string {
	return fmt.Sprintf("dialect.Kind(%s)", k.String())
}
