package dialect

import (
	"fmt"
	"strings"
)

// persona is the voice of a hint for one dialect.
type persona struct {
	LeadIn  string // %s is the detected construct
	Closing string
}

func personaFor(k Kind) persona {
	switch k {
	case Bash:
		return persona{LeadIn: "this reads like bash (%s).", Closing: "shale compiles to shell, but is not shell:"}
	case Python:
		return persona{LeadIn: "this reads like Python (%s).", Closing: "in shale,"}
	case Go:
		return persona{LeadIn: "this reads like Go (%s).", Closing: "in shale,"}
	default:
		return persona{LeadIn: "foreign syntax detected (%s)."}
	}
}

// Render builds the one-line hint text for h.
func Render(h Hint) string {
	p := personaFor(h.Dialect)
	parts := []string{fmt.Sprintf(p.LeadIn, h.Reason)}
	if advice := strings.TrimSpace(h.Advice); advice != "" {
		if p.Closing != "" {
			parts = append(parts, p.Closing)
		}
		parts = append(parts, advice)
	}
	return strings.Join(parts, " ")
}
