package diag

// Severity orders diagnostics; SevError and above block code generation.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

var severityNames = [...]string{
	SevInfo:    "INFO",
	SevWarning: "WARNING",
	SevError:   "ERROR",
}

func (s Severity) String() string {
	if int(s) < len(severityNames) {
		return severityNames[s]
	}
	return "UNKNOWN"
}

// Blocks reports whether a diagnostic of this severity stops compilation.
func (s Severity) Blocks() bool { return s >= SevError }
