package target

// Capability is a feature a construct may need from the output shell.
type Capability uint16

const (
	CapLists Capability = 1 << iota
	CapMaps
	CapMultiSinkRedirect
	CapLogFanOut
	CapWaitAny
	CapLocalVars
	CapProcessSubstitution
)

var capNames = map[Capability]string{
	CapLists:               "list values",
	CapMaps:                "map values",
	CapMultiSinkRedirect:   "redirecting to several files",
	CapLogFanOut:           "with log(...)",
	CapWaitAny:             "wait_any()",
	CapLocalVars:           "function-local variables",
	CapProcessSubstitution: "process substitution",
}

func (c Capability) String() string {
	if name, ok := capNames[c]; ok {
		return name
	}
	return "unknown capability"
}

var capabilities = [targetCount]Capability{
	Rich: CapLists | CapMaps | CapMultiSinkRedirect | CapLogFanOut |
		CapWaitAny | CapLocalVars | CapProcessSubstitution,
	Portable: 0,
}

// Has reports whether t supports every capability in c.
func (t Target) Has(c Capability) bool {
	if t >= targetCount {
		return false
	}
	return capabilities[t]&c == c
}
