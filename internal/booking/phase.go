package booking

// Phase is the state of one booking attempt.
type Phase int

const (
	PhaseStarted Phase = iota
	PhaseChecking
	PhaseInserting
	PhaseCommitting
	PhaseCommitted
	PhaseAbortedConflict
	PhaseAbortedFatal
)

var phaseNames = [...]string{
	PhaseStarted:         "started",
	PhaseChecking:        "checking",
	PhaseInserting:       "inserting",
	PhaseCommitting:      "committing",
	PhaseCommitted:       "committed",
	PhaseAbortedConflict: "aborted(conflict)",
	PhaseAbortedFatal:    "aborted(fatal)",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// Terminal reports whether no further transition follows p.
func (p Phase) Terminal() bool {
	return p == PhaseCommitted || p == PhaseAbortedConflict || p == PhaseAbortedFatal
}
