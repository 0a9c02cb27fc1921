package gate

import "strings"

// State is the gate decision for one ref update.
type State int

const (
	Unevaluated State = iota
	BypassedCreate
	BypassedDelete
	Accepted
	Rejected
)

func (s State) String() string {
	switch s {
	case BypassedCreate:
		return "bypassed_create"
	case BypassedDelete:
		return "bypassed_delete"
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	default:
		return "unevaluated"
	}
}

// Exit codes of a completed evaluation. Fatal errors use the codes of
// internal/errors instead.
const (
	ExitAccepted = 0
	ExitRejected = 2
)

// Outcome is the result handed back to the process boundary.
type Outcome struct {
	State    State
	Accepted bool
	ExitCode int
	// Report is the rendered report; empty unless Rejected.
	Report     string
	Notices    []string
	Violations int
}

// Output is what the pusher sees: notices, then the report if any.
func (o *Outcome) Output() string {
	var b strings.Builder
	for _, n := range o.Notices {
		b.WriteString(n + "\n")
	}
	b.WriteString(o.Report)
	return b.String()
}
