package types

import (
	"strings"
	"time"
)

type Phase uint8

const (
	PhaseDiscovery Phase = iota + 1
	PhaseExtraction
)

func (p Phase) String() string {
	switch p {
	case PhaseDiscovery:
		return "discovery"
	case PhaseExtraction:
		return "extraction"
	default:
		return "unknown"
	}
}

// RunState is the lifecycle state reported by the workflow engine.
type RunState string

const (
	RunStateStarted    RunState = "STARTED"
	RunStateRunning    RunState = "RUNNING"
	RunStateDone       RunState = "DONE"
	RunStateFailed     RunState = "FAILED"
	RunStateTerminated RunState = "TERMINATED"
)

// ParseRunState normalizes the engine's state string. Unknown values map to
// RunStateRunning so an unexpected intermediate state keeps the poller alive.
func ParseRunState(s string) RunState {
	switch RunState(strings.ToUpper(strings.TrimSpace(s))) {
	case RunStateStarted:
		return RunStateStarted
	case RunStateDone:
		return RunStateDone
	case RunStateFailed:
		return RunStateFailed
	case RunStateTerminated:
		return RunStateTerminated
	default:
		return RunStateRunning
	}
}

func (s RunState) IsTerminal() bool {
	return s == RunStateDone || s == RunStateFailed || s == RunStateTerminated
}

// RunHandle identifies one submitted run. It is never mutated after creation.
type RunHandle struct {
	RunID     string
	Phase     Phase
	CreatedAt time.Time
}

type LogEntry struct {
	NodeName string `json:"node_name,omitempty"`
	Error    string `json:"error,omitempty"`
	Status   string `json:"status,omitempty"`
}

// DiscoveryPayload is the request body of a discovery run.
type DiscoveryPayload struct {
	Keyword   string `json:"keyword"`
	YearsBack int    `json:"years_back"`
}

// ExtractionPayload carries index-aligned titles and links.
type ExtractionPayload struct {
	Titles []string `json:"titles"`
	Links  []string `json:"links"`
}

// OutputBag holds the loosely keyed outputs of a finished run.
type OutputBag map[string]any

// RunStatus is one poll result.
type RunStatus struct {
	State     RunState
	CreatedAt time.Time // zero when the engine did not report a parseable timestamp
	Log       []LogEntry
	Outputs   OutputBag
}

type ProgressSnapshot struct {
	Percentage int    `json:"percentage"`
	StageLabel string `json:"stage_label"`
}

type OutcomeKind uint8

const (
	OutcomeSuccess OutcomeKind = iota + 1
	OutcomeSoftFailure
	OutcomeHardFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeSoftFailure:
		return "soft_failure"
	case OutcomeHardFailure:
		return "hard_failure"
	default:
		return "unknown"
	}
}

// RunOutcome is computed once, at the tick that observes a terminal state.
type RunOutcome struct {
	Kind         OutcomeKind
	SheetURL     string
	Count        int
	HasCount     bool
	Rows         [][]string
	ErrorMessage string
	// Err is set for both failure kinds and carries CodeRunFailed or
	// CodeRunIncomplete.
	Err error
}
