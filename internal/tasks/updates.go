package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	Collect Phase = iota
	Publish
	Fetch
	Merge
	Probe
	Export
	Attachments
)

func (p Phase) String() string {
	switch p {
	case Collect:
		return "collect"
	case Publish:
		return "publish"
	case Fetch:
		return "fetch"
	case Merge:
		return "merge"
	case Probe:
		return "probe"
	case Export:
		return "export"
	case Attachments:
		return "attachments"
	default:
		return "unknown"
	}
}

func update(phase Phase, step, total int, format string, args ...any) ProgressUpdate {
	return ProgressUpdate{Phase: phase, Step: step, Total: total, Message: fmt.Sprintf(format, args...)}
}
