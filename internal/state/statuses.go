package state

// JobState is the state reported by the server's Minion queue for a job.
type JobState string

const (
	StateQueued   JobState = "queued"
	StateRunning  JobState = "running"
	StateFinished JobState = "finished"
	StateFailed   JobState = "failed"

	// Minion's own names for queued and running jobs.
	StateInactive JobState = "inactive"
	StateActive   JobState = "active"
)

func (s JobState) String() string {
	return string(s)
}

var AllStates = []JobState{
	StateQueued,
	StateRunning,
	StateFinished,
	StateFailed,
	StateInactive,
	StateActive,
}

// IsTerminal reports whether no further state change can follow s.
// Anything that is not finished or failed is treated as still pending.
func (s JobState) IsTerminal() bool {
	return s == StateFinished || s == StateFailed
}

type Transition struct {
	From JobState
	To   JobState
}

var ValidTransitions = []Transition{
	{From: StateQueued, To: StateRunning},
	{From: StateQueued, To: StateFinished},
	{From: StateQueued, To: StateFailed},
	{From: StateRunning, To: StateFinished},
	{From: StateRunning, To: StateFailed},
	{From: StateInactive, To: StateActive},
	{From: StateInactive, To: StateFinished},
	{From: StateInactive, To: StateFailed},
	{From: StateActive, To: StateFinished},
	{From: StateActive, To: StateFailed},
}

// IsValidTransition reports whether an observed move from one state to another is
// monotonic. Observing the same state twice is always valid.
func IsValidTransition(from, to JobState) bool {
	if from == to {
		return true
	}
	for _, t := range ValidTransitions {
		if t.From == from && t.To == to {
			return true
		}
	}
	return false
}
