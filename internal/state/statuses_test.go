package state

import (
	"testing"
)

func TestJobState_String(t *testing.T) {
	tests := []struct {
		name     string
		state    JobState
		expected string
	}{
		{
			name:     "Queued state",
			state:    StateQueued,
			expected: "queued",
		},
		{
			name:     "Running state",
			state:    StateRunning,
			expected: "running",
		},
		{
			name:     "Finished state",
			state:    StateFinished,
			expected: "finished",
		},
		{
			name:     "Failed state",
			state:    StateFailed,
			expected: "failed",
		},
		{
			name:     "Minion inactive state",
			state:    StateInactive,
			expected: "inactive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.state.String()
			if result != tt.expected {
				t.Errorf("String() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestJobState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    JobState
		expected bool
	}{
		{StateQueued, false},
		{StateRunning, false},
		{StateInactive, false},
		{StateActive, false},
		{JobState("something-else"), false},
		{StateFinished, true},
		{StateFailed, true},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			if got := tt.state.IsTerminal(); got != tt.expected {
				t.Errorf("IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestIsValidTransition(t *testing.T) {
	tests := []struct {
		name     string
		from     JobState
		to       JobState
		expected bool
	}{
		{
			name:     "Valid: Queued to Running",
			from:     StateQueued,
			to:       StateRunning,
			expected: true,
		},
		{
			name:     "Valid: Running to Finished",
			from:     StateRunning,
			to:       StateFinished,
			expected: true,
		},
		{
			name:     "Valid: Running to Failed",
			from:     StateRunning,
			to:       StateFailed,
			expected: true,
		},
		{
			name:     "Valid: Inactive to Active",
			from:     StateInactive,
			to:       StateActive,
			expected: true,
		},
		{
			name:     "Valid: Running observed twice",
			from:     StateRunning,
			to:       StateRunning,
			expected: true,
		},
		{
			name:     "Invalid: Running to Queued",
			from:     StateRunning,
			to:       StateQueued,
			expected: false,
		},
		{
			name:     "Invalid: Finished to Running",
			from:     StateFinished,
			to:       StateRunning,
			expected: false,
		},
		{
			name:     "Invalid: Failed to Finished",
			from:     StateFailed,
			to:       StateFinished,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidTransition(tt.from, tt.to)
			if result != tt.expected {
				t.Errorf("IsValidTransition() = %v, want %v", result, tt.expected)
			}
		})
	}
}
