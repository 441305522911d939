package types

import (
	"bytes"
	"encoding/json"

	"github.com/RezaEskandarii/lrrctl/internal/state"
)

// JobID is an opaque Minion job identifier. The server sends it either as a number
// or as a string.
type JobID string

func (id *JobID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if string(b) == "null" {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = JobID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = JobID(n.String())
	return nil
}

func (id JobID) String() string {
	return string(id)
}

// JobStatus is the body of GET /api/minion/{id}.
type JobStatus struct {
	ID     JobID           `json:"id"`
	Task   string          `json:"task,omitempty"`
	State  state.JobState  `json:"state"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// ResultText renders the job result as error detail: a JSON string verbatim,
// anything else as its JSON text.
func (s JobStatus) ResultText() string {
	raw := bytes.TrimSpace(s.Result)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	if raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err == nil {
			return text
		}
	}
	return string(raw)
}

// DecodeResult unmarshals the job result into v.
func (s JobStatus) DecodeResult(v any) error {
	if len(s.Result) == 0 {
		return nil
	}
	return json.Unmarshal(s.Result, v)
}

// JobTicket is returned by endpoints that queue a Minion job.
type JobTicket struct {
	Job       JobID   `json:"job"`
	Operation string  `json:"operation,omitempty"`
	Success   Numeric `json:"success"`
}
