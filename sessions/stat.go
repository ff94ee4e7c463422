package sessions

import "time"

type Stat struct {
	ID       string    `json:"id"`
	Digest   string    `json:"digest"`
	State    string    `json:"state"`
	Reason   string    `json:"reason,omitempty"`
	Error    string    `json:"error,omitempty"`
	BytesIn  int64     `json:"bytes_in"`
	BytesOut int64     `json:"bytes_out"`
	Pending  int       `json:"pending"`
	Steps    uint64    `json:"steps"`
	Started  time.Time `json:"started"`
}

const (
	StateRunning = "running"
	StateHalted  = "halted"
)

// Stat reports the session counters. Steps is known only once halted.
func (s *Session) Stat() Stat {
	ret := Stat{
		ID:       s.ID.String(),
		Digest:   s.Digest,
		State:    StateRunning,
		BytesIn:  s.bytesIn.Load(),
		BytesOut: s.bytesOut.Load(),
		Pending:  s.output.Len(),
		Started:  s.Started,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.halted {
		ret.State = StateHalted
		ret.Reason = s.reason.String()
		ret.Steps = s.steps
		if s.err != nil {
			ret.Error = s.err.Error()
		}
	}
	return ret
}
