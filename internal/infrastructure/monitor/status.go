package monitor

import "time"

type Status struct {
	Database     bool      `json:"database"`
	SessionStore bool      `json:"session_store"`
	LastCheck    time.Time `json:"last_check"`
}

// Healthy reports whether every dependency answered the last probe.
func (s Status) Healthy() bool {
	return s.Database && s.SessionStore
}
