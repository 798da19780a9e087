package entities

import "time"

// Run records one invocation that produced a graph.
type Run struct {
	ID          string    `json:"id"`
	Command     string    `json:"command"`
	Seeds       []string  `json:"seeds,omitempty"`
	Individuals int       `json:"individuals"`
	Families    int       `json:"families"`
	Sources     int       `json:"sources"`
	Notes       int       `json:"notes"`
	Requests    int64     `json:"requests"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
}

// Duration is the wall time of the run.
func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
