package pipeline

import "fmt"

// RunStats tracks aggregate counters and byte totals across a batch run.
type RunStats struct {
	Total      int   `json:"total" yaml:"total"`
	Valid      int   `json:"valid" yaml:"valid"`
	Invalid    int   `json:"invalid" yaml:"invalid"`
	Failed     int   `json:"failed" yaml:"failed"`
	Remote     int   `json:"remote" yaml:"remote"`
	Retried    int   `json:"retried" yaml:"retried"`
	TotalBytes int64 `json:"total_bytes" yaml:"total_bytes"`
}

// add folds one result into the counters.
func (s *RunStats) add(r *Result) {
	s.Total++
	switch r.Status {
	case StatusValid:
		s.Valid++
	case StatusInvalid:
		s.Invalid++
	default:
		s.Failed++
	}
	if r.Remote {
		s.Remote++
	}
	if r.Attempts > 1 {
		s.Retried++
	}
	if r.Size > 0 {
		s.TotalBytes += r.Size
	}
}

// OK reports whether every resource probed valid.
func (s *RunStats) OK() bool { return s.Invalid == 0 && s.Failed == 0 }

func (s RunStats) String() string {
	return fmt.Sprintf("%d resources: %d valid, %d invalid, %d failed", s.Total, s.Valid, s.Invalid, s.Failed)
}
