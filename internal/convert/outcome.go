package convert

import "time"

// Outcome is the per-file result of an attempted conversion. It is
// always produced, never raised: validation and codec failures are
// captured in ErrMessage rather than returned as errors.
type Outcome struct {
	InputPath  string
	OutputPath string
	Succeeded  bool
	ErrMessage string
	Duration   time.Duration
}

// RunStats aggregates outcomes across one conversion run. It is the
// only externally visible summary of a run.
type RunStats struct {
	Total      int
	Successful int
	Failed     int
	Duration   time.Duration
}

// add folds one outcome into the stats. Callers converting concurrently
// must serialize calls themselves.
func (s *RunStats) add(o Outcome) {
	s.Total++
	if o.Succeeded {
		s.Successful++
	} else {
		s.Failed++
	}
	s.Duration += o.Duration
}
