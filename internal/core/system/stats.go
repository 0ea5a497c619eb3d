package system

import "time"

// Stats provides execution statistics for a single system.
type Stats struct {
	Name           string
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type systemStatsInternal struct {
	name           string
	executionCount int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

func (s *systemStatsInternal) record(d time.Duration) {
	s.executionCount++
	s.lastDuration = d
	s.totalDuration += d
	if d < s.minDuration {
		s.minDuration = d
	}
	if d > s.maxDuration {
		s.maxDuration = d
	}
}

// Stats returns per-system execution statistics in tick order.
func (e *Engine) Stats() []Stats {
	out := make([]Stats, len(e.stats))
	for i, in := range e.stats {
		var avg time.Duration
		min := in.minDuration
		if in.executionCount > 0 {
			avg = in.totalDuration / time.Duration(in.executionCount)
		} else {
			min = 0
		}
		out[i] = Stats{
			Name:           in.name,
			ExecutionCount: in.executionCount,
			MinDuration:    min,
			MaxDuration:    in.maxDuration,
			AvgDuration:    avg,
			LastDuration:   in.lastDuration,
			TotalDuration:  in.totalDuration,
		}
	}
	return out
}
