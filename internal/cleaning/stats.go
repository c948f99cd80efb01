package cleaning

// Stats summarises one dataset cleaning pass
type Stats struct {
	InitialCount int     `json:"initial_count"`
	FinalCount   int     `json:"final_count"`
	RemovedCount int     `json:"removed_count"`
	CleaningRate float64 `json:"cleaning_rate"`
}

// NewStats derives the removal figures from the row counts before and after
// cleaning. An empty input has a cleaning rate of zero.
func NewStats(initial, final int) Stats {
	s := Stats{
		InitialCount: initial,
		FinalCount:   final,
		RemovedCount: initial - final,
	}
	if initial > 0 {
		s.CleaningRate = float64(s.RemovedCount) / float64(initial) * 100
	}
	return s
}
