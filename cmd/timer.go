package cmd

import "time"

// PerformanceTimer measures wall time of a command
type PerformanceTimer struct {
	start time.Time
}

// NewPerformanceTimer starts a timer
func NewPerformanceTimer() *PerformanceTimer {
	return &PerformanceTimer{start: time.Now()}
}

// Elapsed returns the time since the timer started
func (pt *PerformanceTimer) Elapsed() time.Duration {
	return time.Since(pt.start)
}
