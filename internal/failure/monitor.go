// Package failure tracks consecutive call failures so the engine can pause
// an exchange before it burns every remaining turn on a dead provider.
package failure

// DefaultThreshold is the number of back-to-back failed turns that forces
// an automatic pause.
const DefaultThreshold = 2

// Monitor is a pure consecutive-failure counter. The engine owns acting on
// the signal; the monitor only counts.
type Monitor struct {
	threshold   int
	consecutive int
}

// NewMonitor builds a monitor. Thresholds < 1 fall back to DefaultThreshold.
func NewMonitor(threshold int) *Monitor {
	if threshold < 1 {
		threshold = DefaultThreshold
	}
	return &Monitor{threshold: threshold}
}

// Record notes one call outcome. A success resets the count; a failure
// increments it. It returns true exactly when the running count reaches the
// threshold, which tells the engine to force a pause.
func (m *Monitor) Record(success bool) bool {
	if success {
		m.consecutive = 0
		return false
	}
	m.consecutive++
	return m.consecutive >= m.threshold
}

// Reset clears the running count, used when the host resumes a forced pause.
func (m *Monitor) Reset() {
	m.consecutive = 0
}

// Count returns the current consecutive-failure count.
func (m *Monitor) Count() int {
	return m.consecutive
}
