package monitoring

import (
	"sync"
	"time"
)

// Monitor collects runtime counters for the dashboard's stats endpoint
type Monitor struct {
	stats      map[string]interface{}
	statsMutex sync.RWMutex
	startTime  time.Time
}

// NewMonitor creates a new monitoring instance
func NewMonitor() *Monitor {
	return &Monitor{
		stats:     make(map[string]interface{}),
		startTime: time.Now(),
	}
}

// RecordStat records a stat value
func (m *Monitor) RecordStat(name string, value interface{}) {
	m.statsMutex.Lock()
	defer m.statsMutex.Unlock()
	m.stats[name] = value
}

// IncrementStat bumps an integer counter
func (m *Monitor) IncrementStat(name string) {
	m.statsMutex.Lock()
	defer m.statsMutex.Unlock()

	count, _ := m.stats[name].(int)
	m.stats[name] = count + 1
}

// GetStat returns a specific stat value
func (m *Monitor) GetStat(name string) (interface{}, bool) {
	m.statsMutex.RLock()
	defer m.statsMutex.RUnlock()
	value, exists := m.stats[name]
	return value, exists
}

// GetStats returns all current stats
func (m *Monitor) GetStats() map[string]interface{} {
	m.statsMutex.RLock()
	defer m.statsMutex.RUnlock()

	// Create a copy to avoid concurrent map access
	stats := make(map[string]interface{}, len(m.stats))
	for k, v := range m.stats {
		stats[k] = v
	}

	// Add system stats
	stats["uptime_seconds"] = time.Since(m.startTime).Seconds()

	return stats
}

// Reset clears all stats
func (m *Monitor) Reset() {
	m.statsMutex.Lock()
	defer m.statsMutex.Unlock()
	m.stats = make(map[string]interface{})
}
