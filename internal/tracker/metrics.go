package tracker

import (
	"sync"
	"time"

	"github.com/bargir/dispatch-gateway/internal/events"
)

// Metrics is the in-process activity tally. The per-status map needs a
// mutex; everything is read together in Snapshot so atomics buy nothing.
type Metrics struct {
	mu            sync.Mutex
	assignments   int64
	statusChanges int64
	byStatus      map[string]int64
	startedAt     time.Time
}

type Snapshot struct {
	Assignments   int64
	StatusChanges int64
	ByStatus      map[string]int64
	Uptime        time.Duration
}

func NewMetrics() *Metrics {
	return &Metrics{
		byStatus:  make(map[string]int64),
		startedAt: time.Now(),
	}
}

func (m *Metrics) Record(ev events.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch ev.Kind {
	case events.KindDriverAssigned:
		m.assignments++
	case events.KindStatusChanged:
		m.statusChanges++
	}
	if ev.Status != "" {
		m.byStatus[ev.Status]++
	}
}

func (m *Metrics) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	byStatus := make(map[string]int64, len(m.byStatus))
	for k, v := range m.byStatus {
		byStatus[k] = v
	}
	return Snapshot{
		Assignments:   m.assignments,
		StatusChanges: m.statusChanges,
		ByStatus:      byStatus,
		Uptime:        time.Since(m.startedAt),
	}
}
