package tracker

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bargir/dispatch-gateway/internal/events"
)

func TestMetrics_Record(t *testing.T) {
	m := NewMetrics()

	m.Record(events.Event{Kind: events.KindDriverAssigned, Status: "ASSIGNED"})
	m.Record(events.Event{Kind: events.KindStatusChanged, Status: "IN_TRANSIT"})
	m.Record(events.Event{Kind: events.KindStatusChanged, Status: "IN_TRANSIT"})
	m.Record(events.Event{Kind: events.KindStatusChanged, Status: "DELIVERED"})

	snap := m.Snapshot()
	assert.Equal(t, int64(1), snap.Assignments)
	assert.Equal(t, int64(3), snap.StatusChanges)
	assert.Equal(t, int64(1), snap.ByStatus["ASSIGNED"])
	assert.Equal(t, int64(2), snap.ByStatus["IN_TRANSIT"])
	assert.Equal(t, int64(1), snap.ByStatus["DELIVERED"])
}

func TestMetrics_SnapshotIsACopy(t *testing.T) {
	m := NewMetrics()
	m.Record(events.Event{Kind: events.KindStatusChanged, Status: "DELIVERED"})

	snap := m.Snapshot()
	snap.ByStatus["DELIVERED"] = 99

	assert.Equal(t, int64(1), m.Snapshot().ByStatus["DELIVERED"])
}

func TestMetrics_ConcurrentRecord(t *testing.T) {
	m := NewMetrics()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Record(events.Event{Kind: events.KindDriverAssigned, Status: "ASSIGNED"})
		}()
	}
	wg.Wait()

	snap := m.Snapshot()
	assert.Equal(t, int64(50), snap.Assignments)
	assert.Equal(t, int64(50), snap.ByStatus["ASSIGNED"])
}
