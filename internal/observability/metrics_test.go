package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/api/v1/escalations", "POST", 201, 15*time.Millisecond)
	m.RecordRequest("/api/v1/escalations", "POST", 201, 5*time.Millisecond)
	m.RecordError("/api/v1/escalations", "POST", "VALIDATION_FAILED")
	m.RecordTransition("ESCALATE")
	m.RecordDelivery("whatsapp", "failed")
	m.RecordMirrorError()
	m.RecordQueueRetry()

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.Requests["/api/v1/escalations|POST|201"])
	assert.Equal(t, int64(20), snap.RequestMillis["/api/v1/escalations|POST|201"])
	assert.Equal(t, int64(1), snap.Errors["/api/v1/escalations|POST|VALIDATION_FAILED"])
	assert.Equal(t, int64(1), snap.Transitions["ESCALATE"])
	assert.Equal(t, int64(1), snap.Deliveries["whatsapp|failed"])
	assert.Equal(t, int64(1), snap.MirrorErrors)
	assert.Equal(t, int64(1), snap.QueueRetries)

	snap.Transitions["ESCALATE"] = 99
	assert.Equal(t, int64(1), m.Snapshot().Transitions["ESCALATE"])
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordTransition("CLOSE")
	m.RecordMirrorError()
	assert.Empty(t, m.Snapshot().Transitions)
}

func TestKeysSorted(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, Keys(map[string]int64{"c": 1, "a": 1, "b": 1}))
}
