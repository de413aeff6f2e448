package observability

import (
	"sort"
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu            sync.Mutex
	requestCount  map[string]int64
	requestMillis map[string]int64
	errorCount    map[string]int64
	transitions   map[string]int64
	deliveries    map[string]int64
	mirrorErrors  int64
	queueRetries  int64
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	Requests      map[string]int64 `json:"requests"`
	RequestMillis map[string]int64 `json:"requestMillis"`
	Errors        map[string]int64 `json:"errors"`
	Transitions   map[string]int64 `json:"transitions"`
	Deliveries    map[string]int64 `json:"deliveries"`
	MirrorErrors  int64            `json:"mirrorErrors"`
	QueueRetries  int64            `json:"queueRetries"`
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount:  make(map[string]int64),
		requestMillis: make(map[string]int64),
		errorCount:    make(map[string]int64),
		transitions:   make(map[string]int64),
		deliveries:    make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
	m.requestMillis[key] += duration.Milliseconds()
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordTransition counts a committed lifecycle intent.
func (m *Metrics) RecordTransition(intent string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitions[intent]++
}

// RecordDelivery counts a delivery attempt by channel and outcome.
func (m *Metrics) RecordDelivery(channel, status string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deliveries[channel+"|"+status]++
}

// RecordMirrorError counts a failed ticket mirror write.
func (m *Metrics) RecordMirrorError() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mirrorErrors++
}

// RecordQueueRetry counts a notification event put back on the queue.
func (m *Metrics) RecordQueueRetry() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queueRetries++
}

// Snapshot copies the current counters.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		Requests:      copyCounts(m.requestCount),
		RequestMillis: copyCounts(m.requestMillis),
		Errors:        copyCounts(m.errorCount),
		Transitions:   copyCounts(m.transitions),
		Deliveries:    copyCounts(m.deliveries),
		MirrorErrors:  m.mirrorErrors,
		QueueRetries:  m.queueRetries,
	}
}

// Keys returns the sorted keys of a counter map.
func Keys(counts map[string]int64) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func copyCounts(src map[string]int64) map[string]int64 {
	dst := make(map[string]int64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
