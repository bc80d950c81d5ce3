package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	FeedsFetched        int64
	FeedFailures        int64
	ItemsCollected      int64
	ItemsDropped        int64 // unusable input, no resolvable link
	DuplicatesCollapsed int64
	ItemsExcluded       int64 // outside the lookback window
	InsightRequests     int64
	EmailsSent          int64
	LastDigestSize      int64

	// Timings
	LastProcessingTime    time.Duration
	AverageProcessingTime time.Duration
	TotalProcessingTime   time.Duration
	ProcessingCount       int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) AddFeedsFetched(n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FeedsFetched += n
}

func (m *Metrics) IncrementFeedFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FeedFailures++
}

func (m *Metrics) AddItemsCollected(n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ItemsCollected += n
}

func (m *Metrics) AddItemsDropped(n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ItemsDropped += n
}

func (m *Metrics) AddDuplicatesCollapsed(n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesCollapsed += n
}

func (m *Metrics) AddItemsExcluded(n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ItemsExcluded += n
}

func (m *Metrics) IncrementInsightRequests() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InsightRequests++
}

func (m *Metrics) IncrementEmailsSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EmailsSent++
}

func (m *Metrics) SetLastDigestSize(n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastDigestSize = n
}

func (m *Metrics) RecordProcessingTime(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastProcessingTime = duration
	m.TotalProcessingTime += duration
	m.ProcessingCount++

	if m.ProcessingCount > 0 {
		m.AverageProcessingTime = m.TotalProcessingTime / time.Duration(m.ProcessingCount)
	}
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"feeds_fetched":              m.FeedsFetched,
		"feed_failures":              m.FeedFailures,
		"items_collected":            m.ItemsCollected,
		"items_dropped":              m.ItemsDropped,
		"duplicates_collapsed":       m.DuplicatesCollapsed,
		"items_excluded":             m.ItemsExcluded,
		"insight_requests":           m.InsightRequests,
		"emails_sent":                m.EmailsSent,
		"last_digest_size":           m.LastDigestSize,
		"last_processing_time_ms":    m.LastProcessingTime.Milliseconds(),
		"average_processing_time_ms": m.AverageProcessingTime.Milliseconds(),
		"last_run_time":              m.LastRunTime.Format(time.RFC3339),
		"last_error_time":            m.LastErrorTime.Format(time.RFC3339),
		"last_error":                 m.LastError,
		"is_healthy":                 m.IsHealthy,
	}
}
