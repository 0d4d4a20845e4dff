// Package telemetry records search activity: an in-process collector
// backing the metrics resource and a SQLite history store backing the
// stats command. All data stays local - no external reporting.
//
// Telemetry is strictly best-effort. A recording failure is reported to
// the caller for a warn-level log line and nothing else; it never fails
// the search that produced the event.
package telemetry

import (
	"sort"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LatencyBucket represents a latency histogram bucket.
type LatencyBucket string

const (
	BucketP10   LatencyBucket = "p10"   // <10ms
	BucketP50   LatencyBucket = "p50"   // 10-50ms
	BucketP100  LatencyBucket = "p100"  // 50-100ms
	BucketP500  LatencyBucket = "p500"  // 100-500ms
	BucketP1000 LatencyBucket = "p1000" // >=500ms
)

// LatencyToBucket converts a duration to its histogram bucket.
func LatencyToBucket(d time.Duration) LatencyBucket {
	ms := d.Milliseconds()
	switch {
	case ms < 10:
		return BucketP10
	case ms < 50:
		return BucketP50
	case ms < 100:
		return BucketP100
	case ms < 500:
		return BucketP500
	default:
		return BucketP1000
	}
}

// Event is one completed search, as seen by telemetry.
type Event struct {
	Directory string
	Keyword   string
	Outcome   string
	Found     int
	Indexed   int
	Skipped   int
	Hits      int
	Duration  time.Duration
	Timestamp time.Time
}

// IsZeroHit reports whether a query actually ran and matched nothing.
// A walk that found no indexable files is not a zero-hit: no query ran.
func (e Event) IsZeroHit() bool {
	return e.Hits == 0 && e.Indexed > 0
}

// CircularBuffer is a fixed-capacity FIFO buffer.
type CircularBuffer[T any] struct {
	items    []T
	head     int // Next write position
	size     int // Current number of items
	capacity int
	mu       sync.RWMutex
}

// NewCircularBuffer creates a new circular buffer with the given capacity.
func NewCircularBuffer[T any](capacity int) *CircularBuffer[T] {
	if capacity <= 0 {
		capacity = 50
	}
	return &CircularBuffer[T]{
		items:    make([]T, capacity),
		capacity: capacity,
	}
}

// Add adds an item to the buffer. If full, the oldest item is evicted.
func (b *CircularBuffer[T]) Add(item T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.items[b.head] = item
	b.head = (b.head + 1) % b.capacity

	if b.size < b.capacity {
		b.size++
	}
}

// Items returns all items in the buffer in FIFO order (oldest first).
func (b *CircularBuffer[T]) Items() []T {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.size == 0 {
		return []T{}
	}

	result := make([]T, b.size)
	if b.size < b.capacity {
		// Buffer not full - items start at 0
		copy(result, b.items[:b.size])
	} else {
		// Buffer full - oldest item is at head
		copy(result, b.items[b.head:])
		copy(result[b.capacity-b.head:], b.items[:b.head])
	}
	return result
}

// Size returns the current number of items in the buffer.
func (b *CircularBuffer[T]) Size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.size
}

// Clear removes all items from the buffer.
func (b *CircularBuffer[T]) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.head = 0
	b.size = 0
}

// KeywordCount represents a keyword and its frequency count.
type KeywordCount struct {
	Keyword string `json:"keyword"`
	Count   int64  `json:"count"`
}

// Snapshot is an immutable view of the collector, shaped for the
// metrics resource and the stats command.
type Snapshot struct {
	TotalSearches       int64                   `json:"total_searches"`
	Outcomes            map[string]int64        `json:"outcomes"`
	TopKeywords         []KeywordCount          `json:"top_keywords"`
	ZeroHitKeywords     []string                `json:"zero_hit_keywords"`
	LatencyDistribution map[LatencyBucket]int64 `json:"latency_distribution"`
	ZeroHitCount        int64                   `json:"zero_hit_count"`
	Since               time.Time               `json:"since"`
}

// ZeroHitPercentage returns the percentage of zero-hit searches.
func (s *Snapshot) ZeroHitPercentage() float64 {
	if s.TotalSearches == 0 {
		return 0
	}
	return float64(s.ZeroHitCount) / float64(s.TotalSearches) * 100
}

// CollectorConfig configures the collector capacities.
type CollectorConfig struct {
	TopKeywordsCapacity int // Max keywords to track (default: 100)
	ZeroHitsCapacity    int // Max zero-hit keywords to keep (default: 50)
}

// DefaultCollectorConfig returns sensible defaults.
func DefaultCollectorConfig() CollectorConfig {
	return CollectorConfig{
		TopKeywordsCapacity: 100,
		ZeroHitsCapacity:    50,
	}
}

// Collector aggregates search events in memory.
// Thread-safe for concurrent access.
type Collector struct {
	mu sync.RWMutex

	outcomes     map[string]int64
	topKeywords  *lru.Cache[string, int64]
	zeroHits     *CircularBuffer[string]
	latencies    map[LatencyBucket]int64
	total        int64
	zeroHitCount int64
	startTime    time.Time
}

// NewCollector creates a collector with default capacities.
func NewCollector() *Collector {
	return NewCollectorWithConfig(DefaultCollectorConfig())
}

// NewCollectorWithConfig creates a collector with custom capacities.
func NewCollectorWithConfig(cfg CollectorConfig) *Collector {
	if cfg.TopKeywordsCapacity <= 0 {
		cfg.TopKeywordsCapacity = 100
	}
	if cfg.ZeroHitsCapacity <= 0 {
		cfg.ZeroHitsCapacity = 50
	}

	topKeywords, _ := lru.New[string, int64](cfg.TopKeywordsCapacity)

	return &Collector{
		outcomes:    make(map[string]int64),
		topKeywords: topKeywords,
		zeroHits:    NewCircularBuffer[string](cfg.ZeroHitsCapacity),
		latencies:   make(map[LatencyBucket]int64),
		startTime:   time.Now(),
	}
}

// Record captures one search event.
func (c *Collector) Record(event Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.total++
	c.outcomes[event.Outcome]++
	c.latencies[LatencyToBucket(event.Duration)]++

	keyword := normalizeKeyword(event.Keyword)
	if keyword != "" {
		count, _ := c.topKeywords.Get(keyword)
		c.topKeywords.Add(keyword, count+1)
	}

	if event.IsZeroHit() {
		c.zeroHits.Add(event.Keyword)
		c.zeroHitCount++
	}
}

// normalizeKeyword folds keyword variants together for frequency counting.
func normalizeKeyword(keyword string) string {
	return strings.ToLower(strings.TrimSpace(keyword))
}

// Snapshot returns the current metrics for reporting.
func (c *Collector) Snapshot() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	outcomes := make(map[string]int64, len(c.outcomes))
	for k, v := range c.outcomes {
		outcomes[k] = v
	}

	var topKeywords []KeywordCount
	for _, key := range c.topKeywords.Keys() {
		if count, ok := c.topKeywords.Peek(key); ok {
			topKeywords = append(topKeywords, KeywordCount{Keyword: key, Count: count})
		}
	}
	// Count descending, then keyword ascending so equal counts are stable.
	sort.Slice(topKeywords, func(i, j int) bool {
		if topKeywords[i].Count != topKeywords[j].Count {
			return topKeywords[i].Count > topKeywords[j].Count
		}
		return topKeywords[i].Keyword < topKeywords[j].Keyword
	})

	latencies := make(map[LatencyBucket]int64, len(c.latencies))
	for k, v := range c.latencies {
		latencies[k] = v
	}

	return &Snapshot{
		TotalSearches:       c.total,
		Outcomes:            outcomes,
		TopKeywords:         topKeywords,
		ZeroHitKeywords:     c.zeroHits.Items(),
		LatencyDistribution: latencies,
		ZeroHitCount:        c.zeroHitCount,
		Since:               c.startTime,
	}
}
