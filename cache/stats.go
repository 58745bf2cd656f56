package cache

import "sync"

// Statistics accumulates the cache's monotonic counters. All methods are
// safe for concurrent use.
type Statistics struct {
	m sync.Mutex
	s Stats
}

// Stats is a point-in-time copy of the counters plus the derived ratios.
type Stats struct {
	CacheHits        int64 `json:"cache_hits"`
	CacheMisses      int64 `json:"cache_misses"`
	FetchesStarted   int64 `json:"fetches_started"`
	FetchesCompleted int64 `json:"fetches_completed"`
	FetchesFailed    int64 `json:"fetches_failed"`
	BytesFetched     int64 `json:"bytes_fetched"`
	BytesServed      int64 `json:"bytes_served"`

	HitRate     float64 `json:"hit_rate"`
	SuccessRate float64 `json:"success_rate"`
}

func (c *Statistics) hit(bytes int64) {
	c.m.Lock()
	c.s.CacheHits++
	c.s.BytesServed += bytes
	c.m.Unlock()
}

func (c *Statistics) miss() {
	c.m.Lock()
	c.s.CacheMisses++
	c.m.Unlock()
}

func (c *Statistics) fetchStarted() {
	c.m.Lock()
	c.s.FetchesStarted++
	c.m.Unlock()
}

func (c *Statistics) fetchCompleted(bytes int64) {
	c.m.Lock()
	c.s.FetchesCompleted++
	c.s.BytesFetched += bytes
	c.s.BytesServed += bytes
	c.m.Unlock()
}

func (c *Statistics) fetchFailed() {
	c.m.Lock()
	c.s.FetchesFailed++
	c.m.Unlock()
}

// Snapshot returns a copy of the counters with the ratios filled in.
// Ratios with a zero denominator are 0, never NaN.
func (c *Statistics) Snapshot() Stats {
	c.m.Lock()
	s := c.s
	c.m.Unlock()
	if n := s.CacheHits + s.CacheMisses; n > 0 {
		s.HitRate = float64(s.CacheHits) / float64(n)
	}
	if s.FetchesStarted > 0 {
		s.SuccessRate = float64(s.FetchesCompleted) / float64(s.FetchesStarted)
	}
	return s
}
