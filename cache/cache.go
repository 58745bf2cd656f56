// Package cache implements a tiered, content-addressed asset cache: an
// in-memory tier over a disk tier over a remote origin. Concurrent
// requests for the same identifier are collapsed into a single remote
// fetch, a background sweeper keeps the disk tier under a byte budget,
// and hit/miss/fetch counters are kept for observability.
//
// A Cache is an explicitly constructed value. There is no package-level
// instance; tests and callers build as many isolated caches as they
// want.
package cache

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/facebookgo/clock"
	"github.com/google/uuid"

	"github.com/openworld/assetcache/asset"
	"github.com/openworld/assetcache/util"
)

const (
	// DefaultMaxDiskBytes is the disk budget used when the config
	// leaves it zero: 1 GiB.
	DefaultMaxDiskBytes = 1 << 30

	// DefaultSweepInterval is how often the eviction sweeper runs when
	// the config leaves it zero.
	DefaultSweepInterval = 60 * time.Second

	// the number of background workers servicing preload requests.
	preloadWorkers = 2

	// capacity of the preload queue. Preloads past this are dropped.
	preloadQueueSize = 128

	// how many Gets a single GetMany call may run at once.
	getManyConcurrency = 4
)

// ErrShutdown is returned by Get once Shutdown has begun.
var ErrShutdown = errors.New("cache is shut down")

// Config carries everything needed to build a Cache. Fetcher is
// required; zero values elsewhere get defaults.
type Config struct {
	// CacheDir is the disk tier's root directory, created on first use.
	CacheDir string

	// MaxDiskBytes is the disk tier budget enforced by the sweeper.
	MaxDiskBytes int64

	// SweepInterval is the time between eviction sweeps.
	SweepInterval time.Duration

	// Fetcher retrieves bytes from the remote origin.
	Fetcher Fetcher

	// Events receives load events. Defaults to discarding them.
	Events EventSink

	// Clock drives the sweeper. Tests substitute a mock; leave nil
	// otherwise.
	Clock clock.Clock
}

// Cache is the public entry point. Create one with New and release it
// with Shutdown. All methods are safe for concurrent use.
type Cache struct {
	mem     *MemoryTier
	disk    *DiskTier
	flights *flightgroup
	stats   *Statistics
	events  EventSink
	sweeper *sweeper
	queue   *requestQueue
	fetcher Fetcher

	workers sync.WaitGroup
	ctx     context.Context // cancelled at shutdown
	cancel  context.CancelFunc

	m      sync.Mutex
	closed bool
	ops    sync.WaitGroup // Gets in progress, so Shutdown can drain them
}

// New builds and starts a cache: it verifies the cache directory is
// usable, starts the eviction sweeper, and starts the preload workers.
// An unusable cache directory is a fatal configuration error.
func New(cfg Config) (*Cache, error) {
	if cfg.Fetcher == nil {
		return nil, errors.New("cache: no fetcher given")
	}
	if cfg.MaxDiskBytes == 0 {
		cfg.MaxDiskBytes = DefaultMaxDiskBytes
	}
	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}
	if cfg.Events == nil {
		cfg.Events = DiscardEvents{}
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}

	disk, err := NewDiskTier(cfg.CacheDir)
	if err != nil {
		return nil, err
	}

	log.Printf("cache: dir=%s budget=%d sweep=%s",
		cfg.CacheDir, cfg.MaxDiskBytes, cfg.SweepInterval)

	ctx, cancel := context.WithCancel(context.Background())
	c := &Cache{
		mem:     NewMemoryTier(),
		disk:    disk,
		stats:   &Statistics{},
		events:  cfg.Events,
		queue:   newRequestQueue(preloadQueueSize),
		fetcher: cfg.Fetcher,
		ctx:     ctx,
		cancel:  cancel,
	}
	c.flights = newFlightgroup(c.fetchMiss)
	c.sweeper = newSweeper(disk, cfg.MaxDiskBytes, cfg.SweepInterval, cfg.Clock)
	for i := 0; i < preloadWorkers; i++ {
		c.workers.Add(1)
		go c.preloadWorker()
	}
	return c, nil
}

// Get returns the asset, consulting memory, then disk, then the remote
// origin. A disk hit is promoted into memory; an origin success
// populates both tiers. (NOTE: a missing or unfetchable asset is not an
// error — the record is nil and the reason is in the logs, events, and
// statistics. The only error Get returns is ErrShutdown.)
func (c *Cache) Get(id uuid.UUID, kind asset.Kind, priority Priority) (*asset.Record, error) {
	c.m.Lock()
	if c.closed {
		c.m.Unlock()
		return nil, ErrShutdown
	}
	c.ops.Add(1)
	c.m.Unlock()
	defer c.ops.Done()
	if r := c.mem.Lookup(id); r != nil {
		c.stats.hit(r.Size())
		return r, nil
	}
	if r := c.disk.Load(id, kind); r != nil {
		c.mem.Insert(r)
		c.stats.hit(r.Size())
		return r, nil
	}
	c.stats.miss()
	r, _ := c.flights.Do(id, kind, priority)
	return r, nil
}

// fetchMiss is the flightgroup callback: the actual remote fetch, run
// once per identifier no matter how many callers are waiting. It
// populates the tiers and emits the load event before any waiter is
// released.
func (c *Cache) fetchMiss(id uuid.UUID, kind asset.Kind, priority Priority) (*asset.Record, error) {
	c.stats.fetchStarted()
	b, err := c.fetcher.FetchRemote(c.ctx, id, kind, priority)
	if err != nil {
		log.Println("fetch:", id, kind, err)
		c.stats.fetchFailed()
		c.events.Emit(AssetLoadFailed{ID: id, Reason: err})
		return nil, err
	}
	r := asset.NewRecord(id, kind, b, asset.Metadata{Permissions: asset.DefaultPermissions()})
	c.mem.Insert(r)
	c.disk.Store(r)
	c.stats.fetchCompleted(r.Size())
	c.events.Emit(AssetLoaded{ID: id, Kind: kind})
	return r, nil
}

// GetMany runs Get for every request concurrently and returns when all
// have resolved. Every requested identifier is a key in the result;
// assets that could not be acquired map to nil.
func (c *Cache) GetMany(reqs []Request) map[uuid.UUID]*asset.Record {
	result := make(map[uuid.UUID]*asset.Record, len(reqs))
	for _, req := range reqs {
		result[req.ID] = nil
	}
	var (
		m  sync.Mutex
		wg sync.WaitGroup
	)
	gate := util.NewGate(getManyConcurrency)
	for _, req := range reqs {
		wg.Add(1)
		go func(req Request) {
			defer wg.Done()
			gate.Enter()
			defer gate.Leave()
			r, _ := c.Get(req.ID, req.Kind, req.Priority)
			if r != nil {
				m.Lock()
				result[req.ID] = r
				m.Unlock()
			}
		}(req)
	}
	wg.Wait()
	return result
}

// Preload queues low-priority fetches for the given identifiers and
// returns immediately. Errors are not surfaced; if the preload queue is
// full the extra requests are dropped.
func (c *Cache) Preload(ids []uuid.UUID, kind asset.Kind) {
	var dropped int
	for _, id := range ids {
		if !c.queue.Push(Request{ID: id, Kind: kind, Priority: PriorityLow}) {
			dropped++
		}
	}
	if dropped > 0 {
		log.Printf("preload: queue full, dropped %d of %d", dropped, len(ids))
	}
}

func (c *Cache) preloadWorker() {
	defer c.workers.Done()
	for {
		req, ok := c.queue.Pop()
		if !ok {
			return
		}
		c.Get(req.ID, req.Kind, req.Priority)
	}
}

// Status values for one identifier.
type Status int

const (
	StatusNotFound    Status = iota // not in any tier, no fetch running
	StatusDownloading               // a fetch is in flight
	StatusCached                    // on disk but not in memory
	StatusReady                     // in the memory tier
)

func (s Status) String() string {
	switch s {
	case StatusDownloading:
		return "DOWNLOADING"
	case StatusCached:
		return "CACHED"
	case StatusReady:
		return "READY"
	}
	return "NOT_FOUND"
}

// Status reports where the asset currently is. The checks run in a
// fixed order — memory, then the in-flight table, then disk — so the
// answer is reproducible.
func (c *Cache) Status(id uuid.UUID) Status {
	if c.mem.Lookup(id) != nil {
		return StatusReady
	}
	if c.flights.Inflight(id) {
		return StatusDownloading
	}
	if c.disk.Exists(id) {
		return StatusCached
	}
	return StatusNotFound
}

// Stats returns a snapshot of the counters.
func (c *Cache) Stats() Stats {
	return c.stats.Snapshot()
}

// ClearMemory empties the memory tier. Disk content is untouched, so
// cleared assets come back as CACHED.
func (c *Cache) ClearMemory() {
	c.mem.Clear()
}

// ClearDisk removes every file from the disk tier.
func (c *Cache) ClearDisk() {
	c.disk.RemoveAll()
}

// Shutdown stops the cache. New Gets fail fast with ErrShutdown,
// in-flight fetches are cancelled through their context and the
// in-flight table is drained, then the preload workers and the sweeper
// are stopped. Safe to call more than once.
func (c *Cache) Shutdown() {
	c.m.Lock()
	if c.closed {
		c.m.Unlock()
		return
	}
	c.closed = true
	c.m.Unlock()

	log.Println("cache: shutting down")
	c.queue.Close()
	c.cancel()
	c.ops.Wait()
	c.flights.Wait()
	c.workers.Wait()
	c.sweeper.Stop()
}
