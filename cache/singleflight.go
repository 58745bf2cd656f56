package cache

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/openworld/assetcache/asset"
)

// A Fetcher retrieves asset bytes from the remote origin. It is the one
// external collaborator on the miss path. Implementations must be safe
// for concurrent use. The priority is a hint the fetcher may forward to
// the origin; it never reorders fetches already in flight.
type Fetcher interface {
	FetchRemote(ctx context.Context, id uuid.UUID, kind asset.Kind, priority Priority) ([]byte, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, id uuid.UUID, kind asset.Kind, priority Priority) ([]byte, error)

// FetchRemote calls f.
func (f FetcherFunc) FetchRemote(ctx context.Context, id uuid.UUID, kind asset.Kind, priority Priority) ([]byte, error) {
	return f(ctx, id, kind, priority)
}

// flightgroup deduplicates concurrent fetches by identifier. The first
// goroutine asking for a given id runs f; everyone else arriving while
// that fetch is in flight waits and receives the identical result. At
// most one fetch per identifier is running at any instant.
type flightgroup struct {
	f        func(id uuid.UUID, kind asset.Kind, priority Priority) (*asset.Record, error)
	mu       sync.Mutex // controls everything below
	inflight map[uuid.UUID]*flight

	// counts flights, not waiters. Wait() blocks until the table drains.
	active sync.WaitGroup
}

type flight struct {
	wg     sync.WaitGroup
	record *asset.Record
	err    error
}

func newFlightgroup(f func(id uuid.UUID, kind asset.Kind, priority Priority) (*asset.Record, error)) *flightgroup {
	return &flightgroup{f: f, inflight: make(map[uuid.UUID]*flight)}
}

// Do returns the record for id, running f at most once no matter how
// many callers arrive concurrently.
func (g *flightgroup) Do(id uuid.UUID, kind asset.Kind, priority Priority) (*asset.Record, error) {
	g.mu.Lock()
	if r, ok := g.inflight[id]; ok {
		// already being fetched, attach to that flight
		g.mu.Unlock()
		r.wg.Wait()
		return r.record, r.err
	}
	r := &flight{}
	r.wg.Add(1)
	g.active.Add(1)
	g.inflight[id] = r
	g.mu.Unlock()

	// the fetch itself runs outside the lock so unrelated identifiers
	// never serialize on each other
	defer func() {
		// remove the flight record before waking the waiters, even
		// if f panicked
		g.mu.Lock()
		delete(g.inflight, id)
		g.mu.Unlock()
		r.wg.Done()
		g.active.Done()
	}()

	r.record, r.err = g.f(id, kind, priority)
	return r.record, r.err
}

// Inflight reports whether a fetch for id is currently running.
func (g *flightgroup) Inflight(id uuid.UUID) bool {
	g.mu.Lock()
	_, ok := g.inflight[id]
	g.mu.Unlock()
	return ok
}

// Wait blocks until every in-flight fetch has finished and been removed
// from the table.
func (g *flightgroup) Wait() {
	g.active.Wait()
}
