package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/openworld/assetcache/asset"
)

func TestFlightDedup(t *testing.T) {
	var calls int64
	release := make(chan struct{})
	g := newFlightgroup(func(id uuid.UUID, kind asset.Kind, priority Priority) (*asset.Record, error) {
		atomic.AddInt64(&calls, 1)
		<-release
		return asset.NewRecord(id, kind, []byte("payload"), asset.Metadata{}), nil
	})

	id := uuid.New()
	const n = 20
	var wg sync.WaitGroup
	results := make([]*asset.Record, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := g.Do(id, asset.KindTexture, PriorityNormal)
			if err != nil {
				t.Errorf("received %s", err.Error())
			}
			results[i] = r
		}(i)
	}

	// give every goroutine time to attach before the fetch resolves
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if c := atomic.LoadInt64(&calls); c != 1 {
		t.Errorf("fetch ran %d times, expected 1", c)
	}
	for i := 1; i < n; i++ {
		if results[i] != results[0] {
			t.Errorf("caller %d got a different record", i)
		}
	}
	if string(results[0].Bytes) != "payload" {
		t.Errorf("Got %q, expected %q", results[0].Bytes, "payload")
	}
	if g.Inflight(id) {
		t.Errorf("flight record not removed after completion")
	}
}

func TestFlightSequentialRefetch(t *testing.T) {
	// distinct, non-overlapping calls each run the fetch
	var calls int64
	g := newFlightgroup(func(id uuid.UUID, kind asset.Kind, priority Priority) (*asset.Record, error) {
		atomic.AddInt64(&calls, 1)
		return asset.NewRecord(id, kind, []byte("x"), asset.Metadata{}), nil
	})
	id := uuid.New()
	g.Do(id, asset.KindSound, PriorityLow)
	g.Do(id, asset.KindSound, PriorityLow)
	if calls != 2 {
		t.Errorf("fetch ran %d times, expected 2", calls)
	}
}

func TestFlightFailure(t *testing.T) {
	boom := errors.New("origin unreachable")
	g := newFlightgroup(func(id uuid.UUID, kind asset.Kind, priority Priority) (*asset.Record, error) {
		return nil, boom
	})
	id := uuid.New()
	r, err := g.Do(id, asset.KindMesh, PriorityHigh)
	if r != nil {
		t.Errorf("got a record from a failed fetch")
	}
	if err != boom {
		t.Errorf("Got %v, expected %v", err, boom)
	}
	// the failure is not sticky
	if g.Inflight(id) {
		t.Errorf("flight record not removed after failure")
	}
	g.Wait() // must not hang
}
