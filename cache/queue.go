package cache

import (
	"container/heap"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/openworld/assetcache/asset"
)

// Priority orders requests in the preload queue. It is only a queueing
// hint; a fetch already in flight is never preempted by a later,
// higher-priority request for the same asset.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
	PriorityCritical
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "high"
	case PriorityCritical:
		return "critical"
	}
	return fmt.Sprintf("priority(%d)", int(p))
}

// ParsePriority resolves a priority by name. Unknown names come back as
// PriorityNormal with an error, so a caller that does not care can
// ignore it.
func ParsePriority(s string) (Priority, error) {
	switch s {
	case "low":
		return PriorityLow, nil
	case "normal", "":
		return PriorityNormal, nil
	case "high":
		return PriorityHigh, nil
	case "critical":
		return PriorityCritical, nil
	}
	return PriorityNormal, fmt.Errorf("unknown priority %q", s)
}

// A Request names one asset to acquire.
type Request struct {
	ID       uuid.UUID
	Kind     asset.Kind
	Priority Priority
}

// requestQueue is the bounded queue feeding the preload workers.
// Highest priority pops first; requests of equal priority pop in
// arrival order. When the queue is full new requests are dropped, since
// preloading is advisory.
type requestQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	heap   requestHeap
	max    int
	seq    uint64
	closed bool
}

func newRequestQueue(max int) *requestQueue {
	q := &requestQueue{max: max}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push queues a request. It reports false when the request was dropped
// because the queue is full or closed.
func (q *requestQueue) Push(r Request) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed || q.heap.Len() >= q.max {
		return false
	}
	q.seq++
	heap.Push(&q.heap, queued{Request: r, seq: q.seq})
	q.cond.Signal()
	return true
}

// Pop blocks until a request is available, returning false once the
// queue has been closed and drained.
func (q *requestQueue) Pop() (Request, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.heap.Len() == 0 && !q.closed {
		q.cond.Wait()
	}
	if q.heap.Len() == 0 {
		return Request{}, false
	}
	item := heap.Pop(&q.heap).(queued)
	return item.Request, true
}

// Close wakes every blocked Pop. Requests already queued can still be
// drained.
func (q *requestQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cond.Broadcast()
}

type queued struct {
	Request
	seq uint64
}

type requestHeap []queued

func (h requestHeap) Len() int { return len(h) }

func (h requestHeap) Less(i, j int) bool {
	if h[i].Priority != h[j].Priority {
		return h[i].Priority > h[j].Priority
	}
	return h[i].seq < h[j].seq
}

func (h requestHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *requestHeap) Push(x interface{}) {
	*h = append(*h, x.(queued))
}

func (h *requestHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
