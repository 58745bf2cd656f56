package cache

import (
	"sync"

	"github.com/google/uuid"

	"github.com/openworld/assetcache/asset"
)

// MemoryTier is the in-process record map, the fastest tier and the
// first one consulted. It holds whole records and never evicts on its
// own: it is a pure accelerator over the disk tier, cleared wholesale by
// Clear and by nothing else. Bounding its growth is the operator's
// responsibility.
//
// Safe for concurrent use without external locking.
type MemoryTier struct {
	m       sync.RWMutex
	records map[uuid.UUID]*asset.Record
}

// NewMemoryTier returns a new, empty memory tier.
func NewMemoryTier() *MemoryTier {
	return &MemoryTier{records: make(map[uuid.UUID]*asset.Record)}
}

// Lookup returns the record for id, or nil if it is not resident.
func (mt *MemoryTier) Lookup(id uuid.UUID) *asset.Record {
	mt.m.RLock()
	r := mt.records[id]
	mt.m.RUnlock()
	return r
}

// Insert makes the record resident, replacing any previous record with
// the same identifier.
func (mt *MemoryTier) Insert(r *asset.Record) {
	mt.m.Lock()
	mt.records[r.ID] = r
	mt.m.Unlock()
}

// Clear drops every resident record.
func (mt *MemoryTier) Clear() {
	mt.m.Lock()
	mt.records = make(map[uuid.UUID]*asset.Record)
	mt.m.Unlock()
}

// Len returns the number of resident records.
func (mt *MemoryTier) Len() int {
	mt.m.RLock()
	n := len(mt.records)
	mt.m.RUnlock()
	return n
}
