// Package asset defines the unit of content this system caches: an
// immutable binary blob identified by a UUID, tagged with a kind and
// optional metadata.
//
// Records are never modified after construction. Code holding a *Record
// may share it freely between goroutines.
package asset

import (
	"bytes"
	"crypto/sha256"
	"sync"
	"time"

	"github.com/google/uuid"
)

// A Record is one cached asset: identifier, kind, raw bytes, and
// metadata. The byte slice must not be modified after the record is
// created. Records should be passed by pointer; copying one loses the
// memoized content hash.
type Record struct {
	ID        uuid.UUID
	Kind      Kind
	Bytes     []byte
	Metadata  Metadata
	CreatedAt time.Time

	hashOnce sync.Once
	hash     [sha256.Size]byte
}

// NewRecord builds a record around the given bytes, stamped with the
// current time. The caller hands over ownership of b.
func NewRecord(id uuid.UUID, kind Kind, b []byte, md Metadata) *Record {
	return &Record{
		ID:        id,
		Kind:      kind,
		Bytes:     b,
		Metadata:  md,
		CreatedAt: time.Now(),
	}
}

// Size returns the length of the content in bytes.
func (r *Record) Size() int64 {
	return int64(len(r.Bytes))
}

// ContentHash returns the SHA-256 digest of the content. It is computed
// on first use and reused afterwards, which is safe because the bytes
// are immutable.
func (r *Record) ContentHash() [sha256.Size]byte {
	r.hashOnce.Do(func() {
		r.hash = sha256.Sum256(r.Bytes)
	})
	return r.hash
}

// ContentEqual reports whether two records carry the same identifier and
// exactly the same bytes. Either argument may be nil; two nils are not
// considered equal content.
func ContentEqual(a, b *Record) bool {
	if a == nil || b == nil {
		return false
	}
	return a.ID == b.ID && bytes.Equal(a.Bytes, b.Bytes)
}

// Metadata holds the optional descriptive fields attached to a record.
// All fields may be left at their zero value. Note the zero Permissions
// grants nothing; use DefaultPermissions for the usual starting point.
type Metadata struct {
	Width       int         `json:"width,omitempty"`
	Height      int         `json:"height,omitempty"`
	Channels    int         `json:"channels,omitempty"`
	Compression string      `json:"compression,omitempty"`
	Author      string      `json:"author,omitempty"`
	Description string      `json:"description,omitempty"`
	Permissions Permissions `json:"permissions"`
}
