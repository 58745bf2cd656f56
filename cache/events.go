package cache

import (
	"github.com/google/uuid"

	"github.com/openworld/assetcache/asset"
)

// An Event is emitted by the cache when a fetch resolves. The two
// concrete types are AssetLoaded and AssetLoadFailed. Delivery beyond
// Emit — buffering, fan-out to subscribers — is the sink's business,
// not the cache's.
type Event interface{}

// AssetLoaded is emitted after a successful remote fetch, once per
// fetch, not once per waiting caller.
type AssetLoaded struct {
	ID   uuid.UUID
	Kind asset.Kind
}

// AssetLoadFailed is emitted when a remote fetch fails. Reason carries
// the underlying failure for diagnostics; callers of Get only ever see
// an absent asset.
type AssetLoadFailed struct {
	ID     uuid.UUID
	Reason error
}

// An EventSink receives load events. Emit must not block for long; a
// slow sink delays the fetch path that calls it.
type EventSink interface {
	Emit(e Event)
}

// DiscardEvents is a sink that drops every event.
type DiscardEvents struct{}

// Emit does nothing.
func (DiscardEvents) Emit(e Event) {}
