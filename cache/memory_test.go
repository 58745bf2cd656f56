package cache

import (
	"testing"

	"github.com/google/uuid"

	"github.com/openworld/assetcache/asset"
)

func TestMemoryTier(t *testing.T) {
	mt := NewMemoryTier()
	id := uuid.New()

	if mt.Lookup(id) != nil {
		t.Errorf("lookup in empty tier returned a record")
	}

	r1 := asset.NewRecord(id, asset.KindTexture, []byte("one"), asset.Metadata{})
	mt.Insert(r1)
	if got := mt.Lookup(id); got != r1 {
		t.Errorf("lookup did not return the inserted record")
	}
	if mt.Len() != 1 {
		t.Errorf("Len = %d, expected 1", mt.Len())
	}

	// insert overwrites on conflict
	r2 := asset.NewRecord(id, asset.KindTexture, []byte("two"), asset.Metadata{})
	mt.Insert(r2)
	if got := mt.Lookup(id); got != r2 {
		t.Errorf("overwrite did not replace the record")
	}
	if mt.Len() != 1 {
		t.Errorf("Len = %d after overwrite, expected 1", mt.Len())
	}

	mt.Clear()
	if mt.Len() != 0 || mt.Lookup(id) != nil {
		t.Errorf("tier not empty after Clear")
	}
}
