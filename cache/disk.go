package cache

import (
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	raven "github.com/getsentry/raven-go"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/openworld/assetcache/asset"
)

const (
	// the subdir files are written to before being renamed into place.
	scratchdir = "scratch"
)

// DiskTier is the durable tier: one file per asset under a root
// directory, named <identifier>.<extension-for-kind>. There is no index
// file; the presence of the file is the index.
//
// All I/O errors on the read and write paths are swallowed and logged. A
// corrupt or unreadable entry degrades to a miss and a re-fetch, and a
// failed write never fails the fetch that produced the bytes. The only
// error this tier ever reports is an unusable root directory at
// construction time.
type DiskTier struct {
	root string
}

// NewDiskTier makes sure root exists and is writable and returns the
// tier. An unusable directory is a configuration error and is reported
// immediately rather than discovered on the first store.
func NewDiskTier(root string) (*DiskTier, error) {
	if err := os.MkdirAll(filepath.Join(root, scratchdir), 0775); err != nil {
		return nil, errors.Wrap(err, "cache directory")
	}
	// probe for writability now so a read-only mount fails at startup
	probe, err := ioutil.TempFile(filepath.Join(root, scratchdir), "probe-")
	if err != nil {
		return nil, errors.Wrap(err, "cache directory not writable")
	}
	probe.Close()
	os.Remove(probe.Name())
	return &DiskTier{root: root}, nil
}

func (dt *DiskTier) filename(id uuid.UUID, kind asset.Kind) string {
	return filepath.Join(dt.root, id.String()+"."+kind.Ext())
}

// Load reads the record for the given id and kind. A missing file is a
// normal miss and returns nil. Read errors also return nil, after being
// logged, so a damaged cache entry turns into a re-fetch instead of an
// error for the caller. A file stored under a different kind's extension
// is treated as absent.
func (dt *DiskTier) Load(id uuid.UUID, kind asset.Kind) *asset.Record {
	fname := dt.filename(id, kind)
	data, err := ioutil.ReadFile(fname)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Println("disk tier: load:", fname, err)
			raven.CaptureError(err, map[string]string{"file": fname})
		}
		return nil
	}
	created := time.Now()
	if fi, err := os.Stat(fname); err == nil {
		created = fi.ModTime()
	}
	return &asset.Record{
		ID:        id,
		Kind:      kind,
		Bytes:     data,
		Metadata:  asset.Metadata{Permissions: asset.DefaultPermissions()},
		CreatedAt: created,
	}
}

// Store saves the record's bytes. The write goes to a scratch file first
// and is renamed into place, so readers never see partial content and a
// crash mid-write leaves no half-record. Storing the same id twice
// leaves one file; when two writers race, the last rename wins.
//
// Caching is best-effort: errors are logged and otherwise ignored.
func (dt *DiskTier) Store(r *asset.Record) {
	w, err := ioutil.TempFile(filepath.Join(dt.root, scratchdir), r.ID.String()+"-")
	if err != nil {
		log.Println("disk tier: store:", r.ID, err)
		raven.CaptureError(err, map[string]string{"id": r.ID.String()})
		return
	}
	temp := w.Name()
	_, err = w.Write(r.Bytes)
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(temp, dt.filename(r.ID, r.Kind))
	}
	if err != nil {
		log.Println("disk tier: store:", r.ID, err)
		raven.CaptureError(err, map[string]string{"id": r.ID.String()})
		os.Remove(temp)
	}
}

// Exists reports whether any file for the identifier is present,
// whatever its extension.
func (dt *DiskTier) Exists(id uuid.UUID) bool {
	matches, err := filepath.Glob(filepath.Join(dt.root, id.String()+".*"))
	return err == nil && len(matches) > 0
}

// A DiskEntry describes one file in the tier.
type DiskEntry struct {
	Name    string // file name relative to the root
	Size    int64
	ModTime time.Time
}

// entries lists the asset files in the tier. Scratch files are not
// included. Errors are logged and produce a short (possibly empty) list.
func (dt *DiskTier) entries() []DiskEntry {
	infos, err := ioutil.ReadDir(dt.root)
	if err != nil {
		log.Println("disk tier: list:", err)
		raven.CaptureError(err, nil)
		return nil
	}
	var result []DiskEntry
	for _, fi := range infos {
		if fi.IsDir() {
			continue
		}
		result = append(result, DiskEntry{
			Name:    fi.Name(),
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
		})
	}
	return result
}

// TotalBytes returns the byte total of every asset file in the tier.
func (dt *DiskTier) TotalBytes() int64 {
	var total int64
	for _, e := range dt.entries() {
		total += e.Size
	}
	return total
}

// OldestFirst lists the asset files sorted by last-modified time,
// oldest first. This is the ordering the eviction sweep deletes in.
func (dt *DiskTier) OldestFirst() []DiskEntry {
	es := dt.entries()
	sort.Slice(es, func(i, j int) bool {
		return es[i].ModTime.Before(es[j].ModTime)
	})
	return es
}

// Remove deletes one file by its entry name. A file that is already
// gone is not an error.
func (dt *DiskTier) Remove(name string) error {
	err := os.Remove(filepath.Join(dt.root, name))
	if err != nil && os.IsNotExist(err) {
		err = nil
	}
	return err
}

// RemoveAll deletes every asset file in the tier. Individual failures
// are logged and skipped.
func (dt *DiskTier) RemoveAll() {
	for _, e := range dt.entries() {
		if err := dt.Remove(e.Name); err != nil {
			log.Println("disk tier: remove:", e.Name, err)
		}
	}
}
