// acutil is a maintenance tool for poking at an asset cache directory
// directly, without a running daemon. It can list the disk tier, show
// totals, pull single assets, and clear tiers.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"

	"github.com/openworld/assetcache/asset"
	"github.com/openworld/assetcache/cache"
	"github.com/openworld/assetcache/fetch"
)

var (
	cacheDir = flag.String("s", ".", "location of the cache directory")
	origin   = flag.String("origin", "", "origin URL for commands which may fetch")
	usage    = `
acutil <command> <command arguments>

Possible commands:
    list

    total

    get <asset id> <kind>

    status <asset id>

    clear
`
)

func main() {
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Println(usage)
		return
	}

	dt, err := cache.NewDiskTier(*cacheDir)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	switch args[0] {
	case "list":
		dolist(dt)
	case "total":
		fmt.Printf("%d bytes\n", dt.TotalBytes())
	case "get":
		if len(args) < 3 {
			fmt.Println(usage)
			os.Exit(1)
		}
		doget(args[1], args[2])
	case "status":
		if len(args) < 2 {
			fmt.Println(usage)
			os.Exit(1)
		}
		dostatus(args[1])
	case "clear":
		dt.RemoveAll()
	default:
		fmt.Println(usage)
	}
}

func dolist(dt *cache.DiskTier) {
	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "File\tSize\tModified")
	for _, e := range dt.OldestFirst() {
		fmt.Fprintf(w, "%s\t%d\t%s\n", e.Name, e.Size, e.ModTime.Format("2006-01-02 15:04:05"))
	}
	w.Flush()
}

// newCache builds a cache over the directory. Without an -origin flag
// the fetcher always misses, which is fine for local inspection.
func newCache() *cache.Cache {
	fetcher := cache.Fetcher(cache.FetcherFunc(
		func(ctx context.Context, id uuid.UUID, kind asset.Kind, p cache.Priority) ([]byte, error) {
			return nil, fmt.Errorf("no origin configured")
		}))
	if *origin != "" {
		var err error
		fetcher, err = fetch.ParseOrigin(*origin)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	}
	c, err := cache.New(cache.Config{CacheDir: *cacheDir, Fetcher: fetcher})
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	return c
}

func doget(rawid, rawkind string) {
	id, err := uuid.Parse(rawid)
	if err != nil {
		fmt.Printf("%s: %s\n", rawid, err.Error())
		os.Exit(1)
	}
	kind, err := asset.ParseKind(rawkind)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	c := newCache()
	defer c.Shutdown()
	r, err := c.Get(id, kind, cache.PriorityNormal)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if r == nil {
		fmt.Printf("%s: not available\n", id)
		os.Exit(1)
	}
	os.Stdout.Write(r.Bytes)
}

func dostatus(rawid string) {
	id, err := uuid.Parse(rawid)
	if err != nil {
		fmt.Printf("%s: %s\n", rawid, err.Error())
		os.Exit(1)
	}
	c := newCache()
	defer c.Shutdown()
	fmt.Println(c.Status(id))
}
