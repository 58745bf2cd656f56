package cache

import (
	"log"
	"time"

	"github.com/facebookgo/clock"
)

// sweeper enforces the disk-tier byte budget. On a fixed interval it
// sums the tier; if the total is over budget it deletes the oldest 25%
// of files by count in one pass. Deliberately coarse: no per-read access
// tracking, just mod times, trading eviction precision for cheap reads.
type sweeper struct {
	disk     *DiskTier
	budget   int64 // max bytes the disk tier may use
	interval time.Duration
	clk      clock.Clock
	done     chan struct{}
	stopped  chan struct{}
}

func newSweeper(disk *DiskTier, budget int64, interval time.Duration, clk clock.Clock) *sweeper {
	s := &sweeper{
		disk:     disk,
		budget:   budget,
		interval: interval,
		clk:      clk,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *sweeper) run() {
	defer close(s.stopped)
	tick := s.clk.Ticker(s.interval)
	defer tick.Stop()
	for {
		select {
		case <-tick.C:
			s.sweep()
		case <-s.done:
			return
		}
	}
}

// Stop halts the background goroutine and waits for it to exit.
func (s *sweeper) Stop() {
	close(s.done)
	<-s.stopped
}

// sweep is one eviction pass.
func (s *sweeper) sweep() {
	total := s.disk.TotalBytes()
	if total <= s.budget {
		return
	}
	files := s.disk.OldestFirst()
	// a quarter of the files, rounded up so a small tier still makes
	// progress toward the budget
	n := (len(files) + 3) / 4
	log.Printf("eviction sweep: %d bytes used, budget %d, removing %d of %d files",
		total, s.budget, n, len(files))
	for _, f := range files[:n] {
		if err := s.disk.Remove(f.Name); err != nil {
			// skip it, the next sweep will see it again
			log.Println("eviction sweep:", f.Name, err)
			continue
		}
	}
}
