// Package util holds small concurrency helpers shared by the cache.
package util

// A Gate bounds concurrency. A gate admits at most n goroutines at a
// time; goroutines call Enter() before the protected section and
// Leave() when they are done.
type Gate chan struct{}

// NewGate returns a Gate which admits at most n entries at a time.
func NewGate(n int) Gate {
	return Gate(make(chan struct{}, n))
}

// Enter blocks the calling goroutine until fewer than n goroutines are
// inside the gate, then claims a slot. It is safe to call from multiple
// goroutines.
func (g Gate) Enter() {
	g <- struct{}{}
}

// Leave releases a slot. Each call to Enter must be balanced by one call
// to Leave, though not necessarily from the same goroutine.
func (g Gate) Leave() {
	<-g
}
