package util

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestGateMaximum(t *testing.T) {
	// 10 goroutines try to enter a gate that can only hold 5
	g := NewGate(5)
	var nenter int64
	for i := 0; i < 10; i++ {
		go func() {
			g.Enter()
			atomic.AddInt64(&nenter, 1)
		}()
	}

	time.Sleep(10 * time.Millisecond)
	if n := atomic.LoadInt64(&nenter); n != 5 {
		t.Errorf("Received %d enters, expected %d", n, 5)
	}

	// open two slots and two more should come through
	g.Leave()
	g.Leave()
	time.Sleep(10 * time.Millisecond)

	if n := atomic.LoadInt64(&nenter); n != 7 {
		t.Errorf("Received %d enters, expected %d", n, 7)
	}

	// balance the rest so nothing is left blocked
	for i := 0; i < 7; i++ {
		g.Leave()
	}
	time.Sleep(10 * time.Millisecond)
	if n := atomic.LoadInt64(&nenter); n != 10 {
		t.Errorf("Received %d enters, expected %d", n, 10)
	}
}
