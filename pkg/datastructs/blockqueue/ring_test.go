package blockqueue

import "testing"

func TestRing_PushPopWrapAround(t *testing.T) {
	var r ring[int]

	// Force the head away from zero, then wrap.
	for i := 0; i < minRingCap; i++ {
		r.pushBack(i)
	}
	for i := 0; i < minRingCap/2; i++ {
		if got := r.popFront(); got != i {
			t.Fatalf("popFront = %d, want %d", got, i)
		}
	}
	for i := 0; i < minRingCap/2; i++ {
		r.pushBack(minRingCap + i)
	}

	if got := r.len(); got != minRingCap {
		t.Fatalf("len = %d, want %d", got, minRingCap)
	}
	for i := minRingCap / 2; i < minRingCap+minRingCap/2; i++ {
		if got := r.popFront(); got != i {
			t.Fatalf("popFront = %d, want %d", got, i)
		}
	}
}

func TestRing_GrowPreservesOrder(t *testing.T) {
	var r ring[int]
	const n = 1000

	for i := 0; i < n; i++ {
		r.pushBack(i)
		// Keep the head moving so growth happens mid-ring.
		if i%3 == 2 {
			r.popFront()
		}
	}

	prev := -1
	for r.len() > 0 {
		got := r.popFront()
		if got <= prev {
			t.Fatalf("order broken: %d after %d", got, prev)
		}
		prev = got
	}
}

func TestRing_FrontBack(t *testing.T) {
	var r ring[string]
	r.pushBack("a")
	r.pushBack("b")
	r.pushBack("c")

	if got := r.front(); got != "a" {
		t.Errorf("front = %q, want a", got)
	}
	if got := r.back(); got != "c" {
		t.Errorf("back = %q, want c", got)
	}
	if got := r.len(); got != 3 {
		t.Errorf("front/back must not consume, len = %d", got)
	}
}

func TestRing_Reset(t *testing.T) {
	var r ring[*int]
	v := 1
	r.pushBack(&v)
	r.pushBack(&v)
	r.reset()

	if r.len() != 0 {
		t.Errorf("len after reset = %d, want 0", r.len())
	}
	for i := range r.buf {
		if r.buf[i] != nil {
			t.Fatalf("reset left a live reference at index %d", i)
		}
	}

	r.pushBack(&v)
	if r.len() != 1 || r.front() != &v {
		t.Error("ring unusable after reset")
	}
}
