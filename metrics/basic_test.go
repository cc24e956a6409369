package metrics

import (
	"reflect"
	"runtime"
	"sync"
	"testing"
)

func TestBasicProvider_Counter_ReusedAndAccumulates(t *testing.T) {
	p := NewBasicProvider()

	c1 := p.Counter("scheduling_cycles")
	c2 := p.Counter("scheduling_cycles")

	if reflect.ValueOf(c1).Pointer() != reflect.ValueOf(c2).Pointer() {
		t.Fatalf("expected same counter instance for same name")
	}

	// Access concrete type to assert snapshot values.
	bc, ok := c1.(*BasicCounter)
	if !ok {
		t.Fatalf("expected *BasicCounter, got %T", c1)
	}

	c1.Add(3)
	c2.Add(2)
	if got := bc.Snapshot(); got != 5 {
		t.Fatalf("counter value = %d; want 5", got)
	}

	// Different name -> different instance
	cOther := p.Counter("tasklet_stalls")
	if reflect.ValueOf(cOther).Pointer() == reflect.ValueOf(c1).Pointer() {
		t.Fatalf("expected different counter instance for different name")
	}
}

func TestBasicProvider_UpDownCounter_ReusedAndMoves(t *testing.T) {
	p := NewBasicProvider()
	u1 := p.UpDownCounter("active_workers")
	u2 := p.UpDownCounter("active_workers")

	if reflect.ValueOf(u1).Pointer() != reflect.ValueOf(u2).Pointer() {
		t.Fatalf("expected same updown instance for same name")
	}

	bu, ok := u1.(*BasicUpDownCounter)
	if !ok {
		t.Fatalf("expected *BasicUpDownCounter, got %T", u1)
	}

	// Mirrors the Add(1)/Add(-1) pairing dispatcher.execute makes around a
	// Tasklet.Call: several workers check out, one checks back in.
	u1.Add(+3)
	u2.Add(-1)
	u1.Add(+10)
	if got := bu.Snapshot(); got != 12 {
		t.Fatalf("updown value = %d; want 12", got)
	}
}

func TestBasicProvider_Histogram_RecordsStats(t *testing.T) {
	p := NewBasicProvider()
	h := p.Histogram("tasklet_call_duration_seconds")

	bh, ok := h.(*BasicHistogram)
	if !ok {
		t.Fatalf("expected *BasicHistogram, got %T", h)
	}

	h.Record(0.001)
	h.Record(0.004)
	h.Record(0.002)
	s := bh.Snapshot()
	if s.Count != 3 {
		t.Fatalf("count = %d; want 3", s.Count)
	}
	if s.Min != 0.001 || s.Max != 0.004 {
		t.Fatalf("min/max = (%v,%v); want (0.001,0.004)", s.Min, s.Max)
	}
	if s.Sum < 0.0069 || s.Sum > 0.0071 {
		t.Fatalf("sum = %v; want ~0.007", s.Sum)
	}
	if s.Mean < 0.00229 || s.Mean > 0.00234 {
		t.Fatalf("mean = %v; want ~0.00233", s.Mean)
	}
}

func TestBasicProvider_Concurrent_GetSameInstrument(t *testing.T) {
	p := NewBasicProvider()
	n := 50
	ptrs := make([]uintptr, n)
	wg := sync.WaitGroup{}
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(idx int) {
			defer wg.Done()
			c := p.Counter("scheduling_cycles")
			ptrs[idx] = reflect.ValueOf(c).Pointer()
		}(i)
	}
	wg.Wait()
	first := ptrs[0]
	for i := 1; i < n; i++ {
		if ptrs[i] != first {
			t.Fatalf("expected same pointer for all retrieved counters; mismatch at %d", i)
		}
	}
}

func TestBasicProvider_Concurrent_CounterAdd(t *testing.T) {
	p := NewBasicProvider()
	c := p.Counter("scheduling_cycles")
	bc := c.(*BasicCounter)

	workers := runtime.NumCPU() * 2
	iters := 1000
	wg := sync.WaitGroup{}
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < iters; i++ {
				c.Add(1)
			}
		}()
	}
	wg.Wait()
	expected := int64(workers * iters)
	if got := bc.Snapshot(); got != expected {
		t.Fatalf("counter = %d; want %d", got, expected)
	}
}

func TestBasicProvider_Concurrent_UpDownAdd(t *testing.T) {
	p := NewBasicProvider()
	u := p.UpDownCounter("active_workers")
	bu := u.(*BasicUpDownCounter)

	workers := runtime.NumCPU() * 2
	iters := 1000
	wg := sync.WaitGroup{}
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(id int) {
			defer wg.Done()
			for i := 0; i < iters; i++ {
				// Alternates checkout/check-in the way concurrent dispatch
				// goroutines do around the pooled worker they hold.
				if (i+id)%2 == 0 {
					u.Add(+1)
				} else {
					u.Add(-1)
				}
			}
		}(w)
	}
	wg.Wait()
	expected := int64(0)
	if got := bu.Snapshot(); got != expected {
		t.Fatalf("updown = %d; want %d", got, expected)
	}
}

func TestBasicProvider_Concurrent_HistogramRecord(t *testing.T) {
	p := NewBasicProvider()
	h := p.Histogram("tasklet_call_duration_seconds")
	bh := h.(*BasicHistogram)

	workers := runtime.NumCPU() * 2
	iters := 500
	wg := sync.WaitGroup{}
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(base int) {
			defer wg.Done()
			for i := 0; i < iters; i++ {
				// record a few bounded call durations, in seconds
				v := float64((base%10)+i%10) / 1000.0
				h.Record(v)
			}
		}(w)
	}
	wg.Wait()
	s := bh.Snapshot()
	expectedCount := int64(workers * iters)
	if s.Count != expectedCount {
		t.Fatalf("hist count = %d; want %d", s.Count, expectedCount)
	}
	if s.Min < 0.0 || s.Min > 0.009 || s.Max < 0.0 || s.Max > 0.019 {
		t.Fatalf("min/max out of expected range: (%v,%v)", s.Min, s.Max)
	}
}
