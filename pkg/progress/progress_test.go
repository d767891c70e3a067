package progress

import (
	"sync"
	"testing"
)

func TestMonotonic_NeverDecreases(t *testing.T) {
	var got []float64
	fn := Monotonic(func(_ string, fraction float64) {
		got = append(got, fraction)
	})

	for _, f := range []float64{0.1, 0.6, 0.3, 0.8, 0.8, 0.2, 1.0} {
		fn("stage", f)
	}

	prev := -1.0
	for i, f := range got {
		if f < prev {
			t.Errorf("fraction decreased at index %d: %v -> %v", i, prev, f)
		}
		prev = f
	}
	if got[len(got)-1] != 1.0 {
		t.Errorf("final fraction = %v, want 1.0", got[len(got)-1])
	}
}

func TestMonotonic_Clamps(t *testing.T) {
	var got []float64
	fn := Monotonic(func(_ string, fraction float64) {
		got = append(got, fraction)
	})

	fn("under", -0.5)
	fn("over", 1.7)

	if got[0] != 0 {
		t.Errorf("negative fraction should clamp to 0, got %v", got[0])
	}
	if got[1] != 1 {
		t.Errorf("fraction above 1 should clamp to 1, got %v", got[1])
	}
}

func TestRelay_SingleConsumer(t *testing.T) {
	var mu sync.Mutex
	inCall := false
	calls := 0

	relay := NewRelay(func(_ string, _ float64) {
		mu.Lock()
		if inCall {
			t.Error("sink called concurrently")
		}
		inCall = true
		calls++
		mu.Unlock()

		mu.Lock()
		inCall = false
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				relay.Report("working", float64(j)/10)
			}
		}(i)
	}
	wg.Wait()
	relay.Close()

	mu.Lock()
	defer mu.Unlock()
	if calls == 0 {
		t.Error("sink never called")
	}
}

func TestRelay_ReportAfterCloseDoesNotPanic(t *testing.T) {
	relay := NewRelay(Nop)
	relay.Close()
	relay.Report("late", 0.5)
}
