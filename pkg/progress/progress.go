// Package progress carries human-readable stage reporting from pipeline
// workers to a caller-supplied sink.
package progress

import "sync"

// Func receives a stage message and a completion fraction in [0, 1].
type Func func(message string, fraction float64)

// Nop discards all reports.
func Nop(string, float64) {}

// Monotonic wraps fn so that reported fractions are clamped to [0, 1] and
// never decrease, regardless of the order workers finish in.
func Monotonic(fn Func) Func {
	var mu sync.Mutex
	high := 0.0

	return func(message string, fraction float64) {
		mu.Lock()
		if fraction < 0 {
			fraction = 0
		}
		if fraction > 1 {
			fraction = 1
		}
		if fraction < high {
			fraction = high
		}
		high = fraction
		mu.Unlock()

		fn(message, fraction)
	}
}

// Scaled maps stage-local fractions in [0, 1] onto the [lo, hi] band of
// the overall run, so a component can report its own completion without
// knowing where its stage sits in the pipeline.
func Scaled(fn Func, lo, hi float64) Func {
	return func(message string, fraction float64) {
		if fraction < 0 {
			fraction = 0
		}
		if fraction > 1 {
			fraction = 1
		}
		fn(message, lo+(hi-lo)*fraction)
	}
}

type report struct {
	message  string
	fraction float64
}

// Relay funnels reports from concurrent workers into a single consumer
// goroutine. The sink is never called from two goroutines at once, and
// Report never blocks the worker: when the consumer falls behind, reports
// are dropped rather than stalling acquisition.
type Relay struct {
	ch   chan report
	done chan struct{}
	once sync.Once
}

// NewRelay starts the consumer goroutine for fn. Fractions are made
// monotonic before fn sees them. Call Close when no more reports follow.
func NewRelay(fn Func) *Relay {
	r := &Relay{
		ch:   make(chan report, 64),
		done: make(chan struct{}),
	}

	sink := Monotonic(fn)
	go func() {
		defer close(r.done)
		for rep := range r.ch {
			sink(rep.message, rep.fraction)
		}
	}()

	return r
}

// Report queues a progress report. Safe for concurrent use; drops the
// report if the relay buffer is full or the relay is closed.
func (r *Relay) Report(message string, fraction float64) {
	defer func() {
		// Racing a concurrent Close can panic on send; a dropped report
		// is acceptable there.
		_ = recover()
	}()

	select {
	case r.ch <- report{message: message, fraction: fraction}:
	default:
	}
}

// Close stops the relay and waits for queued reports to drain.
func (r *Relay) Close() {
	r.once.Do(func() {
		close(r.ch)
	})
	<-r.done
}
