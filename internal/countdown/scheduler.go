// Package countdown drives per-question time limits from a periodic tick
// source that can be swapped for a manual one in tests.
package countdown

import (
	"sync"
	"time"
)

// Cancel stops a scheduled task. Calling it more than once is harmless.
type Cancel func()

// Scheduler runs a callback repeatedly at a fixed period until cancelled.
type Scheduler interface {
	Every(period time.Duration, fn func()) Cancel
}

// TickerScheduler schedules on wall-clock time using time.Ticker.
type TickerScheduler struct{}

var _ Scheduler = TickerScheduler{}

func (TickerScheduler) Every(period time.Duration, fn func()) Cancel {
	ticker := time.NewTicker(period)
	done := make(chan struct{})
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				fn()
			case <-done:
				return
			}
		}
	}()
	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

// FakeScheduler only fires when told to.
type FakeScheduler struct {
	mu    sync.Mutex
	tasks []*fakeTask
}

type fakeTask struct {
	fn        func()
	cancelled bool
}

var _ Scheduler = (*FakeScheduler)(nil)

// NewFake returns an idle FakeScheduler.
func NewFake() *FakeScheduler {
	return &FakeScheduler{}
}

func (f *FakeScheduler) Every(_ time.Duration, fn func()) Cancel {
	f.mu.Lock()
	defer f.mu.Unlock()
	task := &fakeTask{fn: fn}
	f.tasks = append(f.tasks, task)
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		task.cancelled = true
	}
}

// Tick fires every live task once. Callbacks run without the scheduler lock
// held, so they may cancel or schedule tasks.
func (f *FakeScheduler) Tick() {
	f.mu.Lock()
	var live []*fakeTask
	kept := f.tasks[:0]
	for _, t := range f.tasks {
		if !t.cancelled {
			live = append(live, t)
			kept = append(kept, t)
		}
	}
	f.tasks = kept
	f.mu.Unlock()

	for _, t := range live {
		f.mu.Lock()
		cancelled := t.cancelled
		f.mu.Unlock()
		if !cancelled {
			t.fn()
		}
	}
}

// TickN calls Tick n times.
func (f *FakeScheduler) TickN(n int) {
	for i := 0; i < n; i++ {
		f.Tick()
	}
}

// Active returns the number of tasks not yet cancelled.
func (f *FakeScheduler) Active() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.tasks {
		if !t.cancelled {
			n++
		}
	}
	return n
}
