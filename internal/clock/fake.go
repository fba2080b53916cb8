package clock

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Fake is a manually advanced clock for tests. Advance runs due
// callbacks synchronously on the calling goroutine, so a test can
// assert state immediately after advancing.
type Fake struct {
	mu      sync.Mutex
	now     time.Time
	nextID  int
	pending []*fakeTimer
}

// NewFake returns a fake clock starting at a fixed instant.
func NewFake() *Fake {
	return &Fake{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) AfterFunc(d time.Duration, fn func()) Timer {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	t := &fakeTimer{
		clock: f,
		id:    f.nextID,
		at:    f.now.Add(d),
		fn:    fn,
	}
	f.pending = append(f.pending, t)
	return t
}

// Sleep returns immediately; fake time only moves through Advance.
func (f *Fake) Sleep(ctx context.Context, d time.Duration) error {
	return ctx.Err()
}

// Advance moves the clock forward and fires every callback scheduled
// inside the window, in order.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)
	f.mu.Unlock()

	for {
		t := f.popDue(target)
		if t == nil {
			break
		}
		t.fn()
	}

	f.mu.Lock()
	f.now = target
	f.mu.Unlock()
}

// popDue removes and returns the earliest timer due at or before
// target, moving now to its deadline so callbacks observe a coherent
// clock. Timers a callback schedules within the window fire in the
// same Advance.
func (f *Fake) popDue(target time.Time) *fakeTimer {
	f.mu.Lock()
	defer f.mu.Unlock()

	sort.SliceStable(f.pending, func(i, j int) bool {
		return f.pending[i].at.Before(f.pending[j].at) ||
			(f.pending[i].at.Equal(f.pending[j].at) && f.pending[i].id < f.pending[j].id)
	})
	for i, t := range f.pending {
		if !t.at.After(target) {
			f.pending = append(f.pending[:i], f.pending[i+1:]...)
			if t.at.After(f.now) {
				f.now = t.at
			}
			return t
		}
	}
	return nil
}

func (f *Fake) remove(id int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.pending {
		if t.id == id {
			f.pending = append(f.pending[:i], f.pending[i+1:]...)
			return true
		}
	}
	return false
}

// Pending reports how many timers are scheduled.
func (f *Fake) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

type fakeTimer struct {
	clock *Fake
	id    int
	at    time.Time
	fn    func()
}

func (t *fakeTimer) Stop() bool { return t.clock.remove(t.id) }
