package sevenseg_mux

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// ClockTrigger runs a callback from its own goroutine, sleeping on the
// clock between calls
type ClockTrigger struct {
	clock clockwork.Clock

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

func NewClockTrigger(clock clockwork.Clock) *ClockTrigger {
	return &ClockTrigger{clock: clock}
}

// Schedule is a no-op while a schedule is already running
func (t *ClockTrigger) Schedule(period time.Duration, callback func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop != nil {
		return
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	t.stop = stop
	t.done = done

	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			case <-t.clock.After(period):
			}
			// a cancel that raced the wakeup wins
			select {
			case <-stop:
				return
			default:
			}
			callback()
		}
	}()
}

// Cancel stops the schedule and waits for an in-flight callback
func (t *ClockTrigger) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop == nil {
		return
	}
	close(t.stop)
	<-t.done
	t.stop = nil
	t.done = nil
}

func (t *ClockTrigger) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stop != nil
}
