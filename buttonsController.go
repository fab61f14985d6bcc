package main

import (
	"time"
)

const dButtonSleep = 10 * time.Millisecond

// a honored button press
type buttonMsg struct {
	at     time.Time
	source string
}

// debouncer drops edges that arrive within window of the last honored one
type debouncer struct {
	window time.Duration
	last   time.Time
	seen   bool
}

func newDebouncer(window time.Duration) *debouncer {
	return &debouncer{window: window}
}

func (d *debouncer) accept(now time.Time) bool {
	if d.seen && now.Sub(d.last) <= d.window {
		return false
	}
	d.seen = true
	d.last = now
	return true
}

// raise the "button pressed" flag for the sampler loop, false if a press
// is already waiting
func raiseButtonFlag(comms commChannels, msg buttonMsg) bool {
	select {
	case comms.buttons <- msg:
		return true
	default:
		return false
	}
}

func startWatchButtons(rt runtimeConfig) {
	startWorker(rt, "Buttons", runWatchButtons)
}

func runWatchButtons(rt runtimeConfig) {
	defer func() {
		rt.logger.Println("exiting runWatchButtons")
	}()

	settings := rt.settings
	comms := rt.comms
	err := rt.buttons.initButtons(settings)
	if err != nil {
		rt.logger.Println(err.Error())
		return
	}

	// we now should defer the closeButtons call to when this function exists
	defer rt.buttons.closeButtons()

	btn := settings.GetButtonMap(sMainBtn)
	err = rt.buttons.setupButtons(btn, rt)
	if err != nil {
		rt.logger.Println(err.Error())
		return
	}

	deb := newDebouncer(settings.GetDuration(sDebounce))

	for {
		select {
		case <-comms.quit:
			rt.logger.Println("quit from runWatchButtons")
			return
		default:
		}

		edge, err := rt.buttons.readEdge(rt)
		if err != nil {
			// we're done
			rt.logger.Printf("button read failed, shutting down: %s", err.Error())
			comms.shutdown()
			return
		}

		if edge {
			now := rt.clock.Now()
			if !deb.accept(now) {
				rt.logger.Println("press ignored (debounce)")
			} else if !raiseButtonFlag(comms, buttonMsg{at: now, source: "button"}) {
				rt.logger.Println("press ignored, one is already pending")
			} else {
				rt.logger.Printf("button pressed on pin %d", btn.pin)
			}
		}

		rt.clock.Sleep(dButtonSleep)
	}
}
