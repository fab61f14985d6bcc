package main

import (
	"errors"
	"time"

	// keyboard for sim mode
	"github.com/nsf/termbox-go"
)

// keyButtons treats a key press as a button edge
type keyButtons struct {
	button buttonMap
}

func (kb *keyButtons) initButtons(settings configSettings) error {
	err := termbox.Init()
	if err != nil {
		return err
	}

	termbox.SetInputMode(termbox.InputEsc)
	termbox.Flush()

	// close it later
	return nil
}

func (kb *keyButtons) setupButtons(btn buttonMap, rt runtimeConfig) error {
	if btn.key == "" {
		return errors.New("no key for the simulated button")
	}
	kb.button = btn
	return nil
}

func (kb *keyButtons) readEdge(rt runtimeConfig) (bool, error) {
	// poll with quick timeout
	// no key means "no press"
	go func() {
		rt.clock.Sleep(50 * time.Millisecond)
		termbox.Interrupt()
	}()

	pressed := false
	for {
		ev := termbox.PollEvent()
		switch ev.Type {
		case termbox.EventKey:
			// add an exit key
			if ev.Key == termbox.KeyCtrlC {
				return false, errors.New("exit termbox loop")
			}
			if ev.Ch != 0 && byte(ev.Ch) == kb.button.key[0] {
				pressed = true
			}
		case termbox.EventInterrupt:
			return pressed, nil
		case termbox.EventError:
			return false, ev.Err
		}
	}
}

func (kb *keyButtons) closeButtons() {
	termbox.Close()
}
