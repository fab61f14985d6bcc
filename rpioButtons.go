package main

import (
	"fmt"

	"github.com/stianeikeland/go-rpio"
)

// rpioButtons uses the SoC edge detector, so presses between polls are
// not lost
type rpioButtons struct {
	button buttonMap
	rpin   rpio.Pin
}

func (rb *rpioButtons) initButtons(settings configSettings) error {
	// nothing to init, the gpio bank already opened /dev/gpiomem
	return nil
}

func (rb *rpioButtons) setupButtons(btn buttonMap, rt runtimeConfig) error {
	if btn.pin < 0 || btn.pin > 53 {
		return fmt.Errorf("bad button pin %d", btn.pin)
	}
	rb.button = btn
	rb.rpin = rpio.Pin(btn.pin)
	rb.rpin.Input()
	if btn.pullup {
		rb.rpin.PullUp() // GND => button press
		rb.rpin.Detect(rpio.FallEdge)
	} else {
		rb.rpin.PullDown() // +V -> button press
		rb.rpin.Detect(rpio.RiseEdge)
	}
	return nil
}

func (rb *rpioButtons) readEdge(rt runtimeConfig) (bool, error) {
	return rb.rpin.EdgeDetected(), nil
}

func (rb *rpioButtons) closeButtons() {
	rb.rpin.Detect(rpio.NoEdge)
}
