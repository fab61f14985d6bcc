package gpio

import (
	"fmt"
	"log"
	"sync"

	"github.com/pkg/errors"
	"github.com/stianeikeland/go-rpio"
)

// Bank is an ordered set of output pins, addressed by index
type Bank struct {
	pins   []rpio.Pin
	pinNum []int
	idle   []uint8
	levels []uint8
	sim    bool
	dump   bool
	// levels is read by the status service while the scanner writes
	mu sync.Mutex
}

func logWrite(pin int, level uint8) {
	log.Printf("gpio %d <- %d", pin, level)
}

// open a bank of output pins, each driven to its idle level (nil means
// all low). simulated banks only keep track of the levels.
func Open(pins []int, idle []uint8, simulated bool) (*Bank, error) {
	if len(pins) == 0 {
		return nil, errors.New("gpio: no pins")
	}
	if idle == nil {
		idle = make([]uint8, len(pins))
	}
	if len(idle) != len(pins) {
		return nil, fmt.Errorf("gpio: %d idle levels for %d pins", len(idle), len(pins))
	}
	seen := make(map[int]bool)
	for _, p := range pins {
		if p < 0 || p > 53 {
			return nil, fmt.Errorf("gpio: bad pin number %d", p)
		}
		if seen[p] {
			return nil, fmt.Errorf("gpio: pin %d used twice", p)
		}
		seen[p] = true
	}

	this := &Bank{
		pinNum: append([]int(nil), pins...),
		idle:   make([]uint8, len(pins)),
		levels: make([]uint8, len(pins)),
		sim:    simulated,
	}
	for i, l := range idle {
		if l != 0 {
			l = 1
		}
		this.idle[i] = l
		this.levels[i] = l
	}
	if simulated {
		return this, nil
	}

	if err := rpio.Open(); err != nil {
		return nil, errors.Wrap(err, "gpio: open")
	}
	this.pins = make([]rpio.Pin, len(pins))
	for i, p := range pins {
		this.pins[i] = rpio.Pin(p)
		// set the level before the direction so the pin never glitches on
		this.pins[i].Write(rpio.State(this.idle[i]))
		this.pins[i].Output()
	}
	return this, nil
}

func (b *Bank) DebugDump(on bool) {
	b.mu.Lock()
	b.dump = on
	b.mu.Unlock()
}

func (b *Bank) Simulated() bool {
	return b.sim
}

// SetLevel drives the pin at index line, 0 is low, anything else high
func (b *Bank) SetLevel(line int, level uint8) {
	if level != 0 {
		level = 1
	}
	b.mu.Lock()
	b.levels[line] = level
	dump := b.dump
	b.mu.Unlock()

	if dump {
		logWrite(b.pinNum[line], level)
	}
	if !b.sim {
		b.pins[line].Write(rpio.State(level))
	}
}

// Levels returns the last level written to every pin
func (b *Bank) Levels() []uint8 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]uint8(nil), b.levels...)
}

// Pins returns the BCM pin numbers, in bank order
func (b *Bank) Pins() []int {
	return append([]int(nil), b.pinNum...)
}

// Close puts every pin back to its idle level and releases the gpio
// memory map. Anything else using rpio must be closed first.
func (b *Bank) Close() error {
	for i, l := range b.idle {
		b.SetLevel(i, l)
	}
	if b.sim {
		return nil
	}
	return rpio.Close()
}
