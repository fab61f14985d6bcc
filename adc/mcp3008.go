// Package adc reads an MCP3008 10-bit ADC. The SPI lines are driven from
// go-rpio pins in software, so any four free pins will do.
package adc

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/stianeikeland/go-rpio"
)

const (
	maxRaw      = 0x3FF
	channels    = 8
	DefaultRate = 1000000 // 1MHz, the datasheet max at 3.3V is 1.35MHz
)

// Pins are the BCM numbers of the SPI lines
type Pins struct {
	Clock int
	MOSI  int // Din on the chip
	MISO  int // Dout on the chip
	CS    int
}

// SPI0 is where the hardware SPI0/CE0 pins sit on the header
var SPI0 = Pins{Clock: 11, MOSI: 10, MISO: 9, CS: 8}

// List returns the pins as clock, mosi, miso, cs
func (p Pins) List() []int {
	return []int{p.Clock, p.MOSI, p.MISO, p.CS}
}

// PinsFromList is the inverse of List
func PinsFromList(l []int) (Pins, error) {
	if len(l) != 4 {
		return Pins{}, errors.Errorf("adc: need 4 pins (clock, mosi, miso, cs), got %d", len(l))
	}
	return Pins{Clock: l[0], MOSI: l[1], MISO: l[2], CS: l[3]}, nil
}

func (p Pins) validate() error {
	seen := make(map[int]bool)
	for _, n := range p.List() {
		if n < 0 || n > 53 {
			return errors.Errorf("adc: bad pin number %d", n)
		}
		if seen[n] {
			return errors.Errorf("adc: pin %d used twice", n)
		}
		seen[n] = true
	}
	return nil
}

// bus does a full duplex transfer, replacing buf with what came back
type bus interface {
	exchange(buf []byte)
	release()
}

// softSPI is SPI mode 0, MSB first
type softSPI struct {
	clk, mosi, miso, cs rpio.Pin
	half                time.Duration
}

func (s *softSPI) exchange(buf []byte) {
	s.cs.Low()
	for i, out := range buf {
		var in byte
		for bit := 7; bit >= 0; bit-- {
			if out&(1<<uint(bit)) != 0 {
				s.mosi.High()
			} else {
				s.mosi.Low()
			}
			time.Sleep(s.half)
			s.clk.High()
			in <<= 1
			if s.miso.Read() == rpio.High {
				in |= 1
			}
			time.Sleep(s.half)
			s.clk.Low()
		}
		buf[i] = in
	}
	s.cs.High()
}

func (s *softSPI) release() {
	s.cs.High()
	s.clk.Low()
	s.mosi.Input()
	s.clk.Input()
}

type MCP3008 struct {
	channel int
	vref    float64
	bus     bus
	// one transfer at a time
	mu sync.Mutex
}

// single-ended read of channel: start bit, SGL + channel, then clock out
// the 10 result bits
func command(channel int) []byte {
	return []byte{1, byte((8 + channel) << 4), 0}
}

func decode(rx []byte) int {
	return (int(rx[1])<<8 | int(rx[2])) & maxRaw
}

// Convert scales a raw reading to volts, clamped to [0, vref]
func Convert(raw int, vref float64) float64 {
	if raw < 0 {
		raw = 0
	}
	if raw > maxRaw {
		raw = maxRaw
	}
	return float64(raw) / maxRaw * vref
}

func checkArgs(channel int, vref float64) error {
	if channel < 0 || channel >= channels {
		return errors.Errorf("adc: bad channel %d", channel)
	}
	if vref <= 0 {
		return errors.Errorf("adc: bad reference voltage %v", vref)
	}
	return nil
}

// Open sets up the SPI pins for the chip. rpio.Open must already have been
// called (gpio.Open does that), and Close must run before rpio.Close.
func Open(pins Pins, channel int, vref float64, speed int) (*MCP3008, error) {
	if err := checkArgs(channel, vref); err != nil {
		return nil, err
	}
	if err := pins.validate(); err != nil {
		return nil, err
	}
	if speed <= 0 {
		speed = DefaultRate
	}

	s := &softSPI{
		clk:  rpio.Pin(pins.Clock),
		mosi: rpio.Pin(pins.MOSI),
		miso: rpio.Pin(pins.MISO),
		cs:   rpio.Pin(pins.CS),
		half: time.Second / time.Duration(2*speed),
	}
	s.cs.High()
	s.cs.Output()
	s.clk.Low()
	s.clk.Output()
	s.mosi.Low()
	s.mosi.Output()
	s.miso.Input()

	return &MCP3008{channel: channel, vref: vref, bus: s}, nil
}

func (m *MCP3008) ReadRaw() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.bus == nil {
		return 0, errors.New("adc: closed")
	}
	buf := command(m.channel)
	m.bus.exchange(buf)
	return decode(buf), nil
}

func (m *MCP3008) ReadVoltage() (float64, error) {
	raw, err := m.ReadRaw()
	if err != nil {
		return 0, err
	}
	return Convert(raw, m.vref), nil
}

// Close leaves the chip deselected and the pins as inputs
func (m *MCP3008) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.bus == nil {
		return
	}
	m.bus.release()
	m.bus = nil
}
