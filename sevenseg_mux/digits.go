package sevenseg_mux

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Digits is the number of positions on the display
const Digits = 4

// NoDecimalPoint means no position has its decimal point lit
const NoDecimalPoint = -1

// DigitValue is either Blank or a decimal digit 0-9
type DigitValue int8

// Blank lights no segments; the position is still scanned
const Blank DigitValue = -1

// Digit converts d to a DigitValue, anything outside 0-9 is Blank
func Digit(d int) DigitValue {
	if d < 0 || d > 9 {
		return Blank
	}
	return DigitValue(d)
}

func (v DigitValue) IsBlank() bool {
	return v < 0 || v > 9
}

func (v DigitValue) String() string {
	if v.IsBlank() {
		return " "
	}
	return fmt.Sprintf("%d", int(v))
}

// Frame is one complete display content
type Frame struct {
	Digits       [Digits]DigitValue
	DecimalPoint int
}

// BlankFrame has every position blank and no decimal point
func BlankFrame() Frame {
	return Frame{
		Digits:       [Digits]DigitValue{Blank, Blank, Blank, Blank},
		DecimalPoint: NoDecimalPoint,
	}
}

// String renders the frame from position 3 down to 0, which is how the
// reference wiring lays the digits out left to right
func (f Frame) String() string {
	s := ""
	for pos := Digits - 1; pos >= 0; pos-- {
		s += f.Digits[pos].String()
		if f.DecimalPoint == pos {
			s += "."
		}
	}
	return s
}

// DigitBuffer holds the digits the scanner renders. Readers always see a
// whole frame: writers build a new frame and swap it in.
type DigitBuffer struct {
	frame atomic.Value // Frame
	// serialises writers, readers never take it
	mu sync.Mutex
}

func NewDigitBuffer(initial Frame) *DigitBuffer {
	b := &DigitBuffer{}
	b.frame.Store(initial)
	return b
}

func (b *DigitBuffer) Snapshot() Frame {
	return b.frame.Load().(Frame)
}

// Publish replaces all positions and the decimal point at once
func (b *DigitBuffer) Publish(f Frame) {
	b.mu.Lock()
	b.frame.Store(f)
	b.mu.Unlock()
}

func (b *DigitBuffer) update(fn func(f *Frame)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	f := b.frame.Load().(Frame)
	fn(&f)
	b.frame.Store(f)
}

// Set changes a single position. Setting several positions one after
// another can be observed half done by the scanner; use Publish for that.
func (b *DigitBuffer) Set(pos int, v DigitValue) {
	b.update(func(f *Frame) {
		f.Digits[pos] = v
	})
}

func (b *DigitBuffer) SetDecimalPoint(pos int) {
	if pos < 0 || pos >= Digits {
		pos = NoDecimalPoint
	}
	b.update(func(f *Frame) {
		f.DecimalPoint = pos
	})
}

func (b *DigitBuffer) Read(pos int) DigitValue {
	return b.Snapshot().Digits[pos]
}

func (b *DigitBuffer) DecimalPoint() int {
	return b.Snapshot().DecimalPoint
}
