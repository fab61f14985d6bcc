package sevenseg_mux

import (
	"sync"
	"sync/atomic"
	"time"
)

// Lines drives the display's output lines (see the Seg*/Digit* ids)
type Lines interface {
	SetLevel(line int, level uint8)
}

// Trigger calls callback every period until cancelled, never
// re-entering it. Cancel must not return while a callback is running.
type Trigger interface {
	Schedule(period time.Duration, callback func())
	Cancel()
}

// Config describes the wiring of the display
type Config struct {
	Period           time.Duration // time each digit is lit
	DigitActiveLow   bool          // 0 turns a digit on (common anode)
	SegmentActiveLow bool          // 0 lights a segment
	BlankOnDisable   bool          // drive everything off when scanning stops
}

// DefaultConfig matches the reference board: active-low digits,
// active-high segments, 16ms full cycle
func DefaultConfig() Config {
	return Config{
		Period:         4 * time.Millisecond,
		DigitActiveLow: true,
		BlankOnDisable: true,
	}
}

// no digit rendered since the scanner was (re-)enabled
const noDigit = -1

// Scanner lights one digit of the multiplexed display per tick
type Scanner struct {
	buf     *DigitBuffer
	lines   Lines
	trigger Trigger
	cfg     Config

	current int32

	// guards enabled, Enable and Disable
	mu      sync.Mutex
	enabled bool
}

func NewScanner(buf *DigitBuffer, lines Lines, trigger Trigger, cfg Config) *Scanner {
	return &Scanner{
		buf:     buf,
		lines:   lines,
		trigger: trigger,
		cfg:     cfg,
		current: noDigit,
	}
}

// Enable starts scanning; the first tick renders position 0
func (s *Scanner) Enable() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enabled {
		return
	}
	atomic.StoreInt32(&s.current, noDigit)
	s.enabled = true
	s.trigger.Schedule(s.cfg.Period, s.Tick)
}

// Disable stops scanning. No tick runs after it returns.
func (s *Scanner) Disable() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled {
		return
	}
	s.trigger.Cancel()
	s.enabled = false
	atomic.StoreInt32(&s.current, noDigit)
	if s.cfg.BlankOnDisable {
		s.Blank()
	}
}

func (s *Scanner) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// Current is the position rendered by the last tick, -1 before the first
func (s *Scanner) Current() int {
	return int(atomic.LoadInt32(&s.current))
}

// Tick advances to the next position and renders it
func (s *Scanner) Tick() {
	pos := (int(atomic.LoadInt32(&s.current)) + 1) % Digits
	atomic.StoreInt32(&s.current, int32(pos))

	f := s.buf.Snapshot()
	s.render(pos, f.Digits[pos], f.DecimalPoint == pos)
}

func (c Config) digitLevel(on bool) uint8 {
	if on != c.DigitActiveLow {
		return High
	}
	return Low
}

func (c Config) segmentLevel(on bool) uint8 {
	if on != c.SegmentActiveLow {
		return High
	}
	return Low
}

// OffLevels is the blanked level of every line, indexed by line id. Whoever
// owns the pins should hold them there whenever the scanner is not running.
func (c Config) OffLevels() []uint8 {
	levels := make([]uint8, LineCount)
	for line := range levels {
		if line >= Digit0 {
			levels[line] = c.digitLevel(false)
		} else {
			levels[line] = c.segmentLevel(false)
		}
	}
	return levels
}

func (s *Scanner) digitLevel(on bool) uint8 {
	return s.cfg.digitLevel(on)
}

func (s *Scanner) segmentLevel(on bool) uint8 {
	return s.cfg.segmentLevel(on)
}

func (s *Scanner) allDigitsOff() {
	off := s.digitLevel(false)
	for pos := 0; pos < Digits; pos++ {
		s.lines.SetLevel(DigitLine(pos), off)
	}
}

// render must switch every digit off before touching the segment bus and
// switch the target digit on last, otherwise segments ghost onto the
// neighbouring digit
func (s *Scanner) render(pos int, v DigitValue, dp bool) {
	s.allDigitsOff()

	mask := SegmentMask(v)
	for i := 0; i < segmentCount; i++ {
		s.lines.SetLevel(SegA+i, s.segmentLevel((mask>>uint(i))&1 == 1))
	}
	s.lines.SetLevel(SegDP, s.segmentLevel(dp))

	s.lines.SetLevel(DigitLine(pos), s.digitLevel(true))
}

// Blank drives every line to its off level
func (s *Scanner) Blank() {
	s.allDigitsOff()
	for i := 0; i < segmentCount; i++ {
		s.lines.SetLevel(SegA+i, s.segmentLevel(false))
	}
	s.lines.SetLevel(SegDP, s.segmentLevel(false))
}
