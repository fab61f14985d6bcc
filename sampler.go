package main

import (
	"math"
	"sync"
	"time"

	"dscheirer.com/pivolt/adc"
	"dscheirer.com/pivolt/sevenseg_mux"
)

const dSampleSleep = 10 * time.Millisecond

// the integer part has a single digit
const maxDisplayVoltage = 9.99

// the reading shown after a button press
type reading struct {
	voltage float64
	frame   sevenseg_mux.Frame
	at      time.Time
}

type readingLog struct {
	mu    sync.Mutex
	last  reading
	count int
}

func (rl *readingLog) record(r reading) {
	rl.mu.Lock()
	rl.last = r
	rl.count++
	rl.mu.Unlock()
}

func (rl *readingLog) latest() (reading, int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.last, rl.count
}

// voltageFrame lays v out as X.YZ: position 3 holds the volts with the
// decimal point, 2 the tenths, 1 the hundredths. Position 0 is wired to the
// right of the hundredths and only ever shows a placeholder 0 (or blank).
func voltageFrame(v float64, blankPlaceholder bool) sevenseg_mux.Frame {
	if v < 0 || math.IsNaN(v) {
		v = 0
	}
	if v > maxDisplayVoltage {
		v = maxDisplayVoltage
	}
	// round the whole value so 2.996 becomes 3.00, not 2.(10)0
	hundredths := int(math.Round(v * 100))
	whole := hundredths / 100
	frac := hundredths % 100

	pad := sevenseg_mux.Digit(0)
	if blankPlaceholder {
		pad = sevenseg_mux.Blank
	}
	return sevenseg_mux.Frame{
		Digits: [sevenseg_mux.Digits]sevenseg_mux.DigitValue{
			pad,
			sevenseg_mux.Digit(frac % 10),
			sevenseg_mux.Digit(frac / 10),
			sevenseg_mux.Digit(whole),
		},
		DecimalPoint: 3,
	}
}

// what the display shows before the first press
func initialFrame() sevenseg_mux.Frame {
	return voltageFrame(0, false)
}

type adcSampler struct {
	adc *adc.MCP3008
}

func (as *adcSampler) readVoltage() (float64, error) {
	return as.adc.ReadVoltage()
}

// simSampler returns whatever voltage it was last given
type simSampler struct {
	mu      sync.Mutex
	voltage float64
	fail    error
}

func newSimSampler(v float64) *simSampler {
	return &simSampler{voltage: v}
}

func (ss *simSampler) readVoltage() (float64, error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.voltage, ss.fail
}

func (ss *simSampler) set(v float64) {
	ss.mu.Lock()
	ss.voltage = v
	ss.mu.Unlock()
}

func (ss *simSampler) setFail(err error) {
	ss.mu.Lock()
	ss.fail = err
	ss.mu.Unlock()
}

func sampleOnce(rt runtimeConfig, msg buttonMsg) {
	v, err := rt.sampler.readVoltage()
	if err != nil {
		// keep showing the last reading
		rt.logger.Printf("sample failed: %s", err.Error())
		return
	}

	f := voltageFrame(v, rt.settings.GetBool(sBlankPlaceholder))
	rt.digits.Publish(f)
	rt.readings.record(reading{voltage: v, frame: f, at: rt.clock.Now()})
	rt.logger.Printf("%s: %.3fV shown as %q", msg.source, v, f.String())
}

func startSampler(rt runtimeConfig) {
	startWorker(rt, "Sampler", runSampler)
}

// runSampler is the main loop: poll the button flag, sample on a press
func runSampler(rt runtimeConfig) {
	defer func() {
		rt.logger.Println("exiting runSampler")
	}()

	comms := rt.comms
	for {
		select {
		case <-comms.quit:
			rt.logger.Println("quit from runSampler")
			return
		case msg := <-comms.buttons:
			sampleOnce(rt, msg)
		default:
			rt.clock.Sleep(dSampleSleep)
		}
	}
}
