package main

import (
	"time"

	"dscheirer.com/pivolt/sevenseg_mux"
)

const dDisplaySleep = 10 * time.Millisecond

const (
	eDisplayOn = iota
	eDisplayOff
	eSelfTest
)

type displayMsg struct {
	id int
}

func displayOnMsg() displayMsg  { return displayMsg{id: eDisplayOn} }
func displayOffMsg() displayMsg { return displayMsg{id: eDisplayOff} }
func selfTestMsg() displayMsg   { return displayMsg{id: eSelfTest} }

func startDisplay(rt runtimeConfig) {
	startWorker(rt, "Display", runDisplay)
}

// runDisplay owns the scanner: on at start, off on quit
func runDisplay(rt runtimeConfig) {
	defer func() {
		rt.scanner.Disable()
		rt.logger.Println("exiting runDisplay")
	}()

	comms := rt.comms
	rt.scanner.Enable()
	rt.logger.Printf("scanning, showing %q", rt.digits.Snapshot().String())

	if rt.settings.GetBool(sSelfTest) {
		runSelfTest(rt)
	}

	for {
		select {
		case <-comms.quit:
			rt.logger.Println("quit from runDisplay")
			return
		case msg := <-comms.display:
			switch msg.id {
			case eDisplayOn:
				rt.logger.Println("display on")
				rt.scanner.Enable()
			case eDisplayOff:
				rt.logger.Println("display off")
				rt.scanner.Disable()
			case eSelfTest:
				runSelfTest(rt)
			default:
				rt.logger.Printf("unhandled display message %d", msg.id)
			}
		default:
			rt.clock.Sleep(dDisplaySleep)
		}
	}
}

// runSelfTest counts 0-9 on position 3 with the rest blank, then puts
// back what was showing (or a reading taken meanwhile)
func runSelfTest(rt runtimeConfig) {
	rt.logger.Println("self test")
	prev := rt.digits.Snapshot()
	_, count := rt.readings.latest()

	restore := func() {
		if last, n := rt.readings.latest(); n != count {
			prev = last.frame
		}
		rt.digits.Publish(prev)
	}

	wasOn := rt.scanner.Enabled()
	rt.scanner.Enable()

	step := rt.settings.GetDuration(sSelfTestStep)
	for num := 0; num < 10; num++ {
		select {
		case <-rt.comms.quit:
			rt.logger.Println("self test cut short")
			restore()
			return
		default:
		}
		rt.digits.Set(0, sevenseg_mux.Blank)
		rt.digits.Set(1, sevenseg_mux.Blank)
		rt.digits.Set(2, sevenseg_mux.Blank)
		rt.digits.Set(3, sevenseg_mux.Digit(num))
		rt.clock.Sleep(step)
	}

	restore()
	if !wasOn {
		rt.scanner.Disable()
	}
	rt.logger.Println("self test done")
}
