package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/stianeikeland/go-rpio"

	"dscheirer.com/pivolt/adc"
)

// bench check for the ADC wiring, no display involved
func main() {
	// CHANNEL is the MCP3008 input
	// VREF is the reference voltage
	// BUTTON, if set, reads on a press instead of every INTERVAL
	chanS, chanSE := os.LookupEnv("CHANNEL")
	vrefS, vrefSE := os.LookupEnv("VREF")
	pinS, pinSE := os.LookupEnv("BUTTON")
	_, pullup := os.LookupEnv("PULLUP")

	if !chanSE || !vrefSE {
		log.Fatalf("Must provide a CHANNEL and VREF in the environment: %s : %s\n", chanS, vrefS)
	}
	channel, err := strconv.ParseInt(chanS, 0, 64)
	if err != nil {
		log.Fatalf("%s is not a number", chanS)
	}
	vref, err := strconv.ParseFloat(vrefS, 64)
	if err != nil {
		log.Fatalf("%s is not a number", vrefS)
	}
	interval := time.Second
	if s, ok := os.LookupEnv("INTERVAL"); ok {
		if interval, err = time.ParseDuration(s); err != nil {
			log.Fatalf("%s is not a duration", s)
		}
	}

	err = rpio.Open()
	if err != nil {
		log.Fatal(err.Error())
	}
	defer rpio.Close()

	dev, err := adc.Open(adc.SPI0, int(channel), vref, 0)
	if err != nil {
		log.Fatal(err.Error())
	}
	defer dev.Close()

	if !pinSE {
		log.Printf("Reading channel %d every %v", channel, interval)
		for {
			report(dev, vref)
			time.Sleep(interval)
		}
	}
	watch(dev, vref, pinS, pullup)
}

func watch(dev *adc.MCP3008, vref float64, pinS string, pullup bool) {
	pin, err := strconv.ParseInt(pinS, 0, 64)
	if err != nil {
		log.Fatalf("%s is not a number", pinS)
	}
	rpioPin := rpio.Pin(pin)
	rpioPin.Input()
	var pressState rpio.State
	if pullup {
		rpioPin.PullUp() // GND => button press
		pressState = rpio.Low
	} else {
		rpioPin.PullDown() // +V -> button press
		pressState = rpio.High
	}

	log.Printf("Watching %v for %v", pin, pullup)
	for {
		if rpioPin.Read() == pressState {
			report(dev, vref)
			// wait for the release
			for rpioPin.Read() == pressState {
				time.Sleep(30 * time.Millisecond)
			}
		}
		time.Sleep(30 * time.Millisecond)
	}
}

func report(dev *adc.MCP3008, vref float64) {
	raw, err := dev.ReadRaw()
	if err != nil {
		log.Println(err.Error())
		return
	}
	log.Printf("raw %4d  %.3fV", raw, adc.Convert(raw, vref))
}
