package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"dscheirer.com/pivolt/adc"
	"dscheirer.com/pivolt/gpio"
	"dscheirer.com/pivolt/sevenseg_mux"
)

// pivolt -config={config file}

func main() {
	// define our flags first
	configFile := flag.String("config", "/etc/default/pivolt/pivolt.conf", "config file path")
	flag.Parse()

	// read config information
	settings := initSettings(*configFile)

	logFile, err := setupLogging(settings, true)
	if err != nil {
		log.Fatalf("logging: %s", err.Error())
	}
	defer logFile.Close()

	// dump them (debugging)
	log.Println(">>> Settings <<<")
	settings.Dump()
	log.Println(">>> Settings <<<")

	rt := initRuntime(settings, clockwork.NewRealClock())
	simulated := settings.GetBool(sSimulated)

	cfg := scanConfig(settings)
	bank, err := gpio.Open(settings.GetDisplayPins(), cfg.OffLevels(), simulated)
	if err != nil {
		log.Fatalf("display pins: %s", err.Error())
	}
	bank.DebugDump(settings.GetBool(sDebug))
	rt.lines = bank
	rt.scanner = sevenseg_mux.NewScanner(rt.digits, bank, sevenseg_mux.NewClockTrigger(rt.clock), cfg)

	var mcp *adc.MCP3008
	if simulated {
		rt.sampler = newSimSampler(settings.GetFloat(sSimVoltage))
		if settings.GetBool(sKeyboardButtons) {
			rt.buttons = &keyButtons{}
		} else {
			rt.buttons = &noButtons{}
		}
	} else {
		pins, err := adc.PinsFromList(settings.GetIntList(sADCPins))
		if err != nil {
			log.Fatalf("adc: %s", err.Error())
		}
		mcp, err = adc.Open(pins, settings.GetInt(sADCChannel), settings.GetFloat(sVRef), settings.GetInt(sADCSpeed))
		if err != nil {
			log.Fatalf("adc: %s", err.Error())
		}
		rt.sampler = &adcSampler{adc: mcp}
		rt.buttons = &rpioButtons{}
	}
	rt.configService = &httpConfigService{}

	startDisplay(rt)
	startSampler(rt)
	startWatchButtons(rt)
	if settings.GetString(sHTTPAddr) != "" {
		startConfigService(rt)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	select {
	case s := <-sig:
		log.Printf("got %v, shutting down", s)
		rt.comms.shutdown()
	case <-rt.comms.quit:
	}

	wg.Wait()
	// the adc pins go first, bank.Close unmaps the gpio registers
	if mcp != nil {
		mcp.Close()
	}
	if err := bank.Close(); err != nil {
		log.Println(err.Error())
	}
	log.Println("exiting pivolt")
}
