// utility functions
package main

import (
	"sync"

	"github.com/jonboulle/clockwork"

	"dscheirer.com/pivolt/sevenseg_mux"
)

var wg sync.WaitGroup

type commChannels struct {
	quit     chan struct{}
	quitOnce *sync.Once
	buttons  chan buttonMsg
	display  chan displayMsg
}

type runtimeConfig struct {
	comms         commChannels
	clock         clockwork.Clock
	settings      configSettings
	logger        flogger
	buttons       buttons
	sampler       voltageSampler
	digits        *sevenseg_mux.DigitBuffer
	scanner       *sevenseg_mux.Scanner
	lines         sevenseg_mux.Lines
	readings      *readingLog
	configService configService
}

func initCommChannels() commChannels {
	return commChannels{
		quit:     make(chan struct{}, 1),
		quitOnce: &sync.Once{},
		// one slot: a press waiting to be handled absorbs later ones
		buttons: make(chan buttonMsg, 1),
		display: make(chan displayMsg, 1),
	}
}

// shutdown tells every worker to exit, safe to call more than once
func (c commChannels) shutdown() {
	c.quitOnce.Do(func() {
		close(c.quit)
	})
}

func initRuntime(settings configSettings, clock clockwork.Clock) runtimeConfig {
	return runtimeConfig{
		comms:    initCommChannels(),
		clock:    clock,
		settings: settings,
		logger:   &ThreadLogger{name: "main"},
		digits:   sevenseg_mux.NewDigitBuffer(initialFrame()),
		readings: &readingLog{},
	}
}

func scanConfig(settings configSettings) sevenseg_mux.Config {
	return sevenseg_mux.Config{
		Period:           settings.GetDuration(sScanPeriod),
		DigitActiveLow:   settings.GetBool(sDigitActiveLow),
		SegmentActiveLow: settings.GetBool(sSegmentActiveLow),
		BlankOnDisable:   settings.GetBool(sBlankOnDisable),
	}
}

// run a worker under the wait group
func startWorker(rt runtimeConfig, name string, run func(rt runtimeConfig)) {
	rt.logger = &ThreadLogger{name: name}
	wg.Add(1)
	go func() {
		defer wg.Done()
		run(rt)
	}()
}
