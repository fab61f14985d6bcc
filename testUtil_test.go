package main

import (
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"gopkg.in/natefinch/lumberjack.v2"
	"gotest.tools/assert"

	"dscheirer.com/pivolt/gpio"
	"dscheirer.com/pivolt/sevenseg_mux"
)

var testSettings configSettings
var testlog *lumberjack.Logger
var cfgFile string = "./test/config.conf"

func piTestMain(m *testing.M) {
	testSettings = initSettings(cfgFile)
	testlog, _ = setupLogging(testSettings, false)

	// run the tests
	code := m.Run()
	testlog.Close()

	os.Exit(code)
}

func logCaller(pc uintptr, file string, line int, ok bool) {
	if !ok {
		file = "?"
		line = 0
	}

	fn := runtime.FuncForPC(pc)
	var fnName string
	if fn == nil {
		fnName = "?()"
	} else {
		dotName := filepath.Ext(fn.Name())
		fnName = strings.TrimLeft(dotName, ".") + "()"
	}

	log.Printf("Starting %s (%s:%d)", fnName, filepath.Base(file), line)
}

// testTrigger never fires, tests call Tick themselves
type testTrigger struct {
	scheduled bool
}

func (tt *testTrigger) Schedule(period time.Duration, callback func()) {
	tt.scheduled = true
}

func (tt *testTrigger) Cancel() {
	tt.scheduled = false
}

// a copy of the settings so tests can change them freely
func copySettings(s configSettings) configSettings {
	c := make(map[string]interface{})
	for k, v := range s.settings {
		c[k] = v
	}
	return configSettings{settings: c}
}

func initTestRuntime(settings configSettings) runtimeConfig {
	rt := initRuntime(copySettings(settings), clockwork.NewFakeClock())
	rt.logger = &ThreadLogger{name: "test"}

	bank, err := gpio.Open(rt.settings.GetDisplayPins(), scanConfig(rt.settings).OffLevels(), true)
	if err != nil {
		log.Fatal(err.Error())
	}
	rt.lines = bank
	rt.scanner = sevenseg_mux.NewScanner(rt.digits, bank, &testTrigger{}, scanConfig(rt.settings))
	rt.buttons = &noButtons{}
	rt.sampler = newSimSampler(rt.settings.GetFloat(sSimVoltage))
	rt.configService = &testConfigService{}
	return rt
}

func testRuntime() (runtimeConfig, clockwork.FakeClock, commChannels) {
	// make rt for test, log the start of the test
	logCaller(runtime.Caller(1))
	rt := initTestRuntime(testSettings)
	return rt, rt.clock.(clockwork.FakeClock), rt.comms
}

// step the clock by d in sleep sized steps, letting the worker run
// between steps
func testBlockDuration(clock clockwork.FakeClock, sleep time.Duration, d time.Duration) {
	for d > 0 {
		clock.BlockUntil(1)
		step := sleep
		if d < step {
			step = d
		}
		clock.Advance(step)
		d -= step
	}
	clock.BlockUntil(1)
}

func testQuit(rt runtimeConfig) {
	rt.comms.shutdown()
	// wake anything sleeping so it sees the quit
	rt.clock.(clockwork.FakeClock).Advance(time.Minute)
}

func buttonRead(t *testing.T, c chan buttonMsg) buttonMsg {
	select {
	case e := <-c:
		return e
	default:
		assert.Assert(t, false, "Nothing to read from button channel")
	}
	return buttonMsg{}
}

func buttonNoRead(t *testing.T, c chan buttonMsg) {
	select {
	case e := <-c:
		assert.Assert(t, false, "Got an unexpected value on button channel: %v", e)
	default:
	}
}
