package main

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gotest.tools/assert"
)

func writeConfig(t *testing.T, dir string, name string, body string) string {
	path := filepath.Join(dir, name)
	assert.NilError(t, ioutil.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaultSettings(t *testing.T) {
	s := defaultSettings()
	assert.NilError(t, s.validate())
	assert.Equal(t, s.GetDuration(sScanPeriod), 4*time.Millisecond)
	assert.Equal(t, s.GetDuration(sDebounce), 200*time.Millisecond)
	assert.Assert(t, s.GetBool(sDigitActiveLow))
	assert.Assert(t, s.GetBool(sBlankOnDisable))
	assert.Equal(t, s.GetFloat(sVRef), 3.3)
	assert.Equal(t, s.GetButtonMap(sMainBtn), buttonMap{pin: 25, pullup: true, key: "v"})
	assert.DeepEqual(t, s.GetIntList(sADCPins), []int{11, 10, 9, 8})
	// unknown keys
	assert.Equal(t, s.GetString("nope"), "")
	assert.Equal(t, s.GetDuration("nope"), time.Duration(-1))
	assert.Assert(t, s.GetIntList("nope") == nil)
}

func TestLoadJSON(t *testing.T) {
	s, err := loadSettings(cfgFile)
	assert.NilError(t, err)
	assert.Assert(t, s.GetBool(sSimulated))
	assert.Assert(t, !s.GetBool(sKeyboardButtons))
	assert.Equal(t, s.GetFloat(sSimVoltage), 3.14)
	assert.Equal(t, s.GetDuration(sSelfTestStep), 500*time.Millisecond)
	assert.Equal(t, s.GetString(sLogFile), "./test/pivolt-test.log")
	assert.DeepEqual(t, s.GetDisplayPins(), []int{5, 6, 13, 19, 26, 12, 16, 20, 17, 27, 22, 23})
}

func TestLoadYAML(t *testing.T) {
	s, err := loadSettings("./test/config.yaml")
	assert.NilError(t, err)
	assert.Equal(t, s.GetInt(sDPPin), 25)
	assert.Assert(t, s.GetBool(sSegmentActiveLow))
	assert.Equal(t, s.GetDuration(sScanPeriod), 3*time.Millisecond)
	assert.Equal(t, s.GetDuration(sDebounce), 150*time.Millisecond)
	assert.Equal(t, s.GetFloat(sSimVoltage), 2.0)
	// key falls back to the default
	assert.Equal(t, s.GetButtonMap(sMainBtn), buttonMap{pin: 21, pullup: false, key: "v"})
	assert.DeepEqual(t, s.GetDisplayPins(), []int{2, 3, 4, 14, 15, 18, 24, 25, 17, 27, 22, 23})
}

func TestLoadMissing(t *testing.T) {
	_, err := loadSettings("./test/does-not-exist.conf")
	assert.ErrorContains(t, err, "could not load conf file")
}

func TestLoadBadValues(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  string
	}{
		{"short.conf", `{"segmentPins": [1, 2, 3]}`, "need 7 pins"},
		{"digits.conf", `{"digitPins": [1, 2]}`, "need 4 pins"},
		{"period.conf", `{"scanPeriod": "0s"}`, "scanPeriod must be positive"},
		{"debounce.conf", `{"debounce": "-1ms"}`, "debounce must not be negative"},
		{"dur.conf", `{"debounce": "soon"}`, "setting debounce"},
		{"list.conf", `{"digitPins": [1, "x", 3, 4]}`, "setting digitPins"},
		{"adc.conf", `{"adcPins": [11, 10, 9]}`, "adcPins: need 4 pins"},
		{"adcdisp.conf", `{"adcPins": [11, 10, 9, 20]}`, "pin 20 is already the display"},
		{"adcbtn.conf", `{"adcPins": [11, 10, 9, 25]}`, "pin 25 is already the mainButton"},
		{"bad.yaml", "segmentPins: [1, 2\n", "yaml"},
	}
	dir, err := ioutil.TempDir("", "pivolt")
	assert.NilError(t, err)
	defer os.RemoveAll(dir)

	for _, tc := range tests {
		_, err := loadSettings(writeConfig(t, dir, tc.name, tc.body))
		assert.ErrorContains(t, err, tc.err, tc.name)
	}
}

func TestParseIntValue(t *testing.T) {
	data := []byte(`{"a": 12, "b": "0x10", "c": "zz", "d": true}`)
	v, err := parseIntValue(data, "a")
	assert.NilError(t, err)
	assert.Equal(t, v, 12)
	v, err = parseIntValue(data, "b")
	assert.NilError(t, err)
	assert.Equal(t, v, 16)
	_, err = parseIntValue(data, "c")
	assert.Assert(t, err != nil)
	_, err = parseIntValue(data, "d")
	assert.Assert(t, err != nil)
}

func TestParseBoolValue(t *testing.T) {
	data := []byte(`{"a": true, "b": "False", "c": "maybe"}`)
	v, err := parseBoolValue(data, "a")
	assert.NilError(t, err)
	assert.Assert(t, v)
	v, err = parseBoolValue(data, "b")
	assert.NilError(t, err)
	assert.Assert(t, !v)
	_, err = parseBoolValue(data, "c")
	assert.Assert(t, err != nil)
}
