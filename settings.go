package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"log"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/buger/jsonparser"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// setting keys
const (
	sSegmentPins      = "segmentPins"
	sDPPin            = "dpPin"
	sDigitPins        = "digitPins"
	sDigitActiveLow   = "digitActiveLow"
	sSegmentActiveLow = "segmentActiveLow"
	sScanPeriod       = "scanPeriod"
	sBlankOnDisable   = "blankOnDisable"
	sMainBtn          = "mainButton"
	sDebounce         = "debounce"
	sADCChannel       = "adcChannel"
	sADCSpeed         = "adcSpeed"
	sADCPins          = "adcPins"
	sVRef             = "vref"
	sSimulated        = "simulated"
	sSimVoltage       = "simVoltage"
	sKeyboardButtons  = "keyboardButtons"
	sBlankPlaceholder = "blankPlaceholder"
	sSelfTest         = "selfTest"
	sSelfTestStep     = "selfTestStep"
	sHTTPAddr         = "httpAddr"
	sHTTPUser         = "httpUser"
	sHTTPSecret       = "httpSecret"
	sLogFile          = "logFile"
	sLogMaxSize       = "logMaxSizeMB"
	sLogMaxBackups    = "logMaxBackups"
	sLogMaxAge        = "logMaxAgeDays"
	sDebug            = "debugDump"
)

// a button and how it is wired; key is the keyboard stand-in when simulated
type buttonMap struct {
	pin    int
	pullup bool
	key    string
}

// keep settings generic, type-convert on the fly
type configSettings struct {
	settings map[string]interface{}
}

func defaultSettings() configSettings {
	s := make(map[string]interface{})

	// setting the type here makes the conversion "automatic" later
	s[sSegmentPins] = []int{5, 6, 13, 19, 26, 12, 16} // A..G
	s[sDPPin] = 20
	s[sDigitPins] = []int{17, 27, 22, 23}
	s[sDigitActiveLow] = true
	s[sSegmentActiveLow] = false
	s[sScanPeriod] = 4 * time.Millisecond
	s[sBlankOnDisable] = true
	s[sMainBtn] = buttonMap{pin: 25, pullup: true, key: "v"}
	s[sDebounce] = 200 * time.Millisecond
	s[sADCChannel] = 0
	s[sADCSpeed] = 1000000
	s[sADCPins] = []int{11, 10, 9, 8} // clock, mosi, miso, cs
	s[sVRef] = 3.3
	s[sSimVoltage] = 3.14
	s[sKeyboardButtons] = true
	s[sBlankPlaceholder] = false
	s[sSelfTest] = false
	s[sSelfTestStep] = 500 * time.Millisecond
	s[sHTTPAddr] = ""
	s[sHTTPUser] = "pivolt"
	s[sHTTPSecret] = ""
	s[sLogFile] = "/var/log/pivolt.log"
	s[sLogMaxSize] = 10
	s[sLogMaxBackups] = 3
	s[sLogMaxAge] = 28
	s[sDebug] = false

	on := true
	if runtime.GOARCH == "arm" {
		on = false
	}
	s[sSimulated] = on

	return configSettings{settings: s}
}

func parseIntValue(data []byte, k string) (int, error) {
	v, err := jsonparser.GetInt(data, k)
	if err == nil {
		return int(v), nil
	}
	// try strconv, so "0x19" works
	str, err2 := jsonparser.GetString(data, k)
	if err2 != nil {
		return 0, err
	}
	v, err = strconv.ParseInt(str, 0, 64)
	return int(v), err
}

func parseBoolValue(data []byte, k string) (bool, error) {
	b, err := jsonparser.GetBoolean(data, k)
	if err == nil {
		return b, nil
	}
	// try true and false
	str, _ := jsonparser.GetString(data, k)
	switch strings.ToLower(str) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, err
}

func parseIntList(data []byte, k string) ([]int, error) {
	ret := []int{}
	var perr error
	_, err := jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, offset int, err error) {
		if perr != nil {
			return
		}
		if dataType != jsonparser.Number {
			perr = fmt.Errorf("%s: %q is not a number", k, value)
			return
		}
		v, err := jsonparser.ParseInt(value)
		if err != nil {
			perr = err
			return
		}
		ret = append(ret, int(v))
	}, k)
	if err != nil {
		return nil, err
	}
	return ret, perr
}

func parseButtonMap(data []byte, k string, initVal buttonMap) (buttonMap, error) {
	obj, dataType, _, err := jsonparser.Get(data, k)
	if err != nil {
		return initVal, err
	}
	if dataType != jsonparser.Object {
		return initVal, fmt.Errorf("%s: expected an object", k)
	}
	bm := initVal
	if v, err := parseIntValue(obj, "pin"); err == nil {
		bm.pin = v
	}
	if v, err := parseBoolValue(obj, "pullup"); err == nil {
		bm.pullup = v
	}
	if v, err := jsonparser.GetString(obj, "key"); err == nil {
		bm.key = v
	}
	return bm, nil
}

func (s *configSettings) settingsFromJSON(data []byte) error {
	tmp := defaultSettings()
	for k, initVal := range tmp.settings {
		// ignore missing fields
		_, dataType, _, err := jsonparser.Get(data, k)
		if err != nil || dataType == jsonparser.NotExist {
			continue
		}

		switch initVal.(type) {
		case int:
			var v int
			v, err = parseIntValue(data, k)
			if err == nil {
				s.settings[k] = v
			}
		case float64:
			var v float64
			v, err = jsonparser.GetFloat(data, k)
			if err == nil {
				s.settings[k] = v
			}
		case bool:
			var v bool
			v, err = parseBoolValue(data, k)
			if err == nil {
				s.settings[k] = v
			}
		case time.Duration:
			var dur string
			dur, err = jsonparser.GetString(data, k)
			if err == nil {
				var dur2 time.Duration
				dur2, err = time.ParseDuration(dur)
				if err == nil {
					s.settings[k] = dur2
				}
			}
		case string:
			var v string
			v, err = jsonparser.GetString(data, k)
			if err == nil {
				s.settings[k] = v
			}
		case []int:
			var v []int
			v, err = parseIntList(data, k)
			if err == nil {
				s.settings[k] = v
			}
		case buttonMap:
			var v buttonMap
			v, err = parseButtonMap(data, k, initVal.(buttonMap))
			if err == nil {
				s.settings[k] = v
			}
		default:
			err = fmt.Errorf("bad type: %T", initVal)
		}
		if err != nil {
			return errors.Wrapf(err, "setting %s", k)
		}
	}
	return nil
}

// yaml goes through the json path so both formats convert the same way
func (s *configSettings) settingsFromYAML(data []byte) error {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "yaml")
	}
	js, err := json.Marshal(raw)
	if err != nil {
		return errors.Wrap(err, "yaml")
	}
	return s.settingsFromJSON(js)
}

func loadSettings(configFile string) (configSettings, error) {
	s := defaultSettings()

	data, err := ioutil.ReadFile(configFile)
	if err != nil {
		return s, errors.Wrapf(err, "could not load conf file '%s'", configFile)
	}

	switch strings.ToLower(filepath.Ext(configFile)) {
	case ".yaml", ".yml":
		err = s.settingsFromYAML(data)
	default:
		err = s.settingsFromJSON(data)
	}
	if err != nil {
		return s, err
	}
	return s, s.validate()
}

func initSettings(configFile string) configSettings {
	log.Println("initSettings")

	s, err := loadSettings(configFile)
	if err != nil {
		log.Fatal(err.Error())
	}
	log.Printf("Reading configuration from '%s'", configFile)

	return s
}

func (s *configSettings) validate() error {
	if n := len(s.GetIntList(sSegmentPins)); n != 7 {
		return fmt.Errorf("%s: need 7 pins, got %d", sSegmentPins, n)
	}
	if n := len(s.GetIntList(sDigitPins)); n != 4 {
		return fmt.Errorf("%s: need 4 pins, got %d", sDigitPins, n)
	}
	if n := len(s.GetIntList(sADCPins)); n != 4 {
		return fmt.Errorf("%s: need 4 pins, got %d", sADCPins, n)
	}
	used := make(map[int]string)
	for _, p := range s.GetDisplayPins() {
		used[p] = "display"
	}
	used[s.GetButtonMap(sMainBtn).pin] = sMainBtn
	for _, p := range s.GetIntList(sADCPins) {
		if what, ok := used[p]; ok {
			return fmt.Errorf("%s: pin %d is already the %s", sADCPins, p, what)
		}
	}
	if s.GetDuration(sScanPeriod) <= 0 {
		return fmt.Errorf("%s must be positive", sScanPeriod)
	}
	if s.GetDuration(sDebounce) < 0 {
		return fmt.Errorf("%s must not be negative", sDebounce)
	}
	return nil
}

func (s *configSettings) GetString(key string) string {
	switch v := s.settings[key].(type) {
	case string:
		return v
	default:
		return ""
	}
}

func (s *configSettings) GetBool(key string) bool {
	switch v := s.settings[key].(type) {
	case bool:
		return v
	default:
		return false
	}
}

func (s *configSettings) GetDuration(key string) time.Duration {
	switch v := s.settings[key].(type) {
	case time.Duration:
		return v
	default:
		return -1
	}
}

func (s *configSettings) GetInt(key string) int {
	switch v := s.settings[key].(type) {
	case int:
		return v
	default:
		return 0
	}
}

func (s *configSettings) GetFloat(key string) float64 {
	switch v := s.settings[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

func (s *configSettings) GetIntList(key string) []int {
	switch v := s.settings[key].(type) {
	case []int:
		return v
	default:
		return nil
	}
}

func (s *configSettings) GetButtonMap(key string) buttonMap {
	switch v := s.settings[key].(type) {
	case buttonMap:
		return v
	default:
		return buttonMap{}
	}
}

// GetDisplayPins lists the display pins in scanner line order: segments
// A..G, the decimal point, then the digit enables
func (s *configSettings) GetDisplayPins() []int {
	pins := append([]int{}, s.GetIntList(sSegmentPins)...)
	pins = append(pins, s.GetInt(sDPPin))
	return append(pins, s.GetIntList(sDigitPins)...)
}

func (s *configSettings) Dump() {
	keys := make([]string, 0, len(s.settings))
	for k := range s.settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := s.settings[k]
		if k == sHTTPSecret && v != "" {
			v = "*****"
		}
		log.Printf("%s : %T: %v\n", k, v, v)
	}
}
