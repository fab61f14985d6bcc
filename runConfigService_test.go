package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"gotest.tools/assert"
)

func doRequest(handler *APIHandler, method string, path string, user string, pass string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if user != "" {
		req.SetBasicAuth(user, pass)
	}
	w := httptest.NewRecorder()
	newRouter(handler).ServeHTTP(w, req)
	return w
}

func decodeStatus(t *testing.T, w *httptest.ResponseRecorder) statusResponse {
	var sr statusResponse
	assert.NilError(t, json.Unmarshal(w.Body.Bytes(), &sr))
	return sr
}

func TestConfigServiceLaunch(t *testing.T) {
	rt, clock, _ := testRuntime()
	rt.settings.settings[sHTTPAddr] = ":8088"
	testHandler := rt.configService.(*testConfigService)

	go runConfigService(rt)
	clock.BlockUntil(1)

	assert.Equal(t, testHandler.addr, ":8088")
	assert.Assert(t, testHandler.handler != nil)

	testQuit(rt)
}

func TestAPIStatus(t *testing.T) {
	rt, clock, _ := testRuntime()
	handler := NewHandler(rt)
	rt.scanner.Enable()

	w := doRequest(&handler, "GET", "/api/status", "", "")
	assert.Equal(t, w.Code, http.StatusOK)
	sr := decodeStatus(t, w)
	assert.Equal(t, sr.Response, "OK")
	assert.Equal(t, sr.Text, "0.000")
	assert.DeepEqual(t, sr.Digits, []int{0, 0, 0, 0})
	assert.Equal(t, sr.DecimalPoint, 3)
	assert.Assert(t, sr.Scanning)
	assert.Assert(t, sr.Voltage == nil)
	assert.Equal(t, len(sr.Lines), 12)

	rt.sampler.(*simSampler).set(3.14)
	sampleOnce(rt, buttonMsg{at: clock.Now(), source: "test"})

	sr = decodeStatus(t, doRequest(&handler, "GET", "/api/status", "", ""))
	assert.Equal(t, sr.Text, "3.140")
	assert.DeepEqual(t, sr.Digits, []int{0, 4, 1, 3})
	assert.Assert(t, sr.Voltage != nil)
	assert.Equal(t, *sr.Voltage, 3.14)
	assert.Equal(t, sr.Samples, 1)
}

func TestAPIStatusBlank(t *testing.T) {
	rt, _, _ := testRuntime()
	handler := NewHandler(rt)
	rt.digits.Set(0, -1)

	sr := decodeStatus(t, doRequest(&handler, "GET", "/api/status", "", ""))
	assert.DeepEqual(t, sr.Digits, []int{-1, 0, 0, 0})
	assert.Assert(t, !sr.Scanning)
}

func TestAPISample(t *testing.T) {
	rt, _, comms := testRuntime()
	handler := NewHandler(rt)

	w := doRequest(&handler, "POST", "/api/sample", "", "")
	assert.Equal(t, w.Code, http.StatusAccepted)
	msg := buttonRead(t, comms.buttons)
	assert.Equal(t, msg.source, "http")

	// second one while the first is pending
	doRequest(&handler, "POST", "/api/sample", "", "")
	w = doRequest(&handler, "POST", "/api/sample", "", "")
	assert.Equal(t, w.Code, http.StatusConflict)

	// wrong method
	w = doRequest(&handler, "GET", "/api/sample", "", "")
	assert.Equal(t, w.Code, http.StatusMethodNotAllowed)
}

func TestAPIDisplay(t *testing.T) {
	rt, _, comms := testRuntime()
	handler := NewHandler(rt)

	for state, id := range map[string]int{"on": eDisplayOn, "off": eDisplayOff, "selftest": eSelfTest} {
		w := doRequest(&handler, "POST", "/api/display/"+state, "", "")
		assert.Equal(t, w.Code, http.StatusAccepted, state)
		msg := <-comms.display
		assert.Equal(t, msg.id, id)
	}

	w := doRequest(&handler, "POST", "/api/display/sideways", "", "")
	assert.Equal(t, w.Code, http.StatusBadRequest)

	// nobody reading
	doRequest(&handler, "POST", "/api/display/on", "", "")
	w = doRequest(&handler, "POST", "/api/display/off", "", "")
	assert.Equal(t, w.Code, http.StatusServiceUnavailable)
}

func TestAPIBasicAuth(t *testing.T) {
	rt, _, _ := testRuntime()
	rt.settings.settings[sHTTPSecret] = "s3cret"
	handler := NewHandler(rt)

	w := doRequest(&handler, "GET", "/api/status", "", "")
	assert.Equal(t, w.Code, http.StatusUnauthorized)

	w = doRequest(&handler, "GET", "/api/status", "pivolt", "wrong")
	assert.Equal(t, w.Code, http.StatusUnauthorized)

	w = doRequest(&handler, "GET", "/api/status", "pivolt", "s3cret")
	assert.Equal(t, w.Code, http.StatusOK)
}

func TestAPIRoot(t *testing.T) {
	rt, _, _ := testRuntime()
	handler := NewHandler(rt)

	w := doRequest(&handler, "GET", "/", "", "")
	assert.Equal(t, w.Code, http.StatusMovedPermanently)
	assert.Equal(t, w.Header().Get("Location"), "/api/status")
}
