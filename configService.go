package main

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"dscheirer.com/pivolt/sevenseg_mux"
)

const dConfigSleep = 100 * time.Millisecond

type statusResponse struct {
	Response     string     `json:"response"`
	Error        string     `json:"error,omitempty"`
	Voltage      *float64   `json:"voltage,omitempty"`
	SampledAt    *time.Time `json:"sampledAt,omitempty"`
	Samples      int        `json:"samples"`
	Text         string     `json:"text"`
	Digits       []int      `json:"digits"` // -1 is blank
	DecimalPoint int        `json:"decimalPoint"`
	Scanning     bool       `json:"scanning"`
	Lines        []int      `json:"lines,omitempty"`
}

// APIHandler - settings for the thing that handles HTTP requests
type APIHandler struct {
	rt     runtimeConfig
	user   string
	secret string
	realm  string
}

// NewHandler - create a new API handler
func NewHandler(rt runtimeConfig) APIHandler {
	return APIHandler{
		rt:     rt,
		user:   rt.settings.GetString(sHTTPUser),
		secret: rt.settings.GetString(sHTTPSecret),
		realm:  "pivolt",
	}
}

// BasicAuth - provide a middleware to authenticate users, open when no
// secret is configured
func (m *APIHandler) BasicAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.secret == "" {
			next.ServeHTTP(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok || subtle.ConstantTimeCompare([]byte(user), []byte(m.user)) != 1 || subtle.ConstantTimeCompare([]byte(pass), []byte(m.secret)) != 1 {
			w.Header().Set("WWW-Authenticate", `Basic realm="`+m.realm+`"`)
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("Unauthorised.\n"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

type levelReader interface {
	Levels() []uint8
}

func (m *APIHandler) getStatus() statusResponse {
	f := m.rt.digits.Snapshot()
	cr := statusResponse{
		Response:     "OK",
		Text:         f.String(),
		DecimalPoint: f.DecimalPoint,
		Scanning:     m.rt.scanner.Enabled(),
	}
	for _, d := range f.Digits {
		v := int(d)
		if d.IsBlank() {
			v = int(sevenseg_mux.Blank)
		}
		cr.Digits = append(cr.Digits, v)
	}

	if last, n := m.rt.readings.latest(); n > 0 {
		v := last.voltage
		at := last.at
		cr.Voltage = &v
		cr.SampledAt = &at
		cr.Samples = n
	}

	if lr, ok := m.rt.lines.(levelReader); ok {
		for _, l := range lr.Levels() {
			cr.Lines = append(cr.Lines, int(l))
		}
	}
	return cr
}

func writeAnswer(w http.ResponseWriter, code int, cr statusResponse) {
	output, _ := json.Marshal(cr)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(output)
}

func (m *APIHandler) apiStatus(w http.ResponseWriter, r *http.Request) {
	writeAnswer(w, http.StatusOK, m.getStatus())
}

// same path as a real press, minus the debounce
func (m *APIHandler) apiSample(w http.ResponseWriter, r *http.Request) {
	if !raiseButtonFlag(m.rt.comms, buttonMsg{at: m.rt.clock.Now(), source: "http"}) {
		writeAnswer(w, http.StatusConflict, statusResponse{Response: "BAD", Error: "sample already pending"})
		return
	}
	writeAnswer(w, http.StatusAccepted, statusResponse{Response: "OK"})
}

func (m *APIHandler) apiDisplay(w http.ResponseWriter, r *http.Request) {
	var msg displayMsg
	switch mux.Vars(r)["state"] {
	case "on":
		msg = displayOnMsg()
	case "off":
		msg = displayOffMsg()
	case "selftest":
		msg = selfTestMsg()
	default:
		writeAnswer(w, http.StatusBadRequest, statusResponse{Response: "BAD", Error: "unknown display state"})
		return
	}

	select {
	case m.rt.comms.display <- msg:
		writeAnswer(w, http.StatusAccepted, statusResponse{Response: "OK"})
	default:
		writeAnswer(w, http.StatusServiceUnavailable, statusResponse{Response: "BAD", Error: "display busy"})
	}
}

func (m *APIHandler) rootHandler(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/api/status", http.StatusMovedPermanently)
}

func newRouter(handler *APIHandler) *mux.Router {
	r := mux.NewRouter()
	// auth middleware
	r.Use(handler.BasicAuth)
	// api server
	r.HandleFunc("/api/status", handler.apiStatus).Methods("GET")
	r.HandleFunc("/api/sample", handler.apiSample).Methods("POST")
	r.HandleFunc("/api/display/{state}", handler.apiDisplay).Methods("POST")
	// root handler
	r.HandleFunc("/", handler.rootHandler)
	return r
}

func startConfigService(rt runtimeConfig) {
	startWorker(rt, "ConfigService", runConfigService)
}

func runConfigService(rt runtimeConfig) {
	defer func() {
		rt.logger.Println("exiting runConfigService")
	}()

	handler := NewHandler(rt)
	rt.configService.launch(&handler, rt.settings.GetString(sHTTPAddr))

	for {
		select {
		case <-rt.comms.quit:
			rt.logger.Println("quit from config service")
			// stop the server
			rt.configService.stop()
			return
		default:
			rt.clock.Sleep(dConfigSleep)
		}
	}
}
