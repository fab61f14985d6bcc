package main

// testConfigService records the launch instead of listening
type testConfigService struct {
	handler *APIHandler
	addr    string
	stopped bool
}

func (t *testConfigService) launch(handler *APIHandler, addr string) {
	t.handler = handler
	t.addr = addr
}

func (t *testConfigService) stop() {
	t.stopped = true
}
