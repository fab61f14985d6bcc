package main

type buttons interface {
	initButtons(settings configSettings) error
	setupButtons(btn buttonMap, rt runtimeConfig) error
	// readEdge reports whether a press edge was seen since the last call
	readEdge(rt runtimeConfig) (bool, error)
	closeButtons()
}

type voltageSampler interface {
	readVoltage() (float64, error)
}

type configService interface {
	launch(handler *APIHandler, addr string)
	stop()
}
