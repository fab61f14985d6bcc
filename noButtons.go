package main

import "sync"

// noButtons never sees a press unless one is injected
type noButtons struct {
	mu      sync.Mutex
	button  buttonMap
	pending bool
	fail    error
}

func (nb *noButtons) initButtons(settings configSettings) error {
	return nil
}

func (nb *noButtons) setupButtons(btn buttonMap, rt runtimeConfig) error {
	nb.mu.Lock()
	nb.button = btn
	nb.mu.Unlock()
	return nil
}

func (nb *noButtons) readEdge(rt runtimeConfig) (bool, error) {
	nb.mu.Lock()
	defer nb.mu.Unlock()
	if nb.fail != nil {
		return false, nb.fail
	}
	edge := nb.pending
	nb.pending = false
	return edge, nil
}

func (nb *noButtons) closeButtons() {
}

// press latches an edge, like the hardware edge detector
func (nb *noButtons) press() {
	nb.mu.Lock()
	nb.pending = true
	nb.mu.Unlock()
}

func (nb *noButtons) setFail(err error) {
	nb.mu.Lock()
	nb.fail = err
	nb.mu.Unlock()
}
