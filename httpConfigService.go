package main

import (
	"log"
	"net/http"
	"time"

	"golang.org/x/net/context"
)

type httpConfigService struct {
	srv     *http.Server
	handler *APIHandler
	done    chan struct{}
}

func (h *httpConfigService) launch(handler *APIHandler, addr string) {
	h.handler = handler
	h.srv = &http.Server{Addr: addr, Handler: newRouter(handler)}
	h.done = make(chan struct{})

	// launch the server
	go func() {
		defer close(h.done)
		log.Printf("starting config service http server on %s", addr)
		err := h.srv.ListenAndServe()
		if err != http.ErrServerClosed {
			log.Print(err)
		}
		log.Print("Exiting config service")
	}()
}

func (h *httpConfigService) stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	h.srv.Shutdown(ctx)
	<-h.done
}
