package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server with sane defaults for this project. WriteTimeout
// must exceed the resolve deadline since one request may walk a large graph.
func New(addr string, handler http.Handler, resolveTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      resolveTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
