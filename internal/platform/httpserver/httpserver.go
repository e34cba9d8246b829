package httpserver

import (
	"net/http"
	"time"
)

// New builds the HTTP server for the precato API. The payloads are small JSON
// documents, so short read and write deadlines are enough; slow clients get
// cut off rather than pinning a handler goroutine.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Slightly above the 30s handler timeout so the timeout response
		// itself can still be written.
		WriteTimeout: 35 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
