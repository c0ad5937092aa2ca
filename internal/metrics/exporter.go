package metrics

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"
)

const defaultReadHeaderTimeout = 10 * time.Second

// Exporter serves a Recorder's metrics over HTTP.
type Exporter struct {
	addr     string
	recorder *Recorder
	mu       sync.Mutex
	server   *http.Server
}

// NewExporter creates an exporter for addr (for example ":9090").
func NewExporter(addr string, recorder *Recorder) *Exporter {
	return &Exporter{addr: addr, recorder: recorder}
}

// Start serves /metrics and /health until Shutdown is called. It returns nil
// after a graceful shutdown.
func (e *Exporter) Start() error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", e.recorder.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	e.mu.Lock()
	if e.server != nil {
		e.mu.Unlock()
		return nil
	}
	e.server = &http.Server{
		Addr:              e.addr,
		Handler:           mux,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
	}
	srv := e.server
	e.mu.Unlock()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the exporter.
func (e *Exporter) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	srv := e.server
	e.server = nil
	e.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
