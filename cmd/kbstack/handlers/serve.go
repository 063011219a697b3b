package handlers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/imamik/kbstack/internal/metrics"
	"github.com/imamik/kbstack/internal/provisioning"
	"github.com/imamik/kbstack/internal/query"
)

// ServeOptions configure the query server.
type ServeOptions struct {
	Addr string
	QueryOptions
}

const shutdownTimeout = 10 * time.Second

var (
	newServeLogger = provisioning.NewConsoleLogger

	listen = func(addr string) (net.Listener, error) {
		return net.Listen("tcp", addr)
	}
)

// Serve answers queries over HTTP until ctx is cancelled.
//
// POST /query takes {"query": "..."} and returns {"text", "citations"}.
// GET /metrics exposes Prometheus metrics.
func Serve(ctx context.Context, configPath string, opts ServeOptions) error {
	t, err := resolveTarget(ctx, configPath, opts.QueryOptions)
	if err != nil {
		return err
	}

	log := newServeLogger().WithName("serve")
	client := query.NewClient(newRetriever(t.awsCfg), t.knowledgeBaseID, t.modelARN)
	handler := query.NewHandler(client, log.WithName("query"))

	ln, err := listen(opts.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", opts.Addr, err)
	}

	srv := &http.Server{
		Handler:           newServeMux(handler, metrics.Registry),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	log.Info("serving queries", "addr", ln.Addr().String(), "knowledgeBase", t.knowledgeBaseID, "model", t.modelARN)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	log.Info("server stopped")
	return nil
}

func newServeMux(queries http.Handler, gatherer prometheus.Gatherer) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/query", queries)
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}
