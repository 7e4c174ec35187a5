// File: stats/promhttp.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Optional Prometheus scrape endpoint for the hotswap counters.

package stats

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ServeMetrics exposes g on addr under /metrics and returns a shutdown
// function. Listening errors surface immediately; serve errors after
// startup are logged.
func ServeMetrics(addr string, g prometheus.Gatherer) (func(context.Context) error, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("stats: metrics server: %v", err)
		}
	}()
	return srv.Shutdown, nil
}
