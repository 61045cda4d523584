package main

import (
	"log/slog"
	"net/http"

	goRelay "github.com/MrEthical07/goRelay"
	"github.com/MrEthical07/goRelay/metrics/export/prometheus"
	"github.com/MrEthical07/goRelay/transport"
)

func newServeMux(engine *goRelay.Engine, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle(transport.MessagePath, transport.Handler(engine, logger))
	mux.Handle("/metrics", prometheus.NewPrometheusExporter(engine).Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	return mux
}
