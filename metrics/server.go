package metrics

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gait-analysis/utils"
)

// StartMetricsServer exposes /metrics and /healthz on its own port, apart
// from the API server. It blocks, so run it in a goroutine.
func StartMetricsServer(addr string) error {
	logger := utils.GetLogger()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("metrics server listening", slog.String("addr", addr))
	return server.ListenAndServe()
}
