package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/riskibarqy/whereismatch/internal/platform/logging"
)

// NewDebugMux exposes pprof and /metrics.
func NewDebugMux(gatherer prometheus.Gatherer) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/metrics", MetricsHandler(gatherer))
	return mux
}

// StartDebugServer listens on addr in the background. An empty addr disables
// the server and returns nil.
func StartDebugServer(addr string, gatherer prometheus.Gatherer, logger *logging.Logger) *http.Server {
	if logger == nil {
		logger = logging.Default()
	}
	if addr == "" {
		logger.Debug("debug server disabled", "reason", "DEBUG_ADDR empty")
		return nil
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           NewDebugMux(gatherer),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("debug server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("debug server failed", "error", err)
		}
	}()

	return srv
}

func StopDebugServer(srv *http.Server, logger *logging.Logger, timeout time.Duration) error {
	if srv == nil {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	logger.Info("debug server stopped")

	return nil
}
