package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cognicore/fuzzy/pkg/fuzzy"
	"github.com/cognicore/fuzzy/pkg/fuzzy/internalerr"
	"github.com/cognicore/fuzzy/pkg/fuzzy/metrics"
	"github.com/cognicore/fuzzy/pkg/fuzzy/operator"
)

const shutdownTimeout = 5 * time.Second

// estimateRequest is the body of POST /estimate. An empty layer estimates
// every layer.
type estimateRequest struct {
	Layer  string             `json:"layer"`
	Inputs map[string]float64 `json:"inputs"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (a *app) serveCmd() *cobra.Command {
	var (
		systemPath string
		dbPath     string
		addr       string
		samplings  int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve estimates over HTTP with Prometheus metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			m, err := metrics.New(reg)
			if err != nil {
				return err
			}

			engine, cleanup, err := a.buildEngine(ctx, systemPath, dbPath, samplings, m)
			if err != nil {
				return err
			}
			defer cleanup()

			srv := &http.Server{
				Addr:              addr,
				Handler:           newHandler(engine, reg, a.logger),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errc := make(chan error, 1)
			go func() {
				a.logger.Info("listening", zap.String("addr", addr))
				errc <- srv.ListenAndServe()
			}()

			select {
			case err := <-errc:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			a.logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&systemPath, "system", "", "System YAML file (required)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database to record estimates in")
	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	cmd.Flags().IntVar(&samplings, "samplings", 0, "Sampling count (default: from system)")
	_ = cmd.MarkFlagRequired("system")
	return cmd
}

func newHandler(engine *fuzzy.Engine, reg *prometheus.Registry, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	mux.HandleFunc("POST /estimate", func(w http.ResponseWriter, r *http.Request) {
		var req estimateRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}

		in := operator.Inputs(req.Inputs)
		var (
			results []fuzzy.Estimate
			err     error
		)
		if req.Layer != "" {
			var est fuzzy.Estimate
			if est, err = engine.Estimate(r.Context(), req.Layer, in); err == nil {
				results = []fuzzy.Estimate{est}
			}
		} else {
			results, err = engine.EstimateAll(r.Context(), in)
		}
		if err != nil {
			status := http.StatusInternalServerError
			switch {
			case errors.Is(err, internalerr.ErrUnknownLayer):
				status = http.StatusNotFound
			case errors.Is(err, internalerr.ErrMissingInput):
				status = http.StatusBadRequest
			}
			logger.Debug("estimate request failed", zap.String("layer", req.Layer), zap.Error(err))
			writeJSON(w, status, errorResponse{Error: err.Error()})
			return
		}

		out := make([]estimateJSON, len(results))
		for i, e := range results {
			out[i] = toJSON(e)
		}
		writeJSON(w, http.StatusOK, out)
	})
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
