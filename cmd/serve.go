package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/inference-sim/mlfq-sim/sim"
	"github.com/inference-sim/mlfq-sim/sim/trace"
)

var (
	listenAddr     string
	serveHorizon   int64
	maxRequestBody int64
)

// SimulateRequest is the JSON body accepted by the simulate endpoints.
type SimulateRequest struct {
	Config    sim.SimulationConfig `json:"config"`
	Processes []sim.Process        `json:"processes"`
	Trace     string               `json:"trace,omitempty"`
}

// StepsResponse carries every per-tick snapshot plus the final result.
type StepsResponse struct {
	Snapshots []sim.Snapshot        `json:"snapshots"`
	Result    *sim.SimulationResult `json:"result"`
}

// ServerOptions bounds the work a single request may ask for.
type ServerOptions struct {
	Horizon     int64 // max ticks per simulation (0 = unlimited)
	MaxBodySize int64 // bytes
}

// NewRouter builds the HTTP surface over the engine. Every request gets its
// own Simulator.
func NewRouter(opts ServerOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Post("/simulate", func(w http.ResponseWriter, req *http.Request) {
		s, ok := newRequestSimulator(w, req, opts)
		if !ok {
			return
		}
		result, err := s.RunToCompletion()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	})
	r.Post("/simulate/steps", func(w http.ResponseWriter, req *http.Request) {
		s, ok := newRequestSimulator(w, req, opts)
		if !ok {
			return
		}
		snaps, result, err := s.RunWithSnapshots()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, StepsResponse{Snapshots: snaps, Result: result})
	})
	return r
}

func newRequestSimulator(w http.ResponseWriter, req *http.Request, opts ServerOptions) (*sim.Simulator, bool) {
	if opts.MaxBodySize > 0 {
		req.Body = http.MaxBytesReader(w, req.Body, opts.MaxBodySize)
	}
	var body SimulateRequest
	dec := json.NewDecoder(req.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, sim.ErrorDetail{Detail: fmt.Sprintf("invalid request body: %v", err)})
		return nil, false
	}
	s, err := sim.New(body.Config, body.Processes,
		sim.WithTrace(trace.TraceLevel(body.Trace)),
		sim.WithHorizon(opts.Horizon),
	)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return s, true
}

// statusFor maps the engine error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	var cfgErr *sim.ConfigError
	var valErr *sim.ValidationError
	var incomplete *sim.IncompleteSimulationError
	switch {
	case errors.As(err, &cfgErr), errors.As(err, &valErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &incomplete):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logrus.Errorf("simulation failed: %v", err)
	}
	writeJSON(w, status, sim.NewErrorDetail(err))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Warnf("writing response: %v", err)
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logrus.WithFields(logrus.Fields{
			"request_id": middleware.GetReqID(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(start),
		}).Info("request served")
	})
}

// serveCmd hosts the engine over HTTP until interrupted.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the simulate API over HTTP",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()

		srv := &http.Server{
			Addr:              listenAddr,
			Handler:           NewRouter(ServerOptions{Horizon: serveHorizon, MaxBodySize: maxRequestBody}),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		go func() {
			<-ctx.Done()
			logrus.Info("Shutting down gracefully...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logrus.Warnf("shutdown: %v", err)
			}
		}()

		logrus.Infof("HTTP server listening on %s", listenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("Failed to serve: %v", err)
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "addr", ":8080", "Listen address")
	serveCmd.Flags().Int64Var(&serveHorizon, "horizon", 1_000_000, "Max ticks per simulation request (0 = unlimited)")
	serveCmd.Flags().Int64Var(&maxRequestBody, "max-body-bytes", 1<<20, "Max request body size in bytes")

	rootCmd.AddCommand(serveCmd)
}
