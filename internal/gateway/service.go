// Package gateway serves the conductor HTTP API.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/nucleus/cdc-conductor/internal/connection"
	"github.com/nucleus/cdc-conductor/internal/core"
	"github.com/nucleus/cdc-conductor/internal/metrics"
	"github.com/nucleus/cdc-conductor/internal/operator"
)

// Pipelines is the deployment surface the API drives.
type Pipelines interface {
	Deploy(ctx context.Context, pipeline *core.Pipeline) (*operator.DebeziumServer, error)
	Undeploy(ctx context.Context, pipelineID int64) error
	Start(ctx context.Context, pipelineID int64) error
	Stop(ctx context.Context, pipelineID int64) error
	SendSignal(ctx context.Context, pipelineID int64, signal core.Signal) error
	FindDeployment(ctx context.Context, pipelineID int64) (*operator.DebeziumServer, bool, error)
	Logs(ctx context.Context, pipelineID int64, follow bool) (io.ReadCloser, error)
}

// TimeoutFunc returns the validation timeout for a destination type.
type TimeoutFunc func(connType string) time.Duration

// Service implements the HTTP API.
type Service struct {
	pipelines  Pipelines
	validators *connection.Registry
	timeouts   TimeoutFunc
	metrics    *metrics.Recorder
}

// NewService creates the API service. validators defaults to the global
// registry; a nil recorder disables metrics.
func NewService(pipelines Pipelines, validators *connection.Registry, timeouts TimeoutFunc, m *metrics.Recorder) *Service {
	if validators == nil {
		validators = connection.DefaultRegistry()
	}
	if timeouts == nil {
		timeouts = func(string) time.Duration { return connection.DefaultTimeout }
	}
	return &Service{pipelines: pipelines, validators: validators, timeouts: timeouts, metrics: m}
}

// Router builds the route table.
func (s *Service) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(requestLoggingMiddleware)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	// Pipelines
	r.HandleFunc("/pipelines/deploy", s.handleDeploy).Methods(http.MethodPost)
	r.HandleFunc("/pipelines/{id:[0-9]+}", s.handleFind).Methods(http.MethodGet)
	r.HandleFunc("/pipelines/{id:[0-9]+}", s.handleUndeploy).Methods(http.MethodDelete)
	r.HandleFunc("/pipelines/{id:[0-9]+}/start", s.handleStart).Methods(http.MethodPost)
	r.HandleFunc("/pipelines/{id:[0-9]+}/stop", s.handleStop).Methods(http.MethodPost)
	r.HandleFunc("/pipelines/{id:[0-9]+}/signals", s.handleSignal).Methods(http.MethodPost)
	r.HandleFunc("/pipelines/{id:[0-9]+}/logs", s.handleLogs).Methods(http.MethodGet)

	// Connections
	r.HandleFunc("/connections/validate", s.handleValidate).Methods(http.MethodPost)
	r.HandleFunc("/connections/types", s.handleTypes).Methods(http.MethodGet)
	return r
}

// =============================================================================
// PIPELINES
// =============================================================================

func (s *Service) handleDeploy(w http.ResponseWriter, r *http.Request) {
	var pipeline core.Pipeline
	if err := json.NewDecoder(r.Body).Decode(&pipeline); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid pipeline: %v", err))
		return
	}
	server, err := s.pipelines.Deploy(r.Context(), &pipeline)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, server)
}

func (s *Service) handleFind(w http.ResponseWriter, r *http.Request) {
	id, ok := pipelineID(w, r)
	if !ok {
		return
	}
	server, found, err := s.pipelines.FindDeployment(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Pipeline with id %d not found", id))
		return
	}
	writeJSON(w, http.StatusOK, server)
}

func (s *Service) handleUndeploy(w http.ResponseWriter, r *http.Request) {
	s.lifecycle(w, r, s.pipelines.Undeploy)
}

func (s *Service) handleStart(w http.ResponseWriter, r *http.Request) {
	s.lifecycle(w, r, s.pipelines.Start)
}

func (s *Service) handleStop(w http.ResponseWriter, r *http.Request) {
	s.lifecycle(w, r, s.pipelines.Stop)
}

func (s *Service) lifecycle(w http.ResponseWriter, r *http.Request, op func(context.Context, int64) error) {
	id, ok := pipelineID(w, r)
	if !ok {
		return
	}
	if err := op(r.Context(), id); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// signalRequest accepts data either as a JSON string or as an inline object.
type signalRequest struct {
	ID   string          `json:"id"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func (s *Service) handleSignal(w http.ResponseWriter, r *http.Request) {
	id, ok := pipelineID(w, r)
	if !ok {
		return
	}
	var req signalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid signal: %v", err))
		return
	}
	if req.Type == "" {
		writeError(w, http.StatusBadRequest, "signal type must be specified")
		return
	}

	signal := core.Signal{ID: req.ID, Type: req.Type}
	if len(req.Data) > 0 {
		var text string
		if err := json.Unmarshal(req.Data, &text); err == nil {
			signal.Data = text
		} else {
			signal.Data = string(req.Data)
		}
	}

	if err := s.pipelines.SendSignal(r.Context(), id, signal); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Service) handleLogs(w http.ResponseWriter, r *http.Request) {
	id, ok := pipelineID(w, r)
	if !ok {
		return
	}
	follow, _ := strconv.ParseBool(r.URL.Query().Get("follow"))

	stream, err := s.pipelines.Logs(r.Context(), id, follow)
	if err != nil {
		writeErr(w, err)
		return
	}
	defer stream.Close()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if !follow {
		_, _ = io.Copy(w, stream)
		return
	}

	flusher, _ := w.(http.Flusher)
	buf := make([]byte, 4096)
	for {
		n, err := stream.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if err != nil {
			return
		}
	}
}

// =============================================================================
// CONNECTIONS
// =============================================================================

func (s *Service) handleValidate(w http.ResponseWriter, r *http.Request) {
	var conn core.Connection
	if err := json.NewDecoder(r.Body).Decode(&conn); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid connection: %v", err))
		return
	}
	res := s.validators.Validate(r.Context(), &conn, connection.Options{Timeout: s.timeouts(conn.Type)})
	s.metrics.ObserveValidation(conn.Type, string(res.Kind))
	writeJSON(w, http.StatusOK, res)
}

func (s *Service) handleTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.validators.Descriptors())
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func pipelineID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid pipeline id")
		return 0, false
	}
	return id, true
}

// writeErr maps error codes onto HTTP statuses.
func writeErr(w http.ResponseWriter, err error) {
	var httpErr interface{ HTTPStatus() int }
	switch {
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrInvalidArgument), errors.Is(err, core.ErrUnsupportedConfiguration):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &httpErr):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		log.Printf("[gateway] internal error: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func requestLoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("[gateway] %s %s status=%d duration_ms=%d",
			r.Method, r.URL.Path, rec.status, time.Since(start).Milliseconds())
	})
}
