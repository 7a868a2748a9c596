package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/leowmjw/go-countdown-timeline/pkg/hcl"
	"github.com/leowmjw/go-countdown-timeline/pkg/plan"
	"github.com/leowmjw/go-countdown-timeline/pkg/temporal"
)

// MaxImportBytes bounds an import or edit request body.
const MaxImportBytes = 1 << 20

// Server represents the HTTP server for the plan service
type Server struct {
	logger         *slog.Logger
	temporalClient client.Client
	addr           string
	taskQueue      string
}

// NewServer creates a new HTTP server
func NewServer(logger *slog.Logger, temporalClient client.Client, addr, taskQueue string) *Server {
	if taskQueue == "" {
		taskQueue = temporal.DefaultTaskQueue
	}
	return &Server{
		logger:         logger,
		temporalClient: temporalClient,
		addr:           addr,
		taskQueue:      taskQueue,
	}
}

// Handler returns the routed handler with logging middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /plans/{id}/edits", s.handleEdits)
	mux.HandleFunc("POST /plans/{id}/import", s.handleImport)
	mux.HandleFunc("POST /plans/{id}/close", s.handleClose)
	mux.HandleFunc("GET /plans/{id}", s.handleProjection)
	mux.HandleFunc("GET /plans/{id}/export", s.handleExport)
	mux.HandleFunc("GET /health", s.handleHealth)

	return s.loggingMiddleware(mux)
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("Starting HTTP server", "addr", s.addr)

	errChan := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}
}

func (s *Server) startOptions(workflowID string) client.StartWorkflowOptions {
	return client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: s.taskQueue,
	}
}

// Edit endpoint: applies a batch of field edits through the plan workflow
func (s *Server) handleEdits(w http.ResponseWriter, r *http.Request) {
	planID := r.PathValue("id")
	if planID == "" {
		s.respondError(w, http.StatusBadRequest, "plan ID is required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxImportBytes)
	var edits []plan.Edit
	if err := json.NewDecoder(r.Body).Decode(&edits); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(edits) == 0 {
		s.respondError(w, http.StatusBadRequest, "at least one edit is required")
		return
	}
	for i, e := range edits {
		if !e.Op.Valid() {
			s.respondError(w, http.StatusBadRequest, fmt.Sprintf("edit %d: unknown op %q", i, e.Op))
			return
		}
	}

	s.logger.Info("Queueing edits", "planID", planID, "count", len(edits))

	workflowID := temporal.GeneratePlanWorkflowID(planID)
	_, err := s.temporalClient.SignalWithStartWorkflow(
		r.Context(),
		workflowID,
		temporal.EditSignalName,
		temporal.EditSignal{Edits: edits},
		s.startOptions(workflowID),
		temporal.PlanWorkflow,
		planID,
	)
	if err != nil {
		s.logger.Error("Failed to signal workflow", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to queue edits")
		return
	}

	s.respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"message":    "edits queued",
		"plan_id":    planID,
		"edit_count": len(edits),
	})
}

// Import endpoint: accepts JSON, YAML, HCL or the one-stream-per-line text format
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	planID := r.PathValue("id")
	if planID == "" {
		s.respondError(w, http.StatusBadRequest, "plan ID is required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxImportBytes)
	contentType, err := hcl.DetectContentType(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	doc, err := s.decodeImport(r.Context(), planID, contentType, body)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s plan: %v", contentType, err))
		return
	}

	s.logger.Info("Importing plan", "planID", planID, "format", contentType, "streams", len(doc.Streams))

	workflowID := temporal.GeneratePlanWorkflowID(planID)
	_, err = s.temporalClient.SignalWithStartWorkflow(
		r.Context(),
		workflowID,
		temporal.ImportSignalName,
		temporal.ImportSignal{Document: doc},
		s.startOptions(workflowID),
		temporal.PlanWorkflow,
		planID,
	)
	if err != nil {
		s.logger.Error("Failed to signal workflow", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to queue import")
		return
	}

	s.respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"message":      "import queued",
		"plan_id":      planID,
		"stream_count": len(doc.Streams),
	})
}

func (s *Server) decodeImport(ctx context.Context, planID, contentType string, body []byte) (plan.Document, error) {
	// text import keeps the current total and title
	return hcl.DecodePlan(contentType, body, func() plan.Document {
		base, err := s.queryDocument(ctx, planID)
		if err != nil {
			s.logger.Debug("No running plan for text import, using default", "planID", planID, "error", err)
			return plan.Default()
		}
		return base
	})
}

// Close endpoint: stops the plan workflow after a final save
func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	planID := r.PathValue("id")
	if planID == "" {
		s.respondError(w, http.StatusBadRequest, "plan ID is required")
		return
	}

	err := s.temporalClient.SignalWorkflow(r.Context(), temporal.GeneratePlanWorkflowID(planID), "", temporal.CloseSignalName, nil)
	if err != nil {
		s.respondQueryError(w, err, "failed to close plan")
		return
	}
	s.respondJSON(w, http.StatusAccepted, map[string]string{
		"message": "close requested",
		"plan_id": planID,
	})
}

// Projection endpoint: the render view at ?zoom=N
func (s *Server) handleProjection(w http.ResponseWriter, r *http.Request) {
	planID := r.PathValue("id")
	if planID == "" {
		s.respondError(w, http.StatusBadRequest, "plan ID is required")
		return
	}

	zoom := 0
	if z := r.URL.Query().Get("zoom"); z != "" {
		v, err := strconv.Atoi(z)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "zoom must be an integer")
			return
		}
		zoom = v
	}

	val, err := s.temporalClient.QueryWorkflow(r.Context(), temporal.GeneratePlanWorkflowID(planID), "", temporal.ProjectionQueryName, zoom)
	if err != nil {
		s.respondQueryError(w, err, "failed to query plan")
		return
	}

	var proj plan.Projection
	if err := val.Get(&proj); err != nil {
		s.logger.Error("Failed to decode projection", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to decode projection")
		return
	}
	s.respondJSON(w, http.StatusOK, proj)
}

// Export endpoint: ?format=text (default), json, yaml or hcl
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	planID := r.PathValue("id")
	if planID == "" {
		s.respondError(w, http.StatusBadRequest, "plan ID is required")
		return
	}

	doc, err := s.queryDocument(r.Context(), planID)
	if err != nil {
		s.respondQueryError(w, err, "failed to query plan")
		return
	}

	format := r.URL.Query().Get("format")
	body, contentType, err := hcl.EncodePlan(doc, format)
	if errors.Is(err, hcl.ErrUnknownFormat) {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown format %q", format))
		return
	}
	if err != nil {
		s.logger.Error("Failed to encode export", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to encode plan")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		s.logger.Error("Failed to write export", "error", err)
	}
}

func (s *Server) queryDocument(ctx context.Context, planID string) (plan.Document, error) {
	val, err := s.temporalClient.QueryWorkflow(ctx, temporal.GeneratePlanWorkflowID(planID), "", temporal.DocumentQueryName)
	if err != nil {
		return plan.Document{}, err
	}
	var doc plan.Document
	if err := val.Get(&doc); err != nil {
		return plan.Document{}, fmt.Errorf("failed to decode document: %w", err)
	}
	return doc, nil
}

// Health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// Middleware for request logging
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapper, r)

		s.logger.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapper.statusCode,
			"duration", time.Since(start),
			"user_agent", r.UserAgent(),
		)
	})
}

// Response helpers
func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("Failed to encode JSON response", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.logger.Warn("HTTP error response", "status", status, "message", message)
	s.respondJSON(w, status, map[string]string{"error": message})
}

// respondQueryError maps a missing workflow to 404.
func (s *Server) respondQueryError(w http.ResponseWriter, err error, message string) {
	var notFound *serviceerror.NotFound
	if errors.As(err, &notFound) {
		s.respondError(w, http.StatusNotFound, "plan is not open")
		return
	}
	s.logger.Error(message, "error", err)
	s.respondError(w, http.StatusInternalServerError, message)
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
