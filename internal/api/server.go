package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/samijaber1/alcometer/internal/bac"
	"github.com/samijaber1/alcometer/internal/level"
	"github.com/samijaber1/alcometer/internal/logger"
	"github.com/samijaber1/alcometer/internal/metrics"
	"github.com/samijaber1/alcometer/internal/recorder"
	"github.com/samijaber1/alcometer/internal/storage"
)

// maxBodyBytes caps request bodies on the estimation endpoints
const maxBodyBytes = 1 << 20

// Options holds the server dependencies. History and Recorder may be nil; a nil
// Engine uses the default thresholds.
type Options struct {
	Engine           *level.Engine
	History          storage.HistoryStorage
	Recorder         *recorder.Recorder
	Logger           *logger.Logger
	BatchMaxItems    int
	BatchConcurrency int
}

// Server is the HTTP API server
type Server struct {
	engine           *level.Engine
	history          storage.HistoryStorage
	recorder         *recorder.Recorder
	log              *logger.Logger
	batchMaxItems    int
	batchConcurrency int
	server           *http.Server
}

// NewServer creates a new API server
func NewServer(opts Options, addr string) *Server {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}

	engine := opts.Engine
	if engine == nil {
		// default thresholds are always valid
		engine, _ = level.NewEngine(level.DefaultThresholds())
	}

	s := &Server{
		engine:           engine,
		history:          opts.History,
		recorder:         opts.Recorder,
		log:              log,
		batchMaxItems:    opts.BatchMaxItems,
		batchConcurrency: opts.BatchConcurrency,
	}

	mux := http.NewServeMux()

	// Health endpoints
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)

	// Estimation endpoints
	mux.HandleFunc("/v1/options", s.handleOptions)
	mux.HandleFunc("/v1/estimate", s.handleEstimate)
	mux.HandleFunc("/v1/estimate/batch", s.handleBatch)

	// History endpoints
	mux.HandleFunc("/v1/history", s.handleHistory)
	mux.HandleFunc("/v1/history/", s.handleHistoryGet)

	mux.Handle("/metrics", promhttp.Handler())

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.loggingMiddleware(mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return s
}

// Handler returns the root handler including middleware
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info("starting API server", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down API server")
	return s.server.Shutdown(ctx)
}

// handleHealth handles GET /healthz
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	respondJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// handleReady handles GET /readyz
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ready := true
	reasons := []string{}

	if s.history == nil {
		reasons = append(reasons, "history disabled")
	} else if _, err := s.history.QueryHistory(storage.HistoryFilter{Limit: 1}); err != nil {
		ready = false
		reasons = append(reasons, fmt.Sprintf("history unavailable: %v", err))
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}

	respondJSON(w, status, ReadyResponse{
		Ready:          ready,
		HistoryEnabled: s.history != nil,
		Reasons:        reasons,
	})
}

// handleOptions handles GET /v1/options
func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	defaults := bac.DefaultForm()
	respondJSON(w, http.StatusOK, OptionsResponse{
		Sexes:   bac.Sexes(),
		Bottles: bac.BottleChoices(),
		Hours:   bac.HourChoices(),
		Defaults: DefaultsInfo{
			Sex:     defaults.Sex,
			Weight:  defaults.WeightText,
			Bottles: defaults.Bottles,
			Hours:   defaults.Hours,
		},
		Thresholds: s.engine.Thresholds(),
	})
}

// handleEstimate handles POST /v1/estimate
func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req EstimateRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	form := req.Form()
	if err := form.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, s.estimate(form, storage.SourceAPI))
}

// handleBatch handles POST /v1/estimate/batch
func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req BatchRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	if len(req.Items) == 0 {
		respondError(w, http.StatusBadRequest, "items required")
		return
	}

	if s.batchMaxItems > 0 && len(req.Items) > s.batchMaxItems {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("too many items: %d (max %d)", len(req.Items), s.batchMaxItems))
		return
	}

	forms := make([]bac.Form, len(req.Items))
	for i, item := range req.Items {
		forms[i] = item.Form()
		if err := forms[i].Validate(); err != nil {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("items[%d]: %v", i, err))
			return
		}
	}

	results := make([]EstimateResponse, len(forms))
	g, ctx := errgroup.WithContext(r.Context())
	if s.batchConcurrency > 0 {
		g.SetLimit(s.batchConcurrency)
	}
	for i, form := range forms {
		i, form := i, form
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = s.estimate(form, storage.SourceBatch)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		respondError(w, http.StatusServiceUnavailable, fmt.Sprintf("batch aborted: %v", err))
		return
	}

	respondJSON(w, http.StatusOK, BatchResponse{Results: results})
}

// handleHistory handles GET /v1/history
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.history == nil {
		respondError(w, http.StatusServiceUnavailable, storage.ErrNotConfigured.Error())
		return
	}

	filter, err := parseHistoryFilter(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := s.history.QueryHistory(filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to query history: %v", err))
		return
	}

	response := HistoryResponse{
		Records: make([]HistoryRecordResponse, len(records)),
		Total:   len(records),
	}
	for i := range records {
		response.Records[i] = toHistoryRecord(&records[i])
	}

	respondJSON(w, http.StatusOK, response)
}

// handleHistoryGet handles GET /v1/history/{id}
func (s *Server) handleHistoryGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.history == nil {
		respondError(w, http.StatusServiceUnavailable, storage.ErrNotConfigured.Error())
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/history/")
	if id == "" {
		respondError(w, http.StatusBadRequest, "record ID required")
		return
	}

	record, err := s.history.GetEstimation(id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to get record: %v", err))
		return
	}
	if record == nil {
		respondError(w, http.StatusNotFound, fmt.Sprintf("record not found: %s", id))
		return
	}

	respondJSON(w, http.StatusOK, toHistoryRecord(record))
}

// estimate runs the estimator and classifier and hands the record to the recorder
func (s *Server) estimate(form bac.Form, source storage.Source) EstimateResponse {
	in := form.Input()
	result := bac.Estimate(in)
	classification := s.engine.Classify(result)

	metrics.IncEstimation(string(source), string(result.Outcome()), string(classification.Level))

	response := EstimateResponse{
		Display:   result.String(),
		Outcome:   result.Outcome(),
		Level:     classification.Level,
		Threshold: classification.Threshold,
		Reasons:   classification.Reasons,
		Input:     in,
	}
	if result.IsFinite() {
		v := result.BAC
		response.BAC = &v
	}

	if s.recorder != nil {
		record := storage.NewRecord(source, in, result, classification, time.Now())
		if s.recorder.Submit(record) {
			response.ID = record.ID
		}
	}

	return response
}

func parseHistoryFilter(r *http.Request) (storage.HistoryFilter, error) {
	query := r.URL.Query()
	var filter storage.HistoryFilter

	if v := query.Get("sex"); v != "" {
		sex, err := bac.ParseSex(v)
		if err != nil {
			return filter, err
		}
		filter.Sex = sex
	}

	if v := query.Get("level"); v != "" {
		lvl := level.Level(strings.ToUpper(v))
		if !lvl.Valid() {
			return filter, fmt.Errorf("unknown level: %q", v)
		}
		filter.Level = lvl
	}

	if v := query.Get("source"); v != "" {
		filter.Source = storage.Source(v)
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	if startTimeStr := query.Get("startTime"); startTimeStr != "" {
		if startTime, err := time.Parse(time.RFC3339, startTimeStr); err == nil {
			filter.StartTime = &startTime
		}
	}

	if endTimeStr := query.Get("endTime"); endTimeStr != "" {
		if endTime, err := time.Parse(time.RFC3339, endTimeStr); err == nil {
			filter.EndTime = &endTime
		}
	}

	return filter, nil
}

func toHistoryRecord(record *storage.Record) HistoryRecordResponse {
	return HistoryRecordResponse{
		ID:        record.ID,
		Source:    string(record.Source),
		Input:     record.Input,
		BAC:       record.BAC,
		Display:   record.Display,
		Outcome:   record.Outcome,
		Level:     record.Level,
		Reasons:   record.Reasons,
		CreatedAt: record.CreatedAt,
	}
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		metrics.ObserveRequest(routeLabel(r.URL.Path), strconv.Itoa(rec.status), elapsed.Seconds())
		s.log.Debug("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", elapsed)
	})
}

// routeLabel keeps record IDs out of metric labels
func routeLabel(path string) string {
	if strings.HasPrefix(path, "/v1/history/") {
		return "/v1/history/{id}"
	}
	return path
}
