// Package server exposes the analysis engine over HTTP: the pasted-text and
// structured analysis endpoints, the health probe and the Prometheus
// scrape endpoint.
package server

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vera-api/internal/analyzer"
	"vera-api/internal/analyzer/textparse"
	"vera-api/internal/common/cache"
	"vera-api/internal/common/config"
	"vera-api/internal/common/errors"
	"vera-api/internal/common/logger"
	"vera-api/internal/common/metrics"
	"vera-api/internal/common/observability"
	"vera-api/internal/common/validation"
)

// maxBodyBytes bounds request bodies; status texts are a few KB at most.
const maxBodyBytes = 1 << 20

// Server wires the engine, cache and observability into an http.Handler.
type Server struct {
	cfg    *config.Config
	logger logger.Logger
	engine *analyzer.Engine
	cache  *cache.ResultCache
	obs    *observability.Observability

	handler http.Handler
}

// New assembles the HTTP surface. cache and obs may be nil.
func New(cfg *config.Config, log logger.Logger, engine *analyzer.Engine, resultCache *cache.ResultCache, obs *observability.Observability) *Server {
	s := &Server{
		cfg:    cfg,
		logger: log,
		engine: engine,
		cache:  resultCache,
		obs:    obs,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/analisar-projeto-texto", s.handleAnalyzeText)
	mux.HandleFunc("/analisar-projeto", s.handleAnalyzeStructured)

	s.handler = s.requestID(s.cors(mux))
	return s
}

// Handler returns the fully wrapped root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, r, "/health", errors.NewMethodNotAllowedError(r.Method))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": analyzer.APIVersion,
	})
}

func (s *Server) handleAnalyzeText(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/analisar-projeto-texto"
	body, ok := s.readBody(w, r, endpoint)
	if !ok {
		return
	}

	var document map[string]interface{}
	if err := json.Unmarshal(body, &document); err != nil {
		s.writeError(w, r, endpoint, errors.NewInvalidPayloadError(err.Error()))
		return
	}
	if !s.validate(w, r, endpoint, document, textRequestSchema) {
		return
	}

	var req TextRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, r, endpoint, errors.NewInvalidPayloadError(err.Error()))
		return
	}

	s.analyze(w, r, endpoint, body, func() analyzer.Result {
		return s.engine.Analyze(r.Context(), textparse.Parse(req.Texto))
	})
}

func (s *Server) handleAnalyzeStructured(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/analisar-projeto"
	body, ok := s.readBody(w, r, endpoint)
	if !ok {
		return
	}

	var document map[string]interface{}
	if err := json.Unmarshal(body, &document); err != nil {
		s.writeError(w, r, endpoint, errors.NewInvalidPayloadError(err.Error()))
		return
	}
	if !s.validate(w, r, endpoint, document, structuredRequestSchema) {
		return
	}

	var req StructuredRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, r, endpoint, errors.NewInvalidPayloadError(err.Error()))
		return
	}

	s.analyze(w, r, endpoint, body, func() analyzer.Result {
		return s.engine.Analyze(r.Context(), req.Fields())
	})
}

// analyze runs the engine behind the result cache and records metrics. The
// cache key is derived from the endpoint plus the exact request body, so two
// byte-identical submissions share one analysis within the TTL.
func (s *Server) analyze(w http.ResponseWriter, r *http.Request, endpoint string, body []byte, run func() analyzer.Result) {
	start := time.Now()
	metrics.AnalysisRequests.WithLabelValues(endpoint).Inc()

	var key string
	if s.cache != nil {
		key = cache.Key(endpoint, body)
		if cached, ok := s.cache.Get(r.Context(), key); ok {
			metrics.CacheHits.WithLabelValues("hit").Inc()
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write(cached)
			return
		}
		metrics.CacheHits.WithLabelValues("miss").Inc()
	}

	result := run()

	duration := time.Since(start)
	metrics.AnalysisDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
	metrics.AnalysisRiskLevel.WithLabelValues(result.RiskClass).Inc()
	if s.obs != nil {
		s.obs.RecordAnalysis(r.Context(), result.RiskClass)
		s.obs.RecordAnalysisDuration(r.Context(), duration, result.RiskClass)
	}

	payload, err := json.Marshal(result)
	if err != nil {
		s.writeError(w, r, endpoint, errors.NewInternalError(err))
		return
	}

	if s.cache != nil {
		if err := s.cache.Set(r.Context(), key, payload); err != nil {
			s.logger.Warn("result cache write failed", map[string]interface{}{
				"error":      err.Error(),
				"request_id": requestIDFrom(r),
			})
		}
	}

	s.logger.Info("analysis completed", map[string]interface{}{
		"endpoint":       endpoint,
		"classification": result.RiskClass,
		"score":          result.RiskScore,
		"duration_ms":    duration.Milliseconds(),
		"request_id":     requestIDFrom(r),
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request, endpoint string) ([]byte, bool) {
	if r.Method != http.MethodPost {
		s.writeError(w, r, endpoint, errors.NewMethodNotAllowedError(r.Method))
		return nil, false
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, r, endpoint, errors.NewInvalidPayloadError(err.Error()))
		return nil, false
	}
	return body, true
}

func (s *Server) validate(w http.ResponseWriter, r *http.Request, endpoint string, document, schema map[string]interface{}) bool {
	result, err := validation.ValidateDocument(document, schema)
	if err != nil {
		s.writeError(w, r, endpoint, errors.NewInternalError(err))
		return false
	}
	if !result.Valid {
		details := ""
		if len(result.Errors) > 0 {
			details = result.Errors[0]
		}
		s.writeError(w, r, endpoint, errors.NewSchemaValidationError(details))
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encoding failed", map[string]interface{}{"error": err.Error()})
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, endpoint string, stdErr *errors.StandardError) {
	metrics.AnalysisErrors.WithLabelValues(endpoint, string(stdErr.Code)).Inc()
	s.logger.Warn("request rejected", map[string]interface{}{
		"endpoint":   endpoint,
		"code":       string(stdErr.Code),
		"details":    stdErr.Details,
		"request_id": requestIDFrom(r),
	})
	s.writeJSON(w, stdErr.HTTPStatus(), map[string]interface{}{"error": stdErr})
}

const requestIDHeader = "X-Request-ID"

func requestIDFrom(r *http.Request) string {
	return r.Header.Get(requestIDHeader)
}

// requestID assigns a request ID when the client did not send one and echoes
// it back on the response.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
			r.Header.Set(requestIDHeader, id)
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// cors applies the configured origin allowlist. The analysis endpoints are
// consumed by RPA bots and internal dashboards, so "*" is the usual setting.
func (s *Server) cors(next http.Handler) http.Handler {
	allowed := "*"
	if len(s.cfg.Server.AllowedOrigins) > 0 {
		allowed = s.cfg.Server.AllowedOrigins[0]
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowed)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
