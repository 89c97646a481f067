package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sharpline/sharpline/internal/domain"
	"github.com/sharpline/sharpline/internal/metrics"
	"github.com/sharpline/sharpline/internal/parlay"
	"github.com/sharpline/sharpline/internal/persistence"
	"github.com/sharpline/sharpline/internal/pipeline"
	"github.com/sharpline/sharpline/internal/pool"
	"github.com/sharpline/sharpline/internal/selector"
)

// Handlers binds the engine to the HTTP surface. audit, legs and edgeFeed
// are optional collaborators; nil disables them.
type Handlers struct {
	evaluator *pipeline.Evaluator
	builder   *parlay.Builder
	audit     persistence.AuditRepo
	legs      *pool.LegStore
	edgeFeed  EdgePublisher
	metrics   *metrics.Registry
}

// EdgePublisher receives EDGE classifications for display subscribers
// and serves their websocket subscriptions
type EdgePublisher interface {
	PublishEdge(result domain.ClassificationResult)
	ServeWS(w http.ResponseWriter, r *http.Request)
}

// NewHandlers wires the endpoint handlers
func NewHandlers(evaluator *pipeline.Evaluator, builder *parlay.Builder, audit persistence.AuditRepo, legs *pool.LegStore, edgeFeed EdgePublisher) *Handlers {
	return &Handlers{
		evaluator: evaluator,
		builder:   builder,
		audit:     audit,
		legs:      legs,
		edgeFeed:  edgeFeed,
	}
}

// WithMetrics enables parlay build instrumentation
func (h *Handlers) WithMetrics(m *metrics.Registry) *Handlers {
	h.metrics = m
	return h
}

// evaluateRequest is the wire form of an evaluation call. Enum-typed
// fields arrive as raw strings and are validated here, at the boundary,
// before anything reaches the core.
type evaluateRequest struct {
	Sport      string                    `json:"sport"`
	Simulation domain.SimulationSnapshot `json:"simulation"`
	Market     struct {
		MarketLine float64 `json:"market_line"`
		MarketOdds float64 `json:"market_odds"`
		MarketType string  `json:"market_type"`
	} `json:"market"`
	Overrides []struct {
		Type   string `json:"type"`
		Active bool   `json:"active"`
		Detail string `json:"detail"`
	} `json:"overrides"`
	Views      []selector.ModelView `json:"views"`
	HomeSide   string               `json:"home_side"`
	AwaySide   string               `json:"away_side"`
	Confidence float64              `json:"confidence"`
}

// Evaluate handles POST /v1/evaluate
func (h *Handlers) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	marketType, err := domain.ParseMarketType(req.Market.MarketType)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	overrides := make([]domain.OverrideSignal, 0, len(req.Overrides))
	for _, o := range req.Overrides {
		overrideType, err := domain.ParseOverrideType(o.Type)
		if err != nil {
			// Unknown kinds are rejected, never silently ignored
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		overrides = append(overrides, domain.OverrideSignal{Type: overrideType, Active: o.Active, Detail: o.Detail})
	}

	result, err := h.evaluator.Evaluate(pipeline.EvaluationInput{
		Sport:      req.Sport,
		Simulation: req.Simulation,
		Market: domain.MarketSnapshot{
			MarketLine: req.Market.MarketLine,
			MarketOdds: req.Market.MarketOdds,
			MarketType: marketType,
		},
		Overrides:  overrides,
		Views:      req.Views,
		HomeSide:   req.HomeSide,
		AwaySide:   req.AwaySide,
		Confidence: req.Confidence,
	})
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	h.auditClassification(r, result)
	if h.edgeFeed != nil && result.Classification == domain.ClassificationEdge {
		h.edgeFeed.PublishEdge(result)
	}

	writeJSON(w, http.StatusOK, result)
}

// parlayRequest is the wire form of a build call: either an inline pool
// or a board date resolved through the leg store.
type parlayRequest struct {
	parlay.Request
	Pool      []domain.Leg `json:"pool,omitempty"`
	BoardDate string       `json:"board_date,omitempty"`
}

// Parlay handles POST /v1/parlay
func (h *Handlers) Parlay(w http.ResponseWriter, r *http.Request) {
	var req parlayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	legs := req.Pool
	if len(legs) == 0 && req.BoardDate != "" {
		if h.legs == nil {
			writeError(w, http.StatusBadRequest, "board_date supplied but no leg store configured")
			return
		}
		var err error
		legs, err = h.legs.Legs(r.Context(), req.BoardDate)
		if err != nil {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
	}

	start := time.Now()
	result, err := h.builder.Build(legs, req.Request)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if h.metrics != nil {
		h.metrics.BuildDuration.Observe(time.Since(start).Seconds())
		// FallbackStepUsed is meaningless on FAIL; a sentinel keeps the
		// step label from colliding with successes at step 0
		step := strconv.Itoa(result.FallbackStepUsed)
		if result.Status == parlay.StatusFail {
			step = "-"
		}
		h.metrics.ParlayBuilds.WithLabelValues(string(result.Status), step).Inc()
		if result.Status == parlay.StatusFail {
			h.metrics.ParlayFailures.WithLabelValues(string(result.ReasonCode)).Inc()
		}
	}

	h.auditParlay(r, req.Request, result)
	writeJSON(w, http.StatusOK, result)
}

// Health handles GET /health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	}
	if h.legs != nil {
		status["leg_store"] = h.legs.Health(r.Context())
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *Handlers) auditClassification(r *http.Request, result domain.ClassificationResult) {
	if h.audit == nil {
		return
	}
	record := persistence.ClassificationRecord{
		ID:        requestID(r),
		CreatedAt: time.Now().UTC(),
		Result:    result,
	}
	if err := h.audit.SaveClassification(r.Context(), record); err != nil {
		log.Warn().Err(err).Msg("classification audit failed")
	}
}

func (h *Handlers) auditParlay(r *http.Request, req parlay.Request, result parlay.Result) {
	if h.audit == nil {
		return
	}
	record := persistence.ParlayAttemptRecord{
		ID:        requestID(r),
		CreatedAt: time.Now().UTC(),
		Request:   req,
		Result:    result,
	}
	if err := h.audit.SaveParlayAttempt(r.Context(), record); err != nil {
		log.Warn().Err(err).Msg("parlay audit failed")
	}
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
			r.Header.Set("X-Request-ID", id)
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

func requestID(r *http.Request) string {
	if id := r.Header.Get("X-Request-ID"); id != "" {
		return id
	}
	return uuid.NewString()
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("response encoding failed")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
