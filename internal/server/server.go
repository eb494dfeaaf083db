// Package server exposes the analysis engine as a JSON HTTP API with
// request-id tracing and Prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/plexvest/plexvest/internal/analysis"
	"github.com/plexvest/plexvest/pkg/constants"
	"github.com/plexvest/plexvest/pkg/projection"
	"github.com/plexvest/plexvest/pkg/property"
	"github.com/plexvest/plexvest/pkg/tax"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "plexvest_http_requests_total",
		Help: "HTTP requests processed, by route, method and status.",
	}, []string{"route", "method", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "plexvest_http_request_duration_seconds",
		Help:    "HTTP request latency, by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
)

// PropertyProvider loads property records by id.
type PropertyProvider interface {
	PropertyRecord(ctx context.Context, id int64) (property.Record, error)
}

// TaxProvider loads the tax tables consumed by the projection and
// disposition endpoints.
type TaxProvider interface {
	IncomeTaxBrackets(ctx context.Context, province string) (federal, provincial []tax.Bracket, err error)
	CapitalGainsBrackets(ctx context.Context, province string) ([]tax.Bracket, tax.Source, error)
	CorporateRates(ctx context.Context) (map[string]float64, error)
}

type handler struct {
	engine       *analysis.Engine
	properties   PropertyProvider
	taxes        TaxProvider
	logger       *zap.Logger
	maxBodyBytes int64
}

// NewHandler constructs the HTTP handler serving the analysis API.
func NewHandler(engine *analysis.Engine, properties PropertyProvider, taxes TaxProvider,
	logger *zap.Logger, maxBodyBytes int64) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = constants.DefaultMaxBodyBytes
	}

	h := &handler{
		engine:       engine,
		properties:   properties,
		taxes:        taxes,
		logger:       logger,
		maxBodyBytes: maxBodyBytes,
	}

	router := mux.NewRouter()
	router.Use(requestIDMiddleware)
	router.Use(h.observeMiddleware)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/analysis", h.handleAnalysis).Methods(http.MethodPost)
	api.HandleFunc("/projection", h.handleProjection).Methods(http.MethodPost)
	api.HandleFunc("/disposition", h.handleDisposition).Methods(http.MethodPost)

	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return router
}

// requestIDKey is the context key carrying the per-request id.
type requestIDKey struct{}

// requestIDMiddleware tags every request with a UUID, honoring an inbound
// X-Request-ID header.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

// observeMiddleware records request metrics and an access log line.
func (h *handler) observeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if template, err := current.GetPathTemplate(); err == nil {
				route = template
			}
		}

		elapsed := time.Since(start)
		requestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
		requestDuration.WithLabelValues(route).Observe(elapsed.Seconds())

		requestID, _ := r.Context().Value(requestIDKey{}).(string)
		h.logger.Debug("request handled",
			zap.String("op", "server.observeMiddleware"),
			zap.String("requestId", requestID),
			zap.String("route", route),
			zap.String("method", r.Method),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", elapsed),
		)
	})
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// analysisRequest selects a property either by id (loaded from the store)
// or as an inline record.
type analysisRequest struct {
	PropertyID *int64          `json:"propertyId,omitempty"`
	Record     property.Record `json:"record,omitempty"`
}

func (h *handler) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	var req analysisRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	record := req.Record
	if req.PropertyID != nil {
		if h.properties == nil {
			h.respondError(w, http.StatusServiceUnavailable, "no property store configured")
			return
		}
		loaded, err := h.properties.PropertyRecord(r.Context(), *req.PropertyID)
		if err != nil {
			h.respondError(w, http.StatusNotFound, err.Error())
			return
		}
		record = loaded
	}
	if len(record) == 0 {
		h.respondError(w, http.StatusBadRequest, "request must carry a propertyId or an inline record")
		return
	}

	report, err := h.engine.Analyze(r.Context(), record)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, report)
}

// projectionRequest carries the inputs for a standalone scenario
// comparison.
type projectionRequest struct {
	Loan           float64 `json:"loan"`
	Rate           float64 `json:"rate"`
	Years          int     `json:"years"`
	GrossRevenue   float64 `json:"grossRevenue"`
	Expenses       float64 `json:"expenses"`
	InflationRate  float64 `json:"inflationRate"`
	RentGrowthRate float64 `json:"rentGrowthRate"`
	Province       string  `json:"province"`
}

func (h *handler) handleProjection(w http.ResponseWriter, r *http.Request) {
	var req projectionRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if req.Loan <= 0 || req.Years <= 0 {
		h.respondError(w, http.StatusBadRequest, "loan and years must be positive")
		return
	}

	var federal, provincial []tax.Bracket
	if h.taxes != nil && req.Province != "" {
		var err error
		federal, provincial, err = h.taxes.IncomeTaxBrackets(r.Context(), req.Province)
		if err != nil {
			h.respondError(w, http.StatusInternalServerError,
				fmt.Sprintf("failed to load tax brackets: %v", err))
			return
		}
	}

	results := projection.CompareScenarios(h.logger, projection.Config{
		Loan:           req.Loan,
		Rate:           req.Rate,
		Years:          req.Years,
		GrossRevenue:   req.GrossRevenue,
		Expenses:       req.Expenses,
		InflationRate:  req.InflationRate,
		RentGrowthRate: req.RentGrowthRate,
		Federal:        federal,
		Provincial:     provincial,
	})
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"scenarios": results})
}

// dispositionRequest carries the inputs for taxing a property sale: the
// taxable gain, the seller's province, and whether the seller is
// incorporated.
type dispositionRequest struct {
	Gain         float64 `json:"gain"`
	Province     string  `json:"province"`
	Incorporated bool    `json:"incorporated"`
}

// dispositionResponse reports the tax owed on a sale gain through the
// personal capital-gains path and the corporate path, with the source of
// each table.
type dispositionResponse struct {
	Gain            float64    `json:"gain"`
	CapitalGainsTax float64    `json:"capitalGainsTax"`
	GainsSource     tax.Source `json:"gainsSource"`
	CorporateTax    float64    `json:"corporateTax"`
	CorporateSource tax.Source `json:"corporateSource"`
}

func (h *handler) handleDisposition(w http.ResponseWriter, r *http.Request) {
	var req dispositionRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if req.Gain <= 0 {
		h.respondError(w, http.StatusBadRequest, "gain must be positive")
		return
	}
	if h.taxes == nil {
		h.respondError(w, http.StatusServiceUnavailable, "no tax table store configured")
		return
	}

	brackets, gainsSource, err := h.taxes.CapitalGainsBrackets(r.Context(), req.Province)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError,
			fmt.Sprintf("failed to load capital-gains brackets: %v", err))
		return
	}
	rates, err := h.taxes.CorporateRates(r.Context())
	if err != nil {
		h.respondError(w, http.StatusInternalServerError,
			fmt.Sprintf("failed to load corporate tax rates: %v", err))
		return
	}

	corporateTax, corporateSource := tax.Corporate(req.Gain, req.Province, req.Incorporated, rates)
	h.respondJSON(w, http.StatusOK, dispositionResponse{
		Gain:            req.Gain,
		CapitalGainsTax: tax.CapitalGains(req.Gain, brackets),
		GainsSource:     gainsSource,
		CorporateTax:    corporateTax,
		CorporateSource: corporateSource,
	})
}

func (h *handler) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err))
		return false
	}
	return true
}

func (h *handler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response",
			zap.String("op", "server.respondJSON"),
			zap.Error(err),
		)
	}
}

func (h *handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
