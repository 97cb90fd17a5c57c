package observability

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"route", "method"},
	)

	CompletionAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "completion_attempts_total",
			Help: "Completion attempts by outcome (success, error)",
		},
		[]string{"model", "outcome"},
	)
	CompletionAttemptDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "completion_attempt_duration_seconds",
			Help:    "Duration of a single completion attempt in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
		},
		[]string{"model"},
	)
	CompletionTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "completion_tokens_total",
			Help: "Tokens consumed by completion calls",
		},
		[]string{"model", "kind"},
	)

	EvaluationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evaluations_total",
			Help: "Evaluations produced by framework and source (completion, heuristic)",
		},
		[]string{"framework", "source"},
	)
	EvaluationFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evaluation_fallbacks_total",
			Help: "Evaluations served by the heuristic scorer after the completion client gave up",
		},
		[]string{"framework"},
	)
	OverallScoreHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "evaluation_overall_score",
			Help:    "Distribution of extracted overall scores ([0,10])",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		},
		[]string{"source"},
	)
	QuotaDeniedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "evaluation_quota_denied_total",
			Help: "Evaluations rejected by the per-user quota",
		},
	)
	ScoreDriftGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "evaluation_score_drift",
			Help: "Absolute drift of the rolling mean overall score from its baseline",
		},
		[]string{"framework", "source"},
	)
)

// InitMetrics registers every collector with the default registry.
func InitMetrics() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(CompletionAttemptsTotal)
	prometheus.MustRegister(CompletionAttemptDuration)
	prometheus.MustRegister(CompletionTokensTotal)
	prometheus.MustRegister(EvaluationsTotal)
	prometheus.MustRegister(EvaluationFallbacksTotal)
	prometheus.MustRegister(OverallScoreHistogram)
	prometheus.MustRegister(QuotaDeniedTotal)
	prometheus.MustRegister(ScoreDriftGauge)
}

// HTTPMetricsMiddleware records Prometheus metrics for each request.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		dur := time.Since(start).Seconds()
		// Route pattern may be unavailable outside chi router; guard nil
		var route string
		if rc := chi.RouteContext(r.Context()); rc != nil {
			route = rc.RoutePattern()
		}
		if route == "" {
			route = r.URL.Path
		}
		HTTPRequestsTotal.WithLabelValues(route, r.Method, http.StatusText(ww.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(dur)
	})
}

// ObserveCompletionAttempt records one outbound completion attempt.
func ObserveCompletionAttempt(model string, err error, dur time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	CompletionAttemptsTotal.WithLabelValues(model, outcome).Inc()
	CompletionAttemptDuration.WithLabelValues(model).Observe(dur.Seconds())
}

// RecordTokenUsage adds prompt and completion token counts.
func RecordTokenUsage(model string, prompt, completion int) {
	if prompt > 0 {
		CompletionTokensTotal.WithLabelValues(model, "prompt").Add(float64(prompt))
	}
	if completion > 0 {
		CompletionTokensTotal.WithLabelValues(model, "completion").Add(float64(completion))
	}
}

// ObserveEvaluation records one finished evaluation.
func ObserveEvaluation(framework, source string, overall float64) {
	EvaluationsTotal.WithLabelValues(framework, source).Inc()
	if overall >= 0 && overall <= 10 {
		OverallScoreHistogram.WithLabelValues(source).Observe(overall)
	}
}

// RecordFallback counts a heuristic fallback.
func RecordFallback(framework string) {
	EvaluationFallbacksTotal.WithLabelValues(framework).Inc()
}

// RecordQuotaDenied counts a quota rejection.
func RecordQuotaDenied() { QuotaDeniedTotal.Inc() }
