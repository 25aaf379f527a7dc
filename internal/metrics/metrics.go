package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tetrabet_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tetrabet_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Game metrics
	GamesStartedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tetrabet_games_started_total",
			Help: "Total number of started games",
		},
		[]string{"mode"}, // "real", "demo"
	)

	GamesCompletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tetrabet_games_completed_total",
			Help: "Total number of completed games",
		},
		[]string{"mode", "result"}, // result: "loss", "win", "jackpot"
	)

	PayoutTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tetrabet_payout_total",
			Help: "Sum of real-money payouts",
		},
	)

	MatcherWindowHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tetrabet_matcher_window_hits_total",
			Help: "Slot matches by tolerance window",
		},
		[]string{"window"}, // "1".."4", "fallback"
	)

	ClaimConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tetrabet_claim_conflicts_total",
			Help: "Slot claims lost to a concurrent game start",
		},
	)

	AlreadyConsumedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tetrabet_already_consumed_total",
			Help: "Rejected completions of already played slots",
		},
	)

	// Batch metrics
	BatchesGeneratedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tetrabet_batches_generated_total",
			Help: "Total number of generated batches",
		},
	)

	BatchGenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tetrabet_batch_generation_duration_seconds",
			Help:    "Duration of batch generation including persistence",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~41s
		},
	)
)

// Middleware - счётчик и длительность HTTP-запросов по шаблону маршрута
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		// шаблон маршрута вместо пути с ID
		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}

		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(ww.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// RecordCompletion - учёт завершённой игры
func RecordCompletion(mode, result string, payout float64) {
	GamesCompletedTotal.WithLabelValues(mode, result).Inc()
	if mode == "real" && payout > 0 {
		PayoutTotal.Add(payout)
	}
}
