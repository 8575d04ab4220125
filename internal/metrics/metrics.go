package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bordersense",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests received",
	}, []string{"method", "path", "status"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "bordersense",
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	httpInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "bordersense",
		Name:      "http_in_flight_requests",
		Help:      "Current number of in-flight HTTP requests",
	})

	alertsProduced = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bordersense",
		Name:      "alerts_produced_total",
		Help:      "Alerts persisted by the detection pipeline",
	}, []string{"severity"})

	candidatesGated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bordersense",
		Name:      "detection_candidates_gated_total",
		Help:      "Detection candidates dropped below the confidence threshold",
	})

	feedbackRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bordersense",
		Name:      "feedback_recorded_total",
		Help:      "Accepted human corrections",
	})

	retrainingCycles = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bordersense",
		Name:      "retraining_cycles_total",
		Help:      "Completed retraining batch cycles",
	})

	modelsRetrained = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bordersense",
		Name:      "models_retrained_total",
		Help:      "Successful model version promotions",
	})
)

// AlertProduced records one persisted alert.
func AlertProduced(severity string) { alertsProduced.WithLabelValues(severity).Inc() }

// CandidateGated records one candidate dropped by threshold gating.
func CandidateGated() { candidatesGated.Inc() }

// FeedbackRecorded records one accepted correction.
func FeedbackRecorded() { feedbackRecorded.Inc() }

// RetrainingCycle records one completed batch cycle.
func RetrainingCycle() { retrainingCycles.Inc() }

// ModelRetrained records one successful promotion.
func ModelRetrained() { modelsRetrained.Inc() }

type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func (r *responseRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack is needed so the WebSocket upgrade works through the middleware.
func (r *responseRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := r.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, fmt.Errorf("metrics: underlying ResponseWriter does not support hijacking")
}

// Middleware records request metrics with Prometheus labels.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			httpInFlight.Inc()
			defer httpInFlight.Dec()

			next.ServeHTTP(rec, r)

			labels := prometheus.Labels{
				"method": r.Method,
				"path":   r.URL.Path,
				"status": strconv.Itoa(rec.status),
			}
			httpRequests.With(labels).Inc()
			httpLatency.With(labels).Observe(time.Since(start).Seconds())
		})
	}
}

// Handler exposes the default Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
