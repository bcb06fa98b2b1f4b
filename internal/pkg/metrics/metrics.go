package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// httpRequests counts handled requests by route pattern, method and status
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hrm_http_requests_total",
		Help: "Total HTTP requests by route, method and status",
	}, []string{"route", "method", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hrm_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	// AttendanceEvents counts check-in/out outcomes (kind=check_in|check_out)
	AttendanceEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hrm_attendance_events_total",
		Help: "Attendance check-in and check-out attempts by outcome",
	}, []string{"kind", "result"})

	FaceMatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hrm_face_match_duration_seconds",
		Help:    "Face-match collaborator latency in seconds",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	})

	// WorkflowDecisions counts leave and overtime transitions (workflow=leave|overtime)
	WorkflowDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hrm_workflow_transitions_total",
		Help: "Leave and overtime request transitions by status",
	}, []string{"workflow", "status"})

	// NotificationsDispatched counts delivery attempts by channel (push|sse|store) and result
	NotificationsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hrm_notifications_dispatched_total",
		Help: "Notification deliveries by channel and result",
	}, []string{"channel", "result"})

	NotificationQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hrm_notification_queue_depth",
		Help: "Notifications waiting in the dispatch queue",
	})

	SSEStreams = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hrm_sse_open_streams",
		Help: "Open server-sent event streams",
	})

	CronRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hrm_cron_runs_total",
		Help: "Scheduled job runs by job and result",
	}, []string{"job", "result"})
)

// Result maps an error to the label used by outcome counters.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
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

// Middleware records request counts and latency keyed by the matched chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
