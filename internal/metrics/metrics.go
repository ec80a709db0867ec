// Package metrics provides Prometheus metrics for the CMS bridge server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cms_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cms_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cms_http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		},
	)

	// FTP bridge metrics
	ftpOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cms_ftp_operations_total",
			Help: "Total FTP bridge operations",
		},
		[]string{"operation", "status"},
	)

	ftpOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cms_ftp_operation_duration_seconds",
			Help:    "FTP bridge operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	ftpBytesDownloaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cms_ftp_bytes_downloaded_total",
			Help: "Total bytes downloaded from the FTP store",
		},
	)

	ftpBytesUploaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cms_ftp_bytes_uploaded_total",
			Help: "Total bytes uploaded to the FTP store",
		},
	)

	// Encoding resolution metrics
	encodingDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cms_encoding_decisions_total",
			Help: "Encoding decisions by resolution source",
		},
		[]string{"source"},
	)

	// AI proxy metrics
	aiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cms_ai_requests_total",
			Help: "Total AI image generation requests",
		},
		[]string{"mode", "status"},
	)

	aiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cms_ai_request_duration_seconds",
			Help:    "AI image generation request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"mode"},
	)

	// CSRF metrics
	csrfRejectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cms_csrf_rejections_total",
			Help: "Total requests rejected for a missing or invalid CSRF token",
		},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest records an HTTP request metric.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordFTPOperation records one bridge operation.
func RecordFTPOperation(operation string, duration time.Duration, success bool) {
	ftpOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	status := "success"
	if !success {
		status = "error"
	}
	ftpOperationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordFTPDownload records bytes downloaded from the store.
func RecordFTPDownload(bytes int64) {
	ftpBytesDownloaded.Add(float64(bytes))
}

// RecordFTPUpload records bytes uploaded to the store.
func RecordFTPUpload(bytes int64) {
	ftpBytesUploaded.Add(float64(bytes))
}

// RecordEncodingDecision records which resolution rule picked the
// encoding of a text read.
func RecordEncodingDecision(source string) {
	encodingDecisionsTotal.WithLabelValues(source).Inc()
}

// RecordAIRequest records an AI proxy request.
func RecordAIRequest(mode string, duration time.Duration, success bool) {
	aiRequestDuration.WithLabelValues(mode).Observe(duration.Seconds())
	status := "success"
	if !success {
		status = "error"
	}
	aiRequestsTotal.WithLabelValues(mode, status).Inc()
}

// RecordCSRFRejection records a request rejected by the CSRF check.
func RecordCSRFRejection() {
	csrfRejectionsTotal.Inc()
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Middleware returns HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		RecordHTTPRequest(r.Method, r.URL.Path, rw.statusCode, time.Since(start))
	})
}
