package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "immoreims",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "immoreims",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "immoreims",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 7),
	}, []string{"method", "path"})

	// Dataset metrics
	DatasetLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "immoreims",
		Subsystem: "dataset",
		Name:      "loads_total",
		Help:      "Dataset loads by outcome",
	}, []string{"outcome"})

	DatasetLoadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "immoreims",
		Subsystem: "dataset",
		Name:      "load_duration_seconds",
		Help:      "Duration of a dataset fetch and decode",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	})

	DatasetRows = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "immoreims",
		Subsystem: "dataset",
		Name:      "rows",
		Help:      "Transactions held by the current snapshot",
	})

	DatasetDroppedRows = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "immoreims",
		Subsystem: "dataset",
		Name:      "dropped_rows",
		Help:      "Rows dropped from the current snapshot for missing coordinates",
	})

	DatasetInvalidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "immoreims",
		Subsystem: "dataset",
		Name:      "invalidations_total",
		Help:      "Snapshot invalidations by origin",
	}, []string{"origin"})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "immoreims",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "immoreims",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})

	Renders = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "immoreims",
		Subsystem: "dashboard",
		Name:      "renders_total",
		Help:      "Dashboard view models rendered",
	})

	RenderedRows = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "immoreims",
		Subsystem: "dashboard",
		Name:      "filtered_rows",
		Help:      "Rows matching the filter of a render",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 9),
	})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "immoreims",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving the Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c *fiber.Ctx) error {
		handler(c.Context())
		return nil
	}
}
