package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMiddleware records request counts, latency and in-flight requests
// labelled by route pattern.
type PrometheusMiddleware struct {
	requestCount    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inFlight        prometheus.Gauge
	skip            map[string]bool
}

// NewPrometheusMiddleware registers the collectors with reg. Requests to skipPaths
// (default /metrics and /healthz) are not observed.
func NewPrometheusMiddleware(reg prometheus.Registerer, skipPaths ...string) (*PrometheusMiddleware, error) {
	if len(skipPaths) == 0 {
		skipPaths = []string{"/metrics", "/healthz"}
	}
	m := &PrometheusMiddleware{
		requestCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "path", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "HTTP request latency by method and route.",
			// upper buckets cover multi-MB uploads
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"method", "path"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "HTTP requests currently being served.",
		}),
		skip: make(map[string]bool, len(skipPaths)),
	}
	for _, p := range skipPaths {
		m.skip[p] = true
	}

	for _, c := range []prometheus.Collector{m.requestCount, m.requestDuration, m.inFlight} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Handler returns the fiber middleware handler.
func (m *PrometheusMiddleware) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m.skip[c.Path()] {
			return c.Next()
		}

		m.inFlight.Inc()
		defer m.inFlight.Dec()

		start := time.Now()
		err := c.Next()
		status := statusOf(c, err)

		m.requestCount.WithLabelValues(c.Method(), routeLabel(c, status), strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(c.Method(), routeLabel(c, status)).Observe(time.Since(start).Seconds())
		return err
	}
}

// routeLabel uses the matched pattern (e.g. /api/photos/:id) so label cardinality
// stays bounded. Requests no route matched share one label.
func routeLabel(c *fiber.Ctx, status int) string {
	path := c.Route().Path
	if status == fiber.StatusNotFound && (path == "" || path == "/") && c.Path() != "/" {
		return "unmatched"
	}
	if path == "" {
		return c.Path()
	}
	return path
}
