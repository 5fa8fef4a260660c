package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CartMutations counts cart changes by operation (add, remove, clear).
	CartMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phonestore_cart_mutations_total",
			Help: "Total number of cart mutations",
		},
		[]string{"op"},
	)

	// CartStoreErrors counts failed store round trips by operation (load, save, clear).
	CartStoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phonestore_cart_store_errors_total",
			Help: "Total number of cart store failures",
		},
		[]string{"op"},
	)

	// CartCorruptLoads counts stored carts that could not be decoded and were discarded.
	CartCorruptLoads = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "phonestore_cart_corrupt_loads_total",
			Help: "Total number of stored carts discarded as malformed",
		},
	)

	// CatalogRequests counts remote catalog calls by endpoint and outcome.
	CatalogRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phonestore_catalog_requests_total",
			Help: "Total number of remote catalog requests",
		},
		[]string{"endpoint", "outcome"},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// HTTP records request count and latency per route pattern.
func HTTP() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		path := c.Route().Path
		if path == "" {
			path = "unknown"
		}
		labels := []string{c.Method(), path, strconv.Itoa(status)}
		httpRequestsTotal.WithLabelValues(labels...).Inc()
		httpRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
		return err
	}
}
