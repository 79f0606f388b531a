package api

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uttaradit-pharmacy/edextemp/internal/models"
)

const metricsNamespace = "edextemp"

type Metrics struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	prepsCreated    *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	metrics := &Metrics{
		registry: registry,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		prepsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "preps_created_total",
			Help:      "Compounded preparations recorded, by station and mode.",
		}, []string{"location", "mode"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		metrics.requests,
		metrics.requestDuration,
		metrics.prepsCreated,
	)
	return metrics
}

// Middleware records every request under its route pattern, not the raw
// path, so ids do not explode label cardinality.
func (metrics *Metrics) Middleware(c *fiber.Ctx) error {
	started := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	if err != nil {
		if fiberErr, ok := err.(*fiber.Error); ok {
			status = fiberErr.Code
		} else {
			status = fiber.StatusInternalServerError
		}
	}

	route := c.Route().Path
	metrics.requests.WithLabelValues(route, c.Method(), strconv.Itoa(status)).Inc()
	metrics.requestDuration.WithLabelValues(route, c.Method()).Observe(time.Since(started).Seconds())
	return err
}

func (metrics *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(metrics.registry, promhttp.HandlerOpts{}))
}

func (metrics *Metrics) observePrepCreated(prep models.Prep) {
	metrics.prepsCreated.WithLabelValues(prep.Location, prep.Mode).Inc()
}
