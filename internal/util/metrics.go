package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Total number of orders created at checkout",
	})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Total number of failed checkouts",
	}, []string{"reason"})

	OrdersStatusAdvanced = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_status_advanced_total",
		Help: "Total number of order status transitions written",
	}, []string{"status"})

	BoardEventsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "board_events_applied_total",
		Help: "Total number of change events merged into the order board",
	}, []string{"type"})

	CatalogCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_cache_hits_total",
		Help: "Total number of catalog reads served from the cache",
	})

	CatalogCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_cache_misses_total",
		Help: "Total number of catalog reads that went to the backend",
	})

	CatalogStaleServes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_stale_serves_total",
		Help: "Total number of catalog reads served from a stale cache after a backend failure",
	})

	UploadsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "uploads_failed_total",
		Help: "Total number of failed product image uploads",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
