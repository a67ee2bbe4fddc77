package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProductMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_product_mutations_total",
		Help: "Total number of successful product mutations",
	}, []string{"action"})

	ProductMutationsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_product_mutations_failed_total",
		Help: "Total number of rejected or failed product mutations",
	}, []string{"action", "reason"})

	SignificantPriceChangesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_significant_price_changes_total",
		Help: "Total number of price updates above the significant change threshold",
	})

	CacheRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_cache_requests_total",
		Help: "Cache lookups by result",
	}, []string{"result"})

	CacheErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_cache_errors_total",
		Help: "Cache backend errors by operation",
	}, []string{"op"})

	StoreQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_store_query_latency_seconds",
		Help:    "Latency of store queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	NotificationsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_notifications_published_total",
		Help: "Total number of notifications delivered to the broker",
	}, []string{"transport", "urgency"})

	NotificationsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_notifications_failed_total",
		Help: "Total number of notifications that could not be delivered",
	}, []string{"transport"})

	InboundMessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_inbound_messages_total",
		Help: "Inbound broker messages by outcome",
	}, []string{"outcome"})

	IdentityRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_identity_requests_total",
		Help: "Calls to the identity service by outcome",
	}, []string{"outcome"})

	RateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_rate_limited_total",
		Help: "Total number of requests rejected by the rate limiter",
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
