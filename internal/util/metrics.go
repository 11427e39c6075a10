package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CartMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Total number of cart mutations",
	}, []string{"op"})

	CartPersistFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cart_persist_failures_total",
		Help: "Total number of failed cart cache writes",
	})

	CartRestoreFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cart_restore_failures_total",
		Help: "Total number of unreadable cart snapshots found at startup",
	})

	ProductMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_product_mutations_total",
		Help: "Total number of product mutations",
	}, []string{"op"})

	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Total number of orders created",
	})

	OrderStatusChangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_changes_total",
		Help: "Total number of order status updates",
	}, []string{"status"})

	CheckoutsStartedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkouts_started_total",
		Help: "Total number of checkout sessions opened",
	})

	PaymentSuccessTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_success_total",
		Help: "Total number of successful payments",
	})

	PaymentFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_failed_total",
		Help: "Total number of failed or dismissed payments",
	})

	PaymentLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "payment_latency_seconds",
		Help:    "Time between opening a payment and its callback",
		Buckets: prometheus.DefBuckets,
	})

	EventsPublishFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "events_publish_failed_total",
		Help: "Total number of domain events that could not be published",
	}, []string{"event_type"})

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
