package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics holds Prometheus metrics for business-level observability
// of the order pipeline.
type BusinessMetrics struct {
	// Orders
	OrdersCreated   *prometheus.CounterVec
	OrdersCancelled prometheus.Counter
	OrderValue      prometheus.Histogram
	OrderItemCount  prometheus.Histogram

	// Discounts
	PromoApplied        *prometheus.CounterVec
	LoyaltyPointsSpent  prometheus.Counter
	LoyaltyPointsEarned prometheus.Counter

	// Cart
	CartItemsAdded prometheus.Counter

	// Tariff cache
	TariffCacheHits   prometheus.Counter
	TariffCacheMisses prometheus.Counter
}

// NewBusinessMetrics creates and registers all business metrics.
func NewBusinessMetrics(namespace string) *BusinessMetrics {
	if namespace == "" {
		namespace = "parapharma"
	}

	subsystem := "business"

	return &BusinessMetrics{
		OrdersCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "orders_created_total",
				Help:      "Total orders created",
			},
			[]string{"delivery_type"},
		),
		OrdersCancelled: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "orders_cancelled_total",
				Help:      "Total orders cancelled",
			},
		),
		OrderValue: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_value",
				Help:      "Distribution of order grand totals in DZD",
				Buckets:   []float64{500, 1000, 2500, 5000, 10000, 25000, 50000},
			},
		),
		OrderItemCount: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_item_count",
				Help:      "Distribution of line counts per order",
				Buckets:   []float64{1, 2, 3, 5, 8, 13, 21},
			},
		),
		PromoApplied: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "promo_applied_total",
				Help:      "Total promo codes applied to orders",
			},
			[]string{"type"},
		),
		LoyaltyPointsSpent: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "loyalty_points_spent_total",
				Help:      "Total loyalty points converted to discounts",
			},
		),
		LoyaltyPointsEarned: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "loyalty_points_earned_total",
				Help:      "Total loyalty points awarded on orders",
			},
		),
		CartItemsAdded: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_items_added_total",
				Help:      "Total items added to carts",
			},
		),
		TariffCacheHits: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "tariff_cache_hits_total",
				Help:      "Tariff lookups served from cache",
			},
		),
		TariffCacheMisses: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "tariff_cache_misses_total",
				Help:      "Tariff lookups that fell through to the database",
			},
		),
	}
}
