package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// SaleCommitsTotal counts commit gateway outcomes (committed, conflict).
	SaleCommitsTotal *prometheus.CounterVec
	// SaleRevenueTotal accumulates committed revenue in minor units.
	SaleRevenueTotal prometheus.Counter
	// FeedEventsTotal counts live feed ingestion outcomes (applied, duplicate, fetch_error).
	FeedEventsTotal *prometheus.CounterVec
	// NotificationsTotal counts notification decisions per channel (sent, skipped, error).
	NotificationsTotal *prometheus.CounterVec
	// AggregationErrorsTotal counts analytics dimensions that failed and fell back to empty results.
	AggregationErrorsTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		SaleCommitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sale_commits_total",
			Help:      "Count of sale commit attempts by outcome.",
		}, []string{"result"})
		SaleRevenueTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sale_revenue_minor_units_total",
			Help:      "Committed sale revenue accumulated in minor currency units.",
		})
		FeedEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_events_total",
			Help:      "Count of live feed event ingestion outcomes.",
		}, []string{"result"})
		NotificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Count of notification decisions by channel and result.",
		}, []string{"channel", "result"})
		AggregationErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggregation_errors_total",
			Help:      "Count of analytics dimensions that failed and returned empty results.",
		}, []string{"dimension"})

		mustRegisterCollector(reg, SaleCommitsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				SaleCommitsTotal = v
			}
		})
		mustRegisterCollector(reg, SaleRevenueTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				SaleRevenueTotal = v
			}
		})
		mustRegisterCollector(reg, FeedEventsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				FeedEventsTotal = v
			}
		})
		mustRegisterCollector(reg, NotificationsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				NotificationsTotal = v
			}
		})
		mustRegisterCollector(reg, AggregationErrorsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				AggregationErrorsTotal = v
			}
		})
	})
}

// IncSaleCommit bumps the commit outcome counter when metrics are registered.
func IncSaleCommit(result string) {
	if SaleCommitsTotal != nil {
		SaleCommitsTotal.WithLabelValues(result).Inc()
	}
}

// AddSaleRevenue records committed revenue when metrics are registered.
func AddSaleRevenue(minorUnits int64) {
	if SaleRevenueTotal != nil && minorUnits > 0 {
		SaleRevenueTotal.Add(float64(minorUnits))
	}
}

// IncFeedEvent bumps the live feed ingestion counter when metrics are registered.
func IncFeedEvent(result string) {
	if FeedEventsTotal != nil {
		FeedEventsTotal.WithLabelValues(result).Inc()
	}
}

// IncNotification bumps the notification decision counter when metrics are registered.
func IncNotification(channel, result string) {
	if NotificationsTotal != nil {
		NotificationsTotal.WithLabelValues(channel, result).Inc()
	}
}

// IncAggregationError bumps the failed-dimension counter when metrics are registered.
func IncAggregationError(dimension string) {
	if AggregationErrorsTotal != nil {
		AggregationErrorsTotal.WithLabelValues(dimension).Inc()
	}
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
