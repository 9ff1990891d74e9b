package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CartRecomputeTotal counts full cart summary recomputations.
	CartRecomputeTotal prometheus.Counter
	// CartDiscountApplyTotal counts discount code submissions by outcome.
	CartDiscountApplyTotal *prometheus.CounterVec
	// CartQuantityAdjustTotal counts quantity changes by direction.
	CartQuantityAdjustTotal *prometheus.CounterVec
	// CartBasketAddTotal counts remote basket calls by outcome.
	CartBasketAddTotal *prometheus.CounterVec
	// CartSnapshotRestoreTotal counts page-load snapshot restores by outcome.
	CartSnapshotRestoreTotal *prometheus.CounterVec
	// CartSessionsActive tracks open cart sessions.
	CartSessionsActive prometheus.Gauge
)

// MustRegisterDomainMetrics initialises and registers cart collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CartRecomputeTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_recompute_total",
			Help:      "Count of cart summary recomputations.",
		})
		CartDiscountApplyTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_discount_apply_total",
			Help:      "Count of discount code submissions by outcome.",
		}, []string{"result"})
		CartQuantityAdjustTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_quantity_adjust_total",
			Help:      "Count of line quantity adjustments.",
		}, []string{"direction"})
		CartBasketAddTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_basket_add_total",
			Help:      "Count of remote basket add calls by outcome.",
		}, []string{"result"})
		CartSnapshotRestoreTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_snapshot_restore_total",
			Help:      "Count of snapshot restores on page load by outcome.",
		}, []string{"result"})
		CartSessionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cart_sessions_active",
			Help:      "Number of open cart sessions.",
		})

		mustRegisterCollector(reg, CartRecomputeTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				CartRecomputeTotal = v
			}
		})
		for _, vec := range []**prometheus.CounterVec{&CartDiscountApplyTotal, &CartQuantityAdjustTotal, &CartBasketAddTotal, &CartSnapshotRestoreTotal} {
			target := vec
			mustRegisterCollector(reg, *target, func(existing prometheus.Collector) {
				if v, ok := existing.(*prometheus.CounterVec); ok {
					*target = v
				}
			})
		}
		mustRegisterCollector(reg, CartSessionsActive, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Gauge); ok {
				CartSessionsActive = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register metric: %w", err))
	}
}
