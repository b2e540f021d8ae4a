package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// StoreMetrics counts cart mutations and checkout outcomes.
type StoreMetrics struct {
	itemsAdded       prometheus.Counter
	itemsRemoved     prometheus.Counter
	quantityUpdates  prometheus.Counter
	cartsCleared     prometheus.Counter
	ordersPlaced     prometheus.Counter
	checkoutRejected *prometheus.CounterVec
	cacheLookups     *prometheus.CounterVec
}

func NewStoreMetrics() *StoreMetrics {
	return NewStoreMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func NewStoreMetricsWithRegisterer(registerer prometheus.Registerer) *StoreMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &StoreMetrics{
		itemsAdded: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_cart_items_added_total",
			Help: "Total number of product units added to carts",
		}),
		itemsRemoved: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_cart_items_removed_total",
			Help: "Total number of cart lines removed",
		}),
		quantityUpdates: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_cart_quantity_updates_total",
			Help: "Total number of cart line quantity overwrites",
		}),
		cartsCleared: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_carts_cleared_total",
			Help: "Total number of carts cleared",
		}),
		ordersPlaced: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_orders_placed_total",
			Help: "Total number of simulated orders placed",
		}),
		checkoutRejected: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "storefront_checkout_rejected_total",
			Help: "Total number of checkout attempts rejected, by reason",
		}, []string{"reason"}),
		cacheLookups: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "storefront_cart_cache_lookups_total",
			Help: "Cart cache lookups, by result",
		}, []string{"result"}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

// All Record methods accept a nil receiver so callers may run without metrics.

func (m *StoreMetrics) RecordItemsAdded(quantity int) {
	if m == nil {
		return
	}
	m.itemsAdded.Add(float64(quantity))
}

func (m *StoreMetrics) RecordItemRemoved() {
	if m == nil {
		return
	}
	m.itemsRemoved.Inc()
}

func (m *StoreMetrics) RecordQuantityUpdated() {
	if m == nil {
		return
	}
	m.quantityUpdates.Inc()
}

func (m *StoreMetrics) RecordCartCleared() {
	if m == nil {
		return
	}
	m.cartsCleared.Inc()
}

func (m *StoreMetrics) RecordOrderPlaced() {
	if m == nil {
		return
	}
	m.ordersPlaced.Inc()
}

func (m *StoreMetrics) RecordCheckoutRejected(reason string) {
	if m == nil {
		return
	}
	m.checkoutRejected.WithLabelValues(reason).Inc()
}

func (m *StoreMetrics) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}
