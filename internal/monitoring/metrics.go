package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"

	"larder/internal/alerts"
	"larder/internal/store"
)

// MetricsCollector exposes placement and inventory metrics to Prometheus
type MetricsCollector struct {
	registry *prometheus.Registry

	movesTotal *prometheus.CounterVec
	occupancy  *prometheus.GaugeVec
	warnings   *prometheus.GaugeVec
	stockCount prometheus.Gauge
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector() *MetricsCollector {
	registry := prometheus.NewRegistry()

	movesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "placement_moves_total",
			Help: "Placement moves by outcome",
		},
		[]string{"outcome"},
	)

	occupancy := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "location_occupancy",
			Help: "Stock items currently assigned to each storage location",
		},
		[]string{"location"},
	)

	warnings := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "inventory_warnings",
			Help: "Active inventory warnings by kind",
		},
		[]string{"kind"},
	)

	stockCount := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "stock_items",
			Help: "Stock items on hand",
		},
	)

	registry.MustRegister(movesTotal, occupancy, warnings, stockCount)

	return &MetricsCollector{
		registry:   registry,
		movesTotal: movesTotal,
		occupancy:  occupancy,
		warnings:   warnings,
		stockCount: stockCount,
	}
}

// Registry returns the collector's Prometheus registry
func (mc *MetricsCollector) Registry() *prometheus.Registry {
	return mc.registry
}

// RecordMove counts a placement move by outcome
func (mc *MetricsCollector) RecordMove(outcome string) {
	mc.movesTotal.WithLabelValues(outcome).Inc()
}

// RefreshInventory re-derives the occupancy, stock and warning gauges from
// store state. Wired as a store subscriber so the gauges track every
// committed mutation.
func (mc *MetricsCollector) RefreshInventory(inv *store.Inventory, eval *alerts.Evaluator) {
	for _, loc := range inv.Locations() {
		count, err := inv.OccupancyOf(loc.ID)
		if err != nil {
			continue
		}
		mc.occupancy.WithLabelValues(loc.ID).Set(float64(count))
	}

	mc.stockCount.Set(float64(len(inv.StockItems(store.StockFilter{}))))

	counts := make(map[string]float64)
	for _, w := range eval.Warnings() {
		counts[string(w.Kind)]++
	}
	mc.warnings.Reset()
	for kind, n := range counts {
		mc.warnings.WithLabelValues(kind).Set(n)
	}
}
