package sections

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeLoaded      = "loaded"
	outcomeReplaced    = "replaced"
	outcomeUnloaded    = "unloaded"
	outcomeDispatched  = "dispatched"
	outcomeNoHook      = "no_hook"
	outcomeNoInstance  = "no_instance"
	outcomeUnknownType = "unknown_type"
	outcomeFailed      = "failed"
)

var (
	metricsOnce     sync.Once
	signalsTotal    *prometheus.CounterVec
	liveInstances   prometheus.Gauge
	factoryFailures *prometheus.CounterVec
)

func initMetrics() {
	metricsOnce.Do(func() {
		signalsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront_theme",
			Subsystem: "sections",
			Name:      "signals_total",
			Help:      "Lifecycle signals handled by the section registry",
		}, []string{"signal", "outcome"})

		liveInstances = promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "storefront_theme",
			Subsystem: "sections",
			Name:      "live_instances",
			Help:      "Section instances currently loaded across registries",
		})

		factoryFailures = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront_theme",
			Subsystem: "sections",
			Name:      "factory_failures_total",
			Help:      "Sections that failed to initialise",
		}, []string{"type"})
	})
}

func observeSignal(kind SignalKind, outcome string) {
	signalsTotal.WithLabelValues(string(kind), outcome).Inc()
}
