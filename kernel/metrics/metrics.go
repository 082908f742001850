package metrics

import (
	"github.com/gabinollier/water-rocket-and-launchpad/kernel/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "padctl"
)

var (
	// PushEvents counts push events by type and reconcile result
	PushEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "push_events_total",
			Help:      "Total number of push events received",
		},
		[]string{"type", "result"}, // result: applied/unchanged/stale
	)

	// Dispatches counts operator actions by outcome
	Dispatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_total",
			Help:      "Total number of dispatched operator actions",
		},
		[]string{"action", "outcome"},
	)

	// InFlight is the number of commands awaiting a transport response
	InFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "inflight_actions",
			Help:      "Commands sent and not yet acknowledged",
		},
	)

	Pressure = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pressure_bar",
			Help:      "Last known launchpad pressure in bars",
		},
	)

	WaterVolume = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "water_volume_liters",
			Help:      "Last known water volume in liters",
		},
	)

	// States is 1 for the current rocket and launchpad state, 0 otherwise
	States = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "state",
			Help:      "Current rocket and launchpad state",
		},
		[]string{"subject", "state"}, // subject: rocket/launchpad
	)
)

// ObserveSnapshot records a refreshed snapshot.
func ObserveSnapshot(s model.Snapshot) {
	Pressure.Set(s.FillTelemetry.Pressure)
	WaterVolume.Set(s.FillTelemetry.WaterVolume)
	for _, rs := range model.RocketStates {
		States.WithLabelValues("rocket", string(rs)).Set(boolGauge(rs == s.RocketState))
	}
	for _, ls := range model.LaunchpadStates {
		States.WithLabelValues("launchpad", string(ls)).Set(boolGauge(ls == s.LaunchpadState))
	}
}

func boolGauge(v bool) float64 {
	if v {
		return 1
	}
	return 0
}
