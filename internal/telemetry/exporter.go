package telemetry

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Exporter registers the Prometheus gauges/counter named in SPEC_FULL.md
// §4.12 and keeps them in sync with a Cell on a fixed interval. Grounded on
// danielkucera-gofutura's RegisterRegMetrics/UpdatePrometheus split: gauges
// built once at construction time, a separate update step fed from decoded
// state (here, Cell.Load) rather than touching the controller directly.
type Exporter struct {
	cell *Cell

	temperature prometheus.Gauge
	gradient    prometheus.Gauge
	duty        prometheus.Gauge
	ssrOn       prometheus.Gauge
	mode        prometheus.Gauge
	faults      prometheus.Counter

	lastFaultCount int
}

// NewExporter builds an Exporter and registers its metrics against reg. The
// caller owns reg's lifetime (typically prometheus.NewRegistry() wired to a
// promhttp.HandlerFor in cmd/kilnctl).
func NewExporter(cell *Cell, reg prometheus.Registerer) *Exporter {
	e := &Exporter{
		cell: cell,
		temperature: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kiln_temperature_mdeg",
			Help: "Measured kiln temperature, millidegrees Celsius.",
		}),
		gradient: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kiln_gradient_cph",
			Help: "Filtered temperature gradient, degrees Celsius per hour.",
		}),
		duty: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kiln_duty_ratio",
			Help: "Commanded SSR duty ratio in [0,1].",
		}),
		ssrOn: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kiln_ssr_on",
			Help: "1 if the SSR is currently commanded on, else 0.",
		}),
		mode: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kiln_control_mode",
			Help: "Active control mode: 0=idle 1=heat 2=cold_brake 3=cold_passive 4=safety_hold.",
		}),
		faults: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kiln_sensor_faults_total",
			Help: "Cumulative count of sensor faults observed by the tick driver.",
		}),
	}

	reg.MustRegister(e.temperature, e.gradient, e.duty, e.ssrOn, e.mode, e.faults)
	return e
}

// Update pushes one Cell.Load() snapshot into the registered metrics. The
// faults counter only ever increases; Update adds each rise of the
// snapshot's consecutive SensorFaultCount since the previous poll and adds
// nothing when it falls (the run of faults ended), so repeated polls of an
// unchanged snapshot don't double-count.
func (e *Exporter) Update() {
	s := e.cell.Load()

	e.temperature.Set(float64(s.MeasuredMdeg))
	e.gradient.Set(q16ToFloat(s.GradientPerHourQ16))
	e.duty.Set(q16ToFloat(s.DutyQ16))
	if s.SSROn {
		e.ssrOn.Set(1)
	} else {
		e.ssrOn.Set(0)
	}
	e.mode.Set(float64(s.Mode))

	if delta := s.SensorFaultCount - e.lastFaultCount; delta > 0 {
		e.faults.Add(float64(delta))
	}
	e.lastFaultCount = s.SensorFaultCount
}

// Run polls Update on interval until ctx is canceled, mirroring
// danielkucera-gofutura's `for range time.Tick(pollInterval)` main loop.
func (e *Exporter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.Update()
		}
	}
}

// q16ToFloat renders a raw Q16.16 int32 as a float64 for metrics export
// only; no control-path code may use floating point (spec.md §1).
func q16ToFloat(raw int32) float64 {
	return float64(raw) / 65536.0
}
