// Package metrics exposes control loop readings as Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sweeney/fan-pwm-control/internal/control"
	"github.com/sweeney/fan-pwm-control/internal/logic"
)

const namespace = "fan_pwm_control"

var bands = []logic.Band{logic.BandOff, logic.BandSticky, logic.BandLinear, logic.BandMax}

var states = []control.State{
	control.StateUninitialized,
	control.StateRunning,
	control.StateShuttingDown,
	control.StateStopped,
}

// Recorder is a control.Observer that keeps one private registry.
type Recorder struct {
	registry *prometheus.Registry

	temperature prometheus.Gauge
	targetDuty  prometheus.Gauge
	duty        prometheus.Gauge
	iterations  prometheus.Counter
	suppressed  prometheus.Counter
	band        *prometheus.GaugeVec
	state       *prometheus.GaugeVec
}

// NewRecorder creates a Recorder with the fan metrics and the standard
// Go and process collectors registered.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	r := &Recorder{
		registry: reg,
		temperature: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "temperature_celsius",
			Help:      "Last temperature read from the sensor",
		}),
		targetDuty: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "target_duty_percent",
			Help:      "Duty cycle chosen by the fan curve",
		}),
		duty: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "duty_percent",
			Help:      "Duty cycle currently commanded to the fan",
		}),
		iterations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "iterations_total",
			Help:      "Completed control loop iterations",
		}),
		suppressed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suppressed_changes_total",
			Help:      "Iterations whose target duty was held back by the change threshold",
		}),
		band: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "band",
			Help:      "Fan curve band of the last iteration (1 for the active band)",
		}, []string{"band"}),
		state: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "state",
			Help:      "Control loop state (1 for the current state)",
		}, []string{"state"}),
	}
	r.StateChanged(control.StateUninitialized)
	return r
}

// Observe records one iteration.
func (r *Recorder) Observe(reading logic.Reading) {
	r.temperature.Set(reading.Temperature)
	r.targetDuty.Set(reading.Decision.Duty)
	r.duty.Set(reading.Duty)
	r.iterations.Inc()
	if reading.Suppressed() {
		r.suppressed.Inc()
	}
	for _, b := range bands {
		r.band.WithLabelValues(string(b)).Set(boolGauge(b == reading.Decision.Band))
	}
}

// StateChanged records a loop state transition.
func (r *Recorder) StateChanged(s control.State) {
	for _, st := range states {
		r.state.WithLabelValues(string(st)).Set(boolGauge(st == s))
	}
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
