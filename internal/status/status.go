// Package status provides a thread-safe status tracker for the fan-pwm-control daemon.
// It is written by the control loop and read by HTTP handlers and MQTT events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/fan-pwm-control/internal/control"
	"github.com/sweeney/fan-pwm-control/internal/logic"
)

// Config contains daemon configuration for display.
type Config struct {
	Sensor          string
	Driver          string
	Pin             int
	PWMFrequency    int
	PollMs          int64
	ChangeThreshold float64
	DisableTemp     float64
	Min             logic.Point
	Max             logic.Point
	Broker          string
	HTTPAddr        string
}

// ConfigFrom builds the display config from a validated control config.
func ConfigFrom(cfg logic.Config, driver, broker, httpAddr string) Config {
	return Config{
		Sensor:          cfg.SensorSource,
		Driver:          driver,
		Pin:             cfg.Pin,
		PWMFrequency:    cfg.PWMFrequency,
		PollMs:          cfg.PollInterval.Milliseconds(),
		ChangeThreshold: cfg.ChangeThreshold,
		DisableTemp:     cfg.DisableTemp,
		Min:             cfg.Min,
		Max:             cfg.Max,
		Broker:          broker,
		HTTPAddr:        httpAddr,
	}
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type and safe to use after the lock is released.
type Snapshot struct {
	State         control.State
	Last          logic.Reading
	HasReading    bool
	Iterations    int
	Suppressed    int
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
// It implements control.Observer.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			State:     control.StateUninitialized,
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Observe records the latest iteration.
func (t *Tracker) Observe(r logic.Reading) {
	t.mu.Lock()
	t.snap.Last = r
	t.snap.HasReading = true
	t.snap.Iterations++
	if r.Suppressed() {
		t.snap.Suppressed++
	}
	t.mu.Unlock()
}

// StateChanged records the control loop state.
func (t *Tracker) StateChanged(s control.State) {
	t.mu.Lock()
	t.snap.State = s
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
