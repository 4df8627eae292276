package mqtt

import (
	"log/slog"

	"github.com/sweeney/fan-pwm-control/internal/control"
	"github.com/sweeney/fan-pwm-control/internal/logic"
)

// Telemetry forwards loop readings to a Publisher. Publish failures are
// logged and never reach the loop.
type Telemetry struct {
	pub    Publisher
	logger *slog.Logger
	failed bool
}

// NewTelemetry wraps pub as a control.Observer.
func NewTelemetry(pub Publisher, logger *slog.Logger) *Telemetry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Telemetry{pub: pub, logger: logger.With("component", "mqtt")}
}

// Observe publishes r. Consecutive failures are logged once.
func (t *Telemetry) Observe(r logic.Reading) {
	if err := t.pub.Publish(r); err != nil {
		if !t.failed {
			t.logger.Warn("publish reading failed", "error", err)
		}
		t.failed = true
		return
	}
	if t.failed {
		t.logger.Info("publish reading recovered")
	}
	t.failed = false
}

// StateChanged is a no-op; lifecycle events are published by the caller.
func (t *Telemetry) StateChanged(control.State) {}
