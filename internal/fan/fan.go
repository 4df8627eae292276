// Package fan provides the fan facade and its decorators.
// All GPIO access goes through a Facade; decorators wrap one inner Facade
// and forward selectively, so any subset composes in any order.
package fan

import (
	"log/slog"

	"github.com/sweeney/fan-pwm-control/internal/gpio"
)

// Facade controls one PWM fan and reports the commanded duty cycle.
type Facade interface {
	// Setup acquires the pin and starts the fan at startDuty percent.
	Setup(pin, frequency int, startDuty float64) error

	// Cleanup stops the fan and releases the pin.
	Cleanup() error

	// Duty returns the last commanded duty cycle in percent.
	Duty() float64

	// SetDuty commands a new duty cycle in percent.
	SetDuty(duty float64) error
}

// NewChain builds the standard composition: threshold, then logging, then the controller.
func NewChain(driver gpio.Driver, threshold float64, logger *slog.Logger) Facade {
	var f Facade = NewController(driver)
	f = NewLoggingFacade(f, logger)
	f = NewThresholdFacade(f, threshold, logger)
	return f
}
