// Package gpio provides PWM output drivers with hardware abstraction.
// The cdev driver uses the Linux GPIO character device with software PWM,
// the rpio driver uses the BCM2835 hardware PWM peripheral.
// The fake implementation allows testing without hardware.
package gpio

import (
	"errors"
	"fmt"
)

// ErrHardware is wrapped by every driver failure.
var ErrHardware = errors.New("gpio: hardware failure")

// Driver performs raw setup, teardown and duty-cycle writes on one PWM channel.
type Driver interface {
	// Setup acquires the pin and starts PWM at the given frequency (Hz)
	// and duty cycle (percent, 0..100).
	Setup(pin, frequency int, startDuty float64) error

	// Cleanup stops PWM and releases the pin. Safe to call after a failed Setup.
	Cleanup() error

	// SetDuty changes the duty cycle (percent, 0..100).
	SetDuty(duty float64) error
}

// Driver names accepted by New.
const (
	DriverFake = "fake"
	DriverCdev = "cdev"
	DriverRPi  = "rpi" // alias of cdev
	DriverRpio = "rpio"
)

// DefaultChip is the GPIO character device used by the cdev driver.
const DefaultChip = "gpiochip0"

// New returns the driver with the given name. No hardware is touched until Setup.
func New(name, chip string) (Driver, error) {
	switch name {
	case DriverFake:
		return NewFakeDriver(), nil
	case DriverCdev, DriverRPi:
		if chip == "" {
			chip = DefaultChip
		}
		return NewCdevDriver(chip), nil
	case DriverRpio:
		return NewRpioDriver(), nil
	default:
		return nil, fmt.Errorf("unknown gpio driver %q (use %s, %s, %s or %s)", name, DriverFake, DriverCdev, DriverRPi, DriverRpio)
	}
}

func clampDuty(duty float64) float64 {
	switch {
	case duty < 0:
		return 0
	case duty > 100:
		return 100
	}
	return duty
}
