//go:build !linux

package gpio

import "errors"

var errUnsupported = errors.Join(ErrHardware, errors.New("not supported on this platform (requires Linux)"))

// CdevDriver is not available on non-Linux platforms.
type CdevDriver struct{}

// NewCdevDriver returns a driver whose calls fail on non-Linux platforms.
func NewCdevDriver(chip string) *CdevDriver {
	return &CdevDriver{}
}

// Setup is not implemented on non-Linux platforms.
func (d *CdevDriver) Setup(pin, frequency int, startDuty float64) error {
	return errUnsupported
}

// Cleanup is not implemented on non-Linux platforms.
func (d *CdevDriver) Cleanup() error {
	return nil
}

// SetDuty is not implemented on non-Linux platforms.
func (d *CdevDriver) SetDuty(duty float64) error {
	return errUnsupported
}

// RpioDriver is not available on non-Linux platforms.
type RpioDriver struct{}

// NewRpioDriver returns a driver whose calls fail on non-Linux platforms.
func NewRpioDriver() *RpioDriver {
	return &RpioDriver{}
}

// Setup is not implemented on non-Linux platforms.
func (d *RpioDriver) Setup(pin, frequency int, startDuty float64) error {
	return errUnsupported
}

// Cleanup is not implemented on non-Linux platforms.
func (d *RpioDriver) Cleanup() error {
	return nil
}

// SetDuty is not implemented on non-Linux platforms.
func (d *RpioDriver) SetDuty(duty float64) error {
	return errUnsupported
}
