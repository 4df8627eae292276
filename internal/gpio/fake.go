package gpio

import "fmt"

// FakeDriver is a test double that records driver calls without touching hardware.
// It is also selectable at runtime ("fake") for running on machines without a fan.
type FakeDriver struct {
	// Calls records every call in order, e.g. "setup(18, 25, 0)", "set_duty(40)".
	Calls []string

	// Pin, Frequency and Duty hold the last values written.
	Pin       int
	Frequency int
	Duty      float64

	// SetupDone tracks if Setup succeeded; CleanedUp tracks if Cleanup was called.
	SetupDone bool
	CleanedUp bool

	// SetupError, SetDutyError and CleanupError, if set, are returned by the
	// matching call (wrapped in ErrHardware).
	SetupError   error
	SetDutyError error
	CleanupError error
}

// NewFakeDriver creates a FakeDriver.
func NewFakeDriver() *FakeDriver {
	return &FakeDriver{}
}

// Setup records the call.
func (f *FakeDriver) Setup(pin, frequency int, startDuty float64) error {
	f.Calls = append(f.Calls, fmt.Sprintf("setup(%d, %d, %g)", pin, frequency, startDuty))
	if f.SetupError != nil {
		return fmt.Errorf("%w: %w", ErrHardware, f.SetupError)
	}
	f.Pin = pin
	f.Frequency = frequency
	f.Duty = clampDuty(startDuty)
	f.SetupDone = true
	return nil
}

// Cleanup records the call and marks the driver as cleaned up.
func (f *FakeDriver) Cleanup() error {
	f.Calls = append(f.Calls, "cleanup()")
	f.CleanedUp = true
	if f.CleanupError != nil {
		return fmt.Errorf("%w: %w", ErrHardware, f.CleanupError)
	}
	return nil
}

// SetDuty records the call and the new duty.
func (f *FakeDriver) SetDuty(duty float64) error {
	f.Calls = append(f.Calls, fmt.Sprintf("set_duty(%g)", duty))
	if f.SetDutyError != nil {
		return fmt.Errorf("%w: %w", ErrHardware, f.SetDutyError)
	}
	f.Duty = clampDuty(duty)
	return nil
}

// Reset clears recorded calls and errors.
func (f *FakeDriver) Reset() {
	*f = FakeDriver{}
}
