package fan

import (
	"github.com/sweeney/fan-pwm-control/internal/gpio"
)

// Controller is the base Facade. It owns the commanded duty and delegates
// physical writes to a gpio.Driver. The duty is tracked locally and never
// read back from hardware.
type Controller struct {
	driver gpio.Driver
	duty   float64
}

// NewController creates a Controller for the given driver. The commanded duty starts at 0.
func NewController(driver gpio.Driver) *Controller {
	return &Controller{driver: driver}
}

// Setup forwards to the driver and records startDuty once the driver accepted it.
func (c *Controller) Setup(pin, frequency int, startDuty float64) error {
	if err := c.driver.Setup(pin, frequency, startDuty); err != nil {
		return err
	}
	c.duty = startDuty
	return nil
}

// Cleanup forwards to the driver.
func (c *Controller) Cleanup() error {
	return c.driver.Cleanup()
}

// Duty returns the last commanded duty.
func (c *Controller) Duty() float64 {
	return c.duty
}

// SetDuty writes the duty to the driver, then records it.
// On driver failure the recorded duty is left unchanged.
func (c *Controller) SetDuty(duty float64) error {
	if err := c.driver.SetDuty(duty); err != nil {
		return err
	}
	c.duty = duty
	return nil
}
