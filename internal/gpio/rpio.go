//go:build linux

package gpio

import (
	"fmt"
	"math"

	"github.com/stianeikeland/go-rpio/v4"
)

// PWM clock limits of the BCM2835 peripheral (Hz).
const (
	pwmClockMin = 4688
	pwmClockMax = 9600000
)

// hardwarePWMPins are the BCM pins wired to the PWM peripheral.
var hardwarePWMPins = map[int]bool{12: true, 13: true, 18: true, 19: true}

// RpioDriver drives a fan with the Raspberry Pi hardware PWM peripheral
// through /dev/gpiomem.
type RpioDriver struct {
	pin    rpio.Pin
	cycle  uint32
	opened bool
}

// NewRpioDriver creates a hardware PWM driver.
func NewRpioDriver() *RpioDriver {
	return &RpioDriver{}
}

// Setup maps the GPIO registers, switches the pin to PWM mode and sets the
// PWM clock so that one cycle lasts 1/frequency seconds.
func (d *RpioDriver) Setup(pin, frequency int, startDuty float64) error {
	if !hardwarePWMPins[pin] {
		return fmt.Errorf("%w: pin %d has no hardware pwm (use 12, 13, 18 or 19)", ErrHardware, pin)
	}
	cycle, err := pwmCycle(frequency)
	if err != nil {
		return err
	}

	if err := rpio.Open(); err != nil {
		return fmt.Errorf("%w: open gpio memory: %w", ErrHardware, err)
	}
	d.opened = true
	d.pin = rpio.Pin(pin)
	d.cycle = cycle

	d.pin.Mode(rpio.Pwm)
	d.pin.Freq(frequency * int(cycle))
	d.pin.DutyCycle(d.dutyLen(startDuty), d.cycle)
	return nil
}

// SetDuty writes the new duty cycle to the PWM data register.
func (d *RpioDriver) SetDuty(duty float64) error {
	if !d.opened {
		return fmt.Errorf("%w: set duty before setup", ErrHardware)
	}
	d.pin.DutyCycle(d.dutyLen(duty), d.cycle)
	return nil
}

// Cleanup stops the fan, returns the pin to a low output and unmaps the registers.
func (d *RpioDriver) Cleanup() error {
	if !d.opened {
		return nil
	}
	d.pin.DutyCycle(0, d.cycle)
	d.pin.Output()
	d.pin.Low()
	d.opened = false
	if err := rpio.Close(); err != nil {
		return fmt.Errorf("%w: close gpio memory: %w", ErrHardware, err)
	}
	return nil
}

func (d *RpioDriver) dutyLen(duty float64) uint32 {
	return uint32(math.Round(clampDuty(duty) / 100 * float64(d.cycle)))
}

// pwmCycle picks the cycle length (clock ticks per PWM period) so the PWM
// clock stays within the peripheral limits. Resolution is at least 1%.
func pwmCycle(frequency int) (uint32, error) {
	if frequency <= 0 {
		return 0, fmt.Errorf("%w: pwm frequency must be > 0, got %d", ErrHardware, frequency)
	}
	cycle := 100
	for frequency*cycle < pwmClockMin {
		cycle *= 10
	}
	if frequency*cycle > pwmClockMax {
		return 0, fmt.Errorf("%w: pwm frequency %d Hz is too high for hardware pwm", ErrHardware, frequency)
	}
	return uint32(cycle), nil
}
