//go:build linux

package gpio

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

const consumer = "fan-pwm-control"

// CdevDriver drives a fan with software PWM on a Linux GPIO character device line.
// The PWM waveform is generated by a goroutine started in Setup and joined in Cleanup.
type CdevDriver struct {
	chipName string

	chip *gpiocdev.Chip
	line *gpiocdev.Line

	duty atomic.Uint64 // math.Float64bits of the duty percent
	stop chan struct{}
	wg   sync.WaitGroup
}

// NewCdevDriver creates a software PWM driver for the given chip (e.g. "gpiochip0").
func NewCdevDriver(chip string) *CdevDriver {
	return &CdevDriver{chipName: chip}
}

// Setup requests the pin as an output, initially low, and starts the PWM goroutine.
func (d *CdevDriver) Setup(pin, frequency int, startDuty float64) error {
	if frequency <= 0 {
		return fmt.Errorf("%w: pwm frequency must be > 0, got %d", ErrHardware, frequency)
	}

	chip, err := gpiocdev.NewChip(d.chipName, gpiocdev.WithConsumer(consumer))
	if err != nil {
		return fmt.Errorf("%w: open gpio chip %s: %w", ErrHardware, d.chipName, err)
	}
	d.chip = chip

	line, err := chip.RequestLine(pin, gpiocdev.AsOutput(0))
	if err != nil {
		return fmt.Errorf("%w: request fan pin %d: %w", ErrHardware, pin, err)
	}
	d.line = line

	d.storeDuty(startDuty)
	d.stop = make(chan struct{})
	period := time.Duration(float64(time.Second) / float64(frequency))

	d.wg.Add(1)
	go d.run(period, d.stop)

	return nil
}

// SetDuty changes the duty cycle used from the next PWM period on.
func (d *CdevDriver) SetDuty(duty float64) error {
	if d.line == nil {
		return fmt.Errorf("%w: set duty before setup", ErrHardware)
	}
	d.storeDuty(duty)
	return nil
}

// Cleanup stops the PWM goroutine, drives the pin low and releases it.
// The line is reconfigured as input with pull-down, matching Pi boot defaults.
func (d *CdevDriver) Cleanup() error {
	var errs []error

	if d.stop != nil {
		close(d.stop)
		d.wg.Wait()
		d.stop = nil
	}

	if d.line != nil {
		if err := d.line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("drive fan pin low: %w", err))
		}
		if err := d.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure fan pin: %w", err))
		}
		if err := d.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close fan pin: %w", err))
		}
		d.line = nil
	}
	if d.chip != nil {
		if err := d.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
		d.chip = nil
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: close errors: %v", ErrHardware, errs)
	}
	return nil
}

func (d *CdevDriver) storeDuty(duty float64) {
	d.duty.Store(math.Float64bits(clampDuty(duty)))
}

func (d *CdevDriver) loadDuty() float64 {
	return math.Float64frombits(d.duty.Load())
}

// run generates the waveform: high for duty% of each period, low for the rest.
// 0% and 100% hold the line steady.
func (d *CdevDriver) run(period time.Duration, stop <-chan struct{}) {
	defer d.wg.Done()

	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	wait := func(dur time.Duration) bool {
		if dur <= 0 {
			return true
		}
		timer.Reset(dur)
		select {
		case <-stop:
			return false
		case <-timer.C:
			return true
		}
	}

	for {
		high := time.Duration(float64(period) * d.loadDuty() / 100)
		if high > 0 {
			d.line.SetValue(1)
		}
		if !wait(high) {
			return
		}
		if high < period {
			d.line.SetValue(0)
		}
		if !wait(period - high) {
			return
		}
	}
}
