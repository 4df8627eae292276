// Package logic contains the pure fan control law and its configuration.
// This package has NO external dependencies (no GPIO, sensor files, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrConfigInvalid is wrapped by every configuration validation failure.
var ErrConfigInvalid = errors.New("invalid config")

// Section names used in configuration errors. They match the config file groups.
const (
	SectionMain        = "Main"
	SectionGPIO        = "GPIO"
	SectionOther       = "Other"
	SectionDisableFan  = "Disable-fan"
	SectionMinFanSpeed = "Min-fan-speed"
	SectionMaxFanSpeed = "Max-fan-speed"
)

// Duty cycle limits in percent.
const (
	MinDuty = 0.0
	MaxDuty = 100.0
)

// Point is one calibration point on the fan curve.
type Point struct {
	Temperature float64 // degrees Celsius
	Duty        float64 // percent, 0..100
}

// Config is the validated controller configuration.
// Construct it with NewConfig; it is never mutated afterwards.
type Config struct {
	SensorSource    string
	Pin             int
	PWMFrequency    int // Hz
	ChangeThreshold float64
	PollInterval    time.Duration
	DisableTemp     float64
	Min             Point
	Max             Point
}

// NewConfig validates the given values and returns the config.
// The error wraps ErrConfigInvalid and names the offending keys.
func NewConfig(c Config) (Config, error) {
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks the curve invariants and basic ranges.
func (c Config) Validate() error {
	for _, f := range []struct {
		key   string
		value float64
	}{
		{SectionDisableFan + "/temp", c.DisableTemp},
		{SectionMinFanSpeed + "/temp", c.Min.Temperature},
		{SectionMinFanSpeed + "/fan", c.Min.Duty},
		{SectionMaxFanSpeed + "/temp", c.Max.Temperature},
		{SectionMaxFanSpeed + "/fan", c.Max.Duty},
		{SectionOther + "/speed_change_threshold", c.ChangeThreshold},
	} {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return invalidf("'%s' must be a finite number, got %v", f.key, f.value)
		}
	}

	if !(c.DisableTemp < c.Min.Temperature) {
		return invalidf("'%s/temp' value must be less than '%s/temp'", SectionDisableFan, SectionMinFanSpeed)
	}
	if !(c.Min.Temperature < c.Max.Temperature) {
		return invalidf("'%s/temp' value must be less than '%s/temp'", SectionMinFanSpeed, SectionMaxFanSpeed)
	}
	if !(c.Min.Duty < c.Max.Duty) {
		return invalidf("'%s/fan' value must be less than '%s/fan'", SectionMinFanSpeed, SectionMaxFanSpeed)
	}
	if !(c.Min.Duty >= MinDuty && c.Max.Duty <= MaxDuty) {
		return invalidf("'%s/fan' and '%s/fan' must be within %.0f..%.0f", SectionMinFanSpeed, SectionMaxFanSpeed, MinDuty, MaxDuty)
	}
	if c.SensorSource == "" {
		return invalidf("'%s/thermal_file' is required", SectionMain)
	}
	if c.Pin < 0 {
		return invalidf("'%s/fan_pin' must not be negative, got %d", SectionGPIO, c.Pin)
	}
	if c.PWMFrequency <= 0 {
		return invalidf("'%s/pwm_freq' must be > 0, got %d", SectionGPIO, c.PWMFrequency)
	}
	if !(c.ChangeThreshold >= 0) {
		return invalidf("'%s/speed_change_threshold' must not be negative, got %g", SectionOther, c.ChangeThreshold)
	}
	if c.PollInterval <= 0 {
		return invalidf("'%s/refresh_wait_time' must be > 0, got %v", SectionOther, c.PollInterval)
	}
	return nil
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfigInvalid, fmt.Sprintf(format, args...))
}

// Band identifies which part of the curve produced a target duty.
type Band string

const (
	BandOff    Band = "off"
	BandSticky Band = "sticky"
	BandLinear Band = "linear"
	BandMax    Band = "max"
)

// Decision is the result of the control law for one temperature sample.
type Decision struct {
	Band   Band
	Duty   float64
	Reason string
}

// Reading is one completed control iteration.
type Reading struct {
	Time        time.Time
	Temperature float64
	Decision    Decision
	// Duty is the commanded duty after the target was submitted.
	Duty float64
}

// Suppressed reports whether the target differs from the commanded duty, i.e.
// the change threshold held a real change back. A dropped target equal to the
// commanded duty changes nothing and is not counted.
func (r Reading) Suppressed() bool {
	return r.Duty != r.Decision.Duty
}
