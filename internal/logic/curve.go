package logic

import "fmt"

// TargetDuty returns the duty cycle for the given temperature.
// current is the currently commanded duty; it only matters in the sticky band,
// where a stopped fan stays stopped and a running fan is clamped to Min.Duty.
// Each band is closed at its upper edge, so a boundary temperature always
// belongs to the lower band.
func TargetDuty(cfg Config, temperature, current float64) Decision {
	switch {
	case temperature <= cfg.DisableTemp:
		return Decision{
			Band:   BandOff,
			Duty:   0,
			Reason: fmt.Sprintf("temp %.2f is too low (<= %.2f), disable fan", temperature, cfg.DisableTemp),
		}

	case temperature <= cfg.Min.Temperature:
		if current == 0 {
			return Decision{
				Band:   BandSticky,
				Duty:   0,
				Reason: fmt.Sprintf("temp %.2f is within sticky interval and fan is disabled, keep it disabled", temperature),
			}
		}
		return Decision{
			Band:   BandSticky,
			Duty:   cfg.Min.Duty,
			Reason: fmt.Sprintf("temp %.2f is within sticky interval and fan is enabled, keep it at min (%.2f)", temperature, cfg.Min.Duty),
		}

	case temperature <= cfg.Max.Temperature:
		duty := Interpolate(cfg.Min, cfg.Max, temperature)
		return Decision{
			Band:   BandLinear,
			Duty:   duty,
			Reason: fmt.Sprintf("temp %.2f is within min..max interval, calculated %.2f", temperature, duty),
		}

	default:
		return Decision{
			Band:   BandMax,
			Duty:   cfg.Max.Duty,
			Reason: fmt.Sprintf("temp %.2f is too high (> %.2f), set fan to max (%.2f)", temperature, cfg.Max.Temperature, cfg.Max.Duty),
		}
	}
}

// Interpolate returns the duty on the straight line through min and max at temperature.
// min.Temperature must differ from max.Temperature.
func Interpolate(min, max Point, temperature float64) float64 {
	return max.Duty + (min.Duty-max.Duty)/(min.Temperature-max.Temperature)*(temperature-max.Temperature)
}
