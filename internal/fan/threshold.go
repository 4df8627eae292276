package fan

import (
	"log/slog"
	"math"
)

// ThresholdFacade drops duty changes that are not larger than the threshold.
// A dropped value is not queued; the previous duty stays in effect.
type ThresholdFacade struct {
	inner      Facade
	threshold  float64
	logger     *slog.Logger
	suppressed int
}

// NewThresholdFacade wraps inner. A nil logger uses slog.Default().
func NewThresholdFacade(inner Facade, threshold float64, logger *slog.Logger) *ThresholdFacade {
	if logger == nil {
		logger = slog.Default()
	}
	return &ThresholdFacade{inner: inner, threshold: threshold, logger: logger}
}

func (t *ThresholdFacade) Setup(pin, frequency int, startDuty float64) error {
	return t.inner.Setup(pin, frequency, startDuty)
}

func (t *ThresholdFacade) Cleanup() error {
	return t.inner.Cleanup()
}

func (t *ThresholdFacade) Duty() float64 {
	return t.inner.Duty()
}

// SetDuty forwards only if |Duty() - duty| > threshold.
func (t *ThresholdFacade) SetDuty(duty float64) error {
	diff := math.Abs(t.Duty() - duty)
	if diff > t.threshold {
		return t.inner.SetDuty(duty)
	}
	t.suppressed++
	t.logger.Debug("skip fan speed change, diff between current and desired duty is within threshold",
		"current", t.Duty(), "desired", duty, "diff", diff, "threshold", t.threshold)
	return nil
}

// Suppressed returns how many SetDuty calls were dropped, including calls
// whose target already matched the current duty.
func (t *ThresholdFacade) Suppressed() int {
	return t.suppressed
}
