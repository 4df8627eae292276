package fan

import "log/slog"

// LoggingFacade logs every Setup, Cleanup and SetDuty call before delegating.
// It never alters arguments, results or control flow.
type LoggingFacade struct {
	inner  Facade
	logger *slog.Logger
}

// NewLoggingFacade wraps inner. A nil logger uses slog.Default().
func NewLoggingFacade(inner Facade, logger *slog.Logger) *LoggingFacade {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingFacade{inner: inner, logger: logger.With("component", "gpio")}
}

func (l *LoggingFacade) Setup(pin, frequency int, startDuty float64) error {
	l.logger.Info("setup", "fan_pin", pin, "pwm_freq", frequency, "start_duty", startDuty)
	return l.inner.Setup(pin, frequency, startDuty)
}

func (l *LoggingFacade) Cleanup() error {
	l.logger.Info("cleanup")
	return l.inner.Cleanup()
}

func (l *LoggingFacade) Duty() float64 {
	return l.inner.Duty()
}

func (l *LoggingFacade) SetDuty(duty float64) error {
	l.logger.Info("set duty", "duty", duty)
	return l.inner.SetDuty(duty)
}
