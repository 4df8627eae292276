// Package control runs the fan control loop: read temperature, compute the
// target duty, submit it through the facade chain, wait for the next tick.
package control

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/sweeney/fan-pwm-control/internal/fan"
	"github.com/sweeney/fan-pwm-control/internal/logic"
	"github.com/sweeney/fan-pwm-control/internal/sensor"
)

// State is the lifecycle state of a Loop.
type State string

const (
	StateUninitialized State = "UNINITIALIZED"
	StateRunning       State = "RUNNING"
	StateShuttingDown  State = "SHUTTING_DOWN"
	StateStopped       State = "STOPPED"
)

// Observer is notified of loop progress. Observers run on the loop goroutine
// and must not block.
type Observer interface {
	// Observe is called after every completed iteration.
	Observe(r logic.Reading)

	// StateChanged is called on every state transition.
	StateChanged(s State)
}

// Loop drives one fan from one temperature source.
type Loop struct {
	cfg       logic.Config
	facade    fan.Facade
	source    sensor.Source
	logger    *slog.Logger
	now       func() time.Time
	observers []Observer

	state      State
	stopSignal os.Signal
}

// NewLoop creates a Loop in StateUninitialized. A nil logger uses slog.Default().
func NewLoop(cfg logic.Config, facade fan.Facade, source sensor.Source, logger *slog.Logger, observers ...Observer) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		cfg:       cfg,
		facade:    facade,
		source:    source,
		logger:    logger,
		now:       time.Now,
		observers: observers,
		state:     StateUninitialized,
	}
}

// SetClock replaces the time source used to stamp readings.
func (l *Loop) SetClock(now func() time.Time) {
	l.now = now
}

// State returns the current lifecycle state.
func (l *Loop) State() State {
	return l.state
}

// StopSignal returns the signal that ended Run, or nil if Run has not
// returned because of a signal.
func (l *Loop) StopSignal() os.Signal {
	return l.stopSignal
}

// Run sets up the fan at 0% and runs one iteration immediately, then one per
// tick, until a signal arrives on sig or an iteration fails.
// The facade is cleaned up on every exit path, including a failed setup.
// Run returns nil on signal shutdown and the fatal error otherwise.
func (l *Loop) Run(tick <-chan time.Time, sig <-chan os.Signal) error {
	if l.state != StateUninitialized {
		return fmt.Errorf("loop already started (state %s)", l.state)
	}

	if err := l.facade.Setup(l.cfg.Pin, l.cfg.PWMFrequency, 0); err != nil {
		if cerr := l.facade.Cleanup(); cerr != nil {
			l.logger.Error("cleanup after failed setup", "error", cerr)
		}
		l.setState(StateStopped)
		return fmt.Errorf("setup fan: %w", err)
	}
	l.setState(StateRunning)

	err := l.loop(tick, sig)

	l.setState(StateShuttingDown)
	if cerr := l.facade.Cleanup(); cerr != nil {
		l.logger.Error("cleanup failed", "error", cerr)
		if err == nil {
			err = fmt.Errorf("cleanup fan: %w", cerr)
		}
	}
	l.setState(StateStopped)
	return err
}

func (l *Loop) loop(tick <-chan time.Time, sig <-chan os.Signal) error {
	if _, err := l.Step(); err != nil {
		return err
	}
	for {
		select {
		case s := <-sig:
			l.logger.Info("received signal, shutting down", "signal", s.String())
			l.stopSignal = s
			return nil
		case <-tick:
			if _, err := l.Step(); err != nil {
				return err
			}
		}
	}
}

// Step runs a single iteration against an already set-up facade.
func (l *Loop) Step() (logic.Reading, error) {
	temp, err := l.source.Read()
	if err != nil {
		return logic.Reading{}, fmt.Errorf("read temperature: %w", err)
	}

	current := l.facade.Duty()
	decision := logic.TargetDuty(l.cfg, temp, current)
	l.logger.Debug(decision.Reason, "temp", temp, "band", string(decision.Band), "current", current, "target", decision.Duty)

	if err := l.facade.SetDuty(decision.Duty); err != nil {
		return logic.Reading{}, fmt.Errorf("set fan duty %.2f: %w", decision.Duty, err)
	}

	r := logic.Reading{
		Time:        l.now(),
		Temperature: temp,
		Decision:    decision,
		Duty:        l.facade.Duty(),
	}
	for _, o := range l.observers {
		o.Observe(r)
	}
	return r, nil
}

func (l *Loop) setState(s State) {
	l.state = s
	l.logger.Debug("control loop state", "state", string(s))
	for _, o := range l.observers {
		o.StateChanged(s)
	}
}
