package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	"github.com/sweeney/fan-pwm-control/internal/config"
	"github.com/sweeney/fan-pwm-control/internal/control"
	"github.com/sweeney/fan-pwm-control/internal/fan"
	"github.com/sweeney/fan-pwm-control/internal/gpio"
	"github.com/sweeney/fan-pwm-control/internal/logic"
	"github.com/sweeney/fan-pwm-control/internal/metrics"
	"github.com/sweeney/fan-pwm-control/internal/mqtt"
	"github.com/sweeney/fan-pwm-control/internal/sensor"
	"github.com/sweeney/fan-pwm-control/internal/status"
	"github.com/sweeney/fan-pwm-control/internal/web"
)

// telemetryPublisher is what the daemon needs from an MQTT client.
type telemetryPublisher interface {
	mqtt.Publisher
	mqtt.ConnectionStatus
}

// deps are the process-facing pieces of runDaemon, swapped out in tests.
type deps struct {
	newDriver    func(name, chip string) (gpio.Driver, error)
	openSource   func(source string) sensor.Source
	newPublisher func(broker string, logger *slog.Logger) (telemetryPublisher, error)
	listen       func(addr string) (net.Listener, error)
	notify       func(state string)
	ticker       func(d time.Duration) (<-chan time.Time, func())
	signals      func() (<-chan os.Signal, func())
}

func realDeps() deps {
	return deps{
		newDriver:  gpio.New,
		openSource: sensor.Open,
		newPublisher: func(broker string, logger *slog.Logger) (telemetryPublisher, error) {
			return mqtt.NewRealPublisher(broker, logger)
		},
		listen: func(addr string) (net.Listener, error) {
			return net.Listen("tcp", addr)
		},
		notify: func(state string) {
			daemon.SdNotify(false, state)
		},
		ticker: func(d time.Duration) (<-chan time.Time, func()) {
			t := time.NewTicker(d)
			return t.C, t.Stop
		},
		signals: func() (<-chan os.Signal, func()) {
			ch := make(chan os.Signal, 1)
			signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
			return ch, func() { signal.Stop(ch) }
		},
	}
}

// runDaemon loads the config, wires the facade chain, telemetry and status
// server, and runs the control loop until a signal or a fatal error.
func (o *options) runDaemon() error {
	s, logger, d := o.settings, o.logger, o.deps

	cfg, err := config.Load(s.ConfigFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	driver, err := d.newDriver(s.Driver, s.Chip)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	facade := fan.NewChain(driver, cfg.ChangeThreshold, logger)
	source := d.openSource(cfg.SensorSource)

	// Status tracker first so STARTUP carries a full snapshot
	tracker := status.NewTracker(time.Now(), status.ConfigFrom(cfg, s.Driver, s.Broker, s.HTTPAddr))
	recorder := metrics.NewRecorder()
	observers := []control.Observer{tracker, recorder, sdNotifier{notify: d.notify}}

	var publisher telemetryPublisher
	if s.Broker != "" {
		publisher, err = d.newPublisher(s.Broker, logger)
		if err != nil {
			logger.Warn("mqtt disabled", "error", err)
			publisher = nil
		} else {
			defer publisher.Close()
			observers = append(observers,
				mqtt.NewTelemetry(publisher, logger),
				mqttWatcher{tracker: tracker, conn: publisher},
			)
			publishSystem(publisher, tracker, "STARTUP", "", logger)
		}
	}

	if s.HTTPAddr != "" {
		srv := web.New(s.HTTPAddr, tracker, recorder.Handler())
		if ln, err := d.listen(s.HTTPAddr); err != nil {
			logger.Warn("http status server disabled", "addr", s.HTTPAddr, "error", err)
		} else {
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Warn("http server error", "error", err)
				}
			}()
			defer srv.Shutdown(context.Background())
			logger.Info("http status server listening", "addr", ln.Addr().String())
		}
	}

	logger.Info("started",
		"config", s.ConfigFile, "driver", s.Driver, "sensor", cfg.SensorSource,
		"poll", cfg.PollInterval, "threshold", cfg.ChangeThreshold)

	tick, stopTick := d.ticker(cfg.PollInterval)
	defer stopTick()
	sig, stopSig := d.signals()
	defer stopSig()

	loop := control.NewLoop(cfg, facade, source, logger.With("component", "control"), observers...)
	runErr := loop.Run(tick, sig)
	if runErr != nil {
		logger.Error("control loop stopped", "error", runErr)
	}

	if publisher != nil {
		publishSystem(publisher, tracker, "SHUTDOWN", shutdownReason(loop.StopSignal(), runErr), logger)
	}
	return runErr
}

// publishSystem sends a retained lifecycle event carrying a status snapshot.
func publishSystem(pub telemetryPublisher, tracker *status.Tracker, event, reason string, logger *slog.Logger) {
	tracker.SetMQTTConnected(pub.IsConnected())
	snap := tracker.Snapshot()
	err := pub.PublishSystem(mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      event,
		Reason:     reason,
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, event, reason),
	})
	if err != nil {
		logger.Warn("failed to publish system event", "event", event, "error", err)
		return
	}
	logger.Info("published system event", "event", event)
}

func shutdownReason(sig os.Signal, err error) string {
	switch {
	case err != nil:
		return "ERROR"
	case sig == syscall.SIGINT:
		return "SIGINT"
	case sig == syscall.SIGTERM:
		return "SIGTERM"
	default:
		return "UNKNOWN"
	}
}

// sdNotifier reports readiness and shutdown to systemd.
type sdNotifier struct {
	notify func(state string)
}

func (n sdNotifier) Observe(logic.Reading) {}

func (n sdNotifier) StateChanged(s control.State) {
	switch s {
	case control.StateRunning:
		n.notify(daemon.SdNotifyReady)
	case control.StateShuttingDown:
		n.notify(daemon.SdNotifyStopping)
	}
}

// mqttWatcher refreshes the tracker's MQTT flag every iteration.
type mqttWatcher struct {
	tracker *status.Tracker
	conn    mqtt.ConnectionStatus
}

func (w mqttWatcher) Observe(logic.Reading) {
	w.tracker.SetMQTTConnected(w.conn.IsConnected())
}

func (w mqttWatcher) StateChanged(control.State) {}
