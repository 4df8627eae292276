// Command fan-pwm-control drives a PWM fan from a temperature sensor.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sweeney/fan-pwm-control/internal/config"
	"github.com/sweeney/fan-pwm-control/internal/logging"
)

func main() {
	if err := newRootCmd(newOptions(os.Stdout, os.Stderr, os.Getenv)).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// options holds flag values and the settings resolved from env + flags.
type options struct {
	envFile  string
	flags    config.Settings
	settings config.Settings
	logger   *slog.Logger

	stdout, stderr io.Writer
	getenv         func(string) string
	journal        func() bool
	deps           deps
}

func newOptions(stdout, stderr io.Writer, getenv func(string) string) *options {
	return &options{
		stdout:  stdout,
		stderr:  stderr,
		getenv:  getenv,
		journal: logging.JournalAvailable,
		deps:    realDeps(),
	}
}

func newRootCmd(o *options) *cobra.Command {
	root := &cobra.Command{
		Use:   "fan-pwm-control",
		Short: "Drive a PWM fan from a temperature sensor",
		Long: "Reads a temperature sensor on a fixed interval and sets the duty cycle of a " +
			"PWM fan from a piecewise curve with hysteresis. Without a subcommand it runs the control loop.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return o.resolve(cmd.Flags())
		},
		RunE: func(*cobra.Command, []string) error {
			return o.runDaemon()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&o.envFile, "env-file", config.DefaultEnvFile, ".env file loaded before reading the environment (missing is fine)")
	pf.StringVarP(&o.flags.ConfigFile, "config", "c", "", "config file, .toml or .yaml (env CONFIG_FILE)")
	pf.StringVar(&o.flags.Driver, "driver", "", "GPIO driver: fake, cdev, rpi, rpio (env GPIO_DRIVER)")
	pf.StringVar(&o.flags.Chip, "chip", "", "GPIO chip for the cdev driver (env GPIO_CHIP)")
	pf.StringVar(&o.flags.LogLevel, "log-level", "", "debug, info, warn, error (env LOG_LEVEL)")
	pf.StringVar(&o.flags.LogFormat, "log-format", "", "text or json (env LOG_FORMAT)")
	pf.StringVar(&o.flags.Broker, "broker", "", "MQTT broker, empty disables (env MQTT_BROKER)")
	pf.StringVar(&o.flags.HTTPAddr, "http", "", "HTTP status address, empty disables (env HTTP_ADDR)")

	root.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Run the fan control loop (default)",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				return o.runDaemon()
			},
		},
		&cobra.Command{
			Use:   "validate",
			Short: "Check the config file and print the resulting fan curve",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				return o.validate()
			},
		},
		&cobra.Command{
			Use:   "print-state",
			Short: "Read the sensor once and print the decision, without driving the fan",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				return o.printState()
			},
		},
	)
	return root
}

// resolve loads the env file, reads the environment and applies any flags
// set on the command line, then builds the logger.
func (o *options) resolve(flags *pflag.FlagSet) error {
	if err := config.LoadEnvFile(o.envFile); err != nil {
		return err
	}
	s := config.FromEnv(o.getenv)

	override := func(dst *string, name, value string) {
		if flags.Changed(name) {
			*dst = value
		}
	}
	override(&s.ConfigFile, "config", o.flags.ConfigFile)
	override(&s.Driver, "driver", o.flags.Driver)
	override(&s.Chip, "chip", o.flags.Chip)
	override(&s.LogLevel, "log-level", o.flags.LogLevel)
	override(&s.LogFormat, "log-format", o.flags.LogFormat)
	override(&s.Broker, "broker", o.flags.Broker)
	override(&s.HTTPAddr, "http", o.flags.HTTPAddr)

	logger, err := logging.New(logging.Config{
		Level:   s.LogLevel,
		Format:  s.LogFormat,
		Journal: o.journal(),
	}, o.stderr)
	if err != nil {
		return err
	}

	o.settings = s
	o.logger = logger
	return nil
}
