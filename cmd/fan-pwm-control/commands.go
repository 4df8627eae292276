package main

import (
	"fmt"
	"math"
	"text/tabwriter"

	"github.com/sweeney/fan-pwm-control/internal/config"
	"github.com/sweeney/fan-pwm-control/internal/control"
	"github.com/sweeney/fan-pwm-control/internal/fan"
	"github.com/sweeney/fan-pwm-control/internal/gpio"
	"github.com/sweeney/fan-pwm-control/internal/logic"
)

// validate loads the config and prints it with the curve it produces.
func (o *options) validate() error {
	cfg, err := config.Load(o.settings.ConfigFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	format := config.FormatFor(o.settings.ConfigFile)
	data, err := config.Marshal(config.FromConfig(cfg), format)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	fmt.Fprintf(o.stdout, "# %s: OK\n%s\n", o.settings.ConfigFile, data)

	w := tabwriter.NewWriter(o.stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "temp C\trising %\tfalling %\tband\t")
	for _, row := range curveTable(cfg) {
		fmt.Fprintf(w, "%.1f\t%.1f\t%.1f\t%s\t\n", row.temp, row.rising, row.falling, row.band)
	}
	return w.Flush()
}

type curveRow struct {
	temp            float64
	rising, falling float64
	band            logic.Band
}

// curveTable samples the control law every 5 degrees around the configured
// points. Rising starts with the fan off, falling with the fan at max, so
// the sticky band shows both of its outcomes.
func curveTable(cfg logic.Config) []curveRow {
	const step = 5.0
	lo := math.Floor(cfg.DisableTemp/step)*step - step
	hi := math.Ceil(cfg.Max.Temperature/step)*step + step

	var rows []curveRow
	for t := lo; t <= hi; t += step {
		rows = append(rows, curveRow{temp: t})
	}

	current := logic.MinDuty
	for i := range rows {
		d := logic.TargetDuty(cfg, rows[i].temp, current)
		rows[i].rising, rows[i].band = d.Duty, d.Band
		current = d.Duty
	}
	current = cfg.Max.Duty
	for i := len(rows) - 1; i >= 0; i-- {
		d := logic.TargetDuty(cfg, rows[i].temp, current)
		rows[i].falling = d.Duty
		current = d.Duty
	}
	return rows
}

// printState reads the sensor once and runs one iteration against the fake
// driver, so the real fan is never touched.
func (o *options) printState() error {
	cfg, err := config.Load(o.settings.ConfigFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	facade := fan.NewController(gpio.NewFakeDriver())
	if err := facade.Setup(cfg.Pin, cfg.PWMFrequency, 0); err != nil {
		return err
	}
	defer facade.Cleanup()

	loop := control.NewLoop(cfg, facade, o.deps.openSource(cfg.SensorSource), o.logger)
	r, err := loop.Step()
	if err != nil {
		return err
	}
	fmt.Fprintf(o.stdout, "temp: %.2f C, band: %s, duty: %.2f%% (%s)\n",
		r.Temperature, r.Decision.Band, r.Decision.Duty, r.Decision.Reason)
	return nil
}
