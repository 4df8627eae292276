package logic

import (
	"errors"
	"math"
	"testing"
	"time"
)

const epsilon = 1e-9

func approx(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

// testConfig returns disable=30, min=(35,20), max=(70,100).
func testConfig(t *testing.T) Config {
	t.Helper()
	cfg, err := NewConfig(Config{
		SensorSource:    "/sys/class/thermal/thermal_zone0/temp",
		Pin:             18,
		PWMFrequency:    25,
		ChangeThreshold: 5,
		PollInterval:    5 * time.Second,
		DisableTemp:     30,
		Min:             Point{Temperature: 35, Duty: 20},
		Max:             Point{Temperature: 70, Duty: 100},
	})
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	return cfg
}

func TestNewConfigValid(t *testing.T) {
	cfg := testConfig(t)
	if cfg.DisableTemp != 30 {
		t.Errorf("DisableTemp: got %v, want 30", cfg.DisableTemp)
	}
	if cfg.Min != (Point{35, 20}) || cfg.Max != (Point{70, 100}) {
		t.Errorf("points: got min=%+v max=%+v", cfg.Min, cfg.Max)
	}
}

func TestNewConfigInvalid(t *testing.T) {
	base := testConfig(t)

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"disable above min", func(c *Config) { c.DisableTemp = 36 }},
		{"disable equals min", func(c *Config) { c.DisableTemp = 35 }},
		{"min above max", func(c *Config) {
			c.DisableTemp = 30
			c.Min = Point{Temperature: 50, Duty: 20}
			c.Max = Point{Temperature: 40, Duty: 100}
		}},
		{"min temp equals max temp", func(c *Config) { c.Max.Temperature = 35 }},
		{"min duty above max duty", func(c *Config) { c.Min.Duty = 100; c.Max.Duty = 50 }},
		{"min duty equals max duty", func(c *Config) { c.Min.Duty = 100 }},
		{"negative duty", func(c *Config) { c.Min.Duty = -1 }},
		{"duty above 100", func(c *Config) { c.Max.Duty = 101 }},
		{"empty sensor", func(c *Config) { c.SensorSource = "" }},
		{"negative pin", func(c *Config) { c.Pin = -1 }},
		{"zero frequency", func(c *Config) { c.PWMFrequency = 0 }},
		{"negative threshold", func(c *Config) { c.ChangeThreshold = -1 }},
		{"zero poll interval", func(c *Config) { c.PollInterval = 0 }},
		{"NaN disable temp", func(c *Config) { c.DisableTemp = math.NaN() }},
		{"NaN min temp", func(c *Config) { c.Min.Temperature = math.NaN() }},
		{"NaN min duty", func(c *Config) { c.Min.Duty = math.NaN() }},
		{"NaN max temp", func(c *Config) { c.Max.Temperature = math.NaN() }},
		{"NaN max duty", func(c *Config) { c.Max.Duty = math.NaN() }},
		{"infinite max temp", func(c *Config) { c.Max.Temperature = math.Inf(1) }},
		{"infinite disable temp", func(c *Config) { c.DisableTemp = math.Inf(-1) }},
		{"NaN threshold", func(c *Config) { c.ChangeThreshold = math.NaN() }},
		{"infinite threshold", func(c *Config) { c.ChangeThreshold = math.Inf(1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			_, err := NewConfig(c)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrConfigInvalid) {
				t.Errorf("expected ErrConfigInvalid, got %v", err)
			}
		})
	}
}

func TestNewConfigErrorNamesSections(t *testing.T) {
	c := testConfig(t)
	c.DisableTemp = 36
	_, err := NewConfig(c)
	if err == nil {
		t.Fatal("expected error")
	}
	want := "invalid config: 'Disable-fan/temp' value must be less than 'Min-fan-speed/temp'"
	if err.Error() != want {
		t.Errorf("error: got %q, want %q", err.Error(), want)
	}
}

func TestTargetDutyOffBand(t *testing.T) {
	cfg := testConfig(t)

	for _, temp := range []float64{-10, 0, 25, 30 - 1e-6, 30} {
		for _, current := range []float64{0, 20, 100} {
			d := TargetDuty(cfg, temp, current)
			if d.Band != BandOff {
				t.Errorf("temp=%v current=%v: band got %s, want off", temp, current, d.Band)
			}
			if d.Duty != 0 {
				t.Errorf("temp=%v current=%v: duty got %v, want 0", temp, current, d.Duty)
			}
		}
	}
}

func TestTargetDutyStickyBand(t *testing.T) {
	cfg := testConfig(t)

	for _, temp := range []float64{30 + 1e-6, 32, 35} {
		d := TargetDuty(cfg, temp, 0)
		if d.Band != BandSticky || d.Duty != 0 {
			t.Errorf("temp=%v fan off: got %s/%v, want sticky/0", temp, d.Band, d.Duty)
		}

		for _, current := range []float64{0.5, 20, 60, 100} {
			d := TargetDuty(cfg, temp, current)
			if d.Band != BandSticky || d.Duty != 20 {
				t.Errorf("temp=%v current=%v: got %s/%v, want sticky/20", temp, current, d.Band, d.Duty)
			}
		}
	}
}

func TestTargetDutyLinearBand(t *testing.T) {
	cfg := testConfig(t)

	d := TargetDuty(cfg, 50, 0)
	if d.Band != BandLinear {
		t.Fatalf("band: got %s, want linear", d.Band)
	}
	want := 20 + 15*80.0/35
	if !approx(d.Duty, want) {
		t.Errorf("duty at 50: got %v, want %v", d.Duty, want)
	}

	// The upper edge belongs to the linear band and lands exactly on max.
	d = TargetDuty(cfg, 70, 0)
	if d.Band != BandLinear || !approx(d.Duty, 100) {
		t.Errorf("temp=70: got %s/%v, want linear/100", d.Band, d.Duty)
	}

	// Just above min the value approaches min duty from above.
	d = TargetDuty(cfg, 35+1e-9, 50)
	if d.Band != BandLinear || math.Abs(d.Duty-20) > 1e-6 {
		t.Errorf("temp just above 35: got %s/%v, want linear/~20", d.Band, d.Duty)
	}
}

func TestTargetDutyLinearIgnoresCurrent(t *testing.T) {
	cfg := testConfig(t)
	a := TargetDuty(cfg, 42, 0)
	b := TargetDuty(cfg, 42, 100)
	if a.Duty != b.Duty {
		t.Errorf("linear duty depends on current: %v vs %v", a.Duty, b.Duty)
	}
}

func TestTargetDutyMaxBand(t *testing.T) {
	cfg := testConfig(t)

	for _, temp := range []float64{70 + 1e-6, 71, 85, 200} {
		for _, current := range []float64{0, 50} {
			d := TargetDuty(cfg, temp, current)
			if d.Band != BandMax || d.Duty != 100 {
				t.Errorf("temp=%v current=%v: got %s/%v, want max/100", temp, current, d.Band, d.Duty)
			}
		}
	}
}

func TestInterpolateEndpoints(t *testing.T) {
	cfgs := []struct {
		min, max Point
	}{
		{Point{35, 20}, Point{70, 100}},
		{Point{40, 0}, Point{60, 50}},
		{Point{-5.5, 10}, Point{12.25, 99.5}},
	}

	for _, c := range cfgs {
		if got := Interpolate(c.min, c.max, c.min.Temperature); !approx(got, c.min.Duty) {
			t.Errorf("%+v..%+v at min: got %v, want %v", c.min, c.max, got, c.min.Duty)
		}
		if got := Interpolate(c.min, c.max, c.max.Temperature); !approx(got, c.max.Duty) {
			t.Errorf("%+v..%+v at max: got %v, want %v", c.min, c.max, got, c.max.Duty)
		}
	}
}

func TestInterpolateMonotonic(t *testing.T) {
	cfg := testConfig(t)

	prev := TargetDuty(cfg, cfg.Min.Temperature+0.01, 0).Duty
	for temp := cfg.Min.Temperature + 0.02; temp < cfg.Max.Temperature; temp += 0.01 {
		d := TargetDuty(cfg, temp, 0)
		if d.Band != BandLinear {
			t.Fatalf("temp=%v: band got %s, want linear", temp, d.Band)
		}
		if d.Duty <= prev {
			t.Fatalf("not increasing at temp=%v: %v <= %v", temp, d.Duty, prev)
		}
		prev = d.Duty
	}
}

func TestTargetDutySequence(t *testing.T) {
	cfg := testConfig(t)

	temps := []float64{25, 35, 50, 80}
	wantBands := []Band{BandOff, BandSticky, BandLinear, BandMax}
	wantDuty := []float64{0, 0, 20 + 15*80.0/35, 100}

	current := 0.0
	for i, temp := range temps {
		d := TargetDuty(cfg, temp, current)
		if d.Band != wantBands[i] {
			t.Errorf("step %d: band got %s, want %s", i, d.Band, wantBands[i])
		}
		if !approx(d.Duty, wantDuty[i]) {
			t.Errorf("step %d: duty got %v, want %v", i, d.Duty, wantDuty[i])
		}
		current = d.Duty
	}
}

func TestTargetDutyReasonNotEmpty(t *testing.T) {
	cfg := testConfig(t)
	for _, temp := range []float64{20, 33, 50, 90} {
		if d := TargetDuty(cfg, temp, 10); d.Reason == "" {
			t.Errorf("temp=%v: empty reason", temp)
		}
	}
}

func TestReadingSuppressed(t *testing.T) {
	r := Reading{Decision: Decision{Duty: 44}, Duty: 40}
	if !r.Suppressed() {
		t.Error("expected suppressed when commanded duty differs from target")
	}
	r.Duty = 44
	if r.Suppressed() {
		t.Error("expected not suppressed when commanded duty equals target")
	}
}
