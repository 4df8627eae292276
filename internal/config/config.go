// Package config loads the fan controller's configuration file and
// environment settings.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/sweeney/fan-pwm-control/internal/logic"
)

// DefaultPath is used when CONFIG_FILE is not set.
const DefaultPath = "/etc/fan-pwm-control/config.toml"

// Format is a config file syntax.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatFor picks the syntax from the file extension. Anything other than
// .yaml or .yml is TOML.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// File mirrors the config file layout. Pointer fields distinguish a missing
// key from a zero value.
type File struct {
	Main        MainSection    `toml:"Main" yaml:"Main"`
	GPIO        GPIOSection    `toml:"GPIO" yaml:"GPIO"`
	Other       OtherSection   `toml:"Other" yaml:"Other"`
	DisableFan  DisableSection `toml:"Disable-fan" yaml:"Disable-fan"`
	MinFanSpeed PointSection   `toml:"Min-fan-speed" yaml:"Min-fan-speed"`
	MaxFanSpeed PointSection   `toml:"Max-fan-speed" yaml:"Max-fan-speed"`
}

type MainSection struct {
	ThermalFile *string `toml:"thermal_file" yaml:"thermal_file"`
}

type GPIOSection struct {
	FanPin  *int `toml:"fan_pin" yaml:"fan_pin"`
	PWMFreq *int `toml:"pwm_freq" yaml:"pwm_freq"`
}

type OtherSection struct {
	SpeedChangeThreshold *float64 `toml:"speed_change_threshold" yaml:"speed_change_threshold"`
	RefreshWaitTime      *float64 `toml:"refresh_wait_time" yaml:"refresh_wait_time"` // seconds
}

type DisableSection struct {
	Temp *float64 `toml:"temp" yaml:"temp"`
}

type PointSection struct {
	Temp *float64 `toml:"temp" yaml:"temp"`
	Fan  *float64 `toml:"fan" yaml:"fan"`
}

// Load reads path and returns the validated control configuration.
func Load(path string) (logic.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return logic.Config{}, fmt.Errorf("read config: %w", err)
	}
	f, err := Parse(data, FormatFor(path))
	if err != nil {
		return logic.Config{}, err
	}
	return f.Config()
}

// Parse decodes data in the given format. Unknown keys are rejected.
func Parse(data []byte, format Format) (File, error) {
	var f File
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
			return File{}, fmt.Errorf("%w: parse yaml: %w", logic.ErrConfigInvalid, err)
		}
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return File{}, fmt.Errorf("%w: parse toml: %w", logic.ErrConfigInvalid, err)
		}
	default:
		return File{}, fmt.Errorf("%w: unknown format %q", logic.ErrConfigInvalid, format)
	}
	return f, nil
}

// Config checks that every key is present and builds a validated
// logic.Config from the file.
func (f File) Config() (logic.Config, error) {
	var missing []string
	need := func(present bool, section, key string) {
		if !present {
			missing = append(missing, fmt.Sprintf("'%s/%s'", section, key))
		}
	}
	need(f.Main.ThermalFile != nil, logic.SectionMain, "thermal_file")
	need(f.GPIO.FanPin != nil, logic.SectionGPIO, "fan_pin")
	need(f.GPIO.PWMFreq != nil, logic.SectionGPIO, "pwm_freq")
	need(f.Other.SpeedChangeThreshold != nil, logic.SectionOther, "speed_change_threshold")
	need(f.Other.RefreshWaitTime != nil, logic.SectionOther, "refresh_wait_time")
	need(f.DisableFan.Temp != nil, logic.SectionDisableFan, "temp")
	need(f.MinFanSpeed.Temp != nil, logic.SectionMinFanSpeed, "temp")
	need(f.MinFanSpeed.Fan != nil, logic.SectionMinFanSpeed, "fan")
	need(f.MaxFanSpeed.Temp != nil, logic.SectionMaxFanSpeed, "temp")
	need(f.MaxFanSpeed.Fan != nil, logic.SectionMaxFanSpeed, "fan")
	if len(missing) > 0 {
		return logic.Config{}, fmt.Errorf("%w: missing %s", logic.ErrConfigInvalid, strings.Join(missing, ", "))
	}

	return logic.NewConfig(logic.Config{
		SensorSource:    *f.Main.ThermalFile,
		Pin:             *f.GPIO.FanPin,
		PWMFrequency:    *f.GPIO.PWMFreq,
		ChangeThreshold: *f.Other.SpeedChangeThreshold,
		PollInterval:    time.Duration(*f.Other.RefreshWaitTime * float64(time.Second)),
		DisableTemp:     *f.DisableFan.Temp,
		Min:             logic.Point{Temperature: *f.MinFanSpeed.Temp, Duty: *f.MinFanSpeed.Fan},
		Max:             logic.Point{Temperature: *f.MaxFanSpeed.Temp, Duty: *f.MaxFanSpeed.Fan},
	})
}

// FromConfig is the inverse of File.Config, used to print an effective config.
func FromConfig(c logic.Config) File {
	seconds := c.PollInterval.Seconds()
	return File{
		Main:        MainSection{ThermalFile: &c.SensorSource},
		GPIO:        GPIOSection{FanPin: &c.Pin, PWMFreq: &c.PWMFrequency},
		Other:       OtherSection{SpeedChangeThreshold: &c.ChangeThreshold, RefreshWaitTime: &seconds},
		DisableFan:  DisableSection{Temp: &c.DisableTemp},
		MinFanSpeed: PointSection{Temp: &c.Min.Temperature, Fan: &c.Min.Duty},
		MaxFanSpeed: PointSection{Temp: &c.Max.Temperature, Fan: &c.Max.Duty},
	}
}

// Marshal encodes f in the given format.
func Marshal(f File, format Format) ([]byte, error) {
	if format == FormatYAML {
		return yaml.Marshal(f)
	}
	return toml.Marshal(f)
}
