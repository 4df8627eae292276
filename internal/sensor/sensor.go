// Package sensor reads the temperature that drives the fan curve.
package sensor

import (
	"errors"
	"strings"
)

// ErrRead is wrapped by every temperature read failure.
var ErrRead = errors.New("sensor read failed")

// DefaultThermalFile is the Raspberry Pi CPU temperature in millidegrees Celsius.
const DefaultThermalFile = "/sys/class/thermal/thermal_zone0/temp"

// ds18b20Prefix selects a 1-wire probe, e.g. "ds18b20:28-0316a2796aff".
const ds18b20Prefix = "ds18b20:"

// Source reads a fresh temperature in degrees Celsius on every call.
type Source interface {
	Read() (float64, error)
}

// Open returns the Source described by source: a "ds18b20:<id>" probe,
// otherwise a thermal file path.
func Open(source string) Source {
	if id, ok := strings.CutPrefix(source, ds18b20Prefix); ok {
		return NewDS18B20(id)
	}
	return NewThermalFile(source)
}
