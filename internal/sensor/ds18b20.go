package sensor

import (
	"fmt"

	"github.com/yryz/ds18b20"
)

// DS18B20 reads a 1-wire DS18B20 probe through the w1-gpio kernel driver.
type DS18B20 struct {
	id   string
	read func(id string) (float64, error)
}

// NewDS18B20 creates a source for the probe with the given 1-wire id.
func NewDS18B20(id string) *DS18B20 {
	return &DS18B20{id: id, read: ds18b20.Temperature}
}

// Read returns the probe temperature in degrees Celsius.
func (d *DS18B20) Read() (float64, error) {
	t, err := d.read(d.id)
	if err != nil {
		return 0, fmt.Errorf("%w: ds18b20 %s: %w", ErrRead, d.id, err)
	}
	return t, nil
}

// String returns the source in the form accepted by Open.
func (d *DS18B20) String() string {
	return ds18b20Prefix + d.id
}

// Probes lists the ids of the DS18B20 probes found on the 1-wire bus.
func Probes() ([]string, error) {
	ids, err := ds18b20.Sensors()
	if err != nil {
		return nil, fmt.Errorf("%w: list ds18b20 probes: %w", ErrRead, err)
	}
	return ids, nil
}
