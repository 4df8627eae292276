package sensor

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// ThermalFile reads a sysfs-style file holding a temperature in millidegrees.
type ThermalFile struct {
	path string
}

// NewThermalFile creates a ThermalFile for path.
func NewThermalFile(path string) *ThermalFile {
	return &ThermalFile{path: path}
}

// Read returns the file content divided by 1000.
func (f *ThermalFile) Read() (float64, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrRead, err)
	}
	return ParseMillidegrees(string(data))
}

// ParseMillidegrees converts "48312\n" into 48.312.
func ParseMillidegrees(s string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: parse temperature %q: %w", ErrRead, strings.TrimSpace(s), err)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%w: temperature %q is not a finite number", ErrRead, strings.TrimSpace(s))
	}
	return value / 1000, nil
}

// String returns the file path.
func (f *ThermalFile) String() string {
	return f.path
}
