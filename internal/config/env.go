package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// DefaultEnvFile is loaded when present.
const DefaultEnvFile = ".env"

// Settings are the process-level options taken from the environment.
type Settings struct {
	LogLevel   string // LOG_LEVEL
	LogFormat  string // LOG_FORMAT
	Driver     string // GPIO_DRIVER
	Chip       string // GPIO_CHIP
	ConfigFile string // CONFIG_FILE
	Broker     string // MQTT_BROKER, empty disables MQTT
	HTTPAddr   string // HTTP_ADDR, empty disables the status server
}

// Defaults returns the settings used when nothing is set.
func Defaults() Settings {
	return Settings{
		LogLevel:   "warn",
		LogFormat:  "text",
		Driver:     "rpi",
		Chip:       "gpiochip0",
		ConfigFile: DefaultPath,
	}
}

// LoadEnvFile loads variables from path into the process environment without
// overriding ones already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// FromEnv overlays non-empty environment variables on Defaults.
func FromEnv(getenv func(string) string) Settings {
	if getenv == nil {
		getenv = os.Getenv
	}
	s := Defaults()
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set(&s.LogLevel, "LOG_LEVEL")
	set(&s.LogFormat, "LOG_FORMAT")
	set(&s.Driver, "GPIO_DRIVER")
	set(&s.Chip, "GPIO_CHIP")
	set(&s.ConfigFile, "CONFIG_FILE")
	set(&s.Broker, "MQTT_BROKER")
	set(&s.HTTPAddr, "HTTP_ADDR")
	return s
}
