// Package mqtt provides MQTT telemetry publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"math"
	"time"

	"github.com/sweeney/fan-pwm-control/internal/logic"
)

// TopicState is the MQTT topic for per-iteration fan readings.
const TopicState = "fan-pwm-control/state"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "fan-pwm-control/system"

// Publisher publishes telemetry to MQTT.
type Publisher interface {
	// Publish sends one control loop reading to the broker.
	// Returns error if publishing fails (should not stop the fan loop).
	Publish(reading logic.Reading) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "OFFLINE"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool
}

// Payload represents the MQTT message payload for a reading.
type Payload struct {
	Fan FanPayload `json:"fan"`
}

// FanPayload contains one iteration of the control loop.
type FanPayload struct {
	Timestamp    string  `json:"timestamp"`
	TemperatureC float64 `json:"temperature_c"`
	Band         string  `json:"band"`
	TargetDuty   float64 `json:"target_duty"`
	Duty         float64 `json:"duty"`
	Suppressed   bool    `json:"suppressed"`
}

// FormatPayload creates the JSON payload for a reading.
func FormatPayload(reading logic.Reading) ([]byte, error) {
	payload := Payload{
		Fan: FanPayload{
			Timestamp:    reading.Time.UTC().Format(time.RFC3339),
			TemperatureC: round2(reading.Temperature),
			Band:         string(reading.Decision.Band),
			TargetDuty:   round2(reading.Decision.Duty),
			Duty:         round2(reading.Duty),
			Suppressed:   reading.Suppressed(),
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for simple system events
// (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
