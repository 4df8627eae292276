package status

import (
	"encoding/json"
	"math"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string     `json:"event,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	State         string     `json:"state"`
	Fan           *FanJSON   `json:"fan,omitempty"`
	Iterations    int        `json:"iterations"`
	Suppressed    int        `json:"suppressed"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	MQTT          MQTTStatus `json:"mqtt"`
	Config        ConfigJSON `json:"config"`
}

// FanJSON is the last control iteration.
type FanJSON struct {
	Timestamp    string  `json:"timestamp"`
	TemperatureC float64 `json:"temperature_c"`
	Band         string  `json:"band"`
	TargetDuty   float64 `json:"target_duty"`
	Duty         float64 `json:"duty"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// PointJSON is one curve point.
type PointJSON struct {
	Temp float64 `json:"temp"`
	Fan  float64 `json:"fan"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Sensor          string    `json:"sensor"`
	Driver          string    `json:"driver"`
	FanPin          int       `json:"fan_pin"`
	PWMFreq         int       `json:"pwm_freq"`
	PollMs          int64     `json:"poll_ms"`
	ChangeThreshold float64   `json:"speed_change_threshold"`
	DisableTemp     float64   `json:"disable_temp"`
	Min             PointJSON `json:"min"`
	Max             PointJSON `json:"max"`
	Broker          string    `json:"broker"`
	HTTPAddr        string    `json:"http_addr"`
}

// round2 keeps payloads readable; the controller itself works on full precision.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func buildInner(snap Snapshot) StatusInner {
	state := string(snap.State)
	if state == "" {
		state = "UNKNOWN"
	}

	inner := StatusInner{
		State:         state,
		Iterations:    snap.Iterations,
		Suppressed:    snap.Suppressed,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Config: ConfigJSON{
			Sensor:          snap.Config.Sensor,
			Driver:          snap.Config.Driver,
			FanPin:          snap.Config.Pin,
			PWMFreq:         snap.Config.PWMFrequency,
			PollMs:          snap.Config.PollMs,
			ChangeThreshold: snap.Config.ChangeThreshold,
			DisableTemp:     snap.Config.DisableTemp,
			Min:             PointJSON{Temp: snap.Config.Min.Temperature, Fan: snap.Config.Min.Duty},
			Max:             PointJSON{Temp: snap.Config.Max.Temperature, Fan: snap.Config.Max.Duty},
			Broker:          snap.Config.Broker,
			HTTPAddr:        snap.Config.HTTPAddr,
		},
	}

	if snap.HasReading {
		r := snap.Last
		inner.Fan = &FanJSON{
			Timestamp:    r.Time.UTC().Format(time.RFC3339),
			TemperatureC: round2(r.Temperature),
			Band:         string(r.Decision.Band),
			TargetDuty:   round2(r.Decision.Duty),
			Duty:         round2(r.Duty),
		}
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
