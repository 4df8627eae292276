package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/fan-pwm-control/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"stateOrUnknown": func(s string) string {
		if s == "" {
			return "UNKNOWN"
		}
		return s
	},
	"f1": func(v float64) string {
		return fmt.Sprintf("%.1f", v)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Fan PWM Control</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.running { color: green; font-weight: bold; }
.stopped { color: #888; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
.bar { background: #eee; height: 10px; width: 100%; }
.bar > div { background: steelblue; height: 10px; }
</style>
</head>
<body>
<h1>Fan PWM Control</h1>

<h2>Fan</h2>
<table>
<tr><th>Loop</th><td id="state" class="{{if eq (stateOrUnknown (printf "%s" .State)) "RUNNING"}}running{{else if eq (stateOrUnknown (printf "%s" .State)) "STOPPED"}}stopped{{else}}unknown{{end}}">{{stateOrUnknown (printf "%s" .State)}}</td></tr>
{{if .HasReading}}<tr><th>Temperature</th><td id="temperature">{{f1 .Last.Temperature}} &deg;C</td></tr>
<tr><th>Band</th><td id="band">{{.Last.Decision.Band}}</td></tr>
<tr><th>Target duty</th><td id="target">{{f1 .Last.Decision.Duty}}%</td></tr>
<tr><th>Duty</th><td id="duty">{{f1 .Last.Duty}}%<div class="bar"><div id="duty-bar" style="width: {{f1 .Last.Duty}}%"></div></div></td></tr>
<tr><th>Last reading</th><td id="last">{{.Last.Time.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
{{else}}<tr><th>Temperature</th><td class="unknown">no reading yet</td></tr>
{{end}}<tr><th>Iterations</th><td id="iterations">{{.Iterations}}</td></tr>
<tr><th>Suppressed</th><td id="suppressed">{{.Suppressed}}</td></tr>
</table>

<h2>Curve</h2>
<table>
<tr><th>Off at or below</th><td>{{f1 .Config.DisableTemp}} &deg;C</td></tr>
<tr><th>Min</th><td>{{f1 .Config.Min.Temperature}} &deg;C &rarr; {{f1 .Config.Min.Duty}}%</td></tr>
<tr><th>Max</th><td>{{f1 .Config.Max.Temperature}} &deg;C &rarr; {{f1 .Config.Max.Duty}}%</td></tr>
<tr><th>Change threshold</th><td>{{f1 .Config.ChangeThreshold}}%</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}disabled{{end}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Sensor</th><td>{{.Config.Sensor}}</td></tr>
<tr><th>Driver</th><td>{{.Config.Driver}} (pin {{.Config.Pin}}, {{.Config.PWMFrequency}} Hz)</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> &middot; <a href="/metrics">Metrics</a></p>
<script>
(function() {
  var poll = {{.Config.PollMs}};
  if (!poll || poll < 1000) { poll = 1000; }

  function set(id, text) {
    var el = document.getElementById(id);
    if (el) { el.textContent = text; }
  }

  function refresh() {
    fetch("/index.json").then(function(r) { return r.json(); }).then(function(msg) {
      var s = msg.status;
      set("state", s.state);
      set("iterations", s.iterations);
      set("suppressed", s.suppressed);
      if (s.fan) {
        set("temperature", s.fan.temperature_c.toFixed(1) + " °C");
        set("band", s.fan.band);
        set("target", s.fan.target_duty.toFixed(1) + "%");
        set("last", s.fan.timestamp);
        var bar = document.getElementById("duty-bar");
        if (bar) { bar.style.width = s.fan.duty + "%"; }
      }
    }).catch(function() {});
  }

  setInterval(refresh, poll);
})();
</script>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
