package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/heater-remote/internal/status"
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
	"onOff": func(b bool) string {
		if b {
			return "ON"
		}
		return "OFF"
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Heater Remote {{.Config.Device}}</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.pending { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Heater Remote: {{.Config.Device}}</h1>

<h2>Heater</h2>
<table>
<tr><th>Phase</th><td class="{{if eq (printf "%s" .Phase) "STEADY"}}on{{else}}pending{{end}}">{{.Phase}}</td></tr>
<tr><th>Power</th><td class="{{if .Heater.PowerOn}}on{{else}}off{{end}}">{{onOff .Heater.PowerOn}}</td></tr>
<tr><th>Target</th><td>{{.Heater.Target}}</td></tr>
<tr><th>Setpoint</th><td class="{{if .Converged}}on{{else}}pending{{end}}">{{.Heater.Current}}</td></tr>
<tr><th>Range</th><td>{{.Config.MinTemp}} to {{.Config.MaxTemp}} (initial {{.Config.InitialTemp}})</td></tr>
</table>

<h2>Buttons</h2>
<table>
<tr><th>Up presses</th><td>{{.Presses.Up}}</td></tr>
<tr><th>Down presses</th><td>{{.Presses.Down}}</td></tr>
<tr><th>Func presses</th><td>{{.Presses.Func}}</td></tr>
<tr><th>Average hold</th><td>{{printf "%.1f" .AvgPressMs}}ms</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
<tr><th>Control topic</th><td>{{.Config.TopicSet}}</td></tr>
<tr><th>Status topic</th><td>{{.Config.TopicGet}}</td></tr>
<tr><th>Messages</th><td>{{.Messages.Accepted}} accepted, {{.Messages.Rejected}} rejected, {{.Messages.Dropped}} dropped</td></tr>
<tr><th>Last status</th><td>{{if .LastPublish.IsZero}}never{{else}}{{.LastPublish.UTC.Format "2006-01-02T15:04:05Z"}}{{end}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Click / spacing</th><td>{{.Config.ClickMs}}ms / {{.Config.SpacingMs}}ms</td></tr>
<tr><th>Publish interval</th><td>{{.Config.PublishIntervalMs}}ms</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() and Converged() methods but the template
	// needs fields.
	data := struct {
		status.Snapshot
		Uptime    time.Duration
		Converged bool
	}{
		Snapshot:  snap,
		Uptime:    snap.Uptime(),
		Converged: snap.Converged(),
	}
	indexTmpl.Execute(w, data)
}
