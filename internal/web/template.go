package web

// pageTemplate renders a page.Snapshot. Every interactive control is a form
// posting to an action route that redirects back here.
const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
{{- if and .AutoRefresh (not .OpenModal)}}
<meta http-equiv="refresh" content="{{.RefreshSeconds}}">
{{- end}}
<title>Access Control Dashboard</title>
<style>
*{margin:0;padding:0;box-sizing:border-box}
body{font-family:-apple-system,BlinkMacSystemFont,"Segoe UI",Roboto,sans-serif;background:#f3f4f6;color:#1f2937}
body.scroll-locked{overflow:hidden}
form.inline{display:inline}
header{background:#1e293b;color:#fff;padding:16px 24px;display:flex;justify-content:space-between;align-items:center}
header .meta{font-size:13px;color:#cbd5e1}
.container{max-width:1400px;margin:0 auto;padding:20px}
.stats{display:grid;grid-template-columns:repeat(auto-fit,minmax(180px,1fr));gap:16px;margin-bottom:20px}
.stat{background:#fff;border-radius:8px;padding:16px;box-shadow:0 1px 3px rgba(0,0,0,.1)}
.stat .value{font-size:28px;font-weight:700}
.stat .label{font-size:13px;color:#6b7280}
.alert{background:#fee2e2;border:1px solid #ef4444;color:#991b1b;padding:12px 16px;border-radius:6px;margin-bottom:16px;display:flex;justify-content:space-between}
.tabs{display:flex;gap:4px;border-bottom:2px solid #e5e7eb;margin-bottom:16px}
.tab-btn{background:none;border:none;padding:10px 18px;cursor:pointer;font-size:14px;color:#6b7280}
.tab-btn.active{color:#2563eb;border-bottom:2px solid #2563eb;font-weight:600}
.tab-content{display:none;background:#fff;border-radius:8px;padding:20px;box-shadow:0 1px 3px rgba(0,0,0,.1)}
.tab-content.active{display:block}
table{width:100%;border-collapse:collapse;font-size:14px}
th,td{text-align:left;padding:8px 10px;border-bottom:1px solid #e5e7eb}
.loading,.empty,.error{text-align:center;color:#6b7280;padding:20px}
.error{color:#b91c1c}
.badge{padding:2px 8px;border-radius:10px;font-size:12px;font-weight:600}
.badge.authorized,.badge.alert-sent{background:#d1fae5;color:#065f46}
.badge.unauthorized{background:#fee2e2;color:#991b1b}
.badge.no-alert{background:#f3f4f6;color:#4b5563}
tr.unauthorized-row{background:#fef2f2}
.video{background:#000;border-radius:8px;min-height:240px;display:flex;align-items:center;justify-content:center;color:#9ca3af;margin-bottom:16px}
.video img{max-width:100%}
.image-grid{display:grid;grid-template-columns:repeat(auto-fill,minmax(180px,1fr));gap:12px}
.image-card button{border:none;background:none;cursor:pointer;width:100%}
.image-card img{width:100%;border-radius:6px}
.pagination{display:flex;gap:8px;align-items:center;justify-content:center;margin-top:12px}
.camera-grid{display:grid;grid-template-columns:repeat(auto-fill,minmax(240px,1fr));gap:12px}
.camera-card{border:1px solid #e5e7eb;border-radius:8px;padding:12px}
.camera-card.online{border-left:4px solid #059669}
.camera-card.offline{border-left:4px solid #dc2626}
.camera-card.warning{border-left:4px solid #d97706}
.camera-header{display:flex;justify-content:space-between;align-items:center;margin-bottom:8px}
.camera-name{font-weight:600}
.camera-status{font-size:12px;font-weight:600}
.camera-status.online{color:#059669}
.camera-status.offline{color:#dc2626}
.camera-status.warning{color:#d97706}
.camera-info{border-top:1px solid #f3f4f6;padding-top:6px}
.camera-info-item{display:flex;justify-content:space-between;font-size:13px;padding:2px 0}
.camera-info-label{color:#6b7280}
.camera-info-value{font-weight:500}
.btn{padding:8px 14px;border-radius:6px;border:none;cursor:pointer;font-size:14px;text-decoration:none;display:inline-block}
.btn-primary{background:#2563eb;color:#fff}
.btn-secondary{background:#e5e7eb;color:#1f2937}
.controls{display:flex;gap:12px;align-items:center;margin-bottom:12px;flex-wrap:wrap}
.image-modal{position:fixed;inset:0;z-index:100;display:flex;align-items:center;justify-content:center}
.image-modal-backdrop,.image-modal-backdrop button{position:absolute;inset:0;width:100%;height:100%;background:rgba(0,0,0,.7);border:none}
.image-modal-content{position:relative;background:#fff;border-radius:8px;max-width:90vw;max-height:90vh;overflow:auto}
.image-modal-header,.image-modal-footer{display:flex;justify-content:space-between;gap:8px;padding:12px 16px}
.image-modal-body img{max-width:85vw;max-height:70vh}
</style>
</head>
<body{{if .ScrollLocked}} class="scroll-locked"{{end}}>
<header>
  <h1>Access Control Dashboard</h1>
  <div class="meta">
    <span id="currentTime">{{.Text "currentTime"}}</span>
    &middot; Last update: <span id="lastUpdate">{{.Text "lastUpdate"}}</span>
    <form class="inline" method="post" action="/autorefresh">
      <label><input type="checkbox" id="autoRefresh" name="enabled" value="on"{{if .AutoRefresh}} checked{{end}} onchange="this.form.submit()"> Auto-refresh</label>
      <noscript><button type="submit" class="btn btn-secondary">Apply</button></noscript>
      <span id="refreshCountdown">{{.Text "refreshCountdown"}}</span>
    </form>
  </div>
</header>
<div class="container">
{{- with .AlertMessage}}
  <div class="alert" role="alert">
    <span>{{.}}</span>
    <form class="inline" method="post" action="/alert/dismiss"><button type="submit" class="btn btn-secondary">OK</button></form>
  </div>
{{- end}}
  <div class="stats">
    <div class="stat"><div class="value" id="totalToday">{{.Text "totalToday"}}</div><div class="label">Total Today</div></div>
    <div class="stat"><div class="value" id="authorizedToday">{{.Text "authorizedToday"}}</div><div class="label">Authorized</div></div>
    <div class="stat"><div class="value" id="unauthorizedToday">{{.Text "unauthorizedToday"}}</div><div class="label">Unauthorized</div></div>
    <div class="stat"><div class="value" id="uniqueEmployees">{{.Text "uniqueEmployees"}}</div><div class="label">Employees</div></div>
    <div class="stat"><div class="value" id="activeCameras">{{.Text "activeCameras"}}</div><div class="label">Active Cameras</div></div>
  </div>

  <nav class="tabs">
  {{- range .Tabs}}
    <form class="inline" method="post" action="/tabs/{{.Name}}">
      <button type="submit" id="{{.ButtonID}}" data-tab="{{.Name}}" class="tab-btn {{$.Class .ButtonID}}">{{.Label}}</button>
    </form>
  {{- end}}
  </nav>

  <section id="tab-live" class="tab-content {{.Class "tab-live"}}">
    <div class="video">
      <img id="liveVideoStream" src="{{.StreamURL}}" alt="Live stream"{{if .Hidden "liveVideoStream"}} hidden{{end}}>
      <div id="videoPlaceholder"{{if .Hidden "videoPlaceholder"}} hidden{{end}}>Video stream unavailable</div>
    </div>
    <table>
      <thead><tr><th>Time</th><th>Camera</th><th>Person</th><th>Status</th><th>Confidence</th><th>Alert</th></tr></thead>
      <tbody id="liveAccessTable">{{.HTML "liveAccessTable"}}</tbody>
    </table>
  </section>

  <section id="tab-attendance" class="tab-content {{.Class "tab-attendance"}}">
    <div class="controls"><a class="btn btn-primary" href="/export/attendance.csv">Export CSV</a></div>
    <table>
      <thead><tr><th>Employee</th><th>First Entry</th><th>Last Entry</th><th>Entries</th><th>Camera</th><th>Avg Confidence</th></tr></thead>
      <tbody id="attendanceTable">{{.HTML "attendanceTable"}}</tbody>
    </table>
  </section>

  <section id="tab-unauthorized" class="tab-content {{.Class "tab-unauthorized"}}">
    <form class="controls" method="post" action="/unauthorized/hours">
      <label for="unauthorizedHours">Window</label>
      <select id="unauthorizedHours" name="hours" onchange="this.form.submit()">
      {{- $hours := .Value "unauthorizedHours"}}
      {{- range .HourOptions}}
        <option value="{{.Value}}"{{if eq .Value $hours}} selected{{end}}>{{.Label}}</option>
      {{- end}}
      </select>
      <button type="submit" class="btn btn-secondary">Apply</button>
      <span id="unauthorizedCount">{{.HTML "unauthorizedCount"}}</span>
    </form>
    <table>
      <thead><tr><th>Time</th><th>Camera</th><th>Person</th><th>Confidence</th><th>Alert</th></tr></thead>
      <tbody id="unauthorizedTable">{{.HTML "unauthorizedTable"}}</tbody>
    </table>
    <h3>Captured Images <small id="imageCount">{{.Text "imageCount"}}</small></h3>
    <div id="capturedImagesGrid">{{.HTML "capturedImagesGrid"}}</div>
  </section>

  <section id="tab-cameras" class="tab-content {{.Class "tab-cameras"}}">
    <div id="cameraGrid" class="camera-grid">{{.HTML "cameraGrid"}}</div>
  </section>

  <section id="tab-reports" class="tab-content {{.Class "tab-reports"}}">
    <form class="controls" method="post" action="/reports/generate">
      <label>From <input type="date" id="reportStartDate" name="start" value="{{.Value "reportStartDate"}}"></label>
      <label>To <input type="date" id="reportEndDate" name="end" value="{{.Value "reportEndDate"}}"></label>
      <button type="submit" class="btn btn-primary">Generate Report</button>
      <button type="submit" class="btn btn-secondary" formmethod="get" formaction="/export/report.csv">Export CSV</button>
      <button type="submit" class="btn btn-secondary" formmethod="get" formaction="/export/report.xlsx">Export Excel</button>
    </form>
    <table>
      <thead><tr><th>Date</th><th>Employee</th><th>First Entry</th><th>Last Entry</th><th>Entries</th></tr></thead>
      <tbody id="reportTable">{{.HTML "reportTable"}}</tbody>
    </table>
    <h3>Hourly Activity</h3>
    <img id="activityChart" src="{{.ChartSrc}}" width="800" height="300" alt="Hourly activity">
  </section>
</div>
{{- with .OpenModal}}
{{.Markup}}
{{- end}}
</body>
</html>
`
