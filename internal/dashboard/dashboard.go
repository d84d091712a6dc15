// Package dashboard holds the process-wide dashboard state and the
// controllers that drive it: tabs, auto-refresh, the image overlay and the
// startup sequence.
package dashboard

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"accessdash/internal/format"
	"accessdash/internal/metrics"
	"accessdash/internal/page"
	"accessdash/internal/queue"
	"accessdash/internal/sections"
)

// StreamPath is the MJPEG endpoint on the streaming server.
const StreamPath = "/stream/video.mjpeg"

// Options configures the controllers.
type Options struct {
	RefreshInterval   time.Duration
	CountdownInterval time.Duration
	AutoRefresh       bool
	PublicHost        string
	StreamPort        string
	UnauthorizedHours int
}

// StreamChecker reports whether the video stream answers.
type StreamChecker interface {
	Check(ctx context.Context, url string) error
}

// HTTPChecker checks the stream with a GET and reads only the headers.
type HTTPChecker struct {
	Client *http.Client
}

// Check succeeds on any 2xx answer.
func (p HTTPChecker) Check(ctx context.Context, url string) error {
	client := p.Client
	if client == nil {
		client = &http.Client{Timeout: 3 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build stream check: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("stream check: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("stream check: %s", resp.Status)
	}
	return nil
}

// Dashboard wires the renderers to the page and owns every controller.
type Dashboard struct {
	Tabs    *TabController
	Refresh *AutoRefresh
	Modal   *Modal

	page     *page.Page
	sections *sections.Renderer
	jobs     queue.Queue
	clock    Clock
	checker  StreamChecker
	log      *zap.Logger
	metrics  *metrics.Metrics
	opts     Options

	mu          sync.Mutex
	base        context.Context
	clockTicker Ticker
}

// Deps are the collaborators a Dashboard needs. Log, Metrics and Checker are
// optional.
type Deps struct {
	Page     *page.Page
	Sections *sections.Renderer
	Jobs     queue.Queue
	Clock    Clock
	Checker  StreamChecker
	Log      *zap.Logger
	Metrics  *metrics.Metrics
}

// New builds the dashboard and registers each tab's renderers.
func New(deps Deps, opts Options) *Dashboard {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.Clock == nil {
		deps.Clock = RealClock{}
	}
	if opts.StreamPort == "" {
		opts.StreamPort = "5001"
	}
	if opts.UnauthorizedHours <= 0 {
		opts.UnauthorizedHours = 24
	}
	d := &Dashboard{
		page:     deps.Page,
		sections: deps.Sections,
		jobs:     deps.Jobs,
		clock:    deps.Clock,
		checker:  deps.Checker,
		log:      deps.Log,
		metrics:  deps.Metrics,
		opts:     opts,
		base:     context.Background(),
	}
	d.Modal = &Modal{page: deps.Page}
	deps.Page.SetHidden(page.IDVideoPlaceholder, true)
	d.Tabs = newTabController(deps.Page, d.dispatch)
	d.Refresh = NewAutoRefresh(deps.Clock, opts.RefreshInterval, opts.CountdownInterval, d.tick,
		func(text string) { deps.Page.SetText(page.IDRefreshCountdown, text) })

	r := deps.Sections
	d.Tabs.Register(TabLive, sections.NameLive, r.Live)
	d.Tabs.Register(TabAttendance, sections.NameAttendance, r.Attendance)
	d.Tabs.Register(TabUnauthorized, sections.NameUnauthorized, r.Unauthorized)
	d.Tabs.Register(TabUnauthorized, sections.NameImages, func(ctx context.Context) {
		_ = r.Images(ctx, 1)
	})
	d.Tabs.Register(TabCameras, sections.NameCameras, r.Cameras)
	d.Tabs.Register(TabReports, sections.NameHourly, r.Hourly)
	return d
}

// dispatch queues a render. A full queue drops it; the next poll retries.
func (d *Dashboard) dispatch(name string, run func(context.Context)) {
	d.mu.Lock()
	ctx := d.base
	d.mu.Unlock()
	if err := d.jobs.Publish(ctx, queue.Job{Name: name, Run: run}); err != nil {
		d.metrics.Dropped()
		d.log.Warn("render job dropped", zap.String("section", name), zap.Error(err))
	}
}

// Start runs the startup sequence: date inputs default to today, the clock
// starts, the initial tab and summary load, auto-refresh starts when
// configured and the video stream is checked once. ctx bounds background work.
func (d *Dashboard) Start(ctx context.Context) {
	d.mu.Lock()
	d.base = ctx
	d.mu.Unlock()

	today := format.Date(d.now())
	d.page.SetValue(page.IDReportStart, today)
	d.page.SetValue(page.IDReportEnd, today)
	d.page.SetValue(page.IDUnauthorizedHours, strconv.Itoa(d.opts.UnauthorizedHours))
	d.page.SetAttr(page.IDVideoStream, "src", d.StreamURL(""))

	d.updateClock()
	d.mu.Lock()
	d.clockTicker = d.clock.Every(time.Second, d.updateClock)
	d.mu.Unlock()

	_ = d.Tabs.Activate(string(d.Tabs.Current()))
	d.dispatch(sections.NameSummary, d.sections.Summary)
	d.dispatch("stream", d.checkStream)

	d.SetAutoRefresh(d.opts.AutoRefresh)
	d.log.Info("dashboard started",
		zap.Duration("refresh_interval", d.opts.RefreshInterval),
		zap.Bool("auto_refresh", d.opts.AutoRefresh))
}

// Stop halts every timer. Queued jobs finish under the Start context.
func (d *Dashboard) Stop() {
	d.Refresh.Set(false)
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.clockTicker != nil {
		d.clockTicker.Stop()
		d.clockTicker = nil
	}
}

func (d *Dashboard) now() time.Time {
	return d.clock.Now().In(d.sections.Location())
}

func (d *Dashboard) updateClock() {
	now := d.now()
	d.page.SetText(page.IDCurrentTime, format.ClockTime(now))
	d.page.SetText(page.IDLastUpdate, format.LastUpdate(now))
}

// LoadAll reloads the summary counters and the current tab.
func (d *Dashboard) LoadAll() {
	d.dispatch(sections.NameSummary, d.sections.Summary)
	d.Tabs.Reload()
}

func (d *Dashboard) tick() {
	d.metrics.Tick()
	d.LoadAll()
	d.dispatch("stream", d.checkStream)
}

// SetAutoRefresh mirrors the checkbox and switches the controller.
func (d *Dashboard) SetAutoRefresh(enable bool) {
	value := ""
	if enable {
		value = "on"
	}
	d.page.SetValue(page.IDAutoRefresh, value)
	d.Refresh.Set(enable)
}

// StreamURL builds the MJPEG address. The configured public host wins;
// otherwise the host the page was requested on is used, without its port.
func (d *Dashboard) StreamURL(requestHost string) string {
	host := d.opts.PublicHost
	if host == "" {
		host = requestHost
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if host == "" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, d.opts.StreamPort) + StreamPath
}

// checkStream shows the stream when it answers and the placeholder otherwise.
func (d *Dashboard) checkStream(ctx context.Context) {
	if d.checker == nil {
		return
	}
	url := d.page.Attr(page.IDVideoStream, "src")
	if err := d.checker.Check(ctx, url); err != nil {
		d.log.Debug("video stream not available", zap.String("url", url), zap.Error(err))
		d.page.SetHidden(page.IDVideoStream, true)
		d.page.SetHidden(page.IDVideoPlaceholder, false)
		return
	}
	d.page.SetHidden(page.IDVideoStream, false)
	d.page.SetHidden(page.IDVideoPlaceholder, true)
}

// SetUnauthorizedHours updates the hour window and reloads the table.
func (d *Dashboard) SetUnauthorizedHours(hours string) {
	d.page.SetValue(page.IDUnauthorizedHours, strings.TrimSpace(hours))
	d.dispatch(sections.NameUnauthorized, d.sections.Unauthorized)
}

// ImagePage navigates the captured-images grid. Pages outside the known
// range are rejected here, before any request is queued.
func (d *Dashboard) ImagePage(n int) error {
	if err := d.sections.CheckImagePage(n); err != nil {
		return err
	}
	d.dispatch(sections.NameImages, func(ctx context.Context) {
		if err := d.sections.Images(ctx, n); err != nil {
			d.log.Warn("image page rejected", zap.Int("page", n), zap.Error(err))
		}
	})
	return nil
}

// GenerateReport stores the date inputs and queues the report. Missing
// bounds raise the page alert and return sections.ErrMissingDates.
func (d *Dashboard) GenerateReport(start, end string) error {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	d.page.SetValue(page.IDReportStart, start)
	d.page.SetValue(page.IDReportEnd, end)
	if start == "" || end == "" {
		d.page.SetAlert(sections.MissingDates)
		return sections.ErrMissingDates
	}
	d.dispatch(sections.NameReport, func(ctx context.Context) {
		_ = d.sections.Report(ctx)
	})
	return nil
}

// DismissAlert clears the pending user alert.
func (d *Dashboard) DismissAlert() {
	d.page.SetAlert("")
}

// Snapshot returns the page state for rendering.
func (d *Dashboard) Snapshot() page.Snapshot {
	return d.page.Snapshot()
}

// Sections exposes the renderers for chart and export handlers.
func (d *Dashboard) Sections() *sections.Renderer {
	return d.sections
}
