package dashboard

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"accessdash/internal/model"
	"accessdash/internal/page"
	"accessdash/internal/queue"
	"accessdash/internal/sections"
)

type manualClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*manualTicker
}

type manualTicker struct {
	clock   *manualClock
	every   time.Duration
	next    time.Time
	fn      func()
	stopped bool
}

func newManualClock(now time.Time) *manualClock { return &manualClock{now: now} }

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Every(d time.Duration, fn func()) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTicker{clock: c, every: d, next: c.now.Add(d), fn: fn}
	c.tickers = append(c.tickers, t)
	return t
}

func (t *manualTicker) Stop() {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	t.stopped = true
}

// Advance moves time forward, firing due tickers in time order.
func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()
	for {
		c.mu.Lock()
		var due *manualTicker
		for _, t := range c.tickers {
			if !t.stopped && !t.next.After(target) && (due == nil || t.next.Before(due.next)) {
				due = t
			}
		}
		if due == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		c.now = due.next
		due.next = due.next.Add(due.every)
		fn := due.fn
		c.mu.Unlock()
		fn()
	}
}

func (c *manualClock) active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.tickers {
		if !t.stopped {
			n++
		}
	}
	return n
}

type countingBackend struct {
	mu    sync.Mutex
	calls map[string]int
}

func (b *countingBackend) hit(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls[name]++
}

func (b *countingBackend) count(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[name]
}

func (b *countingBackend) Summary(context.Context) (model.SummaryStats, error) {
	b.hit(sections.NameSummary)
	return model.SummaryStats{TotalToday: 5}, nil
}

func (b *countingBackend) RecentAccess(context.Context, int) ([]model.AccessRecord, error) {
	b.hit(sections.NameLive)
	return nil, nil
}

func (b *countingBackend) AttendanceToday(context.Context) ([]model.AttendanceRecord, error) {
	b.hit(sections.NameAttendance)
	return nil, nil
}

func (b *countingBackend) Unauthorized(context.Context, int) ([]model.AccessRecord, error) {
	b.hit(sections.NameUnauthorized)
	return nil, nil
}

func (b *countingBackend) LatestImages(context.Context, int, int) (model.ImagePage, error) {
	b.hit(sections.NameImages)
	return model.ImagePage{Total: 0, TotalPages: 1}, nil
}

func (b *countingBackend) CameraStatus(context.Context) ([]model.CameraStatus, error) {
	b.hit(sections.NameCameras)
	return nil, nil
}

func (b *countingBackend) Hourly(context.Context, int) ([]model.HourlyBucket, error) {
	b.hit(sections.NameHourly)
	return nil, nil
}

func (b *countingBackend) AttendanceReport(context.Context, string, string) ([]model.ReportRow, error) {
	b.hit(sections.NameReport)
	return nil, nil
}

type failingChecker struct{}

func (failingChecker) Check(context.Context, string) error { return errors.New("connection refused") }

var start = time.Date(2024, 5, 1, 8, 30, 15, 0, time.UTC)

func newTestDashboard(opts Options) (*Dashboard, *countingBackend, *page.Page, *manualClock) {
	backend := &countingBackend{calls: map[string]int{}}
	p := page.New()
	clock := newManualClock(start)
	r := sections.New(backend, p, nil, nil, sections.Options{Location: time.UTC})
	if opts.RefreshInterval == 0 {
		opts.RefreshInterval = 10 * time.Second
	}
	if opts.CountdownInterval == 0 {
		opts.CountdownInterval = time.Second
	}
	d := New(Deps{Page: p, Sections: r, Jobs: queue.Inline{}, Clock: clock, Checker: failingChecker{}}, opts)
	return d, backend, p, clock
}

func TestTransition(t *testing.T) {
	state, actions := Transition(true)
	if state != Enabled {
		t.Fatalf("expected Enabled, got %v", state)
	}
	if !reflect.DeepEqual(actions, []Action{StopRefresh, StopCountdown, StartRefresh, StartCountdown}) {
		t.Fatalf("unexpected enable actions %v", actions)
	}
	state, actions = Transition(false)
	if state != Disabled {
		t.Fatalf("expected Disabled, got %v", state)
	}
	if !reflect.DeepEqual(actions, []Action{StopRefresh, StopCountdown, ClearCountdown}) {
		t.Fatalf("unexpected disable actions %v", actions)
	}
}

func TestAutoRefreshTogglingDoesNotAccumulate(t *testing.T) {
	clock := newManualClock(start)
	var mu sync.Mutex
	reloads := 0
	a := NewAutoRefresh(clock, 10*time.Second, time.Second, func() {
		mu.Lock()
		reloads++
		mu.Unlock()
	}, func(string) {})

	a.Set(true)
	a.Set(false)
	a.Set(true)
	a.Set(true)
	clock.Advance(30 * time.Second)

	if reloads != 3 {
		t.Fatalf("expected 3 reloads in 30s, got %d", reloads)
	}
	if n := clock.active(); n != 2 {
		t.Fatalf("expected 2 live timers, got %d", n)
	}

	a.Set(false)
	clock.Advance(30 * time.Second)
	if reloads != 3 || clock.active() != 0 {
		t.Fatalf("disabled controller kept running: reloads=%d timers=%d", reloads, clock.active())
	}
}

func TestCountdownDisplay(t *testing.T) {
	clock := newManualClock(start)
	var shown []string
	a := NewAutoRefresh(clock, 10*time.Second, time.Second, func() {}, func(s string) { shown = append(shown, s) })

	a.Set(true)
	clock.Advance(3 * time.Second)
	if !reflect.DeepEqual(shown, []string{"(9s)", "(8s)", "(7s)"}) {
		t.Fatalf("unexpected countdown %v", shown)
	}
	if a.Countdown() != 7 {
		t.Fatalf("expected 7 seconds left, got %d", a.Countdown())
	}

	a.Set(false)
	if shown[len(shown)-1] != "" {
		t.Fatal("disabling should clear the countdown")
	}
	if a.State() != Disabled {
		t.Fatal("expected Disabled")
	}
}

func TestCountdownWrapsAtZero(t *testing.T) {
	clock := newManualClock(start)
	var last string
	a := NewAutoRefresh(clock, 3*time.Second, time.Second, func() {}, func(s string) { last = s })
	a.Set(true)
	for i := 0; i < 3; i++ {
		a.onCountdown(a.gen)
	}
	if last != "(0s)" {
		t.Fatalf("expected (0s), got %q", last)
	}
	if a.Countdown() != 3 {
		t.Fatalf("countdown should wrap to the full interval, got %d", a.Countdown())
	}

	stale := a.gen
	a.Set(true)
	a.onCountdown(stale)
	if a.Countdown() != 3 {
		t.Fatal("a stopped timer's callback must not count down")
	}
}

func TestActivateIsIdempotent(t *testing.T) {
	d, backend, p, _ := newTestDashboard(Options{})

	for i := 0; i < 2; i++ {
		if err := d.Tabs.Activate("unauthorized"); err != nil {
			t.Fatal(err)
		}
	}

	active := p.WithClass(page.ClassActive)
	sort.Strings(active)
	if !reflect.DeepEqual(active, []string{"tab-btn-unauthorized", "tab-unauthorized"}) {
		t.Fatalf("unexpected active elements %v", active)
	}
	if d.Tabs.Current() != TabUnauthorized {
		t.Fatalf("current tab %q", d.Tabs.Current())
	}
	if backend.count(sections.NameUnauthorized) != 2 || backend.count(sections.NameImages) != 2 {
		t.Fatalf("each activation should run both renderers: %v", backend.calls)
	}
	if backend.count(sections.NameLive) != 0 {
		t.Fatal("other tabs must not render")
	}
}

func TestActivateSwitchesTabs(t *testing.T) {
	d, backend, p, _ := newTestDashboard(Options{})
	_ = d.Tabs.Activate("live")
	_ = d.Tabs.Activate("reports")

	if p.HasClass(ButtonID(TabLive), page.ClassActive) || p.HasClass(PanelID(TabLive), page.ClassActive) {
		t.Fatal("previous tab still active")
	}
	if len(p.WithClass(page.ClassActive)) != 2 {
		t.Fatalf("expected one button and one panel active, got %v", p.WithClass(page.ClassActive))
	}
	if backend.count(sections.NameHourly) != 1 {
		t.Fatal("reports tab should load the hourly chart")
	}
}

func TestActivateUnknownTab(t *testing.T) {
	d, _, p, _ := newTestDashboard(Options{})
	_ = d.Tabs.Activate("cameras")

	if err := d.Tabs.Activate("settings"); !errors.Is(err, ErrUnknownTab) {
		t.Fatalf("expected ErrUnknownTab, got %v", err)
	}
	if d.Tabs.Current() != TabCameras || !p.HasClass(PanelID(TabCameras), page.ClassActive) {
		t.Fatal("unknown tab must not change state")
	}
}

func TestModal(t *testing.T) {
	p := page.New()
	m := &Modal{page: p}

	if err := m.Open("", "x.jpg"); !errors.Is(err, ErrNoImage) {
		t.Fatalf("expected ErrNoImage, got %v", err)
	}
	m.Close()
	if p.ScrollLocked() {
		t.Fatal("closing with nothing open must be a no-op")
	}

	_ = m.Open("/images/a.jpg", "a.jpg")
	_ = m.Open("/images/b.jpg", `b"<>.jpg`)
	open := p.Modal()
	if open == nil || open.URL != "/images/b.jpg" || !p.ScrollLocked() {
		t.Fatalf("expected b to replace a, got %+v", open)
	}
	if want := `download="b&#34;&lt;&gt;.jpg"`; !strings.Contains(string(open.Markup), want) {
		t.Fatalf("download link not escaped: %s", open.Markup)
	}

	m.Click("content")
	if p.Modal() == nil {
		t.Fatal("click inside the content must not close")
	}
	m.Click(OverlayTarget)
	if p.Modal() != nil || p.ScrollLocked() {
		t.Fatal("overlay click should close and restore scroll")
	}
}

func TestStartBootstraps(t *testing.T) {
	d, backend, p, clock := newTestDashboard(Options{AutoRefresh: true, PublicHost: "cam.local", StreamPort: "5001"})
	d.Start(context.Background())
	defer d.Stop()

	if p.Value(page.IDReportStart) != "2024-05-01" || p.Value(page.IDReportEnd) != "2024-05-01" {
		t.Fatal("date inputs should default to today")
	}
	if p.Text(page.IDCurrentTime) != "08:30:15" {
		t.Fatalf("unexpected clock %q", p.Text(page.IDCurrentTime))
	}
	if p.Text(page.IDLastUpdate) != "5/1/2024, 8:30:15 AM" {
		t.Fatalf("unexpected last update %q", p.Text(page.IDLastUpdate))
	}
	if p.Attr(page.IDVideoStream, "src") != "http://cam.local:5001/stream/video.mjpeg" {
		t.Fatalf("unexpected stream url %q", p.Attr(page.IDVideoStream, "src"))
	}
	if !p.Hidden(page.IDVideoStream) || p.Hidden(page.IDVideoPlaceholder) {
		t.Fatal("unavailable stream should show the placeholder")
	}
	if p.Text(page.IDTotalToday) != "5" || backend.count(sections.NameLive) != 1 {
		t.Fatalf("initial load missing: %v", backend.calls)
	}
	if !p.HasClass(ButtonID(TabLive), page.ClassActive) {
		t.Fatal("live tab should start active")
	}
	if d.Refresh.State() != Enabled || p.Value(page.IDAutoRefresh) != "on" {
		t.Fatal("auto-refresh should start enabled")
	}

	clock.Advance(10 * time.Second)
	if backend.count(sections.NameSummary) != 2 || backend.count(sections.NameLive) != 2 {
		t.Fatalf("refresh tick should reload summary and current tab: %v", backend.calls)
	}
	if p.Text(page.IDCurrentTime) != "08:30:25" {
		t.Fatalf("clock not ticking: %q", p.Text(page.IDCurrentTime))
	}

	d.SetAutoRefresh(false)
	if p.Text(page.IDRefreshCountdown) != "" || p.Value(page.IDAutoRefresh) != "" {
		t.Fatal("disabling should clear countdown and checkbox")
	}
}

func TestStreamURLUsesRequestHost(t *testing.T) {
	d, _, _, _ := newTestDashboard(Options{StreamPort: "5001"})
	if got := d.StreamURL("10.0.0.5:5000"); got != "http://10.0.0.5:5001/stream/video.mjpeg" {
		t.Fatalf("unexpected url %q", got)
	}
	if got := d.StreamURL(""); got != "http://localhost:5001/stream/video.mjpeg" {
		t.Fatalf("unexpected fallback %q", got)
	}
}

func TestGenerateReportValidatesDates(t *testing.T) {
	d, backend, p, _ := newTestDashboard(Options{})

	if err := d.GenerateReport("2024-05-01", " "); !errors.Is(err, sections.ErrMissingDates) {
		t.Fatalf("expected ErrMissingDates, got %v", err)
	}
	if p.Alert() != sections.MissingDates || backend.count(sections.NameReport) != 0 {
		t.Fatal("missing date must alert without a request")
	}
	d.DismissAlert()

	if err := d.GenerateReport("2024-05-01", "2024-05-02"); err != nil {
		t.Fatal(err)
	}
	if backend.count(sections.NameReport) != 1 || p.Alert() != "" {
		t.Fatal("expected one report request")
	}
}

func TestImagePageRejectsOutOfRange(t *testing.T) {
	d, backend, _, _ := newTestDashboard(Options{})
	if err := d.ImagePage(2); !errors.Is(err, sections.ErrPageOutOfRange) {
		t.Fatalf("expected ErrPageOutOfRange, got %v", err)
	}
	if backend.count(sections.NameImages) != 0 {
		t.Fatal("no request should be issued")
	}
	if err := d.ImagePage(1); err != nil || backend.count(sections.NameImages) != 1 {
		t.Fatalf("page 1 should load: %v", err)
	}
}
