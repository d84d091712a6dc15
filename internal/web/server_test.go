package web

import (
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"accessdash/internal/apiclient"
	"accessdash/internal/dashboard"
	"accessdash/internal/metrics"
	"accessdash/internal/model"
	"accessdash/internal/page"
	"accessdash/internal/queue"
	"accessdash/internal/sections"
)

var testNow = time.Date(2024, 5, 1, 8, 30, 15, 0, time.UTC)

type stillClock struct{}

func (stillClock) Now() time.Time { return testNow }

func (stillClock) Every(time.Duration, func()) dashboard.Ticker { return stillTicker{} }

type stillTicker struct{}

func (stillTicker) Stop() {}

// backend serves canned JSON per path; failing paths answer 500.
type backend struct {
	mu      sync.Mutex
	failing map[string]bool
	hits    map[string]int
}

func (b *backend) fail(path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failing[path] = true
}

func (b *backend) count(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[path]
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.hits[r.URL.Path]++
	failing := b.failing[r.URL.Path]
	b.mu.Unlock()
	if failing {
		http.Error(w, "boom", http.StatusInternalServerError)
		return
	}
	name := "Ana"
	var body any
	switch r.URL.Path {
	case apiclient.PathHealth:
		body = map[string]string{"status": "healthy"}
	case apiclient.PathSummary:
		body = model.SummaryStats{TotalToday: 42, AuthorizedToday: 40, UnauthorizedToday: 2, UniqueEmployees: 15, ActiveCameras: 3}
	case apiclient.PathRecent:
		body = []model.AccessRecord{{Timestamp: "2024-05-01T08:00:00", CameraName: "Gate", SubjectName: &name, IsAuthorized: true}}
	case apiclient.PathAttendance:
		body = []model.AttendanceRecord{{SubjectName: "Ana", FirstEntry: "2024-05-01T08:00:00", LastEntry: "2024-05-01T17:00:00", TotalEntries: 3, CameraName: "Gate"}}
	case apiclient.PathUnauthorized:
		body = []model.AccessRecord{}
	case apiclient.PathImages:
		body = model.ImagePage{
			Images:     []model.CapturedImage{{Timestamp: float64(testNow.Unix()), Filename: "cap_1.jpg", URL: "/captures/cap_1.jpg"}},
			Total:      1,
			TotalPages: 1,
		}
	case apiclient.PathCameras:
		body = []model.CameraStatus{{CameraName: "Gate", Status: model.CameraOnline}}
	case apiclient.PathHourly:
		body = []model.HourlyBucket{{Hour: "2024-05-01T08:00:00", Authorized: 3, Unauthorized: 1, Total: 4}}
	case apiclient.PathReport:
		body = []model.ReportRow{{Date: "2024-05-01", SubjectName: "Ana", FirstEntry: "08:00", LastEntry: "17:00", EntriesCount: 3}}
	case apiclient.PathEmployees:
		body = []model.Employee{{SubjectName: "Ana", TotalAccesses: 12}}
	case apiclient.PathSearch:
		body = []model.AccessRecord{{Timestamp: "2024-05-01T08:00:00", CameraName: r.URL.Query().Get("camera_name"), IsAuthorized: true}}
	default:
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

type fixture struct {
	router  *gin.Engine
	dash    *dashboard.Dashboard
	backend *backend
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	b := &backend{failing: map[string]bool{}, hits: map[string]int{}}
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	api := apiclient.New(srv.URL, time.Second)
	api.Metrics = m

	p := page.New()
	r := sections.New(api, p, nil, m, sections.Options{Location: time.UTC})
	d := dashboard.New(dashboard.Deps{
		Page:     p,
		Sections: r,
		Jobs:     queue.Inline{},
		Clock:    stillClock{},
		Metrics:  m,
	}, dashboard.Options{RefreshInterval: 10 * time.Second, CountdownInterval: time.Second})

	router := NewRouter(Deps{
		Dashboard: d,
		Backend:   api,
		Gatherer:  reg,
		Now:       func() time.Time { return testNow },
		Location:  time.UTC,
	})
	return &fixture{router: router, dash: d, backend: b}
}

func (f *fixture) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestTabActionRendersPanel(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/tabs/attendance", url.Values{})
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/" {
		t.Fatalf("expected redirect, got %d %q", w.Code, w.Header().Get("Location"))
	}

	w = f.do(http.MethodGet, "/", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("index returned %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{
		`id="tab-attendance" class="tab-content active"`,
		`id="tab-btn-attendance" data-tab="attendance" class="tab-btn active"`,
		"<td><strong>Ana</strong></td>",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("page missing %q", want)
		}
	}
	if w.Header().Get("X-Frame-Options") != "DENY" {
		t.Fatal("security headers not applied")
	}
}

func TestUnknownTab(t *testing.T) {
	f := newFixture(t)
	if w := f.do(http.MethodPost, "/tabs/settings", url.Values{}); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestImagePageRange(t *testing.T) {
	f := newFixture(t)
	if w := f.do(http.MethodPost, "/images/page/3", url.Values{}); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for out-of-range page, got %d", w.Code)
	}
	if w := f.do(http.MethodPost, "/images/page/x", url.Values{}); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric page, got %d", w.Code)
	}
	if n := f.backend.count(apiclient.PathImages); n != 0 {
		t.Fatalf("rejected pages must not reach the backend, got %d requests", n)
	}
	if w := f.do(http.MethodPost, "/images/page/1", url.Values{}); w.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", w.Code)
	}
	if !strings.Contains(f.do(http.MethodGet, "/", nil).Body.String(), "cap_1.jpg") {
		t.Fatal("image grid not rendered")
	}
}

func TestReportMissingDatesRaisesAlert(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/reports/generate", url.Values{"start": {"2024-05-01"}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if f.backend.count(apiclient.PathReport) != 0 {
		t.Fatal("no report request should be issued")
	}
	if !strings.Contains(f.do(http.MethodGet, "/", nil).Body.String(), sections.MissingDates) {
		t.Fatal("alert not shown")
	}

	f.do(http.MethodPost, "/alert/dismiss", url.Values{})
	if strings.Contains(f.do(http.MethodGet, "/", nil).Body.String(), sections.MissingDates) {
		t.Fatal("alert should be dismissed")
	}

	w = f.do(http.MethodPost, "/reports/generate", url.Values{"start": {"2024-05-01"}, "end": {"2024-05-02"}})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", w.Code)
	}
	if f.backend.count(apiclient.PathReport) != 1 {
		t.Fatal("report should be fetched once")
	}
}

func TestModalFlow(t *testing.T) {
	f := newFixture(t)

	if w := f.do(http.MethodPost, "/modal/open", url.Values{}); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without url, got %d", w.Code)
	}
	f.do(http.MethodPost, "/modal/open", url.Values{"url": {"/captures/cap_1.jpg"}, "filename": {"cap_1.jpg"}})
	body := f.do(http.MethodGet, "/", nil).Body.String()
	if !strings.Contains(body, `class="image-modal"`) || !strings.Contains(body, `class="scroll-locked"`) {
		t.Fatal("modal should be open with scroll locked")
	}

	f.do(http.MethodPost, "/modal/click", url.Values{"target": {"content"}})
	if f.dash.Snapshot().OpenModal == nil {
		t.Fatal("clicks inside the content must not close the modal")
	}
	f.do(http.MethodPost, "/modal/click", url.Values{"target": {dashboard.OverlayTarget}})
	if f.dash.Snapshot().OpenModal != nil {
		t.Fatal("overlay click should close the modal")
	}
}

func TestAutoRefreshToggle(t *testing.T) {
	f := newFixture(t)

	f.do(http.MethodPost, "/autorefresh", url.Values{"enabled": {"on"}})
	if f.dash.Refresh.State() != dashboard.Enabled {
		t.Fatal("auto-refresh should be enabled")
	}
	if !strings.Contains(f.do(http.MethodGet, "/", nil).Body.String(), `http-equiv="refresh" content="10"`) {
		t.Fatal("enabled page should reload itself")
	}

	f.do(http.MethodPost, "/autorefresh", url.Values{})
	if f.dash.Refresh.State() != dashboard.Disabled {
		t.Fatal("unchecked box should disable auto-refresh")
	}
	if strings.Contains(f.do(http.MethodGet, "/", nil).Body.String(), `http-equiv="refresh"`) {
		t.Fatal("disabled page must not reload")
	}
}

func TestExports(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/export/attendance.csv", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("attendance export returned %d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "attendance_2024-05-01.csv") {
		t.Fatalf("unexpected disposition %q", cd)
	}
	if !strings.HasPrefix(w.Body.String(), "subject_name,first_entry,") {
		t.Fatalf("unexpected csv %q", w.Body.String())
	}

	w = f.do(http.MethodGet, "/export/report.xlsx?start=2024-05-01&end=2024-05-02", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Header().Get("Content-Disposition"), ".xlsx") {
		t.Fatalf("xlsx export returned %d %q", w.Code, w.Header().Get("Content-Disposition"))
	}

	if w := f.do(http.MethodGet, "/export/report.csv?start=2024-05-01", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing end date, got %d", w.Code)
	}

	f.backend.fail(apiclient.PathAttendance)
	if w := f.do(http.MethodGet, "/export/attendance.csv", nil); w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 on backend failure, got %d", w.Code)
	}
}

func TestChartPNG(t *testing.T) {
	f := newFixture(t)
	f.do(http.MethodPost, "/tabs/reports", url.Values{})

	w := f.do(http.MethodGet, sections.ChartPath, nil)
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("chart returned %d %q", w.Code, w.Header().Get("Content-Type"))
	}
	img, err := png.Decode(w.Body)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != ChartWidth || b.Dy() != ChartHeight {
		t.Fatalf("unexpected size %v", b)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t)

	if w := f.do(http.MethodGet, "/healthz", nil); w.Code != http.StatusOK {
		t.Fatalf("expected healthy, got %d", w.Code)
	}
	f.do(http.MethodPost, "/tabs/cameras", url.Values{})

	w := f.do(http.MethodGet, "/metrics", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "dashboard_backend_requests_total") {
		t.Fatalf("metrics missing backend counter: %d", w.Code)
	}

	f.backend.fail(apiclient.PathHealth)
	w = f.do(http.MethodGet, "/healthz", nil)
	if w.Code != http.StatusServiceUnavailable || !strings.Contains(w.Body.String(), `"degraded"`) {
		t.Fatalf("expected degraded, got %d %s", w.Code, w.Body.String())
	}
}

func TestPassThrough(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, apiclient.PathEmployees, nil)
	var employees []model.Employee
	if err := json.Unmarshal(w.Body.Bytes(), &employees); err != nil || len(employees) != 1 {
		t.Fatalf("unexpected employees %d %s", w.Code, w.Body.String())
	}

	w = f.do(http.MethodGet, apiclient.PathSearch+"?camera_name=Dock&is_authorized=true", nil)
	var records []model.AccessRecord
	if err := json.Unmarshal(w.Body.Bytes(), &records); err != nil || len(records) != 1 || records[0].CameraName != "Dock" {
		t.Fatalf("unexpected search %d %s", w.Code, w.Body.String())
	}

	if w := f.do(http.MethodGet, apiclient.PathSearch+"?is_authorized=maybe", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
