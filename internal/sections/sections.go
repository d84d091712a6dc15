// Package sections renders each dashboard section. Builders turn backend data
// into markup and never touch shared state; the Renderer methods fetch, build
// and write the result into the page, converting every failure into the
// section's error placeholder.
package sections

import (
	"context"
	"fmt"
	"html/template"
	"sync"
	"time"

	"go.uber.org/zap"

	"accessdash/internal/format"
	"accessdash/internal/metrics"
	"accessdash/internal/model"
	"accessdash/internal/page"
)

// Section names used for logs, metrics and job dispatch.
const (
	NameSummary      = "summary"
	NameLive         = "live"
	NameAttendance   = "attendance"
	NameUnauthorized = "unauthorized"
	NameImages       = "images"
	NameCameras      = "cameras"
	NameHourly       = "hourly"
	NameReport       = "report"
)

// Render outcomes recorded per refresh.
const (
	resultRows  = "rows"
	resultEmpty = "empty"
	resultError = "error"
)

// Backend is the subset of the API client the renderers call.
type Backend interface {
	Summary(ctx context.Context) (model.SummaryStats, error)
	RecentAccess(ctx context.Context, limit int) ([]model.AccessRecord, error)
	AttendanceToday(ctx context.Context) ([]model.AttendanceRecord, error)
	Unauthorized(ctx context.Context, hours int) ([]model.AccessRecord, error)
	LatestImages(ctx context.Context, page, perPage int) (model.ImagePage, error)
	CameraStatus(ctx context.Context) ([]model.CameraStatus, error)
	Hourly(ctx context.Context, hours int) ([]model.HourlyBucket, error)
	AttendanceReport(ctx context.Context, start, end string) ([]model.ReportRow, error)
}

// Options sizes the backend queries.
type Options struct {
	RecentLimit       int
	ImagesPerPage     int
	UnauthorizedHours int
	HourlyHours       int
	Location          *time.Location
}

func (o Options) withDefaults() Options {
	if o.RecentLimit <= 0 {
		o.RecentLimit = 50
	}
	if o.ImagesPerPage <= 0 {
		o.ImagesPerPage = 20
	}
	if o.UnauthorizedHours <= 0 {
		o.UnauthorizedHours = 24
	}
	if o.HourlyHours <= 0 {
		o.HourlyHours = 24
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	return o
}

// Renderer refreshes sections into a page. Responses are written in the order
// they resolve, so a slow response can overwrite a newer one.
type Renderer struct {
	api     Backend
	page    *page.Page
	log     *zap.Logger
	metrics *metrics.Metrics
	opts    Options

	mu           sync.Mutex
	imagePage    int
	imagePages   int
	buckets      []model.HourlyBucket
	chartVersion int
}

// New builds a renderer. A nil logger discards output; nil metrics are skipped.
func New(api Backend, p *page.Page, log *zap.Logger, m *metrics.Metrics, opts Options) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Renderer{
		api:        api,
		page:       p,
		log:        log,
		metrics:    m,
		opts:       opts.withDefaults(),
		imagePage:  1,
		imagePages: 1,
	}
}

// Location is the zone timestamps are displayed in.
func (r *Renderer) Location() *time.Location { return r.opts.Location }

func (r *Renderer) failed(section string, err error) {
	r.log.Error("section refresh failed", zap.String("section", section), zap.Error(err))
	r.metrics.ObserveRender(section, resultError)
}

func (r *Renderer) rendered(section string, n int) {
	if n == 0 {
		r.metrics.ObserveRender(section, resultEmpty)
		return
	}
	r.metrics.ObserveRender(section, resultRows)
}

func rowPlaceholder(colspan int, class, text string) template.HTML {
	return template.HTML(fmt.Sprintf(`<tr><td colspan="%d" class="%s">%s</td></tr>`,
		colspan, class, format.EscapeHTML(text)))
}

func blockPlaceholder(class, text string) template.HTML {
	return template.HTML(fmt.Sprintf(`<div class="%s">%s</div>`, class, format.EscapeHTML(text)))
}

func badge(class, text string) string {
	return fmt.Sprintf(`<span class="badge %s">%s</span>`, class, text)
}

func alertBadge(sent bool) string {
	if sent {
		return badge("alert-sent", "Alert Sent")
	}
	return badge("no-alert", "No Alert")
}
