package sections

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"accessdash/internal/format"
	"accessdash/internal/model"
	"accessdash/internal/page"
)

// Table placeholders. Colspans match each table's column count.
var (
	LiveLoading         = rowPlaceholder(6, "loading", "Loading...")
	LiveEmpty           = rowPlaceholder(6, "empty", "No access records found")
	LiveError           = rowPlaceholder(6, "empty", "Error loading data")
	AttendanceLoading   = rowPlaceholder(6, "loading", "Loading...")
	AttendanceEmpty     = rowPlaceholder(6, "empty", "No attendance records for today")
	AttendanceError     = rowPlaceholder(6, "empty", "Error loading data")
	UnauthorizedLoading = rowPlaceholder(5, "loading", "Loading...")
	UnauthorizedEmpty   = rowPlaceholder(5, "empty", "No unauthorized access attempts found")
	UnauthorizedError   = rowPlaceholder(5, "empty", "Error loading data")
	ReportLoading       = rowPlaceholder(5, "loading", "Generating report...")
	ReportEmpty         = rowPlaceholder(5, "empty", "No data found for selected date range")
	ReportError         = rowPlaceholder(5, "empty", "Error generating report")
)

// MissingDates is the alert raised when a report bound is empty.
const MissingDates = "Please select both start and end dates"

// ErrMissingDates is returned when a report is requested without both bounds.
var ErrMissingDates = errors.New("report: start and end dates are required")

// BuildLive renders the live monitor rows, newest first as received.
func BuildLive(records []model.AccessRecord, loc *time.Location) template.HTML {
	if len(records) == 0 {
		return LiveEmpty
	}
	var b strings.Builder
	for _, rec := range records {
		rowClass, status := "", badge("authorized", "Authorized")
		if !rec.IsAuthorized {
			rowClass, status = "unauthorized-row", badge("unauthorized", "Unauthorized")
		}
		fmt.Fprintf(&b, `<tr class="%s"><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>`,
			rowClass,
			format.EscapeHTML(format.Time(rec.Timestamp, loc)),
			format.EscapeHTML(rec.CameraName),
			format.EscapeHTML(format.OrDefault(rec.SubjectName, format.Unknown)),
			status,
			format.Percent(rec.Similarity),
			alertBadge(rec.AlertSent),
		)
	}
	return template.HTML(b.String())
}

// BuildAttendance renders one row per subject seen today.
func BuildAttendance(records []model.AttendanceRecord, loc *time.Location) template.HTML {
	if len(records) == 0 {
		return AttendanceEmpty
	}
	var b strings.Builder
	for _, rec := range records {
		fmt.Fprintf(&b, `<tr><td><strong>%s</strong></td><td>%s</td><td>%s</td><td>%d</td><td>%s</td><td>%s</td></tr>`,
			format.EscapeHTML(rec.SubjectName),
			format.EscapeHTML(format.Time(rec.FirstEntry, loc)),
			format.EscapeHTML(format.Time(rec.LastEntry, loc)),
			rec.TotalEntries,
			format.EscapeHTML(rec.CameraName),
			format.Percent(rec.AvgSimilarity),
		)
	}
	return template.HTML(b.String())
}

// BuildUnauthorized renders the unauthorized attempts table.
func BuildUnauthorized(records []model.AccessRecord, loc *time.Location) template.HTML {
	if len(records) == 0 {
		return UnauthorizedEmpty
	}
	var b strings.Builder
	for _, rec := range records {
		fmt.Fprintf(&b, `<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>`,
			format.EscapeHTML(format.Time(rec.Timestamp, loc)),
			format.EscapeHTML(rec.CameraName),
			format.EscapeHTML(format.OrDefault(rec.CameraLocation, format.NotAvailable)),
			format.EscapeHTML(format.OrDefault(rec.SubjectName, format.UnknownPerson)),
			alertBadge(rec.AlertSent),
		)
	}
	return template.HTML(b.String())
}

// BuildUnauthorizedCount renders the banner above the unauthorized table.
func BuildUnauthorizedCount(n, hours int) template.HTML {
	return template.HTML(fmt.Sprintf(
		`&#9888;&#65039; <strong>%d</strong> unauthorized access attempt(s) in the last %d hour(s)`, n, hours))
}

// BuildReport renders the date-range report rows.
func BuildReport(rows []model.ReportRow, loc *time.Location) template.HTML {
	if len(rows) == 0 {
		return ReportEmpty
	}
	var b strings.Builder
	for _, row := range rows {
		fmt.Fprintf(&b, `<tr><td>%s</td><td><strong>%s</strong></td><td>%s</td><td>%s</td><td>%d</td></tr>`,
			format.EscapeHTML(row.Date),
			format.EscapeHTML(row.SubjectName),
			format.EscapeHTML(format.Time(row.FirstEntry, loc)),
			format.EscapeHTML(format.Time(row.LastEntry, loc)),
			row.EntriesCount,
		)
	}
	return template.HTML(b.String())
}

// Live refreshes the live monitor table.
func (r *Renderer) Live(ctx context.Context) {
	r.page.SetHTML(page.IDLiveTable, LiveLoading)
	records, err := r.api.RecentAccess(ctx, r.opts.RecentLimit)
	if err != nil {
		r.failed(NameLive, err)
		r.page.SetHTML(page.IDLiveTable, LiveError)
		return
	}
	r.page.SetHTML(page.IDLiveTable, BuildLive(records, r.opts.Location))
	r.rendered(NameLive, len(records))
}

// Attendance refreshes today's attendance table.
func (r *Renderer) Attendance(ctx context.Context) {
	r.page.SetHTML(page.IDAttendanceTable, AttendanceLoading)
	records, err := r.api.AttendanceToday(ctx)
	if err != nil {
		r.failed(NameAttendance, err)
		r.page.SetHTML(page.IDAttendanceTable, AttendanceError)
		return
	}
	r.page.SetHTML(page.IDAttendanceTable, BuildAttendance(records, r.opts.Location))
	r.rendered(NameAttendance, len(records))
}

// UnauthorizedHours reads the hour window input, falling back to the
// configured default when it is missing or not a positive number.
func (r *Renderer) UnauthorizedHours() int {
	h, err := strconv.Atoi(strings.TrimSpace(r.page.Value(page.IDUnauthorizedHours)))
	if err != nil || h <= 0 {
		return r.opts.UnauthorizedHours
	}
	return h
}

// Unauthorized refreshes the unauthorized table and its count banner.
// The banner keeps its previous value when the fetch fails.
func (r *Renderer) Unauthorized(ctx context.Context) {
	hours := r.UnauthorizedHours()
	r.page.SetHTML(page.IDUnauthorizedTable, UnauthorizedLoading)
	records, err := r.api.Unauthorized(ctx, hours)
	if err != nil {
		r.failed(NameUnauthorized, err)
		r.page.SetHTML(page.IDUnauthorizedTable, UnauthorizedError)
		return
	}
	r.page.SetHTML(page.IDUnauthorizedCount, BuildUnauthorizedCount(len(records), hours))
	r.page.SetHTML(page.IDUnauthorizedTable, BuildUnauthorized(records, r.opts.Location))
	r.rendered(NameUnauthorized, len(records))
}

// Report generates the date-range report from the date inputs. Missing
// bounds raise the page alert and return ErrMissingDates without a request.
func (r *Renderer) Report(ctx context.Context) error {
	start := strings.TrimSpace(r.page.Value(page.IDReportStart))
	end := strings.TrimSpace(r.page.Value(page.IDReportEnd))
	if start == "" || end == "" {
		r.page.SetAlert(MissingDates)
		return ErrMissingDates
	}
	r.page.SetHTML(page.IDReportTable, ReportLoading)
	rows, err := r.api.AttendanceReport(ctx, start, end)
	if err != nil {
		r.failed(NameReport, err)
		r.page.SetHTML(page.IDReportTable, ReportError)
		return nil
	}
	r.page.SetHTML(page.IDReportTable, BuildReport(rows, r.opts.Location))
	r.rendered(NameReport, len(rows))
	return nil
}
