package sections

import (
	"context"
	"strconv"

	"accessdash/internal/model"
	"accessdash/internal/page"
)

// ChartPath serves the activity chart image.
const ChartPath = "/chart.png"

// Hourly fetches the hourly buckets the chart is drawn from. The chart image
// source gets a new version so the page reloads it; a failed fetch keeps the
// previous buckets on screen.
func (r *Renderer) Hourly(ctx context.Context) {
	buckets, err := r.api.Hourly(ctx, r.opts.HourlyHours)
	if err != nil {
		r.failed(NameHourly, err)
		return
	}
	r.mu.Lock()
	r.buckets = append([]model.HourlyBucket(nil), buckets...)
	r.chartVersion++
	version := r.chartVersion
	r.mu.Unlock()

	r.page.SetAttr(page.IDActivityChart, "src", ChartPath+"?v="+strconv.Itoa(version))
	r.rendered(NameHourly, len(buckets))
}

// Buckets returns a copy of the last fetched hourly buckets.
func (r *Renderer) Buckets() []model.HourlyBucket {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.HourlyBucket(nil), r.buckets...)
}
