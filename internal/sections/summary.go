package sections

import (
	"context"
	"strconv"

	"accessdash/internal/model"
	"accessdash/internal/page"
)

// SummaryAlert is raised when the header counters cannot be loaded.
const SummaryAlert = "Failed to load summary statistics"

// BuildSummary maps the counters to the header element texts.
func BuildSummary(s model.SummaryStats) map[string]string {
	return map[string]string{
		page.IDTotalToday:        strconv.Itoa(s.TotalToday),
		page.IDAuthorizedToday:   strconv.Itoa(s.AuthorizedToday),
		page.IDUnauthorizedToday: strconv.Itoa(s.UnauthorizedToday),
		page.IDUniqueEmployees:   strconv.Itoa(s.UniqueEmployees),
		page.IDActiveCameras:     strconv.Itoa(s.ActiveCameras),
	}
}

// Summary refreshes the five header counters. On failure the previous
// values stay and the user is alerted.
func (r *Renderer) Summary(ctx context.Context) {
	stats, err := r.api.Summary(ctx)
	if err != nil {
		r.failed(NameSummary, err)
		r.page.SetAlert(SummaryAlert)
		return
	}
	for id, text := range BuildSummary(stats) {
		r.page.SetText(id, text)
	}
	r.metrics.ObserveRender(NameSummary, resultRows)
}
