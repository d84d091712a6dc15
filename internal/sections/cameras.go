package sections

import (
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"accessdash/internal/format"
	"accessdash/internal/model"
	"accessdash/internal/page"
)

var (
	CamerasLoading = blockPlaceholder("loading", "Loading...")
	CamerasEmpty   = blockPlaceholder("empty", "No cameras detected")
	CamerasError   = blockPlaceholder("empty", "Error loading camera data")
)

// BuildCameras renders one card per camera. The status doubles as a CSS
// class so online, offline and warning cameras are styled apart.
func BuildCameras(cameras []model.CameraStatus, loc *time.Location) template.HTML {
	if len(cameras) == 0 {
		return CamerasEmpty
	}
	var b strings.Builder
	for _, cam := range cameras {
		status := cam.Status
		if status == "" {
			status = strings.ToLower(format.Unknown)
		}
		st := format.EscapeHTML(status)
		fmt.Fprintf(&b, `<div class="camera-card %s"><div class="camera-header">`+
			`<div class="camera-name">%s</div><span class="camera-status %s">%s</span></div>`+
			`<div class="camera-info">`,
			st, format.EscapeHTML(cam.CameraName), st, format.EscapeHTML(strings.ToUpper(status)))
		cameraInfo(&b, "Location:", format.OrDefault(cam.CameraLocation, format.NotAvailable))
		cameraInfo(&b, "Last Activity:", format.Time(cam.LastActivity, loc))
		cameraInfo(&b, "Detections (1h):", fmt.Sprint(cam.DetectionsLastHour))
		cameraInfo(&b, "Unauthorized (1h):", fmt.Sprint(cam.UnauthorizedLastHour))
		b.WriteString(`</div></div>`)
	}
	return template.HTML(b.String())
}

func cameraInfo(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, `<div class="camera-info-item"><span class="camera-info-label">%s</span><span class="camera-info-value">%s</span></div>`,
		label, format.EscapeHTML(value))
}

// Cameras refreshes the camera status grid.
func (r *Renderer) Cameras(ctx context.Context) {
	r.page.SetHTML(page.IDCameraGrid, CamerasLoading)
	cameras, err := r.api.CameraStatus(ctx)
	if err != nil {
		r.failed(NameCameras, err)
		r.page.SetHTML(page.IDCameraGrid, CamerasError)
		return
	}
	r.page.SetHTML(page.IDCameraGrid, BuildCameras(cameras, r.opts.Location))
	r.rendered(NameCameras, len(cameras))
}
