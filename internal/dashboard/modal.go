package dashboard

import (
	"errors"
	"fmt"
	"html/template"
	"strings"

	"accessdash/internal/format"
	"accessdash/internal/page"
)

// OverlayTarget is the click target naming the modal background itself.
const OverlayTarget = "overlay"

// ErrNoImage is returned when an image is opened without a URL.
var ErrNoImage = errors.New("modal: image url is required")

// BuildModal renders the full-size image overlay with close and download
// controls. Clicking the backdrop posts the overlay target; clicks inside the
// content post nothing.
func BuildModal(url, filename string) template.HTML {
	u, name := format.EscapeHTML(url), format.EscapeHTML(filename)
	return template.HTML(fmt.Sprintf(`<div class="image-modal">`+
		`<form method="post" action="/modal/click" class="image-modal-backdrop">`+
		`<button type="submit" name="target" value="%s" aria-label="Close"></button></form>`+
		`<div class="image-modal-content">`+
		`<div class="image-modal-header"><h3>%s</h3>`+
		`<form method="post" action="/modal/close"><button type="submit" class="image-modal-close">&times;</button></form></div>`+
		`<div class="image-modal-body"><img src="%s" alt="%s"></div>`+
		`<div class="image-modal-footer">`+
		`<form method="post" action="/modal/close"><button type="submit" class="btn btn-secondary">Close</button></form>`+
		`<a href="%s" download="%s" class="btn btn-primary">Download</a></div>`+
		`</div></div>`,
		OverlayTarget, name, u, name, u, name))
}

// Modal shows at most one captured image at a time over the page.
type Modal struct {
	page *page.Page
}

// Open replaces any open overlay with one for the given image and locks
// page scroll.
func (m *Modal) Open(url, filename string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return ErrNoImage
	}
	m.page.SetModal(&page.Modal{URL: url, Filename: filename, Markup: BuildModal(url, filename)})
	return nil
}

// Close removes the overlay and restores scroll. It is a no-op when nothing
// is open.
func (m *Modal) Close() {
	if m.page.Modal() == nil {
		return
	}
	m.page.SetModal(nil)
}

// Click closes the overlay only when the click landed on the overlay itself.
func (m *Modal) Click(target string) {
	if target != OverlayTarget {
		return
	}
	m.Close()
}
