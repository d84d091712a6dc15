// Package page is the dashboard's display surface: the current markup, text,
// classes and input values of every element the page template renders.
// Controllers and section renderers write here; HTTP handlers read snapshots.
package page

import (
	"html/template"
	"sort"
	"strings"
	"sync"
)

// Element identifiers shared by renderers and the page template.
const (
	IDCurrentTime       = "currentTime"
	IDLastUpdate        = "lastUpdate"
	IDTotalToday        = "totalToday"
	IDAuthorizedToday   = "authorizedToday"
	IDUnauthorizedToday = "unauthorizedToday"
	IDUniqueEmployees   = "uniqueEmployees"
	IDActiveCameras     = "activeCameras"
	IDLiveTable         = "liveAccessTable"
	IDAttendanceTable   = "attendanceTable"
	IDUnauthorizedHours = "unauthorizedHours"
	IDUnauthorizedTable = "unauthorizedTable"
	IDUnauthorizedCount = "unauthorizedCount"
	IDImagesGrid        = "capturedImagesGrid"
	IDImageCount        = "imageCount"
	IDVideoStream       = "liveVideoStream"
	IDVideoPlaceholder  = "videoPlaceholder"
	IDCameraGrid        = "cameraGrid"
	IDReportStart       = "reportStartDate"
	IDReportEnd         = "reportEndDate"
	IDReportTable       = "reportTable"
	IDActivityChart     = "activityChart"
	IDAutoRefresh       = "autoRefresh"
	IDRefreshCountdown  = "refreshCountdown"
)

// ClassActive marks the selected tab button and panel.
const ClassActive = "active"

// Modal is the open image overlay.
type Modal struct {
	URL      string        `json:"url"`
	Filename string        `json:"filename"`
	Markup   template.HTML `json:"markup"`
}

// Page holds element state. The zero value is not usable; call New.
type Page struct {
	mu           sync.RWMutex
	html         map[string]template.HTML
	text         map[string]string
	classes      map[string]map[string]struct{}
	values       map[string]string
	hidden       map[string]bool
	attrs        map[string]map[string]string
	modal        *Modal
	scrollLocked bool
	alert        string
}

// New returns an empty page.
func New() *Page {
	return &Page{
		html:    make(map[string]template.HTML),
		text:    make(map[string]string),
		classes: make(map[string]map[string]struct{}),
		values:  make(map[string]string),
		hidden:  make(map[string]bool),
		attrs:   make(map[string]map[string]string),
	}
}

// SetHTML replaces an element's inner markup.
func (p *Page) SetHTML(id string, markup template.HTML) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.html[id] = markup
}

// HTML returns an element's inner markup.
func (p *Page) HTML(id string) template.HTML {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.html[id]
}

// SetText replaces an element's text content.
func (p *Page) SetText(id, text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.text[id] = text
}

// Text returns an element's text content.
func (p *Page) Text(id string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.text[id]
}

// AddClass adds class to id.
func (p *Page) AddClass(id, class string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	set, ok := p.classes[id]
	if !ok {
		set = make(map[string]struct{})
		p.classes[id] = set
	}
	set[class] = struct{}{}
}

// RemoveClass removes class from id.
func (p *Page) RemoveClass(id, class string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.classes[id], class)
}

// HasClass reports whether id carries class.
func (p *Page) HasClass(id, class string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.classes[id][class]
	return ok
}

// WithClass lists the elements carrying class, sorted.
func (p *Page) WithClass(class string) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var ids []string
	for id, set := range p.classes {
		if _, ok := set[class]; ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// SetValue sets an input's value.
func (p *Page) SetValue(id, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values[id] = value
}

// Value returns an input's value.
func (p *Page) Value(id string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.values[id]
}

// SetHidden toggles an element's display.
func (p *Page) SetHidden(id string, hidden bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hidden[id] = hidden
}

// Hidden reports whether an element is hidden.
func (p *Page) Hidden(id string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.hidden[id]
}

// SetAttr sets an element attribute such as an image src.
func (p *Page) SetAttr(id, name, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	set, ok := p.attrs[id]
	if !ok {
		set = make(map[string]string)
		p.attrs[id] = set
	}
	set[name] = value
}

// Attr returns an element attribute.
func (p *Page) Attr(id, name string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.attrs[id][name]
}

// SetModal installs m as the only overlay and suppresses page scroll.
// A nil m removes the overlay and restores scroll.
func (p *Page) SetModal(m *Modal) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if m == nil {
		p.modal = nil
		p.scrollLocked = false
		return
	}
	cp := *m
	p.modal = &cp
	p.scrollLocked = true
}

// Modal returns a copy of the open overlay, or nil.
func (p *Page) Modal() *Modal {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.modal == nil {
		return nil
	}
	cp := *p.modal
	return &cp
}

// ScrollLocked reports whether page scroll is suppressed.
func (p *Page) ScrollLocked() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.scrollLocked
}

// SetAlert raises a blocking user-facing message; empty clears it.
func (p *Page) SetAlert(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alert = msg
}

// Alert returns the pending user-facing message.
func (p *Page) Alert() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.alert
}

// Snapshot is an immutable copy of the page used for rendering and JSON.
type Snapshot struct {
	Markup       map[string]template.HTML     `json:"html"`
	Texts        map[string]string            `json:"text"`
	Classes      map[string][]string          `json:"classes"`
	Values       map[string]string            `json:"values"`
	HiddenIDs    map[string]bool              `json:"hidden"`
	Attrs        map[string]map[string]string `json:"attrs"`
	OpenModal    *Modal                       `json:"modal,omitempty"`
	ScrollLocked bool                         `json:"scroll_locked"`
	AlertMessage string                       `json:"alert,omitempty"`
}

// Snapshot copies the current state.
func (p *Page) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s := Snapshot{
		Markup:       make(map[string]template.HTML, len(p.html)),
		Texts:        make(map[string]string, len(p.text)),
		Classes:      make(map[string][]string, len(p.classes)),
		Values:       make(map[string]string, len(p.values)),
		HiddenIDs:    make(map[string]bool, len(p.hidden)),
		Attrs:        make(map[string]map[string]string, len(p.attrs)),
		ScrollLocked: p.scrollLocked,
		AlertMessage: p.alert,
	}
	for k, v := range p.html {
		s.Markup[k] = v
	}
	for k, v := range p.text {
		s.Texts[k] = v
	}
	for k, set := range p.classes {
		list := make([]string, 0, len(set))
		for c := range set {
			list = append(list, c)
		}
		sort.Strings(list)
		s.Classes[k] = list
	}
	for k, v := range p.values {
		s.Values[k] = v
	}
	for k, v := range p.hidden {
		s.HiddenIDs[k] = v
	}
	for k, set := range p.attrs {
		cp := make(map[string]string, len(set))
		for n, v := range set {
			cp[n] = v
		}
		s.Attrs[k] = cp
	}
	if p.modal != nil {
		m := *p.modal
		s.OpenModal = &m
	}
	return s
}

// HTML returns an element's markup for the template.
func (s Snapshot) HTML(id string) template.HTML { return s.Markup[id] }

// Text returns an element's text for the template.
func (s Snapshot) Text(id string) string { return s.Texts[id] }

// Class returns an element's classes joined for a class attribute.
func (s Snapshot) Class(id string) string { return strings.Join(s.Classes[id], " ") }

// Value returns an input value for the template.
func (s Snapshot) Value(id string) string { return s.Values[id] }

// Hidden reports whether the template should hide id.
func (s Snapshot) Hidden(id string) bool { return s.HiddenIDs[id] }

// Attr returns an attribute for the template.
func (s Snapshot) Attr(id, name string) string { return s.Attrs[id][name] }
