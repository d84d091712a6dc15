package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"accessdash/internal/page"
)

// Tab is one of the mutually exclusive dashboard views.
type Tab string

const (
	TabLive         Tab = "live"
	TabAttendance   Tab = "attendance"
	TabUnauthorized Tab = "unauthorized"
	TabCameras      Tab = "cameras"
	TabReports      Tab = "reports"
)

// Tabs lists the views in display order.
var Tabs = []Tab{TabLive, TabAttendance, TabUnauthorized, TabCameras, TabReports}

// ErrUnknownTab is returned for a tab name outside Tabs.
var ErrUnknownTab = errors.New("unknown tab")

// ParseTab validates a tab name.
func ParseTab(s string) (Tab, error) {
	for _, t := range Tabs {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTab, s)
}

// ButtonID is the element id of a tab's button.
func ButtonID(t Tab) string { return "tab-btn-" + string(t) }

// PanelID is the element id of a tab's content panel.
func PanelID(t Tab) string { return "tab-" + string(t) }

type renderFunc struct {
	name string
	run  func(context.Context)
}

// dispatcher hands a named render to the job queue.
type dispatcher func(name string, run func(context.Context))

// TabController tracks the active tab and runs its renderers on activation.
type TabController struct {
	page     *page.Page
	dispatch dispatcher

	mu        sync.Mutex
	current   Tab
	renderers map[Tab][]renderFunc
}

func newTabController(p *page.Page, dispatch dispatcher) *TabController {
	return &TabController{
		page:      p,
		dispatch:  dispatch,
		current:   TabLive,
		renderers: make(map[Tab][]renderFunc),
	}
}

// Register adds a renderer to run whenever t is activated or reloaded.
func (c *TabController) Register(t Tab, name string, run func(context.Context)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.renderers[t] = append(c.renderers[t], renderFunc{name: name, run: run})
}

// Current returns the active tab.
func (c *TabController) Current() Tab {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Activate marks t as the only active tab button and panel, makes it current
// and runs exactly its renderers. Activating the current tab again is valid
// and re-runs them.
func (c *TabController) Activate(name string) error {
	t, err := ParseTab(name)
	if err != nil {
		return err
	}
	c.mu.Lock()
	for _, other := range Tabs {
		c.page.RemoveClass(ButtonID(other), page.ClassActive)
		c.page.RemoveClass(PanelID(other), page.ClassActive)
	}
	c.page.AddClass(ButtonID(t), page.ClassActive)
	c.page.AddClass(PanelID(t), page.ClassActive)
	c.current = t
	c.mu.Unlock()

	c.Reload()
	return nil
}

// Reload runs the current tab's renderers without touching the tab state.
func (c *TabController) Reload() {
	c.mu.Lock()
	runs := append([]renderFunc(nil), c.renderers[c.current]...)
	c.mu.Unlock()
	for _, r := range runs {
		c.dispatch(r.name, r.run)
	}
}
