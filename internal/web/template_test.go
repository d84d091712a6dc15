package web

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"accessdash/internal/model"
	"accessdash/internal/sections"
)

var classAttr = regexp.MustCompile(`class="([^"]*)"`)

// Every modifier class the section builders emit must have a rule in the
// page stylesheet.
func TestStylesheetCoversSectionClasses(t *testing.T) {
	markup := string(sections.BuildLive([]model.AccessRecord{
		{Timestamp: "2024-05-01T08:00:00", CameraName: "Lobby", IsAuthorized: true},
		{Timestamp: "2024-05-01T08:01:00", CameraName: "Lobby", AlertSent: true},
	}, time.UTC))
	markup += string(sections.BuildUnauthorized([]model.AccessRecord{
		{Timestamp: "2024-05-01T08:02:00", CameraName: "Dock"},
	}, time.UTC))
	markup += string(sections.BuildCameras([]model.CameraStatus{
		{CameraName: "A", Status: "online"},
		{CameraName: "B", Status: "offline"},
		{CameraName: "C", Status: "warning"},
	}, time.UTC))

	style := pageTemplate[strings.Index(pageTemplate, "<style>"):strings.Index(pageTemplate, "</style>")]
	seen := map[string]bool{}
	for _, m := range classAttr.FindAllStringSubmatch(markup, -1) {
		for _, class := range strings.Fields(m[1]) {
			if seen[class] {
				continue
			}
			seen[class] = true
			if !strings.Contains(style, "."+class+"{") && !strings.Contains(style, "."+class+",") {
				t.Errorf("class %q has no rule in the stylesheet", class)
			}
		}
	}
	for _, want := range []string{"authorized", "unauthorized", "alert-sent", "no-alert", "unauthorized-row", "warning"} {
		if !seen[want] {
			t.Errorf("builders no longer emit %q", want)
		}
	}
}
