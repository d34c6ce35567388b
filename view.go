package main

import (
	"encoding/json"
	"html/template"
	"strings"
	"sync"

	"github.com/sramirezortega/cv/internal/resume"
)

const (
	estimatedLineHeight = 26
	estimatedPadding    = 48
)

// pageView is the server-side copy of what the browser shows for each
// section. A section.Controller renders into it and the accordion template
// renders out of it.
type pageView struct {
	mu        sync.Mutex
	extents   map[string]int
	expanded  map[string]bool
	reported  map[string]int
	estimates map[string]int
}

func newPageView(r *resume.Resume) *pageView {
	v := &pageView{
		extents:   map[string]int{},
		expanded:  map[string]bool{},
		reported:  map[string]int{},
		estimates: map[string]int{},
	}
	for _, s := range r.Sections {
		v.estimates[s.ID] = estimateHeight(s.Body)
	}
	return v
}

// NaturalSize prefers the height the browser last measured and falls back to
// an estimate from the rendered body.
func (v *pageView) NaturalSize(id string) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	if px := v.reported[id]; px > 0 {
		return px
	}
	return v.estimates[id]
}

func (v *pageView) SetMaxExtent(id string, px int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.extents[id] = px
}

func (v *pageView) SetExpanded(id string, expanded bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.expanded[id] = expanded
}

// report stores browser measurements. Negative values are ignored and zero
// clears a previous measurement.
func (v *pageView) report(heights map[string]int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for id, px := range heights {
		if _, known := v.estimates[id]; !known || px < 0 {
			continue
		}
		v.reported[id] = px
	}
}

func (v *pageView) extent(id string) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.extents[id]
}

func (v *pageView) isExpanded(id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.expanded[id]
}

// parseHeights decodes the {"section": px} map the page script posts.
func parseHeights(raw string) map[string]int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var heights map[string]int
	if err := json.Unmarshal([]byte(raw), &heights); err != nil {
		return nil
	}
	return heights
}

func estimateHeight(body template.HTML) int {
	lines := 0
	for _, line := range strings.Split(string(body), "\n") {
		n := len(strings.TrimSpace(line))
		if n == 0 {
			continue
		}
		lines += 1 + n/90
	}
	return lines*estimatedLineHeight + estimatedPadding
}
