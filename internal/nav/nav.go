// Package nav computes in-page navigation targets.
package nav

// DefaultMargin is the gap kept between the fixed chrome and a scroll target.
const DefaultMargin = 40

// Chrome is the height of the fixed elements stacked at the top of the page.
type Chrome struct {
	Header      int `json:"header"`
	DownloadBar int `json:"downloadBar"`
	Nav         int `json:"nav"`
	Margin      int `json:"margin"`
}

// Height is the total space the chrome covers.
func (c Chrome) Height() int {
	return c.Header + c.DownloadBar + c.Nav + c.Margin
}

// Offset returns the scroll position that brings an element whose top is at
// targetTop just below the chrome. It never goes negative.
func Offset(c Chrome, targetTop int) int {
	top := targetTop - c.Height()
	if top < 0 {
		return 0
	}
	return top
}

// Link is one entry of the section navigation bar.
type Link struct {
	SectionID string
	Label     string
	Icon      string
}

// Href is the fragment link to the section.
func (l Link) Href() string { return "#" + l.SectionID }
