// Package notify models the transient toast notifications shown to visitors.
package notify

import (
	"time"
)

// DefaultDismissAfter is how long a toast stays on screen.
const DefaultDismissAfter = 3 * time.Second

// exitAnimation matches the slide-out transition in the stylesheet.
const exitAnimation = 300 * time.Millisecond

// Level is the visual severity of a toast.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Toast is one notification.
type Toast struct {
	Level        Level
	Message      string
	DismissAfter time.Duration
}

// Success returns a confirmation toast.
func Success(msg string) Toast { return Toast{Level: LevelSuccess, Message: msg, DismissAfter: DefaultDismissAfter} }

// Error returns a failure toast.
func Error(msg string) Toast { return Toast{Level: LevelError, Message: msg, DismissAfter: DefaultDismissAfter} }

// Info returns a neutral toast.
func Info(msg string) Toast { return Toast{Level: LevelInfo, Message: msg, DismissAfter: DefaultDismissAfter} }

// WithDismiss returns a copy of t that stays for d. Non-positive d keeps the default.
func (t Toast) WithDismiss(d time.Duration) Toast {
	if d > 0 {
		t.DismissAfter = d
	}
	return t
}

// Icon is the Font Awesome icon name for the toast's level.
func (t Toast) Icon() string {
	switch t.Level {
	case LevelSuccess:
		return "fa-check-circle"
	case LevelError:
		return "fa-exclamation-circle"
	default:
		return "fa-info-circle"
	}
}

// DismissMillis is the on-screen time in milliseconds, for data attributes.
func (t Toast) DismissMillis() int64 {
	if t.DismissAfter <= 0 {
		return DefaultDismissAfter.Milliseconds()
	}
	return t.DismissAfter.Milliseconds()
}

// RemoveMillis is when the element should be removed from the page, after the
// exit animation finished.
func (t Toast) RemoveMillis() int64 {
	return t.DismissMillis() + exitAnimation.Milliseconds()
}
