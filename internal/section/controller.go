// Package section implements the accordion state of the résumé page.
//
// A Controller owns an ordered group of sections, each a header paired with a
// content block. It keeps three things in agreement for every section: the open
// flag, the content's max extent (what a CSS height transition animates) and the
// header's aria-expanded attribute. The rendering surface is abstracted behind
// View so the same controller drives server-rendered fragments and tests.
package section

import (
	"log/slog"
	"sync"
	"time"

	"github.com/sramirezortega/cv/internal/fault"
)

// DefaultRemeasureDelay is how long a zero-size open waits before measuring again.
const DefaultRemeasureDelay = 50 * time.Millisecond

// View is the surface a Controller renders into.
type View interface {
	// NaturalSize reports the content's full rendered size right now.
	NaturalSize(id string) int
	SetMaxExtent(id string, px int)
	SetExpanded(id string, expanded bool)
}

// Scheduler runs fn once after d. fn must not be called before After returns.
type Scheduler interface {
	After(d time.Duration, fn func())
}

type timerScheduler struct{}

func (timerScheduler) After(d time.Duration, fn func()) { time.AfterFunc(d, fn) }

// Pair is one header/content pair discovered in the markup. An empty ContentID
// marks a header whose content block is missing.
type Pair struct {
	ID        string
	HeaderID  string
	ContentID string
}

// State is a read-only view of one section.
type State struct {
	ID        string
	HeaderID  string
	ContentID string
	Open      bool
	Extent    int
}

type entry struct {
	Pair
	open   bool
	extent int
}

// Controller is the toggle group. It is safe for concurrent use.
type Controller struct {
	mu       sync.Mutex
	policy   Policy
	order    []*entry
	sections map[string]*entry
	headers  map[string]*entry

	view           View
	sched          Scheduler
	logger         *slog.Logger
	remeasureDelay time.Duration
}

// Option configures a Controller.
type Option func(*Controller)

// WithScheduler replaces the timer used for deferred re-measurement.
func WithScheduler(s Scheduler) Option {
	return func(c *Controller) { c.sched = s }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithRemeasureDelay sets the delay before re-measuring a zero-size section.
func WithRemeasureDelay(d time.Duration) Option {
	return func(c *Controller) { c.remeasureDelay = d }
}

// New builds a controller over pairs. Blank ids, duplicate section ids and
// duplicate header ids are skipped and logged. Every section starts closed and
// the view is synchronized to that.
func New(pairs []Pair, policy Policy, view View, opts ...Option) *Controller {
	c := &Controller{
		policy:         policy,
		sections:       make(map[string]*entry, len(pairs)),
		headers:        make(map[string]*entry, len(pairs)),
		view:           view,
		sched:          timerScheduler{},
		logger:         slog.Default(),
		remeasureDelay: DefaultRemeasureDelay,
	}
	for _, opt := range opts {
		opt(c)
	}

	for _, p := range pairs {
		if p.ID == "" {
			c.logger.Warn("section without id skipped", slog.String("header", p.HeaderID))
			continue
		}
		if _, dup := c.sections[p.ID]; dup {
			c.logger.Warn("duplicate section id skipped", slog.String("section", p.ID))
			continue
		}
		if p.HeaderID == "" {
			p.HeaderID = p.ID + "-header"
		}
		if owner, dup := c.headers[p.HeaderID]; dup {
			c.logger.Warn("duplicate header id skipped",
				slog.String("section", p.ID),
				slog.String("header", p.HeaderID),
				slog.String("owner", owner.ID),
			)
			continue
		}
		e := &entry{Pair: p}
		c.order = append(c.order, e)
		c.sections[p.ID] = e
		c.headers[p.HeaderID] = e

		if p.ContentID == "" {
			c.missing(p.ID, "header has no content block")
			continue
		}
		c.view.SetMaxExtent(p.ID, 0)
		c.view.SetExpanded(p.ID, false)
	}
	return c
}

// Policy reports the exclusivity policy.
func (c *Controller) Policy() Policy { return c.policy }

// Open opens id. Under the exclusive policy every other open section is closed
// first. It reports whether anything changed.
func (c *Controller) Open(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.usable(id)
	if e == nil {
		return false
	}
	if e.open {
		c.logger.Debug("section already open", slog.String("section", id))
		return false
	}
	c.openPolicyLocked(e)
	return true
}

// Close closes id. It reports whether anything changed.
func (c *Controller) Close(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.usable(id)
	if e == nil {
		return false
	}
	return c.closeLocked(e)
}

// Toggle closes id if it is open and opens it otherwise.
func (c *Controller) Toggle(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.toggleLocked(id)
}

func (c *Controller) toggleLocked(id string) bool {
	e := c.usable(id)
	if e == nil {
		return false
	}
	if e.open {
		return c.closeLocked(e)
	}
	c.openPolicyLocked(e)
	return true
}

// CloseAll closes every open section and returns how many were closed.
func (c *Controller) CloseAll() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	closed := 0
	for _, e := range c.order {
		if c.closeLocked(e) {
			closed++
		}
	}
	return closed
}

// Reveal closes every section other than id and opens id, whatever the policy.
// In-page navigation uses it.
func (c *Controller) Reveal(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.usable(id)
	if e == nil {
		return false
	}
	changed := false
	for _, other := range c.order {
		if other != e && c.closeLocked(other) {
			changed = true
		}
	}
	if !e.open {
		c.openLocked(e)
		changed = true
	}
	return changed
}

// Remeasure re-applies the natural size of every open section, for example
// after the viewport was resized. It returns the number of sections adjusted.
func (c *Controller) Remeasure() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	adjusted := 0
	for _, e := range c.order {
		if !e.open {
			continue
		}
		size := c.view.NaturalSize(e.ID)
		if size > 0 && size != e.extent {
			e.extent = size
			c.view.SetMaxExtent(e.ID, size)
			adjusted++
		}
	}
	return adjusted
}

// IsOpen reports whether id is open. Unknown ids are closed.
func (c *Controller) IsOpen(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.sections[id]
	return ok && e.open
}

// Expanded returns the aria-expanded value for id.
func (c *Controller) Expanded(id string) string {
	if c.IsOpen(id) {
		return "true"
	}
	return "false"
}

// OpenIDs lists the open sections in page order.
func (c *Controller) OpenIDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var ids []string
	for _, e := range c.order {
		if e.open {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

// Snapshot returns every section's state in page order.
func (c *Controller) Snapshot() []State {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]State, 0, len(c.order))
	for _, e := range c.order {
		out = append(out, State{
			ID:        e.ID,
			HeaderID:  e.HeaderID,
			ContentID: e.ContentID,
			Open:      e.open,
			Extent:    e.extent,
		})
	}
	return out
}

// SectionForHeader resolves a header element id to its section id.
func (c *Controller) SectionForHeader(headerID string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.headers[headerID]
	if !ok {
		return "", false
	}
	return e.ID, true
}

// usable returns the entry for id when it exists and has content. Caller holds mu.
func (c *Controller) usable(id string) *entry {
	e, ok := c.sections[id]
	if !ok {
		c.missing(id, "unknown section")
		return nil
	}
	if e.ContentID == "" {
		c.missing(id, "header has no content block")
		return nil
	}
	return e
}

func (c *Controller) openPolicyLocked(e *entry) {
	if c.policy == Exclusive {
		for _, other := range c.order {
			if other != e {
				c.closeLocked(other)
			}
		}
	}
	c.openLocked(e)
}

func (c *Controller) openLocked(e *entry) {
	e.open = true
	size := c.view.NaturalSize(e.ID)
	e.extent = size
	c.view.SetMaxExtent(e.ID, size)
	c.view.SetExpanded(e.ID, true)

	if size <= 0 {
		c.logger.Debug("section measured empty, re-measuring", slog.String("section", e.ID))
		c.sched.After(c.remeasureDelay, func() { c.settle(e.ID) })
	}
}

func (c *Controller) closeLocked(e *entry) bool {
	if !e.open {
		return false
	}
	e.open = false
	e.extent = 0
	c.view.SetMaxExtent(e.ID, 0)
	c.view.SetExpanded(e.ID, false)
	return true
}

// settle is the deferred half of openLocked. The section may have been closed
// in the meantime, in which case it does nothing.
func (c *Controller) settle(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.sections[id]
	if !ok || !e.open {
		return
	}
	size := c.view.NaturalSize(id)
	if size <= 0 || size == e.extent {
		return
	}
	e.extent = size
	c.view.SetMaxExtent(id, size)
}

func (c *Controller) missing(id, reason string) {
	c.logger.Warn("section operation ignored",
		slog.String("section", id),
		slog.String("reason", reason),
		slog.String("fault", string(fault.MissingElement)),
	)
}
