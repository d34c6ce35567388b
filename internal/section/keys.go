package section

// Key is a keyboard key name as reported by KeyboardEvent.key.
type Key string

const (
	KeyEnter      Key = "Enter"
	KeySpace      Key = " "
	KeyEscape     Key = "Escape"
	KeyArrowDown  Key = "ArrowDown"
	KeyArrowUp    Key = "ArrowUp"
	KeyArrowRight Key = "ArrowRight"
	KeyArrowLeft  Key = "ArrowLeft"
	KeyHome       Key = "Home"
	KeyEnd        Key = "End"
)

// ParseKey normalizes the spellings browsers and forms send for the same key.
func ParseKey(s string) Key {
	switch s {
	case " ", "Space", "Spacebar":
		return KeySpace
	case "Esc":
		return KeyEscape
	case "Down":
		return KeyArrowDown
	case "Up":
		return KeyArrowUp
	case "Right":
		return KeyArrowRight
	case "Left":
		return KeyArrowLeft
	}
	return Key(s)
}

// HandleKey applies a key press made while focusedHeader had focus and returns
// the header id that should hold focus afterwards. Enter and Space toggle the
// focused section, Escape closes everything, and the arrow keys plus Home/End
// move focus around the headers cyclically without touching open state.
// Unknown headers and unhandled keys leave everything as it was.
func (c *Controller) HandleKey(focusedHeader string, key Key) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if key == KeyEscape {
		for _, e := range c.order {
			c.closeLocked(e)
		}
		return focusedHeader
	}

	e, ok := c.headers[focusedHeader]
	if !ok {
		if focusedHeader != "" {
			c.missing(focusedHeader, "key press on unknown header")
		}
		return focusedHeader
	}

	switch key {
	case KeyEnter, KeySpace:
		c.toggleLocked(e.ID)
		return focusedHeader
	case KeyArrowDown, KeyArrowRight:
		return c.neighbor(e, 1).HeaderID
	case KeyArrowUp, KeyArrowLeft:
		return c.neighbor(e, -1).HeaderID
	case KeyHome:
		return c.order[0].HeaderID
	case KeyEnd:
		return c.order[len(c.order)-1].HeaderID
	}
	return focusedHeader
}

func (c *Controller) neighbor(e *entry, step int) *entry {
	n := len(c.order)
	for i, cur := range c.order {
		if cur == e {
			return c.order[((i+step)%n+n)%n]
		}
	}
	return e
}
