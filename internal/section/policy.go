package section

import (
	"fmt"
	"strings"
)

// Policy decides how many sections may be open at once.
type Policy int

const (
	// Independent lets any subset of sections be open.
	Independent Policy = iota
	// Exclusive keeps at most one section open.
	Exclusive
)

func (p Policy) String() string {
	switch p {
	case Independent:
		return "independent"
	case Exclusive:
		return "exclusive"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy accepts "independent" or "exclusive" (also "single" and "multi").
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "exclusive", "single":
		return Exclusive, nil
	case "independent", "multi", "multiple":
		return Independent, nil
	default:
		return Independent, fmt.Errorf("unknown section policy %q", s)
	}
}

// UnmarshalText lets Policy be decoded from configuration.
func (p *Policy) UnmarshalText(text []byte) error {
	parsed, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
