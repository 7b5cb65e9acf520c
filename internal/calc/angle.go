package calc

import (
	"fmt"
	"strings"
)

// AngleMode selects how trigonometric arguments are interpreted.
type AngleMode int

const (
	// Radians passes trig arguments through unchanged
	Radians AngleMode = iota
	// Degrees converts trig arguments with π/180 before applying the function
	Degrees
)

// String returns the short display name of the mode
func (m AngleMode) String() string {
	switch m {
	case Degrees:
		return "deg"
	default:
		return "rad"
	}
}

// Toggle returns the other angle mode
func (m AngleMode) Toggle() AngleMode {
	if m == Degrees {
		return Radians
	}
	return Degrees
}

// ParseAngleMode parses "rad", "radians", "deg" or "degrees" (any case).
// An empty string yields Radians.
func ParseAngleMode(s string) (AngleMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "rad", "radian", "radians":
		return Radians, nil
	case "deg", "degree", "degrees":
		return Degrees, nil
	default:
		return Radians, fmt.Errorf("unknown angle mode %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler so configs and API payloads carry "rad"/"deg".
func (m AngleMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *AngleMode) UnmarshalText(text []byte) error {
	mode, err := ParseAngleMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}
