package calculator

import (
	"fmt"
	"strings"
)

// Mode is the calculator panel that is currently active.
type Mode int

const (
	ModeStandard Mode = iota
	ModeScientific
	ModeAI
)

var modeNames = []string{"standard", "scientific", "ai"}

// Modes lists every mode in tab order.
func Modes() []Mode {
	return []Mode{ModeStandard, ModeScientific, ModeAI}
}

func (m Mode) String() string {
	if int(m) >= 0 && int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "unknown"
}

// Title is the label used for tabs.
func (m Mode) Title() string {
	switch m {
	case ModeStandard:
		return "Standard"
	case ModeScientific:
		return "Scientific"
	case ModeAI:
		return "AI Assistant"
	default:
		return "Unknown"
	}
}

// Next returns the following mode in tab order, wrapping around.
func (m Mode) Next() Mode {
	return Mode((int(m) + 1) % len(modeNames))
}

// Prev returns the preceding mode in tab order, wrapping around.
func (m Mode) Prev() Mode {
	return Mode((int(m) + len(modeNames) - 1) % len(modeNames))
}

// ParseMode accepts the lower-case mode names; an empty string is ModeStandard.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ModeStandard, nil
	}
	for i, name := range modeNames {
		if name == s {
			return Mode(i), nil
		}
	}
	return ModeStandard, fmt.Errorf("unknown calculator mode %q", s)
}
