package domain

import (
	"errors"
	"fmt"
)

// WindowPreset is a named convenience range resolved into absolute bounds
// before the projection core is invoked.
type WindowPreset string

const (
	PresetDay    WindowPreset = "day"
	PresetWeek   WindowPreset = "week"
	PresetMonth  WindowPreset = "month"
	PresetCustom WindowPreset = "custom"
)

// ErrUnknownPreset is returned when a preset string is not recognized.
var ErrUnknownPreset = errors.New("unknown window preset")

// ParseWindowPreset validates a preset string.
func ParseWindowPreset(s string) (WindowPreset, error) {
	switch WindowPreset(s) {
	case PresetDay, PresetWeek, PresetMonth, PresetCustom:
		return WindowPreset(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPreset, s)
}

// SpanHours returns the preset's span in hours. Custom has no fixed span.
func (p WindowPreset) SpanHours() (float64, bool) {
	switch p {
	case PresetDay:
		return 24, true
	case PresetWeek:
		return 168, true
	case PresetMonth:
		return 720, true
	}
	return 0, false
}
