package models

import (
	"fmt"
	"strings"
)

type ColorMode string

const (
	ModeRed   ColorMode = "Red"
	ModeGreen ColorMode = "Green"
	ModeBlue  ColorMode = "Blue"
	ModeRGB   ColorMode = "RGB"
)

var ColorModesList = [...]string{
	string(ModeRed),
	string(ModeGreen),
	string(ModeBlue),
	string(ModeRGB),
}

// ParseColorMode accepts the display names from ColorModesList.
func ParseColorMode(s string) (ColorMode, error) {
	for _, m := range ColorModesList {
		if s == m {
			return ColorMode(m), nil
		}
	}

	return "", fmt.Errorf("unknown color channel %q (expected one of %s)", s, strings.Join(ColorModesList[:], ", "))
}

// Plane returns the index of the kept plane in an RGB triple, or -1 for ModeRGB.
func (m ColorMode) Plane() int {
	switch m {
	case ModeRed:
		return 0
	case ModeGreen:
		return 1
	case ModeBlue:
		return 2
	default:
		return -1
	}
}

func (m ColorMode) String() string {
	return string(m)
}
