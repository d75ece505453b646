package render

import (
	"strings"

	"github.com/matzehuels/sitegraph/pkg/errors"
)

// Theme is the page color scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme accepts "light" or "dark" (case-insensitive).
func ParseTheme(s string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case ThemeLight:
		return ThemeLight, nil
	case ThemeDark:
		return ThemeDark, nil
	}
	return "", errors.New(errors.ErrCodeInvalidTheme, "unknown theme %q (want light or dark)", s)
}

// LabelColor returns the label fill for the theme.
func (t Theme) LabelColor() string {
	if t == ThemeDark {
		return "white"
	}
	return "black"
}

// Background returns the canvas color for the theme.
func (t Theme) Background() string {
	if t == ThemeDark {
		return "#000000"
	}
	return "#ffffff"
}

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}
