// Package theme defines the viewer's palette and metrics.
package theme

import (
	"image/color"
	"runtime"

	"gioui.org/unit"
	"gioui.org/widget/material"
)

// Palette defines the viewer colors.
type Palette struct {
	Background color.NRGBA
	Surface    color.NRGBA
	Panel      color.NRGBA
	Primary    color.NRGBA
	Text       color.NRGBA
	TextMuted  color.NRGBA
	Border     color.NRGBA
	Selection  color.NRGBA
	Handle     color.NRGBA
	Error      color.NRGBA
}

// Config defines the viewer metrics.
type Config struct {
	CornerRadius unit.Dp
	Spacing      unit.Dp
	Padding      unit.Dp
	FontTitle    unit.Sp
	FontBody     unit.Sp
	FontCaption  unit.Sp
}

// Theme wraps the material theme with viewer-specific styling.
type Theme struct {
	*material.Theme
	Palette Palette
	Config  Config
}

// NewTheme creates a theme tuned to the current OS.
func NewTheme(mtheme *material.Theme) *Theme {
	t := &Theme{Theme: mtheme}

	if runtime.GOOS == "darwin" {
		setupMacOSTheme(t)
	} else {
		setupDefaultTheme(t)
	}

	return t
}

// A reading app wants a light surface; the chrome around the page stays
// neutral so the document and the selection stand out.
func setupDefaultTheme(t *Theme) {
	t.Palette = Palette{
		Background: color.NRGBA{R: 0xEC, G: 0xEC, B: 0xEC, A: 0xFF},
		Surface:    color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF},
		Panel:      color.NRGBA{R: 0xF6, G: 0xF6, B: 0xF6, A: 0xFF},
		Primary:    color.NRGBA{R: 0x1A, G: 0x73, B: 0xE8, A: 0xFF},
		Text:       color.NRGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xFF},
		TextMuted:  color.NRGBA{R: 0x75, G: 0x75, B: 0x75, A: 0xFF},
		Border:     color.NRGBA{R: 0xD0, G: 0xD0, B: 0xD0, A: 0xFF},
		Selection:  color.NRGBA{R: 0x1A, G: 0x73, B: 0xE8, A: 0x50},
		Handle:     color.NRGBA{R: 0x1A, G: 0x73, B: 0xE8, A: 0xFF},
		Error:      color.NRGBA{R: 0xD9, G: 0x30, B: 0x25, A: 0xFF},
	}

	t.Config = Config{
		CornerRadius: unit.Dp(4),
		Spacing:      unit.Dp(8),
		Padding:      unit.Dp(12),
		FontTitle:    unit.Sp(18),
		FontBody:     unit.Sp(14),
		FontCaption:  unit.Sp(12),
	}
}

func setupMacOSTheme(t *Theme) {
	setupDefaultTheme(t)

	t.Palette.Primary = color.NRGBA{R: 0x0A, G: 0x84, B: 0xFF, A: 0xFF}
	t.Palette.Selection = color.NRGBA{R: 0x0A, G: 0x84, B: 0xFF, A: 0x50}
	t.Palette.Handle = t.Palette.Primary

	t.Config.CornerRadius = unit.Dp(8)
	t.Config.FontBody = unit.Sp(13)
	t.Config.FontCaption = unit.Sp(11)
}
