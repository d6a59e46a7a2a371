package audit

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// WCAG contrast thresholds. Large text is anything rendered at 24px or more,
// or 18.66px or more at bold weight.
const (
	largeTextMinPx     = 24.0
	largeTextBoldMinPx = 18.66
	boldWeightMin      = 700

	normalAAAMin = 7.0
	normalAAMin  = 4.5
	normalAMin   = 3.0

	largeAAAMin = 4.5
	largeAAMin  = 3.0
	largeAMin   = 2.0
)

// RelativeLuminance computes the WCAG relative luminance of a color:
// each sRGB channel is gamma-linearized, then weighted 0.2126/0.7152/0.0722.
func RelativeLuminance(c colorful.Color) float64 {
	return 0.2126*linearize(c.R) + 0.7152*linearize(c.G) + 0.0722*linearize(c.B)
}

// linearize undoes the sRGB transfer function for a single channel in [0,1].
func linearize(ch float64) float64 {
	if ch <= 0.03928 {
		return ch / 12.92
	}
	return math.Pow((ch+0.055)/1.055, 2.4)
}

// ContrastRatio returns (Lmax+0.05)/(Lmin+0.05) for two colors. The result is
// symmetric in its arguments and always lies in [1, 21].
func ContrastRatio(c1, c2 colorful.Color) float64 {
	l1 := RelativeLuminance(c1)
	l2 := RelativeLuminance(c2)
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return (l1 + 0.05) / (l2 + 0.05)
}

// ClassifyLevel maps a contrast ratio to a compliance tier. Large text uses
// the relaxed threshold set.
func ClassifyLevel(ratio float64, isLargeText bool) WcagLevel {
	if isLargeText {
		switch {
		case ratio >= largeAAAMin:
			return LevelAAA
		case ratio >= largeAAMin:
			return LevelAA
		case ratio >= largeAMin:
			return LevelA
		}
		return LevelFail
	}
	switch {
	case ratio >= normalAAAMin:
		return LevelAAA
	case ratio >= normalAAMin:
		return LevelAA
	case ratio >= normalAMin:
		return LevelA
	}
	return LevelFail
}

// IsLargeText reports whether text at the given computed font-size and weight
// counts as "large" for WCAG threshold purposes.
func IsLargeText(fontSizePx float64, fontWeight int) bool {
	if fontSizePx >= largeTextMinPx {
		return true
	}
	return fontWeight >= boldWeightMin && fontSizePx >= largeTextBoldMinPx
}

// nextTierTarget returns the name and minimum ratio of the tier directly above
// the given level. AAA has no tier above it.
func nextTierTarget(level WcagLevel, isLargeText bool) (WcagLevel, float64) {
	if isLargeText {
		switch level {
		case LevelFail:
			return LevelA, largeAMin
		case LevelA:
			return LevelAA, largeAAMin
		case LevelAA:
			return LevelAAA, largeAAAMin
		}
		return LevelAAA, largeAAAMin
	}
	switch level {
	case LevelFail:
		return LevelA, normalAMin
	case LevelA:
		return LevelAA, normalAAMin
	case LevelAA:
		return LevelAAA, normalAAAMin
	}
	return LevelAAA, normalAAAMin
}

// SuggestForeground nudges the foreground color's Lab lightness away from the
// background, 5 L* at a time, until the pair reaches the target ratio. The
// hue is preserved; only lightness moves. Returns the adjusted color and true
// on success, or the original color and false if even the lightness extreme
// falls short.
func SuggestForeground(fg, bg colorful.Color, targetRatio float64) (colorful.Color, bool) {
	if ContrastRatio(fg, bg) >= targetRatio {
		return fg, true
	}

	l, a, b := fg.Lab()
	step := -0.05
	if RelativeLuminance(fg) > RelativeLuminance(bg) {
		step = 0.05
	}

	for i := 0; i < 20; i++ {
		l += step
		if l < 0 {
			l = 0
		} else if l > 1 {
			l = 1
		}
		candidate := colorful.Lab(l, a, b).Clamped()
		if ContrastRatio(candidate, bg) >= targetRatio {
			return candidate, true
		}
		if l == 0 || l == 1 {
			break
		}
	}
	return fg, false
}
