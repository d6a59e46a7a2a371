package audit

import (
	"fmt"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Reference viewports used to resolve viewport-relative lengths to pixel
// equivalents: a 320px mobile floor and a 1920px desktop ceiling. These are
// fixed design constants, not measurements of the audited page.
const (
	mobileViewportWidth   = 320.0
	desktopViewportWidth  = 1920.0
	mobileViewportHeight  = 568.0
	desktopViewportHeight = 1080.0

	rootFontSizePx = 16.0
)

// namedColors covers the CSS color keywords the platform's stylesheets
// actually use. Unknown names fail parsing rather than guessing.
var namedColors = map[string]string{
	"black":      "#000000",
	"white":      "#ffffff",
	"red":        "#ff0000",
	"green":      "#008000",
	"blue":       "#0000ff",
	"yellow":     "#ffff00",
	"orange":     "#ffa500",
	"purple":     "#800080",
	"gray":       "#808080",
	"grey":       "#808080",
	"silver":     "#c0c0c0",
	"teal":       "#008080",
	"navy":       "#000080",
	"maroon":     "#800000",
	"olive":      "#808000",
	"lime":       "#00ff00",
	"aqua":       "#00ffff",
	"cyan":       "#00ffff",
	"fuchsia":    "#ff00ff",
	"magenta":    "#ff00ff",
	"whitesmoke": "#f5f5f5",
	"lightgray":  "#d3d3d3",
	"darkgray":   "#a9a9a9",
	"dimgray":    "#696969",
}

// ParseColor resolves a CSS color literal (hex, rgb()/rgba(), or a known
// keyword) to a color plus its alpha channel. "transparent" and zero-alpha
// rgba() parse successfully with alpha 0.
func ParseColor(value string) (colorful.Color, float64, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	switch {
	case v == "":
		return colorful.Color{}, 0, fmt.Errorf("empty color value")
	case v == "transparent":
		return colorful.Color{}, 0, nil
	case strings.HasPrefix(v, "#"):
		c, err := colorful.Hex(v)
		if err != nil {
			return colorful.Color{}, 0, fmt.Errorf("invalid hex color %q: %w", value, err)
		}
		return c, 1, nil
	case strings.HasPrefix(v, "rgb(") || strings.HasPrefix(v, "rgba("):
		return parseRGBFunc(v)
	}
	if hex, ok := namedColors[v]; ok {
		c, _ := colorful.Hex(hex)
		return c, 1, nil
	}
	return colorful.Color{}, 0, fmt.Errorf("unrecognized color value %q", value)
}

// parseRGBFunc handles rgb(r, g, b) and rgba(r, g, b, a) with either
// comma-separated or space-separated arguments.
func parseRGBFunc(v string) (colorful.Color, float64, error) {
	open := strings.IndexByte(v, '(')
	end := strings.LastIndexByte(v, ')')
	if open < 0 || end < open {
		return colorful.Color{}, 0, fmt.Errorf("malformed color function %q", v)
	}
	inner := v[open+1 : end]
	inner = strings.ReplaceAll(inner, "/", " ")
	inner = strings.ReplaceAll(inner, ",", " ")
	parts := strings.Fields(inner)
	if len(parts) < 3 || len(parts) > 4 {
		return colorful.Color{}, 0, fmt.Errorf("color function %q needs 3 or 4 arguments", v)
	}

	chans := make([]float64, 3)
	for i := 0; i < 3; i++ {
		p := parts[i]
		var f float64
		var err error
		if strings.HasSuffix(p, "%") {
			f, err = strconv.ParseFloat(strings.TrimSuffix(p, "%"), 64)
			f = f / 100 * 255
		} else {
			f, err = strconv.ParseFloat(p, 64)
		}
		if err != nil {
			return colorful.Color{}, 0, fmt.Errorf("invalid channel %q in %q", p, v)
		}
		chans[i] = clampChannel(f) / 255
	}

	alpha := 1.0
	if len(parts) == 4 {
		p := parts[3]
		var err error
		if strings.HasSuffix(p, "%") {
			alpha, err = strconv.ParseFloat(strings.TrimSuffix(p, "%"), 64)
			alpha /= 100
		} else {
			alpha, err = strconv.ParseFloat(p, 64)
		}
		if err != nil {
			return colorful.Color{}, 0, fmt.Errorf("invalid alpha %q in %q", p, v)
		}
		if alpha < 0 {
			alpha = 0
		} else if alpha > 1 {
			alpha = 1
		}
	}
	return colorful.Color{R: chans[0], G: chans[1], B: chans[2]}, alpha, nil
}

func clampChannel(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 255 {
		return 255
	}
	return f
}

// LengthPx converts a non-viewport CSS length to pixels. Relative units (em,
// %) resolve against parentPx; rem resolves against the 16px root size.
func LengthPx(value string, parentPx float64) (float64, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return 0, fmt.Errorf("empty length")
	}
	for _, u := range []struct {
		suffix string
		scale  func(n float64) float64
	}{
		{"px", func(n float64) float64 { return n }},
		{"rem", func(n float64) float64 { return n * rootFontSizePx }},
		{"em", func(n float64) float64 { return n * parentPx }},
		{"pt", func(n float64) float64 { return n * 96 / 72 }},
		{"%", func(n float64) float64 { return n / 100 * parentPx }},
	} {
		if strings.HasSuffix(v, u.suffix) {
			n, err := strconv.ParseFloat(strings.TrimSuffix(v, u.suffix), 64)
			if err != nil {
				return 0, fmt.Errorf("invalid length %q", value)
			}
			return u.scale(n), nil
		}
	}
	// Bare zero is the only valid unitless length.
	if n, err := strconv.ParseFloat(v, 64); err == nil && n == 0 {
		return 0, nil
	}
	return 0, fmt.Errorf("unsupported length unit in %q", value)
}

// ClampExpr is a parsed clamp(min, preferred, max) font-size expression.
type ClampExpr struct {
	Min       string
	Preferred string
	Max       string
}

// ParseClamp extracts the three legs of a clamp() expression. Returns false
// when the value is not a clamp() call; returns an error when it is one but
// is malformed.
func ParseClamp(value string) (*ClampExpr, bool, error) {
	v := strings.TrimSpace(value)
	lower := strings.ToLower(v)
	if !strings.HasPrefix(lower, "clamp(") {
		return nil, false, nil
	}
	if !strings.HasSuffix(v, ")") {
		return nil, true, fmt.Errorf("unterminated clamp expression %q", value)
	}
	inner := v[len("clamp(") : len(v)-1]
	parts := splitTopLevel(inner, ',')
	if len(parts) != 3 {
		return nil, true, fmt.Errorf("clamp expression %q needs 3 arguments, got %d", value, len(parts))
	}
	return &ClampExpr{
		Min:       strings.TrimSpace(parts[0]),
		Preferred: strings.TrimSpace(parts[1]),
		Max:       strings.TrimSpace(parts[2]),
	}, true, nil
}

// splitTopLevel splits on sep only outside nested parentheses, so that
// calc() terms inside clamp() survive intact.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// ResolveLengthAt evaluates a clamp() leg to pixels at a given reference
// viewport. Supports single lengths, viewport units, and additive
// "a + b" / "a - b" expressions (optionally wrapped in calc()).
func ResolveLengthAt(expr string, viewportWidth, viewportHeight float64) (float64, error) {
	e := strings.TrimSpace(expr)
	lower := strings.ToLower(e)
	if strings.HasPrefix(lower, "calc(") && strings.HasSuffix(e, ")") {
		e = e[len("calc(") : len(e)-1]
	}

	// Operators must be whitespace-separated per the calc() grammar, so
	// field-splitting is a sufficient tokenizer for additive expressions.
	total := 0.0
	sign := 1.0
	for _, tok := range strings.Fields(e) {
		switch tok {
		case "+":
			sign = 1
			continue
		case "-":
			sign = -1
			continue
		}
		px, err := termPx(tok, viewportWidth, viewportHeight)
		if err != nil {
			return 0, err
		}
		total += sign * px
		sign = 1
	}
	return total, nil
}

// termPx resolves one additive term to pixels at the reference viewport.
func termPx(term string, vw, vh float64) (float64, error) {
	t := strings.ToLower(strings.TrimSpace(term))
	switch {
	case strings.HasSuffix(t, "vw"):
		n, err := strconv.ParseFloat(strings.TrimSuffix(t, "vw"), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid viewport term %q", term)
		}
		return n / 100 * vw, nil
	case strings.HasSuffix(t, "vh"):
		n, err := strconv.ParseFloat(strings.TrimSuffix(t, "vh"), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid viewport term %q", term)
		}
		return n / 100 * vh, nil
	}
	return LengthPx(t, rootFontSizePx)
}

// isViewportRelative reports whether a raw (non-clamp) value contains a
// viewport unit, which grows unbounded without clamp() limits.
func isViewportRelative(value string) bool {
	v := strings.ToLower(value)
	for _, unit := range []string{"vw", "vh", "vmin", "vmax"} {
		idx := strings.Index(v, unit)
		if idx > 0 {
			prev := v[idx-1]
			if prev >= '0' && prev <= '9' || prev == '.' {
				return true
			}
		}
	}
	return false
}

// ParseFontWeight normalizes a CSS font-weight value to its numeric form.
// Unparseable values fall back to the inherited weight.
func ParseFontWeight(value string, inherited int) int {
	v := strings.ToLower(strings.TrimSpace(value))
	switch v {
	case "", "inherit", "initial", "unset":
		return inherited
	case "normal":
		return 400
	case "bold":
		return 700
	case "bolder":
		if inherited >= 400 {
			return 700
		}
		return 400
	case "lighter":
		if inherited >= 700 {
			return 400
		}
		return 100
	}
	if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= 1000 {
		return n
	}
	return inherited
}
