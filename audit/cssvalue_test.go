package audit

import (
	"math"
	"testing"
)

func TestParseColor(t *testing.T) {
	t.Run("HexLong", func(t *testing.T) {
		c, alpha, err := ParseColor("#336699")
		if err != nil {
			t.Fatalf("Failed to parse: %v", err)
		}
		if alpha != 1 {
			t.Errorf("Expected alpha 1, got %f", alpha)
		}
		if c.Hex() != "#336699" {
			t.Errorf("Expected #336699, got %s", c.Hex())
		}
	})

	t.Run("HexShort", func(t *testing.T) {
		c, _, err := ParseColor("#fff")
		if err != nil {
			t.Fatalf("Failed to parse: %v", err)
		}
		if c.Hex() != "#ffffff" {
			t.Errorf("Expected #ffffff, got %s", c.Hex())
		}
	})

	t.Run("RGBFunction", func(t *testing.T) {
		c, alpha, err := ParseColor("rgb(255, 0, 0)")
		if err != nil {
			t.Fatalf("Failed to parse: %v", err)
		}
		if alpha != 1 || c.Hex() != "#ff0000" {
			t.Errorf("Expected #ff0000 alpha 1, got %s alpha %f", c.Hex(), alpha)
		}
	})

	t.Run("RGBAZeroAlpha", func(t *testing.T) {
		_, alpha, err := ParseColor("rgba(0, 0, 0, 0)")
		if err != nil {
			t.Fatalf("Failed to parse: %v", err)
		}
		if alpha != 0 {
			t.Errorf("Expected alpha 0, got %f", alpha)
		}
	})

	t.Run("Transparent", func(t *testing.T) {
		_, alpha, err := ParseColor("transparent")
		if err != nil {
			t.Fatalf("Failed to parse: %v", err)
		}
		if alpha != 0 {
			t.Errorf("Expected alpha 0, got %f", alpha)
		}
	})

	t.Run("NamedColor", func(t *testing.T) {
		c, _, err := ParseColor("white")
		if err != nil {
			t.Fatalf("Failed to parse: %v", err)
		}
		if c.Hex() != "#ffffff" {
			t.Errorf("Expected #ffffff, got %s", c.Hex())
		}
	})

	t.Run("Unrecognized", func(t *testing.T) {
		if _, _, err := ParseColor("var(--brand-primary)"); err == nil {
			t.Error("Expected error for CSS variable reference")
		}
	})
}

func TestLengthPx(t *testing.T) {
	cases := []struct {
		value    string
		parentPx float64
		want     float64
		wantErr  bool
	}{
		{"16px", 16, 16, false},
		{"1.5rem", 20, 24, false},
		{"2em", 10, 20, false},
		{"12pt", 16, 16, false},
		{"150%", 16, 24, false},
		{"0", 16, 0, false},
		{"2vw", 16, 0, true},
		{"large", 16, 0, true},
		{"", 16, 0, true},
	}

	for _, tc := range cases {
		got, err := LengthPx(tc.value, tc.parentPx)
		if tc.wantErr {
			if err == nil {
				t.Errorf("LengthPx(%q) expected error, got %f", tc.value, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("LengthPx(%q) unexpected error: %v", tc.value, err)
			continue
		}
		if math.Abs(got-tc.want) > 0.001 {
			t.Errorf("LengthPx(%q) = %f, want %f", tc.value, got, tc.want)
		}
	}
}

func TestParseClamp(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		expr, isClamp, err := ParseClamp("clamp(1rem, 2vw + 0.5rem, 1.5rem)")
		if err != nil || !isClamp {
			t.Fatalf("Expected valid clamp, got isClamp=%t err=%v", isClamp, err)
		}
		if expr.Min != "1rem" || expr.Preferred != "2vw + 0.5rem" || expr.Max != "1.5rem" {
			t.Errorf("Unexpected legs: %+v", expr)
		}
	})

	t.Run("NotClamp", func(t *testing.T) {
		_, isClamp, err := ParseClamp("16px")
		if isClamp || err != nil {
			t.Errorf("Expected non-clamp passthrough, got isClamp=%t err=%v", isClamp, err)
		}
	})

	t.Run("MalformedArgCount", func(t *testing.T) {
		_, isClamp, err := ParseClamp("clamp(1rem, 2vw)")
		if !isClamp || err == nil {
			t.Errorf("Expected malformed clamp error, got isClamp=%t err=%v", isClamp, err)
		}
	})

	t.Run("NestedCalc", func(t *testing.T) {
		expr, isClamp, err := ParseClamp("clamp(1rem, calc(0.5rem + 2vw), 2rem)")
		if err != nil || !isClamp {
			t.Fatalf("Expected valid clamp, got err=%v", err)
		}
		if expr.Preferred != "calc(0.5rem + 2vw)" {
			t.Errorf("Nested calc leg mangled: %q", expr.Preferred)
		}
	})
}

func TestResolveLengthAt(t *testing.T) {
	cases := []struct {
		expr string
		vw   float64
		vh   float64
		want float64
	}{
		{"1rem", 320, 568, 16},
		{"1.5rem", 1920, 1080, 24},
		{"2vw", 320, 568, 6.4},
		{"2vw + 0.5rem", 320, 568, 14.4},
		{"calc(0.5rem + 2vw)", 1920, 1080, 46.4},
		{"10vh", 320, 568, 56.8},
		{"24px", 1920, 1080, 24},
		{"2rem - 0.5rem", 320, 568, 24},
	}

	for _, tc := range cases {
		got, err := ResolveLengthAt(tc.expr, tc.vw, tc.vh)
		if err != nil {
			t.Errorf("ResolveLengthAt(%q) unexpected error: %v", tc.expr, err)
			continue
		}
		if math.Abs(got-tc.want) > 0.001 {
			t.Errorf("ResolveLengthAt(%q, %f) = %f, want %f", tc.expr, tc.vw, got, tc.want)
		}
	}

	if _, err := ResolveLengthAt("2fr", 320, 568); err == nil {
		t.Error("Expected error for unsupported unit")
	}
}

func TestIsViewportRelative(t *testing.T) {
	cases := []struct {
		value string
		want  bool
	}{
		{"4vw", true},
		{"10vh", true},
		{"2.5vmin", true},
		{"16px", false},
		{"1rem", false},
		{"inherit", false},
	}

	for _, tc := range cases {
		if got := isViewportRelative(tc.value); got != tc.want {
			t.Errorf("isViewportRelative(%q) = %t, want %t", tc.value, got, tc.want)
		}
	}
}

func TestParseFontWeight(t *testing.T) {
	cases := []struct {
		value     string
		inherited int
		want      int
	}{
		{"normal", 400, 400},
		{"bold", 400, 700},
		{"600", 400, 600},
		{"bolder", 400, 700},
		{"lighter", 700, 400},
		{"inherit", 700, 700},
		{"", 500, 500},
		{"wiggly", 400, 400},
	}

	for _, tc := range cases {
		if got := ParseFontWeight(tc.value, tc.inherited); got != tc.want {
			t.Errorf("ParseFontWeight(%q, %d) = %d, want %d", tc.value, tc.inherited, got, tc.want)
		}
	}
}
