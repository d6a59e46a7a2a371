package audit

import (
	"math"
	"testing"

	colorful "github.com/lucasb-eyer/go-colorful"
)

func mustHex(t *testing.T, s string) colorful.Color {
	t.Helper()
	c, err := colorful.Hex(s)
	if err != nil {
		t.Fatalf("bad test color %q: %v", s, err)
	}
	return c
}

func TestContrastRatioBounds(t *testing.T) {
	samples := []string{
		"#000000", "#ffffff", "#777777", "#ff0000", "#00ff00",
		"#0000ff", "#123456", "#fedcba", "#0a0a0a", "#f5f5f5",
	}

	for _, a := range samples {
		for _, b := range samples {
			ca, cb := mustHex(t, a), mustHex(t, b)
			r1 := ContrastRatio(ca, cb)
			r2 := ContrastRatio(cb, ca)

			if r1 != r2 {
				t.Errorf("ContrastRatio(%s, %s) = %f but reversed = %f", a, b, r1, r2)
			}
			if r1 < 1 || r1 > 21 {
				t.Errorf("ContrastRatio(%s, %s) = %f, outside [1, 21]", a, b, r1)
			}
		}
	}
}

func TestContrastRatioBlackOnWhite(t *testing.T) {
	ratio := ContrastRatio(mustHex(t, "#000000"), mustHex(t, "#ffffff"))
	if math.Abs(ratio-21.0) > 0.001 {
		t.Errorf("Expected black/white ratio 21.0, got %f", ratio)
	}

	if level := ClassifyLevel(ratio, false); level != LevelAAA {
		t.Errorf("Expected AAA for normal text, got %s", level)
	}
	if level := ClassifyLevel(ratio, true); level != LevelAAA {
		t.Errorf("Expected AAA for large text, got %s", level)
	}
}

func TestContrastRatioMidGrayOnWhite(t *testing.T) {
	ratio := ContrastRatio(mustHex(t, "#777777"), mustHex(t, "#ffffff"))
	if math.Abs(ratio-4.48) > 0.01 {
		t.Errorf("Expected ratio ~4.48 for #777777 on white, got %f", ratio)
	}

	// Just below the 4.5 AA floor for normal text, comfortably above the
	// 3.0 AA floor for large text.
	if level := ClassifyLevel(ratio, false); level != LevelA {
		t.Errorf("Expected A for normal text, got %s", level)
	}
	if level := ClassifyLevel(ratio, true); level != LevelAA {
		t.Errorf("Expected AA for large text, got %s", level)
	}
}

func TestClassifyLevelThresholds(t *testing.T) {
	cases := []struct {
		ratio   float64
		isLarge bool
		want    WcagLevel
	}{
		{7.0, false, LevelAAA},
		{6.99, false, LevelAA},
		{4.5, false, LevelAA},
		{4.49, false, LevelA},
		{3.0, false, LevelA},
		{2.99, false, LevelFail},
		{4.5, true, LevelAAA},
		{4.49, true, LevelAA},
		{3.0, true, LevelAA},
		{2.99, true, LevelA},
		{2.0, true, LevelA},
		{1.99, true, LevelFail},
	}

	for _, tc := range cases {
		if got := ClassifyLevel(tc.ratio, tc.isLarge); got != tc.want {
			t.Errorf("ClassifyLevel(%f, large=%t) = %s, want %s", tc.ratio, tc.isLarge, got, tc.want)
		}
	}
}

func TestIsLargeText(t *testing.T) {
	cases := []struct {
		size   float64
		weight int
		want   bool
	}{
		{24, 400, true},
		{23.9, 400, false},
		{18.66, 700, true},
		{18.66, 400, false},
		{18.0, 700, false},
		{16, 400, false},
	}

	for _, tc := range cases {
		if got := IsLargeText(tc.size, tc.weight); got != tc.want {
			t.Errorf("IsLargeText(%f, %d) = %t, want %t", tc.size, tc.weight, got, tc.want)
		}
	}
}

func TestSuggestForeground(t *testing.T) {
	white := mustHex(t, "#ffffff")

	t.Run("AlreadyPassing", func(t *testing.T) {
		black := mustHex(t, "#000000")
		got, ok := SuggestForeground(black, white, 4.5)
		if !ok || got != black {
			t.Errorf("Expected passing color returned unchanged, got %v ok=%t", got, ok)
		}
	})

	t.Run("DarkensTowardTarget", func(t *testing.T) {
		gray := mustHex(t, "#999999")
		suggested, ok := SuggestForeground(gray, white, 4.5)
		if !ok {
			t.Fatal("Expected a suggestion for #999999 on white")
		}
		if ratio := ContrastRatio(suggested, white); ratio < 4.5 {
			t.Errorf("Suggested color %s only reaches %f", suggested.Hex(), ratio)
		}
	})

	t.Run("LightensOnDarkBackground", func(t *testing.T) {
		dark := mustHex(t, "#222222")
		fg := mustHex(t, "#555555")
		suggested, ok := SuggestForeground(fg, dark, 4.5)
		if !ok {
			t.Fatal("Expected a suggestion for #555555 on #222222")
		}
		if ratio := ContrastRatio(suggested, dark); ratio < 4.5 {
			t.Errorf("Suggested color %s only reaches %f", suggested.Hex(), ratio)
		}
	})
}

func TestRelativeLuminanceEndpoints(t *testing.T) {
	if l := RelativeLuminance(mustHex(t, "#000000")); l != 0 {
		t.Errorf("Expected luminance 0 for black, got %f", l)
	}
	if l := RelativeLuminance(mustHex(t, "#ffffff")); math.Abs(l-1.0) > 0.0001 {
		t.Errorf("Expected luminance 1 for white, got %f", l)
	}
}
