package audit

import (
	"fmt"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// AuditContrast inspects every visible text-bearing element in the snapshot,
// resolves its foreground against the effective background, and classifies
// each distinct color pair against the WCAG thresholds. The traversal is a
// single synchronous pass; elements whose style cannot be resolved are
// skipped and counted neither as pass nor fail.
func AuditContrast(doc *Document) *ContrastAuditReport {
	report := &ContrastAuditReport{
		Results:         []ContrastResult{},
		Recommendations: []string{},
	}
	if !doc.Valid() || doc.Body() == nil {
		return degradedContrastReport(report)
	}

	seen := make(map[string]bool)
	doc.Walk(func(el *Element) {
		text := el.OwnText()
		if text == "" || !el.IsVisible() {
			return
		}

		fg, err := el.TextColor()
		if err != nil {
			return // per-node resolution failure: skip
		}
		bg, err := el.EffectiveBackground()
		if err != nil {
			return
		}
		size, err := el.FontSizePx()
		if err != nil {
			return
		}
		isLarge := IsLargeText(size, el.FontWeight())

		key := fmt.Sprintf("%s|%s|%t", fg.Hex(), bg.Hex(), isLarge)
		if seen[key] {
			return
		}
		seen[key] = true

		pair := ColorPair{
			Foreground:  fg.Hex(),
			Background:  bg.Hex(),
			Element:     el.Tag(),
			Context:     truncateText(text, 60),
			Location:    el.Selector(),
			IsTextLarge: isLarge,
		}

		ratio := ContrastRatio(fg, bg)
		level := ClassifyLevel(ratio, isLarge)
		result := ContrastResult{
			Combination:   pair,
			ContrastRatio: roundTo(ratio, 2),
			WcagLevel:     level,
		}
		if level == LevelFail || level == LevelA {
			result.Recommendation = contrastRecommendation(fg, bg, ratio, level, isLarge, pair)
		}
		report.Results = append(report.Results, result)
	})

	for _, r := range report.Results {
		switch r.WcagLevel {
		case LevelAAA:
			report.Summary.AAACompliant++
			report.PassCount++
		case LevelAA:
			report.Summary.AACompliant++
			report.PassCount++
		case LevelA:
			report.Summary.ACompliant++
			report.FailCount++
		default:
			report.Summary.Failing++
			report.FailCount++
		}
		if r.Recommendation != "" {
			report.Recommendations = append(report.Recommendations, r.Recommendation)
		}
	}
	report.TotalCombinations = len(report.Results)
	if report.TotalCombinations > 0 {
		report.OverallScore = int(math.Round(100 * float64(report.PassCount) / float64(report.TotalCombinations)))
	}
	return report
}

// degradedContrastReport is the "audit unavailable" shape returned when the
// snapshot has no computed-style surface at all.
func degradedContrastReport(report *ContrastAuditReport) *ContrastAuditReport {
	report.FailCount = 1
	report.Summary.Failing = 1
	report.Recommendations = append(report.Recommendations,
		"Contrast audit unavailable: the document snapshot exposes no computed styles")
	return report
}

// contrastRecommendation names the ratio needed for the next compliance tier
// and proposes a concrete foreground adjustment that reaches it.
func contrastRecommendation(fg, bg colorful.Color, ratio float64, level WcagLevel, isLarge bool, pair ColorPair) string {
	textKind := "normal text"
	if isLarge {
		textKind = "large text"
	}
	tier, target := nextTierTarget(level, isLarge)
	msg := fmt.Sprintf("%s on %s (%s, %.2f:1) is below the %.2f:1 minimum for %s %s",
		pair.Foreground, pair.Background, pair.Element, ratio, target, tier, textKind)
	if suggested, ok := SuggestForeground(fg, bg, target); ok {
		msg += fmt.Sprintf("; try foreground %s", suggested.Hex())
	}
	return msg
}

// truncateText bounds context snippets so reports stay readable.
func truncateText(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}

// roundTo rounds to the given number of decimal places.
func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
