package audit

import (
	"fmt"
	"math"
	"strconv"
)

// Fluid typography design constants: the 16px accessibility floor, the 12px
// legibility hard floor, and the modular scale used for suggested values.
const (
	accessibilityFloorPx = 16.0
	legibilityFloorPx    = 12.0

	defaultScaleBase  = 16.0
	defaultScaleRatio = 1.25

	// More than this many distinct max/min ratios across the page signals a
	// drifting type system.
	maxDistinctRatios = 2
)

// scaleSteps are the named steps of the generated modular scale, smallest
// first. Step n sizes to base * ratio^(n-2) so "base" sits at the base size.
var scaleSteps = []string{"xs", "sm", "base", "lg", "xl", "2xl", "3xl", "4xl"}

// typographyTemplates are recommendation templates keyed by violation kind.
var typographyTemplates = map[string]string{
	ViolationMissingFluid:      "Replace fixed font sizes with clamp() expressions so text scales with the viewport",
	ViolationTooSmall:          "Keep minimum font sizes at or above 16px; sizes under 12px are unreadable for many users",
	ViolationInconsistentScale: "Consolidate font sizing onto a single modular scale to keep the type system predictable",
	ViolationUnsupportedUnit:   "Avoid unbounded viewport units for font sizes; bound them with clamp()",
}

// AuditFluidTypography examines every distinct font-size rule on the
// stylesheet surface (sheet rules plus inline styles), resolves clamp()
// expressions at the 320px/1920px reference viewports, and flags fixed,
// undersized, or unbounded sizing.
func AuditFluidTypography(doc *Document) *FluidTypographyReport {
	report := &FluidTypographyReport{
		Violations:      []FluidTypographyViolation{},
		TypographyScale: []TypographyScale{},
		Recommendations: []string{},
	}
	if !doc.Valid() {
		report.Summary.Errors = 1
		report.Recommendations = append(report.Recommendations,
			"Typography audit unavailable: the document snapshot exposes no stylesheet surface")
		return report
	}

	rules := doc.fontSizeRules()
	report.TotalElements = len(rules)

	addViolation := func(v FluidTypographyViolation) {
		report.Violations = append(report.Violations, v)
	}

	violated := make(map[int]bool)
	for i, rule := range rules {
		expr, isClamp, err := ParseClamp(rule.value)
		switch {
		case err != nil:
			violated[i] = true
			addViolation(FluidTypographyViolation{
				Element:        rule.selector,
				Type:           ViolationUnsupportedUnit,
				Severity:       SeverityWarning,
				Message:        fmt.Sprintf("font-size %q could not be parsed: %v", rule.value, err),
				Recommendation: typographyTemplates[ViolationUnsupportedUnit],
				CurrentValue:   rule.value,
			})

		case isClamp:
			minPx, minErr := ResolveLengthAt(expr.Min, mobileViewportWidth, mobileViewportHeight)
			maxPx, maxErr := ResolveLengthAt(expr.Max, desktopViewportWidth, desktopViewportHeight)
			if minErr != nil || maxErr != nil || minPx <= 0 {
				violated[i] = true
				addViolation(FluidTypographyViolation{
					Element:        rule.selector,
					Type:           ViolationUnsupportedUnit,
					Severity:       SeverityWarning,
					Message:        fmt.Sprintf("clamp() bounds in %q use unsupported units", rule.value),
					Recommendation: typographyTemplates[ViolationUnsupportedUnit],
					CurrentValue:   rule.value,
				})
				continue
			}
			report.FluidElements++
			report.TypographyScale = append(report.TypographyScale, TypographyScale{
				Name:         rule.selector,
				MinSize:      roundTo(minPx, 2),
				MaxSize:      roundTo(maxPx, 2),
				ScaleFactor:  roundTo(maxPx/minPx, 2),
				IsAccessible: minPx >= accessibilityFloorPx,
			})
			if minPx < legibilityFloorPx {
				violated[i] = true
				addViolation(FluidTypographyViolation{
					Element:        rule.selector,
					Type:           ViolationTooSmall,
					Severity:       SeverityError,
					Message:        fmt.Sprintf("minimum font size %.2fpx is below the 12px legibility floor", minPx),
					Recommendation: typographyTemplates[ViolationTooSmall],
					CurrentValue:   rule.value,
					SuggestedValue: raiseClampMinimum(expr),
				})
			} else if minPx < accessibilityFloorPx {
				violated[i] = true
				addViolation(FluidTypographyViolation{
					Element:        rule.selector,
					Type:           ViolationTooSmall,
					Severity:       SeverityWarning,
					Message:        fmt.Sprintf("minimum font size %.2fpx is below the 16px accessibility floor", minPx),
					Recommendation: typographyTemplates[ViolationTooSmall],
					CurrentValue:   rule.value,
					SuggestedValue: raiseClampMinimum(expr),
				})
			}

		case isViewportRelative(rule.value):
			violated[i] = true
			addViolation(FluidTypographyViolation{
				Element:        rule.selector,
				Type:           ViolationUnsupportedUnit,
				Severity:       SeverityWarning,
				Message:        fmt.Sprintf("font-size %q grows unbounded with the viewport", rule.value),
				Recommendation: typographyTemplates[ViolationUnsupportedUnit],
				CurrentValue:   rule.value,
			})

		default:
			px, perr := LengthPx(rule.value, rootFontSizePx)
			if perr != nil {
				violated[i] = true
				addViolation(FluidTypographyViolation{
					Element:        rule.selector,
					Type:           ViolationUnsupportedUnit,
					Severity:       SeverityWarning,
					Message:        fmt.Sprintf("font-size %q uses an unsupported unit", rule.value),
					Recommendation: typographyTemplates[ViolationUnsupportedUnit],
					CurrentValue:   rule.value,
				})
				continue
			}
			violated[i] = true
			addViolation(FluidTypographyViolation{
				Element:        rule.selector,
				Type:           ViolationMissingFluid,
				Severity:       SeverityWarning,
				Message:        fmt.Sprintf("font-size %q is fixed and will not adapt to the viewport", rule.value),
				Recommendation: typographyTemplates[ViolationMissingFluid],
				CurrentValue:   rule.value,
				SuggestedValue: nearestScaleStep(px),
			})
		}
	}

	// More than a couple of unrelated scale ratios is a maintainability
	// signal rather than a hard accessibility failure.
	ratios := make(map[float64]bool)
	for _, s := range report.TypographyScale {
		ratios[s.ScaleFactor] = true
	}
	if len(ratios) > maxDistinctRatios {
		addViolation(FluidTypographyViolation{
			Element:        "stylesheet",
			Type:           ViolationInconsistentScale,
			Severity:       SeverityInfo,
			Message:        fmt.Sprintf("%d distinct scale ratios found across fluid font-size rules", len(ratios)),
			Recommendation: typographyTemplates[ViolationInconsistentScale],
		})
	}

	for _, v := range report.Violations {
		switch v.Severity {
		case SeverityError:
			report.Summary.Errors++
		case SeverityWarning:
			report.Summary.Warnings++
		}
	}
	report.Summary.Passed = report.TotalElements - len(violated)

	accessible := 0
	for _, s := range report.TypographyScale {
		if s.IsAccessible {
			accessible++
		}
	}
	if len(report.TypographyScale) > 0 {
		report.AccessibilityScore = int(math.Round(100 * float64(accessible) / float64(len(report.TypographyScale))))
	}
	if report.TotalElements > 0 {
		report.PerformanceScore = int(math.Round(100 * float64(report.FluidElements) / float64(report.TotalElements)))
	}

	seenKinds := make(map[string]bool)
	for _, v := range report.Violations {
		if seenKinds[v.Type] {
			continue
		}
		seenKinds[v.Type] = true
		report.Recommendations = append(report.Recommendations, v.Recommendation)
	}
	return report
}

// GenerateFluidScale builds a named modular scale of clamp() expressions,
// base * ratio^n per step, with the preferred leg interpolating between the
// 320px and 1920px reference viewports. Pure helper, no traversal.
func GenerateFluidScale(baseSize, ratio float64) map[string]string {
	if baseSize <= 0 {
		baseSize = defaultScaleBase
	}
	if ratio <= 0 {
		ratio = defaultScaleRatio
	}
	scale := make(map[string]string, len(scaleSteps))
	for i, name := range scaleSteps {
		size := baseSize * math.Pow(ratio, float64(i-2))
		scale[name] = fluidClamp(size)
	}
	return scale
}

// fluidClamp renders one scale step as a clamp() expression whose bounds sit
// 12.5% either side of the target size.
func fluidClamp(sizePx float64) string {
	minPx := sizePx * 0.875
	maxPx := sizePx * 1.125

	// Solve preferred = intercept + slope*viewport so the expression hits
	// minPx at the mobile width and maxPx at the desktop width.
	slope := (maxPx - minPx) / (desktopViewportWidth - mobileViewportWidth)
	interceptPx := minPx - slope*mobileViewportWidth

	return fmt.Sprintf("clamp(%srem, %srem + %svw, %srem)",
		fmtNum(minPx/rootFontSizePx),
		fmtNum(interceptPx/rootFontSizePx),
		fmtNum(slope*100),
		fmtNum(maxPx/rootFontSizePx))
}

// nearestScaleStep returns the clamp() expression of the default scale step
// closest to the given fixed pixel size.
func nearestScaleStep(px float64) string {
	scale := GenerateFluidScale(defaultScaleBase, defaultScaleRatio)
	bestName := "base"
	bestDelta := math.MaxFloat64
	for i, name := range scaleSteps {
		size := defaultScaleBase * math.Pow(defaultScaleRatio, float64(i-2))
		if delta := math.Abs(size - px); delta < bestDelta {
			bestDelta = delta
			bestName = name
		}
	}
	return scale[bestName]
}

// raiseClampMinimum rewrites a clamp() expression with its minimum lifted to
// the 16px accessibility floor.
func raiseClampMinimum(expr *ClampExpr) string {
	return fmt.Sprintf("clamp(1rem, %s, %s)", expr.Preferred, expr.Max)
}

// fmtNum formats a number with up to two decimals and no trailing zeros.
func fmtNum(v float64) string {
	return strconv.FormatFloat(roundTo(v, 2), 'f', -1, 64)
}
