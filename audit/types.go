package audit

// WcagLevel is the compliance tier assigned to a contrast measurement.
// "A" is an informal sub-AA tier used for diagnostic granularity: real WCAG
// only defines AA/AAA, but flagging "below standard yet not illegible"
// separately from outright failures makes reports far more actionable.
type WcagLevel string

const (
	LevelAAA  WcagLevel = "AAA"
	LevelAA   WcagLevel = "AA"
	LevelA    WcagLevel = "A"
	LevelFail WcagLevel = "Fail"
)

// Severity classifies how serious a violation is.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// SeverityWeights maps a severity to its score deduction. All analyzers and
// report renderers share this single table instead of keeping local copies.
var SeverityWeights = map[Severity]int{
	SeverityError:   10,
	SeverityWarning: 5,
	SeverityInfo:    2,
}

// ColorPair is one distinct foreground/background combination found on the
// page. Pairs are deduplicated by (foreground, background, isTextLarge) so
// repeated styling doesn't explode the report.
type ColorPair struct {
	Foreground  string `json:"foreground"`
	Background  string `json:"background"`
	Element     string `json:"element"`
	Context     string `json:"context"`
	Location    string `json:"location"`
	IsTextLarge bool   `json:"isTextLarge"`
}

// ContrastResult is the measured and classified contrast for one pair.
type ContrastResult struct {
	Combination    ColorPair `json:"combination"`
	ContrastRatio  float64   `json:"contrastRatio"`
	WcagLevel      WcagLevel `json:"wcagLevel"`
	Recommendation string    `json:"recommendation,omitempty"`
}

// ContrastSummary breaks down results per compliance tier.
type ContrastSummary struct {
	AAACompliant int `json:"aaaCompliant"`
	AACompliant  int `json:"aaCompliant"`
	ACompliant   int `json:"aCompliant"`
	Failing      int `json:"failing"`
}

// ContrastAuditReport is the complete output of a contrast audit.
type ContrastAuditReport struct {
	Results           []ContrastResult `json:"results"`
	TotalCombinations int              `json:"totalCombinations"`
	PassCount         int              `json:"passCount"`
	FailCount         int              `json:"failCount"`
	OverallScore      int              `json:"overallScore"`
	Summary           ContrastSummary  `json:"summary"`
	Recommendations   []string         `json:"recommendations"`
}

// headingNode is one heading collected during traversal. It is transient
// working state, not part of the public report.
type headingNode struct {
	level          int
	text           string
	order          int
	selector       string
	parentSelector string
}

// HeadingLocation points at the offending heading in the document.
type HeadingLocation struct {
	Selector string `json:"selector"`
	Parent   string `json:"parent,omitempty"`
}

// HeadingViolation is one structural problem in the heading outline.
type HeadingViolation struct {
	ID             string          `json:"id"`
	Severity       Severity        `json:"severity"`
	Element        string          `json:"element"`
	Level          int             `json:"level"`
	Violation      string          `json:"violation"`
	Text           string          `json:"text,omitempty"`
	Location       HeadingLocation `json:"location"`
	Recommendation string          `json:"recommendation"`
	WcagCriterion  string          `json:"wcagCriterion"`
}

// Heading violation kinds.
const (
	ViolationMultipleH1         = "multiple-h1"
	ViolationSkippedLevel       = "skipped-level"
	ViolationEmptyHeading       = "empty-heading"
	ViolationNoH1               = "no-h1"
	ViolationNonSequentialStart = "non-sequential-start"
)

// HeadingSummary aggregates counts for the heading audit.
type HeadingSummary struct {
	TotalHeadings int `json:"totalHeadings"`
	H1Count       int `json:"h1Count"`
	H2Count       int `json:"h2Count"`
	H3Count       int `json:"h3Count"`
	H4Count       int `json:"h4Count"`
	H5Count       int `json:"h5Count"`
	H6Count       int `json:"h6Count"`
	ErrorCount    int `json:"errorCount"`
	WarningCount  int `json:"warningCount"`
	Score         int `json:"score"`
}

// HeadingAuditResult is the complete output of a heading hierarchy audit.
// IsValid holds exactly when no error-severity violations were found;
// warnings and infos do not flip validity.
type HeadingAuditResult struct {
	IsValid         bool               `json:"isValid"`
	Violations      []HeadingViolation `json:"violations"`
	Summary         HeadingSummary     `json:"summary"`
	Recommendations []string           `json:"recommendations"`
}

// TypographyScale describes one fluid font-size rule discovered on the page.
// ScaleFactor is MaxSize/MinSize; IsAccessible holds when MinSize stays at or
// above the 16px accessibility floor.
type TypographyScale struct {
	Name         string  `json:"name"`
	MinSize      float64 `json:"minSize"`
	MaxSize      float64 `json:"maxSize"`
	ScaleFactor  float64 `json:"scaleFactor"`
	IsAccessible bool    `json:"isAccessible"`
}

// Typography violation kinds.
const (
	ViolationMissingFluid      = "missing-fluid"
	ViolationTooSmall          = "too-small"
	ViolationInconsistentScale = "inconsistent-scale"
	ViolationUnsupportedUnit   = "unsupported-unit"
)

// FluidTypographyViolation is one problem with a font-size rule.
type FluidTypographyViolation struct {
	Element        string   `json:"element"`
	Type           string   `json:"type"`
	Severity       Severity `json:"severity"`
	Message        string   `json:"message"`
	Recommendation string   `json:"recommendation"`
	CurrentValue   string   `json:"currentValue,omitempty"`
	SuggestedValue string   `json:"suggestedValue,omitempty"`
}

// TypographySummary aggregates rule outcomes.
type TypographySummary struct {
	Passed   int `json:"passed"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
}

// FluidTypographyReport is the complete output of a fluid typography audit.
type FluidTypographyReport struct {
	TotalElements      int                        `json:"totalElements"`
	FluidElements      int                        `json:"fluidElements"`
	AccessibilityScore int                        `json:"accessibilityScore"`
	PerformanceScore   int                        `json:"performanceScore"`
	Violations         []FluidTypographyViolation `json:"violations"`
	TypographyScale    []TypographyScale          `json:"typographyScale"`
	Summary            TypographySummary          `json:"summary"`
	Recommendations    []string                   `json:"recommendations"`
}

// AccessibilityAudit bundles the three per-analyzer reports for one page.
type AccessibilityAudit struct {
	AuditID         string                 `json:"auditId"`
	URL             string                 `json:"url"`
	Contrast        *ContrastAuditReport   `json:"contrast"`
	Headings        *HeadingAuditResult    `json:"headings"`
	Typography      *FluidTypographyReport `json:"typography"`
	Score           float64                `json:"score"`
	Recommendations []string               `json:"recommendations"`
}
