package audit

import (
	"fmt"
	"strings"
)

// wcagCriteria maps each heading violation kind to the WCAG success
// criterion it falls under.
var wcagCriteria = map[string]string{
	ViolationMultipleH1:         "2.4.6 Headings and Labels",
	ViolationSkippedLevel:       "1.3.1 Info and Relationships",
	ViolationEmptyHeading:       "2.4.6 Headings and Labels",
	ViolationNoH1:               "2.4.6 Headings and Labels",
	ViolationNonSequentialStart: "1.3.1 Info and Relationships",
}

// headingTemplates are the fixed recommendation templates keyed by violation
// kind. Report-level recommendations are deduplicated by this key.
var headingTemplates = map[string]string{
	ViolationMultipleH1:         "Use a single h1 per page; demote additional h1 headings (first extra at %s) to h2",
	ViolationSkippedLevel:       "Do not skip heading levels; adjust %s to be exactly one level below its predecessor",
	ViolationEmptyHeading:       "Give every heading meaningful text or remove it (%s is empty)",
	ViolationNoH1:               "Add an h1 heading so assistive technology can identify the page topic",
	ViolationNonSequentialStart: "Start the document outline with an h1; the first heading %s is deeper",
}

// renderTemplate fills the offending selector into a recommendation
// template; templates without a placeholder pass through unchanged.
func renderTemplate(template, selector string) string {
	if strings.Contains(template, "%s") {
		return fmt.Sprintf(template, selector)
	}
	return template
}

// minBodyWords is the threshold above which a page without headings still
// counts as non-trivial, so a missing h1 is worth flagging.
const minBodyWords = 100

// AuditHeadingHierarchy collects h1-h6 elements in document order and
// validates the outline structure they form.
func AuditHeadingHierarchy(doc *Document) *HeadingAuditResult {
	result := &HeadingAuditResult{
		Violations:      []HeadingViolation{},
		Recommendations: []string{},
	}
	if !doc.Valid() || doc.Body() == nil {
		result.Summary.ErrorCount = 1
		result.Recommendations = append(result.Recommendations,
			"Heading audit unavailable: the document snapshot exposes no element tree")
		return result
	}

	var headings []headingNode
	bodyWords := 0
	doc.Walk(func(el *Element) {
		tag := el.Tag()
		if tag == "body" {
			bodyWords = len(strings.Fields(el.Text()))
		}
		if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
			parent := ""
			if p := el.Parent(); p != nil {
				parent = p.Selector()
			}
			headings = append(headings, headingNode{
				level:          int(tag[1] - '0'),
				text:           el.Text(),
				order:          len(headings),
				selector:       el.Selector(),
				parentSelector: parent,
			})
		}
	})

	counts := [7]int{}
	for _, h := range headings {
		counts[h.level]++
	}
	result.Summary = HeadingSummary{
		TotalHeadings: len(headings),
		H1Count:       counts[1],
		H2Count:       counts[2],
		H3Count:       counts[3],
		H4Count:       counts[4],
		H5Count:       counts[5],
		H6Count:       counts[6],
	}

	addViolation := func(kind string, severity Severity, h headingNode) {
		element := "body"
		if h.level > 0 {
			element = fmt.Sprintf("h%d", h.level)
		}
		v := HeadingViolation{
			ID:        fmt.Sprintf("%s-%03d", kind, len(result.Violations)+1),
			Severity:  severity,
			Element:   element,
			Level:     h.level,
			Violation: kind,
			Text:      h.text,
			Location: HeadingLocation{
				Selector: h.selector,
				Parent:   h.parentSelector,
			},
			Recommendation: renderTemplate(headingTemplates[kind], h.selector),
			WcagCriterion:  wcagCriteria[kind],
		}
		result.Violations = append(result.Violations, v)
	}

	// multiple-h1: every h1 past the first.
	seenH1 := false
	for _, h := range headings {
		if h.level != 1 {
			continue
		}
		if seenH1 {
			addViolation(ViolationMultipleH1, SeverityWarning, h)
		}
		seenH1 = true
	}

	// skipped-level: a heading more than one level deeper than its
	// predecessor (e.g. h2 followed by h4).
	for i := 1; i < len(headings); i++ {
		if headings[i].level > headings[i-1].level+1 {
			addViolation(ViolationSkippedLevel, SeverityError, headings[i])
		}
	}

	// empty-heading: no meaningful text content.
	for _, h := range headings {
		if strings.TrimSpace(h.text) == "" {
			addViolation(ViolationEmptyHeading, SeverityError, h)
		}
	}

	// no-h1: a non-trivial page with no level-1 heading at all.
	if counts[1] == 0 && (len(headings) > 0 || bodyWords >= minBodyWords) {
		addViolation(ViolationNoH1, SeverityWarning, headingNode{selector: "body"})
	}

	// non-sequential-start: the outline opens deeper than h1.
	if len(headings) > 0 && headings[0].level != 1 {
		addViolation(ViolationNonSequentialStart, SeverityInfo, headings[0])
	}

	deductions := 0
	for _, v := range result.Violations {
		deductions += SeverityWeights[v.Severity]
		switch v.Severity {
		case SeverityError:
			result.Summary.ErrorCount++
		case SeverityWarning:
			result.Summary.WarningCount++
		}
	}
	score := 100 - deductions
	if score < 0 {
		score = 0
	}
	result.Summary.Score = score
	result.IsValid = result.Summary.ErrorCount == 0

	// One recommendation per violation kind, keyed by template.
	seenKinds := make(map[string]bool)
	for _, v := range result.Violations {
		if seenKinds[v.Violation] {
			continue
		}
		seenKinds[v.Violation] = true
		result.Recommendations = append(result.Recommendations, v.Recommendation)
	}
	return result
}
