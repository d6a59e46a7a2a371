package audit

import (
	"testing"
)

func violationsOfKind(result *HeadingAuditResult, kind string) []HeadingViolation {
	var out []HeadingViolation
	for _, v := range result.Violations {
		if v.Violation == kind {
			out = append(out, v)
		}
	}
	return out
}

func TestHeadingHierarchyValid(t *testing.T) {
	doc := mustDocument(t, `
		<html><body>
			<h1>Page title</h1>
			<h2>Section</h2>
			<h3>Subsection</h3>
		</body></html>`)
	result := AuditHeadingHierarchy(doc)

	if len(result.Violations) != 0 {
		t.Errorf("Expected zero violations, got %+v", result.Violations)
	}
	if !result.IsValid {
		t.Error("Expected valid hierarchy")
	}
	if result.Summary.Score != 100 {
		t.Errorf("Expected score 100, got %d", result.Summary.Score)
	}
	if result.Summary.TotalHeadings != 3 || result.Summary.H1Count != 1 {
		t.Errorf("Unexpected summary %+v", result.Summary)
	}
}

func TestHeadingHierarchySkippedLevel(t *testing.T) {
	doc := mustDocument(t, `
		<html><body>
			<h1>Title</h1>
			<h3>Skipped straight to three</h3>
		</body></html>`)
	result := AuditHeadingHierarchy(doc)

	skipped := violationsOfKind(result, ViolationSkippedLevel)
	if len(skipped) != 1 {
		t.Fatalf("Expected exactly one skipped-level violation, got %d", len(skipped))
	}
	v := skipped[0]
	if v.Severity != SeverityError {
		t.Errorf("skipped-level should be an error, got %s", v.Severity)
	}
	if v.Level != 3 || v.Element != "h3" {
		t.Errorf("Violation should point at the h3, got %+v", v)
	}
	if v.WcagCriterion != "1.3.1 Info and Relationships" {
		t.Errorf("Unexpected criterion %q", v.WcagCriterion)
	}
	if result.IsValid {
		t.Error("Errors must flip validity")
	}
	if result.Summary.Score != 90 {
		t.Errorf("Expected score 90 after one error, got %d", result.Summary.Score)
	}
}

func TestHeadingHierarchyMultipleH1(t *testing.T) {
	doc := mustDocument(t, `
		<html><body>
			<h1>First</h1>
			<h2>Section</h2>
			<h1>Second</h1>
		</body></html>`)
	result := AuditHeadingHierarchy(doc)

	multiple := violationsOfKind(result, ViolationMultipleH1)
	if len(multiple) != 1 {
		t.Fatalf("Expected exactly one multiple-h1 violation, got %d", len(multiple))
	}
	if multiple[0].Severity != SeverityWarning {
		t.Errorf("multiple-h1 should be a warning, got %s", multiple[0].Severity)
	}
	// Warnings don't flip validity.
	if !result.IsValid {
		t.Error("Expected isValid despite warning")
	}
	if result.Summary.Score != 95 {
		t.Errorf("Expected score 95 after one warning, got %d", result.Summary.Score)
	}
}

func TestHeadingHierarchyEmptyHeading(t *testing.T) {
	doc := mustDocument(t, `
		<html><body>
			<h1>Title</h1>
			<h2>   </h2>
		</body></html>`)
	result := AuditHeadingHierarchy(doc)

	empty := violationsOfKind(result, ViolationEmptyHeading)
	if len(empty) != 1 {
		t.Fatalf("Expected one empty-heading violation, got %+v", result.Violations)
	}
	if empty[0].Severity != SeverityError {
		t.Errorf("empty-heading should be an error, got %s", empty[0].Severity)
	}
	if result.IsValid {
		t.Error("Empty heading error should invalidate the outline")
	}
}

func TestHeadingHierarchyNoH1(t *testing.T) {
	doc := mustDocument(t, `
		<html><body>
			<h2>Orphan section</h2>
			<h3>Detail</h3>
		</body></html>`)
	result := AuditHeadingHierarchy(doc)

	if len(violationsOfKind(result, ViolationNoH1)) != 1 {
		t.Errorf("Expected no-h1 violation, got %+v", result.Violations)
	}
	// The outline also opens deeper than h1.
	start := violationsOfKind(result, ViolationNonSequentialStart)
	if len(start) != 1 {
		t.Fatalf("Expected non-sequential-start violation, got %+v", result.Violations)
	}
	if start[0].Severity != SeverityInfo {
		t.Errorf("non-sequential-start should be info, got %s", start[0].Severity)
	}
	// One warning (5) plus one info (2).
	if result.Summary.Score != 93 {
		t.Errorf("Expected score 93, got %d", result.Summary.Score)
	}
	if !result.IsValid {
		t.Error("Warnings and infos alone should keep the outline valid")
	}
}

func TestHeadingHierarchyTrivialPage(t *testing.T) {
	doc := mustDocument(t, `<html><body><p>just a note</p></body></html>`)
	result := AuditHeadingHierarchy(doc)

	if len(result.Violations) != 0 {
		t.Errorf("A trivial page without headings should produce no violations, got %+v",
			result.Violations)
	}
	if result.Summary.Score != 100 {
		t.Errorf("Expected score 100, got %d", result.Summary.Score)
	}
}

func TestHeadingHierarchyRecommendationsDeduplicated(t *testing.T) {
	doc := mustDocument(t, `
		<html><body>
			<h1>Title</h1>
			<h3>Skip one</h3>
			<h1>Extra one</h1>
			<h4>Skip again</h4>
		</body></html>`)
	result := AuditHeadingHierarchy(doc)

	// Two skipped-level violations, one multiple-h1; recommendations are
	// deduplicated by violation kind.
	if len(violationsOfKind(result, ViolationSkippedLevel)) != 2 {
		t.Errorf("Expected two skipped-level violations, got %+v", result.Violations)
	}
	kinds := make(map[string]int)
	for _, v := range result.Violations {
		kinds[v.Violation]++
	}
	if len(result.Recommendations) != len(kinds) {
		t.Errorf("Expected %d deduplicated recommendations, got %d: %v",
			len(kinds), len(result.Recommendations), result.Recommendations)
	}
}

func TestHeadingHierarchyViolationIDsStable(t *testing.T) {
	markup := `<html><body><h1>Title</h1><h3>Skipped</h3></body></html>`
	doc := mustDocument(t, markup)

	first := AuditHeadingHierarchy(doc)
	second := AuditHeadingHierarchy(doc)

	if first.Violations[0].ID != second.Violations[0].ID {
		t.Errorf("Violation IDs should be deterministic: %q vs %q",
			first.Violations[0].ID, second.Violations[0].ID)
	}
}

func TestHeadingHierarchyDegraded(t *testing.T) {
	result := AuditHeadingHierarchy(NewDocument(nil))
	if result.IsValid {
		t.Error("Degraded audit should not report valid")
	}
	if result.Summary.ErrorCount != 1 {
		t.Errorf("Degraded audit should carry one error placeholder, got %d", result.Summary.ErrorCount)
	}
	if len(result.Recommendations) != 1 {
		t.Errorf("Degraded audit should carry one diagnostic, got %v", result.Recommendations)
	}
}
