package audit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Document is an immutable snapshot of a rendered page: the element tree plus
// the stylesheet rules collected from its <style> blocks. Analyzers only read
// from it; nothing in the engine writes back.
type Document struct {
	gq    *goquery.Document
	rules []styleRule
}

// styleRule is one selector/declaration block from a parsed stylesheet.
type styleRule struct {
	selector     string
	declarations map[string]string
	specificity  int
	order        int
}

// NewDocument wraps an already-parsed goquery document. A nil document yields
// a degraded snapshot: analyzers detect it and return "audit unavailable"
// reports instead of failing.
func NewDocument(gq *goquery.Document) *Document {
	d := &Document{gq: gq}
	if gq == nil {
		return d
	}
	order := 0
	gq.Find("style").Each(func(_ int, s *goquery.Selection) {
		sheet, err := parser.Parse(s.Text())
		if err != nil {
			// Malformed stylesheet blocks are skipped, not fatal.
			return
		}
		order = d.collectRules(sheet.Rules, order)
	})
	return d
}

// NewDocumentFromHTML parses raw markup into a snapshot.
func NewDocumentFromHTML(markup string) (*Document, error) {
	gq, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	return NewDocument(gq), nil
}

// collectRules flattens qualified rules, descending into grouping at-rules
// like @media so their font-size declarations are still visible.
func (d *Document) collectRules(rules []*css.Rule, order int) int {
	for _, rule := range rules {
		if rule.Kind == css.AtRule {
			order = d.collectRules(rule.Rules, order)
			continue
		}
		decls := make(map[string]string, len(rule.Declarations))
		for _, decl := range rule.Declarations {
			decls[strings.ToLower(decl.Property)] = strings.TrimSpace(decl.Value)
		}
		for _, sel := range rule.Selectors {
			sel = strings.TrimSpace(sel)
			if sel == "" {
				continue
			}
			d.rules = append(d.rules, styleRule{
				selector:     sel,
				declarations: decls,
				specificity:  selectorSpecificity(sel),
				order:        order,
			})
			order++
		}
	}
	return order
}

// selectorSpecificity approximates CSS specificity: ids weigh 100, classes
// and attributes 10, type selectors 1.
func selectorSpecificity(sel string) int {
	spec := 0
	spec += 100 * strings.Count(sel, "#")
	spec += 10 * (strings.Count(sel, ".") + strings.Count(sel, "["))
	for _, part := range strings.FieldsFunc(sel, func(r rune) bool {
		return r == ' ' || r == '>' || r == '+' || r == '~'
	}) {
		part = strings.TrimSpace(part)
		if part == "" || part == "*" {
			continue
		}
		if c := part[0]; c != '.' && c != '#' && c != '[' && c != ':' {
			spec++
		}
	}
	return spec
}

// Valid reports whether the snapshot has a usable document behind it.
func (d *Document) Valid() bool {
	return d != nil && d.gq != nil
}

// Body returns the document body element, or nil on a degraded snapshot.
func (d *Document) Body() *Element {
	if !d.Valid() {
		return nil
	}
	body := d.gq.Find("body").First()
	if body.Length() == 0 {
		return nil
	}
	return &Element{doc: d, sel: body}
}

// Walk visits the body and every descendant element in document order.
func (d *Document) Walk(fn func(*Element)) {
	body := d.Body()
	if body == nil {
		return
	}
	fn(body)
	body.sel.Find("*").Each(func(_ int, s *goquery.Selection) {
		fn(&Element{doc: d, sel: s})
	})
}

// fontSizeRule is one distinct font-size-bearing style rule on the page.
type fontSizeRule struct {
	selector string
	value    string
}

// fontSizeRules returns every distinct (selector, font-size value) pair from
// the stylesheet plus inline style attributes, in discovery order.
func (d *Document) fontSizeRules() []fontSizeRule {
	if !d.Valid() {
		return nil
	}
	var out []fontSizeRule
	seen := make(map[string]bool)
	add := func(selector, value string) {
		key := selector + "{" + value + "}"
		if value == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, fontSizeRule{selector: selector, value: value})
	}
	for _, rule := range d.rules {
		if v, ok := rule.declarations["font-size"]; ok {
			add(rule.selector, v)
		}
	}
	d.Walk(func(el *Element) {
		decls, err := el.inlineStyles()
		if err != nil {
			return
		}
		if v, ok := decls["font-size"]; ok {
			add(el.Selector(), v)
		}
	})
	return out
}

// Element is one node of the snapshot, carrying its computed-style context.
type Element struct {
	doc    *Document
	sel    *goquery.Selection
	styles map[string]string // lazily merged cascade, nil until first lookup
}

// Tag returns the lowercase element name.
func (e *Element) Tag() string {
	return goquery.NodeName(e.sel)
}

// Text returns the full rendered text of the element and its descendants.
func (e *Element) Text() string {
	return strings.TrimSpace(e.sel.Text())
}

// OwnText returns only the text held directly by this element, excluding
// child elements.
func (e *Element) OwnText() string {
	clone := e.sel.Clone()
	clone.Children().Remove()
	return strings.TrimSpace(clone.Text())
}

// Parent returns the parent element, or nil above body.
func (e *Element) Parent() *Element {
	if e.Tag() == "body" {
		return nil
	}
	p := e.sel.Parent()
	if p.Length() == 0 {
		return nil
	}
	name := goquery.NodeName(p)
	if name == "html" || name == "#document" {
		return nil
	}
	return &Element{doc: e.doc, sel: p}
}

// Selector builds a readable CSS path for the element, e.g.
// "body > main > p.intro:nth-of-type(2)".
func (e *Element) Selector() string {
	var segments []string
	for el := e; el != nil; el = el.Parent() {
		segments = append([]string{el.segment()}, segments...)
	}
	return strings.Join(segments, " > ")
}

// segment describes this element alone: tag plus id or first class, with an
// nth-of-type disambiguator when same-tag siblings exist.
func (e *Element) segment() string {
	tag := e.Tag()
	if id, ok := e.sel.Attr("id"); ok && id != "" {
		return tag + "#" + id
	}
	seg := tag
	if class, ok := e.sel.Attr("class"); ok {
		if fields := strings.Fields(class); len(fields) > 0 {
			seg += "." + fields[0]
		}
	}
	if e.Tag() != "body" {
		prev := e.sel.PrevAll().Filter(tag).Length()
		next := e.sel.NextAll().Filter(tag).Length()
		if prev+next > 0 {
			seg += fmt.Sprintf(":nth-of-type(%d)", prev+1)
		}
	}
	return seg
}

// safeIs matches the element against a selector, treating selectors the
// matcher cannot compile as non-matches rather than letting them panic
// through the audit.
func safeIs(s *goquery.Selection, selector string) (matched bool) {
	defer func() {
		if recover() != nil {
			matched = false
		}
	}()
	return s.Is(selector)
}

// inlineStyles parses the element's style attribute. A malformed attribute is
// a per-node resolution failure: the caller skips the node.
func (e *Element) inlineStyles() (map[string]string, error) {
	attr, ok := e.sel.Attr("style")
	if !ok || strings.TrimSpace(attr) == "" {
		return nil, nil
	}
	decls, err := parser.ParseDeclarations(attr)
	if err != nil {
		return nil, fmt.Errorf("unparseable style attribute on %s: %w", e.Tag(), err)
	}
	out := make(map[string]string, len(decls))
	for _, d := range decls {
		out[strings.ToLower(d.Property)] = strings.TrimSpace(d.Value)
	}
	return out, nil
}

// Style resolves a declared property for this element from the cascade:
// stylesheet rules by (specificity, order), then inline styles on top.
// It does not apply inheritance; see the computed helpers below.
func (e *Element) Style(property string) (string, error) {
	if e.styles == nil {
		matched := make([]styleRule, 0, 4)
		for _, rule := range e.doc.rules {
			if safeIs(e.sel, rule.selector) {
				matched = append(matched, rule)
			}
		}
		sort.SliceStable(matched, func(i, j int) bool {
			if matched[i].specificity != matched[j].specificity {
				return matched[i].specificity < matched[j].specificity
			}
			return matched[i].order < matched[j].order
		})
		merged := make(map[string]string)
		for _, rule := range matched {
			for k, v := range rule.declarations {
				merged[k] = v
			}
		}
		inline, err := e.inlineStyles()
		if err != nil {
			return "", err
		}
		for k, v := range inline {
			merged[k] = v
		}
		e.styles = merged
	}
	return e.styles[property], nil
}

// Default font sizes per tag, matching common user-agent stylesheets.
var defaultFontSizes = map[string]float64{
	"h1":    32,
	"h2":    24,
	"h3":    18.72,
	"h4":    16,
	"h5":    13.28,
	"h6":    10.72,
	"small": 13.33,
}

// FontSizePx computes the element's effective font size in pixels, resolving
// relative units against the parent and falling back to tag defaults.
func (e *Element) FontSizePx() (float64, error) {
	declared, err := e.Style("font-size")
	if err != nil {
		return 0, err
	}
	parentSize := rootFontSizePx
	if p := e.Parent(); p != nil {
		if ps, perr := p.FontSizePx(); perr == nil {
			parentSize = ps
		}
	}
	if declared == "" || declared == "inherit" {
		if def, ok := defaultFontSizes[e.Tag()]; ok {
			return def, nil
		}
		return parentSize, nil
	}
	px, err := LengthPx(declared, parentSize)
	if err != nil {
		// Viewport-relative and otherwise unresolvable sizes fall back to
		// the inherited size for contrast classification purposes.
		if def, ok := defaultFontSizes[e.Tag()]; ok {
			return def, nil
		}
		return parentSize, nil
	}
	return px, nil
}

// Tags that default to bold in user-agent stylesheets.
var defaultBoldTags = map[string]bool{
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"b": true, "strong": true, "th": true,
}

// FontWeight computes the element's effective font weight.
func (e *Element) FontWeight() int {
	inherited := 400
	if p := e.Parent(); p != nil {
		inherited = p.FontWeight()
	}
	if defaultBoldTags[e.Tag()] {
		inherited = 700
	}
	declared, err := e.Style("font-weight")
	if err != nil {
		return inherited
	}
	return ParseFontWeight(declared, inherited)
}

// TextColor computes the element's effective foreground color, walking up the
// tree for inherited values and defaulting to black.
func (e *Element) TextColor() (colorful.Color, error) {
	declared, err := e.Style("color")
	if err != nil {
		return colorful.Color{}, err
	}
	if declared != "" && declared != "inherit" {
		c, alpha, perr := ParseColor(declared)
		if perr == nil && alpha > 0 {
			return c, nil
		}
	}
	if p := e.Parent(); p != nil {
		return p.TextColor()
	}
	return colorful.Color{}, nil // black
}

// EffectiveBackground walks ancestors until a non-transparent background is
// found. Pages with no painted background anywhere resolve to white, the
// documented engine assumption.
func (e *Element) EffectiveBackground() (colorful.Color, error) {
	for el := e; el != nil; el = el.Parent() {
		declared, err := el.Style("background-color")
		if err != nil {
			return colorful.Color{}, err
		}
		if declared == "" || declared == "inherit" || declared == "transparent" {
			continue
		}
		c, alpha, perr := ParseColor(declared)
		if perr != nil {
			continue
		}
		if alpha > 0 {
			return c, nil
		}
	}
	return colorful.Color{R: 1, G: 1, B: 1}, nil
}

// IsVisible reports whether the element is rendered: display:none hides the
// subtree, visibility:hidden inherits down until overridden.
func (e *Element) IsVisible() bool {
	for el := e; el != nil; el = el.Parent() {
		display, err := el.Style("display")
		if err != nil {
			return false
		}
		if display == "none" {
			return false
		}
	}
	visibility := "visible"
	for el := e; el != nil; el = el.Parent() {
		v, err := el.Style("visibility")
		if err != nil {
			return false
		}
		if v != "" && v != "inherit" {
			visibility = v
			break
		}
	}
	return visibility != "hidden" && visibility != "collapse"
}
