// Package cascade implements CSS cascade resolution and computed-style
// production (spec §4.4): collecting matching declarations across the
// user-agent, author, and inline origins; ordering by the cascade tuple;
// shorthand expansion; two-pass var() resolution; inheritance; and eager
// em-to-px resolution.
package cascade

import (
	"strings"

	"koala/cssparse"
	"koala/csstok"
	"koala/cssvalue"
	"koala/dom"
	"koala/selector"
)

// Origin is the cascade-tuple "origin importance" enum (spec §4.4 step 2).
// Higher values win ties.
type Origin uint8

const (
	OriginUA Origin = iota
	OriginAuthor
	OriginAuthorImportant
)

// inheritedProperties is the spec's inherited-property set (color,
// font-*, line-height, visibility, direction, text-*); custom properties
// (--*) are always inherited and handled separately.
var inheritedProperties = map[string]bool{
	"color": true, "visibility": true, "direction": true, "line-height": true,
	"font-family": true, "font-size": true, "font-weight": true, "font-style": true,
	"text-align": true, "text-indent": true, "text-transform": true, "text-decoration": true,
	"white-space": true, "letter-spacing": true, "word-spacing": true,
}

// declMatch is one matching declaration plus the cascade-ordering key it
// was collected with.
type declMatch struct {
	origin      Origin
	specificity selector.Specificity
	order       int
	decl        cssparse.Declaration
}

// Sheet bundles a parsed stylesheet with the origin its rules cascade at.
type Sheet struct {
	Stylesheet *cssparse.Stylesheet
	Origin     Origin
}

// ComputedStyle is the per-element output of the cascade: resolved
// longhand property values as raw token runs (layout further interprets
// these through cssvalue), plus the dedicated display/custom-property
// fields spec §4.4 calls out.
type ComputedStyle struct {
	Properties map[string]cssparse.Declaration
	Custom     map[string][]csstok.Token

	DisplayNone bool
	OuterDisplay string // "block" | "inline" | "run-in"
	InnerDisplay string // "flow" | "flex" | "grid" | "table"

	FontSizePx float64
}

// Resolver computes styles for every element in a tree given the
// cascading sheets, in author/UA document order (sheets earlier in the
// slice have lower source-order precedence within their origin).
type Resolver struct {
	Tree  *dom.Tree
	rules []compiledRule
}

type compiledRule struct {
	sel         selector.Complex
	origin      Origin
	order       int
	declarations []cssparse.Declaration
}

// NewResolver compiles every rule in sheets (in order) into matchable
// selectors.
func NewResolver(tree *dom.Tree, sheets []Sheet) *Resolver {
	r := &Resolver{Tree: tree}
	order := 0
	for _, sh := range sheets {
		for _, rule := range sh.Stylesheet.Rules {
			for _, sel := range selector.ParseList(rule.SelectorText) {
				r.rules = append(r.rules, compiledRule{sel: sel, origin: sh.Origin, order: order, declarations: rule.Declarations})
				order++
			}
		}
	}
	return r
}

// ResolveAll computes styles for every element under root, returning a
// map keyed by NodeID. Parent styles are computed before children so
// inheritance (step 6) can copy from them.
func (r *Resolver) ResolveAll(root dom.NodeID) map[dom.NodeID]*ComputedStyle {
	out := make(map[dom.NodeID]*ComputedStyle)
	var walk func(n dom.NodeID, parent *ComputedStyle, parentCustom map[string][]csstok.Token)
	walk = func(n dom.NodeID, parent *ComputedStyle, parentCustom map[string][]csstok.Token) {
		node := r.Tree.Node(n)
		if node.Type != dom.ElementNode {
			for _, c := range r.Tree.Children(n) {
				walk(c, parent, parentCustom)
			}
			return
		}
		matches := r.collectMatches(n)
		inline := parseInlineStyle(r.Tree, n)
		for _, d := range inline {
			matches = append(matches, declMatch{origin: OriginAuthor, specificity: selector.Specificity{A: 1000}, order: 1 << 30, decl: d})
		}
		cs, custom := r.buildComputedStyle(n, matches, parent, parentCustom)
		out[n] = cs
		for _, c := range r.Tree.Children(n) {
			walk(c, cs, custom)
		}
	}
	walk(root, nil, nil)
	return out
}

func (r *Resolver) collectMatches(n dom.NodeID) []declMatch {
	var out []declMatch
	for _, rule := range r.rules {
		if !rule.sel.Matches(r.Tree, n) {
			continue
		}
		sp := rule.sel.Specificity()
		for _, d := range rule.declarations {
			origin := rule.origin
			if d.Important && origin == OriginAuthor {
				origin = OriginAuthorImportant
			}
			out = append(out, declMatch{origin: origin, specificity: sp, order: rule.order, decl: d})
		}
	}
	return out
}

// buildComputedStyle runs cascade steps 2-7 for one element given its
// collected matches and its parent's already-computed style.
func (r *Resolver) buildComputedStyle(n dom.NodeID, matches []declMatch, parent *ComputedStyle, parentCustom map[string][]csstok.Token) (*ComputedStyle, map[string][]csstok.Token) {
	winners := pickWinners(matches)
	expanded := expandShorthands(winners)

	custom := make(map[string][]csstok.Token, len(parentCustom))
	for k, v := range parentCustom {
		custom[k] = v
	}
	for name, decl := range expanded {
		if strings.HasPrefix(name, "--") {
			custom[name] = decl.Value
		}
	}

	resolved := make(map[string]cssparse.Declaration, len(expanded))
	for name, decl := range expanded {
		resolved[name] = cssparse.Declaration{Property: name, Value: resolveVars(decl.Value, custom), Important: decl.Important}
	}

	cs := &ComputedStyle{Properties: resolved, Custom: custom}

	fontSizePx := 16.0
	if parent != nil {
		fontSizePx = parent.FontSizePx
	}
	if d, ok := resolved["font-size"]; ok {
		if l, ok := cssvalue.ParseLength(firstToken(d.Value)); ok {
			base := fontSizePx
			if parent != nil {
				base = parent.FontSizePx
			}
			fontSizePx = l.ResolvePx(cssvalue.ResolutionContext{FontSizePx: base, RootFontSizePx: 16})
		}
	}
	cs.FontSizePx = fontSizePx

	for name := range inheritedProperties {
		if _, ok := resolved[name]; ok {
			continue
		}
		if parent != nil {
			if pd, ok := parent.Properties[name]; ok {
				resolved[name] = pd
			}
		}
	}

	resolveDisplay(cs, n, r.Tree)
	return cs, custom
}

func firstToken(toks []csstok.Token) csstok.Token {
	for _, t := range toks {
		if t.Kind != csstok.Whitespace {
			return t
		}
	}
	return csstok.Token{Kind: csstok.EOF}
}

// pickWinners implements steps 2-3: order by cascade tuple, keep the
// last (highest-precedence) declaration per property.
func pickWinners(matches []declMatch) map[string]cssparse.Declaration {
	sorted := make([]declMatch, len(matches))
	copy(sorted, matches)
	// Stable insertion sort by (origin, specificity, order) ascending —
	// matches lists are small (per-element rule counts), so O(n^2) is fine.
	for i := 1; i < len(sorted); i++ {
		j := i
		for j > 0 && less(sorted[j], sorted[j-1]) {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
			j--
		}
	}
	out := make(map[string]cssparse.Declaration)
	for _, m := range sorted {
		out[strings.ToLower(m.decl.Property)] = m.decl
	}
	return out
}

func less(a, b declMatch) bool {
	if a.origin != b.origin {
		return a.origin < b.origin
	}
	if a.specificity != b.specificity {
		return a.specificity.Less(b.specificity)
	}
	return a.order < b.order
}

func parseInlineStyle(tree *dom.Tree, n dom.NodeID) []cssparse.Declaration {
	v, ok := tree.GetAttr(n, "style")
	if !ok || strings.TrimSpace(v) == "" {
		return nil
	}
	sheet := cssparse.Parse("x{" + v + "}")
	if len(sheet.Rules) == 0 {
		return nil
	}
	return sheet.Rules[0].Declarations
}
