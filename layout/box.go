// Package layout builds a box tree from a styled DOM (spec §4.5) and
// lays it out (§4.6-§4.10): block and inline formatting contexts, flex,
// grid, table, and positioned layout.
package layout

import (
	"strconv"
	"strings"

	"koala/cascade"
	"koala/dom"
)

// Rect is an axis-aligned rectangle in CSS pixels.
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Bottom() float64 { return r.Y + r.H }
func (r Rect) Right() float64  { return r.X + r.W }

// Edges is the four-sided {top, right, bottom, left} box-model edge
// (margin, border, or padding) CSS2.1's box model calls for.
type Edges struct {
	Top, Right, Bottom, Left float64
}

func (e Edges) Horizontal() float64 { return e.Left + e.Right }
func (e Edges) Vertical() float64   { return e.Top + e.Bottom }

// BoxKind discriminates the Box variant (spec §3 "Layout box").
type BoxKind uint8

const (
	BlockBox BoxKind = iota
	InlineBox
	AnonymousBlockBox
	TextBox
	ReplacedBox
)

// nonVisualTags are skipped entirely during box construction (spec §4.5).
var nonVisualTags = map[string]bool{
	"head": true, "meta": true, "title": true, "link": true,
	"script": true, "style": true, "base": true, "noscript": true,
}

// Box is one node of the layout tree: either a principal box for a
// styled element, an anonymous block wrapping a run of inline siblings,
// or a text/replaced leaf.
type Box struct {
	Kind    BoxKind
	Node    dom.NodeID // NoNode for anonymous boxes
	Style   *cascade.ComputedStyle
	Text    string // TextBox content
	Tag     string
	Colspan int    // HTML colspan attribute for td/th, default 1
	Src     string // HTML src attribute for img (ReplacedBox), the image registry key

	Children []*Box

	ContentRect Rect
	Margin      Edges
	Border      Edges
	Padding     Edges

	// Line boxes populated by inline layout for boxes establishing an
	// inline formatting context (spec §4.6's "Inline formatting context").
	Lines []*LineBox
}

// MarginBoxRect returns the box's outer (margin-box) rectangle.
func (b *Box) MarginBoxRect() Rect {
	return Rect{
		X: b.ContentRect.X - b.Padding.Left - b.Border.Left - b.Margin.Left,
		Y: b.ContentRect.Y - b.Padding.Top - b.Border.Top - b.Margin.Top,
		W: b.Margin.Horizontal() + b.Border.Horizontal() + b.Padding.Horizontal() + b.ContentRect.W,
		H: b.Margin.Vertical() + b.Border.Vertical() + b.Padding.Vertical() + b.ContentRect.H,
	}
}

// BorderBoxRect returns the box's border-box rectangle.
func (b *Box) BorderBoxRect() Rect {
	return Rect{
		X: b.ContentRect.X - b.Padding.Left - b.Border.Left,
		Y: b.ContentRect.Y - b.Padding.Top - b.Border.Top,
		W: b.Border.Horizontal() + b.Padding.Horizontal() + b.ContentRect.W,
		H: b.Border.Vertical() + b.Padding.Vertical() + b.ContentRect.H,
	}
}

// IsInlineLevel reports whether b participates in an inline formatting
// context as an inline-level box (spec §4.5/§4.6).
func (b *Box) IsInlineLevel() bool {
	if b.Kind == TextBox {
		return true
	}
	if b.Style == nil {
		return false
	}
	return b.Style.OuterDisplay == "inline"
}

// Builder constructs a box tree from a styled DOM.
type Builder struct {
	Tree   *dom.Tree
	Styles map[dom.NodeID]*cascade.ComputedStyle
}

// Build returns the principal box for root, or nil if root (or its
// whole subtree) generates no box.
func (b *Builder) Build(root dom.NodeID) *Box {
	return b.buildNode(root, nil)
}

// buildNode builds the box (if any) for n. parentStyle is the nearest
// enclosing element's computed style, used to give a TextBox its font
// properties (text nodes have no computed style of their own).
func (b *Builder) buildNode(n dom.NodeID, parentStyle *cascade.ComputedStyle) *Box {
	node := b.Tree.Node(n)
	switch node.Type {
	case dom.TextNode:
		if isWhitespaceOnly(node.Data) {
			return nil
		}
		return &Box{Kind: TextBox, Node: n, Text: node.Data, Style: parentStyle}
	case dom.ElementNode:
		return b.buildElement(n, node)
	default:
		return nil
	}
}

func (b *Builder) buildElement(n dom.NodeID, node *dom.Node) *Box {
	if nonVisualTags[strings.ToLower(node.Tag)] {
		return nil
	}
	style := b.Styles[n]
	if style != nil && style.DisplayNone {
		return nil
	}
	kind := BlockBox
	if style != nil && style.OuterDisplay == "inline" {
		kind = InlineBox
	}
	tag := strings.ToLower(node.Tag)
	if tag == "img" {
		kind = ReplacedBox
	}

	var rawChildren []*Box
	for _, c := range b.Tree.Children(n) {
		if cb := b.buildNode(c, style); cb != nil {
			rawChildren = append(rawChildren, cb)
		}
	}

	colspan := 1
	if tag == "td" || tag == "th" {
		if v, ok := b.Tree.GetAttr(n, "colspan"); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
				colspan = n
			}
		}
	}

	var src string
	if tag == "img" {
		src, _ = b.Tree.GetAttr(n, "src")
	}

	box := &Box{Kind: kind, Node: n, Style: style, Tag: tag, Colspan: colspan, Src: src}
	box.Children = wrapAnonymousBlocks(rawChildren)
	return box
}

// wrapAnonymousBlocks implements spec §4.5's "wrap runs of inline
// siblings in anonymous block boxes" rule: if children is a mix of
// block-level and inline-level boxes, every maximal run of inline-level
// children is wrapped in one AnonymousBlockBox; if children are uniformly
// inline or uniformly block, they pass through unchanged.
func wrapAnonymousBlocks(children []*Box) []*Box {
	if len(children) == 0 {
		return children
	}
	hasBlock, hasInline := false, false
	for _, c := range children {
		if c.IsInlineLevel() {
			hasInline = true
		} else {
			hasBlock = true
		}
	}
	if !hasBlock || !hasInline {
		return children
	}
	var out []*Box
	var run []*Box
	flush := func() {
		if len(run) == 0 {
			return
		}
		out = append(out, &Box{Kind: AnonymousBlockBox, Node: dom.NoNode, Children: run})
		run = nil
	}
	for _, c := range children {
		if c.IsInlineLevel() {
			run = append(run, c)
		} else {
			flush()
			out = append(out, c)
		}
	}
	flush()
	return out
}

func isWhitespaceOnly(s string) bool {
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
		default:
			return false
		}
	}
	return true
}
