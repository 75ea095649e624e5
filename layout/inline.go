package layout

import (
	"strings"

	"koala/cssvalue"
)

// FragmentKind discriminates a line-box fragment (spec §4.6: "text |
// inline box | replaced").
type FragmentKind uint8

const (
	TextFragment FragmentKind = iota
	InlineBoxFragment
	ReplacedFragment
)

// Fragment is one piece of content placed on a LineBox.
type Fragment struct {
	Kind          FragmentKind
	Rect          Rect
	Text          string
	FontFamily    string
	FontSizePx    float64
	Color         cssvalue.Color
	VerticalAlign string
	Box           *Box // the source inline/replaced Box, nil for plain text runs
}

// LineBox is one line of an inline formatting context.
type LineBox struct {
	Rect      Rect
	Height    float64
	Baseline  float64
	Fragments []*Fragment
}

// inlineWord is one whitespace-delimited measuring unit, remembering
// whether it was originally followed by whitespace (so line breaking can
// drop trailing/leading whitespace per spec §4.6).
type inlineWord struct {
	text          string
	followedBySpace bool
	style         *Box // element box providing font metrics, may be the TextBox itself (Style set)
}

// layoutInlineFormattingContext implements spec §4.6's inline formatting
// context algorithm: a line box with a current x cursor, text measured
// via ctx.Metrics, whitespace-boundary line breaking with the
// current_x==0 overflow guard, and fragments laid out left to right.
func layoutInlineFormattingContext(box *Box, ctx *Context) {
	maxWidth := box.ContentRect.W
	words := collectInlineWords(box)

	var lines []*LineBox
	var cur *LineBox
	x := 0.0
	startNewLine := func() {
		cur = &LineBox{}
		lines = append(lines, cur)
		x = 0
	}
	startNewLine()

	for _, w := range words {
		if w.style.Kind != TextBox {
			frag := layoutAtomicInlineWord(w.style, ctx)
			wWidth := frag.Rect.W
			if x > 0 && x+wWidth > maxWidth {
				startNewLine()
			}
			frag.Rect.X = x
			cur.Fragments = append(cur.Fragments, frag)
			x += wWidth
			if w.followedBySpace {
				x += ctx.Metrics.TextWidth(" ", "sans-serif", 16)
			}
			continue
		}

		style := w.style.Style
		family := identProp(style, "font-family", "sans-serif")
		size := 16.0
		if style != nil {
			size = style.FontSizePx
		}
		wWidth := ctx.Metrics.TextWidth(w.text, family, size)

		if x > 0 && x+wWidth > maxWidth {
			startNewLine()
		}

		frag := &Fragment{
			Kind:       TextFragment,
			Text:       w.text,
			FontFamily: family,
			FontSizePx: size,
			Color:      colorProp(style, "color", cssvalue.Color{A: 255}),
			Rect:       Rect{X: x, W: wWidth},
		}
		cur.Fragments = append(cur.Fragments, frag)
		x += wWidth
		if w.followedBySpace {
			x += ctx.Metrics.TextWidth(" ", family, size)
		}
	}

	y := box.ContentRect.Y
	for _, ln := range lines {
		maxLH := 0.0
		for _, f := range ln.Fragments {
			lh := f.Rect.H
			if f.Kind == TextFragment {
				lh = ctx.Metrics.LineHeight(f.FontFamily, f.FontSizePx)
			}
			if lh > maxLH {
				maxLH = lh
			}
		}
		if maxLH == 0 {
			maxLH = ctx.Metrics.LineHeight("sans-serif", 16)
		}
		ln.Height = maxLH
		ln.Baseline = maxLH * 0.8
		ln.Rect = Rect{X: box.ContentRect.X, Y: y, W: maxWidth, H: maxLH}
		for _, f := range ln.Fragments {
			f.Rect.X += box.ContentRect.X
			if f.Kind == TextFragment {
				f.Rect.Y = y
				f.Rect.H = maxLH
				continue
			}
			// Atomic inline content (replaced elements, inline boxes) is
			// aligned along its bottom edge with the line's bottom, a
			// simplified stand-in for CSS2.1 §10.8's vertical-align.
			f.Rect.Y = y + maxLH - f.Rect.H
			if f.Box != nil {
				mb := f.Box.MarginBoxRect()
				shiftBoxTree(f.Box, f.Rect.X-mb.X, f.Rect.Y-mb.Y)
			}
		}
		y += maxLH
	}
	box.Lines = lines
}

// layoutAtomicInlineWord lays out a non-text inline-level child (replaced
// element or inline box) at its natural size and wraps it in a Fragment;
// the caller repositions it once the line's final x/y are known.
func layoutAtomicInlineWord(child *Box, ctx *Context) *Fragment {
	kind := InlineBoxFragment
	var w, h float64
	if child.Kind == ReplacedBox {
		kind = ReplacedFragment
		w, h = replacedIntrinsicSize(child, ctx)
		layoutBlockLevelBox(child, Rect{W: w, H: h}, ctx)
	} else {
		w = measureMaxContentWidth(child, ctx)
		layoutBlockLevelBox(child, Rect{W: w, H: 1e9}, ctx)
		h = child.MarginBoxRect().H
	}
	mb := child.MarginBoxRect()
	return &Fragment{Kind: kind, Box: child, Rect: Rect{W: mb.W, H: h + (mb.H - child.ContentRect.H)}}
}

// collectInlineWords flattens the inline-level children of box (text
// runs split on whitespace, inline boxes and replaced elements recorded
// as single atomic words) into the measuring sequence layoutInline
// FormattingContext consumes.
func collectInlineWords(box *Box) []inlineWord {
	var out []inlineWord
	for _, c := range box.Children {
		if isOutOfFlow(c) {
			continue
		}
		switch c.Kind {
		case TextBox:
			out = append(out, splitWords(c)...)
		default:
			out = append(out, inlineWord{text: "", style: c})
		}
	}
	return out
}

func splitWords(tb *Box) []inlineWord {
	fields := strings.FieldsFunc(tb.Text, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f'
	})
	var out []inlineWord
	trailingSpace := isTrailingSpace(tb.Text)
	for i, f := range fields {
		out = append(out, inlineWord{text: f, followedBySpace: i < len(fields)-1 || trailingSpace, style: tb})
	}
	return out
}

func isTrailingSpace(s string) bool {
	if s == "" {
		return false
	}
	r := rune(s[len(s)-1])
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f'
}
