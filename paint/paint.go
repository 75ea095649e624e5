// Package paint turns a laid-out box tree into a flat, ordered display
// list (spec §4.11): the paint back end itself (rasterizing commands to
// pixels) is out of scope, this package only decides what to draw and in
// what order.
package paint

import (
	"koala/cssvalue"
	"koala/layout"
)

// CommandKind discriminates one display-list entry (spec §4.11's "solid-
// rect fill, rounded-rect fill, image draw, text run, border stroke,
// box-shadow layer").
type CommandKind uint8

const (
	FillRect CommandKind = iota
	FillRoundedRect
	DrawImage
	DrawText
	StrokeBorder
	DrawBoxShadow
)

// BorderSide identifies which edge a StrokeBorder command paints.
type BorderSide uint8

const (
	BorderTop BorderSide = iota
	BorderRight
	BorderBottom
	BorderLeft
)

// Command is one display-list entry. Only the fields relevant to Kind
// are populated; the rest are left zero.
type Command struct {
	Kind CommandKind
	Rect layout.Rect

	// FillRect / FillRoundedRect / StrokeBorder / DrawBoxShadow
	Color  cssvalue.Color
	Radius float64 // FillRoundedRect corner radius, px

	// DrawBoxShadow
	BlurPx float64

	// StrokeBorder
	Side      BorderSide
	Thickness float64

	// DrawImage
	Src string

	// DrawText
	Text       string
	FontFamily string
	FontSizePx float64
	Decoration string
}

// Paint walks root depth-first and returns its display list, in the
// order the CSS 2.1 Appendix E stacking algorithm paints the default
// stacking context: background, borders, block descendants, inline
// descendants, then (last, in DOM order) positioned descendants.
func Paint(root *layout.Box) []Command {
	var cmds []Command
	paintBox(root, &cmds)
	return cmds
}

func paintBox(box *layout.Box, cmds *[]Command) {
	if box == nil || box.Kind == layout.TextBox {
		return
	}

	appendBoxShadow(box, cmds)
	appendBackground(box, cmds)
	appendBorders(box, cmds)

	if box.Kind == layout.ReplacedBox {
		appendImage(box, cmds)
		return
	}

	if len(box.Lines) > 0 {
		appendInlineContent(box, cmds)
		return
	}

	var positioned []*layout.Box
	for _, c := range box.Children {
		if isPositioned(c) {
			positioned = append(positioned, c)
			continue
		}
		paintBox(c, cmds)
	}
	for _, c := range positioned {
		paintBox(c, cmds)
	}
}

func appendBoxShadow(box *layout.Box, cmds *[]Command) {
	sh, ok := parseBoxShadow(box.Style)
	if !ok {
		return
	}
	r := box.BorderBoxRect()
	r.X += sh.OffsetX
	r.Y += sh.OffsetY
	*cmds = append(*cmds, Command{Kind: DrawBoxShadow, Rect: r, Color: sh.Color, BlurPx: sh.Blur})
}

func appendBackground(box *layout.Box, cmds *[]Command) {
	c, ok := colorProp(box.Style, "background-color")
	if !ok || c.A == 0 {
		return
	}
	r := box.BorderBoxRect()
	if radius := borderRadiusPx(box.Style); radius > 0 {
		*cmds = append(*cmds, Command{Kind: FillRoundedRect, Rect: r, Color: c, Radius: radius})
	} else {
		*cmds = append(*cmds, Command{Kind: FillRect, Rect: r, Color: c})
	}
}

var borderSides = []struct {
	side BorderSide
	name string
}{
	{BorderTop, "top"},
	{BorderRight, "right"},
	{BorderBottom, "bottom"},
	{BorderLeft, "left"},
}

func appendBorders(box *layout.Box, cmds *[]Command) {
	bb := box.BorderBoxRect()
	widths := map[BorderSide]float64{
		BorderTop: box.Border.Top, BorderRight: box.Border.Right,
		BorderBottom: box.Border.Bottom, BorderLeft: box.Border.Left,
	}
	for _, s := range borderSides {
		thickness := widths[s.side]
		if thickness <= 0 {
			continue
		}
		color, ok := colorProp(box.Style, "border-"+s.name+"-color")
		if !ok {
			color = cssvalue.Color{A: 255} // initial border-color is currentColor; black fallback
		}
		*cmds = append(*cmds, Command{Kind: StrokeBorder, Rect: bb, Color: color, Side: s.side, Thickness: thickness})
	}
}

func appendImage(box *layout.Box, cmds *[]Command) {
	*cmds = append(*cmds, Command{Kind: DrawImage, Rect: box.ContentRect, Src: box.Src})
}

// appendInlineContent emits the line-box fragments of a box establishing
// an inline formatting context (spec §4.6): text runs directly, replaced
// fragments as image draws, and inline-box fragments by recursing into
// their own (already positioned) Box so their background/border/content
// paint too.
func appendInlineContent(box *layout.Box, cmds *[]Command) {
	for _, ln := range box.Lines {
		for _, f := range ln.Fragments {
			switch f.Kind {
			case layout.TextFragment:
				*cmds = append(*cmds, Command{
					Kind:       DrawText,
					Rect:       f.Rect,
					Color:      f.Color,
					Text:       f.Text,
					FontFamily: f.FontFamily,
					FontSizePx: f.FontSizePx,
					Decoration: textDecoration(box.Style),
				})
			case layout.ReplacedFragment, layout.InlineBoxFragment:
				paintBox(f.Box, cmds)
			}
		}
	}
}
