package layout

import (
	"koala/cssvalue"
	"koala/fontmetrics"
	"koala/imageregistry"
)

// Context bundles the external collaborators and viewport layout needs
// (spec §6's Font metrics / Image registry collaborators, plus the
// initial containing block).
type Context struct {
	Metrics     fontmetrics.Metrics
	Images      imageregistry.Registry
	ViewportW   float64
	ViewportH   float64
}

// LayoutRoot lays out box as the root of the initial containing block
// (spec §5's "relayout ... with a new initial containing block").
func LayoutRoot(box *Box, ctx *Context) {
	cb := Rect{X: 0, Y: 0, W: ctx.ViewportW, H: ctx.ViewportH}
	layoutBlockLevelBox(box, cb, ctx)
}

// layoutBlockLevelBox dispatches to the right formatting-context
// algorithm for box based on its computed display (spec §4.6-§4.9):
// flex/grid/table containers get their own algorithms; everything else
// is plain block/inline flow.
func layoutBlockLevelBox(box *Box, cb Rect, ctx *Context) {
	inner := ""
	if box.Style != nil {
		inner = box.Style.InnerDisplay
	}
	switch inner {
	case "flex":
		layoutFlexContainer(box, cb, ctx)
		return
	case "grid":
		layoutGridContainer(box, cb, ctx)
		return
	case "table":
		layoutTable(box, cb, ctx)
		return
	}
	layoutBlock(box, cb, ctx)
}

// layoutBlock implements CSS2.1 §10.3.3 (width), §9.4.1/§10.6.3
// (height), and the positioning rule from spec §4.6.
func layoutBlock(box *Box, cb Rect, ctx *Context) {
	hctx := resolveBoxModelContext(box.Style, cb.W, cb.H)

	marginL, marginLAuto := resolvePx(lengthOrAuto(box.Style, "margin-left", cssvalue.Abs(cssvalue.Length{})), hctx)
	marginR, marginRAuto := resolvePx(lengthOrAuto(box.Style, "margin-right", cssvalue.Abs(cssvalue.Length{})), hctx)
	borderL := borderWidthPx(box.Style, "left", hctx)
	borderR := borderWidthPx(box.Style, "right", hctx)
	paddingL, _ := resolvePx(lengthOrAuto(box.Style, "padding-left", cssvalue.Abs(cssvalue.Length{})), hctx)
	paddingR, _ := resolvePx(lengthOrAuto(box.Style, "padding-right", cssvalue.Abs(cssvalue.Length{})), hctx)
	width, widthAuto := resolvePx(lengthOrAuto(box.Style, "width", cssvalue.Auto()), hctx)

	fixed := marginL + borderL + paddingL + paddingR + borderR
	available := cb.W - fixed

	intrinsicW, intrinsicH := replacedIntrinsicSize(box, ctx)

	switch {
	case widthAuto:
		// Rule A: width auto -> other autos (if any) become 0, width
		// absorbs the remainder. Replaced elements use their intrinsic
		// width instead (CSS2.1 §10.3.2).
		if marginLAuto {
			marginL = 0
		}
		if marginRAuto {
			marginR = 0
		}
		if box.Kind == ReplacedBox {
			width = intrinsicW
		} else {
			width = cb.W - fixed - marginL - marginR
			if width < 0 {
				width = 0
			}
		}
	case marginLAuto && marginRAuto:
		// Rule B: both horizontal margins auto -> center.
		remaining := available - width
		if remaining < 0 {
			remaining = 0
		}
		marginL = remaining / 2
		marginR = remaining - marginL
	case marginLAuto:
		// Rule C: left margin absorbs.
		marginL = available - width - marginR
		if marginL < 0 {
			marginL = 0
		}
	case marginRAuto:
		marginR = available - width - marginL
		if marginR < 0 {
			marginR = 0
		}
	default:
		// Rule D: over-constrained -> margin-right (LTR) adjusts.
		marginR = available - width - marginL
	}

	box.Margin = Edges{Left: marginL, Right: marginR}
	box.Border = Edges{Left: borderL, Right: borderR, Top: borderWidthPx(box.Style, "top", hctx), Bottom: borderWidthPx(box.Style, "bottom", hctx)}
	box.Padding.Left, box.Padding.Right = paddingL, paddingR

	vctx := resolveVerticalContext(box.Style, cb.H)
	paddingTop, _ := resolvePx(lengthOrAuto(box.Style, "padding-top", cssvalue.Abs(cssvalue.Length{})), vctx)
	paddingBottom, _ := resolvePx(lengthOrAuto(box.Style, "padding-bottom", cssvalue.Abs(cssvalue.Length{})), vctx)
	marginTop, marginTopAuto := resolvePx(lengthOrAuto(box.Style, "margin-top", cssvalue.Abs(cssvalue.Length{})), vctx)
	marginBottom, marginBottomAuto := resolvePx(lengthOrAuto(box.Style, "margin-bottom", cssvalue.Abs(cssvalue.Length{})), vctx)
	if marginTopAuto {
		marginTop = 0
	}
	if marginBottomAuto {
		marginBottom = 0
	}
	box.Margin.Top, box.Margin.Bottom = marginTop, marginBottom
	box.Padding.Top, box.Padding.Bottom = paddingTop, paddingBottom

	contentX := cb.X + box.Margin.Left + box.Border.Left + box.Padding.Left
	contentY := cb.Y + box.Margin.Top + box.Border.Top + box.Padding.Top
	box.ContentRect = Rect{X: contentX, Y: contentY, W: width}

	if establishesIFC(box) {
		layoutInlineFormattingContext(box, ctx)
	} else {
		layoutChildrenBlock(box, ctx)
	}

	height, heightAuto := resolvePx(lengthOrAuto(box.Style, "height", cssvalue.Auto()), vctx)
	if heightAuto {
		switch {
		case box.Kind == ReplacedBox:
			height = intrinsicH
		case establishesIFC(box):
			var h float64
			for _, ln := range box.Lines {
				h += ln.Height
			}
			height = h
		default:
			height = sumChildMarginBoxHeights(box)
		}
	}
	box.ContentRect.H = height
}

// replacedIntrinsicSize returns box's intrinsic px dimensions (CSS2.1
// §10.3.2/§10.6.2): the image registry's reported size for a ReplacedBox
// with a resolvable src, or the UA-default 300x150 replaced-element size
// when the registry has no entry. Non-replaced boxes get (0, 0), unused.
func replacedIntrinsicSize(box *Box, ctx *Context) (w, h float64) {
	if box.Kind != ReplacedBox {
		return 0, 0
	}
	if ctx != nil && ctx.Images != nil {
		if d, ok := ctx.Images.Dimensions(box.Src); ok {
			return d.Width, d.Height
		}
	}
	return 300, 150
}

// establishesIFC reports whether box's children are all inline-level
// (spec §4.6's inline formatting context trigger).
func establishesIFC(box *Box) bool {
	if len(box.Children) == 0 {
		return false
	}
	any := false
	for _, c := range box.Children {
		if isOutOfFlow(c) {
			continue
		}
		any = true
		if !c.IsInlineLevel() {
			return false
		}
	}
	return any
}

func layoutChildrenBlock(box *Box, ctx *Context) {
	y := box.ContentRect.Y
	var outOfFlow []*Box
	for _, c := range box.Children {
		if c.Kind == TextBox {
			continue // whitespace-only text boxes between block siblings
		}
		switch positionOf(c.Style) {
		case posAbsolute, posFixed:
			outOfFlow = append(outOfFlow, c)
			continue
		}
		childCB := Rect{X: box.ContentRect.X, Y: y, W: box.ContentRect.W}
		layoutBlockLevelBox(c, childCB, ctx)
		y = c.MarginBoxRect().Bottom() // static-flow position, before any relative offset
		if positionOf(c.Style) == posRelative {
			layoutRelative(c, childCB)
		}
	}
	layoutOutOfFlowChildren(box, outOfFlow, ctx)
}

// layoutOutOfFlowChildren lays out absolutely/fixed positioned children
// after normal flow, per CSS2.1 §9.3.1: fixed boxes use the viewport as
// their containing block, absolute boxes use the nearest containing
// block's padding box (approximated here as the parent box's border box).
func layoutOutOfFlowChildren(box *Box, children []*Box, ctx *Context) {
	for _, c := range children {
		cb := box.BorderBoxRect()
		if positionOf(c.Style) == posFixed {
			cb = Rect{X: 0, Y: 0, W: ctx.ViewportW, H: ctx.ViewportH}
		}
		layoutAbsolute(c, cb, ctx)
	}
}

func sumChildMarginBoxHeights(box *Box) float64 {
	var h float64
	for _, c := range box.Children {
		if c.Kind == TextBox || isOutOfFlow(c) {
			continue
		}
		h += c.MarginBoxRect().H
	}
	return h
}

func isOutOfFlow(c *Box) bool {
	k := positionOf(c.Style)
	return k == posAbsolute || k == posFixed
}
