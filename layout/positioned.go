package layout

import (
	"koala/cascade"
	"koala/cssvalue"
)

// positionKind is the CSS2.1 §9.3.1 'position' value.
type positionKind uint8

const (
	posStatic positionKind = iota
	posRelative
	posAbsolute
	posFixed
	posSticky
)

func positionOf(cs *cascade.ComputedStyle) positionKind {
	switch identProp(cs, "position", "static") {
	case "relative":
		return posRelative
	case "absolute":
		return posAbsolute
	case "fixed":
		return posFixed
	case "sticky":
		return posSticky
	default:
		return posStatic
	}
}

// offsetOrAuto resolves one of top/right/bottom/left.
func offsetOrAuto(cs *cascade.ComputedStyle, name string, ctx cssvalue.ResolutionContext) (px float64, isAuto bool) {
	v := lengthOrAuto(cs, name, cssvalue.Auto())
	return resolvePx(v, ctx)
}

// layoutRelative implements CSS2.1 §9.4.3: once a box is laid out in
// normal flow, it is shifted by its top/right/bottom/left offsets without
// affecting the position of its siblings.
func layoutRelative(box *Box, cb Rect) {
	hctx := resolveBoxModelContext(box.Style, cb.W, cb.H)
	vctx := resolveVerticalContext(box.Style, cb.H)

	left, leftAuto := offsetOrAuto(box.Style, "left", hctx)
	right, rightAuto := offsetOrAuto(box.Style, "right", hctx)
	var dx float64
	switch {
	case leftAuto && rightAuto:
		dx = 0
	case !leftAuto:
		dx = left
	default:
		dx = -right
	}

	top, topAuto := offsetOrAuto(box.Style, "top", vctx)
	bottom, bottomAuto := offsetOrAuto(box.Style, "bottom", vctx)
	var dy float64
	switch {
	case topAuto && bottomAuto:
		dy = 0
	case !topAuto:
		dy = top
	default:
		dy = -bottom
	}

	shiftBoxTree(box, dx, dy)
}

func shiftBoxTree(box *Box, dx, dy float64) {
	box.ContentRect.X += dx
	box.ContentRect.Y += dy
	for _, ln := range box.Lines {
		ln.Rect.X += dx
		ln.Rect.Y += dy
		for _, f := range ln.Fragments {
			f.Rect.X += dx
			f.Rect.Y += dy
		}
	}
	for _, c := range box.Children {
		shiftBoxTree(c, dx, dy)
	}
}

// layoutAbsolute implements CSS2.1 §10.3.7/§10.6.4: the box is removed
// from normal flow and positioned by solving the over-determined
// left/width/right (and top/height/bottom) constraint equation against
// cb, its containing block. The static-position fallback used when all
// three of left/width/right (or top/height/bottom) are auto is (0,0).
func layoutAbsolute(box *Box, cb Rect, ctx *Context) {
	hctx := resolveBoxModelContext(box.Style, cb.W, cb.H)
	vctx := resolveVerticalContext(box.Style, cb.H)

	marginL, marginLAuto := resolvePx(lengthOrAuto(box.Style, "margin-left", cssvalue.Abs(cssvalue.Length{})), hctx)
	marginR, marginRAuto := resolvePx(lengthOrAuto(box.Style, "margin-right", cssvalue.Abs(cssvalue.Length{})), hctx)
	borderL := borderWidthPx(box.Style, "left", hctx)
	borderR := borderWidthPx(box.Style, "right", hctx)
	paddingL, _ := resolvePx(lengthOrAuto(box.Style, "padding-left", cssvalue.Abs(cssvalue.Length{})), hctx)
	paddingR, _ := resolvePx(lengthOrAuto(box.Style, "padding-right", cssvalue.Abs(cssvalue.Length{})), hctx)
	width, widthAuto := resolvePx(lengthOrAuto(box.Style, "width", cssvalue.Auto()), hctx)
	left, leftAuto := offsetOrAuto(box.Style, "left", hctx)
	right, rightAuto := offsetOrAuto(box.Style, "right", hctx)

	if marginLAuto {
		marginL = 0
	}
	if marginRAuto {
		marginR = 0
	}

	autoCount := boolCount(leftAuto, widthAuto, rightAuto)
	switch {
	case autoCount == 3:
		left = 0 // static-position fallback
		width = 0
	case autoCount == 0:
		// over-constrained: drop 'right' (LTR)
		right = cb.W - left - marginL - borderL - paddingL - width - paddingR - borderR - marginR
	case leftAuto && widthAuto:
		left = 0 // static-position fallback
		width = cb.W - left - marginL - borderL - paddingL - paddingR - borderR - marginR - right
	case leftAuto && rightAuto:
		left = 0 // static-position fallback
		right = cb.W - left - marginL - borderL - paddingL - width - paddingR - borderR - marginR
	case widthAuto && rightAuto:
		width = 0 // shrink-to-fit fallback
		right = cb.W - left - marginL - borderL - paddingL - width - paddingR - borderR - marginR
	case leftAuto:
		left = cb.W - marginL - borderL - paddingL - width - paddingR - borderR - marginR - right
	case widthAuto:
		width = cb.W - left - marginL - borderL - paddingL - paddingR - borderR - marginR - right
		if width < 0 {
			width = 0
		}
	case rightAuto:
		right = cb.W - left - marginL - borderL - paddingL - width - paddingR - borderR - marginR
	}

	box.Margin.Left, box.Margin.Right = marginL, marginR
	box.Border = Edges{Left: borderL, Right: borderR, Top: borderWidthPx(box.Style, "top", vctx), Bottom: borderWidthPx(box.Style, "bottom", vctx)}
	box.Padding.Left, box.Padding.Right = paddingL, paddingR

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
	box.Padding.Top, box.Padding.Bottom = paddingTop, paddingBottom
	box.Margin.Top, box.Margin.Bottom = marginTop, marginBottom

	height, heightAuto := resolvePx(lengthOrAuto(box.Style, "height", cssvalue.Auto()), vctx)
	top, topAuto := offsetOrAuto(box.Style, "top", vctx)
	_, bottomAuto := offsetOrAuto(box.Style, "bottom", vctx)

	vAutoCount := boolCount(topAuto, heightAuto, bottomAuto)
	if vAutoCount == 3 || (topAuto && heightAuto) {
		top = 0 // static-position fallback; height resolved from content below
	} else if topAuto {
		top = 0
	}

	box.ContentRect = Rect{
		X: cb.X + left + marginL + borderL + paddingL,
		Y: cb.Y + top + marginTop + box.Border.Top + paddingTop,
		W: width,
	}

	if establishesIFC(box) {
		layoutInlineFormattingContext(box, ctx)
	} else {
		layoutChildrenBlock(box, ctx)
	}

	if heightAuto {
		if establishesIFC(box) {
			var h float64
			for _, ln := range box.Lines {
				h += ln.Height
			}
			height = h
		} else {
			height = sumChildMarginBoxHeights(box)
		}
	}
	box.ContentRect.H = height
}

func boolCount(bs ...bool) int {
	n := 0
	for _, b := range bs {
		if b {
			n++
		}
	}
	return n
}
