package layout

import (
	"koala/cascade"
	"koala/csstok"
	"koala/cssvalue"
)

// flexItem is the per-child bookkeeping for the §9.7 resolve-flexible-
// lengths freeze-loop.
type flexItem struct {
	box          *Box
	baseSize     float64
	hypothetical float64
	grow         float64
	shrink       float64
	target       float64
	frozen       bool
	outerMain    float64 // margin+border+padding on the main axis
}

// layoutFlexContainer implements the single-line/multi-line row-direction
// CSS Flexbox algorithm (spec §4.7): flex-basis/hypothetical main size,
// line collection by flex-wrap, resolve-flexible-lengths, justify-content,
// and align-items/align-self with stretch. Column direction, order, and
// align-content are not implemented (single row axis, declaration order,
// lines stack top-to-bottom).
func layoutFlexContainer(box *Box, cb Rect, ctx *Context) {
	layoutBlock(box, cb, ctx) // resolves width/position/box-model like any block box
	content := box.ContentRect
	availableMain := content.W

	var items []*flexItem
	for _, c := range box.Children {
		if c.Kind == TextBox {
			continue
		}
		hctx := resolveBoxModelContext(c.Style, content.W, content.H)
		marginL, _ := resolvePx(lengthOrAuto(c.Style, "margin-left", cssvalue.Abs(cssvalue.Length{})), hctx)
		marginR, _ := resolvePx(lengthOrAuto(c.Style, "margin-right", cssvalue.Abs(cssvalue.Length{})), hctx)
		borderL := borderWidthPx(c.Style, "left", hctx)
		borderR := borderWidthPx(c.Style, "right", hctx)
		paddingL, _ := resolvePx(lengthOrAuto(c.Style, "padding-left", cssvalue.Abs(cssvalue.Length{})), hctx)
		paddingR, _ := resolvePx(lengthOrAuto(c.Style, "padding-right", cssvalue.Abs(cssvalue.Length{})), hctx)
		outerMain := marginL + borderL + paddingL + paddingR + borderR + marginR

		base := flexBaseSize(c, hctx, ctx)
		items = append(items, &flexItem{
			box: c, baseSize: base, hypothetical: base,
			grow: flexFactor(c.Style, "flex-grow", 0), shrink: flexFactor(c.Style, "flex-shrink", 1),
			outerMain: outerMain,
		})
	}

	wrap := identProp(box.Style, "flex-wrap", "nowrap")
	lines := collectFlexLines(items, availableMain, wrap == "wrap" || wrap == "wrap-reverse")

	justify := identProp(box.Style, "justify-content", "flex-start")
	alignItems := identProp(box.Style, "align-items", "stretch")

	currentY := content.Y
	lineCross := make([]float64, len(lines))
	for li, line := range lines {
		resolveFlexibleLengths(line, availableMain)

		var totalTarget float64
		for _, it := range line {
			totalTarget += it.target + it.outerMain
		}
		freeSpace := availableMain - totalTarget
		if freeSpace < 0 {
			freeSpace = 0
		}
		initialOffset, gap := justifyOffsets(justify, freeSpace, len(line))

		currentX := content.X + initialOffset
		maxCross := 0.0
		for idx, it := range line {
			// The item's containing block is sized to its margin box so
			// that layoutBlock's width:auto Rule A resolves content width
			// back to the §9.7-resolved target main size.
			childCB := Rect{X: currentX, Y: currentY, W: it.target + it.outerMain, H: 1e9}
			layoutBlockLevelBox(it.box, childCB, ctx)
			currentX += it.box.MarginBoxRect().W
			if idx < len(line)-1 {
				currentX += gap
			}
			if h := it.box.MarginBoxRect().H; h > maxCross {
				maxCross = h
			}
		}
		lineCross[li] = maxCross
		currentY += maxCross
	}

	_, heightAuto := resolvePx(lengthOrAuto(box.Style, "height", cssvalue.Auto()), resolveVerticalContext(box.Style, cb.H))
	if heightAuto {
		var sum float64
		for _, c := range lineCross {
			sum += c
		}
		box.ContentRect.H = sum
	}
	if len(lines) == 1 && !heightAuto {
		lineCross[0] = box.ContentRect.H
	}

	applyCrossAlignment(lines, lineCross, alignItems)
}

func flexFactor(cs *cascade.ComputedStyle, name string, def float64) float64 {
	toks, ok := propTokens(cs, name)
	if !ok {
		return def
	}
	t, ok := firstNonWSToken(toks)
	if !ok || t.Kind != csstok.Number {
		return def
	}
	return t.Num
}

func flexBaseSize(c *Box, hctx cssvalue.ResolutionContext, ctx *Context) float64 {
	if v, ok := propTokens(c.Style, "flex-basis"); ok {
		if t, ok2 := firstNonWSToken(v); ok2 {
			if l, ok3 := cssvalue.ParseLengthOrAuto(t); ok3 && !l.IsAuto {
				return l.Length.ResolvePx(hctx)
			}
		}
	}
	w := lengthOrAuto(c.Style, "width", cssvalue.Auto())
	if !w.IsAuto {
		return w.Length.ResolvePx(hctx)
	}
	return measureMaxContentWidth(c, ctx)
}

// measureMaxContentWidth approximates max-content sizing by measuring the
// widest unbroken text run via the FontMetrics collaborator.
func measureMaxContentWidth(c *Box, ctx *Context) float64 {
	if c.Kind == TextBox {
		family := identProp(c.Style, "font-family", "sans-serif")
		size := 16.0
		if c.Style != nil {
			size = c.Style.FontSizePx
		}
		return ctx.Metrics.TextWidth(c.Text, family, size)
	}
	var max float64
	for _, ch := range c.Children {
		if w := measureMaxContentWidth(ch, ctx); w > max {
			max = w
		}
	}
	return max
}

func collectFlexLines(items []*flexItem, availableMain float64, wrap bool) [][]*flexItem {
	if !wrap {
		return [][]*flexItem{items}
	}
	var lines [][]*flexItem
	var line []*flexItem
	lineMain := 0.0
	for _, it := range items {
		itemMain := it.hypothetical + it.outerMain
		if len(line) > 0 && lineMain+itemMain > availableMain {
			lines = append(lines, line)
			line = nil
			lineMain = 0
		}
		line = append(line, it)
		lineMain += itemMain
	}
	if len(line) > 0 {
		lines = append(lines, line)
	}
	return lines
}

// resolveFlexibleLengths implements CSS Flexbox §9.7's freeze loop.
func resolveFlexibleLengths(items []*flexItem, availableMain float64) {
	if len(items) == 0 {
		return
	}
	sumOuterHypo := 0.0
	for _, it := range items {
		sumOuterHypo += it.hypothetical + it.outerMain
	}
	growing := sumOuterHypo < availableMain

	for _, it := range items {
		factor := it.shrink
		if growing {
			factor = it.grow
		}
		freeze := factor == 0 ||
			(growing && it.baseSize > it.hypothetical) ||
			(!growing && it.baseSize < it.hypothetical)
		if freeze {
			it.frozen = true
			it.target = it.hypothetical
		}
	}

	usedSum := func() float64 {
		s := 0.0
		for _, it := range items {
			if it.frozen {
				s += it.target + it.outerMain
			} else {
				s += it.baseSize + it.outerMain
			}
		}
		return s
	}
	initialFreeSpace := availableMain - usedSum()

	for {
		allFrozen := true
		for _, it := range items {
			if !it.frozen {
				allFrozen = false
			}
		}
		if allFrozen {
			break
		}

		remainingFree := availableMain - usedSum()

		unfrozenFactorSum := 0.0
		for _, it := range items {
			if it.frozen {
				continue
			}
			if growing {
				unfrozenFactorSum += it.grow
			} else {
				unfrozenFactorSum += it.shrink
			}
		}

		freeSpace := remainingFree
		if unfrozenFactorSum < 1 && unfrozenFactorSum > 0 {
			scaled := initialFreeSpace * unfrozenFactorSum
			if absF(scaled) < absF(remainingFree) {
				freeSpace = scaled
			}
		}

		if growing {
			growSum := 0.0
			for _, it := range items {
				if !it.frozen {
					growSum += it.grow
				}
			}
			if growSum > 0 {
				for _, it := range items {
					if it.frozen {
						continue
					}
					ratio := it.grow / growSum
					it.target = it.baseSize + freeSpace*ratio
				}
			}
		} else {
			scaledShrinkSum := 0.0
			for _, it := range items {
				if !it.frozen {
					scaledShrinkSum += it.shrink * it.baseSize
				}
			}
			if scaledShrinkSum > 0 {
				for _, it := range items {
					if it.frozen {
						continue
					}
					scaled := it.shrink * it.baseSize
					ratio := scaled / scaledShrinkSum
					it.target = it.baseSize - absF(freeSpace)*ratio
				}
			}
		}

		totalViolation := 0.0
		for _, it := range items {
			if it.frozen {
				continue
			}
			clamped := it.target
			if clamped < 0 {
				clamped = 0
			}
			totalViolation += clamped - it.target
			it.target = clamped
		}

		switch {
		case absF(totalViolation) < 0.01:
			for _, it := range items {
				it.frozen = true
			}
		case totalViolation > 0:
			for _, it := range items {
				if !it.frozen && it.target <= 0.01 {
					it.frozen = true
				}
			}
		default:
			for _, it := range items {
				it.frozen = true
			}
		}
	}
}

func justifyOffsets(keyword string, freeSpace float64, count int) (offset, gap float64) {
	if count == 0 {
		return 0, 0
	}
	switch keyword {
	case "flex-end":
		return freeSpace, 0
	case "center":
		return freeSpace / 2, 0
	case "space-between":
		if count <= 1 || freeSpace <= 0 {
			return 0, 0
		}
		return 0, freeSpace / float64(count-1)
	case "space-around":
		if freeSpace <= 0 {
			return 0, 0
		}
		g := freeSpace / float64(count)
		return g / 2, g
	default: // flex-start
		return 0, 0
	}
}

func applyCrossAlignment(lines [][]*flexItem, lineCross []float64, containerAlign string) {
	for li, line := range lines {
		cross := lineCross[li]
		for _, it := range line {
			align := containerAlign
			if v := identProp(it.box.Style, "align-self", "auto"); v != "auto" {
				align = v
			}
			boxH := it.box.MarginBoxRect().H
			switch align {
			case "flex-end":
				it.box.ContentRect.Y += cross - boxH
			case "center":
				it.box.ContentRect.Y += (cross - boxH) / 2
			case "stretch":
				if _, auto := resolvePx(lengthOrAuto(it.box.Style, "height", cssvalue.Auto()), cssvalue.ResolutionContext{}); auto {
					stretched := cross - it.box.Margin.Vertical() - it.box.Border.Vertical() - it.box.Padding.Vertical()
					if stretched > it.box.ContentRect.H {
						it.box.ContentRect.H = stretched
					}
				}
			}
		}
	}
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
