package layout

import (
	"strings"

	"koala/cascade"
	"koala/csstok"
)

// trackKind discriminates a resolved grid track definition.
type trackKind uint8

const (
	trackFixed trackKind = iota
	trackAuto
	trackFr
)

type track struct {
	kind trackKind
	px   float64
	fr   float64
}

type gridPosition struct {
	colStart, colEnd, rowStart, rowEnd int
}

type gridItem struct {
	box *Box
	pos gridPosition
}

// layoutGridContainer implements the MVP CSS Grid algorithm (spec §4.8):
// track templates with Fixed/Auto/Fr (repeat()/minmax() expanded at parse
// time), explicit + auto-placement via a growing occupancy bitmap, and
// two-pass track sizing. grid-template-areas and subgrid are not
// implemented.
func layoutGridContainer(box *Box, cb Rect, ctx *Context) {
	layoutBlock(box, cb, ctx)
	content := box.ContentRect

	colTemplate := parseTrackList(box.Style, "grid-template-columns")
	rowTemplate := parseTrackList(box.Style, "grid-template-rows")
	colGap := gapPx(box.Style, "column-gap")
	rowGap := gapPx(box.Style, "row-gap")
	autoFlow := identProp(box.Style, "grid-auto-flow", "row")

	var inFlow []*Box
	for _, c := range box.Children {
		if c.Kind != TextBox {
			inFlow = append(inFlow, c)
		}
	}

	defaultCols := len(colTemplate)
	if defaultCols == 0 {
		defaultCols = 1
	}

	items := placeGridItems(inFlow, defaultCols, len(rowTemplate), autoFlow)

	numCols := defaultCols
	numRows := len(rowTemplate)
	if numRows == 0 {
		numRows = 1
	}
	for _, it := range items {
		if it.pos.colEnd > numCols {
			numCols = it.pos.colEnd
		}
		if it.pos.rowEnd > numRows {
			numRows = it.pos.rowEnd
		}
	}

	colSizes := resolveColumnTracks(colTemplate, numCols, content.W, colGap, items, ctx)

	childHeights := make(map[*Box]float64, len(items))
	for _, it := range items {
		itemWidth := trackSpanSize(colSizes, it.pos.colStart, it.pos.colEnd, colGap)
		tempCB := Rect{X: 0, Y: 0, W: itemWidth, H: 1e9}
		layoutBlockLevelBox(it.box, tempCB, ctx)
		childHeights[it.box] = it.box.MarginBoxRect().H
	}

	rowSizes := resolveRowTracks(rowTemplate, numRows, items, childHeights)

	colOffsets := trackOffsets(colSizes, colGap, content.X)
	rowOffsets := trackOffsets(rowSizes, rowGap, content.Y)

	for _, it := range items {
		cellX := colOffsets[it.pos.colStart]
		cellY := rowOffsets[it.pos.rowStart]
		cellW := trackSpanSize(colSizes, it.pos.colStart, it.pos.colEnd, colGap)
		cellH := trackSpanSize(rowSizes, it.pos.rowStart, it.pos.rowEnd, rowGap)
		layoutBlockLevelBox(it.box, Rect{X: cellX, Y: cellY, W: cellW, H: cellH}, ctx)
	}

	if len(rowSizes) > 0 {
		total := 0.0
		for _, s := range rowSizes {
			total += s
		}
		if numRows > 1 {
			total += rowGap * float64(numRows-1)
		}
		box.ContentRect.H = total
	}
}

// parseTrackList parses a grid-template-columns/rows value into resolved
// tracks, expanding repeat(n, ...) and minmax(min, max) (using max as the
// resolved size, or Auto if max is the auto keyword).
func parseTrackList(cs *cascade.ComputedStyle, name string) []track {
	toks, ok := propTokens(cs, name)
	if !ok {
		return nil
	}
	return expandTrackTokens(toks)
}

func expandTrackTokens(toks []csstok.Token) []track {
	var out []track
	i := 0
	for i < len(toks) {
		t := toks[i]
		switch t.Kind {
		case csstok.Whitespace:
			i++
		case csstok.Function:
			args, next := collectFunctionArgs(toks, i)
			name := strings.ToLower(t.Value)
			switch name {
			case "repeat":
				out = append(out, expandRepeat(args)...)
			case "minmax":
				out = append(out, expandMinmax(args))
			}
			i = next
		case csstok.Ident:
			if strings.ToLower(t.Value) == "auto" {
				out = append(out, track{kind: trackAuto})
			}
			i++
		case csstok.Dimension:
			if strings.ToLower(t.Unit) == "fr" {
				out = append(out, track{kind: trackFr, fr: t.Num})
			} else if lv, ok := pxFromDimension(t); ok {
				out = append(out, track{kind: trackFixed, px: lv})
			}
			i++
		default:
			i++
		}
	}
	return out
}

// collectFunctionArgs returns the tokens between the Function token at
// idx and its matching closing paren, plus the index just past it.
func collectFunctionArgs(toks []csstok.Token, idx int) ([]csstok.Token, int) {
	depth := 1
	i := idx + 1
	start := i
	for i < len(toks) && depth > 0 {
		switch toks[i].Kind {
		case csstok.Function, csstok.LeftParen:
			depth++
		case csstok.RightParen:
			depth--
			if depth == 0 {
				return toks[start:i], i + 1
			}
		}
		i++
	}
	return toks[start:], i
}

func expandRepeat(args []csstok.Token) []track {
	n := 1
	// First comma-separated segment is the count; find first top-level comma.
	commaIdx := -1
	depth := 0
	for i, t := range args {
		switch t.Kind {
		case csstok.Function, csstok.LeftParen:
			depth++
		case csstok.RightParen:
			depth--
		case csstok.Comma:
			if depth == 0 {
				commaIdx = i
			}
		}
		if commaIdx != -1 {
			break
		}
	}
	if commaIdx == -1 {
		return nil
	}
	countToks := args[:commaIdx]
	rest := args[commaIdx+1:]
	if ct, ok := firstNonWSToken(countToks); ok && ct.Kind == csstok.Number {
		n = int(ct.Num)
	}
	trackSet := expandTrackTokens(rest)
	var out []track
	for k := 0; k < n; k++ {
		out = append(out, trackSet...)
	}
	return out
}

func expandMinmax(args []csstok.Token) track {
	var segs [][]csstok.Token
	depth := 0
	start := 0
	for i, t := range args {
		switch t.Kind {
		case csstok.Function, csstok.LeftParen:
			depth++
		case csstok.RightParen:
			depth--
		case csstok.Comma:
			if depth == 0 {
				segs = append(segs, args[start:i])
				start = i + 1
			}
		}
	}
	segs = append(segs, args[start:])
	if len(segs) != 2 {
		return track{kind: trackAuto}
	}
	maxToks := expandTrackTokens(segs[1])
	if len(maxToks) == 1 {
		return maxToks[0]
	}
	return track{kind: trackAuto}
}

func pxFromDimension(t csstok.Token) (float64, bool) {
	if t.Kind != csstok.Dimension {
		return 0, false
	}
	switch strings.ToLower(t.Unit) {
	case "px", "":
		return t.Num, true
	default:
		return t.Num, true // other absolute units treated as px for MVP
	}
}

func gapPx(cs *cascade.ComputedStyle, name string) float64 {
	toks, ok := propTokens(cs, name)
	if !ok {
		return 0
	}
	t, ok := firstNonWSToken(toks)
	if !ok {
		return 0
	}
	if px, ok := pxFromDimension(t); ok {
		return px
	}
	return 0
}

// splitWS splits a token run on whitespace, ignoring whitespace nested
// inside function-call parens.
func splitWS(toks []csstok.Token) [][]csstok.Token {
	var out [][]csstok.Token
	var cur []csstok.Token
	depth := 0
	for _, t := range toks {
		switch t.Kind {
		case csstok.Function, csstok.LeftParen:
			depth++
		case csstok.RightParen:
			depth--
		}
		if t.Kind == csstok.Whitespace && depth == 0 {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, t)
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

func gridLineOf(cs *cascade.ComputedStyle, name string) (line int, span int, isAuto bool) {
	toks, ok := propTokens(cs, name)
	if !ok {
		return 0, 0, true
	}
	parts := splitWS(toks)
	if len(parts) == 0 {
		return 0, 0, true
	}
	if t, ok := firstNonWSToken(parts[0]); ok {
		if t.Kind == csstok.Ident && strings.ToLower(t.Value) == "span" && len(parts) > 1 {
			if n, ok := firstNonWSToken(parts[1]); ok && n.Kind == csstok.Number {
				return 0, int(n.Num), false
			}
		}
		if t.Kind == csstok.Ident && strings.ToLower(t.Value) == "auto" {
			return 0, 0, true
		}
		if t.Kind == csstok.Number {
			return int(t.Num), 0, false
		}
	}
	return 0, 0, true
}

// resolveDefiniteLine converts a 1-based (or negative, counted from the
// end) CSS grid line number to a 0-based track index.
func resolveDefiniteLine(line int, trackCount int) (int, bool) {
	if line == 0 {
		return 0, false
	}
	if line > 0 {
		return line - 1, true
	}
	idx := trackCount + line
	if idx < 0 {
		idx = 0
	}
	return idx, true
}

func placeGridItems(children []*Box, numCols, numExplicitRows int, autoFlow string) []*gridItem {
	initialRows := numExplicitRows
	if initialRows < 1 {
		initialRows = 1
	}
	occ := make([][]bool, initialRows)
	for i := range occ {
		occ[i] = make([]bool, numCols)
	}
	grow := func(minRows int) {
		for len(occ) < minRows {
			occ = append(occ, make([]bool, numCols))
		}
	}
	free := func(cs, ce, rs, re int) bool {
		for r := rs; r < re; r++ {
			for c := cs; c < ce; c++ {
				if occ[r][c] {
					return false
				}
			}
		}
		return true
	}
	mark := func(cs, ce, rs, re int) {
		for r := rs; r < re; r++ {
			for c := cs; c < ce; c++ {
				occ[r][c] = true
			}
		}
	}

	var items []*gridItem
	placed := map[*Box]bool{}

	for _, c := range children {
		colStartLine, colSpan, colAuto := gridLineOf(c.Style, "grid-column-start")
		colEndLine, colEndSpan, colEndAuto := gridLineOf(c.Style, "grid-column-end")
		rowStartLine, rowSpan, rowAuto := gridLineOf(c.Style, "grid-row-start")
		rowEndLine, rowEndSpan, rowEndAuto := gridLineOf(c.Style, "grid-row-end")

		cs, csOK := resolveDefiniteLine(colStartLine, numCols)
		rs, rsOK := resolveDefiniteLine(rowStartLine, len(occ))
		if !colAuto && csOK && !rowAuto && rsOK {
			ce := cs + 1
			if !colEndAuto {
				if colEndSpan > 0 {
					ce = cs + colEndSpan
				} else if v, ok := resolveDefiniteLine(colEndLine, numCols); ok {
					ce = v
				}
			} else if colSpan > 0 {
				ce = cs + colSpan
			}
			re := rs + 1
			if !rowEndAuto {
				if rowEndSpan > 0 {
					re = rs + rowEndSpan
				} else if v, ok := resolveDefiniteLine(rowEndLine, len(occ)); ok {
					re = v
				}
			} else if rowSpan > 0 {
				re = rs + rowSpan
			}
			grow(re)
			mark(cs, ce, rs, re)
			items = append(items, &gridItem{box: c, pos: gridPosition{cs, ce, rs, re}})
			placed[c] = true
		}
	}

	cursorRow, cursorCol := 0, 0
	for _, c := range children {
		if placed[c] {
			continue
		}
		colStartLine, colSpan, colAuto := gridLineOf(c.Style, "grid-column-start")
		_, colEndSpanOnly, _ := gridLineOf(c.Style, "grid-column-end")
		rowSpan := 1
		if _, rs, _ := gridLineOf(c.Style, "grid-row-end"); rs > 0 {
			rowSpan = rs
		}
		colSpanTotal := 1
		if colSpan > 0 {
			colSpanTotal = colSpan
		} else if colEndSpanOnly > 0 {
			colSpanTotal = colEndSpanOnly
		}

		if !colAuto {
			cs, _ := resolveDefiniteLine(colStartLine, numCols)
			ce := cs + colSpanTotal
			r := 0
			for {
				re := r + rowSpan
				grow(re)
				if free(cs, ce, r, re) {
					mark(cs, ce, r, re)
					items = append(items, &gridItem{box: c, pos: gridPosition{cs, ce, r, re}})
					break
				}
				r++
			}
			continue
		}

		if autoFlow == "column" {
			for {
				ce := cursorCol + colSpanTotal
				re := cursorRow + rowSpan
				grow(re)
				if ce <= numCols && free(cursorCol, ce, cursorRow, re) {
					mark(cursorCol, ce, cursorRow, re)
					items = append(items, &gridItem{box: c, pos: gridPosition{cursorCol, ce, cursorRow, re}})
					break
				}
				cursorRow++
				if cursorRow+rowSpan > len(occ)+1 {
					cursorRow = 0
					cursorCol++
					if cursorCol >= numCols {
						cursorCol = 0
						cursorRow = len(occ)
					}
				}
			}
		} else {
			for {
				ce := cursorCol + colSpanTotal
				re := cursorRow + rowSpan
				if ce <= numCols {
					grow(re)
					if free(cursorCol, ce, cursorRow, re) {
						mark(cursorCol, ce, cursorRow, re)
						items = append(items, &gridItem{box: c, pos: gridPosition{cursorCol, ce, cursorRow, re}})
						break
					}
				}
				cursorCol++
				if cursorCol+colSpanTotal > numCols {
					cursorCol = 0
					cursorRow++
				}
			}
		}
	}

	return items
}

func resolveColumnTracks(template []track, numTracks int, available, gap float64, items []*gridItem, ctx *Context) []float64 {
	sizes := make([]float64, numTracks)
	totalFixed := 0.0
	totalFr := 0.0
	totalGaps := 0.0
	if numTracks > 1 {
		totalGaps = gap * float64(numTracks-1)
	}

	trackAt := func(i int) track {
		if i < len(template) {
			return template[i]
		}
		return track{kind: trackAuto}
	}

	for i := range sizes {
		switch td := trackAt(i); td.kind {
		case trackFixed:
			sizes[i] = td.px
			totalFixed += td.px
		case trackAuto:
			maxContent := 0.0
			for _, it := range items {
				if it.pos.colStart == i && it.pos.colEnd == i+1 {
					if w := measureMaxContentWidth(it.box, ctx); w > maxContent {
						maxContent = w
					}
				}
			}
			sizes[i] = maxContent
			totalFixed += maxContent
		case trackFr:
			totalFr += td.fr
		}
	}

	if totalFr > 0 {
		free := available - totalFixed - totalGaps
		if free < 0 {
			free = 0
		}
		pxPerFr := free / totalFr
		for i := range sizes {
			if td := trackAt(i); td.kind == trackFr {
				sizes[i] = pxPerFr * td.fr
			}
		}
	}
	return sizes
}

func resolveRowTracks(template []track, numRows int, items []*gridItem, childHeights map[*Box]float64) []float64 {
	sizes := make([]float64, numRows)
	for i := range sizes {
		td := track{kind: trackAuto}
		if i < len(template) {
			td = template[i]
		}
		if td.kind == trackFixed {
			sizes[i] = td.px
			continue
		}
		maxH := 0.0
		for _, it := range items {
			if it.pos.rowStart == i && it.pos.rowEnd == i+1 {
				if h := childHeights[it.box]; h > maxH {
					maxH = h
				}
			}
		}
		sizes[i] = maxH
	}
	return sizes
}

func trackOffsets(sizes []float64, gap, start float64) []float64 {
	out := make([]float64, len(sizes))
	pos := start
	for i, s := range sizes {
		out[i] = pos
		pos += s
		if i < len(sizes)-1 {
			pos += gap
		}
	}
	return out
}

func trackSpanSize(sizes []float64, start, end int, gap float64) float64 {
	if start >= end || start >= len(sizes) {
		return 0
	}
	if end > len(sizes) {
		end = len(sizes)
	}
	sum := 0.0
	for _, s := range sizes[start:end] {
		sum += s
	}
	gaps := end - start - 1
	if gaps > 0 {
		sum += gap * float64(gaps)
	}
	return sum
}
