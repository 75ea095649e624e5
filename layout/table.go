package layout

import "koala/cssvalue"

// tableBorderSpacing is the fixed border-spacing used by the separated
// borders model (spec §4.9; CSS2.1 §17.6.1's UA default is 2px).
const tableBorderSpacing = 2.0

// tableCell is one cell box together with its colspan.
type tableCell struct {
	box     *Box
	colspan int
}

// tableRow is one <tr>'s cells, plus the <tr> box itself (for sizing the
// row's own bounding rect).
type tableRow struct {
	tr    *Box
	cells []tableCell
}

// layoutTable implements CSS2.1 §17.5.2's automatic table layout (spec
// §4.9): structural row collection from direct <tr> children or
// <thead>/<tbody>/<tfoot> row groups, max-content column widths, a
// two-pass cell layout, and fixed 2px border-spacing. rowspan,
// border-collapse, <caption>, and table-layout:fixed are not implemented.
func layoutTable(box *Box, cb Rect, ctx *Context) {
	layoutBlock(box, cb, ctx)
	content := box.ContentRect

	rows := collectTableRows(box)
	if len(rows) == 0 {
		box.ContentRect.H = 0
		return
	}

	numCols := 0
	for _, r := range rows {
		span := 0
		for _, c := range r.cells {
			span += c.colspan
		}
		if span > numCols {
			numCols = span
		}
	}
	if numCols == 0 {
		box.ContentRect.H = 0
		return
	}

	colWidths := determineColumnWidths(rows, numCols, content.W, box, ctx)
	rowHeights := layoutCellsAndMeasureRowHeights(rows, colWidths, numCols, ctx)
	positionCells(rows, colWidths, rowHeights, content, ctx)

	totalSpacingY := tableBorderSpacing * float64(len(rowHeights)+1)
	contentHeight := sum(rowHeights) + totalSpacingY

	_, heightAuto := resolvePx(lengthOrAuto(box.Style, "height", cssvalue.Auto()), resolveVerticalContext(box.Style, cb.H))
	if heightAuto {
		box.ContentRect.H = contentHeight
	} else if box.ContentRect.H < contentHeight {
		box.ContentRect.H = contentHeight
	}
}

func collectTableRows(table *Box) []tableRow {
	var rows []tableRow
	for _, c := range table.Children {
		if c.Kind == TextBox || isOutOfFlow(c) {
			continue
		}
		switch c.Tag {
		case "tr":
			rows = append(rows, tableRow{tr: c, cells: collectCellsFromRow(c)})
		case "thead", "tbody", "tfoot":
			for _, rc := range c.Children {
				if rc.Tag == "tr" {
					rows = append(rows, tableRow{tr: rc, cells: collectCellsFromRow(rc)})
				}
			}
		}
	}
	return rows
}

func collectCellsFromRow(tr *Box) []tableCell {
	var cells []tableCell
	for _, c := range tr.Children {
		if c.Tag == "td" || c.Tag == "th" {
			colspan := c.Colspan
			if colspan < 1 {
				colspan = 1
			}
			cells = append(cells, tableCell{box: c, colspan: colspan})
		}
	}
	return cells
}

func determineColumnWidths(rows []tableRow, numCols int, available float64, table *Box, ctx *Context) []float64 {
	colMax := make([]float64, numCols)
	for _, r := range rows {
		colCursor := 0
		for _, cell := range r.cells {
			if cell.colspan == 1 && colCursor < numCols {
				if w := measureMaxContentWidth(cell.box, ctx); w > colMax[colCursor] {
					colMax[colCursor] = w
				}
				wv := lengthOrAuto(cell.box.Style, "width", cssvalue.Auto())
				if !wv.IsAuto {
					hctx := resolveBoxModelContext(cell.box.Style, available, 0)
					if px := wv.Length.ResolvePx(hctx); px > colMax[colCursor] {
						colMax[colCursor] = px
					}
				}
			}
			colCursor += cell.colspan
		}
	}

	totalSpacingX := tableBorderSpacing * float64(numCols+1)
	maxContentWidth := sum(colMax) + totalSpacingX

	tableWidth := lengthOrAuto(table.Style, "width", cssvalue.Auto())
	if !tableWidth.IsAuto {
		spaceForColumns := available - totalSpacingX
		if spaceForColumns < 0 {
			spaceForColumns = 0
		}
		contentSum := sum(colMax)
		if contentSum <= 0 {
			return evenSplit(spaceForColumns, numCols)
		}
		if contentSum <= spaceForColumns {
			bonus := (spaceForColumns - contentSum) / float64(numCols)
			out := make([]float64, numCols)
			for i, w := range colMax {
				out[i] = w + bonus
			}
			return out
		}
		scale := spaceForColumns / contentSum
		return scaleAll(colMax, scale)
	}

	if maxContentWidth <= available {
		return colMax
	}
	spaceForColumns := available - totalSpacingX
	if spaceForColumns < 0 {
		spaceForColumns = 0
	}
	contentSum := sum(colMax)
	if contentSum <= 0 {
		return evenSplit(spaceForColumns, numCols)
	}
	scale := spaceForColumns / contentSum
	return scaleAll(colMax, scale)
}

func layoutCellsAndMeasureRowHeights(rows []tableRow, colWidths []float64, numCols int, ctx *Context) []float64 {
	heights := make([]float64, len(rows))
	for ri, r := range rows {
		maxH := 0.0
		colCursor := 0
		for _, cell := range r.cells {
			if colCursor >= numCols {
				break
			}
			span := cell.colspan
			if colCursor+span > numCols {
				span = numCols - colCursor
			}
			width := cellSpanWidth(colWidths, colCursor, span)
			tempCB := Rect{X: 0, Y: 0, W: width, H: 1e9}
			layoutBlockLevelBox(cell.box, tempCB, ctx)
			if h := cell.box.MarginBoxRect().H; h > maxH {
				maxH = h
			}
			colCursor += span
		}
		heights[ri] = maxH
	}
	return heights
}

func positionCells(rows []tableRow, colWidths []float64, rowHeights []float64, content Rect, ctx *Context) {
	colOffsets := make([]float64, len(colWidths))
	x := content.X + tableBorderSpacing
	for i, w := range colWidths {
		colOffsets[i] = x
		x += w + tableBorderSpacing
	}

	currentY := content.Y + tableBorderSpacing
	for ri, r := range rows {
		rowHeight := rowHeights[ri]
		colCursor := 0
		for _, cell := range r.cells {
			if colCursor >= len(colWidths) {
				break
			}
			span := cell.colspan
			if colCursor+span > len(colWidths) {
				span = len(colWidths) - colCursor
			}
			width := cellSpanWidth(colWidths, colCursor, span)
			cellX := colOffsets[colCursor]
			layoutBlockLevelBox(cell.box, Rect{X: cellX, Y: currentY, W: width, H: rowHeight}, ctx)
			colCursor += span
		}
		r.tr.ContentRect = Rect{X: content.X, Y: currentY, W: content.W, H: rowHeight}
		currentY += rowHeight + tableBorderSpacing
	}
}

func cellSpanWidth(colWidths []float64, start, span int) float64 {
	end := start + span
	if end > len(colWidths) {
		end = len(colWidths)
	}
	w := 0.0
	for _, c := range colWidths[start:end] {
		w += c
	}
	if span > 1 {
		w += tableBorderSpacing * float64(span-1)
	}
	return w
}

func sum(vs []float64) float64 {
	s := 0.0
	for _, v := range vs {
		s += v
	}
	return s
}

func evenSplit(total float64, n int) []float64 {
	out := make([]float64, n)
	per := total / float64(n)
	for i := range out {
		out[i] = per
	}
	return out
}

func scaleAll(vs []float64, scale float64) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = v * scale
	}
	return out
}
