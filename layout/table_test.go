package layout

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func cellBox(tag string, colspan int, children ...*Box) *Box {
	if colspan < 1 {
		colspan = 1
	}
	return &Box{Kind: BlockBox, Tag: tag, Colspan: colspan, Style: blockStyle(nil), Children: children}
}

func rowBox(cells ...*Box) *Box {
	return &Box{Kind: BlockBox, Tag: "tr", Style: blockStyle(nil), Children: cells}
}

func TestLayoutTableBasicGrid(t *testing.T) {
	ctx := &Context{Metrics: stubMetrics{}, ViewportW: 800, ViewportH: 600}

	table := &Box{
		Kind:  BlockBox,
		Tag:   "table",
		Style: blockStyle(map[string]string{"width": "300px"}),
		Children: []*Box{
			rowBox(
				cellBox("td", 1, textBox("aa", inlineStyle(nil))),
				cellBox("td", 1, textBox("bb", inlineStyle(nil))),
			),
			rowBox(
				cellBox("td", 1, textBox("cc", inlineStyle(nil))),
				cellBox("td", 1, textBox("dd", inlineStyle(nil))),
			),
		},
	}

	layoutTable(table, Rect{X: 0, Y: 0, W: 800, H: 600}, ctx)

	require.Len(t, table.Children, 2)
	row0 := table.Children[0]
	row1 := table.Children[1]
	require.Equal(t, "tr", row0.Tag)
	require.Greater(t, row0.ContentRect.H, 0.0)
	require.Greater(t, row1.ContentRect.Y, row0.ContentRect.Y)

	// two columns of equal max-content width should each get ~half the
	// table's available column space (minus border-spacing).
	c0 := row0.Children[0]
	c1 := row0.Children[1]
	require.InDelta(t, c0.ContentRect.W, c1.ContentRect.W, 0.01)
	require.Greater(t, c1.ContentRect.X, c0.ContentRect.X)
}

func TestLayoutTableColspan(t *testing.T) {
	ctx := &Context{Metrics: stubMetrics{}, ViewportW: 800, ViewportH: 600}

	table := &Box{
		Kind:  BlockBox,
		Tag:   "table",
		Style: blockStyle(map[string]string{"width": "400px"}),
		Children: []*Box{
			rowBox(cellBox("td", 2, textBox("spanning", inlineStyle(nil)))),
			rowBox(
				cellBox("td", 1, textBox("a", inlineStyle(nil))),
				cellBox("td", 1, textBox("b", inlineStyle(nil))),
			),
		},
	}

	layoutTable(table, Rect{X: 0, Y: 0, W: 800, H: 600}, ctx)

	spanCell := table.Children[0].Children[0]
	row2 := table.Children[1]
	wantWidth := row2.Children[0].ContentRect.W + row2.Children[1].ContentRect.W + tableBorderSpacing
	require.InDelta(t, wantWidth, spanCell.ContentRect.W, 0.01)
}

func TestLayoutTableRowGroups(t *testing.T) {
	ctx := &Context{Metrics: stubMetrics{}, ViewportW: 800, ViewportH: 600}

	thead := &Box{Kind: BlockBox, Tag: "thead", Style: blockStyle(nil), Children: []*Box{
		rowBox(cellBox("th", 1, textBox("Name", inlineStyle(nil)))),
	}}
	tbody := &Box{Kind: BlockBox, Tag: "tbody", Style: blockStyle(nil), Children: []*Box{
		rowBox(cellBox("td", 1, textBox("Alice", inlineStyle(nil)))),
		rowBox(cellBox("td", 1, textBox("Bob", inlineStyle(nil)))),
	}}

	table := &Box{
		Kind:     BlockBox,
		Tag:      "table",
		Style:    blockStyle(map[string]string{"width": "200px"}),
		Children: []*Box{thead, tbody},
	}

	layoutTable(table, Rect{X: 0, Y: 0, W: 800, H: 600}, ctx)

	rows := collectTableRows(table)
	require.Len(t, rows, 3)
	require.Greater(t, table.ContentRect.H, 0.0)
}

func TestLayoutTableEmpty(t *testing.T) {
	ctx := &Context{Metrics: stubMetrics{}, ViewportW: 800, ViewportH: 600}
	table := &Box{Kind: BlockBox, Tag: "table", Style: blockStyle(nil)}
	layoutTable(table, Rect{X: 0, Y: 0, W: 800, H: 600}, ctx)
	require.Equal(t, 0.0, table.ContentRect.H)
}

func TestCellSpanWidth(t *testing.T) {
	widths := []float64{10, 20, 30}
	require.Equal(t, 10.0, cellSpanWidth(widths, 0, 1))
	require.Equal(t, 10.0+tableBorderSpacing+20.0, cellSpanWidth(widths, 0, 2))
	require.Equal(t, 10.0+tableBorderSpacing+20.0+tableBorderSpacing+30.0, cellSpanWidth(widths, 0, 3))
}
