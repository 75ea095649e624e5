package layout

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func flexChild(props map[string]string, text string) *Box {
	style := blockStyle(props)
	return blockBox(style, textBox(text, inlineStyle(nil)))
}

func TestLayoutFlexContainerGrow(t *testing.T) {
	ctx := &Context{Metrics: stubMetrics{}, ViewportW: 800, ViewportH: 600}

	container := blockBox(blockStyle(map[string]string{"width": "300px"}),
		flexChild(map[string]string{"flex-grow": "1", "flex-basis": "0px"}, "a"),
		flexChild(map[string]string{"flex-grow": "1", "flex-basis": "0px"}, "a"),
	)
	container.Style.InnerDisplay = "flex"

	layoutFlexContainer(container, Rect{X: 0, Y: 0, W: 800, H: 600}, ctx)

	c0, c1 := container.Children[0], container.Children[1]
	require.InDelta(t, 150.0, c0.ContentRect.W, 0.01)
	require.InDelta(t, 150.0, c1.ContentRect.W, 0.01)
	require.InDelta(t, c0.MarginBoxRect().W, c1.ContentRect.X-c0.ContentRect.X, 0.01)
}

func TestLayoutFlexContainerShrink(t *testing.T) {
	ctx := &Context{Metrics: stubMetrics{}, ViewportW: 800, ViewportH: 600}

	container := blockBox(blockStyle(map[string]string{"width": "100px"}),
		flexChild(map[string]string{"flex-shrink": "1", "width": "80px"}, "a"),
		flexChild(map[string]string{"flex-shrink": "1", "width": "80px"}, "a"),
	)
	container.Style.InnerDisplay = "flex"

	layoutFlexContainer(container, Rect{X: 0, Y: 0, W: 800, H: 600}, ctx)

	c0, c1 := container.Children[0], container.Children[1]
	require.InDelta(t, 50.0, c0.ContentRect.W, 0.01)
	require.InDelta(t, 50.0, c1.ContentRect.W, 0.01)
}

func TestLayoutFlexContainerJustifyCenter(t *testing.T) {
	ctx := &Context{Metrics: stubMetrics{}, ViewportW: 800, ViewportH: 600}

	container := blockBox(blockStyle(map[string]string{"width": "200px", "justify-content": "center"}),
		flexChild(map[string]string{"width": "40px"}, "a"),
	)
	container.Style.InnerDisplay = "flex"

	layoutFlexContainer(container, Rect{X: 0, Y: 0, W: 800, H: 600}, ctx)

	require.InDelta(t, 80.0, container.Children[0].ContentRect.X, 0.01)
}

func TestLayoutFlexContainerWrap(t *testing.T) {
	ctx := &Context{Metrics: stubMetrics{}, ViewportW: 800, ViewportH: 600}

	container := blockBox(blockStyle(map[string]string{"width": "100px", "flex-wrap": "wrap"}),
		flexChild(map[string]string{"width": "60px"}, "a"),
		flexChild(map[string]string{"width": "60px"}, "a"),
	)
	container.Style.InnerDisplay = "flex"

	layoutFlexContainer(container, Rect{X: 0, Y: 0, W: 800, H: 600}, ctx)

	c0, c1 := container.Children[0], container.Children[1]
	require.Less(t, c0.ContentRect.Y, c1.ContentRect.Y)
}

func TestJustifyOffsetsSpaceBetween(t *testing.T) {
	offset, gap := justifyOffsets("space-between", 100, 3)
	require.Equal(t, 0.0, offset)
	require.Equal(t, 50.0, gap)
}

func TestJustifyOffsetsSingleItem(t *testing.T) {
	offset, gap := justifyOffsets("space-between", 100, 1)
	require.Equal(t, 0.0, offset)
	require.Equal(t, 0.0, gap)
}

func TestResolveFlexibleLengthsGrowDistributesProportionally(t *testing.T) {
	items := []*flexItem{
		{baseSize: 0, hypothetical: 0, grow: 1},
		{baseSize: 0, hypothetical: 0, grow: 3},
	}
	resolveFlexibleLengths(items, 100)
	require.InDelta(t, 25.0, items[0].target, 0.01)
	require.InDelta(t, 75.0, items[1].target, 0.01)
}
