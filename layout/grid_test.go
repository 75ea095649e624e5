package layout

import (
	"testing"

	"koala/csstok"

	"github.com/stretchr/testify/require"
)

func gridChild(props map[string]string) *Box {
	return blockBox(blockStyle(props))
}

func TestLayoutGridContainerFixedAndFrTracks(t *testing.T) {
	ctx := &Context{Metrics: stubMetrics{}, ViewportW: 800, ViewportH: 600}

	container := blockBox(blockStyle(map[string]string{
		"width":                 "300px",
		"grid-template-columns": "100px 1fr 1fr",
	}), gridChild(nil), gridChild(nil), gridChild(nil))
	container.Style.InnerDisplay = "grid"

	layoutGridContainer(container, Rect{X: 0, Y: 0, W: 800, H: 600}, ctx)

	c0, c1, c2 := container.Children[0], container.Children[1], container.Children[2]
	require.InDelta(t, 100.0, c0.ContentRect.W, 0.01)
	require.InDelta(t, 100.0, c1.ContentRect.W, 0.01)
	require.InDelta(t, 100.0, c2.ContentRect.W, 0.01)
	require.Less(t, c0.ContentRect.X, c1.ContentRect.X)
	require.Less(t, c1.ContentRect.X, c2.ContentRect.X)
}

func TestLayoutGridContainerRepeat(t *testing.T) {
	tracks := expandTrackTokens(csstok.NewTokenizer("repeat(3, 1fr)").All())
	require.Len(t, tracks, 3)
	for _, tr := range tracks {
		require.Equal(t, trackFr, tr.kind)
		require.Equal(t, 1.0, tr.fr)
	}
}

func TestLayoutGridContainerMinmax(t *testing.T) {
	tracks := expandTrackTokens(csstok.NewTokenizer("minmax(50px, 1fr)").All())
	require.Len(t, tracks, 1)
	require.Equal(t, trackFr, tracks[0].kind)
}

func TestLayoutGridContainerAutoPlacementWraps(t *testing.T) {
	ctx := &Context{Metrics: stubMetrics{}, ViewportW: 800, ViewportH: 600}

	container := blockBox(blockStyle(map[string]string{
		"width":                 "200px",
		"grid-template-columns": "100px 100px",
	}),
		gridChild(map[string]string{"height": "40px"}),
		gridChild(map[string]string{"height": "40px"}),
		gridChild(map[string]string{"height": "40px"}),
	)
	container.Style.InnerDisplay = "grid"

	layoutGridContainer(container, Rect{X: 0, Y: 0, W: 800, H: 600}, ctx)

	c0, c2 := container.Children[0], container.Children[2]
	require.Less(t, c0.ContentRect.Y, c2.ContentRect.Y)
}

func TestLayoutGridContainerExplicitPlacement(t *testing.T) {
	ctx := &Context{Metrics: stubMetrics{}, ViewportW: 800, ViewportH: 600}

	placed := gridChild(map[string]string{"grid-column-start": "2", "grid-row-start": "1"})
	container := blockBox(blockStyle(map[string]string{
		"width":                 "200px",
		"grid-template-columns": "100px 100px",
	}), placed)
	container.Style.InnerDisplay = "grid"

	layoutGridContainer(container, Rect{X: 0, Y: 0, W: 800, H: 600}, ctx)

	require.InDelta(t, 100.0, placed.ContentRect.X, 0.01)
}

func TestTrackSpanSize(t *testing.T) {
	sizes := []float64{10, 20, 30}
	require.Equal(t, 10.0, trackSpanSize(sizes, 0, 1, 5))
	require.Equal(t, 35.0, trackSpanSize(sizes, 0, 2, 5))
}

func TestResolveDefiniteLine(t *testing.T) {
	idx, ok := resolveDefiniteLine(2, 5)
	require.True(t, ok)
	require.Equal(t, 1, idx)

	idx, ok = resolveDefiniteLine(-1, 5)
	require.True(t, ok)
	require.Equal(t, 4, idx)

	_, ok = resolveDefiniteLine(0, 5)
	require.False(t, ok)
}
