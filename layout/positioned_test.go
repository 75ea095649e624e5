package layout

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLayoutRelativeShiftsWithoutAffectingSiblings(t *testing.T) {
	ctx := &Context{Metrics: stubMetrics{}, ViewportW: 800, ViewportH: 600}

	moved := blockBox(blockStyle(map[string]string{
		"position": "relative", "top": "10px", "left": "20px", "width": "50px", "height": "50px",
	}))
	sibling := blockBox(blockStyle(map[string]string{"width": "50px", "height": "50px"}))

	container := blockBox(blockStyle(map[string]string{"width": "400px"}), moved, sibling)
	layoutBlock(container, Rect{X: 0, Y: 0, W: 800, H: 600}, ctx)

	require.InDelta(t, 20.0, moved.ContentRect.X, 0.01)
	require.InDelta(t, 10.0, moved.ContentRect.Y, 0.01)
	// The sibling below is positioned as if `moved` never shifted.
	require.InDelta(t, 50.0, sibling.ContentRect.Y, 0.01)
}

func TestLayoutRelativeRightWins(t *testing.T) {
	box := blockBox(blockStyle(map[string]string{"position": "relative", "right": "30px"}))
	layoutRelative(box, Rect{X: 0, Y: 0, W: 0, H: 0})
	require.InDelta(t, -30.0, box.ContentRect.X, 0.01)
}

func TestLayoutAbsoluteStaticFallback(t *testing.T) {
	ctx := &Context{Metrics: stubMetrics{}, ViewportW: 800, ViewportH: 600}

	box := blockBox(blockStyle(map[string]string{"position": "absolute", "width": "50px", "height": "50px"}))
	layoutAbsolute(box, Rect{X: 0, Y: 0, W: 300, H: 300}, ctx)

	require.InDelta(t, 0.0, box.ContentRect.X, 0.01)
	require.InDelta(t, 0.0, box.ContentRect.Y, 0.01)
}

func TestLayoutAbsoluteLeftRightSolveWidth(t *testing.T) {
	ctx := &Context{Metrics: stubMetrics{}, ViewportW: 800, ViewportH: 600}

	box := blockBox(blockStyle(map[string]string{
		"position": "absolute", "left": "10px", "right": "20px",
	}))
	layoutAbsolute(box, Rect{X: 0, Y: 0, W: 300, H: 300}, ctx)

	require.InDelta(t, 270.0, box.ContentRect.W, 0.01)
}

func TestIsOutOfFlow(t *testing.T) {
	abs := blockBox(blockStyle(map[string]string{"position": "absolute"}))
	rel := blockBox(blockStyle(map[string]string{"position": "relative"}))
	stat := blockBox(blockStyle(nil))

	require.True(t, isOutOfFlow(abs))
	require.False(t, isOutOfFlow(rel))
	require.False(t, isOutOfFlow(stat))
}
