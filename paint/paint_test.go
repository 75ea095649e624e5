package paint

import (
	"testing"

	"koala/cascade"
	"koala/cssparse"
	"koala/csstok"
	"koala/cssvalue"
	"koala/layout"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func style(props map[string]string) *cascade.ComputedStyle {
	cs := &cascade.ComputedStyle{Properties: make(map[string]cssparse.Declaration), FontSizePx: 16}
	for name, value := range props {
		cs.Properties[name] = cssparse.Declaration{Property: name, Value: csstok.NewTokenizer(value).All()}
	}
	return cs
}

func TestPaintEmitsBackgroundFill(t *testing.T) {
	box := &layout.Box{
		Kind:        layout.BlockBox,
		Style:       style(map[string]string{"background-color": "#ff0000"}),
		ContentRect: layout.Rect{X: 10, Y: 10, W: 100, H: 50},
	}

	cmds := Paint(box)
	require.Len(t, cmds, 1)
	require.Equal(t, FillRect, cmds[0].Kind)
	require.Equal(t, uint8(255), cmds[0].Color.R)
}

func TestPaintEmitsRoundedRectWhenBorderRadiusSet(t *testing.T) {
	box := &layout.Box{
		Kind:        layout.BlockBox,
		Style:       style(map[string]string{"background-color": "blue", "border-radius": "8px"}),
		ContentRect: layout.Rect{W: 100, H: 50},
	}

	cmds := Paint(box)
	require.Len(t, cmds, 1)
	require.Equal(t, FillRoundedRect, cmds[0].Kind)
	require.InDelta(t, 8.0, cmds[0].Radius, 0.01)
}

func TestPaintSkipsTransparentBackground(t *testing.T) {
	box := &layout.Box{Kind: layout.BlockBox, Style: style(nil), ContentRect: layout.Rect{W: 10, H: 10}}
	require.Empty(t, Paint(box))
}

func TestPaintEmitsBorderStrokesForNonZeroSides(t *testing.T) {
	box := &layout.Box{
		Kind:        layout.BlockBox,
		Style:       style(map[string]string{"border-top-color": "black"}),
		ContentRect: layout.Rect{W: 100, H: 50},
		Border:      layout.Edges{Top: 2, Right: 0, Bottom: 0, Left: 0},
	}

	cmds := Paint(box)
	require.Len(t, cmds, 1)
	require.Equal(t, StrokeBorder, cmds[0].Kind)
	require.Equal(t, BorderTop, cmds[0].Side)
	require.InDelta(t, 2.0, cmds[0].Thickness, 0.01)
}

func TestPaintWalksBlockChildrenInOrder(t *testing.T) {
	first := &layout.Box{Kind: layout.BlockBox, Style: style(map[string]string{"background-color": "red"}), ContentRect: layout.Rect{Y: 0, W: 10, H: 10}}
	second := &layout.Box{Kind: layout.BlockBox, Style: style(map[string]string{"background-color": "green"}), ContentRect: layout.Rect{Y: 10, W: 10, H: 10}}
	root := &layout.Box{Kind: layout.BlockBox, Style: style(nil), Children: []*layout.Box{first, second}}

	cmds := Paint(root)
	require.Len(t, cmds, 2)
	require.Equal(t, uint8(255), cmds[0].Color.R) // red first
	require.Equal(t, uint8(128), cmds[1].Color.G) // green second
}

func TestPaintDefersPositionedDescendantsToTheEnd(t *testing.T) {
	positioned := &layout.Box{
		Kind:        layout.BlockBox,
		Style:       style(map[string]string{"background-color": "red", "position": "absolute"}),
		ContentRect: layout.Rect{W: 10, H: 10},
	}
	normal := &layout.Box{
		Kind:        layout.BlockBox,
		Style:       style(map[string]string{"background-color": "green"}),
		ContentRect: layout.Rect{W: 10, H: 10},
	}
	// positioned appears first in DOM order but must paint last.
	root := &layout.Box{Kind: layout.BlockBox, Style: style(nil), Children: []*layout.Box{positioned, normal}}

	cmds := Paint(root)
	require.Len(t, cmds, 2)
	require.Equal(t, uint8(128), cmds[0].Color.G) // green (in-flow) painted first
	require.Equal(t, uint8(255), cmds[1].Color.R) // red (positioned) painted last
}

func TestPaintEmitsImageForReplacedBox(t *testing.T) {
	box := &layout.Box{
		Kind:        layout.ReplacedBox,
		Src:         "logo.png",
		Style:       style(nil),
		ContentRect: layout.Rect{W: 40, H: 20},
	}

	cmds := Paint(box)
	require.Len(t, cmds, 1)
	require.Equal(t, DrawImage, cmds[0].Kind)
	require.Equal(t, "logo.png", cmds[0].Src)
}

func TestPaintEmitsTextRunFromLineBoxFragments(t *testing.T) {
	box := &layout.Box{
		Kind:  layout.BlockBox,
		Style: style(map[string]string{"text-decoration": "underline"}),
		Lines: []*layout.LineBox{
			{
				Fragments: []*layout.Fragment{
					{Kind: layout.TextFragment, Text: "hi", FontFamily: "sans-serif", FontSizePx: 16, Rect: layout.Rect{X: 0, Y: 0, W: 20, H: 20}},
				},
			},
		},
	}

	cmds := Paint(box)
	require.Len(t, cmds, 1)
	require.Equal(t, DrawText, cmds[0].Kind)
	require.Equal(t, "hi", cmds[0].Text)
	require.Equal(t, "underline", cmds[0].Decoration)
}

func TestPaintEmitsBoxShadowBeforeBackground(t *testing.T) {
	box := &layout.Box{
		Kind:        layout.BlockBox,
		Style:       style(map[string]string{"box-shadow": "2px 3px 4px black", "background-color": "white"}),
		ContentRect: layout.Rect{W: 10, H: 10},
	}

	cmds := Paint(box)
	require.Len(t, cmds, 2)
	require.Equal(t, DrawBoxShadow, cmds[0].Kind)
	require.InDelta(t, 2.0, cmds[0].Rect.X, 0.01)
	require.InDelta(t, 4.0, cmds[0].BlurPx, 0.01)
	require.Equal(t, FillRect, cmds[1].Kind)
}

func TestPaintCommandFieldsMatchExactly(t *testing.T) {
	box := &layout.Box{
		Kind:        layout.BlockBox,
		Style:       style(map[string]string{"background-color": "rgb(0, 0, 255)"}),
		ContentRect: layout.Rect{X: 5, Y: 5, W: 20, H: 10},
	}

	want := Command{Kind: FillRect, Rect: layout.Rect{X: 5, Y: 5, W: 20, H: 10}, Color: cssvalue.Color{B: 255, A: 255}}
	got := Paint(box)
	require.Len(t, got, 1)
	if diff := cmp.Diff(want, got[0]); diff != "" {
		t.Errorf("unexpected display-list command (-want +got):\n%s", diff)
	}
}

func TestPaintSkipsNilAndTextBoxes(t *testing.T) {
	require.Empty(t, Paint(nil))
	require.Empty(t, Paint(&layout.Box{Kind: layout.TextBox, Text: "hi"}))
}
