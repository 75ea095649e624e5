package layout

import (
	"testing"

	"koala/imageregistry"

	"github.com/stretchr/testify/require"
)

func TestLayoutInlineFormattingContextWraps(t *testing.T) {
	ctx := &Context{Metrics: stubMetrics{}, ViewportW: 800, ViewportH: 600}

	// stubMetrics: 10px/char. "hello" = 50px, "world" = 50px; a 60px line
	// fits one word, forcing a wrap before the second.
	box := blockBox(blockStyle(map[string]string{"width": "60px"}), textBox("hello world", inlineStyle(nil)))
	layoutBlock(box, Rect{X: 0, Y: 0, W: 800, H: 600}, ctx)

	require.Len(t, box.Lines, 2)
	require.Equal(t, "hello", box.Lines[0].Fragments[0].Text)
	require.Equal(t, "world", box.Lines[1].Fragments[0].Text)
	require.Greater(t, box.Lines[1].Rect.Y, box.Lines[0].Rect.Y)
}

func TestLayoutInlineFormattingContextSingleLineNoOverflowGuard(t *testing.T) {
	ctx := &Context{Metrics: stubMetrics{}, ViewportW: 800, ViewportH: 600}

	// width smaller than a single word: the current_x==0 guard must still
	// place the (overflowing) word on the first line rather than looping.
	box := blockBox(blockStyle(map[string]string{"width": "5px"}), textBox("hello", inlineStyle(nil)))
	layoutBlock(box, Rect{X: 0, Y: 0, W: 800, H: 600}, ctx)

	require.Len(t, box.Lines, 1)
	require.Len(t, box.Lines[0].Fragments, 1)
}

func TestCollectInlineWordsSkipsOutOfFlowChildren(t *testing.T) {
	abs := blockBox(blockStyle(map[string]string{"position": "absolute"}))
	text := textBox("hi", inlineStyle(nil))
	box := blockBox(blockStyle(nil), text, abs)

	words := collectInlineWords(box)
	require.Len(t, words, 1)
	require.Equal(t, "hi", words[0].text)
}

func TestLayoutInlineFormattingContextSizesReplacedFragment(t *testing.T) {
	images := imageregistry.NewMemory()
	images.Set("logo.png", imageregistry.Dimensions{Width: 40, Height: 20})
	ctx := &Context{Metrics: stubMetrics{}, Images: images, ViewportW: 800, ViewportH: 600}

	img := &Box{Kind: ReplacedBox, Tag: "img", Src: "logo.png", Style: inlineStyle(nil)}
	box := blockBox(blockStyle(map[string]string{"width": "400px", "margin-left": "20px"}), img)
	layoutBlock(box, Rect{X: 0, Y: 0, W: 800, H: 600}, ctx)

	require.Len(t, box.Lines, 1)
	require.Len(t, box.Lines[0].Fragments, 1)
	frag := box.Lines[0].Fragments[0]
	require.Equal(t, ReplacedFragment, frag.Kind)
	require.InDelta(t, 40.0, frag.Rect.W, 0.01)
	require.Same(t, img, frag.Box)
	// The replaced box was measured at the origin; it must be repositioned
	// to the fragment's final rect, not left at the origin.
	require.InDelta(t, box.ContentRect.X, img.ContentRect.X, 0.01)
}

func TestLayoutInlineFormattingContextWrapsBeforeOverflowingReplacedFragment(t *testing.T) {
	images := imageregistry.NewMemory()
	images.Set("logo.png", imageregistry.Dimensions{Width: 40, Height: 20})
	ctx := &Context{Metrics: stubMetrics{}, Images: images, ViewportW: 800, ViewportH: 600}

	// stubMetrics: "hi" = 20px. A 50px line fits "hi" but not also a 40px
	// image, so the image must wrap to its own line.
	img := &Box{Kind: ReplacedBox, Tag: "img", Src: "logo.png", Style: inlineStyle(nil)}
	box := blockBox(blockStyle(map[string]string{"width": "50px"}), textBox("hi", inlineStyle(nil)), img)
	layoutBlock(box, Rect{X: 0, Y: 0, W: 800, H: 600}, ctx)

	require.Len(t, box.Lines, 2)
	require.Equal(t, ReplacedFragment, box.Lines[1].Fragments[0].Kind)
}

func TestSplitWordsTracksTrailingSpace(t *testing.T) {
	tb := textBox("a b  c", inlineStyle(nil))
	words := splitWords(tb)
	require.Len(t, words, 3)
	require.Equal(t, "a", words[0].text)
	require.True(t, words[0].followedBySpace)
	require.Equal(t, "c", words[2].text)
	require.False(t, words[2].followedBySpace)
}
