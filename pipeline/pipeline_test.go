package pipeline

import (
	"testing"

	"koala/layout"
	"koala/paint"

	"github.com/stretchr/testify/require"
)

func TestRenderProducesLaidOutRootAndDisplayList(t *testing.T) {
	p := &Pipeline{}
	res := p.Render(`<html><body><div style="background-color:#ff0000;width:100px;height:50px"></div></body></html>`, 800, 600)

	require.NotNil(t, res.Root)
	require.NotEmpty(t, res.Display)

	var found bool
	for _, c := range res.Display {
		if c.Kind == paint.FillRect && c.Color.R == 255 {
			found = true
		}
	}
	require.True(t, found, "expected a red fill command from the inline style")
}

func TestRenderAppliesStyleElementRules(t *testing.T) {
	p := &Pipeline{}
	res := p.Render(`<html><head><style>div { width: 200px; height: 20px; }</style></head><body><div></div></body></html>`, 800, 600)

	require.NotNil(t, res.Root)
	div := findByTag(res.Root, "div")
	require.NotNil(t, div)
	require.InDelta(t, 200.0, div.ContentRect.W, 0.01)
}

func TestRelayoutReflowsAgainstNewViewport(t *testing.T) {
	p := &Pipeline{}
	res := p.Render(`<html><body><div style="width:50%"></div></body></html>`, 800, 600)
	div := findByTag(res.Root, "div")
	require.InDelta(t, 400.0, div.ContentRect.W, 0.01)

	p.Relayout(res, 400, 300)
	require.InDelta(t, 200.0, div.ContentRect.W, 0.01)
}

func TestRenderCountsParseErrorsInDiagSink(t *testing.T) {
	p := &Pipeline{}
	res := p.Render(`<div><p></div></p>`, 800, 600)
	require.NotNil(t, res.Diag)
	require.Greater(t, res.Diag.Count(), 0)
}

func findByTag(b *layout.Box, tag string) *layout.Box {
	if b == nil {
		return nil
	}
	if b.Tag == tag {
		return b
	}
	for _, c := range b.Children {
		if found := findByTag(c, tag); found != nil {
			return found
		}
	}
	return nil
}
