package cascade

import (
	"testing"

	"github.com/stretchr/testify/require"

	"koala/cssparse"
	"koala/dom"
	"koala/htmltree"
)

func findTag(tree *dom.Tree, tag string) dom.NodeID {
	found := dom.NoNode
	tree.Walk(tree.Root, func(n dom.NodeID) bool {
		if tree.Node(n).Type == dom.ElementNode && tree.Node(n).Tag == tag {
			found = n
			return false
		}
		return true
	})
	return found
}

func TestBasicCascadeAndSpecificity(t *testing.T) {
	tree := htmltree.Parse(`<div class="box"><p>hi</p></div>`, nil)
	sheet := cssparse.Parse(`div { color: blue; } .box { color: red; }`)
	r := NewResolver(tree, []Sheet{{Stylesheet: sheet, Origin: OriginAuthor}})
	styles := r.ResolveAll(tree.Root)

	div := findTag(tree, "div")
	cs := styles[div]
	require.NotNil(t, cs)
	require.Equal(t, "red", tokensText(cs.Properties["color"].Value))
}

func TestImportantWinsOverHigherSpecificity(t *testing.T) {
	tree := htmltree.Parse(`<div class="box"></div>`, nil)
	sheet := cssparse.Parse(`.box { color: red !important; } div.box { color: blue; }`)
	r := NewResolver(tree, []Sheet{{Stylesheet: sheet, Origin: OriginAuthor}})
	styles := r.ResolveAll(tree.Root)
	div := findTag(tree, "div")
	require.Equal(t, "red", tokensText(styles[div].Properties["color"].Value))
}

func TestInheritance(t *testing.T) {
	tree := htmltree.Parse(`<div><p>hi</p></div>`, nil)
	sheet := cssparse.Parse(`div { color: green; }`)
	r := NewResolver(tree, []Sheet{{Stylesheet: sheet, Origin: OriginAuthor}})
	styles := r.ResolveAll(tree.Root)
	p := findTag(tree, "p")
	require.Equal(t, "green", tokensText(styles[p].Properties["color"].Value))
}

func TestMarginShorthandExpansion(t *testing.T) {
	tree := htmltree.Parse(`<div></div>`, nil)
	sheet := cssparse.Parse(`div { margin: 1px 2px 3px 4px; }`)
	r := NewResolver(tree, []Sheet{{Stylesheet: sheet, Origin: OriginAuthor}})
	styles := r.ResolveAll(tree.Root)
	div := findTag(tree, "div")
	cs := styles[div]
	require.Equal(t, "1px", cs.Properties["margin-top"].Value[0].Value)
	require.Equal(t, "2px", cs.Properties["margin-right"].Value[0].Value)
	require.Equal(t, "3px", cs.Properties["margin-bottom"].Value[0].Value)
	require.Equal(t, "4px", cs.Properties["margin-left"].Value[0].Value)
}

func TestVarResolutionWithFallback(t *testing.T) {
	tree := htmltree.Parse(`<div style="color: var(--missing, green);"></div>`, nil)
	r := NewResolver(tree, nil)
	styles := r.ResolveAll(tree.Root)
	div := findTag(tree, "div")
	require.Equal(t, "green", tokensText(styles[div].Properties["color"].Value))
}

func TestVarResolutionFromCustomProperty(t *testing.T) {
	tree := htmltree.Parse(`<div style="--main: blue;"><p style="color: var(--main);">hi</p></div>`, nil)
	r := NewResolver(tree, nil)
	styles := r.ResolveAll(tree.Root)
	p := findTag(tree, "p")
	require.Equal(t, "blue", tokensText(styles[p].Properties["color"].Value))
}

func TestDisplayNoneElidesBox(t *testing.T) {
	tree := htmltree.Parse(`<div></div>`, nil)
	sheet := cssparse.Parse(`div { display: none; }`)
	r := NewResolver(tree, []Sheet{{Stylesheet: sheet, Origin: OriginAuthor}})
	styles := r.ResolveAll(tree.Root)
	div := findTag(tree, "div")
	require.True(t, styles[div].DisplayNone)
}

func TestUADisplayDefaults(t *testing.T) {
	tree := htmltree.Parse(`<div><span>hi</span></div>`, nil)
	r := NewResolver(tree, nil)
	styles := r.ResolveAll(tree.Root)
	require.Equal(t, "block", styles[findTag(tree, "div")].OuterDisplay)
	require.Equal(t, "inline", styles[findTag(tree, "span")].OuterDisplay)
}

func TestEmToPxEagerResolution(t *testing.T) {
	tree := htmltree.Parse(`<div><p>hi</p></div>`, nil)
	sheet := cssparse.Parse(`div { font-size: 20px; } p { font-size: 2em; }`)
	r := NewResolver(tree, []Sheet{{Stylesheet: sheet, Origin: OriginAuthor}})
	styles := r.ResolveAll(tree.Root)
	require.Equal(t, float64(40), styles[findTag(tree, "p")].FontSizePx)
}
