package selector

import (
	"testing"

	"github.com/stretchr/testify/require"

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

func TestTypeSelectorMatches(t *testing.T) {
	tree := htmltree.Parse(`<p id="x">hi</p>`, nil)
	p := findTag(tree, "p")
	require.NotEqual(t, dom.NoNode, p)
	sels := ParseList("p")
	require.True(t, sels[0].Matches(tree, p))
	require.False(t, ParseList("div")[0].Matches(tree, p))
}

func TestClassAndIDSelectors(t *testing.T) {
	tree := htmltree.Parse(`<div id="main" class="foo bar"></div>`, nil)
	div := findTag(tree, "div")
	require.True(t, ParseList("#main")[0].Matches(tree, div))
	require.True(t, ParseList(".foo")[0].Matches(tree, div))
	require.True(t, ParseList(".bar")[0].Matches(tree, div))
	require.False(t, ParseList(".baz")[0].Matches(tree, div))
	require.True(t, ParseList("div.foo#main")[0].Matches(tree, div))
}

func TestDescendantAndChildCombinators(t *testing.T) {
	tree := htmltree.Parse(`<div><p><span>hi</span></p></div>`, nil)
	span := findTag(tree, "span")
	require.True(t, ParseList("div span")[0].Matches(tree, span))
	require.True(t, ParseList("div p span")[0].Matches(tree, span))
	require.True(t, ParseList("p > span")[0].Matches(tree, span))
	require.False(t, ParseList("div > span")[0].Matches(tree, span))
}

func TestSiblingCombinators(t *testing.T) {
	tree := htmltree.Parse(`<div><p></p><span></span><em></em></div>`, nil)
	span := findTag(tree, "span")
	em := findTag(tree, "em")
	require.True(t, ParseList("p + span")[0].Matches(tree, span))
	require.False(t, ParseList("p + em")[0].Matches(tree, em))
	require.True(t, ParseList("p ~ em")[0].Matches(tree, em))
}

func TestSpecificityOrdering(t *testing.T) {
	low := ParseList("p")[0].Specificity()
	mid := ParseList(".foo")[0].Specificity()
	high := ParseList("#main")[0].Specificity()
	require.True(t, low.Less(mid))
	require.True(t, mid.Less(high))
}

func TestUnsupportedPseudoClassNeverMatches(t *testing.T) {
	tree := htmltree.Parse(`<div></div>`, nil)
	div := findTag(tree, "div")
	sels := ParseList("div:hover")
	require.False(t, sels[0].Matches(tree, div))
}

func TestAttributeSelector(t *testing.T) {
	tree := htmltree.Parse(`<input type="text" data-x="abc">`, nil)
	input := findTag(tree, "input")
	require.True(t, ParseList(`[type=text]`)[0].Matches(tree, input))
	require.True(t, ParseList(`[data-x^=ab]`)[0].Matches(tree, input))
	require.False(t, ParseList(`[data-x$=ab]`)[0].Matches(tree, input))
}

func TestSelectorList(t *testing.T) {
	sels := ParseList("p, div.foo, #main")
	require.Len(t, sels, 3)
}
