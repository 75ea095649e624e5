package htmltree

import (
	"testing"

	"github.com/stretchr/testify/require"

	"koala/dom"
)

func findFirst(tr *dom.Tree, n dom.NodeID, tag string) dom.NodeID {
	found := dom.NoNode
	tr.Walk(n, func(id dom.NodeID) bool {
		if tr.Node(id).Tag == tag {
			found = id
			return false
		}
		return true
	})
	return found
}

func TestBasicDocumentShape(t *testing.T) {
	tr := Parse(`<!DOCTYPE html><html><head><title>Hi</title></head><body><p>Hello</p></body></html>`, nil)
	html := findFirst(tr, tr.Root, "html")
	require.NotEqual(t, dom.NoNode, html)
	body := findFirst(tr, tr.Root, "body")
	require.NotEqual(t, dom.NoNode, body)
	p := findFirst(tr, tr.Root, "p")
	require.NotEqual(t, dom.NoNode, p)
	require.Equal(t, 1, len(tr.Children(p)))
	require.Equal(t, dom.TextNode, tr.Node(tr.Children(p)[0]).Type)
	require.Equal(t, "Hello", tr.Node(tr.Children(p)[0]).Data)
}

func TestMissingHeadAndBodyAreImplied(t *testing.T) {
	tr := Parse(`<html><p>x</p></html>`, nil)
	head := findFirst(tr, tr.Root, "head")
	body := findFirst(tr, tr.Root, "body")
	require.NotEqual(t, dom.NoNode, head)
	require.NotEqual(t, dom.NoNode, body)
}

func TestImplicitParagraphClosing(t *testing.T) {
	tr := Parse(`<p>one<p>two`, nil)
	var ps []dom.NodeID
	tr.Walk(tr.Root, func(id dom.NodeID) bool {
		if tr.Node(id).Tag == "p" {
			ps = append(ps, id)
		}
		return true
	})
	require.Len(t, ps, 2)
	body := findFirst(tr, tr.Root, "body")
	require.Equal(t, []dom.NodeID{ps[0], ps[1]}, tr.Children(body))
}

func TestListItemImplicitClosing(t *testing.T) {
	tr := Parse(`<ul><li>a<li>b</ul>`, nil)
	var lis []dom.NodeID
	tr.Walk(tr.Root, func(id dom.NodeID) bool {
		if tr.Node(id).Tag == "li" {
			lis = append(lis, id)
		}
		return true
	})
	require.Len(t, lis, 2)
	for _, li := range lis {
		require.Equal(t, dom.NoNode, findFirst(tr, li, "li"))
	}
}

func TestFormattingElementSurvivesMisnesting(t *testing.T) {
	tr := Parse(`<p><b>bold<i>both</b>italic</i></p>`, nil)
	b1 := findFirst(tr, tr.Root, "b")
	require.NotEqual(t, dom.NoNode, b1)
	i1 := findFirst(tr, tr.Root, "i")
	require.NotEqual(t, dom.NoNode, i1)
}

func TestTableFosterParenting(t *testing.T) {
	tr := Parse(`<table><tr><td>cell</td></tr>stray</table>`, nil)
	table := findFirst(tr, tr.Root, "table")
	require.NotEqual(t, dom.NoNode, table)
	parent := tr.Node(table).Parent
	var sawStray bool
	for _, c := range tr.Children(parent) {
		if tr.Node(c).Type == dom.TextNode && tr.Node(c).Data == "stray" {
			sawStray = true
		}
	}
	require.True(t, sawStray, "text inside <table> but outside <td> should be foster-parented before the table")
}

func TestVoidElementsHaveNoChildren(t *testing.T) {
	tr := Parse(`<p>one<br>two</p>`, nil)
	br := findFirst(tr, tr.Root, "br")
	require.NotEqual(t, dom.NoNode, br)
	require.Empty(t, tr.Children(br))
}

func TestRAWTEXTScriptContentNotParsedAsTags(t *testing.T) {
	tr := Parse(`<script>if (1<2) {}</script><p>after</p>`, nil)
	script := findFirst(tr, tr.Root, "script")
	require.NotEqual(t, dom.NoNode, script)
	require.Equal(t, 1, len(tr.Children(script)))
	require.Equal(t, dom.TextNode, tr.Node(tr.Children(script)[0]).Type)
	p := findFirst(tr, tr.Root, "p")
	require.NotEqual(t, dom.NoNode, p)
}

func TestCommentBeforeHTML(t *testing.T) {
	tr := Parse(`<!-- top --><html><body></body></html>`, nil)
	require.Equal(t, dom.CommentNode, tr.Node(tr.Children(tr.Root)[0]).Type)
}
