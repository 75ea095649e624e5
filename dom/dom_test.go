package dom

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTreeBasicShape(t *testing.T) {
	tr := New()
	require.Equal(t, DocumentNode, tr.Node(tr.Root).Type)

	html := tr.CreateElement("html", 0, nil, "")
	tr.AppendChild(tr.Root, html)
	body := tr.CreateElement("body", 0, nil, "")
	tr.AppendChild(html, body)
	p := tr.CreateElement("p", 0, nil, "")
	tr.AppendChild(body, p)
	txt := tr.CreateText("Hi")
	tr.AppendChild(p, txt)

	require.Equal(t, []NodeID{html}, tr.Children(tr.Root))
	require.Equal(t, []NodeID{body}, tr.Children(html))
	require.Equal(t, []NodeID{p}, tr.Children(body))
	require.Equal(t, []NodeID{txt}, tr.Children(p))

	anc := tr.Ancestors(p)
	require.Equal(t, []NodeID{body, html, tr.Root}, anc)
}

func TestInsertBeforeAndRemove(t *testing.T) {
	tr := New()
	a := tr.CreateElement("a", 0, nil, "")
	b := tr.CreateElement("b", 0, nil, "")
	c := tr.CreateElement("c", 0, nil, "")
	tr.AppendChild(tr.Root, a)
	tr.AppendChild(tr.Root, c)
	tr.InsertBefore(tr.Root, b, c)

	require.Equal(t, []NodeID{a, b, c}, tr.Children(tr.Root))

	tr.RemoveChild(b)
	require.Equal(t, []NodeID{a, c}, tr.Children(tr.Root))
	require.Equal(t, NoNode, tr.Node(b).Parent)
}

func TestReparent(t *testing.T) {
	tr := New()
	src := tr.CreateElement("src", 0, nil, "")
	dst := tr.CreateElement("dst", 0, nil, "")
	tr.AppendChild(tr.Root, src)
	tr.AppendChild(tr.Root, dst)

	x := tr.CreateElement("x", 0, nil, "")
	y := tr.CreateElement("y", 0, nil, "")
	tr.AppendChild(src, x)
	tr.AppendChild(src, y)

	tr.Reparent(dst, src)
	require.Empty(t, tr.Children(src))
	require.Equal(t, []NodeID{x, y}, tr.Children(dst))
}

func TestClassList(t *testing.T) {
	tr := New()
	el := tr.CreateElement("div", 0, []Attribute{{Name: "class", Value: " foo  bar\tbaz "}}, "")
	require.Equal(t, []string{"foo", "bar", "baz"}, tr.ClassList(el))
}

func TestWalkOrder(t *testing.T) {
	tr := New()
	a := tr.CreateElement("a", 0, nil, "")
	b := tr.CreateElement("b", 0, nil, "")
	c := tr.CreateElement("c", 0, nil, "")
	tr.AppendChild(tr.Root, a)
	tr.AppendChild(a, b)
	tr.AppendChild(a, c)

	var order []NodeID
	tr.Walk(tr.Root, func(n NodeID) bool {
		order = append(order, n)
		return true
	})
	require.Equal(t, []NodeID{tr.Root, a, b, c}, order)
}
