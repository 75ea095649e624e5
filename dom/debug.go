package dom

import "github.com/beevik/etree"

// DebugXML renders the subtree rooted at n as an etree document, suitable
// for pretty-printing in test failure messages and golden fixtures. It is
// a diagnostic aid only: the pipeline never parses the document back out
// of this representation.
func (t *Tree) DebugXML(n NodeID) *etree.Document {
	doc := etree.NewDocument()
	t.writeXML(&doc.Element, n)
	return doc
}

func (t *Tree) writeXML(parent *etree.Element, n NodeID) {
	node := t.Node(n)
	switch node.Type {
	case DocumentNode:
		for _, c := range t.Children(n) {
			t.writeXML(parent, c)
		}
	case ElementNode:
		el := parent.CreateElement(node.Tag)
		for _, a := range node.Attr {
			el.CreateAttr(a.Name, a.Value)
		}
		for _, c := range t.Children(n) {
			t.writeXML(el, c)
		}
	case TextNode:
		parent.CreateText(node.Data)
	case CommentNode:
		parent.CreateComment(node.Data)
	case DoctypeNode:
		// etree has no dedicated doctype node type usable as a child;
		// represent it as a comment so the dump stays total.
		parent.CreateComment("DOCTYPE " + node.Data)
	}
}

// String renders the subtree rooted at n as indented XML text.
func (t *Tree) String(n NodeID) string {
	doc := t.DebugXML(n)
	doc.Indent(2)
	s, err := doc.WriteToString()
	if err != nil {
		return "<dom: " + err.Error() + ">"
	}
	return s
}
