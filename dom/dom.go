// Package dom implements the arena-backed document tree described by the
// Koala rendering pipeline: nodes are addressed by a stable integer id
// rather than by pointer, so the tree can be built incrementally by the
// HTML tree constructor and then walked repeatedly by later stages without
// any aliasing hazards.
package dom

import "golang.org/x/net/html/atom"

// NodeID is a stable identifier for a node in a Tree. The sentinel
// NoNode never refers to a real node.
type NodeID int32

// NoNode is the sentinel "no node" id, used for absent parents/siblings.
const NoNode NodeID = -1

// NodeType is the discriminant of the Node variant described in spec §3.
type NodeType uint8

const (
	DocumentNode NodeType = iota
	ElementNode
	TextNode
	CommentNode
	DoctypeNode
)

// Attribute is a single name/value pair. Attribute order within an
// element is preserved in insertion order, even though it carries no
// semantic meaning (spec §3).
type Attribute struct {
	Name      string
	Namespace string // empty for the (X)HTML namespace
	Value     string
}

// Node is one entry in a Tree's arena. Parent/FirstChild/LastChild/
// PrevSibling/NextSibling form a standard intrusive tree using NodeIDs
// instead of pointers.
type Node struct {
	Type NodeType

	// Element fields.
	Tag  string    // lower-cased tag name, e.g. "div"
	Atom atom.Atom // zero value if Tag has no well-known atom
	Attr []Attribute

	// Text / Comment / Doctype data.
	Data string

	// Doctype extras (spec §4.1 DOCTYPE sub-states); only Data (the name)
	// is consumed later, but the identifiers are preserved for fidelity.
	PublicID string
	SystemID string

	Parent      NodeID
	FirstChild  NodeID
	LastChild   NodeID
	PrevSibling NodeID
	NextSibling NodeID

	// namespace of this element: "", "math", or "svg" (foreign content).
	Namespace string
}

// Tree is an arena of Nodes. The zero Tree is not valid; use New.
type Tree struct {
	nodes []Node
	// Root is always the Document node, created by New.
	Root NodeID
}

// New creates a Tree containing a single Document root node.
func New() *Tree {
	t := &Tree{}
	t.Root = t.alloc(Node{Type: DocumentNode, Parent: NoNode, FirstChild: NoNode, LastChild: NoNode, PrevSibling: NoNode, NextSibling: NoNode})
	return t
}

func (t *Tree) alloc(n Node) NodeID {
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, n)
	return id
}

// Node returns a pointer to the node's storage. The pointer is only valid
// until the next call to a Create* method, since append may reallocate
// the backing array; callers that need to retain a reference across
// mutations should retain the NodeID instead.
func (t *Tree) Node(id NodeID) *Node {
	if id == NoNode {
		return nil
	}
	return &t.nodes[id]
}

// Len returns the number of nodes in the arena (including the Document
// root).
func (t *Tree) Len() int { return len(t.nodes) }

// CreateElement allocates a new, unparented element node.
func (t *Tree) CreateElement(tag string, a atom.Atom, attrs []Attribute, namespace string) NodeID {
	return t.alloc(Node{
		Type: ElementNode, Tag: tag, Atom: a, Attr: attrs, Namespace: namespace,
		Parent: NoNode, FirstChild: NoNode, LastChild: NoNode, PrevSibling: NoNode, NextSibling: NoNode,
	})
}

// CreateText allocates a new, unparented text node.
func (t *Tree) CreateText(data string) NodeID {
	return t.alloc(Node{Type: TextNode, Data: data, Parent: NoNode, FirstChild: NoNode, LastChild: NoNode, PrevSibling: NoNode, NextSibling: NoNode})
}

// CreateComment allocates a new, unparented comment node.
func (t *Tree) CreateComment(data string) NodeID {
	return t.alloc(Node{Type: CommentNode, Data: data, Parent: NoNode, FirstChild: NoNode, LastChild: NoNode, PrevSibling: NoNode, NextSibling: NoNode})
}

// CreateDoctype allocates a new, unparented doctype node.
func (t *Tree) CreateDoctype(name, publicID, systemID string) NodeID {
	return t.alloc(Node{Type: DoctypeNode, Data: name, PublicID: publicID, SystemID: systemID, Parent: NoNode, FirstChild: NoNode, LastChild: NoNode, PrevSibling: NoNode, NextSibling: NoNode})
}

// AppendChild appends child as the last child of parent. child must not
// already be attached to a tree.
func (t *Tree) AppendChild(parent, child NodeID) {
	p := t.Node(parent)
	c := t.Node(child)
	c.Parent = parent
	c.PrevSibling = p.LastChild
	c.NextSibling = NoNode
	if p.LastChild != NoNode {
		t.Node(p.LastChild).NextSibling = child
	} else {
		p.FirstChild = child
	}
	p.LastChild = child
}

// InsertBefore inserts child immediately before reference under parent.
// If reference is NoNode, child is appended.
func (t *Tree) InsertBefore(parent, child, reference NodeID) {
	if reference == NoNode {
		t.AppendChild(parent, child)
		return
	}
	p := t.Node(parent)
	c := t.Node(child)
	ref := t.Node(reference)

	c.Parent = parent
	c.NextSibling = reference
	c.PrevSibling = ref.PrevSibling
	if ref.PrevSibling != NoNode {
		t.Node(ref.PrevSibling).NextSibling = child
	} else {
		p.FirstChild = child
	}
	ref.PrevSibling = child
}

// RemoveChild detaches child from its parent. child keeps its own
// subtree, only its sibling/parent links are cleared.
func (t *Tree) RemoveChild(child NodeID) {
	c := t.Node(child)
	if c.Parent == NoNode {
		return
	}
	p := t.Node(c.Parent)
	if c.PrevSibling != NoNode {
		t.Node(c.PrevSibling).NextSibling = c.NextSibling
	} else {
		p.FirstChild = c.NextSibling
	}
	if c.NextSibling != NoNode {
		t.Node(c.NextSibling).PrevSibling = c.PrevSibling
	} else {
		p.LastChild = c.PrevSibling
	}
	c.Parent, c.PrevSibling, c.NextSibling = NoNode, NoNode, NoNode
}

// Reparent moves all children of src to be children of dst, in order,
// appended after dst's existing children. Used by the adoption agency
// algorithm and by <template> content reparenting.
func (t *Tree) Reparent(dst, src NodeID) {
	for {
		child := t.Node(src).FirstChild
		if child == NoNode {
			break
		}
		t.RemoveChild(child)
		t.AppendChild(dst, child)
	}
}

// Children returns the ordered list of child ids of n.
func (t *Tree) Children(n NodeID) []NodeID {
	var out []NodeID
	for c := t.Node(n).FirstChild; c != NoNode; c = t.Node(c).NextSibling {
		out = append(out, c)
	}
	return out
}

// Ancestors returns n's ancestor chain, nearest first, not including n.
func (t *Tree) Ancestors(n NodeID) []NodeID {
	var out []NodeID
	for p := t.Node(n).Parent; p != NoNode; p = t.Node(p).Parent {
		out = append(out, p)
	}
	return out
}

// PrecedingSiblings returns n's preceding siblings, nearest first.
func (t *Tree) PrecedingSiblings(n NodeID) []NodeID {
	var out []NodeID
	for s := t.Node(n).PrevSibling; s != NoNode; s = t.Node(s).PrevSibling {
		out = append(out, s)
	}
	return out
}

// FollowingSiblings returns n's following siblings, nearest first.
func (t *Tree) FollowingSiblings(n NodeID) []NodeID {
	var out []NodeID
	for s := t.Node(n).NextSibling; s != NoNode; s = t.Node(s).NextSibling {
		out = append(out, s)
	}
	return out
}

// Walk performs a pre-order depth-first traversal starting at n, calling
// visit for each node including n itself. Traversal stops early if visit
// returns false.
func (t *Tree) Walk(n NodeID, visit func(NodeID) bool) {
	if !visit(n) {
		return
	}
	for c := t.Node(n).FirstChild; c != NoNode; c = t.Node(c).NextSibling {
		t.Walk(c, visit)
	}
}

// GetAttr returns the value of attribute name on element n, and whether
// it was present. Attribute names are matched case-sensitively, mirroring
// how the tree constructor lower-cases tag/attribute names up front.
func (t *Tree) GetAttr(n NodeID, name string) (string, bool) {
	node := t.Node(n)
	for _, a := range node.Attr {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// ClassList splits the "class" attribute of n on ASCII whitespace.
func (t *Tree) ClassList(n NodeID) []string {
	v, ok := t.GetAttr(n, "class")
	if !ok {
		return nil
	}
	var out []string
	start := -1
	for i, r := range v {
		isSpace := r == ' ' || r == '\t' || r == '\n' || r == '\f' || r == '\r'
		if isSpace {
			if start >= 0 {
				out = append(out, v[start:i])
				start = -1
			}
		} else if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, v[start:])
	}
	return out
}
