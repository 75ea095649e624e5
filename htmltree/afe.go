package htmltree

import (
	"koala/dom"
	"koala/htmltok"
)

// pushFormattingElement appends a new entry to the active formatting
// elements list, applying the "Noah's Ark clause" (spec §4.2.3): if
// three elements with the same tag name and attributes already appear
// since the last marker, the earliest one is removed.
func (b *Builder) pushFormattingElement(node dom.NodeID, tag string, attr []htmltok.Attribute) {
	matches := 0
	matchIdx := -1
	for i := len(b.afe) - 1; i >= 0; i-- {
		e := b.afe[i]
		if e.marker {
			break
		}
		if e.tag == tag && attrsEqual(e.attr, attr) {
			matches++
			matchIdx = i
		}
	}
	if matches >= 3 && matchIdx >= 0 {
		b.afe = append(b.afe[:matchIdx], b.afe[matchIdx+1:]...)
	}
	b.afe = append(b.afe, afeEntry{node: node, tag: tag, attr: attr})
}

func attrsEqual(a, c []htmltok.Attribute) bool {
	if len(a) != len(c) {
		return false
	}
	for _, x := range a {
		found := false
		for _, y := range c {
			if x.Name == y.Name && x.Value == y.Value {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (b *Builder) pushMarker() { b.afe = append(b.afe, afeEntry{marker: true}) }

func (b *Builder) clearAFEToLastMarker() {
	for len(b.afe) > 0 {
		e := b.afe[len(b.afe)-1]
		b.afe = b.afe[:len(b.afe)-1]
		if e.marker {
			return
		}
	}
}

func (b *Builder) findAFE(node dom.NodeID) int {
	for i := len(b.afe) - 1; i >= 0; i-- {
		if !b.afe[i].marker && b.afe[i].node == node {
			return i
		}
	}
	return -1
}

func (b *Builder) findAFEByTag(tag string) int {
	for i := len(b.afe) - 1; i >= 0; i-- {
		if b.afe[i].marker {
			return -1
		}
		if b.afe[i].tag == tag {
			return i
		}
	}
	return -1
}

func (b *Builder) removeFromAFE(idx int) {
	b.afe = append(b.afe[:idx], b.afe[idx+1:]...)
}

func (b *Builder) stackIndexOf(node dom.NodeID) int {
	for i := len(b.stack) - 1; i >= 0; i-- {
		if b.stack[i] == node {
			return i
		}
	}
	return -1
}

// reconstructActiveFormattingElements implements spec §4.2.3's
// reconstruction algorithm: walks back to the last marker or to the first
// entry already present on the stack of open elements, then re-inserts
// and re-pushes every formatting element after that point, in order.
func (b *Builder) reconstructActiveFormattingElements() {
	if len(b.afe) == 0 {
		return
	}
	last := len(b.afe) - 1
	if b.afe[last].marker || b.stackIndexOf(b.afe[last].node) != -1 {
		return
	}
	i := last
	for i > 0 {
		i--
		if b.afe[i].marker || b.stackIndexOf(b.afe[i].node) != -1 {
			i++
			break
		}
	}
	for ; i <= last; i++ {
		e := b.afe[i]
		clone := b.insertElement(e.tag, e.attr)
		b.afe[i].node = clone
	}
}

// adoptionAgency implements the adoption agency algorithm (spec §4.2.3)
// for an end tag whose name matches a formatting element, bounded as the
// standard requires: at most 8 outer-loop iterations, at most 3 inner-loop
// iterations per outer pass.
func (b *Builder) adoptionAgency(tag string) {
	for outer := 0; outer < 8; outer++ {
		afeIdx := b.findAFEByTag(tag)
		if afeIdx == -1 {
			b.anyOtherEndTagInBody(tag)
			return
		}
		formatting := b.afe[afeIdx].node
		stackIdx := b.stackIndexOf(formatting)
		if stackIdx == -1 {
			b.err("adoption-agency-not-on-stack")
			b.removeFromAFE(afeIdx)
			return
		}
		if !b.hasInScope(tag) {
			b.err("adoption-agency-not-in-scope")
			return
		}
		if stackIdx != len(b.stack)-1 {
			b.err("adoption-agency-not-current-node")
		}

		furthestBlock := dom.NoNode
		furthestBlockIdx := -1
		for i := stackIdx + 1; i < len(b.stack); i++ {
			if specialTags[b.tagOf(b.stack[i])] {
				furthestBlock = b.stack[i]
				furthestBlockIdx = i
				break
			}
		}
		if furthestBlock == dom.NoNode {
			b.stack = b.stack[:stackIdx]
			b.removeFromAFE(afeIdx)
			return
		}

		commonAncestor := b.stack[stackIdx-1]
		bookmark := afeIdx
		node := furthestBlock
		nodeIdx := furthestBlockIdx
		lastNode := furthestBlock

		for inner := 0; inner < 3; inner++ {
			nodeIdx--
			if nodeIdx <= stackIdx {
				break
			}
			node = b.stack[nodeIdx]
			nodeAFEIdx := b.findAFE(node)
			if nodeAFEIdx == -1 {
				b.removeFromStackAt(nodeIdx)
				continue
			}
			clone := b.Tree.CreateElement(b.afe[nodeAFEIdx].tag, 0, cloneAttrs(b.afe[nodeAFEIdx].attr), "")
			b.afe[nodeAFEIdx].node = clone
			b.stack[nodeIdx] = clone
			if nodeAFEIdx < bookmark {
				bookmark--
			}
			if lastNode == furthestBlock {
				bookmark = nodeAFEIdx + 1
			}
			b.Tree.Reparent(clone, lastNode)
			b.reparentNodeUnderNewParent(lastNode, clone)
			lastNode = clone
		}

		b.Tree.RemoveChild(lastNode)
		if isTableScopeContainer(b.tagOf(commonAncestor)) {
			b.appendUnderFosterOrTable(commonAncestor, lastNode)
		} else {
			b.Tree.AppendChild(commonAncestor, lastNode)
		}

		savedAttr := cloneAttrs(b.afe[afeIdx].attr)
		newFormatting := b.Tree.CreateElement(tag, 0, cloneAttrs(savedAttr), "")
		children := append([]dom.NodeID(nil), b.Tree.Children(furthestBlock)...)
		for _, c := range children {
			b.Tree.RemoveChild(c)
			b.Tree.AppendChild(newFormatting, c)
		}
		b.Tree.AppendChild(furthestBlock, newFormatting)

		b.removeFromAFE(afeIdx)
		if bookmark > len(b.afe) {
			bookmark = len(b.afe)
		}
		newEntry := afeEntry{node: newFormatting, tag: tag, attr: savedAttr}
		rest := append([]afeEntry{newEntry}, b.afe[bookmark:]...)
		b.afe = append(b.afe[:bookmark], rest...)

		b.removeFromStack(formatting)
		if idx := b.stackIndexOf(furthestBlock); idx != -1 {
			b.insertIntoStackAfter(idx, newFormatting)
		}
	}
}

func cloneAttrs(a []htmltok.Attribute) []htmltok.Attribute {
	out := make([]htmltok.Attribute, len(a))
	copy(out, a)
	return out
}

func (b *Builder) removeFromStack(node dom.NodeID) {
	if i := b.stackIndexOf(node); i != -1 {
		b.removeFromStackAt(i)
	}
}

func (b *Builder) removeFromStackAt(i int) {
	b.stack = append(b.stack[:i], b.stack[i+1:]...)
}

func (b *Builder) insertIntoStackAfter(i int, node dom.NodeID) {
	b.stack = append(b.stack[:i+1], append([]dom.NodeID{node}, b.stack[i+1:]...)...)
}

// reparentNodeUnderNewParent moves node to be a child of parent,
// preserving its existing children (used while cloning formatting
// elements during the adoption agency's inner loop).
func (b *Builder) reparentNodeUnderNewParent(node, parent dom.NodeID) {
	if p := b.Tree.Node(node).Parent; p != dom.NoNode {
		b.Tree.RemoveChild(node)
	}
	b.Tree.AppendChild(parent, node)
}

func (b *Builder) appendUnderFosterOrTable(table dom.NodeID, node dom.NodeID) {
	parent := b.Tree.Node(table).Parent
	if parent == dom.NoNode {
		b.Tree.AppendChild(table, node)
		return
	}
	b.Tree.InsertBefore(parent, node, table)
}

// anyOtherEndTagInBody implements the "any other end tag" step of the in
// body insertion mode (spec §4.2.6.4.7): pop elements until a matching
// tag is found, generating implied end tags along the way.
func (b *Builder) anyOtherEndTagInBody(tag string) {
	for i := len(b.stack) - 1; i >= 0; i-- {
		node := b.stack[i]
		nodeTag := b.tagOf(node)
		if nodeTag == tag {
			b.generateImpliedEndTags(tag)
			for len(b.stack)-1 >= i {
				b.pop()
			}
			return
		}
		if specialTags[nodeTag] {
			b.err("unexpected-end-tag")
			return
		}
	}
}
