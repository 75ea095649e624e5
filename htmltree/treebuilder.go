// Package htmltree implements the WHATWG tree-construction algorithm
// (spec §4.2): it consumes the token stream from koala/htmltok and builds
// a koala/dom.Tree using the stack-of-open-elements / insertion-mode state
// machine, the active formatting elements list, and the adoption agency
// algorithm.
package htmltree

import (
	"golang.org/x/net/html/atom"

	"koala/dom"
	"koala/htmltok"
)

// insertionMode names the subset of WHATWG insertion modes this builder
// implements. Less common modes (in table body, in column group, in
// frameset and its relatives) are deliberately out of scope: frameset
// documents are not part of this engine's target corpus.
type insertionMode uint8

const (
	modeInitial insertionMode = iota
	modeBeforeHTML
	modeBeforeHead
	modeInHead
	modeAfterHead
	modeInBody
	modeText
	modeInTable
	modeInTableText
	modeInCaption
	modeInCell
	modeInRow
	modeAfterBody
	modeAfterAfterBody
)

// afeEntry is one slot in the active formatting elements list: either a
// real element marker or a scope marker inserted at the start of
// <button>/<object>/table cell/caption content (spec §4.2: "active
// formatting elements list with scope markers").
type afeEntry struct {
	marker bool
	node   dom.NodeID
	tag    string
	attr   []htmltok.Attribute
}

// Builder runs the tree-construction algorithm against one dom.Tree.
type Builder struct {
	Tree *dom.Tree

	mode       insertionMode
	origMode   insertionMode
	stack      []dom.NodeID
	afe        []afeEntry
	headNode   dom.NodeID
	formNode   dom.NodeID
	fosterMode bool
	framesetOK bool
	quirksMode bool

	// OnParseError receives a short diagnostic name for every recoverable
	// tree-construction error (spec §7).
	OnParseError func(msg string)
}

// specialTags is used by the "has an element in scope" family of
// predicates (spec §4.2.3) to stop the scope walk.
var specialTags = map[string]bool{
	"address": true, "applet": true, "area": true, "article": true, "aside": true,
	"base": true, "basefont": true, "bgsound": true, "blockquote": true, "body": true,
	"br": true, "button": true, "caption": true, "center": true, "col": true,
	"colgroup": true, "dd": true, "details": true, "dir": true, "div": true,
	"dl": true, "dt": true, "embed": true, "fieldset": true, "figcaption": true,
	"figure": true, "footer": true, "form": true, "frame": true, "frameset": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"head": true, "header": true, "hgroup": true, "hr": true, "html": true,
	"iframe": true, "img": true, "input": true, "li": true, "link": true,
	"listing": true, "main": true, "marquee": true, "menu": true, "meta": true,
	"nav": true, "noembed": true, "noframes": true, "noscript": true, "object": true,
	"ol": true, "p": true, "param": true, "plaintext": true, "pre": true,
	"script": true, "section": true, "select": true, "source": true, "style": true,
	"summary": true, "table": true, "tbody": true, "td": true, "template": true,
	"textarea": true, "tfoot": true, "th": true, "thead": true, "title": true,
	"tr": true, "track": true, "ul": true, "wbr": true, "xmp": true,
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// rawTextTriggers mirrors htmltok.rawTextElements: when the tree
// constructor inserts a start tag for one of these, it switches the
// tokenizer's state (the state-override hook, spec §4.1).
var rawTextTriggers = map[string]htmltok.TokenizerState{
	"script":   htmltok.ScriptDataState,
	"style":    htmltok.RAWTEXTState,
	"textarea": htmltok.RCDATAState,
	"title":    htmltok.RCDATAState,
	"iframe":   htmltok.RAWTEXTState,
	"noembed":  htmltok.RAWTEXTState,
	"noframes": htmltok.RAWTEXTState,
	"xmp":      htmltok.RAWTEXTState,
}

// NewBuilder creates a Builder over a fresh dom.Tree.
func NewBuilder(onError func(string)) *Builder {
	return &Builder{
		Tree:         dom.New(),
		mode:         modeInitial,
		framesetOK:   true,
		OnParseError: onError,
	}
}

func (b *Builder) err(msg string) {
	if b.OnParseError != nil {
		b.OnParseError(msg)
	}
}

// Parse tokenizes input with htmltok and feeds every token through the
// tree-construction state machine, switching the tokenizer's state
// whenever the current open element calls for RAWTEXT/RCDATA/script-data
// (spec §4.1's state-override contract). It returns the finished tree.
func Parse(input string, onError func(string)) *dom.Tree {
	b := NewBuilder(onError)
	z := htmltok.NewTokenizer(input, onError)
	for {
		tok := z.Next()
		b.step(tok)
		if tok.Type == htmltok.EOFToken {
			return b.Tree
		}
		if tok.Type == htmltok.StartTagToken {
			if s, ok := rawTextTriggers[tok.Name]; ok {
				z.SetState(s)
			}
		}
	}
}

// current returns the current node (top of the stack of open elements).
func (b *Builder) current() dom.NodeID {
	if len(b.stack) == 0 {
		return b.Tree.Root
	}
	return b.stack[len(b.stack)-1]
}

func (b *Builder) push(n dom.NodeID) { b.stack = append(b.stack, n) }

func (b *Builder) pop() dom.NodeID {
	n := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	return n
}

func (b *Builder) tagOf(n dom.NodeID) string { return b.Tree.Node(n).Tag }

func (b *Builder) popUntilTagPopped(tag string) {
	for len(b.stack) > 0 {
		popped := b.tagOf(b.current())
		b.pop()
		if popped == tag {
			return
		}
	}
}

func (b *Builder) insertElement(name string, attrs []htmltok.Attribute) dom.NodeID {
	a, _ := atom.Lookup([]byte(name))
	id := b.Tree.CreateElement(name, a, toDomAttrs(attrs), "")
	b.appendToAppropriatePlace(id)
	b.push(id)
	return id
}

// appendToAppropriatePlace implements foster parenting (spec §4.2.4):
// while the current node is a table/tbody/tfoot/thead/tr and foster
// parenting is in effect, the new node is inserted before the table in
// its parent, not as a child of the table.
func (b *Builder) appendToAppropriatePlace(id dom.NodeID) {
	target := b.current()
	if b.fosterMode && isTableScopeContainer(b.tagOf(target)) {
		table := b.findLastTableOnStack()
		if table != dom.NoNode {
			parent := b.Tree.Node(table).Parent
			if parent != dom.NoNode {
				b.Tree.InsertBefore(parent, id, table)
				return
			}
		}
	}
	b.Tree.AppendChild(target, id)
}

func isTableScopeContainer(tag string) bool {
	switch tag {
	case "table", "tbody", "tfoot", "thead", "tr":
		return true
	}
	return false
}

func (b *Builder) findLastTableOnStack() dom.NodeID {
	for i := len(b.stack) - 1; i >= 0; i-- {
		if b.tagOf(b.stack[i]) == "table" {
			return b.stack[i]
		}
	}
	return dom.NoNode
}

func (b *Builder) insertText(s string) {
	if s == "" {
		return
	}
	target := b.current()
	if b.fosterMode && isTableScopeContainer(b.tagOf(target)) {
		table := b.findLastTableOnStack()
		if table != dom.NoNode {
			parent := b.Tree.Node(table).Parent
			if parent != dom.NoNode {
				if prev := b.Tree.Node(table).PrevSibling; prev != dom.NoNode {
					if pn := b.Tree.Node(prev); pn.Type == dom.TextNode {
						pn.Data += s
						return
					}
				}
				id := b.Tree.CreateText(s)
				b.Tree.InsertBefore(parent, id, table)
				return
			}
		}
	}
	// Merge into a trailing text node if present (common optimization
	// real parsers make; avoids fragmenting runs of character tokens).
	if lastChild := b.Tree.Node(target).LastChild; lastChild != dom.NoNode {
		if ln := b.Tree.Node(lastChild); ln.Type == dom.TextNode {
			ln.Data += s
			return
		}
	}
	id := b.Tree.CreateText(s)
	b.Tree.AppendChild(target, id)
}

func (b *Builder) insertComment(data string) {
	id := b.Tree.CreateComment(data)
	b.appendToAppropriatePlace(id)
}

func toDomAttrs(attrs []htmltok.Attribute) []dom.Attribute {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]dom.Attribute, len(attrs))
	for i, a := range attrs {
		out[i] = dom.Attribute{Name: a.Name, Value: a.Value}
	}
	return out
}

func atomHTML() atom.Atom {
	a, _ := atom.Lookup([]byte("html"))
	return a
}

func attrValue(attrs []htmltok.Attribute, name string) (string, bool) {
	for _, a := range attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}
