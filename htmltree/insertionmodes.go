package htmltree

import (
	"koala/dom"
	"koala/htmltok"
)

// step feeds one token through the insertion-mode dispatch table (spec
// §4.2.6). Unhandled combinations fall through to a tolerant default:
// unknown start tags open a generic element, unknown end tags are
// ignored with a diagnostic.
func (b *Builder) step(tok htmltok.Token) {
	switch b.mode {
	case modeInitial:
		b.initialMode(tok)
	case modeBeforeHTML:
		b.beforeHTMLMode(tok)
	case modeBeforeHead:
		b.beforeHeadMode(tok)
	case modeInHead:
		b.inHeadMode(tok)
	case modeAfterHead:
		b.afterHeadMode(tok)
	case modeInBody:
		b.inBodyMode(tok)
	case modeText:
		b.textMode(tok)
	case modeInTable, modeInTableText, modeInCaption, modeInCell, modeInRow:
		b.inTableFamilyMode(tok)
	case modeAfterBody:
		b.afterBodyMode(tok)
	case modeAfterAfterBody:
		b.afterAfterBodyMode(tok)
	}
}

func (b *Builder) initialMode(tok htmltok.Token) {
	switch tok.Type {
	case htmltok.CharacterToken:
		if isWS(tok.Codepoint) {
			return
		}
	case htmltok.CommentToken:
		id := b.Tree.CreateComment(tok.Data)
		b.Tree.AppendChild(b.Tree.Root, id)
		return
	case htmltok.DoctypeToken:
		id := b.Tree.CreateDoctype(tok.DoctypeName, tok.DoctypePublicID, tok.DoctypeSystemID)
		b.Tree.AppendChild(b.Tree.Root, id)
		b.quirksMode = tok.ForceQuirks || tok.DoctypeName != "html"
		b.mode = modeBeforeHTML
		return
	}
	b.mode = modeBeforeHTML
	b.beforeHTMLMode(tok)
}

func (b *Builder) beforeHTMLMode(tok htmltok.Token) {
	switch tok.Type {
	case htmltok.CharacterToken:
		if isWS(tok.Codepoint) {
			return
		}
	case htmltok.CommentToken:
		id := b.Tree.CreateComment(tok.Data)
		b.Tree.AppendChild(b.Tree.Root, id)
		return
	case htmltok.StartTagToken:
		if tok.Name == "html" {
			html := b.Tree.CreateElement("html", atomHTML(), toDomAttrs(tok.Attr), "")
			b.Tree.AppendChild(b.Tree.Root, html)
			b.push(html)
			b.mode = modeBeforeHead
			return
		}
	case htmltok.EndTagToken:
		switch tok.Name {
		case "head", "body", "html", "br":
		default:
			return
		}
	case htmltok.EOFToken:
	}
	html := b.Tree.CreateElement("html", atomHTML(), nil, "")
	b.Tree.AppendChild(b.Tree.Root, html)
	b.push(html)
	b.mode = modeBeforeHead
	b.beforeHeadMode(tok)
}

func (b *Builder) beforeHeadMode(tok htmltok.Token) {
	switch tok.Type {
	case htmltok.CharacterToken:
		if isWS(tok.Codepoint) {
			return
		}
	case htmltok.CommentToken:
		b.insertComment(tok.Data)
		return
	case htmltok.StartTagToken:
		switch tok.Name {
		case "html":
			b.mergeHTMLAttrs(tok.Attr)
			return
		case "head":
			head := b.insertElement("head", tok.Attr)
			b.headNode = head
			b.mode = modeInHead
			return
		}
	case htmltok.EndTagToken:
		switch tok.Name {
		case "head", "body", "html", "br":
		default:
			return
		}
	}
	head := b.insertElement("head", nil)
	b.headNode = head
	b.mode = modeInHead
	b.inHeadMode(tok)
}

func (b *Builder) inHeadMode(tok htmltok.Token) {
	switch tok.Type {
	case htmltok.CharacterToken:
		if isWS(tok.Codepoint) {
			b.insertText(string(tok.Codepoint))
			return
		}
	case htmltok.CommentToken:
		b.insertComment(tok.Data)
		return
	case htmltok.StartTagToken:
		switch tok.Name {
		case "html":
			b.mergeHTMLAttrs(tok.Attr)
			return
		case "base", "basefont", "bgsound", "link", "meta":
			b.insertElement(tok.Name, tok.Attr)
			b.pop()
			return
		case "title":
			b.insertElement(tok.Name, tok.Attr)
			b.origMode = modeInHead
			b.mode = modeText
			return
		case "noframes", "style":
			b.insertElement(tok.Name, tok.Attr)
			b.origMode = modeInHead
			b.mode = modeText
			return
		case "script":
			b.insertElement(tok.Name, tok.Attr)
			b.origMode = modeInHead
			b.mode = modeText
			return
		case "head":
			return
		}
	case htmltok.EndTagToken:
		switch tok.Name {
		case "head":
			b.pop()
			b.mode = modeAfterHead
			return
		case "body", "html", "br":
		default:
			return
		}
	}
	b.pop()
	b.mode = modeAfterHead
	b.afterHeadMode(tok)
}

func (b *Builder) afterHeadMode(tok htmltok.Token) {
	switch tok.Type {
	case htmltok.CharacterToken:
		if isWS(tok.Codepoint) {
			b.insertText(string(tok.Codepoint))
			return
		}
	case htmltok.CommentToken:
		b.insertComment(tok.Data)
		return
	case htmltok.StartTagToken:
		switch tok.Name {
		case "html":
			b.mergeHTMLAttrs(tok.Attr)
			return
		case "body":
			b.insertElement("body", tok.Attr)
			b.framesetOK = false
			b.mode = modeInBody
			return
		case "head":
			return
		}
	case htmltok.EndTagToken:
		switch tok.Name {
		case "body", "html", "br":
		default:
			return
		}
	}
	b.insertElement("body", nil)
	b.mode = modeInBody
	b.inBodyMode(tok)
}

// inBodyMode implements the bulk of spec §4.2.6.4: the vast majority of
// start/end tag handling real documents exercise.
func (b *Builder) inBodyMode(tok htmltok.Token) {
	switch tok.Type {
	case htmltok.CharacterToken:
		if tok.Codepoint == 0 {
			b.err("unexpected-null-character")
			return
		}
		b.reconstructActiveFormattingElements()
		b.insertText(string(tok.Codepoint))
		if !isWS(tok.Codepoint) {
			b.framesetOK = false
		}
		return

	case htmltok.CommentToken:
		b.insertComment(tok.Data)
		return

	case htmltok.EOFToken:
		return

	case htmltok.StartTagToken:
		b.inBodyStartTag(tok)
		return

	case htmltok.EndTagToken:
		b.inBodyEndTag(tok)
		return
	}
}

var headingTags = map[string]bool{"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true}

func (b *Builder) inBodyStartTag(tok htmltok.Token) {
	switch tok.Name {
	case "html":
		b.mergeHTMLAttrs(tok.Attr)
		return

	case "address", "article", "aside", "blockquote", "center", "details",
		"dialog", "dir", "div", "dl", "fieldset", "figcaption", "figure",
		"footer", "header", "hgroup", "main", "menu", "nav", "ol", "p",
		"section", "summary", "ul":
		b.closePElementIfInButtonScope()
		b.insertElement(tok.Name, tok.Attr)
		return

	case "h1", "h2", "h3", "h4", "h5", "h6":
		b.closePElementIfInButtonScope()
		if headingTags[b.tagOf(b.current())] {
			b.err("nested-heading")
			b.pop()
		}
		b.insertElement(tok.Name, tok.Attr)
		return

	case "pre", "listing":
		b.closePElementIfInButtonScope()
		b.insertElement(tok.Name, tok.Attr)
		b.framesetOK = false
		return

	case "form":
		if b.formNode != dom.NoNode {
			b.err("unexpected-form-in-form")
			return
		}
		b.closePElementIfInButtonScope()
		b.formNode = b.insertElement(tok.Name, tok.Attr)
		return

	case "li":
		b.framesetOK = false
		for i := len(b.stack) - 1; i >= 0; i-- {
			tag := b.tagOf(b.stack[i])
			if tag == "li" {
				b.generateImpliedEndTags("li")
				b.popUntilTagPopped("li")
				break
			}
			if specialTags[tag] && tag != "address" && tag != "div" && tag != "p" {
				break
			}
		}
		b.closePElementIfInButtonScope()
		b.insertElement(tok.Name, tok.Attr)
		return

	case "dd", "dt":
		b.framesetOK = false
		for i := len(b.stack) - 1; i >= 0; i-- {
			tag := b.tagOf(b.stack[i])
			if tag == "dd" || tag == "dt" {
				b.generateImpliedEndTags(tag)
				b.popUntilTagPopped(tag)
				break
			}
			if specialTags[tag] && tag != "address" && tag != "div" && tag != "p" {
				break
			}
		}
		b.closePElementIfInButtonScope()
		b.insertElement(tok.Name, tok.Attr)
		return

	case "a":
		if idx := b.findAFEByTag("a"); idx != -1 {
			b.adoptionAgency("a")
			if idx2 := b.findAFEByTag("a"); idx2 != -1 {
				b.removeFromAFE(idx2)
			}
		}
		b.reconstructActiveFormattingElements()
		node := b.insertElement("a", tok.Attr)
		b.pushFormattingElement(node, "a", tok.Attr)
		return

	case "b", "big", "code", "em", "font", "i", "s", "small", "strike", "strong", "tt", "u":
		b.reconstructActiveFormattingElements()
		node := b.insertElement(tok.Name, tok.Attr)
		b.pushFormattingElement(node, tok.Name, tok.Attr)
		return

	case "nobr":
		b.reconstructActiveFormattingElements()
		if b.hasInScope("nobr") {
			b.adoptionAgency("nobr")
			b.reconstructActiveFormattingElements()
		}
		node := b.insertElement("nobr", tok.Attr)
		b.pushFormattingElement(node, "nobr", tok.Attr)
		return

	case "button":
		if b.hasInScope("button") {
			b.generateImpliedEndTags("")
			b.popUntilTagPopped("button")
		}
		b.reconstructActiveFormattingElements()
		b.insertElement("button", tok.Attr)
		b.framesetOK = false
		return

	case "applet", "marquee", "object":
		b.reconstructActiveFormattingElements()
		b.insertElement(tok.Name, tok.Attr)
		b.pushMarker()
		b.framesetOK = false
		return

	case "table":
		if !b.quirksMode {
			b.closePElementIfInButtonScope()
		}
		b.insertElement("table", tok.Attr)
		b.framesetOK = false
		b.mode = modeInTable
		return

	case "area", "br", "embed", "img", "keygen", "wbr":
		b.reconstructActiveFormattingElements()
		b.insertVoid(tok.Name, tok.Attr)
		b.framesetOK = false
		return

	case "input":
		b.reconstructActiveFormattingElements()
		b.insertVoid("input", tok.Attr)
		if v, ok := attrValue(tok.Attr, "type"); !ok || !equalFold(v, "hidden") {
			b.framesetOK = false
		}
		return

	case "hr":
		b.closePElementIfInButtonScope()
		b.insertVoid("hr", tok.Attr)
		b.framesetOK = false
		return

	case "param", "source", "track":
		b.insertVoid(tok.Name, tok.Attr)
		return

	case "textarea":
		b.insertElement(tok.Name, tok.Attr)
		b.origMode = modeInBody
		b.mode = modeText
		b.framesetOK = false
		return

	case "xmp":
		b.closePElementIfInButtonScope()
		b.reconstructActiveFormattingElements()
		b.framesetOK = false
		b.insertElement(tok.Name, tok.Attr)
		b.origMode = modeInBody
		b.mode = modeText
		return

	case "iframe":
		b.framesetOK = false
		b.insertElement(tok.Name, tok.Attr)
		b.origMode = modeInBody
		b.mode = modeText
		return

	case "script", "style", "title", "noframes":
		b.insertElement(tok.Name, tok.Attr)
		b.origMode = modeInBody
		b.mode = modeText
		return

	case "select":
		b.reconstructActiveFormattingElements()
		b.insertElement("select", tok.Attr)
		b.framesetOK = false
		return

	case "image":
		tok.Name = "img"
		b.inBodyStartTag(tok)
		return

	default:
		b.reconstructActiveFormattingElements()
		b.insertElement(tok.Name, tok.Attr)
		if voidElements[tok.Name] {
			b.pop()
		}
		return
	}
}

func (b *Builder) insertVoid(name string, attrs []htmltok.Attribute) {
	b.insertElement(name, attrs)
	b.pop()
}

func (b *Builder) inBodyEndTag(tok htmltok.Token) {
	switch tok.Name {
	case "body":
		if !b.hasInScope("body") {
			b.err("unexpected-end-tag-body")
			return
		}
		b.mode = modeAfterBody
		return

	case "html":
		if !b.hasInScope("body") {
			b.err("unexpected-end-tag-html")
			return
		}
		b.mode = modeAfterBody
		b.afterBodyMode(tok)
		return

	case "address", "article", "aside", "blockquote", "button", "center",
		"details", "dialog", "dir", "div", "dl", "fieldset", "figcaption",
		"figure", "footer", "header", "hgroup", "listing", "main", "menu",
		"nav", "ol", "pre", "section", "summary", "ul":
		if !b.hasInScope(tok.Name) {
			b.err("unexpected-end-tag")
			return
		}
		b.generateImpliedEndTags("")
		b.popUntilTagPopped(tok.Name)
		return

	case "form":
		node := b.formNode
		b.formNode = dom.NoNode
		if node == dom.NoNode || !b.hasInScope("form") {
			b.err("unexpected-end-tag-form")
			return
		}
		b.generateImpliedEndTags("")
		b.removeFromStack(node)
		return

	case "p":
		if !b.hasInButtonScope("p") {
			b.err("unexpected-end-tag-p")
			b.insertElement("p", nil)
		}
		b.generateImpliedEndTags("p")
		b.popUntilTagPopped("p")
		return

	case "li":
		if !b.hasInListItemScope("li") {
			b.err("unexpected-end-tag-li")
			return
		}
		b.generateImpliedEndTags("li")
		b.popUntilTagPopped("li")
		return

	case "dd", "dt":
		if !b.hasInScope(tok.Name) {
			b.err("unexpected-end-tag")
			return
		}
		b.generateImpliedEndTags(tok.Name)
		b.popUntilTagPopped(tok.Name)
		return

	case "h1", "h2", "h3", "h4", "h5", "h6":
		if !headingInScope(b) {
			b.err("unexpected-end-tag-heading")
			return
		}
		b.generateImpliedEndTags("")
		for len(b.stack) > 0 {
			tag := b.tagOf(b.current())
			b.pop()
			if headingTags[tag] {
				break
			}
		}
		return

	case "a", "b", "big", "code", "em", "font", "i", "nobr", "s", "small",
		"strike", "strong", "tt", "u":
		b.adoptionAgency(tok.Name)
		return

	case "applet", "marquee", "object":
		if !b.hasInScope(tok.Name) {
			b.err("unexpected-end-tag")
			return
		}
		b.generateImpliedEndTags("")
		b.popUntilTagPopped(tok.Name)
		b.clearAFEToLastMarker()
		return

	case "br":
		b.reconstructActiveFormattingElements()
		b.insertVoid("br", nil)
		b.framesetOK = false
		return

	default:
		b.anyOtherEndTagInBody(tok.Name)
		return
	}
}

func headingInScope(b *Builder) bool {
	for tag := range headingTags {
		if b.hasInScope(tag) {
			return true
		}
	}
	return false
}

func (b *Builder) textMode(tok htmltok.Token) {
	switch tok.Type {
	case htmltok.CharacterToken:
		b.insertText(string(tok.Codepoint))
		return
	case htmltok.EOFToken:
		b.pop()
		b.mode = b.origMode
		b.step(tok)
		return
	case htmltok.EndTagToken:
		b.pop()
		b.mode = b.origMode
		return
	}
}

// inTableFamilyMode is a pragmatic merge of the table-related insertion
// modes (in table, in table text, in caption, in cell, in row): it
// preserves the foster-parenting behavior those modes exist for (spec
// §4.2.6.4's "foster parenting" clause) without reimplementing every
// table-specific repair step (column groups, multiple tbody sections,
// etc. are handled structurally rather than per the full state table).
func (b *Builder) inTableFamilyMode(tok htmltok.Token) {
	switch tok.Type {
	case htmltok.CharacterToken:
		b.fosterMode = true
		b.insertText(string(tok.Codepoint))
		b.fosterMode = false
		return

	case htmltok.CommentToken:
		b.insertComment(tok.Data)
		return

	case htmltok.StartTagToken:
		switch tok.Name {
		case "caption":
			b.insertElement("caption", tok.Attr)
			b.pushMarker()
			b.mode = modeInCaption
			return
		case "colgroup", "col":
			b.insertElement(tok.Name, tok.Attr)
			return
		case "tbody", "tfoot", "thead":
			b.insertElement(tok.Name, tok.Attr)
			b.mode = modeInRow
			return
		case "tr":
			b.insertElement("tr", tok.Attr)
			b.mode = modeInRow
			return
		case "td", "th":
			b.insertElement(tok.Name, tok.Attr)
			b.pushMarker()
			b.mode = modeInCell
			return
		case "table":
			b.err("nested-table")
			b.popUntilTagPopped("table")
			b.mode = modeInBody
			b.step(tok)
			return
		}
		b.fosterMode = true
		b.inBodyStartTag(tok)
		b.fosterMode = false
		return

	case htmltok.EndTagToken:
		switch tok.Name {
		case "table":
			b.popUntilTagPopped("table")
			b.mode = modeInBody
			return
		case "caption":
			b.popUntilTagPopped("caption")
			b.clearAFEToLastMarker()
			b.mode = modeInTable
			return
		case "tr", "tbody", "thead", "tfoot":
			b.popUntilTagPopped(tok.Name)
			b.mode = modeInTable
			return
		case "td", "th":
			b.popUntilTagPopped(tok.Name)
			b.clearAFEToLastMarker()
			b.mode = modeInRow
			return
		}
		b.fosterMode = true
		b.inBodyEndTag(tok)
		b.fosterMode = false
		return

	case htmltok.EOFToken:
		return
	}
}

func (b *Builder) afterBodyMode(tok htmltok.Token) {
	switch tok.Type {
	case htmltok.CharacterToken:
		if isWS(tok.Codepoint) {
			b.insertText(string(tok.Codepoint))
			return
		}
	case htmltok.CommentToken:
		id := b.Tree.CreateComment(tok.Data)
		b.Tree.AppendChild(b.stack[0], id)
		return
	case htmltok.StartTagToken:
		if tok.Name == "html" {
			b.mergeHTMLAttrs(tok.Attr)
			return
		}
	case htmltok.EndTagToken:
		if tok.Name == "html" {
			b.mode = modeAfterAfterBody
			return
		}
	case htmltok.EOFToken:
		return
	}
	b.mode = modeInBody
	b.inBodyMode(tok)
}

func (b *Builder) afterAfterBodyMode(tok htmltok.Token) {
	switch tok.Type {
	case htmltok.CharacterToken:
		if isWS(tok.Codepoint) {
			b.insertText(string(tok.Codepoint))
			return
		}
	case htmltok.CommentToken:
		id := b.Tree.CreateComment(tok.Data)
		b.Tree.AppendChild(b.Tree.Root, id)
		return
	case htmltok.StartTagToken:
		if tok.Name == "html" {
			b.mergeHTMLAttrs(tok.Attr)
			return
		}
	case htmltok.EOFToken:
		return
	}
	b.mode = modeInBody
	b.inBodyMode(tok)
}

func isWS(r rune) bool {
	switch r {
	case '\t', '\n', '\f', ' ', '\r':
		return true
	}
	return false
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		c1, c2 := a[i], b[i]
		if c1 >= 'A' && c1 <= 'Z' {
			c1 += 'a' - 'A'
		}
		if c2 >= 'A' && c2 <= 'Z' {
			c2 += 'a' - 'A'
		}
		if c1 != c2 {
			return false
		}
	}
	return true
}

func (b *Builder) mergeHTMLAttrs(attrs []htmltok.Attribute) {
	if len(b.stack) == 0 {
		return
	}
	root := b.stack[0]
	node := b.Tree.Node(root)
	for _, a := range attrs {
		found := false
		for _, existing := range node.Attr {
			if existing.Name == a.Name {
				found = true
				break
			}
		}
		if !found {
			node.Attr = append(node.Attr, dom.Attribute{Name: a.Name, Value: a.Value})
		}
	}
}
