// Package cssparse implements the CSS Syntax Level 3 parsing entry
// points (spec §3): a stylesheet is a list of qualified rules and
// at-rules; a qualified rule's prelude is a selector list and its block
// a list of declarations.
package cssparse

import (
	"strings"

	"koala/csstok"
)

// Declaration is a single "property: value" pair (spec §3), optionally
// marked !important.
type Declaration struct {
	Property  string
	Value     []csstok.Token
	Important bool
}

// Rule is a qualified rule: a raw selector prelude (tokenized further by
// koala/selector) plus its declaration block.
type Rule struct {
	SelectorText string
	Declarations []Declaration
}

// FontFace captures an @font-face block's declarations (font-family, src,
// font-weight, font-style), handed to koala/fontmetrics and
// koala/imageregistry-adjacent font resolution.
type FontFace struct {
	Declarations []Declaration
}

// Stylesheet is the parsed result of one CSS source text.
type Stylesheet struct {
	Rules     []Rule
	FontFaces []FontFace
	Imports   []string

	// Diagnostics records at-rules this parser recognizes syntactically
	// but does not apply (e.g. @media): spec's Non-goals exclude media
	// query evaluation, but we still surface that the at-rule was seen.
	Diagnostics []string
}

type parser struct {
	toks []csstok.Token
	pos  int
	sheet Stylesheet
}

// Parse tokenizes and parses src into a Stylesheet.
func Parse(src string) *Stylesheet {
	p := &parser{toks: csstok.NewTokenizer(src).All()}
	p.parseTopLevel()
	return &p.sheet
}

func (p *parser) err(msg string) {
	p.sheet.Diagnostics = append(p.sheet.Diagnostics, msg)
}

func (p *parser) peek() csstok.Token {
	if p.pos >= len(p.toks) {
		return csstok.Token{Kind: csstok.EOF}
	}
	return p.toks[p.pos]
}

func (p *parser) next() csstok.Token {
	t := p.peek()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *parser) skipWS() {
	for p.peek().Kind == csstok.Whitespace {
		p.pos++
	}
}

func (p *parser) parseTopLevel() {
	for {
		p.skipWS()
		tok := p.peek()
		switch tok.Kind {
		case csstok.EOF:
			return
		case csstok.CDO, csstok.CDC, csstok.Semicolon:
			p.pos++
		case csstok.AtKeyword:
			p.parseAtRule()
		default:
			p.parseQualifiedRule()
		}
	}
}

// parseAtRule consumes "@name <prelude> ;" or "@name <prelude> { ... }"
// (spec §3's at-rule grammar). @import and @font-face are understood
// structurally; anything else (@media, @supports, @keyframes, ...) is
// skipped with a diagnostic, matching the distilled spec's decision not
// to evaluate conditional/animation at-rules.
func (p *parser) parseAtRule() {
	name := p.next().Value
	var prelude []csstok.Token
	for {
		tok := p.peek()
		if tok.Kind == csstok.Semicolon || tok.Kind == csstok.EOF {
			p.pos++
			p.finishAtRule(name, prelude, nil)
			return
		}
		if tok.Kind == csstok.LeftBrace {
			p.pos++
			block := p.consumeBlockTokens()
			p.finishAtRule(name, prelude, block)
			return
		}
		prelude = append(prelude, p.next())
	}
}

func (p *parser) finishAtRule(name string, prelude, block []csstok.Token) {
	switch strings.ToLower(name) {
	case "import":
		for _, t := range prelude {
			if t.Kind == csstok.String || t.Kind == csstok.URL {
				p.sheet.Imports = append(p.sheet.Imports, t.Value)
				return
			}
		}
		p.err("import-missing-url")
	case "font-face":
		decls := parseDeclarationList(block)
		p.sheet.FontFaces = append(p.sheet.FontFaces, FontFace{Declarations: decls})
	default:
		p.err("unsupported-at-rule: " + name)
	}
}

// consumeBlockTokens returns the tokens between a just-consumed '{' and
// its matching '}', tracking nested brace/bracket/paren depth.
func (p *parser) consumeBlockTokens() []csstok.Token {
	var out []csstok.Token
	depth := 1
	for {
		tok := p.peek()
		if tok.Kind == csstok.EOF {
			return out
		}
		switch tok.Kind {
		case csstok.LeftBrace, csstok.LeftBracket, csstok.LeftParen:
			depth++
		case csstok.RightBrace, csstok.RightBracket, csstok.RightParen:
			depth--
			if depth == 0 && tok.Kind == csstok.RightBrace {
				p.pos++
				return out
			}
		}
		out = append(out, p.next())
	}
}

// parseQualifiedRule consumes "<prelude> { <declarations> }" (spec §3).
func (p *parser) parseQualifiedRule() {
	var prelude []csstok.Token
	for {
		tok := p.peek()
		if tok.Kind == csstok.EOF {
			return
		}
		if tok.Kind == csstok.LeftBrace {
			p.pos++
			block := p.consumeBlockTokens()
			sel := renderSelectorText(prelude)
			decls := parseDeclarationList(block)
			if sel != "" {
				p.sheet.Rules = append(p.sheet.Rules, Rule{SelectorText: sel, Declarations: decls})
			}
			return
		}
		prelude = append(prelude, p.next())
	}
}

// renderSelectorText reconstitutes the prelude tokens into the raw
// selector text koala/selector parses; cssparse deliberately does not
// interpret selector grammar itself (spec's module boundary).
func renderSelectorText(toks []csstok.Token) string {
	var b strings.Builder
	for _, t := range toks {
		switch t.Kind {
		case csstok.Whitespace:
			b.WriteByte(' ')
		case csstok.Ident, csstok.Delim:
			b.WriteString(t.Value)
		case csstok.Hash:
			b.WriteByte('#')
			b.WriteString(t.Value)
		case csstok.Colon:
			b.WriteByte(':')
		case csstok.Comma:
			b.WriteByte(',')
		case csstok.LeftBracket:
			b.WriteByte('[')
		case csstok.RightBracket:
			b.WriteByte(']')
		case csstok.String:
			b.WriteByte('"')
			b.WriteString(t.Value)
			b.WriteByte('"')
		case csstok.Function:
			b.WriteString(t.Value)
			b.WriteByte('(')
		case csstok.RightParen:
			b.WriteByte(')')
		}
	}
	return strings.TrimSpace(b.String())
}

// parseDeclarationList parses a block's contents as "prop: value;
// prop2: value2 !important; ..." (spec §3's declaration-list grammar,
// used both by qualified-rule blocks and @font-face blocks).
func parseDeclarationList(toks []csstok.Token) []Declaration {
	var out []Declaration
	i := 0
	skipWS := func() {
		for i < len(toks) && toks[i].Kind == csstok.Whitespace {
			i++
		}
	}
	for i < len(toks) {
		skipWS()
		if i >= len(toks) {
			break
		}
		if toks[i].Kind == csstok.Semicolon {
			i++
			continue
		}
		if toks[i].Kind != csstok.Ident {
			// Malformed declaration: skip to next semicolon (spec's
			// "consume the remnants of a bad declaration").
			for i < len(toks) && toks[i].Kind != csstok.Semicolon {
				i++
			}
			continue
		}
		prop := toks[i].Value
		i++
		skipWS()
		if i >= len(toks) || toks[i].Kind != csstok.Colon {
			for i < len(toks) && toks[i].Kind != csstok.Semicolon {
				i++
			}
			continue
		}
		i++ // consume ':'
		var value []csstok.Token
		for i < len(toks) && toks[i].Kind != csstok.Semicolon {
			value = append(value, toks[i])
			i++
		}
		important, value := extractImportant(value)
		out = append(out, Declaration{Property: strings.ToLower(prop), Value: trimWS(value), Important: important})
	}
	return out
}

func trimWS(toks []csstok.Token) []csstok.Token {
	start := 0
	for start < len(toks) && toks[start].Kind == csstok.Whitespace {
		start++
	}
	end := len(toks)
	for end > start && toks[end-1].Kind == csstok.Whitespace {
		end--
	}
	return toks[start:end]
}

// extractImportant detects a trailing "!important" (spec §3's "!" delim
// token followed by the "important" ident, case-insensitively) and
// strips it from the value.
func extractImportant(toks []csstok.Token) (bool, []csstok.Token) {
	toks = trimWS(toks)
	if len(toks) < 2 {
		return false, toks
	}
	last := toks[len(toks)-1]
	if last.Kind != csstok.Ident || !strings.EqualFold(last.Value, "important") {
		return false, toks
	}
	j := len(toks) - 2
	for j >= 0 && toks[j].Kind == csstok.Whitespace {
		j--
	}
	if j < 0 || toks[j].Kind != csstok.Delim || toks[j].Value != "!" {
		return false, toks
	}
	return true, trimWS(toks[:j])
}
