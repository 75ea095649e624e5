package htmltok

import (
	"strings"
)

// rawTextElements is consulted by RunAll, which has no external tree
// constructor to issue a state-override signal; Next()+SetState() (used by
// htmltree) do not consult this table at all.
var rawTextElements = map[string]TokenizerState{
	"script":   ScriptDataState,
	"style":    RAWTEXTState,
	"textarea": RCDATAState,
	"title":    RCDATAState,
	"iframe":   RAWTEXTState,
	"noembed":  RAWTEXTState,
	"noframes": RAWTEXTState,
	"xmp":      RAWTEXTState,
}

// internalState enumerates the WHATWG tokenizer states (spec §4.1). It is
// a strict superset of TokenizerState, which only names the subset a tree
// constructor can switch into.
type internalState uint8

const (
	stData internalState = iota
	stTagOpen
	stEndTagOpen
	stTagName
	stBeforeAttributeName
	stAttributeName
	stAfterAttributeName
	stBeforeAttributeValue
	stAttributeValueDouble
	stAttributeValueSingle
	stAttributeValueUnquoted
	stAfterAttributeValueQuoted
	stSelfClosingStartTag
	stBogusComment
	stMarkupDeclarationOpen
	stCommentStart
	stCommentStartDash
	stComment
	stCommentEndDash
	stCommentEnd
	stCommentEndBang
	stDoctype
	stBeforeDoctypeName
	stDoctypeName
	stAfterDoctypeName
	stAfterDoctypePublicKeyword
	stBeforeDoctypePublicIdentifier
	stDoctypePublicIdentifierDouble
	stDoctypePublicIdentifierSingle
	stAfterDoctypePublicIdentifier
	stBetweenDoctypePublicAndSystem
	stAfterDoctypeSystemKeyword
	stBeforeDoctypeSystemIdentifier
	stDoctypeSystemIdentifierDouble
	stDoctypeSystemIdentifierSingle
	stAfterDoctypeSystemIdentifier
	stBogusDoctype
	stCDATASection
	stRCDATA
	stRAWTEXT
	stScriptData
	stPlaintext
	stRCDATALessThanSign
	stRAWTEXTLessThanSign
	stScriptDataLessThanSign
	stRCDATAEndTagOpen
	stRAWTEXTEndTagOpen
	stScriptDataEndTagOpen
	stRCDATAEndTagName
	stRAWTEXTEndTagName
	stScriptDataEndTagName
	stCharacterReference
	stNamedCharacterReference
	stAmbiguousAmpersand
	stNumericCharacterReference
	stHexadecimalCharacterReferenceStart
	stDecimalCharacterReferenceStart
	stHexadecimalCharacterReference
	stDecimalCharacterReference
	stNumericCharacterReferenceEnd
)

const eof = -1

// Tokenizer turns a UTF-8 string into a stream of Tokens, one state
// transition at a time (spec §4.1: "input position only advances", "a
// reconsume operation rewinds exactly one code point").
type Tokenizer struct {
	input []rune
	pos   int

	state       internalState
	returnState internalState

	// AllowCDATA is set by the tree constructor when the current
	// insertion point is foreign content (spec §4.1: "CDATA sections
	// inside foreign content"); outside foreign content, "<![CDATA[" is
	// tokenized as a bogus comment.
	AllowCDATA bool

	lastStartTagName string

	// scratch buffers reused across states.
	tagName      strings.Builder
	attrName     strings.Builder
	attrValue    strings.Builder
	attrs        []Attribute
	selfClosing  bool
	isEndTag     bool
	commentData  strings.Builder
	doctypeName  strings.Builder
	doctypePub   strings.Builder
	doctypeSys   strings.Builder
	havePub      bool
	haveSys      bool
	forceQuirks  bool
	tempBuf      strings.Builder
	charRefCode  int64
	done         bool

	// pending holds code points still owed to the caller after a
	// multi-rune flush (character-reference recovery); Next drains it
	// before resuming the state machine.
	pending []rune

	// OnParseError is called with a short diagnostic name for every
	// recoverable parse error (spec §7); nil is a valid no-op sink.
	OnParseError func(msg string)
}

// NewTokenizer creates a Tokenizer over input, starting in the Data state.
func NewTokenizer(input string, onError func(string)) *Tokenizer {
	return &Tokenizer{
		input:        []rune(input),
		state:        stData,
		OnParseError: onError,
	}
}

// SetState overrides the tokenizer's current state. The tree constructor
// calls this immediately after consuming a StartTagToken for an element
// that switches tokenization mode (script/style/title/textarea/etc, spec
// §4.1).
func (z *Tokenizer) SetState(s TokenizerState) {
	switch s {
	case RCDATAState:
		z.state = stRCDATA
	case RAWTEXTState:
		z.state = stRAWTEXT
	case ScriptDataState:
		z.state = stScriptData
	case PlaintextState:
		z.state = stPlaintext
	default:
		z.state = stData
	}
}

// RunAll tokenizes the entire input in one call, applying the built-in
// raw-text/RCDATA table for well-known elements. Use Next/SetState
// instead when an external tree constructor needs to issue its own state
// overrides (spec §4.1 contract).
func (z *Tokenizer) RunAll() []Token {
	var out []Token
	for {
		t := z.Next()
		out = append(out, t)
		if t.Type == StartTagToken {
			if s, ok := rawTextElements[t.Name]; ok {
				z.SetState(s)
			}
		}
		if t.Type == EOFToken {
			return out
		}
	}
}

func (z *Tokenizer) err(msg string) {
	if z.OnParseError != nil {
		z.OnParseError(msg)
	}
}

func (z *Tokenizer) peek() rune {
	if z.pos >= len(z.input) {
		return eof
	}
	return z.input[z.pos]
}

func (z *Tokenizer) consume() rune {
	if z.pos >= len(z.input) {
		return eof
	}
	r := z.input[z.pos]
	z.pos++
	return r
}

func (z *Tokenizer) reconsume() {
	z.pos--
}

func (z *Tokenizer) matchAhead(s string) bool {
	rs := []rune(s)
	if z.pos+len(rs) > len(z.input) {
		return false
	}
	for i, r := range rs {
		if z.input[z.pos+i] != r {
			return false
		}
	}
	return true
}

func (z *Tokenizer) matchAheadFold(s string) bool {
	rs := []rune(s)
	if z.pos+len(rs) > len(z.input) {
		return false
	}
	for i, r := range rs {
		if foldRune(z.input[z.pos+i]) != foldRune(r) {
			return false
		}
	}
	return true
}

func foldRune(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

func isAsciiAlpha(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isWhitespace(r rune) bool {
	switch r {
	case '\t', '\n', '\f', ' ', '\r':
		return true
	}
	return false
}

func (z *Tokenizer) resetTagBuffers() {
	z.tagName.Reset()
	z.attrName.Reset()
	z.attrValue.Reset()
	z.attrs = nil
	z.selfClosing = false
}

func (z *Tokenizer) finishAttr() {
	if z.attrName.Len() == 0 {
		return
	}
	name := z.attrName.String()
	for _, a := range z.attrs {
		if a.Name == name {
			// Duplicate attribute: spec says discard it silently.
			z.attrName.Reset()
			z.attrValue.Reset()
			return
		}
	}
	z.attrs = append(z.attrs, Attribute{Name: name, Value: z.attrValue.String()})
	z.attrName.Reset()
	z.attrValue.Reset()
}

func (z *Tokenizer) makeStartOrEndTag() Token {
	z.finishAttr()
	if z.isEndTag {
		t := Token{Type: EndTagToken, Name: z.tagName.String()}
		z.resetTagBuffers()
		return t
	}
	z.lastStartTagName = z.tagName.String()
	t := Token{Type: StartTagToken, Name: z.tagName.String(), Attr: z.attrs, SelfClosing: z.selfClosing}
	z.resetTagBuffers()
	return t
}

func (z *Tokenizer) isAppropriateEndTag() bool {
	return z.tagName.String() == z.lastStartTagName
}

// Next advances the tokenizer and returns the next Token. After EOF has
// been emitted once, subsequent calls keep returning an EOFToken (the
// tokenizer never "runs past the end").
func (z *Tokenizer) Next() Token {
	if len(z.pending) > 0 {
		r := z.pending[0]
		z.pending = z.pending[1:]
		return Token{Type: CharacterToken, Codepoint: r}
	}
	if z.done {
		return Token{Type: EOFToken}
	}
	for {
		switch z.state {

		case stData:
			r := z.consume()
			switch r {
			case '&':
				z.returnState = stData
				z.state = stCharacterReference
			case '<':
				z.state = stTagOpen
			case eof:
				z.done = true
				return Token{Type: EOFToken}
			case 0:
				z.err("unexpected-null-character")
				return Token{Type: CharacterToken, Codepoint: replacementChar}
			default:
				return Token{Type: CharacterToken, Codepoint: r}
			}

		case stRCDATA:
			r := z.consume()
			switch r {
			case '&':
				z.returnState = stRCDATA
				z.state = stCharacterReference
			case '<':
				z.state = stRCDATALessThanSign
			case eof:
				z.done = true
				return Token{Type: EOFToken}
			case 0:
				return Token{Type: CharacterToken, Codepoint: replacementChar}
			default:
				return Token{Type: CharacterToken, Codepoint: r}
			}

		case stRAWTEXT:
			r := z.consume()
			switch r {
			case '<':
				z.state = stRAWTEXTLessThanSign
			case eof:
				z.done = true
				return Token{Type: EOFToken}
			case 0:
				return Token{Type: CharacterToken, Codepoint: replacementChar}
			default:
				return Token{Type: CharacterToken, Codepoint: r}
			}

		case stScriptData:
			r := z.consume()
			switch r {
			case '<':
				z.state = stScriptDataLessThanSign
			case eof:
				z.done = true
				return Token{Type: EOFToken}
			case 0:
				return Token{Type: CharacterToken, Codepoint: replacementChar}
			default:
				return Token{Type: CharacterToken, Codepoint: r}
			}

		case stPlaintext:
			r := z.consume()
			if r == eof {
				z.done = true
				return Token{Type: EOFToken}
			}
			if r == 0 {
				return Token{Type: CharacterToken, Codepoint: replacementChar}
			}
			return Token{Type: CharacterToken, Codepoint: r}

		case stTagOpen:
			r := z.consume()
			switch {
			case r == '!':
				z.state = stMarkupDeclarationOpen
			case r == '/':
				z.state = stEndTagOpen
			case isAsciiAlpha(r):
				z.isEndTag = false
				z.resetTagBuffers()
				z.reconsume()
				z.state = stTagName
			case r == '?':
				z.err("unexpected-question-mark-instead-of-tag-name")
				z.commentData.Reset()
				z.reconsume()
				z.state = stBogusComment
			case r == eof:
				z.err("eof-before-tag-name")
				z.done = true
				return Token{Type: EOFToken}
			default:
				z.err("invalid-first-character-of-tag-name")
				z.reconsume()
				z.state = stData
				return Token{Type: CharacterToken, Codepoint: '<'}
			}

		case stEndTagOpen:
			r := z.consume()
			switch {
			case isAsciiAlpha(r):
				z.isEndTag = true
				z.resetTagBuffers()
				z.reconsume()
				z.state = stTagName
			case r == '>':
				z.err("missing-end-tag-name")
				z.state = stData
			case r == eof:
				z.err("eof-before-tag-name")
				z.done = true
				return Token{Type: EOFToken}
			default:
				z.err("invalid-first-character-of-tag-name")
				z.commentData.Reset()
				z.reconsume()
				z.state = stBogusComment
			}

		case stTagName:
			r := z.consume()
			switch {
			case isWhitespace(r):
				z.state = stBeforeAttributeName
			case r == '/':
				z.state = stSelfClosingStartTag
			case r == '>':
				z.state = stData
				return z.makeStartOrEndTag()
			case r >= 'A' && r <= 'Z':
				z.tagName.WriteRune(r + ('a' - 'A'))
			case r == 0:
				z.tagName.WriteRune(replacementChar)
			case r == eof:
				z.err("eof-in-tag")
				z.done = true
				return Token{Type: EOFToken}
			default:
				z.tagName.WriteRune(r)
			}

		case stBeforeAttributeName:
			r := z.consume()
			switch {
			case isWhitespace(r):
				// ignore
			case r == '/' || r == '>' || r == eof:
				z.reconsume()
				z.state = stAfterAttributeName
			case r == '=':
				z.err("unexpected-equals-sign-before-attribute-name")
				z.attrName.WriteRune(r)
				z.state = stAttributeName
			default:
				z.reconsume()
				z.state = stAttributeName
			}

		case stAttributeName:
			r := z.consume()
			switch {
			case isWhitespace(r), r == '/', r == '>', r == eof:
				z.reconsume()
				z.state = stAfterAttributeName
			case r == '=':
				z.state = stBeforeAttributeValue
			case r >= 'A' && r <= 'Z':
				z.attrName.WriteRune(r + ('a' - 'A'))
			case r == 0:
				z.attrName.WriteRune(replacementChar)
			default:
				z.attrName.WriteRune(r)
			}

		case stAfterAttributeName:
			r := z.consume()
			switch {
			case isWhitespace(r):
				// ignore
			case r == '/':
				z.finishAttr()
				z.state = stSelfClosingStartTag
			case r == '=':
				z.state = stBeforeAttributeValue
			case r == '>':
				z.finishAttr()
				z.state = stData
				return z.makeStartOrEndTag()
			case r == eof:
				z.err("eof-in-tag")
				z.done = true
				return Token{Type: EOFToken}
			default:
				z.finishAttr()
				z.reconsume()
				z.state = stAttributeName
			}

		case stBeforeAttributeValue:
			r := z.consume()
			switch {
			case isWhitespace(r):
				// ignore
			case r == '"':
				z.state = stAttributeValueDouble
			case r == '\'':
				z.state = stAttributeValueSingle
			case r == '>':
				z.err("missing-attribute-value")
				z.finishAttr()
				z.state = stData
				return z.makeStartOrEndTag()
			default:
				z.reconsume()
				z.state = stAttributeValueUnquoted
			}

		case stAttributeValueDouble:
			r := z.consume()
			switch r {
			case '"':
				z.state = stAfterAttributeValueQuoted
			case '&':
				z.returnState = stAttributeValueDouble
				z.state = stCharacterReference
			case 0:
				z.attrValue.WriteRune(replacementChar)
			case eof:
				z.err("eof-in-tag")
				z.done = true
				return Token{Type: EOFToken}
			default:
				z.attrValue.WriteRune(r)
			}

		case stAttributeValueSingle:
			r := z.consume()
			switch r {
			case '\'':
				z.state = stAfterAttributeValueQuoted
			case '&':
				z.returnState = stAttributeValueSingle
				z.state = stCharacterReference
			case 0:
				z.attrValue.WriteRune(replacementChar)
			case eof:
				z.err("eof-in-tag")
				z.done = true
				return Token{Type: EOFToken}
			default:
				z.attrValue.WriteRune(r)
			}

		case stAttributeValueUnquoted:
			r := z.consume()
			switch {
			case isWhitespace(r):
				z.finishAttr()
				z.state = stBeforeAttributeName
			case r == '&':
				z.returnState = stAttributeValueUnquoted
				z.state = stCharacterReference
			case r == '>':
				z.finishAttr()
				z.state = stData
				return z.makeStartOrEndTag()
			case r == 0:
				z.attrValue.WriteRune(replacementChar)
			case r == eof:
				z.err("eof-in-tag")
				z.done = true
				return Token{Type: EOFToken}
			default:
				z.attrValue.WriteRune(r)
			}

		case stAfterAttributeValueQuoted:
			r := z.consume()
			switch {
			case isWhitespace(r):
				z.finishAttr()
				z.state = stBeforeAttributeName
			case r == '/':
				z.finishAttr()
				z.state = stSelfClosingStartTag
			case r == '>':
				z.finishAttr()
				z.state = stData
				return z.makeStartOrEndTag()
			case r == eof:
				z.err("eof-in-tag")
				z.done = true
				return Token{Type: EOFToken}
			default:
				z.err("missing-whitespace-between-attributes")
				z.reconsume()
				z.state = stBeforeAttributeName
			}

		case stSelfClosingStartTag:
			r := z.consume()
			switch r {
			case '>':
				z.selfClosing = true
				z.state = stData
				return z.makeStartOrEndTag()
			case eof:
				z.err("eof-in-tag")
				z.done = true
				return Token{Type: EOFToken}
			default:
				z.err("unexpected-solidus-in-tag")
				z.reconsume()
				z.state = stBeforeAttributeName
			}

		case stMarkupDeclarationOpen:
			switch {
			case z.matchAhead("--"):
				z.pos += 2
				z.commentData.Reset()
				z.state = stCommentStart
			case z.matchAheadFold("DOCTYPE"):
				z.pos += 7
				z.state = stDoctype
			case z.AllowCDATA && z.matchAhead("[CDATA["):
				z.pos += 7
				z.state = stCDATASection
			default:
				z.err("incorrectly-opened-comment")
				z.commentData.Reset()
				z.state = stBogusComment
			}

		case stCommentStart:
			r := z.consume()
			switch r {
			case '-':
				z.state = stCommentStartDash
			case '>':
				z.err("abrupt-closing-of-empty-comment")
				z.state = stData
				return Token{Type: CommentToken, Data: z.commentData.String()}
			default:
				z.reconsume()
				z.state = stComment
			}

		case stCommentStartDash:
			r := z.consume()
			switch r {
			case '-':
				z.state = stCommentEnd
			case '>':
				z.err("abrupt-closing-of-empty-comment")
				z.state = stData
				return Token{Type: CommentToken, Data: z.commentData.String()}
			case eof:
				z.done = true
				return Token{Type: CommentToken, Data: z.commentData.String()}
			default:
				z.commentData.WriteByte('-')
				z.reconsume()
				z.state = stComment
			}

		case stComment:
			r := z.consume()
			switch r {
			case '<':
				z.commentData.WriteRune(r)
				// (nested comment markers are non-conforming; ignored)
			case '-':
				z.state = stCommentEndDash
			case 0:
				z.commentData.WriteRune(replacementChar)
			case eof:
				z.err("eof-in-comment")
				z.done = true
				return Token{Type: CommentToken, Data: z.commentData.String()}
			default:
				z.commentData.WriteRune(r)
			}

		case stCommentEndDash:
			r := z.consume()
			switch r {
			case '-':
				z.state = stCommentEnd
			case eof:
				z.err("eof-in-comment")
				z.done = true
				return Token{Type: CommentToken, Data: z.commentData.String()}
			default:
				z.commentData.WriteByte('-')
				z.reconsume()
				z.state = stComment
			}

		case stCommentEnd:
			r := z.consume()
			switch r {
			case '>':
				z.state = stData
				return Token{Type: CommentToken, Data: z.commentData.String()}
			case '!':
				z.state = stCommentEndBang
			case '-':
				z.commentData.WriteByte('-')
			case eof:
				z.err("eof-in-comment")
				z.done = true
				return Token{Type: CommentToken, Data: z.commentData.String()}
			default:
				z.commentData.WriteString("--")
				z.reconsume()
				z.state = stComment
			}

		case stCommentEndBang:
			r := z.consume()
			switch r {
			case '-':
				z.commentData.WriteString("--!")
				z.state = stCommentEndDash
			case '>':
				z.err("incorrectly-closed-comment")
				z.state = stData
				return Token{Type: CommentToken, Data: z.commentData.String()}
			case eof:
				z.err("eof-in-comment")
				z.done = true
				return Token{Type: CommentToken, Data: z.commentData.String()}
			default:
				z.commentData.WriteString("--!")
				z.reconsume()
				z.state = stComment
			}

		case stBogusComment:
			r := z.consume()
			switch r {
			case '>':
				z.state = stData
				return Token{Type: CommentToken, Data: z.commentData.String()}
			case eof:
				z.done = true
				return Token{Type: CommentToken, Data: z.commentData.String()}
			case 0:
				z.commentData.WriteRune(replacementChar)
			default:
				z.commentData.WriteRune(r)
			}

		case stCDATASection:
			r := z.consume()
			switch r {
			case ']':
				if z.matchAhead("]>") {
					z.pos += 2
					z.state = stData
					continue
				}
				return Token{Type: CharacterToken, Codepoint: ']'}
			case eof:
				z.err("eof-in-cdata")
				z.done = true
				return Token{Type: EOFToken}
			default:
				return Token{Type: CharacterToken, Codepoint: r}
			}

		case stDoctype:
			r := z.consume()
			switch {
			case isWhitespace(r):
				z.state = stBeforeDoctypeName
			case r == '>':
				z.reconsume()
				z.state = stBeforeDoctypeName
			case r == eof:
				z.err("eof-in-doctype")
				z.done = true
				return Token{Type: DoctypeToken, DoctypeName: "", ForceQuirks: true}
			default:
				z.err("missing-whitespace-before-doctype-name")
				z.reconsume()
				z.state = stBeforeDoctypeName
			}

		case stBeforeDoctypeName:
			r := z.consume()
			switch {
			case isWhitespace(r):
				// ignore
			case r >= 'A' && r <= 'Z':
				z.doctypeName.Reset()
				z.doctypePub.Reset()
				z.doctypeSys.Reset()
				z.havePub, z.haveSys, z.forceQuirks = false, false, false
				z.doctypeName.WriteRune(r + ('a' - 'A'))
				z.state = stDoctypeName
			case r == 0:
				z.doctypeName.Reset()
				z.doctypeName.WriteRune(replacementChar)
				z.state = stDoctypeName
			case r == '>':
				z.err("missing-doctype-name")
				z.state = stData
				return Token{Type: DoctypeToken, ForceQuirks: true}
			case r == eof:
				z.err("eof-in-doctype")
				z.done = true
				return Token{Type: DoctypeToken, ForceQuirks: true}
			default:
				z.doctypeName.Reset()
				z.doctypePub.Reset()
				z.doctypeSys.Reset()
				z.havePub, z.haveSys, z.forceQuirks = false, false, false
				z.doctypeName.WriteRune(r)
				z.state = stDoctypeName
			}

		case stDoctypeName:
			r := z.consume()
			switch {
			case isWhitespace(r):
				z.state = stAfterDoctypeName
			case r == '>':
				z.state = stData
				return z.makeDoctype()
			case r >= 'A' && r <= 'Z':
				z.doctypeName.WriteRune(r + ('a' - 'A'))
			case r == 0:
				z.doctypeName.WriteRune(replacementChar)
			case r == eof:
				z.err("eof-in-doctype")
				z.forceQuirks = true
				z.done = true
				return z.makeDoctype()
			default:
				z.doctypeName.WriteRune(r)
			}

		case stAfterDoctypeName:
			switch {
			case z.matchAheadFold("PUBLIC"):
				z.pos += 6
				z.state = stAfterDoctypePublicKeyword
			case z.matchAheadFold("SYSTEM"):
				z.pos += 6
				z.state = stAfterDoctypeSystemKeyword
			default:
				r := z.consume()
				switch {
				case isWhitespace(r):
					// ignore
				case r == '>':
					z.state = stData
					return z.makeDoctype()
				case r == eof:
					z.err("eof-in-doctype")
					z.forceQuirks = true
					z.done = true
					return z.makeDoctype()
				default:
					z.err("invalid-character-sequence-after-doctype-name")
					z.forceQuirks = true
					z.reconsume()
					z.state = stBogusDoctype
				}
			}

		case stAfterDoctypePublicKeyword:
			r := z.consume()
			switch {
			case isWhitespace(r):
				z.state = stBeforeDoctypePublicIdentifier
			case r == '"':
				z.doctypePub.Reset()
				z.havePub = true
				z.state = stDoctypePublicIdentifierDouble
			case r == '\'':
				z.doctypePub.Reset()
				z.havePub = true
				z.state = stDoctypePublicIdentifierSingle
			case r == '>':
				z.err("missing-doctype-public-identifier")
				z.forceQuirks = true
				z.state = stData
				return z.makeDoctype()
			case r == eof:
				z.forceQuirks = true
				z.done = true
				return z.makeDoctype()
			default:
				z.err("missing-quote-before-doctype-public-identifier")
				z.forceQuirks = true
				z.reconsume()
				z.state = stBogusDoctype
			}

		case stBeforeDoctypePublicIdentifier:
			r := z.consume()
			switch {
			case isWhitespace(r):
				// ignore
			case r == '"':
				z.doctypePub.Reset()
				z.havePub = true
				z.state = stDoctypePublicIdentifierDouble
			case r == '\'':
				z.doctypePub.Reset()
				z.havePub = true
				z.state = stDoctypePublicIdentifierSingle
			case r == '>':
				z.forceQuirks = true
				z.state = stData
				return z.makeDoctype()
			default:
				z.forceQuirks = true
				z.reconsume()
				z.state = stBogusDoctype
			}

		case stDoctypePublicIdentifierDouble:
			r := z.consume()
			switch r {
			case '"':
				z.state = stAfterDoctypePublicIdentifier
			case 0:
				z.doctypePub.WriteRune(replacementChar)
			case '>':
				z.forceQuirks = true
				z.state = stData
				return z.makeDoctype()
			case eof:
				z.forceQuirks = true
				z.done = true
				return z.makeDoctype()
			default:
				z.doctypePub.WriteRune(r)
			}

		case stDoctypePublicIdentifierSingle:
			r := z.consume()
			switch r {
			case '\'':
				z.state = stAfterDoctypePublicIdentifier
			case 0:
				z.doctypePub.WriteRune(replacementChar)
			case '>':
				z.forceQuirks = true
				z.state = stData
				return z.makeDoctype()
			case eof:
				z.forceQuirks = true
				z.done = true
				return z.makeDoctype()
			default:
				z.doctypePub.WriteRune(r)
			}

		case stAfterDoctypePublicIdentifier:
			r := z.consume()
			switch {
			case isWhitespace(r):
				z.state = stBetweenDoctypePublicAndSystem
			case r == '>':
				z.state = stData
				return z.makeDoctype()
			case r == '"':
				z.doctypeSys.Reset()
				z.haveSys = true
				z.state = stDoctypeSystemIdentifierDouble
			case r == '\'':
				z.doctypeSys.Reset()
				z.haveSys = true
				z.state = stDoctypeSystemIdentifierSingle
			case r == eof:
				z.forceQuirks = true
				z.done = true
				return z.makeDoctype()
			default:
				z.forceQuirks = true
				z.reconsume()
				z.state = stBogusDoctype
			}

		case stBetweenDoctypePublicAndSystem:
			r := z.consume()
			switch {
			case isWhitespace(r):
				// ignore
			case r == '>':
				z.state = stData
				return z.makeDoctype()
			case r == '"':
				z.doctypeSys.Reset()
				z.haveSys = true
				z.state = stDoctypeSystemIdentifierDouble
			case r == '\'':
				z.doctypeSys.Reset()
				z.haveSys = true
				z.state = stDoctypeSystemIdentifierSingle
			case r == eof:
				z.forceQuirks = true
				z.done = true
				return z.makeDoctype()
			default:
				z.forceQuirks = true
				z.reconsume()
				z.state = stBogusDoctype
			}

		case stAfterDoctypeSystemKeyword:
			r := z.consume()
			switch {
			case isWhitespace(r):
				z.state = stBeforeDoctypeSystemIdentifier
			case r == '"':
				z.doctypeSys.Reset()
				z.haveSys = true
				z.state = stDoctypeSystemIdentifierDouble
			case r == '\'':
				z.doctypeSys.Reset()
				z.haveSys = true
				z.state = stDoctypeSystemIdentifierSingle
			case r == '>':
				z.forceQuirks = true
				z.state = stData
				return z.makeDoctype()
			case r == eof:
				z.forceQuirks = true
				z.done = true
				return z.makeDoctype()
			default:
				z.forceQuirks = true
				z.reconsume()
				z.state = stBogusDoctype
			}

		case stBeforeDoctypeSystemIdentifier:
			r := z.consume()
			switch {
			case isWhitespace(r):
				// ignore
			case r == '"':
				z.doctypeSys.Reset()
				z.haveSys = true
				z.state = stDoctypeSystemIdentifierDouble
			case r == '\'':
				z.doctypeSys.Reset()
				z.haveSys = true
				z.state = stDoctypeSystemIdentifierSingle
			case r == '>':
				z.forceQuirks = true
				z.state = stData
				return z.makeDoctype()
			default:
				z.forceQuirks = true
				z.reconsume()
				z.state = stBogusDoctype
			}

		case stDoctypeSystemIdentifierDouble:
			r := z.consume()
			switch r {
			case '"':
				z.state = stAfterDoctypeSystemIdentifier
			case 0:
				z.doctypeSys.WriteRune(replacementChar)
			case '>':
				z.forceQuirks = true
				z.state = stData
				return z.makeDoctype()
			case eof:
				z.forceQuirks = true
				z.done = true
				return z.makeDoctype()
			default:
				z.doctypeSys.WriteRune(r)
			}

		case stDoctypeSystemIdentifierSingle:
			r := z.consume()
			switch r {
			case '\'':
				z.state = stAfterDoctypeSystemIdentifier
			case 0:
				z.doctypeSys.WriteRune(replacementChar)
			case '>':
				z.forceQuirks = true
				z.state = stData
				return z.makeDoctype()
			case eof:
				z.forceQuirks = true
				z.done = true
				return z.makeDoctype()
			default:
				z.doctypeSys.WriteRune(r)
			}

		case stAfterDoctypeSystemIdentifier:
			r := z.consume()
			switch {
			case isWhitespace(r):
				// ignore
			case r == '>':
				z.state = stData
				return z.makeDoctype()
			case r == eof:
				z.forceQuirks = true
				z.done = true
				return z.makeDoctype()
			default:
				z.err("unexpected-character-after-doctype-system-identifier")
				z.reconsume()
				z.state = stBogusDoctype
			}

		case stBogusDoctype:
			r := z.consume()
			switch r {
			case '>':
				z.state = stData
				return z.makeDoctype()
			case eof:
				z.done = true
				return z.makeDoctype()
			default:
				// ignore
			}

		case stRCDATALessThanSign:
			r := z.consume()
			if r == '/' {
				z.tempBuf.Reset()
				z.state = stRCDATAEndTagOpen
			} else {
				z.reconsume()
				z.state = stRCDATA
				return Token{Type: CharacterToken, Codepoint: '<'}
			}

		case stRAWTEXTLessThanSign:
			r := z.consume()
			if r == '/' {
				z.tempBuf.Reset()
				z.state = stRAWTEXTEndTagOpen
			} else {
				z.reconsume()
				z.state = stRAWTEXT
				return Token{Type: CharacterToken, Codepoint: '<'}
			}

		case stScriptDataLessThanSign:
			r := z.consume()
			if r == '/' {
				z.tempBuf.Reset()
				z.state = stScriptDataEndTagOpen
			} else {
				z.reconsume()
				z.state = stScriptData
				return Token{Type: CharacterToken, Codepoint: '<'}
			}

		case stRCDATAEndTagOpen, stRAWTEXTEndTagOpen, stScriptDataEndTagOpen:
			r := z.consume()
			if isAsciiAlpha(r) {
				z.resetTagBuffers()
				z.isEndTag = true
				z.reconsume()
				z.state = endTagNameStateFor(z.state)
			} else {
				z.reconsume()
				z.state = rawStateFor(z.state)
				return Token{Type: CharacterToken, Codepoint: '<'}
			}

		case stRCDATAEndTagName, stRAWTEXTEndTagName, stScriptDataEndTagName:
			r := z.consume()
			raw := rawStateFor(z.state)
			switch {
			case isWhitespace(r) && z.isAppropriateEndTag():
				z.state = stBeforeAttributeName
			case r == '/' && z.isAppropriateEndTag():
				z.state = stSelfClosingStartTag
			case r == '>' && z.isAppropriateEndTag():
				z.state = stData
				return z.makeStartOrEndTag()
			case r >= 'A' && r <= 'Z':
				z.tagName.WriteRune(r + ('a' - 'A'))
				z.tempBuf.WriteRune(r)
			case isAsciiAlpha(r):
				z.tagName.WriteRune(r)
				z.tempBuf.WriteRune(r)
			default:
				// Not a valid/appropriate end tag: emit '<','/', the
				// buffered chars so far as characters, and reprocess r
				// in the raw state.
				z.state = raw
				z.reconsume()
				return z.flushBogusEndTag()
			}

		case stCharacterReference:
			z.tempBuf.Reset()
			z.tempBuf.WriteByte('&')
			r := z.consume()
			switch {
			case isAsciiAlpha(r) || (r >= '0' && r <= '9'):
				z.reconsume()
				z.state = stNamedCharacterReference
			case r == '#':
				z.tempBuf.WriteRune(r)
				z.state = stNumericCharacterReference
			default:
				z.reconsume()
				z.state = z.returnState
				return z.flushTempBufAsChars()
			}

		case stNamedCharacterReference:
			name, repl, matched := z.matchNamedRef()
			if matched {
				z.pos += len([]rune(name))
				z.state = z.returnState
				return Token{Type: CharacterToken, Codepoint: []rune(repl)[0]}
			}
			z.state = stAmbiguousAmpersand
			continue

		case stAmbiguousAmpersand:
			r := z.consume()
			switch {
			case isAsciiAlpha(r) || (r >= '0' && r <= '9'):
				z.tempBuf.WriteRune(r)
			case r == ';':
				z.err("unknown-named-character-reference")
				z.reconsume()
				z.state = z.returnState
				return z.flushTempBufAsChars()
			default:
				z.reconsume()
				z.state = z.returnState
				return z.flushTempBufAsChars()
			}

		case stNumericCharacterReference:
			z.charRefCode = 0
			r := z.consume()
			switch {
			case r == 'x' || r == 'X':
				z.tempBuf.WriteRune(r)
				z.state = stHexadecimalCharacterReferenceStart
			default:
				z.reconsume()
				z.state = stDecimalCharacterReferenceStart
			}

		case stHexadecimalCharacterReferenceStart:
			r := z.peek()
			if isHexDigit(r) {
				z.state = stHexadecimalCharacterReference
			} else {
				z.err("absence-of-digits-in-numeric-character-reference")
				z.state = z.returnState
				return z.flushTempBufAsChars()
			}

		case stDecimalCharacterReferenceStart:
			r := z.peek()
			if r >= '0' && r <= '9' {
				z.state = stDecimalCharacterReference
			} else {
				z.err("absence-of-digits-in-numeric-character-reference")
				z.state = z.returnState
				return z.flushTempBufAsChars()
			}

		case stHexadecimalCharacterReference:
			r := z.consume()
			switch {
			case isHexDigit(r):
				z.charRefCode = z.charRefCode*16 + int64(hexVal(r))
			case r == ';':
				z.state = stNumericCharacterReferenceEnd
			default:
				z.reconsume()
				z.state = stNumericCharacterReferenceEnd
			}

		case stDecimalCharacterReference:
			r := z.consume()
			switch {
			case r >= '0' && r <= '9':
				z.charRefCode = z.charRefCode*10 + int64(r-'0')
			case r == ';':
				z.state = stNumericCharacterReferenceEnd
			default:
				z.reconsume()
				z.state = stNumericCharacterReferenceEnd
			}

		case stNumericCharacterReferenceEnd:
			z.state = z.returnState
			return Token{Type: CharacterToken, Codepoint: z.resolveNumericRef()}
		}
	}
}

func (z *Tokenizer) flushBogusEndTag() Token {
	// Reconstruct "</" + buffered letters as a single character token
	// stream collapsed to one token (callers coalesce runs anyway); we
	// return the '<' here and let the state machine re-emit the rest via
	// successive Next() calls by pushing pos back before "</name".
	back := 2 + z.tempBuf.Len()
	z.pos -= back
	z.pos++ // consume just the leading '<', rest replays as ordinary chars
	return Token{Type: CharacterToken, Codepoint: '<'}
}

func (z *Tokenizer) flushTempBufAsChars() Token {
	r := []rune(z.tempBuf.String())
	if len(r) == 0 {
		return z.Next()
	}
	first := r[0]
	z.pending = r[1:]
	return Token{Type: CharacterToken, Codepoint: first}
}

func (z *Tokenizer) makeDoctype() Token {
	t := Token{
		Type:        DoctypeToken,
		DoctypeName: z.doctypeName.String(),
		ForceQuirks: z.forceQuirks,
	}
	if z.havePub {
		t.DoctypePublicID = z.doctypePub.String()
	}
	if z.haveSys {
		t.DoctypeSystemID = z.doctypeSys.String()
	}
	return t
}

// rawStateFor maps an EndTagOpen/EndTagName substate back to the raw
// state it is nested under (RCDATA/RAWTEXT/ScriptData).
func rawStateFor(s internalState) internalState {
	switch s {
	case stRCDATAEndTagOpen, stRCDATAEndTagName:
		return stRCDATA
	case stRAWTEXTEndTagOpen, stRAWTEXTEndTagName:
		return stRAWTEXT
	default:
		return stScriptData
	}
}

// endTagNameStateFor maps an EndTagOpen substate to its EndTagName
// counterpart.
func endTagNameStateFor(s internalState) internalState {
	switch s {
	case stRCDATAEndTagOpen:
		return stRCDATAEndTagName
	case stRAWTEXTEndTagOpen:
		return stRAWTEXTEndTagName
	default:
		return stScriptDataEndTagName
	}
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func hexVal(r rune) int {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0')
	case r >= 'a' && r <= 'f':
		return int(r-'a') + 10
	default:
		return int(r-'A') + 10
	}
}

// resolveNumericRef applies the spec's numeric-character-reference-end
// validation table: the Windows-1252 remap for the 0x80-0x9F C1 range,
// U+FFFD for null/out-of-range/surrogate code points, and a parse-error
// diagnostic (but no substitution) for non-characters and most controls.
func (z *Tokenizer) resolveNumericRef() rune {
	code := z.charRefCode
	if code == 0 {
		z.err("null-character-reference")
		return replacementChar
	}
	if code > 0x10FFFF {
		z.err("character-reference-outside-unicode-range")
		return replacementChar
	}
	r := rune(code)
	if isSurrogate(r) {
		z.err("surrogate-character-reference")
		return replacementChar
	}
	if repl, ok := numericRefReplacements[r]; ok {
		z.err("control-character-reference")
		return repl
	}
	if r == 0x0D || (r < 0x20 && !isWhitespace(r)) || (r >= 0x7F && r <= 0x9F) {
		z.err("control-character-reference")
	}
	if isNonCharacter(r) {
		z.err("noncharacter-character-reference")
		return r
	}
	return r
}

// matchNamedRef greedily matches the longest named reference starting at
// the current position (after the leading '&' already buffered), per the
// spec's longest-match rule constrained to our practical subset table.
func (z *Tokenizer) matchNamedRef() (name, replacement string, ok bool) {
	remaining := string(z.input[z.pos:])
	bestLen := 0
	var bestName, bestRepl string
	for n, repl := range namedCharRefs {
		if strings.HasPrefix(remaining, n) && len(n) > bestLen {
			bestLen = len(n)
			bestName = n
			bestRepl = repl
		}
	}
	if bestLen == 0 {
		return "", "", false
	}
	return bestName, bestRepl, true
}
