package htmltok

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func collectChars(t *testing.T, toks []Token) string {
	t.Helper()
	var out []rune
	for _, tok := range toks {
		if tok.Type == CharacterToken {
			out = append(out, tok.Codepoint)
		}
	}
	return string(out)
}

func TestDataStateCharacters(t *testing.T) {
	z := NewTokenizer("hello", nil)
	toks := z.RunAll()
	require.Equal(t, "hello", collectChars(t, toks))
	require.Equal(t, EOFToken, toks[len(toks)-1].Type)
}

func TestSimpleStartAndEndTag(t *testing.T) {
	z := NewTokenizer("<p>hi</p>", nil)
	toks := z.RunAll()
	require.Equal(t, StartTagToken, toks[0].Type)
	require.Equal(t, "p", toks[0].Name)
	require.Equal(t, "hi", collectChars(t, toks))
	var sawEnd bool
	for _, tok := range toks {
		if tok.Type == EndTagToken {
			require.Equal(t, "p", tok.Name)
			sawEnd = true
		}
	}
	require.True(t, sawEnd)
}

func TestAttributesAllQuoteStyles(t *testing.T) {
	z := NewTokenizer(`<a href="x" title='y' disabled>`, nil)
	toks := z.RunAll()
	require.Equal(t, StartTagToken, toks[0].Type)
	attrs := toks[0].Attr
	require.Len(t, attrs, 3)
	require.Equal(t, Attribute{Name: "href", Value: "x"}, attrs[0])
	require.Equal(t, Attribute{Name: "title", Value: "y"}, attrs[1])
	require.Equal(t, Attribute{Name: "disabled", Value: ""}, attrs[2])
}

func TestSelfClosingFlagOnlyRightBeforeGT(t *testing.T) {
	z := NewTokenizer(`<br/>`, nil)
	toks := z.RunAll()
	require.True(t, toks[0].SelfClosing)

	z2 := NewTokenizer(`<div a=b/c>`, nil)
	toks2 := z2.RunAll()
	require.False(t, toks2[0].SelfClosing)
}

func TestDuplicateAttributeDiscarded(t *testing.T) {
	z := NewTokenizer(`<a href="first" href="second">`, nil)
	toks := z.RunAll()
	require.Len(t, toks[0].Attr, 1)
	require.Equal(t, "first", toks[0].Attr[0].Value)
}

func TestComment(t *testing.T) {
	z := NewTokenizer(`<!-- hello -->`, nil)
	toks := z.RunAll()
	require.Equal(t, CommentToken, toks[0].Type)
	require.Equal(t, " hello ", toks[0].Data)
}

func TestBogusCommentFromQuestionMark(t *testing.T) {
	var errs []string
	z := NewTokenizer(`<?xml version="1.0"?>`, func(m string) { errs = append(errs, m) })
	toks := z.RunAll()
	require.Equal(t, CommentToken, toks[0].Type)
	require.Contains(t, errs, "unexpected-question-mark-instead-of-tag-name")
}

func TestDoctypeSimple(t *testing.T) {
	z := NewTokenizer(`<!DOCTYPE html>`, nil)
	toks := z.RunAll()
	require.Equal(t, DoctypeToken, toks[0].Type)
	require.Equal(t, "html", toks[0].DoctypeName)
	require.False(t, toks[0].ForceQuirks)
}

func TestDoctypeWithPublicAndSystem(t *testing.T) {
	z := NewTokenizer(`<!DOCTYPE html PUBLIC "-//W3C//DTD HTML 4.01//EN" "http://www.w3.org/TR/html4/strict.dtd">`, nil)
	toks := z.RunAll()
	require.Equal(t, DoctypeToken, toks[0].Type)
	require.Equal(t, "html", toks[0].DoctypeName)
	require.Equal(t, "-//W3C//DTD HTML 4.01//EN", toks[0].DoctypePublicID)
	require.Equal(t, "http://www.w3.org/TR/html4/strict.dtd", toks[0].DoctypeSystemID)
}

func TestNamedCharacterReference(t *testing.T) {
	z := NewTokenizer("a &amp; b", nil)
	toks := z.RunAll()
	require.Equal(t, "a & b", collectChars(t, toks))
}

func TestNumericCharacterReferenceDecimalAndHex(t *testing.T) {
	z := NewTokenizer("&#65;&#x42;", nil)
	toks := z.RunAll()
	require.Equal(t, "AB", collectChars(t, toks))
}

func TestInvalidNumericReferenceRemapsToWindows1252(t *testing.T) {
	z := NewTokenizer("&#128;", nil)
	toks := z.RunAll()
	require.Equal(t, "€", collectChars(t, toks))
}

func TestNullNumericReferenceIsReplacementChar(t *testing.T) {
	z := NewTokenizer("&#0;", nil)
	toks := z.RunAll()
	require.Equal(t, string(replacementChar), collectChars(t, toks))
}

func TestAmbiguousAmpersandFallsBackToLiteral(t *testing.T) {
	z := NewTokenizer("&notareference;", nil)
	toks := z.RunAll()
	require.Equal(t, "&notareference;", collectChars(t, toks))
}

func TestRAWTEXTRoutingForScript(t *testing.T) {
	z := NewTokenizer(`<script>var x = "<div>";</script>done`, nil)
	var toks []Token
	for {
		tok := z.Next()
		toks = append(toks, tok)
		if tok.Type == StartTagToken && tok.Name == "script" {
			z.SetState(ScriptDataState)
		}
		if tok.Type == EOFToken {
			break
		}
	}

	var sawEndScript bool
	var chars []rune
	inBody := false
	for _, tok := range toks {
		switch {
		case tok.Type == StartTagToken && tok.Name == "script":
			inBody = true
		case tok.Type == EndTagToken && tok.Name == "script":
			sawEndScript = true
			inBody = false
		case tok.Type == CharacterToken && inBody:
			chars = append(chars, tok.Codepoint)
		}
	}
	require.Equal(t, `var x = "<div>";`, string(chars))
	require.True(t, sawEndScript)
}

func TestRAWTEXTMismatchedEndTagReplaysAsCharacters(t *testing.T) {
	z := NewTokenizer(`x</notscript> y`, nil)
	z.SetState(ScriptDataState)
	z.lastStartTagName = "script"
	toks := z.RunAll()
	require.Equal(t, "x</notscript> y", collectChars(t, toks))
}

func TestCDATASectionOutsideForeignContentIsBogusComment(t *testing.T) {
	z := NewTokenizer(`<![CDATA[hi]]>`, nil)
	toks := z.RunAll()
	require.Equal(t, CommentToken, toks[0].Type)
}

func TestCDATASectionInsideForeignContent(t *testing.T) {
	z := NewTokenizer(`<![CDATA[hi]]>`, nil)
	z.AllowCDATA = true
	toks := z.RunAll()
	require.Equal(t, "hi", collectChars(t, toks))
}

func TestNullCharacterInDataIsReplacementChar(t *testing.T) {
	z := NewTokenizer("a\x00b", nil)
	toks := z.RunAll()
	require.Equal(t, "a"+string(replacementChar)+"b", collectChars(t, toks))
}
