// Package csstok adapts tdewolff/parse/v2/css's low-level lexer into the
// CSS Syntax Level 3 token model (spec §3): a flat stream of component
// values (idents, numbers, strings, delimiters, punctuation) that
// cssparse groups into functions, simple blocks, declarations and rules.
package csstok

import (
	"strconv"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

func newInput(src string) *parse.Input {
	return parse.NewInputString(src)
}

// Kind is the discriminant of Token (spec §3's CSS token sum type).
type Kind uint8

const (
	Ident Kind = iota
	Function
	AtKeyword
	Hash
	String
	BadString
	URL
	BadURL
	Delim
	Number
	Percentage
	Dimension
	Whitespace
	CDO
	CDC
	Colon
	Semicolon
	Comma
	LeftBracket
	RightBracket
	LeftParen
	RightParen
	LeftBrace
	RightBrace
	EOF
)

// Token is one CSS component value as defined by the tokenization
// algorithm (spec §3). Numeric tokens carry both the original textual
// representation and the parsed float64 value; HashTokens distinguish
// "id"-type hashes (valid identifier, used by ID selectors) from
// "unrestricted" ones.
type Token struct {
	Kind  Kind
	Value string // ident/function/at-keyword/hash/string/url/delim text
	Unit  string // dimension unit, empty otherwise
	Num   float64
	IsInt bool
	HashID bool
}

// Tokenizer turns a CSS source string into a Token stream, skipping
// the comment tokens tdewolff's lexer emits but preserving
// whitespace tokens since the selector grammar is whitespace-sensitive
// (the descendant combinator is literally " ").
type Tokenizer struct {
	lex  *css.Lexer
	done bool
}

func NewTokenizer(src string) *Tokenizer {
	return &Tokenizer{lex: css.NewLexer(newInput(src))}
}

// Next returns the next token, or a Token{Kind: EOF} once input is
// exhausted (repeated calls after EOF keep returning EOF).
func (t *Tokenizer) Next() Token {
	if t.done {
		return Token{Kind: EOF}
	}
	for {
		tt, data := t.lex.Next()
		switch tt {
		case css.ErrorToken:
			t.done = true
			return Token{Kind: EOF}
		case css.WhitespaceToken:
			return Token{Kind: Whitespace, Value: " "}
		case css.CommentToken:
			continue
		case css.IdentToken:
			return Token{Kind: Ident, Value: string(data)}
		case css.FunctionToken:
			return Token{Kind: Function, Value: strings.TrimSuffix(string(data), "(")}
		case css.AtKeywordToken:
			return Token{Kind: AtKeyword, Value: strings.TrimPrefix(string(data), "@")}
		case css.HashToken:
			v := strings.TrimPrefix(string(data), "#")
			return Token{Kind: Hash, Value: v, HashID: isIdentifier(v)}
		case css.StringToken:
			return Token{Kind: String, Value: unquote(string(data))}
		case css.BadStringToken:
			return Token{Kind: BadString}
		case css.URLToken:
			return Token{Kind: URL, Value: extractURL(string(data))}
		case css.BadURLToken:
			return Token{Kind: BadURL}
		case css.DelimToken,
			css.IncludeMatchToken, css.DashMatchToken, css.PrefixMatchToken,
			css.SuffixMatchToken, css.SubstringMatchToken:
			return Token{Kind: Delim, Value: string(data)}
		case css.NumberToken:
			n, isInt := parseNumber(string(data))
			return Token{Kind: Number, Value: string(data), Num: n, IsInt: isInt}
		case css.PercentageToken:
			s := strings.TrimSuffix(string(data), "%")
			n, _ := parseNumber(s)
			return Token{Kind: Percentage, Value: string(data), Num: n}
		case css.DimensionToken:
			num, unit := splitDimension(string(data))
			n, isInt := parseNumber(num)
			return Token{Kind: Dimension, Value: string(data), Num: n, IsInt: isInt, Unit: unit}
		case css.CDOToken:
			return Token{Kind: CDO}
		case css.CDCToken:
			return Token{Kind: CDC}
		case css.ColonToken:
			return Token{Kind: Colon}
		case css.SemicolonToken:
			return Token{Kind: Semicolon}
		case css.CommaToken:
			return Token{Kind: Comma}
		case css.LeftBracketToken:
			return Token{Kind: LeftBracket}
		case css.RightBracketToken:
			return Token{Kind: RightBracket}
		case css.LeftParenthesisToken:
			return Token{Kind: LeftParen}
		case css.RightParenthesisToken:
			return Token{Kind: RightParen}
		case css.LeftBraceToken:
			return Token{Kind: LeftBrace}
		case css.RightBraceToken:
			return Token{Kind: RightBrace}
		default:
			continue
		}
	}
}

// All tokenizes the entire input.
func (t *Tokenizer) All() []Token {
	var out []Token
	for {
		tok := t.Next()
		out = append(out, tok)
		if tok.Kind == EOF {
			return out
		}
	}
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '-' || r == '_':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func unquote(s string) string {
	if len(s) >= 2 {
		q := s[0]
		if (q == '"' || q == '\'') && s[len(s)-1] == q {
			return s[1 : len(s)-1]
		}
	}
	return s
}

func extractURL(s string) string {
	s = strings.TrimPrefix(s, "url(")
	s = strings.TrimSuffix(s, ")")
	s = strings.TrimSpace(s)
	return unquote(s)
}

func parseNumber(s string) (float64, bool) {
	isInt := !strings.ContainsAny(s, ".eE")
	n, _ := strconv.ParseFloat(s, 64)
	return n, isInt
}

func splitDimension(s string) (num, unit string) {
	i := 0
	for i < len(s) {
		c := s[i]
		if c == '.' || c == '-' || c == '+' || (c >= '0' && c <= '9') || c == 'e' || c == 'E' {
			// 'e'/'E' only belongs to the number when followed by a
			// digit or sign (scientific notation); otherwise it starts
			// the unit (e.g. "2em").
			if (c == 'e' || c == 'E') && !looksLikeExponent(s, i) {
				break
			}
			i++
			continue
		}
		break
	}
	return s[:i], s[i:]
}

func looksLikeExponent(s string, i int) bool {
	j := i + 1
	if j < len(s) && (s[j] == '+' || s[j] == '-') {
		j++
	}
	return j < len(s) && s[j] >= '0' && s[j] <= '9'
}
