package cascade

import (
	"strings"

	"koala/csstok"
)

// resolveVars implements spec §4.4 step 5's substitution pass: every
// var(--name, fallback) function call in toks is replaced by the
// current value of --name in custom, or by its fallback token list if
// the custom property is undefined (and recursively resolved, since a
// fallback may itself contain var()). A malformed var(), or one whose
// custom property is undefined and has no fallback, is dropped from the
// output.
func resolveVars(toks []csstok.Token, custom map[string][]csstok.Token) []csstok.Token {
	var out []csstok.Token
	i := 0
	for i < len(toks) {
		t := toks[i]
		if t.Kind == csstok.Function && strings.EqualFold(t.Value, "var") {
			args, next := extractBalancedArgs(toks, i+1)
			sub, ok := evalVarCall(args, custom)
			if ok {
				out = append(out, resolveVars(sub, custom)...)
			}
			i = next
			continue
		}
		out = append(out, t)
		i++
	}
	return out
}

// extractBalancedArgs returns the tokens between a just-seen Function
// token's opening implicit paren and its matching RightParen, and the
// index just past that RightParen.
func extractBalancedArgs(toks []csstok.Token, i int) ([]csstok.Token, int) {
	var args []csstok.Token
	depth := 1
	for i < len(toks) {
		switch toks[i].Kind {
		case csstok.Function, csstok.LeftParen:
			depth++
		case csstok.RightParen:
			depth--
			if depth == 0 {
				return args, i + 1
			}
		}
		args = append(args, toks[i])
		i++
	}
	return args, i
}

// evalVarCall splits a var() call's argument tokens into the custom
// property name and an optional fallback, returning the tokens to
// substitute.
func evalVarCall(args []csstok.Token, custom map[string][]csstok.Token) ([]csstok.Token, bool) {
	args = trimTokWS(args)
	if len(args) == 0 || args[0].Kind != csstok.Ident {
		return nil, false
	}
	name := args[0].Value
	rest := trimTokWS(args[1:])
	var fallback []csstok.Token
	if len(rest) > 0 && rest[0].Kind == csstok.Comma {
		fallback = trimTokWS(rest[1:])
	}
	if v, ok := custom[name]; ok {
		return v, true
	}
	if fallback != nil {
		return fallback, true
	}
	return nil, false
}

func trimTokWS(toks []csstok.Token) []csstok.Token {
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
